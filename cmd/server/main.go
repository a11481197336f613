package main

import "github.com/collabroom/collabroom/internal/server"

func main() {
	s := server.NewServer()
	defer s.Hub.Stop()
	s.Run()
}
