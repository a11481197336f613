package websocket

import "errors"

var (
	ErrClientQueueFull = errors.New("client message queue is full")
	ErrInvalidMessage  = errors.New("invalid message format")
	ErrRoomNotFound    = errors.New("room not found")
	ErrAccessDenied    = errors.New("access denied")
	ErrNotJoined       = errors.New("room not joined")
)
