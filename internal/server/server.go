package server

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"github.com/collabroom/collabroom/internal/database"
	"github.com/collabroom/collabroom/internal/handlers"
	"github.com/collabroom/collabroom/internal/websocket"
	"github.com/collabroom/collabroom/pkg/auth"
)

type Server struct {
	Router     *gin.Engine
	DB         *database.Database
	Redis      *redis.Client
	JWTManager *auth.JWTManager
	Hub        *websocket.Hub
}

func NewServer() *Server {
	if err := godotenv.Load(".env.local"); err != nil {
		if err := godotenv.Load(); err != nil {
			log.Println(".env not found, using environment variables")
		}
	}

	dbConn, err := database.Connect()
	if err != nil {
		log.Fatalf("Postgres connect failed: %v", err)
	}

	redisOpts, err := redis.ParseURL(os.Getenv("REDIS_URL"))
	if err != nil {
		log.Fatalf("invalid REDIS_URL: %v", err)
	}
	rdb := redis.NewClient(redisOpts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Redis connect failed: %v", err)
	}

	jwtMgr := auth.NewJWTManager(
		os.Getenv("JWT_SECRET"),
		"collabroom",
		24*time.Hour,
	)

	hub := websocket.NewHub()
	go hub.Run()

	notifier := handlers.NewNotifier(dbConn, rdb, hub)
	realtime := handlers.NewRealtimeHandler(dbConn, hub)

	deps := &Handlers{
		Auth:         handlers.NewAuthHandler(dbConn, jwtMgr, rdb),
		User:         handlers.NewUserHandler(dbConn, hub),
		Room:         handlers.NewRoomHandler(dbConn, hub, notifier),
		Access:       handlers.NewAccessHandler(dbConn, hub, notifier),
		Comment:      handlers.NewCommentHandler(dbConn, hub, notifier),
		Group:        handlers.NewGroupHandler(dbConn),
		Storage:      handlers.NewStorageHandler(dbConn),
		Notification: handlers.NewNotificationHandler(dbConn, notifier),
		WebSocket:    handlers.NewWebSocketHandler(hub, realtime),
	}

	router := gin.Default()
	APIEndpoints(router, deps, jwtMgr, rdb)

	return &Server{
		Router:     router,
		DB:         dbConn,
		Redis:      rdb,
		JWTManager: jwtMgr,
		Hub:        hub,
	}
}

func (s *Server) Run() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Server starting on port %s", port)
	if err := s.Router.Run(":" + port); err != nil {
		log.Fatalf("Server run error: %v", err)
	}
}
