package server

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/collabroom/collabroom/internal/handlers"
	"github.com/collabroom/collabroom/internal/middleware"
	jwtauth "github.com/collabroom/collabroom/pkg/auth"
)

type Handlers struct {
	Auth         *handlers.AuthHandler
	User         *handlers.UserHandler
	Room         *handlers.RoomHandler
	Access       *handlers.AccessHandler
	Comment      *handlers.CommentHandler
	Group        *handlers.GroupHandler
	Storage      *handlers.StorageHandler
	Notification *handlers.NotificationHandler
	WebSocket    *handlers.WebSocketHandler
}

func APIEndpoints(r *gin.Engine, h *Handlers, jwtMgr *jwtauth.JWTManager, rdb *redis.Client) {
	// Auth endpoints
	auth := r.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/logout", h.Auth.Logout)
	}

	// API endpoints
	api := r.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(jwtMgr, rdb))
	{
		api.GET("/me", h.User.GetMe)
		api.PATCH("/me", h.User.UpdateMe)
		api.GET("/users/search", h.User.SearchUsers)
		api.GET("/users/:id", h.User.GetUser)

		api.POST("/rooms", h.Room.CreateRoom)
		api.GET("/rooms", h.Room.GetMyRooms)
		api.GET("/rooms/:id", h.Room.GetRoom)
		api.PATCH("/rooms/:id", h.Room.UpdateRoom)
		api.DELETE("/rooms/:id", h.Room.DeleteRoom)

		api.GET("/rooms/:id/accesses", h.Access.ListAccesses)
		api.PUT("/rooms/:id/accesses", h.Access.GrantAccess)
		api.DELETE("/rooms/:id/accesses", h.Access.RevokeAccess)

		api.GET("/rooms/:id/comments", h.Comment.GetRoomComments)
		api.POST("/rooms/:id/comments", h.Comment.PostComment)
		api.PATCH("/comments/:id", h.Comment.EditComment)
		api.DELETE("/comments/:id", h.Comment.DeleteComment)
		api.POST("/comments/:id/resolve", h.Comment.SetResolved(true))
		api.POST("/comments/:id/unresolve", h.Comment.SetResolved(false))

		api.GET("/rooms/:id/storage", h.Storage.GetRoomStorage)
		api.GET("/rooms/:id/mention-suggestions", h.User.MentionSuggestions)

		api.POST("/groups", h.Group.CreateGroup)
		api.GET("/groups/:id", h.Group.GetGroup)
		api.POST("/groups/:id/members", h.Group.AddMember)
		api.DELETE("/groups/:id/members/:userID", h.Group.RemoveMember)

		api.GET("/notifications", h.Notification.ListNotifications)
		api.GET("/notifications/unread-count", h.Notification.UnreadCount)
		api.POST("/notifications/:id/read", h.Notification.MarkRead)
		api.POST("/notifications/read-all", h.Notification.MarkAllRead)
	}

	// WebSocket endpoint
	ws := r.Group("/ws")
	ws.Use(middleware.WSAuthMiddleware(jwtMgr, rdb))
	{
		ws.GET("", h.WebSocket.HandleWebSocket)
	}
}
