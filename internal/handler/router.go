package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handlers 路由需要的全部处理器
type Handlers struct {
	Auth      *AuthHandler
	User      *UserHandler
	Session   *SessionHandler
	Chat      *ChatHandler
	Bookmark  *BookmarkHandler
	Assistant *AssistantHandler
}

// RegisterRoutes 注册 HTTP 路由
// 参数:
//   - router: Gin 引擎
//   - h: 处理器集合
//   - authMW: 认证中间件，/api/v1 下除注册、登录、刷新外都需要
func RegisterRoutes(router gin.IRouter, h Handlers, authMW gin.HandlerFunc) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/signup", h.Auth.Signup)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.RefreshToken)
		auth.GET("/status", authMW, h.Auth.Status)
		auth.POST("/logout", authMW, h.Auth.Logout)
	}

	protected := v1.Group("")
	protected.Use(authMW)

	users := protected.Group("/users")
	{
		users.GET("", h.User.ListUsers)
		users.GET("/me", h.User.GetProfile)
	}

	protected.POST("/chat", h.Chat.Chat)

	sessions := protected.Group("/sessions")
	{
		sessions.POST("", h.Session.CreateSession)
		sessions.GET("", h.Session.ListSessions)
		sessions.GET("/:id/logs", h.Session.GetLogs)
		sessions.POST("/:id/messages", h.Session.AddMessage)
		sessions.DELETE("/:id", h.Session.DeleteSession)
	}

	bookmarks := protected.Group("/bookmarks")
	{
		bookmarks.POST("", h.Bookmark.CreateBookmark)
		bookmarks.GET("", h.Bookmark.ListBookmarks)
		bookmarks.PUT("/:id", h.Bookmark.UpdateBookmark)
		bookmarks.DELETE("/:id", h.Bookmark.DeleteBookmark)
	}

	protected.POST("/assistant/classify", h.Assistant.Classify)
}
