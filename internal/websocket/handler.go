package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"mealmood-server/internal/cache"
	"mealmood-server/internal/middleware"
	"mealmood-server/pkg/jwt"
	"mealmood-server/pkg/response"
)

// Handler 处理 WebSocket 握手
type Handler struct {
	hub        *Hub
	jwtService *jwt.JWTService
	tokenCache cache.Cache
	cookieName string
	upgrader   websocket.Upgrader
	logger     *zap.Logger
}

// NewHandler 创建 WebSocket Handler
// 参数:
//   - hub: 连接管理器
//   - jwtService: 校验 Access Token
//   - tokenCache: 检查 Token 黑名单
//   - cookieName: 浏览器端 Token Cookie 名
//   - origins: 允许的来源，为空或含 "*" 时不限制
//   - logger: 日志
func NewHandler(hub *Hub, jwtService *jwt.JWTService, tokenCache cache.Cache, cookieName string, origins []string, logger *zap.Logger) *Handler {
	return &Handler{
		hub:        hub,
		jwtService: jwtService,
		tokenCache: tokenCache,
		cookieName: cookieName,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(origins),
		},
		logger: logger,
	}
}

// originChecker 没有 Origin 头的请求（CLI 等非浏览器客户端）总是放行
func originChecker(origins []string) func(r *http.Request) bool {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		allowed[o] = struct{}{}
	}
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := allowed[origin]
		return ok
	}
}

// HandleChatWS 建立对话连接
// Token 从 query 参数 token 读取，没有时按 HTTP 接口的方式读取 Header 或 Cookie
// @Router /ws/chat [get]
func (h *Handler) HandleChatWS(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		var ok bool
		if token, ok = middleware.ExtractToken(c, h.cookieName); !ok {
			response.Unauthorized(c, "로그인이 필요합니다.")
			return
		}
	}

	claims, err := h.jwtService.ValidateToken(token)
	if err != nil {
		response.Unauthorized(c, "토큰이 유효하지 않거나 만료되었습니다.")
		return
	}
	if h.tokenCache.IsTokenBlacklisted(c.Request.Context(), cache.HashToken(token)) {
		response.Unauthorized(c, "로그아웃된 토큰입니다. 다시 로그인해 주세요.")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade 失败时已经写过响应
		h.logger.Warn("Failed to upgrade connection", zap.Error(err))
		return
	}

	client := NewClient(h.hub, conn, claims.UserID)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}

// RegisterRoutes 注册 WebSocket 路由，认证在握手时完成
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/ws/chat", h.HandleChatWS)
}
