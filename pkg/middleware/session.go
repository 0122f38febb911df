package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionIDKey context key for the anonymous browser session id
const SessionIDKey = "session_id"

// SessionMiddleware 匿名会话中间件。
// 为每个浏览器签发一个会话 Cookie，购物车与待支付会话以该 ID 为键存储在 Redis 中。
func SessionMiddleware(cookieName string, maxAge int, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(cookieName)
		if err != nil || sid == "" {
			sid = uuid.New().String()
		}
		// 每次请求滚动续期
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cookieName, sid, maxAge, "/", "", secure, true)
		c.Set(SessionIDKey, sid)
		c.Next()
	}
}

// SessionID 从请求上下文取出会话 ID
func SessionID(c *gin.Context) string {
	if sid, ok := c.Get(SessionIDKey); ok {
		if s, ok := sid.(string); ok {
			return s
		}
	}
	return ""
}
