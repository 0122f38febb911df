package middleware

import "github.com/gin-gonic/gin"

// 请求者身份在 gin context 中的键，由用户模块的身份中间件写入
const (
	UserIDKey   = "user_id"
	UserTypeKey = "user_type"
)

// UserID 返回已认证请求者的用户 ID；未认证时 ok 为 false
func UserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// UserType 返回请求者的用户类型，未认证时为空字符串
func UserType(c *gin.Context) string {
	return c.GetString(UserTypeKey)
}
