package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/secondbrain/backend/internal/interfaces/http/response"
)

// ContextUserID 鉴权通过后写入 gin.Context 的用户 ID 键
const ContextUserID = "auth_user_id"

// publicPaths 不需要鉴权的路径前缀
var publicPaths = []string{"/health", "/swagger/"}

// JWTAuth HS256 Bearer 鉴权，secret 为空时不启用
// 浏览器无法给 websocket 设置请求头，因此也接受 token 查询参数
func JWTAuth(secret string) gin.HandlerFunc {
	if secret == "" {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if path == "/" || c.Request.Method == http.MethodOptions || isPublic(path) {
			c.Next()
			return
		}

		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			raw = c.Query("token")
		}
		if raw == "" {
			response.Error(c, http.StatusUnauthorized, "missing bearer token")
			return
		}

		userID, err := ParseUserID(raw, secret)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "invalid token")
			return
		}

		c.Set(ContextUserID, userID)
		c.Next()
	}
}

// ParseUserID 校验令牌并返回 user_id 声明
func ParseUserID(raw, secret string) (string, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("unexpected claims type")
	}
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return "", errors.New("token has no user_id claim")
	}
	return userID, nil
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func isPublic(path string) bool {
	for _, p := range publicPaths {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
