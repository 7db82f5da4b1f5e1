package middleware

import (
	"docuflow/api/response"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const ownerKey = "owner_id"

var errEmptySecret = errors.New("jwt secret not configured")

// GenerateToken 签发 HS256 token，sub 为用户 id（测试和本地调试用）
func GenerateToken(ownerID, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   ownerID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Auth validates the bearer token and stores its subject as the owner id.
func Auth(secret string) gin.HandlerFunc {
	keyFunc := func(*jwt.Token) (interface{}, error) {
		// 空密钥一律拒绝
		if secret == "" {
			return nil, errEmptySecret
		}
		return []byte(secret), nil
	}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.FailWithStatus(c, http.StatusUnauthorized, "Authorization header required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.FailWithStatus(c, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		claims := &jwt.RegisteredClaims{}
		token, err := parser.ParseWithClaims(parts[1], claims, keyFunc)
		if err != nil || !token.Valid || claims.Subject == "" {
			response.FailWithStatus(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		c.Set(ownerKey, claims.Subject)
		c.Next()
	}
}

// OwnerID 当前请求的用户 id，未经过 Auth 时为空
func OwnerID(c *gin.Context) string {
	return c.GetString(ownerKey)
}
