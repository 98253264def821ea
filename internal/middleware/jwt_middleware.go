package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_catalog/internal/utils"
)

// JWTMiddleware guards admin routes with HS256 bearer tokens.
type JWTMiddleware struct {
	secret      string
	rateLimiter *InvalidAuthRateLimiter
}

// NewJWTMiddleware creates a JWTMiddleware. Five failures per minute from
// one IP lock that IP out for the rest of the minute.
func NewJWTMiddleware(secret string) *JWTMiddleware {
	return &JWTMiddleware{
		secret:      secret,
		rateLimiter: NewInvalidAuthRateLimiter(5, time.Minute),
	}
}

// RateLimiter exposes the limiter so its eviction loop can be started.
func (m *JWTMiddleware) RateLimiter() *InvalidAuthRateLimiter {
	return m.rateLimiter
}

func (m *JWTMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if m.rateLimiter.Blocked(ip) {
			utils.Error(c, 429, "TOO_MANY_ATTEMPTS", "Too many invalid authentication attempts")
			c.Abort()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			m.reject(c, ip, "UNAUTHORIZED", "Missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			m.reject(c, ip, "UNAUTHORIZED", "Invalid authorization header")
			return
		}

		claims, err := utils.ValidateJWT(m.secret, parts[1])
		if err != nil {
			m.reject(c, ip, "INVALID_TOKEN", "Invalid or expired token")
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Next()
	}
}

func (m *JWTMiddleware) reject(c *gin.Context, ip, code, message string) {
	m.rateLimiter.Fail(ip)
	utils.Error(c, 401, code, message)
	c.Abort()
}
