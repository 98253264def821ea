package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/gtd_catalog/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newJWTRouter(m *JWTMiddleware) *gin.Engine {
	r := gin.New()
	r.Use(LoggingMiddleware())
	r.POST("/admin", m.Handle(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("user_id"))
	})
	return r
}

func do(r http.Handler, method, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTMiddleware(t *testing.T) {
	m := NewJWTMiddleware("s3cret")
	r := newJWTRouter(m)
	token, err := utils.GenerateJWT("s3cret", "admin-1", "ops@example.com", time.Hour)
	require.NoError(t, err)

	w := do(r, http.MethodPost, "/admin", map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin-1", w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodPost, "/admin", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodPost, "/admin", map[string]string{"Authorization": "Token " + token}).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodPost, "/admin", map[string]string{"Authorization": "Bearer nope"}).Code)
}

func TestJWTMiddleware_LocksOutAfterRepeatedFailures(t *testing.T) {
	m := NewJWTMiddleware("s3cret")
	r := newJWTRouter(m)
	bad := map[string]string{"Authorization": "Bearer nope"}

	for range 5 {
		assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodPost, "/admin", bad).Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodPost, "/admin", bad).Code)

	token, err := utils.GenerateJWT("s3cret", "admin-1", "", time.Hour)
	require.NoError(t, err)
	good := map[string]string{"Authorization": "Bearer " + token}
	assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodPost, "/admin", good).Code)
}

func TestInvalidAuthRateLimiter_WindowExpires(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewInvalidAuthRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	rl.Fail("1.2.3.4")
	assert.False(t, rl.Blocked("1.2.3.4"))
	rl.Fail("1.2.3.4")
	assert.True(t, rl.Blocked("1.2.3.4"))
	assert.False(t, rl.Blocked("5.6.7.8"))

	now = now.Add(2 * time.Minute)
	assert.False(t, rl.Blocked("1.2.3.4"))

	rl.Fail("5.6.7.8")
	now = now.Add(2 * time.Minute)
	rl.evict()
	assert.Empty(t, rl.attempts)
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"Shop.Example.com"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := do(r, http.MethodGet, "/x", map[string]string{"Origin": "https://shop.example.com:443"})
	assert.Equal(t, "https://shop.example.com:443", w.Header().Get("Access-Control-Allow-Origin"))

	w = do(r, http.MethodGet, "/x", map[string]string{"Referer": "https://shop.example.com/catalog?page=2"})
	assert.Equal(t, "https://shop.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	w = do(r, http.MethodGet, "/x", map[string]string{"Origin": "https://evil.example.net"})
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = do(r, http.MethodOptions, "/x", map[string]string{"Origin": "https://shop.example.com"})
	assert.Equal(t, http.StatusNoContent, w.Code)
}
