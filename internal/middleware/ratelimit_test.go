package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newLimitedRouter(rl *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/", rl.Middleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func doRequest(router *gin.Engine, remoteAddr string) int {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimiter_BurstExceeded(t *testing.T) {
	router := newLimitedRouter(NewRateLimiter(1, 3))

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, doRequest(router, "203.0.113.5:1234"))
	}

	assert.Equal(t, http.StatusTooManyRequests, doRequest(router, "203.0.113.5:1234"))
}

func TestRateLimiter_PerIPIsolation(t *testing.T) {
	router := newLimitedRouter(NewRateLimiter(1, 1))

	assert.Equal(t, http.StatusOK, doRequest(router, "203.0.113.5:1234"))
	assert.Equal(t, http.StatusTooManyRequests, doRequest(router, "203.0.113.5:1234"))

	// a different client keeps its own bucket
	assert.Equal(t, http.StatusOK, doRequest(router, "198.51.100.7:1234"))
}
