package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ariebrainware/medibook/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newRateLimitedRouter(cfg RateLimitConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimiter(cfg))
	r.POST("/login", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})
	return r
}

func doLogin(r *gin.Engine) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "192.168.1.1:1234"
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_WithoutRedis(t *testing.T) {
	config.SetRedisClientForTesting(nil)
	defer config.SetRedisClientForTesting(nil)

	r := newRateLimitedRouter(RateLimitConfig{Limit: 5, Window: 15 * time.Minute})
	for i := 0; i < 10; i++ {
		assert.Equal(t, http.StatusOK, doLogin(r).Code, "request %d", i+1)
	}
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	mock := setupRedisMock(t)
	key := "ratelimit:/login:192.168.1.1"

	mock.ExpectIncr(key).SetVal(1)
	mock.ExpectExpire(key, time.Minute).SetVal(true)
	mock.ExpectIncr(key).SetVal(2)
	mock.ExpectIncr(key).SetVal(3)

	r := newRateLimitedRouter(RateLimitConfig{Limit: 2, Window: time.Minute})
	assert.Equal(t, http.StatusOK, doLogin(r).Code)
	assert.Equal(t, http.StatusOK, doLogin(r).Code)
	assert.Equal(t, http.StatusTooManyRequests, doLogin(r).Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimiter_RedisErrorFailsOpen(t *testing.T) {
	mock := setupRedisMock(t)
	mock.ExpectIncr("ratelimit:/login:192.168.1.1").SetErr(errors.New("redis down"))

	r := newRateLimitedRouter(RateLimitConfig{})
	assert.Equal(t, http.StatusOK, doLogin(r).Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResetRateLimit(t *testing.T) {
	mock := setupRedisMock(t)
	mock.ExpectDel("ratelimit:/login:192.168.1.1").SetVal(1)

	assert.NoError(t, ResetRateLimit("192.168.1.1", "/login"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResetRateLimit_NoRedis(t *testing.T) {
	config.SetRedisClientForTesting(nil)
	defer config.SetRedisClientForTesting(nil)

	assert.Error(t, ResetRateLimit("192.168.1.1", "/test"))
}
