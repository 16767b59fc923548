package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ecochain/token-catalog/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(r http.Handler, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_RefillsOverTime(t *testing.T) {
	limiter := NewRateLimiter(60, 2)
	now := time.Now()
	limiter.now = func() time.Time { return now }

	assert.True(t, limiter.Allow("1.1.1.1"))
	assert.True(t, limiter.Allow("1.1.1.1"))
	assert.False(t, limiter.Allow("1.1.1.1"))
	assert.True(t, limiter.Allow("2.2.2.2"))

	now = now.Add(time.Second)
	assert.True(t, limiter.Allow("1.1.1.1"))
	assert.False(t, limiter.Allow("1.1.1.1"))
}

func TestRateLimit_Rejects(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(1, 1))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/ping", nil).Code)
	w := perform(r, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Rate limit exceeded")
}

func TestRateLimit_KeysSessionsByWallet(t *testing.T) {
	issuer, err := auth.NewIssuer("secret", time.Hour)
	require.NoError(t, err)
	alice, _, err := issuer.Issue("u1", "0xaaa")
	require.NoError(t, err)
	bob, _, err := issuer.Issue("u2", "0xbbb")
	require.NoError(t, err)

	r := gin.New()
	r.Use(OptionalAuth(issuer, zap.NewNop()))
	r.Use(RateLimit(1, 1))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	bearer := func(token string) http.Header {
		return http.Header{"Authorization": {"Bearer " + token}}
	}

	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/ping", bearer(alice)).Code)
	assert.Equal(t, http.StatusTooManyRequests, perform(r, http.MethodGet, "/ping", bearer(alice)).Code)
	// same IP, different wallet
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/ping", bearer(bob)).Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/ping", nil).Code)
}

func TestRateLimiter_SweepsIdleBuckets(t *testing.T) {
	limiter := NewRateLimiter(60, 2)
	now := time.Now()
	limiter.now = func() time.Time { return now }

	assert.True(t, limiter.Allow("ip:1.1.1.1"))
	assert.True(t, limiter.Allow("wallet:0xaaa"))
	assert.Equal(t, 2, limiter.Tracked())

	now = now.Add(2 * time.Minute)
	assert.True(t, limiter.Allow("ip:2.2.2.2"))
	assert.Equal(t, 1, limiter.Tracked())
}

func TestOptionalAuth(t *testing.T) {
	issuer, err := auth.NewIssuer("secret", time.Hour)
	require.NoError(t, err)
	token, _, err := issuer.Issue("u1", "0xabc")
	require.NoError(t, err)

	r := gin.New()
	r.Use(OptionalAuth(issuer, zap.NewNop()))
	r.GET("/me", func(c *gin.Context) {
		c.String(http.StatusOK, CallerID(c)+"|"+CallerAddress(c))
	})

	w := perform(r, http.MethodGet, "/me", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "|", w.Body.String())

	w = perform(r, http.MethodGet, "/me", http.Header{"Authorization": {"Bearer " + token}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1|0xabc", w.Body.String())

	w = perform(r, http.MethodGet, "/me", http.Header{"Authorization": {"Bearer nope"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = perform(r, http.MethodGet, "/me", http.Header{"Authorization": {token}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid authorization format")
}

func TestLogger_LevelsByStatus(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(Logger(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	perform(r, http.MethodGet, "/ok?page=2", nil)
	perform(r, http.MethodGet, "/bad", nil)
	perform(r, http.MethodGet, "/boom", nil)

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "Request completed", entries[0].Message)
	assert.Equal(t, "/ok?page=2", entries[0].ContextMap()["path"])
	assert.Equal(t, "Client error", entries[1].Message)
	assert.Equal(t, "Server error", entries[2].Message)
}

func TestRedisCache_UnreachableRedisPassesThrough(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	calls := 0
	r := gin.New()
	r.Use(RedisCache(client, CacheConfig{Enabled: true, DefaultDuration: time.Minute, PrefixKey: "test"}, zap.NewNop()))
	r.GET("/v1/tokens", func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	for i := 0; i < 2; i++ {
		w := perform(r, http.MethodGet, "/v1/tokens", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("X-Cache"))
	}
	assert.Equal(t, 2, calls)
}

func TestRedisCache_DisabledAndExcluded(t *testing.T) {
	calls := 0
	handler := func(c *gin.Context) {
		calls++
		c.Status(http.StatusOK)
	}

	r := gin.New()
	r.Use(RedisCache(nil, CacheConfig{Enabled: true}, zap.NewNop()))
	r.GET("/a", handler)
	perform(r, http.MethodGet, "/a", nil)

	assert.Equal(t, 1, calls)
	assert.True(t, excluded("/v1/wallet/info", []string{"/v1/wallet/"}))
	assert.True(t, excluded("/health", []string{"/health"}))
	assert.False(t, excluded("/v1/tokens", []string{"/v1/wallet/", "/health"}))
}

func TestGenerateCacheKey(t *testing.T) {
	a := generateCacheKey("/v1/tokens", "page=1", "p")
	b := generateCacheKey("/v1/tokens", "page=2", "p")
	c := generateCacheKey("/v1/tokens", "", "p")

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, c, generateCacheKey("/v1/tokens", "", "p"))
	assert.Contains(t, a, "p:")
}

func TestMetrics_PassesThrough(t *testing.T) {
	r := gin.New()
	r.Use(Metrics())
	r.GET("/v1/tokens/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	assert.Equal(t, http.StatusNoContent, perform(r, http.MethodGet, "/v1/tokens/1", nil).Code)
	assert.Equal(t, http.StatusNotFound, perform(r, http.MethodGet, "/nowhere", nil).Code)
}
