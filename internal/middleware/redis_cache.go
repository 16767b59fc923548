package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ecochain/token-catalog/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// CacheConfig holds configuration for the cache middleware
type CacheConfig struct {
	Enabled         bool
	DefaultDuration time.Duration
	PrefixKey       string
	ExcludedPaths   []string
}

// RedisCache caches successful GET responses in Redis. Requests carrying a
// session are never cached since their body may depend on the caller.
func RedisCache(redisClient *redis.Client, config CacheConfig, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !config.Enabled || redisClient == nil || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}
		if c.GetHeader("Authorization") != "" || excluded(c.Request.URL.Path, config.ExcludedPaths) {
			c.Next()
			return
		}

		cacheKey := generateCacheKey(c.Request.URL.Path, c.Request.URL.RawQuery, config.PrefixKey)
		ctx := c.Request.Context()

		cachedResponse, err := redisClient.Get(ctx, cacheKey).Bytes()
		if err == nil {
			metrics.CacheLookups.WithLabelValues("hit").Inc()
			logger.Debug("Cache hit",
				zap.String("path", c.Request.URL.Path),
				zap.String("cache_key", cacheKey))

			c.Writer.Header().Set("Content-Type", "application/json; charset=utf-8")
			c.Writer.Header().Set("X-Cache", "HIT")
			c.Writer.WriteHeader(http.StatusOK)
			c.Writer.Write(cachedResponse)
			c.Abort()
			return
		}
		if err != redis.Nil {
			metrics.CacheLookups.WithLabelValues("error").Inc()
			logger.Warn("Cache lookup failed", zap.String("cache_key", cacheKey), zap.Error(err))
		} else {
			metrics.CacheLookups.WithLabelValues("miss").Inc()
		}

		writer := &responseWriter{
			ResponseWriter: c.Writer,
			body:           &bytes.Buffer{},
		}
		c.Writer = writer

		c.Next()

		if c.Writer.Status() != http.StatusOK {
			return
		}
		err = redisClient.Set(ctx, cacheKey, writer.body.Bytes(), config.DefaultDuration).Err()
		if err != nil {
			logger.Warn("Failed to set cache", zap.String("cache_key", cacheKey), zap.Error(err))
			return
		}
		logger.Debug("Cache set",
			zap.String("path", c.Request.URL.Path),
			zap.String("cache_key", cacheKey),
			zap.Duration("duration", config.DefaultDuration))
	}
}

// FlushOnWrite drops every cached response after a successful write so that
// listings never outlive the change that invalidated them
func FlushOnWrite(redisClient *redis.Client, prefix string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if redisClient == nil || c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
			return
		}
		if status := c.Writer.Status(); status < 200 || status >= 300 {
			return
		}
		if err := FlushCache(context.WithoutCancel(c.Request.Context()), redisClient, prefix, ""); err != nil {
			logger.Warn("Failed to flush cache", zap.String("path", c.Request.URL.Path), zap.Error(err))
		}
	}
}

// responseWriter captures the response body for caching
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

// Write captures the response for caching
func (w *responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// WriteString captures string writes, which gin uses for some renderers
func (w *responseWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// generateCacheKey hashes the path and query into a key under prefix
func generateCacheKey(path, query, prefix string) string {
	hash := sha256.New()
	io.WriteString(hash, path)
	if query != "" {
		io.WriteString(hash, "?"+query)
	}
	return prefix + ":" + hex.EncodeToString(hash.Sum(nil))
}

// FlushCache clears the cached response of path, or every cached response
// under prefix when path is empty
func FlushCache(ctx context.Context, redisClient *redis.Client, prefix string, path string) error {
	if path != "" {
		return redisClient.Del(ctx, generateCacheKey(path, "", prefix)).Err()
	}

	var cursor uint64
	for {
		keys, next, err := redisClient.Scan(ctx, cursor, prefix+":*", 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := redisClient.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

func excluded(path string, paths []string) bool {
	for _, p := range paths {
		if path == p || (strings.HasSuffix(p, "/") && strings.HasPrefix(path, p)) {
			return true
		}
	}
	return false
}
