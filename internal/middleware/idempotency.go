package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"jovenva-attendance/internal/shared/apperror"
	"jovenva-attendance/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	IdempotencyHeader   = "Idempotency-Key"
	idempotencyLockTTL  = 30 * time.Second
	idempotencyCacheTTL = 24 * time.Hour
)

var errRequestInFlight = apperror.New(apperror.CodeProcessing, "Request is already being processed", http.StatusConflict)

type cachedResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

type bodyRecorder struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

func IdempotencyCacheKey(path, userID, key string) string {
	return fmt.Sprintf("idemp:%s:%s:%s", path, userID, key)
}

// Idempotency replays the stored response of a POST that carried the same
// Idempotency-Key. Concurrent duplicates are rejected while the first is
// running; only 2xx responses are stored.
func Idempotency(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		idempKey := c.GetHeader(IdempotencyHeader)
		if idempKey == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		log := contextutil.GetLogger(ctx, zap.L()).Named("middleware.idempotency")

		cacheKey := IdempotencyCacheKey(c.FullPath(), c.GetString("user_id"), idempKey)
		lockKey := cacheKey + ":lock"

		val, err := rdb.Get(ctx, cacheKey).Result()
		switch {
		case err == nil:
			var cached cachedResponse
			if jsonErr := json.Unmarshal([]byte(val), &cached); jsonErr == nil {
				c.Header("Idempotent-Replayed", "true")
				c.Data(cached.Status, "application/json; charset=utf-8", cached.Body)
				c.Abort()
				return
			}
			log.Warn("discarding unreadable idempotency entry", zap.String("key", cacheKey))
		case !errors.Is(err, redis.Nil):
			// Redis outage: serve the request without idempotency.
			log.Warn("idempotency lookup failed", zap.Error(err))
			c.Next()
			return
		}

		acquired, err := rdb.SetNX(ctx, lockKey, "locked", idempotencyLockTTL).Result()
		if err != nil {
			log.Warn("idempotency lock failed", zap.Error(err))
			c.Next()
			return
		}
		if !acquired {
			abortWith(c, errRequestInFlight)
			return
		}

		rec := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = rec

		c.Next()

		status := rec.Status()
		if status >= 200 && status < 300 {
			payload, err := json.Marshal(cachedResponse{Status: status, Body: rec.buf.Bytes()})
			if err == nil {
				if err := rdb.Set(ctx, cacheKey, string(payload), idempotencyCacheTTL).Err(); err != nil {
					log.Warn("store idempotent response failed", zap.Error(err))
				}
			}
		}
		if err := rdb.Del(ctx, lockKey).Err(); err != nil {
			log.Warn("release idempotency lock failed", zap.Error(err))
		}
	}
}
