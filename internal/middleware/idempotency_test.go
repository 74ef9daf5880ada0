package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"jovenva-attendance/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

func newIdempotentRouter(t *testing.T) (*gin.Engine, redismock.ClientMock, *int) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rdb, mock := redismock.NewClientMock()
	calls := 0

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", "u1")
		c.Next()
	})
	r.POST("/check-in", middleware.Idempotency(rdb), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusCreated, gin.H{"ok": true})
	})
	return r, mock, &calls
}

func postWithKey(r *gin.Engine, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/check-in", nil)
	if key != "" {
		req.Header.Set(middleware.IdempotencyHeader, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotency(t *testing.T) {
	cacheKey := middleware.IdempotencyCacheKey("/check-in", "u1", "k1")
	lockKey := cacheKey + ":lock"

	t.Run("first request runs and is stored", func(t *testing.T) {
		r, mock, calls := newIdempotentRouter(t)

		mock.ExpectGet(cacheKey).RedisNil()
		mock.ExpectSetNX(lockKey, "locked", 30*time.Second).SetVal(true)
		mock.ExpectSet(cacheKey, `{"status":201,"body":{"ok":true}}`, 24*time.Hour).SetVal("OK")
		mock.ExpectDel(lockKey).SetVal(1)

		w := postWithKey(r, "k1")

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, 1, *calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("replay returns the stored response", func(t *testing.T) {
		r, mock, calls := newIdempotentRouter(t)

		mock.ExpectGet(cacheKey).SetVal(`{"status":201,"body":{"ok":true}}`)

		w := postWithKey(r, "k1")

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.JSONEq(t, `{"ok":true}`, w.Body.String())
		assert.Equal(t, "true", w.Header().Get("Idempotent-Replayed"))
		assert.Equal(t, 0, *calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("concurrent duplicate is rejected", func(t *testing.T) {
		r, mock, calls := newIdempotentRouter(t)

		mock.ExpectGet(cacheKey).RedisNil()
		mock.ExpectSetNX(lockKey, "locked", 30*time.Second).SetVal(false)

		w := postWithKey(r, "k1")

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "PROCESSING")
		assert.Equal(t, 0, *calls)
	})

	t.Run("no key skips redis", func(t *testing.T) {
		r, mock, calls := newIdempotentRouter(t)

		w := postWithKey(r, "")

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, 1, *calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
