package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/repository"
	"github.com/sangkips/pos-api/internal/presentation/http/dto/response"
	"github.com/sangkips/pos-api/pkg/apperror"
	"go.uber.org/zap"
)

const (
	// IdempotencyKeyHeader is the HTTP header for idempotency keys
	IdempotencyKeyHeader = "Idempotency-Key"
	// ReplayedHeader marks a response served from the idempotency store
	ReplayedHeader = "X-Idempotency-Replayed"
	// IdempotencyKeyTTL is how long keys are valid
	IdempotencyKeyTTL = 24 * time.Hour
)

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	Repo   repository.IdempotencyRepository
	Logger *zap.Logger
	Now    func() time.Time
}

// responseWriter wraps gin.ResponseWriter to capture the response body
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the stored response when a write is retried with the
// same Idempotency-Key. The header is optional; only 2xx responses are
// stored. Reusing a key for a different body is rejected, and a retry that
// arrives while the first request is still running gets a 409.
func Idempotency(config IdempotencyConfig) gin.HandlerFunc {
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost && c.Request.Method != http.MethodPut {
			c.Next()
			return
		}

		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}

		v, ok := c.Get(UserIDKey)
		if !ok {
			c.Next()
			return
		}
		userID, ok := v.(uuid.UUID)
		if !ok {
			c.Next()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			response.BadRequest(c, "Could not read request body")
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		sum := sha256.Sum256(body)
		requestHash := hex.EncodeToString(sum[:])

		ctx := c.Request.Context()
		now := config.Now()
		ikey := &entity.IdempotencyKey{
			Key:         key,
			UserID:      userID,
			Endpoint:    c.Request.Method + " " + c.FullPath(),
			RequestHash: requestHash,
			ExpiresAt:   now.Add(IdempotencyKeyTTL),
		}
		reserved, err := config.Repo.Reserve(ctx, ikey, now)
		if err != nil {
			config.Logger.Warn("idempotency reservation failed", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}
		if !reserved {
			replayStored(c, config, key, userID, requestHash)
			return
		}

		// the reservation outlives a cancelled request so the key is
		// always completed or released
		storeCtx := context.WithoutCancel(ctx)
		completed := false
		defer func() {
			if completed {
				return
			}
			if err := config.Repo.Release(storeCtx, ikey.ID); err != nil {
				config.Logger.Warn("failed to release idempotency key", zap.String("key", key), zap.Error(err))
			}
		}()

		blw := &responseWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			return
		}
		// a succeeded write keeps its reservation even when storing the
		// response fails, so retries get a 409 rather than a second write
		completed = true
		if err := config.Repo.Complete(storeCtx, ikey.ID, status, blw.body.String()); err != nil {
			config.Logger.Warn("failed to store idempotency key", zap.String("key", key), zap.Error(err))
		}
	}
}

// replayStored answers a request whose key is held by an earlier request
func replayStored(c *gin.Context, config IdempotencyConfig, key string, userID uuid.UUID, requestHash string) {
	existing, err := config.Repo.GetByKey(c.Request.Context(), key, userID)
	if err != nil {
		config.Logger.Warn("idempotency lookup failed", zap.String("key", key), zap.Error(err))
		response.Error(c, apperror.NewInternalError("failed to check idempotency key", err))
		c.Abort()
		return
	}

	switch {
	case existing != nil && existing.RequestHash != requestHash:
		response.BadRequest(c, "Idempotency-Key was already used for a different request")
	case existing == nil || existing.IsPending():
		// nil means the holder released the key after Reserve lost
		response.ErrorWithCode(c, http.StatusConflict, "A request with this Idempotency-Key is still in progress")
	default:
		c.Header(ReplayedHeader, "true")
		c.Data(existing.ResponseCode, "application/json; charset=utf-8", []byte(existing.ResponseBody))
	}
	c.Abort()
}
