package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/entity"
)

// IdempotencyRepository defines the interface for idempotency key operations
type IdempotencyRepository interface {
	// GetByKey retrieves an idempotency key by its key string and user ID
	GetByKey(ctx context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error)
	// Reserve inserts ikey as a pending entry unless a live entry for the
	// same key and user exists. Entries that expired at now are replaced.
	// It reports whether the reservation was taken.
	Reserve(ctx context.Context, ikey *entity.IdempotencyKey, now time.Time) (bool, error)
	// Complete stores the response of a reserved key
	Complete(ctx context.Context, id uuid.UUID, code int, body string) error
	// Release drops a reservation so the key can be retried
	Release(ctx context.Context, id uuid.UUID) error
	// DeleteExpired removes keys that expired before now
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
