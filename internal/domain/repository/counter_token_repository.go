package repository

import (
	"context"

	"github.com/sangkips/pos-api/internal/domain/entity"
)

// CounterTokenRepository issues per-counter daily token numbers
type CounterTokenRepository interface {
	// Next atomically increments and returns the token for (counterNo, date),
	// starting at 1 for a new pair
	Next(ctx context.Context, counterNo int, date string) (int, error)
	ListByDate(ctx context.Context, date string) ([]entity.CounterToken, error)
}
