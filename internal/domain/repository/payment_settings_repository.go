package repository

import (
	"context"

	"github.com/sangkips/pos-api/internal/domain/entity"
)

// PaymentSettingsRepository persists the settings singleton
type PaymentSettingsRepository interface {
	// GetOrCreate returns the singleton, inserting defaults if it does not exist
	GetOrCreate(ctx context.Context, defaults *entity.PaymentSettings) (*entity.PaymentSettings, error)
	Save(ctx context.Context, settings *entity.PaymentSettings) error
}
