package repository

import (
	"context"
	"errors"

	"github.com/sangkips/pos-api/internal/domain/entity"
	domainRepo "github.com/sangkips/pos-api/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type paymentSettingsRepository struct {
	db *gorm.DB
}

// NewPaymentSettingsRepository creates a new payment settings repository
func NewPaymentSettingsRepository(db *gorm.DB) domainRepo.PaymentSettingsRepository {
	return &paymentSettingsRepository{db: db}
}

func (r *paymentSettingsRepository) GetOrCreate(ctx context.Context, defaults *entity.PaymentSettings) (*entity.PaymentSettings, error) {
	db := GetDB(ctx, r.db)

	settings, err := r.get(db)
	if err != nil || settings != nil {
		return settings, err
	}

	defaults.SingletonKey = entity.PaymentSettingsKey
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(defaults).Error; err != nil {
		return nil, err
	}

	// someone else may have won the insert
	settings, err = r.get(db)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		return nil, errors.New("payment settings missing after insert")
	}
	return settings, nil
}

func (r *paymentSettingsRepository) get(db *gorm.DB) (*entity.PaymentSettings, error) {
	var settings entity.PaymentSettings
	err := db.Where("singleton_key = ?", entity.PaymentSettingsKey).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *paymentSettingsRepository) Save(ctx context.Context, settings *entity.PaymentSettings) error {
	settings.SingletonKey = entity.PaymentSettingsKey
	return GetDB(ctx, r.db).Save(settings).Error
}
