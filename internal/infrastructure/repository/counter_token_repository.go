package repository

import (
	"context"
	"fmt"

	"github.com/sangkips/pos-api/internal/domain/entity"
	domainRepo "github.com/sangkips/pos-api/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const tokenAllocAttempts = 3

type counterTokenRepository struct {
	db *gorm.DB
}

// NewCounterTokenRepository creates a database backed token counter
func NewCounterTokenRepository(db *gorm.DB) domainRepo.CounterTokenRepository {
	return &counterTokenRepository{db: db}
}

// Next increments the row for (counterNo, date) in place, creating it with
// token 1 when it does not exist yet. A concurrent insert of the same pair
// loses the conflict and retries the increment.
func (r *counterTokenRepository) Next(ctx context.Context, counterNo int, date string) (int, error) {
	var token entity.CounterToken
	err := GetDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		for attempt := 0; attempt < tokenAllocAttempts; attempt++ {
			res := tx.Model(&entity.CounterToken{}).
				Where("counter_no = ? AND token_date = ?", counterNo, date).
				Update("token_number", gorm.Expr("token_number + 1"))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 {
				return tx.Where("counter_no = ? AND token_date = ?", counterNo, date).First(&token).Error
			}

			fresh := entity.CounterToken{CounterNo: counterNo, Date: date, TokenNumber: 1}
			res = tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&fresh)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 {
				token = fresh
				return nil
			}
		}
		return fmt.Errorf("allocate token for counter %d on %s: too much contention", counterNo, date)
	})
	if err != nil {
		return 0, err
	}
	return token.TokenNumber, nil
}

func (r *counterTokenRepository) ListByDate(ctx context.Context, date string) ([]entity.CounterToken, error) {
	var tokens []entity.CounterToken
	err := GetDB(ctx, r.db).Where("token_date = ?", date).Order("counter_no ASC").Find(&tokens).Error
	return tokens, err
}
