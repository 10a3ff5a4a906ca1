package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CounterToken is the last token issued at a counter on a given day
type CounterToken struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CounterNo   int       `gorm:"not null;uniqueIndex:idx_counter_tokens_counter_date" json:"counterNo"`
	Date        string    `gorm:"column:token_date;size:10;not null;uniqueIndex:idx_counter_tokens_counter_date" json:"date"` // YYYY-MM-DD
	TokenNumber int       `gorm:"not null" json:"tokenNumber"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// BeforeCreate generates a UUID before creating a new counter token row
func (t *CounterToken) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the CounterToken model
func (CounterToken) TableName() string {
	return "counter_tokens"
}
