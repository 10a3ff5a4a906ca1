package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/entity"
)

// ProductFilter narrows product listings
type ProductFilter struct {
	CategoryID *uuid.UUID
	Search     string
	// WithCategory preloads the owning category
	WithCategory bool
}

// ProductRepository defines the interface for product data operations
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter ProductFilter) ([]entity.Product, error)
	// SyncCounterNo copies a category's counter number onto its products
	SyncCounterNo(ctx context.Context, categoryID uuid.UUID, counterNo int) error
}
