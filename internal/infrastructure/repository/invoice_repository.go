package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/entity"
	domainRepo "github.com/sangkips/pos-api/internal/domain/repository"
	"gorm.io/gorm"
)

type invoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *gorm.DB) domainRepo.InvoiceRepository {
	return &invoiceRepository{db: db}
}

// Create inserts the invoice and its items. Timestamps are stored in UTC so
// range filters compare correctly on every driver.
func (r *invoiceRepository) Create(ctx context.Context, invoice *entity.Invoice) error {
	if !invoice.CreatedAt.IsZero() {
		invoice.CreatedAt = invoice.CreatedAt.UTC()
	}
	return GetDB(ctx, r.db).Omit("Creator").Create(invoice).Error
}

func (r *invoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	var invoice entity.Invoice
	err := GetDB(ctx, r.db).
		Preload("Creator").
		First(&invoice, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) List(ctx context.Context, filter domainRepo.InvoiceFilter) ([]entity.Invoice, int64, error) {
	query := GetDB(ctx, r.db).Model(&entity.Invoice{})

	if filter.CreatedBy != nil {
		query = query.Where("created_by = ?", *filter.CreatedBy)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", filter.To.UTC())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Pagination != nil {
		query = query.Offset(filter.Pagination.Offset()).Limit(filter.Pagination.PerPage)
	}

	var invoices []entity.Invoice
	err := query.Preload("Creator").Order("created_at DESC").Find(&invoices).Error
	return invoices, total, err
}
