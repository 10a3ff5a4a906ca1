package repository

import (
	"context"

	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/enum"
	domainRepo "github.com/sangkips/pos-api/internal/domain/repository"
	"gorm.io/gorm"
)

type salesRepository struct {
	db *gorm.DB
}

// NewSalesRepository creates the aggregation queries used by the dashboard
func NewSalesRepository(db *gorm.DB) domainRepo.SalesRepository {
	return &salesRepository{db: db}
}

func (r *salesRepository) scoped(ctx context.Context, filter domainRepo.SalesFilter) *gorm.DB {
	query := GetDB(ctx, r.db).Model(&entity.Invoice{}).
		Where("created_at >= ? AND created_at <= ?", filter.From.UTC(), filter.To.UTC())
	if filter.CreatedBy != nil {
		query = query.Where("created_by = ?", *filter.CreatedBy)
	}
	return query
}

func (r *salesRepository) Summary(ctx context.Context, filter domainRepo.SalesFilter) (*domainRepo.SalesSummary, error) {
	var summary domainRepo.SalesSummary
	err := r.scoped(ctx, filter).
		Select("COUNT(*) AS total_orders, COALESCE(SUM(total_amount), 0) AS total_revenue").
		Scan(&summary).Error
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (r *salesRepository) ListSalePoints(ctx context.Context, filter domainRepo.SalesFilter) ([]domainRepo.SalePoint, error) {
	var points []domainRepo.SalePoint
	err := r.scoped(ctx, filter).
		Select("created_at, total_amount").
		Order("created_at ASC").
		Scan(&points).Error
	return points, err
}

func (r *salesRepository) ProductQuantities(ctx context.Context, limit int, top bool) ([]domainRepo.ProductQuantity, error) {
	direction := "ASC"
	if top {
		direction = "DESC"
	}

	var rows []domainRepo.ProductQuantity
	err := GetDB(ctx, r.db).Model(&entity.InvoiceItem{}).
		Select("product_id, MAX(product_name) AS product_name, SUM(quantity) AS total_quantity, COALESCE(SUM(total), 0) AS total_revenue").
		Group("product_id").
		Order("total_quantity " + direction).
		Order("product_name ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *salesRepository) BillerOrderCounts(ctx context.Context) ([]domainRepo.BillerOrderCount, error) {
	var rows []domainRepo.BillerOrderCount
	err := GetDB(ctx, r.db).Table("users AS u").
		Select("u.id AS user_id, u.name AS name, u.email AS email, COUNT(i.id) AS order_count").
		Joins("LEFT JOIN invoices AS i ON i.created_by = u.id").
		Where("u.role = ?", enum.RoleBiller).
		Group("u.id, u.name, u.email").
		Order("order_count DESC").
		Order("u.name ASC").
		Scan(&rows).Error
	return rows, err
}
