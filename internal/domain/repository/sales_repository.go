package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalesFilter selects the invoices an aggregation runs over
type SalesFilter struct {
	From      time.Time
	To        time.Time
	CreatedBy *uuid.UUID
}

// SalesSummary is the flat total over a filtered range
type SalesSummary struct {
	TotalOrders  int64
	TotalRevenue decimal.Decimal
}

// SalePoint is the minimum an invoice contributes to bucketing
type SalePoint struct {
	CreatedAt   time.Time
	TotalAmount decimal.Decimal
}

// ProductQuantity is a product's total sold quantity
type ProductQuantity struct {
	ProductID     uuid.UUID
	ProductName   string
	TotalQuantity int64
	TotalRevenue  decimal.Decimal
}

// BillerOrderCount is the number of invoices created by a biller
type BillerOrderCount struct {
	UserID     uuid.UUID
	Name       string
	Email      string
	OrderCount int64
}

// SalesRepository defines read-only aggregation queries over invoices
type SalesRepository interface {
	Summary(ctx context.Context, filter SalesFilter) (*SalesSummary, error)
	ListSalePoints(ctx context.Context, filter SalesFilter) ([]SalePoint, error)
	// ProductQuantities returns up to limit products ordered by quantity,
	// descending when top is true
	ProductQuantities(ctx context.Context, limit int, top bool) ([]ProductQuantity, error)
	BillerOrderCounts(ctx context.Context) ([]BillerOrderCount, error)
}
