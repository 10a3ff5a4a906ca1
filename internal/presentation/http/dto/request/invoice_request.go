package request

import "github.com/shopspring/decimal"

// SelectedVariationRequest is the variation picked for a cart line
type SelectedVariationRequest struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// CartItemRequest is one line of the submitted cart
type CartItemRequest struct {
	Product           string                    `json:"product" binding:"required"`
	SelectedVariation *SelectedVariationRequest `json:"selectedVariation"`
	Quantity          int                       `json:"quantity"`
}

// CreateInvoiceRequest represents an invoice creation request
type CreateInvoiceRequest struct {
	CustomerName    string            `json:"customerName"`
	MobileNumber    string            `json:"mobileNumber"`
	PaymentMode     string            `json:"paymentMode" binding:"required"`
	ReferenceNumber string            `json:"referenceNumber"`
	CartItems       []CartItemRequest `json:"cartItems"`
}

// InvoiceFilterRequest represents invoice list filters
type InvoiceFilterRequest struct {
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
	UserID    string `form:"userId"`
	Page      int    `form:"page"`
	PerPage   int    `form:"perPage"`
}

// SalesOverviewRequest represents the sales overview filters
type SalesOverviewRequest struct {
	UserID    string `form:"userId"`
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
	Period    string `form:"period"`
}
