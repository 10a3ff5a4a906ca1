package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// InvoiceVariation is the sold quantity of one variation inside a cart item
type InvoiceVariation struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Total    decimal.Decimal `json:"total"`
}

// CartItem is a snapshotted invoice line
type CartItem struct {
	Product       uuid.UUID          `json:"product"`
	ProductName   string             `json:"productName"`
	CounterNo     int                `json:"counterNo"`
	TotalQuantity int                `json:"totalQuantity"`
	UnitPrice     decimal.Decimal    `json:"unitPrice"`
	Total         decimal.Decimal    `json:"total"`
	Variations    []InvoiceVariation `json:"variations"`
}

// CounterGroup holds the cart items prepared at one counter and the token
// the customer is called with
type CounterGroup struct {
	CounterNo          int        `json:"counterNo"`
	CounterTokenNumber int        `json:"counterTokenNumber"`
	Items              []CartItem `json:"items"`
}

// Invoice represents a completed sale. Invoices are immutable once created.
type Invoice struct {
	ID              uuid.UUID                         `gorm:"type:uuid;primary_key" json:"id"`
	InvoiceNumber   string                            `gorm:"size:64;uniqueIndex;not null" json:"invoiceNumber"`
	CustomerName    string                            `gorm:"size:255" json:"customerName,omitempty"`
	MobileNumber    string                            `gorm:"size:20" json:"mobileNumber,omitempty"`
	PaymentMode     enum.PaymentMode                  `gorm:"size:20;not null" json:"paymentMode"`
	ReferenceNumber string                            `gorm:"size:100" json:"referenceNumber,omitempty"`
	CartItems       datatypes.JSONSlice[CartItem]     `gorm:"not null" json:"cartItems"`
	TotalAmount     decimal.Decimal                   `gorm:"type:decimal(12,2);not null" json:"totalAmount"`
	CounterWiseData datatypes.JSONSlice[CounterGroup] `json:"counterWiseData"`
	CreatedBy       uuid.UUID                         `gorm:"type:uuid;not null;index" json:"createdBy"`
	CreatedAt       time.Time                         `gorm:"not null;index" json:"createdAt"`

	// Relationships
	Creator *User         `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	Items   []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new invoice
func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Invoice model
func (Invoice) TableName() string {
	return "invoices"
}

// InvoiceItem is the relational copy of a cart item used for reporting
type InvoiceItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName string          `gorm:"size:255;not null"`
	CounterNo   int             `gorm:"not null"`
	Quantity    int             `gorm:"not null"`
	Total       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt   time.Time
}

// BeforeCreate generates a UUID before creating a new invoice item
func (ii *InvoiceItem) BeforeCreate(tx *gorm.DB) error {
	if ii.ID == uuid.Nil {
		ii.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the InvoiceItem model
func (InvoiceItem) TableName() string {
	return "invoice_items"
}
