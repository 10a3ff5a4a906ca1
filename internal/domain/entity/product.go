package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Variation is a priced option of a product (e.g. Small / Large)
type Variation struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// Product represents a sellable catalog item
type Product struct {
	ID         uuid.UUID                      `gorm:"type:uuid;primary_key" json:"id"`
	Name       string                         `gorm:"size:255;not null" json:"name"`
	ImageURL   string                         `gorm:"size:512" json:"imageUrl,omitempty"`
	CategoryID uuid.UUID                      `gorm:"type:uuid;not null;index" json:"categoryId"`
	Price      string                         `gorm:"size:64;not null" json:"price"` // flat number or "₹min-max"
	BasePrice  decimal.Decimal                `gorm:"type:decimal(12,2);not null;default:0" json:"-"`
	CounterNo  int                            `gorm:"not null;index" json:"counterNo"`
	Variations datatypes.JSONSlice[Variation] `json:"variations"`
	CreatedAt  time.Time                      `json:"createdAt"`
	UpdatedAt  time.Time                      `json:"updatedAt"`
	DeletedAt  gorm.DeletedAt                 `gorm:"index" json:"-"`

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// BeforeCreate generates a UUID before creating a new product
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// HasVariations reports whether the product is sold by variation
func (p *Product) HasVariations() bool {
	return len(p.Variations) > 0
}

// FindVariation looks up a variation by name
func (p *Product) FindVariation(name string) (Variation, bool) {
	for _, v := range p.Variations {
		if v.Name == name {
			return v, true
		}
	}
	return Variation{}, false
}

// Category represents a product category served from one counter
type Category struct {
	ID            uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Name          string         `gorm:"size:255;not null" json:"name"`
	ImageURL      string         `gorm:"size:512" json:"imageUrl,omitempty"`
	CounterNo     int            `gorm:"not null;index" json:"counterNo"`
	TotalProducts int            `gorm:"not null;default:0" json:"totalProducts"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new category
func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Category model
func (Category) TableName() string {
	return "categories"
}
