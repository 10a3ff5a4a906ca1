package service

import (
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// LineItem is one resolved cart line. It is either WithVariation or
// FlatPriced.
type LineItem interface {
	product() *entity.Product
	quantity() int
	unitPrice() decimal.Decimal
	variations() []entity.InvoiceVariation
}

// WithVariation is a line sold by one of the product's variations
type WithVariation struct {
	Product   *entity.Product
	Variation entity.Variation
	Quantity  int
}

// FlatPriced is a line sold at the product's flat price
type FlatPriced struct {
	Product   *entity.Product
	UnitPrice decimal.Decimal
	Quantity  int
}

func (l WithVariation) product() *entity.Product   { return l.Product }
func (l WithVariation) quantity() int              { return l.Quantity }
func (l WithVariation) unitPrice() decimal.Decimal { return l.Variation.Price }
func (l WithVariation) variations() []entity.InvoiceVariation {
	return []entity.InvoiceVariation{{
		Name:     l.Variation.Name,
		Price:    l.Variation.Price,
		Quantity: l.Quantity,
		Total:    ComputeLineTotal(l.Variation.Price, l.Quantity),
	}}
}

func (l FlatPriced) product() *entity.Product              { return l.Product }
func (l FlatPriced) quantity() int                         { return l.Quantity }
func (l FlatPriced) unitPrice() decimal.Decimal            { return l.UnitPrice }
func (l FlatPriced) variations() []entity.InvoiceVariation { return []entity.InvoiceVariation{} }

// toCartItem snapshots a line into the persisted cart item shape
func toCartItem(line LineItem) entity.CartItem {
	p := line.product()
	item := entity.CartItem{
		Product:       p.ID,
		ProductName:   p.Name,
		CounterNo:     p.CounterNo,
		TotalQuantity: line.quantity(),
		UnitPrice:     line.unitPrice(),
		Variations:    line.variations(),
	}

	switch line.(type) {
	case WithVariation:
		total := decimal.Zero
		for _, v := range item.Variations {
			total = total.Add(v.Total)
		}
		item.Total = total
	case FlatPriced:
		item.Total = ComputeLineTotal(item.UnitPrice, item.TotalQuantity)
	}
	return item
}
