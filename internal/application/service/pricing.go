package service

import (
	"strings"

	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

// RupeeSign prefixes formatted price ranges
const RupeeSign = "₹"

// ComputeDisplayPrice returns basePrice unchanged for a product without
// variations, or "₹<min>-<max>" over the variation prices. A single variation
// still renders as a range.
func ComputeDisplayPrice(basePrice string, variations []entity.Variation) string {
	if len(variations) == 0 {
		return basePrice
	}

	lo, hi := variations[0].Price, variations[0].Price
	for _, v := range variations[1:] {
		if v.Price.LessThan(lo) {
			lo = v.Price
		}
		if v.Price.GreaterThan(hi) {
			hi = v.Price
		}
	}
	return RupeeSign + lo.String() + "-" + hi.String()
}

// ComputeLineTotal returns unitPrice * quantity
func ComputeLineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// ParseFlatPrice parses the price of a product sold without variations
func ParseFlatPrice(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), RupeeSign))
	if raw == "" {
		return decimal.Zero, apperror.NewFieldError("price", "Price is required")
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, apperror.NewFieldError("price", "Price must be a number")
	}
	if price.IsNegative() {
		return decimal.Zero, apperror.NewFieldError("price", "Price cannot be negative")
	}
	if !entity.FitsMoneyScale(price) {
		return decimal.Zero, apperror.NewFieldError("price", "Price can have at most 2 decimal places")
	}
	return price, nil
}

// applyPricing sets the display and base price of p from its variations or
// the flat price the admin entered
func applyPricing(p *entity.Product, flatPrice string) error {
	if p.HasVariations() {
		seen := make(map[string]bool, len(p.Variations))
		for i, v := range p.Variations {
			name := strings.TrimSpace(v.Name)
			if name == "" {
				return apperror.NewFieldError("variations", "Variation name is required")
			}
			if seen[strings.ToLower(name)] {
				return apperror.NewFieldError("variations", "Variation names must be unique")
			}
			if v.Price.IsNegative() {
				return apperror.NewFieldError("variations", "Variation price cannot be negative")
			}
			if !entity.FitsMoneyScale(v.Price) {
				return apperror.NewFieldError("variations", "Variation price can have at most 2 decimal places")
			}
			seen[strings.ToLower(name)] = true
			p.Variations[i].Name = name
		}
		p.Price = ComputeDisplayPrice(flatPrice, p.Variations)
		p.BasePrice = decimal.Zero
		return nil
	}

	price, err := ParseFlatPrice(flatPrice)
	if err != nil {
		return err
	}
	p.Price = ComputeDisplayPrice(price.String(), nil)
	p.BasePrice = price
	return nil
}
