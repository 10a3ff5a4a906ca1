package entity

import "github.com/shopspring/decimal"

// MoneyScale is the number of decimal places the money columns store
const MoneyScale = 2

// FitsMoneyScale reports whether d is stored without rounding
func FitsMoneyScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(MoneyScale))
}

func init() {
	// amounts are JSON numbers on the wire
	decimal.MarshalJSONWithoutQuotes = true
}
