package enum

// SalesPeriod selects how the sales overview buckets revenue
type SalesPeriod string

const (
	PeriodNone    SalesPeriod = ""
	PeriodDaily   SalesPeriod = "daily"
	PeriodWeekly  SalesPeriod = "weekly"
	PeriodMonthly SalesPeriod = "monthly"
)

// ParseSalesPeriod maps unknown values, including "none", to PeriodNone
func ParseSalesPeriod(s string) SalesPeriod {
	switch SalesPeriod(s) {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return SalesPeriod(s)
	}
	return PeriodNone
}
