package enum

import "strings"

// PaymentMode is how an invoice was settled
type PaymentMode string

const (
	PaymentModeCash   PaymentMode = "cash"
	PaymentModeOnline PaymentMode = "online"
)

// ParsePaymentMode normalizes client input. "upi" is accepted as an alias of online.
func ParsePaymentMode(s string) (PaymentMode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cash":
		return PaymentModeCash, true
	case "online", "upi":
		return PaymentModeOnline, true
	}
	return "", false
}

func (m PaymentMode) String() string {
	return string(m)
}
