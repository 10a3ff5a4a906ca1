package service

import (
	"regexp"
	"strings"

	"github.com/sangkips/pos-api/pkg/apperror"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\d{10}$`)
	upiPattern   = regexp.MustCompile(`^[\w.\-]+@[A-Za-z]+$`)
)

// ValidateEmail checks the address has a user, a domain and a TLD
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return apperror.NewFieldError("email", "Please enter a valid email")
	}
	return nil
}

// ValidatePhone requires exactly 10 digits
func ValidatePhone(phone string) error {
	if !phonePattern.MatchString(phone) {
		return apperror.NewFieldError("phone", "Phone number must be 10 digits")
	}
	return nil
}

// ValidateUpiID checks the "user@bank" format
func ValidateUpiID(upiID string) error {
	if !upiPattern.MatchString(upiID) {
		return apperror.NewFieldError("upiId", "Invalid UPI ID format (e.g. name@bank)")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
