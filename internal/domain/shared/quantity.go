package shared

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultLocation is used when a caller does not name a storage location
const DefaultLocation = "MAIN"

// NormalizeLocation trims the location and falls back to DefaultLocation
func NormalizeLocation(location string) string {
	location = strings.TrimSpace(location)
	if location == "" {
		return DefaultLocation
	}
	return location
}

// RequirePositive returns a ValidationError unless q > 0
func RequirePositive(field string, q decimal.Decimal) error {
	if !q.IsPositive() {
		return NewValidationError(field, "must be greater than zero")
	}
	return nil
}

// RequireNonNegative returns a ValidationError when q < 0
func RequireNonNegative(field string, q decimal.Decimal) error {
	if q.IsNegative() {
		return NewValidationError(field, "cannot be negative")
	}
	return nil
}

// MinDecimal returns the smaller of a and b
func MinDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// ClampZero returns q, or zero when q is negative
func ClampZero(q decimal.Decimal) decimal.Decimal {
	if q.IsNegative() {
		return decimal.Zero
	}
	return q
}
