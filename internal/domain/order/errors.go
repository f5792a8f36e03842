package order

import "fmt"

// ValidationError indicates a required order field is missing or invalid
// before save. The engine surfaces it immediately; user-facing messaging is
// the caller's concern.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid order: %s %s", e.Field, e.Reason)
}

// Validate checks the save-time invariants: a customer name, at least one
// line item, a known payment type, and a non-zero total.
func Validate(o *Order) error {
	if o.CustomerName == "" {
		return &ValidationError{Field: "customerName", Reason: "is required"}
	}
	if len(o.Items) == 0 {
		return &ValidationError{Field: "items", Reason: "must contain at least one line item"}
	}
	if !o.PaymentType.Valid() {
		return &ValidationError{Field: "paymentType", Reason: "must be cash or credit"}
	}
	if !o.Total.IsPositive() {
		return &ValidationError{Field: "total", Reason: "must be greater than zero"}
	}
	return nil
}
