package services

import "strconv"

// Discount is the presentational amount/kind pair printed on the document.
// It is never subtracted from the invoice's persisted amount.
type Discount struct {
	Amount float64
	Kind   string
}

// ResolveDiscount applies the request-supplied discount only when both fields
// are non-empty; otherwise it resolves to (0, ""). The kind is not checked
// against any allowed set and the amount is not bounded by the invoice total;
// whatever the form sends is what the document shows.
func ResolveDiscount(rawAmount, rawKind string) Discount {
	if rawAmount == "" || rawKind == "" {
		return Discount{}
	}
	amount, _ := strconv.ParseFloat(rawAmount, 64)
	return Discount{Amount: amount, Kind: rawKind}
}
