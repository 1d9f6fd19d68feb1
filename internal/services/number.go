package services

import (
	"fmt"
	"math/rand/v2"
)

// Invoice numbers are drawn uniformly from this range. They are random rather
// than sequential, so collisions are possible and nothing checks for them;
// the number is a human-facing label, the row id is the real key.
const (
	numberPrefix = "INVO_"
	numberMin    = 255
	numberMax    = 255555
)

// NewInvoiceNumber produces a number of the form INVO_<n> with n in
// [255, 255555]. The same generator serves both ephemeral previews and
// persisted invoices.
func NewInvoiceNumber() string {
	n := numberMin + rand.IntN(numberMax-numberMin+1)
	return fmt.Sprintf("%s%d", numberPrefix, n)
}
