package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveDiscount(t *testing.T) {
	cases := []struct {
		name   string
		amount string
		kind   string
		want   Discount
	}{
		{"both present", "10", "percent", Discount{Amount: 10, Kind: "percent"}},
		{"flat amount", "12.5", "flat", Discount{Amount: 12.5, Kind: "flat"}},
		{"amount missing", "", "percent", Discount{}},
		{"kind missing", "10", "", Discount{}},
		{"both missing", "", "", Discount{}},
		// no validation: unknown kinds and oversized amounts pass through
		{"unknown kind kept", "9000", "mystery", Discount{Amount: 9000, Kind: "mystery"}},
		{"unparsable amount", "abc", "percent", Discount{Amount: 0, Kind: "percent"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ResolveDiscount(tc.amount, tc.kind))
		})
	}
}
