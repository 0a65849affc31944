package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestClassifyVariance(t *testing.T) {
	cases := []struct {
		counted, computed string
		want              string
	}{
		{"1000", "1000", "balanced"},
		{"990", "1000", "balanced"},  // -1.00%
		{"1010", "1000", "balanced"}, // +1.00%
		{"989", "1000", "minor"},
		{"950", "1000", "minor"}, // -5.00%
		{"1050", "1000", "minor"},
		{"949", "1000", "critical"},
		{"1051", "1000", "critical"},
		{"0", "0", "balanced"},
		{"10", "0", "critical"},
	}
	for _, tc := range cases {
		counted := decimal.RequireFromString(tc.counted)
		computed := decimal.RequireFromString(tc.computed)
		variance := counted.Sub(computed)
		var pct decimal.Decimal
		if !computed.IsZero() {
			pct = variance.Div(computed).Mul(decimal.NewFromInt(100)).Round(2)
		}
		assert.Equal(t, tc.want, classifyVariance(variance, pct, computed), "%s vs %s", tc.counted, tc.computed)
	}
}
