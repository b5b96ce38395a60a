package entity_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/restaurant-inventory/internal/domain/entity"
)

func TestQuantityFits(t *testing.T) {
	cases := []struct {
		raw  string
		want bool
	}{
		{"1", true},
		{"0.0001", true},
		{"2.50000", true},
		{"99999999999999.9999", true},
		{"1.23456", false},
		{"0.00001", false},
		{"100000000000000", false},
		{"1e15", false},
		{"-1e15", false},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			assert.Equal(t, tc.want, entity.QuantityFits(decimal.RequireFromString(tc.raw)))
		})
	}
}
