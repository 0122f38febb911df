package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestQuote(t *testing.T) {
	base := decimal.NewFromFloat(100.00)

	tests := []struct {
		name     string
		category Category
		want     string
	}{
		{"business gets 25 percent off", CategoryBusiness, "75"},
		{"normal pays base price", CategoryNormal, "100"},
		{"guest pays 10 percent markup", CategoryGuest, "110"},
		{"unknown category treated as normal", Category("vip"), "100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Quote(base, tt.category)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
				"Quote(%s, %s) = %s, want %s", base, tt.category, got, tt.want)
		})
	}
}

func TestQuoteRounding(t *testing.T) {
	// 19.99 * 1.10 = 21.989 -> 21.99
	got := Quote(decimal.RequireFromString("19.99"), CategoryGuest)
	assert.Equal(t, "21.99", got.StringFixed(2))

	// 19.99 * 0.75 = 14.9925 -> 14.99
	got = Quote(decimal.RequireFromString("19.99"), CategoryBusiness)
	assert.Equal(t, "14.99", got.StringFixed(2))
}

func TestCategoryOf(t *testing.T) {
	assert.Equal(t, CategoryGuest, CategoryOf(false, ""))
	assert.Equal(t, CategoryGuest, CategoryOf(false, "business"))
	assert.Equal(t, CategoryNormal, CategoryOf(true, "normal"))
	assert.Equal(t, CategoryNormal, CategoryOf(true, "something_else"))
	assert.Equal(t, CategoryBusiness, CategoryOf(true, "business"))
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(5500), MinorUnits(decimal.RequireFromString("55.00")))
	assert.Equal(t, int64(2199), MinorUnits(decimal.RequireFromString("21.99")))
	assert.True(t, FromMinorUnits(5500).Equal(decimal.RequireFromString("55")))
}
