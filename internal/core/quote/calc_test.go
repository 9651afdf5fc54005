package quote

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustItem(t *testing.T, id string, qty int, cost, price float64) LineItem {
	t.Helper()
	li, err := NewLineItem(id, "item "+id, qty, cost, price)
	require.NoError(t, err)
	return li
}

func TestLineMargin(t *testing.T) {
	tests := []struct {
		name        string
		cost, price float64
		want        float64
	}{
		{"half", 5, 10, 0.5},
		{"zero price", 5, 0, 0},
		{"zero cost", 0, 10, 1},
		{"loss", 12, 10, -0.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, LineMargin(tt.cost, tt.price), 1e-9)
		})
	}
}

func TestSummarize_SingleItem(t *testing.T) {
	items := Items{}.Add(mustItem(t, "a", 10, 5, 10))

	sum, err := Summarize(items, 0, MarginWholesale, DefaultPolicy())
	require.NoError(t, err)

	assert.InDelta(t, 100.00, sum.Subtotal, 1e-9)
	assert.InDelta(t, 8.00, sum.Tax, 1e-9)
	assert.InDelta(t, 108.00, sum.Total, 1e-9)
	assert.InDelta(t, 0.5, sum.OverallMargin, 1e-9)
	assert.False(t, sum.BelowGuardrail)
	assert.False(t, sum.AboveGuardrail)
	assert.Equal(t, "$108.00", FormatMoney(sum.Total))
}

func TestSummarize_LowPriceTripsGuardrail(t *testing.T) {
	items := Items{}.Add(mustItem(t, "a", 10, 5, 6))

	sum, err := Summarize(items, 0, MarginWholesale, DefaultPolicy())
	require.NoError(t, err)

	assert.InDelta(t, 0.1667, sum.OverallMargin, 1e-4)
	assert.True(t, sum.BelowGuardrail)
}

func TestSummarize_EmptyNeverTrips(t *testing.T) {
	p := DefaultPolicy()
	for _, mt := range p.MarginTypes() {
		sum, err := Summarize(nil, 0, mt, p)
		require.NoError(t, err)
		assert.Zero(t, sum.OverallMargin)
		assert.False(t, sum.BelowGuardrail, mt)
		assert.False(t, sum.AboveGuardrail, mt)
	}
}

func TestSummarize_Discount(t *testing.T) {
	items := Items{}.Add(mustItem(t, "a", 10, 5, 10))

	sum, err := Summarize(items, 20, MarginEvent, DefaultPolicy())
	require.NoError(t, err)
	assert.InDelta(t, 88.00, sum.Total, 1e-9, "tax is on the undiscounted subtotal")

	_, err = Summarize(items, -1, MarginEvent, DefaultPolicy())
	require.ErrorIs(t, err, ErrNegativeAmount)
}

func TestSummarize_UnknownMarginType(t *testing.T) {
	_, err := Summarize(nil, 0, MarginType("bulk"), DefaultPolicy())
	require.ErrorIs(t, err, ErrUnknownMarginType)
}

func TestSummarize_AboveGuardrail(t *testing.T) {
	items := Items{}.Add(mustItem(t, "a", 1, 1, 10))

	sum, err := Summarize(items, 0, MarginRetail, DefaultPolicy())
	require.NoError(t, err)
	assert.True(t, sum.AboveGuardrail)
	assert.False(t, sum.BelowGuardrail)
}

func TestOverallMargin_IsAggregateNotMean(t *testing.T) {
	items := Items{}.
		Add(mustItem(t, "a", 1, 50, 100)).
		Add(mustItem(t, "b", 10, 0.9, 1))

	// revenue 110, cost 59
	assert.InDelta(t, 51.0/110.0, OverallMargin(items), 1e-9)
	assert.InDelta(t, 0.3, MeanLineMargin(items), 1e-9)
	assert.NotEqual(t, MeanLineMargin(items), OverallMargin(items))
}

func TestOverallMargin_EqualTotalsMatchMean(t *testing.T) {
	items := Items{}.
		Add(mustItem(t, "a", 1, 50, 100)).
		Add(mustItem(t, "b", 100, 0.9, 1))

	assert.InDelta(t, MeanLineMargin(items), OverallMargin(items), 1e-9)
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{8, "$8.00"},
		{1234.5, "$1,234.50"},
		{1234567.891, "$1,234,567.89"},
		{-42.1, "-$42.10"},
		{-0.001, "$0.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatMoney(tt.in))
	}
}

func TestPolicy_ParseMarginType(t *testing.T) {
	p := DefaultPolicy()

	mt, err := p.ParseMarginType("  Retail ")
	require.NoError(t, err)
	assert.Equal(t, MarginRetail, mt)

	_, err = p.ParseMarginType("bulk")
	require.ErrorIs(t, err, ErrUnknownMarginType)

	assert.Equal(t, []MarginType{MarginEvent, MarginRetail, MarginWholesale}, p.MarginTypes())
}
