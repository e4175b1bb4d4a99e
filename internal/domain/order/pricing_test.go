package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateTotals(t *testing.T) {
	totals, err := CalculateTotals([]LineDraft{
		{ProductID: 1, ProductName: "X", Price: decimal.RequireFromString("10.00"), Quantity: 2},
	})
	require.NoError(t, err)

	require.Len(t, totals.Items, 1)
	assert.Equal(t, "20.00", totals.Items[0].Amount.StringFixed(2))
	assert.Equal(t, "20.00", totals.Total.StringFixed(2))
	assert.Equal(t, "X", totals.Items[0].ProductName)
}

func TestCalculateTotals_NoFloatDrift(t *testing.T) {
	// 0.1 * 3 + 0.2 用float64会得到0.5000000000000001
	lines := []LineDraft{
		{ProductID: 1, Price: decimal.RequireFromString("0.10"), Quantity: 3},
		{ProductID: 2, Price: decimal.RequireFromString("0.20"), Quantity: 1},
		{ProductID: 3, Price: decimal.RequireFromString("19.99"), Quantity: 7},
	}

	totals, err := CalculateTotals(lines)
	require.NoError(t, err)

	assert.True(t, totals.Total.Equal(decimal.RequireFromString("140.43")), "got %s", totals.Total)

	o := &Order{Items: totals.Items, Total: totals.Total}
	assert.True(t, o.CalculateTotal().Equal(o.Total))
}

func TestCalculateTotals_SumMatchesForManyCombinations(t *testing.T) {
	var lines []LineDraft
	expected := decimal.Zero
	for cents := int64(1); cents <= 500; cents += 37 {
		price := decimal.New(cents, -2)
		qty := int(cents%9) + 1
		lines = append(lines, LineDraft{ProductID: uint(cents), Price: price, Quantity: qty})
		expected = expected.Add(decimal.New(cents*int64(qty), -2))
	}

	totals, err := CalculateTotals(lines)
	require.NoError(t, err)
	assert.True(t, expected.Equal(totals.Total))
}

func TestCalculateTotals_RejectsInvalidLines(t *testing.T) {
	_, err := CalculateTotals([]LineDraft{{ProductID: 1, Price: decimal.NewFromInt(-1), Quantity: 1}})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = CalculateTotals([]LineDraft{{ProductID: 1, Price: decimal.NewFromInt(1), Quantity: 0}})
	assert.ErrorIs(t, err, ErrInvalidAmount)
}
