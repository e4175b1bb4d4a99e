package order

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrder_StatusTransitions(t *testing.T) {
	o := NewOrder("ORD1", 1, 2, nil, decimal.Zero)
	assert.Equal(t, OrderStatusPending, o.Status)

	assert.ErrorIs(t, o.Ship(), ErrInvalidStatusTransition)
	require.NoError(t, o.Pay())
	require.NoError(t, o.Ship())
	assert.ErrorIs(t, o.Cancel(), ErrInvalidStatusTransition)
	require.NoError(t, o.Complete())
	assert.False(t, o.CanTransitionTo(OrderStatusCancelled))
}

func TestOrder_UpdateRemark(t *testing.T) {
	o := NewOrder("ORD1", 1, 2, nil, decimal.Zero)

	require.NoError(t, o.UpdateRemark("放门口"))
	assert.Equal(t, "放门口", o.Remark)

	assert.ErrorIs(t, o.UpdateRemark(strings.Repeat("长", MaxRemarkLength+1)), ErrInvalidRemark)
	assert.Equal(t, "放门口", o.Remark)
}

func TestGenerateOrderNo(t *testing.T) {
	no := GenerateOrderNo()
	assert.True(t, strings.HasPrefix(no, "ORD"))
	assert.Len(t, no, 3+10+6)
}
