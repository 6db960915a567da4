package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var allStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

func TestStockAdjustmentsMatrix(t *testing.T) {
	items := []OrderItem{
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 1},
	}

	for _, prev := range allStatuses {
		for _, next := range allStatuses {
			adjustments := StockAdjustments(prev, next, items)

			entering := next == OrderStatusDelivered && prev != OrderStatusDelivered
			leaving := prev == OrderStatusDelivered && next != OrderStatusDelivered

			switch {
			case entering:
				assert.Equal(t, []StockAdjustment{
					{ProductID: 1, Delta: -2},
					{ProductID: 2, Delta: -1},
				}, adjustments, "prev=%s next=%s", prev, next)
			case leaving:
				assert.Equal(t, []StockAdjustment{
					{ProductID: 1, Delta: 2},
					{ProductID: 2, Delta: 1},
				}, adjustments, "prev=%s next=%s", prev, next)
			default:
				assert.Nil(t, adjustments, "prev=%s next=%s", prev, next)
			}
		}
	}
}

func TestStockAdjustmentsRepeatDeliveredIsNoOp(t *testing.T) {
	items := []OrderItem{{ProductID: 1, Quantity: 3}}
	assert.Nil(t, StockAdjustments(OrderStatusDelivered, OrderStatusDelivered, items))
}

func TestStockAdjustmentsEmptyOrder(t *testing.T) {
	assert.Empty(t, StockAdjustments(OrderStatusPending, OrderStatusDelivered, nil))
}
