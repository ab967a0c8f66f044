package trade

import (
	"testing"
	"time"

	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderStatusBasket, OrderStatusNew, true},
		{OrderStatusBasket, OrderStatusConfirmed, false},
		{OrderStatusBasket, OrderStatusCanceled, false},
		{OrderStatusNew, OrderStatusConfirmed, true},
		{OrderStatusNew, OrderStatusCanceled, true},
		{OrderStatusNew, OrderStatusSent, false},
		{OrderStatusConfirmed, OrderStatusSent, true},
		{OrderStatusConfirmed, OrderStatusCanceled, true},
		{OrderStatusSent, OrderStatusDelivered, true},
		{OrderStatusSent, OrderStatusCanceled, true},
		{OrderStatusDelivered, OrderStatusCanceled, false},
		{OrderStatusCanceled, OrderStatusNew, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestParseOrderStatus(t *testing.T) {
	s, err := ParseOrderStatus("sent")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusSent, s)

	_, err = ParseOrderStatus("shipped")
	require.Error(t, err)
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))
}

func TestOrder_Checkout(t *testing.T) {
	contactID := int64(9)
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("places basket with items and contact", func(t *testing.T) {
		o := NewBasket(1)
		o.ID = 100

		require.NoError(t, o.Checkout(2, &contactID, at))
		assert.Equal(t, OrderStatusNew, o.Status)
		assert.Equal(t, at, o.Date)
		assert.Equal(t, &contactID, o.ContactID)
		require.Len(t, o.GetDomainEvents(), 1)
		evt := o.GetDomainEvents()[0].(*OrderPlacedEvent)
		assert.Equal(t, int64(9), evt.ContactID)
	})

	t.Run("empty basket keeps status", func(t *testing.T) {
		o := NewBasket(1)
		err := o.Checkout(0, &contactID, at)

		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "EMPTY_BASKET", de.Code)
		assert.Equal(t, shared.KindConflict, de.Kind)
		assert.Equal(t, OrderStatusBasket, o.Status)
	})

	t.Run("missing contact", func(t *testing.T) {
		o := NewBasket(1)
		err := o.Checkout(1, nil, at)

		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "NO_CONTACT", de.Code)
		assert.Nil(t, o.ContactID)
	})

	t.Run("already placed", func(t *testing.T) {
		o := NewBasket(1)
		o.Status = OrderStatusNew
		err := o.Checkout(1, &contactID, at)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})
}

func TestOrder_ChangeStatus(t *testing.T) {
	o := NewBasket(1)
	o.Status = OrderStatusNew

	require.NoError(t, o.ChangeStatus(OrderStatusConfirmed))
	require.NoError(t, o.ChangeStatus(OrderStatusSent))
	assert.ErrorIs(t, o.ChangeStatus(OrderStatusConfirmed), shared.ErrInvalidState)
	require.NoError(t, o.ChangeStatus(OrderStatusDelivered))
	assert.ErrorIs(t, o.ChangeStatus(OrderStatusCanceled), shared.ErrInvalidState)

	assert.Len(t, o.GetDomainEvents(), 3)

	basket := NewBasket(2)
	assert.ErrorIs(t, basket.ChangeStatus(OrderStatusNew), shared.ErrInvalidState)
	assert.Error(t, basket.ChangeStatus(OrderStatus("lost")))
}

func TestOrder_Total(t *testing.T) {
	o := &Order{Items: []OrderItem{
		{ProductID: 1, Quantity: 2, PriceRCC: 150},
		{ProductID: 2, Quantity: 1, PriceRCC: 40},
	}}
	assert.Equal(t, int64(340), o.Total())
}

func TestMergeRequestItems(t *testing.T) {
	t.Run("sums repeated products", func(t *testing.T) {
		items, err := MergeRequestItems([]ItemQuantity{{7, 2}, {3, 1}, {7, 3}})

		require.NoError(t, err)
		assert.Equal(t, []ItemQuantity{{3, 1}, {7, 5}}, items)
	})

	t.Run("missing items", func(t *testing.T) {
		_, err := MergeRequestItems(nil)

		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "MISSING_ITEMS", de.Code)
	})

	t.Run("zero quantity", func(t *testing.T) {
		_, err := MergeRequestItems([]ItemQuantity{{7, 0}})

		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "INVALID_QUANTITY", de.Code)
	})
}

func TestReplaceRequestItems(t *testing.T) {
	items, err := ReplaceRequestItems([]ItemQuantity{{7, 2}, {7, 4}})

	require.NoError(t, err)
	assert.Equal(t, []ItemQuantity{{7, 4}}, items)
	assert.Equal(t, []int64{7}, ProductIDs(items))
}
