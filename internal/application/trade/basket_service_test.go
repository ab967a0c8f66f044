package trade

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/marketplace/backend/internal/domain/identity"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/domain/trade"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var buyer = identity.Actor{UserID: 1, Type: identity.UserTypeBuyer}

var checkoutTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type basketFixture struct {
	orders    *MockOrderRepository
	products  *MockProductRepository
	contacts  *MockContactRepository
	publisher *MockEventPublisher
	svc       *BasketService
}

func newBasketFixture() *basketFixture {
	f := &basketFixture{
		orders:    new(MockOrderRepository),
		products:  new(MockProductRepository),
		contacts:  new(MockContactRepository),
		publisher: NewMockEventPublisher(),
	}
	scope := NewNoOpTransactionScope(f.orders, f.products, f.contacts)
	f.svc = NewBasketService(scope, f.orders, nil)
	f.svc.now = func() time.Time { return checkoutTime }
	f.svc.SetEventPublisher(f.publisher)
	return f
}

func basketWithItems(items ...trade.OrderItem) *trade.Order {
	o := trade.NewBasket(buyer.UserID)
	o.ID = 50
	o.Items = items
	return o
}

func TestBasketService_AddToBasket(t *testing.T) {
	ctx := context.Background()

	t.Run("merges repeated products and returns the basket", func(t *testing.T) {
		f := newBasketFixture()
		basket := basketWithItems()
		f.products.On("FindMissingIDs", mock.Anything, []int64{3, 7}).Return([]int64{}, nil)
		f.orders.On("GetOrCreateBasket", mock.Anything, int64(1)).Return(basket, nil)
		f.orders.On("MergeItems", mock.Anything, int64(50), []trade.ItemQuantity{{ProductID: 3, Quantity: 1}, {ProductID: 7, Quantity: 5}}).Return(nil)
		f.orders.On("FindBasket", mock.Anything, int64(1)).Return(basketWithItems(
			trade.OrderItem{ProductID: 3, Quantity: 1, ProductName: "Bolt", PriceRCC: 10},
			trade.OrderItem{ProductID: 7, Quantity: 5, ProductName: "Widget", PriceRCC: 150},
		), nil)

		resp, err := f.svc.AddToBasket(ctx, buyer, []trade.ItemQuantity{{ProductID: 7, Quantity: 2}, {ProductID: 3, Quantity: 1}, {ProductID: 7, Quantity: 3}})

		require.NoError(t, err)
		assert.False(t, resp.Empty)
		require.Len(t, resp.Items, 2)
		assert.Equal(t, int64(760), resp.TotalPrice)
		f.orders.AssertExpectations(t)
	})

	t.Run("missing items", func(t *testing.T) {
		f := newBasketFixture()

		_, err := f.svc.AddToBasket(ctx, buyer, nil)

		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "MISSING_ITEMS", de.Code)
		f.orders.AssertNotCalled(t, "GetOrCreateBasket", mock.Anything, mock.Anything)
	})

	t.Run("zero quantity", func(t *testing.T) {
		f := newBasketFixture()

		_, err := f.svc.AddToBasket(ctx, buyer, []trade.ItemQuantity{{ProductID: 7, Quantity: 0}})

		assert.Equal(t, shared.KindValidation, shared.KindOf(err))
	})

	t.Run("unknown product", func(t *testing.T) {
		f := newBasketFixture()
		f.products.On("FindMissingIDs", mock.Anything, []int64{99}).Return([]int64{99}, nil)

		_, err := f.svc.AddToBasket(ctx, buyer, []trade.ItemQuantity{{ProductID: 99, Quantity: 1}})

		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "PRODUCT_NOT_FOUND", de.Code)
		assert.Contains(t, de.Message, "99")
		f.orders.AssertNotCalled(t, "GetOrCreateBasket", mock.Anything, mock.Anything)
	})
}

func TestBasketService_ReplaceBasketItems(t *testing.T) {
	f := newBasketFixture()
	basket := basketWithItems()
	f.products.On("FindMissingIDs", mock.Anything, []int64{7}).Return([]int64{}, nil)
	f.orders.On("GetOrCreateBasket", mock.Anything, int64(1)).Return(basket, nil)
	f.orders.On("ReplaceItems", mock.Anything, int64(50), []trade.ItemQuantity{{ProductID: 7, Quantity: 4}}).Return(nil)
	f.orders.On("FindBasket", mock.Anything, int64(1)).Return(basketWithItems(
		trade.OrderItem{ProductID: 7, Quantity: 4, ProductName: "Widget", PriceRCC: 150},
	), nil)

	resp, err := f.svc.ReplaceBasketItems(context.Background(), buyer, []trade.ItemQuantity{{ProductID: 7, Quantity: 2}, {ProductID: 7, Quantity: 4}})

	require.NoError(t, err)
	assert.Equal(t, int64(600), resp.TotalPrice)
	f.orders.AssertNotCalled(t, "MergeItems", mock.Anything, mock.Anything, mock.Anything)
}

func TestBasketService_RemoveBasketItems(t *testing.T) {
	ctx := context.Background()

	t.Run("absent list", func(t *testing.T) {
		f := newBasketFixture()
		_, err := f.svc.RemoveBasketItems(ctx, buyer, nil)

		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "MISSING_ITEMS", de.Code)
	})

	t.Run("no basket is a no-op", func(t *testing.T) {
		f := newBasketFixture()
		f.orders.On("LockBasket", mock.Anything, int64(1)).Return(nil, shared.ErrNotFound)
		f.orders.On("FindBasket", mock.Anything, int64(1)).Return(nil, shared.ErrNotFound)

		resp, err := f.svc.RemoveBasketItems(ctx, buyer, []int64{7})

		require.NoError(t, err)
		assert.True(t, resp.Empty)
		f.orders.AssertNotCalled(t, "RemoveItems", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("removes lines under the basket lock", func(t *testing.T) {
		f := newBasketFixture()
		f.orders.On("LockBasket", mock.Anything, int64(1)).Return(basketWithItems(trade.OrderItem{ProductID: 7, Quantity: 1}), nil)
		f.orders.On("RemoveItems", mock.Anything, int64(50), []int64{7}).Return(int64(1), nil)
		f.orders.On("FindBasket", mock.Anything, int64(1)).Return(basketWithItems(), nil)

		resp, err := f.svc.RemoveBasketItems(ctx, buyer, []int64{7})

		require.NoError(t, err)
		assert.True(t, resp.Empty)
		assert.Equal(t, []BasketLineResponse{}, resp.Items)
		f.orders.AssertExpectations(t)
	})

	t.Run("storage error", func(t *testing.T) {
		f := newBasketFixture()
		f.orders.On("LockBasket", mock.Anything, int64(1)).Return(nil, errors.New("connection lost"))

		_, err := f.svc.RemoveBasketItems(ctx, buyer, []int64{7})

		assert.EqualError(t, err, "connection lost")
		f.orders.AssertNotCalled(t, "FindBasket", mock.Anything, mock.Anything)
	})
}

func TestBasketService_ViewBasket(t *testing.T) {
	f := newBasketFixture()
	f.orders.On("FindBasket", mock.Anything, int64(1)).Return(nil, shared.ErrNotFound)

	resp, err := f.svc.ViewBasket(context.Background(), buyer)

	require.NoError(t, err)
	assert.Equal(t, EmptyBasketResponse(), resp)
}

func TestBasketService_ClearBasket(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes the locked basket", func(t *testing.T) {
		f := newBasketFixture()
		f.orders.On("LockBasket", mock.Anything, int64(1)).Return(basketWithItems(), nil)
		f.orders.On("DeleteBasket", mock.Anything, int64(50)).Return(nil)

		require.NoError(t, f.svc.ClearBasket(ctx, buyer))
		f.orders.AssertExpectations(t)
		f.orders.AssertNotCalled(t, "FindBasket", mock.Anything, mock.Anything)
	})

	t.Run("no basket", func(t *testing.T) {
		f := newBasketFixture()
		f.orders.On("LockBasket", mock.Anything, int64(1)).Return(nil, shared.ErrNotFound)

		require.NoError(t, f.svc.ClearBasket(ctx, buyer))
		f.orders.AssertNotCalled(t, "DeleteBasket", mock.Anything, mock.Anything)
	})

	t.Run("basket placed before the delete", func(t *testing.T) {
		f := newBasketFixture()
		f.orders.On("LockBasket", mock.Anything, int64(1)).Return(basketWithItems(), nil)
		f.orders.On("DeleteBasket", mock.Anything, int64(50)).Return(shared.ErrNotFound)

		require.NoError(t, f.svc.ClearBasket(ctx, buyer))
	})
}

func TestBasketService_Checkout(t *testing.T) {
	ctx := context.Background()
	contact := &identity.ClientContact{UserID: 1}
	contact.ID = 9

	t.Run("places the order", func(t *testing.T) {
		f := newBasketFixture()
		basket := basketWithItems(trade.OrderItem{ProductID: 7, Quantity: 5, PriceRCC: 150})
		f.orders.On("LockBasket", mock.Anything, int64(1)).Return(basket, nil)
		f.orders.On("CountItems", mock.Anything, int64(50)).Return(int64(1), nil)
		f.contacts.On("FindByUserID", mock.Anything, int64(1)).Return(contact, nil)
		f.orders.On("MarkPlaced", mock.Anything, int64(50), int64(9), checkoutTime).Return(true, nil)

		resp, err := f.svc.Checkout(ctx, buyer)

		require.NoError(t, err)
		assert.Equal(t, "new", resp.Status)
		assert.Equal(t, checkoutTime, resp.Date)
		assert.Equal(t, int64(750), resp.TotalPrice)
		require.NotNil(t, resp.ContactID)
		assert.Equal(t, int64(9), *resp.ContactID)
		assert.Len(t, f.publisher.GetEventsByType(trade.EventTypeOrderPlaced), 1)
		assert.Empty(t, basket.GetDomainEvents())
	})

	t.Run("no basket is an empty basket", func(t *testing.T) {
		f := newBasketFixture()
		f.orders.On("LockBasket", mock.Anything, int64(1)).Return(nil, shared.ErrNotFound)

		_, err := f.svc.Checkout(ctx, buyer)

		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "EMPTY_BASKET", de.Code)
	})

	t.Run("zero items keeps the basket", func(t *testing.T) {
		f := newBasketFixture()
		basket := basketWithItems()
		f.orders.On("LockBasket", mock.Anything, int64(1)).Return(basket, nil)
		f.orders.On("CountItems", mock.Anything, int64(50)).Return(int64(0), nil)
		f.contacts.On("FindByUserID", mock.Anything, int64(1)).Return(contact, nil)

		_, err := f.svc.Checkout(ctx, buyer)

		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "EMPTY_BASKET", de.Code)
		assert.Equal(t, trade.OrderStatusBasket, basket.Status)
		f.orders.AssertNotCalled(t, "MarkPlaced", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("no contact", func(t *testing.T) {
		f := newBasketFixture()
		f.orders.On("LockBasket", mock.Anything, int64(1)).Return(basketWithItems(trade.OrderItem{ProductID: 7, Quantity: 1}), nil)
		f.orders.On("CountItems", mock.Anything, int64(50)).Return(int64(1), nil)
		f.contacts.On("FindByUserID", mock.Anything, int64(1)).Return(nil, shared.ErrNotFound)

		_, err := f.svc.Checkout(ctx, buyer)

		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "NO_CONTACT", de.Code)
		assert.Equal(t, shared.KindConflict, de.Kind)
	})

	t.Run("contact lookup failure", func(t *testing.T) {
		f := newBasketFixture()
		f.orders.On("LockBasket", mock.Anything, int64(1)).Return(basketWithItems(trade.OrderItem{ProductID: 7, Quantity: 1}), nil)
		f.orders.On("CountItems", mock.Anything, int64(50)).Return(int64(1), nil)
		f.contacts.On("FindByUserID", mock.Anything, int64(1)).Return(nil, errors.New("connection reset"))

		_, err := f.svc.Checkout(ctx, buyer)

		assert.EqualError(t, err, "connection reset")
	})

	t.Run("lost race on the conditional update", func(t *testing.T) {
		f := newBasketFixture()
		f.orders.On("LockBasket", mock.Anything, int64(1)).Return(basketWithItems(trade.OrderItem{ProductID: 7, Quantity: 1}), nil)
		f.orders.On("CountItems", mock.Anything, int64(50)).Return(int64(1), nil)
		f.contacts.On("FindByUserID", mock.Anything, int64(1)).Return(contact, nil)
		f.orders.On("MarkPlaced", mock.Anything, int64(50), int64(9), checkoutTime).Return(false, nil)

		_, err := f.svc.Checkout(ctx, buyer)

		assert.ErrorIs(t, err, shared.ErrInvalidState)
		assert.Empty(t, f.publisher.GetEventsByType(trade.EventTypeOrderPlaced))
	})
}
