package trade

import (
	"context"
	"time"
)

// OrderRepository defines the interface for order and basket persistence
type OrderRepository interface {
	// FindByID finds an order with its items
	FindByID(ctx context.Context, id int64) (*Order, error)

	// FindBasket returns the user's open basket with its items, or shared.ErrNotFound
	FindBasket(ctx context.Context, userID int64) (*Order, error)

	// GetOrCreateBasket returns the user's open basket, inserting it when absent.
	// The partial unique index on (user_id) WHERE status = 'basket' makes
	// concurrent callers converge on the same row.
	GetOrCreateBasket(ctx context.Context, userID int64) (*Order, error)

	// LockBasket returns the user's open basket under a row lock
	LockBasket(ctx context.Context, userID int64) (*Order, error)

	// MergeItems adds quantities to existing lines or creates new lines
	MergeItems(ctx context.Context, orderID int64, items []ItemQuantity) error

	// ReplaceItems sets line quantities, creating lines as needed
	ReplaceItems(ctx context.Context, orderID int64, items []ItemQuantity) error

	// RemoveItems deletes basket lines for the given products and returns how many
	// were removed. It never touches the lines of a placed order.
	RemoveItems(ctx context.Context, orderID int64, productIDs []int64) (int64, error)

	// CountItems returns the number of lines of an order
	CountItems(ctx context.Context, orderID int64) (int64, error)

	// MarkPlaced performs the basket to new transition in a single conditional update.
	// It returns false when the order was no longer a basket.
	MarkPlaced(ctx context.Context, orderID, contactID int64, at time.Time) (bool, error)

	// UpdateStatus moves an order from one status to another, returning false
	// when the stored status no longer matches from
	UpdateStatus(ctx context.Context, orderID int64, from, to OrderStatus) (bool, error)

	// DeleteBasket removes a basket and its lines, or returns shared.ErrNotFound
	// when the order is gone or no longer a basket
	DeleteBasket(ctx context.Context, orderID int64) error

	// FindByUser lists a user's placed orders (never the basket), newest first
	FindByUser(ctx context.Context, userID int64) ([]Order, error)
}

// ShopOrderContact is the delivery contact as shown to a shop
type ShopOrderContact struct {
	City   string
	Street string
	House  string
	Phone  string
}

// ShopOrderLine is an order line belonging to the viewing shop
type ShopOrderLine struct {
	ProductID  int64
	ExternalID int64
	Name       string
	Quantity   int64
}

// ShopOrder is a placed order as seen by one shop: only that shop's lines are present
type ShopOrder struct {
	OrderID   int64
	UserEmail string
	Contact   *ShopOrderContact
	Date      time.Time
	Status    OrderStatus
	Products  []ShopOrderLine
}

// ShopOrderQuery reads the shop-scoped order view
type ShopOrderQuery interface {
	// FindShopOrders returns placed orders containing at least one of the shop's
	// products, newest first, each listed once with only the shop's lines.
	// A nil status means any status except basket.
	FindShopOrders(ctx context.Context, shopID int64, status *OrderStatus) ([]ShopOrder, error)
}
