package trade

import (
	"fmt"
	"time"

	"github.com/marketplace/backend/internal/domain/shared"
)

// OrderStatus represents the status of an order
type OrderStatus string

const (
	OrderStatusBasket    OrderStatus = "basket"
	OrderStatusNew       OrderStatus = "new"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusSent      OrderStatus = "sent"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCanceled  OrderStatus = "canceled"
)

// AllOrderStatuses lists every status in lifecycle order
var AllOrderStatuses = []OrderStatus{
	OrderStatusBasket,
	OrderStatusNew,
	OrderStatusConfirmed,
	OrderStatusSent,
	OrderStatusDelivered,
	OrderStatusCanceled,
}

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusBasket, OrderStatusNew, OrderStatusConfirmed, OrderStatusSent, OrderStatusDelivered, OrderStatusCanceled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no further transitions are possible
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCanceled
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusBasket:
		return target == OrderStatusNew
	case OrderStatusNew:
		return target == OrderStatusConfirmed || target == OrderStatusCanceled
	case OrderStatusConfirmed:
		return target == OrderStatusSent || target == OrderStatusCanceled
	case OrderStatusSent:
		return target == OrderStatusDelivered || target == OrderStatusCanceled
	case OrderStatusDelivered, OrderStatusCanceled:
		return false
	}
	return false
}

// ParseOrderStatus validates a status supplied by a caller
func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(s)
	if !status.IsValid() {
		return "", shared.NewValidationError("INVALID_STATUS", fmt.Sprintf("Unknown order status %q", s))
	}
	return status, nil
}

// Order is a buyer's order. While Status is basket it acts as the mutable cart.
type Order struct {
	shared.BaseAggregateRoot
	UserID    int64
	Status    OrderStatus
	Date      time.Time
	ContactID *int64
	Items     []OrderItem
}

// NewBasket creates the open basket order for a user
func NewBasket(userID int64) *Order {
	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		Status:            OrderStatusBasket,
	}
	o.Date = o.CreatedAt
	return o
}

// IsBasket reports whether the order is still an open basket
func (o *Order) IsBasket() bool {
	return o.Status == OrderStatusBasket
}

// Checkout validates that a basket with itemCount lines can be placed with
// the given contact and applies the transition to new.
func (o *Order) Checkout(itemCount int64, contactID *int64, at time.Time) error {
	if !o.IsBasket() {
		return shared.ErrInvalidState.WithMessage("Only a basket can be checked out")
	}
	if itemCount <= 0 {
		return ErrEmptyBasket()
	}
	if contactID == nil {
		return ErrNoContact()
	}
	o.Status = OrderStatusNew
	o.Date = at
	o.ContactID = contactID
	o.UpdatedAt = at
	o.AddDomainEvent(NewOrderPlacedEvent(o, itemCount))
	return nil
}

// ChangeStatus moves a placed order along the lifecycle
func (o *Order) ChangeStatus(target OrderStatus) error {
	if !target.IsValid() {
		return shared.NewValidationError("INVALID_STATUS", fmt.Sprintf("Unknown order status %q", target))
	}
	if !o.Status.CanTransitionTo(target) || target == OrderStatusNew {
		return shared.ErrInvalidState.WithMessage(fmt.Sprintf("Cannot change order status from %s to %s", o.Status, target))
	}
	from := o.Status
	o.Status = target
	o.Touch()
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, from))
	return nil
}

// Total returns the sum of retail price times quantity over all lines
func (o *Order) Total() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.LineTotal()
	}
	return total
}

// OrderItem is one product line of an order
type OrderItem struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Quantity  int64

	// Read-side product snapshot filled by queries
	ProductName string
	ExternalID  int64
	ShopID      int64
	PriceRCC    int64
}

// LineTotal returns price_rcc * quantity
func (i OrderItem) LineTotal() int64 {
	return i.PriceRCC * i.Quantity
}
