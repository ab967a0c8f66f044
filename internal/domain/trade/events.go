package trade

import "github.com/marketplace/backend/internal/domain/shared"

// Aggregate type constant
const AggregateTypeOrder = "Order"

// Event type constants
const (
	EventTypeOrderPlaced        = "OrderPlaced"
	EventTypeOrderStatusChanged = "OrderStatusChanged"
)

// OrderPlacedEvent is published when a basket is checked out
type OrderPlacedEvent struct {
	shared.BaseDomainEvent
	UserID    int64 `json:"user_id"`
	ContactID int64 `json:"contact_id"`
	ItemCount int64 `json:"item_count"`
}

// NewOrderPlacedEvent creates a new OrderPlacedEvent
func NewOrderPlacedEvent(o *Order, itemCount int64) *OrderPlacedEvent {
	var contactID int64
	if o.ContactID != nil {
		contactID = *o.ContactID
	}
	return &OrderPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPlaced, AggregateTypeOrder, o.ID),
		UserID:          o.UserID,
		ContactID:       contactID,
		ItemCount:       itemCount,
	}
}

// OrderStatusChangedEvent is published when an operator moves a placed order
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	UserID int64       `json:"user_id"`
	From   OrderStatus `json:"from"`
	To     OrderStatus `json:"to"`
}

// NewOrderStatusChangedEvent creates a new OrderStatusChangedEvent
func NewOrderStatusChangedEvent(o *Order, from OrderStatus) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, AggregateTypeOrder, o.ID),
		UserID:          o.UserID,
		From:            from,
		To:              o.Status,
	}
}
