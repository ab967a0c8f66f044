package models

import (
	"time"

	"github.com/marketplace/backend/internal/domain/trade"
)

// OrderModel is the persistence model for the Order aggregate.
// The partial unique index allows at most one open basket per user.
type OrderModel struct {
	BaseModel
	UserID    int64     `gorm:"not null;index;uniqueIndex:idx_orders_open_basket,where:status = 'basket'"`
	Status    string    `gorm:"type:varchar(9);not null;index"`
	Date      time.Time `gorm:"not null;index"`
	ContactID *int64    `gorm:"index"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order. Items are loaded separately.
func (m *OrderModel) ToDomain() *trade.Order {
	return &trade.Order{
		BaseAggregateRoot: m.aggregateRoot(),
		UserID:            m.UserID,
		Status:            trade.OrderStatus(m.Status),
		Date:              m.Date,
		ContactID:         m.ContactID,
		Items:             make([]trade.OrderItem, 0),
	}
}

// FromDomain populates the persistence model from a domain Order.
func (m *OrderModel) FromDomain(o *trade.Order) {
	m.FromDomainBaseEntity(o.BaseEntity)
	m.UserID = o.UserID
	m.Status = string(o.Status)
	m.Date = o.Date
	m.ContactID = o.ContactID
}

// OrderItemModel is one product line of an order.
type OrderItemModel struct {
	BaseModel
	OrderID   int64 `gorm:"not null;uniqueIndex:idx_order_items_order_product,priority:1"`
	ProductID int64 `gorm:"not null;uniqueIndex:idx_order_items_order_product,priority:2;index"`
	Quantity  int64 `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}
