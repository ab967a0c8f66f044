package persistence

import (
	"context"
	"time"

	"github.com/marketplace/backend/internal/domain/trade"
	"github.com/marketplace/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormShopOrderQuery implements trade.ShopOrderQuery with three set-based
// reads: matching orders, the shop's lines of those orders, and their contacts.
type GormShopOrderQuery struct {
	db *gorm.DB
}

// NewGormShopOrderQuery creates a new GormShopOrderQuery
func NewGormShopOrderQuery(db *gorm.DB) *GormShopOrderQuery {
	return &GormShopOrderQuery{db: db}
}

type shopOrderRow struct {
	ID        int64
	Date      time.Time
	Status    string
	UserEmail string
	ContactID *int64
}

type shopOrderLineRow struct {
	OrderID    int64
	ProductID  int64
	ExternalID int64
	Name       string
	Quantity   int64
}

// FindShopOrders returns placed orders containing at least one of the shop's products
func (q *GormShopOrderQuery) FindShopOrders(ctx context.Context, shopID int64, status *trade.OrderStatus) ([]trade.ShopOrder, error) {
	db := q.db.WithContext(ctx)

	query := db.Table("orders AS o").
		Distinct("o.id", "o.date", "o.status", "u.email AS user_email", "o.contact_id").
		Joins("JOIN order_items AS oi ON oi.order_id = o.id").
		Joins("JOIN products AS p ON p.id = oi.product_id").
		Joins("JOIN users AS u ON u.id = o.user_id").
		Scopes(ShopScope("p.shop_id", shopID)).
		Where("o.status <> ?", trade.OrderStatusBasket)
	if status != nil {
		query = query.Where("o.status = ?", *status)
	}

	var rows []shopOrderRow
	if err := query.Order("o.date DESC, o.id DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []trade.ShopOrder{}, nil
	}

	orderIDs := make([]int64, len(rows))
	contactIDs := make([]int64, 0, len(rows))
	for i, row := range rows {
		orderIDs[i] = row.ID
		if row.ContactID != nil {
			contactIDs = append(contactIDs, *row.ContactID)
		}
	}

	var lines []shopOrderLineRow
	if err := db.Table("order_items AS oi").
		Select("oi.order_id, p.id AS product_id, p.external_id, p.name, oi.quantity").
		Joins("JOIN products AS p ON p.id = oi.product_id").
		Where("oi.order_id IN ? AND p.shop_id = ?", orderIDs, shopID).
		Order("oi.id ASC").
		Scan(&lines).Error; err != nil {
		return nil, err
	}
	linesByOrder := make(map[int64][]trade.ShopOrderLine, len(rows))
	for _, l := range lines {
		linesByOrder[l.OrderID] = append(linesByOrder[l.OrderID], trade.ShopOrderLine{
			ProductID:  l.ProductID,
			ExternalID: l.ExternalID,
			Name:       l.Name,
			Quantity:   l.Quantity,
		})
	}

	contacts := make(map[int64]*trade.ShopOrderContact, len(contactIDs))
	if len(contactIDs) > 0 {
		var contactRows []models.ClientContactModel
		if err := db.Where("id IN ?", contactIDs).Find(&contactRows).Error; err != nil {
			return nil, err
		}
		for _, c := range contactRows {
			contacts[c.ID] = &trade.ShopOrderContact{City: c.City, Street: c.Street, House: c.House, Phone: c.Phone}
		}
	}

	result := make([]trade.ShopOrder, len(rows))
	for i, row := range rows {
		result[i] = trade.ShopOrder{
			OrderID:   row.ID,
			UserEmail: row.UserEmail,
			Date:      row.Date,
			Status:    trade.OrderStatus(row.Status),
			Products:  linesByOrder[row.ID],
		}
		if row.ContactID != nil {
			result[i].Contact = contacts[*row.ContactID]
		}
	}
	return result, nil
}

// Ensure interface is implemented
var _ trade.ShopOrderQuery = (*GormShopOrderQuery)(nil)
