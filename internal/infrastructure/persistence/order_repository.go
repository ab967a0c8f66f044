package persistence

import (
	"context"
	"time"

	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/domain/trade"
	"github.com/marketplace/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// orderItemRow is an order line joined with its product snapshot
type orderItemRow struct {
	ID          int64
	OrderID     int64
	ProductID   int64
	Quantity    int64
	ProductName string
	ExternalID  int64
	ShopID      int64
	PriceRCC    int64 `gorm:"column:price_rcc"`
}

// FindByID finds an order with its items
func (r *GormOrderRepository) FindByID(ctx context.Context, id int64) (*trade.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, nil)
	}
	return r.withItems(ctx, &model)
}

// FindBasket returns the user's open basket with its items
func (r *GormOrderRepository) FindBasket(ctx context.Context, userID int64) (*trade.Order, error) {
	return r.findBasket(ctx, userID, false)
}

// LockBasket returns the user's open basket under a row lock
func (r *GormOrderRepository) LockBasket(ctx context.Context, userID int64) (*trade.Order, error) {
	return r.findBasket(ctx, userID, true)
}

func (r *GormOrderRepository) findBasket(ctx context.Context, userID int64, lock bool) (*trade.Order, error) {
	query := r.db.WithContext(ctx).Where("user_id = ? AND status = ?", userID, trade.OrderStatusBasket)
	if lock {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var model models.OrderModel
	if err := query.First(&model).Error; err != nil {
		return nil, translateError(err, nil)
	}
	return r.withItems(ctx, &model)
}

// GetOrCreateBasket returns the user's open basket, inserting it when absent
func (r *GormOrderRepository) GetOrCreateBasket(ctx context.Context, userID int64) (*trade.Order, error) {
	model := &models.OrderModel{}
	model.FromDomain(trade.NewBasket(userID))

	// The partial unique index turns a concurrent second insert into a no-op
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(model).Error; err != nil {
		return nil, err
	}
	return r.FindBasket(ctx, userID)
}

// MergeItems adds quantities to existing lines or creates new lines
func (r *GormOrderRepository) MergeItems(ctx context.Context, orderID int64, items []trade.ItemQuantity) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "order_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity":   gorm.Expr("order_items.quantity + excluded.quantity"),
				"updated_at": gorm.Expr("excluded.updated_at"),
			}),
		}).
		Create(itemModels(orderID, items)).Error
}

// ReplaceItems sets line quantities, creating lines as needed
func (r *GormOrderRepository) ReplaceItems(ctx context.Context, orderID int64, items []trade.ItemQuantity) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}, {Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity", "updated_at"}),
		}).
		Create(itemModels(orderID, items)).Error
}

func itemModels(orderID int64, items []trade.ItemQuantity) []models.OrderItemModel {
	now := time.Now()
	rows := make([]models.OrderItemModel, len(items))
	for i, it := range items {
		rows[i] = models.OrderItemModel{
			BaseModel: models.BaseModel{CreatedAt: now, UpdatedAt: now},
			OrderID:   orderID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		}
	}
	return rows
}

// RemoveItems deletes basket lines for the given products. Lines of an order
// that is no longer a basket are left untouched.
func (r *GormOrderRepository) RemoveItems(ctx context.Context, orderID int64, productIDs []int64) (int64, error) {
	if len(productIDs) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Where("order_id = ? AND product_id IN ?", orderID, productIDs).
		Where("EXISTS (?)", r.basketGuard(orderID)).
		Delete(&models.OrderItemModel{})
	return result.RowsAffected, result.Error
}

// basketGuard selects the order row only while it is still a basket
func (r *GormOrderRepository) basketGuard(orderID int64) *gorm.DB {
	return r.db.Model(&models.OrderModel{}).
		Select("1").
		Where("id = ? AND status = ?", orderID, trade.OrderStatusBasket)
}

// CountItems returns the number of lines of an order
func (r *GormOrderRepository) CountItems(ctx context.Context, orderID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.OrderItemModel{}).Where("order_id = ?", orderID).Count(&count).Error
	return count, err
}

// MarkPlaced performs the basket to new transition in a single conditional update
func (r *GormOrderRepository) MarkPlaced(ctx context.Context, orderID, contactID int64, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("id = ? AND status = ?", orderID, trade.OrderStatusBasket).
		Updates(map[string]any{
			"status":     string(trade.OrderStatusNew),
			"date":       at,
			"contact_id": contactID,
			"updated_at": at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// UpdateStatus moves an order from one status to another
func (r *GormOrderRepository) UpdateStatus(ctx context.Context, orderID int64, from, to trade.OrderStatus) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("id = ? AND status = ?", orderID, from).
		Updates(map[string]any{
			"status":     string(to),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// DeleteBasket removes a basket and its lines. It returns shared.ErrNotFound
// when the order is gone or has already been placed.
func (r *GormOrderRepository) DeleteBasket(ctx context.Context, orderID int64) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("order_id = ?", orderID).
		Where("EXISTS (?)", r.basketGuard(orderID)).
		Delete(&models.OrderItemModel{}).Error; err != nil {
		return err
	}
	result := db.Where("id = ? AND status = ?", orderID, trade.OrderStatusBasket).Delete(&models.OrderModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByUser lists a user's placed orders, newest first
func (r *GormOrderRepository) FindByUser(ctx context.Context, userID int64) ([]trade.Order, error) {
	var rows []models.OrderModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND status <> ?", userID, trade.OrderStatusBasket).
		Order("date DESC, id DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	orders := make([]*trade.Order, len(rows))
	for i := range rows {
		orders[i] = rows[i].ToDomain()
	}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}

	result := make([]trade.Order, len(orders))
	for i, o := range orders {
		result[i] = *o
	}
	return result, nil
}

func (r *GormOrderRepository) withItems(ctx context.Context, model *models.OrderModel) (*trade.Order, error) {
	order := model.ToDomain()
	if err := r.attachItems(ctx, []*trade.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *GormOrderRepository) attachItems(ctx context.Context, orders []*trade.Order) error {
	if len(orders) == 0 {
		return nil
	}
	byID := make(map[int64]*trade.Order, len(orders))
	ids := make([]int64, len(orders))
	for i, o := range orders {
		byID[o.ID] = o
		ids[i] = o.ID
	}

	var rows []orderItemRow
	if err := r.db.WithContext(ctx).
		Table("order_items AS oi").
		Select("oi.id, oi.order_id, oi.product_id, oi.quantity, p.name AS product_name, p.external_id, p.shop_id, p.price_rcc").
		Joins("JOIN products AS p ON p.id = oi.product_id").
		Where("oi.order_id IN ?", ids).
		Order("oi.id ASC").
		Scan(&rows).Error; err != nil {
		return err
	}
	for _, row := range rows {
		if o, ok := byID[row.OrderID]; ok {
			o.Items = append(o.Items, trade.OrderItem(row))
		}
	}
	return nil
}

// Ensure interface is implemented
var _ trade.OrderRepository = (*GormOrderRepository)(nil)
