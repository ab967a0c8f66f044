package trade

import (
	"context"
	"errors"

	"github.com/marketplace/backend/internal/domain/catalog"
	"github.com/marketplace/backend/internal/domain/identity"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/domain/trade"
	"go.uber.org/zap"
)

// OrderService handles placed orders: the buyer's history, operator status
// changes and the shop-scoped order view
type OrderService struct {
	orderRepo      trade.OrderRepository
	shopRepo       catalog.ShopRepository
	shopOrders     trade.ShopOrderQuery
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(
	orderRepo trade.OrderRepository,
	shopRepo catalog.ShopRepository,
	shopOrders trade.ShopOrderQuery,
	logger *zap.Logger,
) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		orderRepo:  orderRepo,
		shopRepo:   shopRepo,
		shopOrders: shopOrders,
		logger:     logger,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// ListMyOrders returns the actor's placed orders, newest first
func (s *OrderService) ListMyOrders(ctx context.Context, actor identity.Actor) ([]OrderResponse, error) {
	orders, err := s.orderRepo.FindByUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	return ToOrderResponses(orders), nil
}

// GetMyOrder returns one of the actor's placed orders
func (s *OrderService) GetMyOrder(ctx context.Context, actor identity.Actor, orderID int64) (*OrderResponse, error) {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != actor.UserID || order.IsBasket() {
		return nil, trade.ErrOrderNotFound()
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// ChangeStatus moves a placed order along its lifecycle. Only operators may do this.
func (s *OrderService) ChangeStatus(ctx context.Context, actor identity.Actor, orderID int64, status string) (*OrderResponse, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	target, err := trade.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	from := order.Status
	if err := order.ChangeStatus(target); err != nil {
		return nil, err
	}
	ok, err := s.orderRepo.UpdateStatus(ctx, order.ID, from, target)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, shared.ErrInvalidState.WithMessage("Order status was changed concurrently")
	}

	s.logger.Info("order status changed",
		zap.Int64("order_id", order.ID),
		zap.String("from", from.String()),
		zap.String("to", target.String()),
		zap.Int64("operator_id", actor.UserID),
	)
	if s.eventPublisher != nil {
		if events := order.GetDomainEvents(); len(events) > 0 {
			if err := s.eventPublisher.Publish(ctx, events...); err != nil {
				s.logger.Warn("failed to publish order events", zap.Error(err))
			}
		}
	}
	order.ClearDomainEvents()

	resp := ToOrderResponse(order)
	return &resp, nil
}

// ListShopOrders returns the placed orders that contain the actor's products.
// Each order lists only the lines of the actor's shop.
func (s *OrderService) ListShopOrders(ctx context.Context, actor identity.Actor, status string) ([]ShopOrderResponse, error) {
	if err := actor.RequireShop(); err != nil {
		return nil, err
	}
	var filter *trade.OrderStatus
	if status != "" {
		parsed, err := trade.ParseOrderStatus(status)
		if err != nil {
			return nil, err
		}
		filter = &parsed
	}

	shop, err := s.shopRepo.FindByOwner(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return []ShopOrderResponse{}, nil
		}
		return nil, err
	}

	orders, err := s.shopOrders.FindShopOrders(ctx, shop.ID, filter)
	if err != nil {
		return nil, err
	}
	return ToShopOrderResponses(orders), nil
}

func (s *OrderService) findOrder(ctx context.Context, orderID int64) (*trade.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, trade.ErrOrderNotFound()
		}
		return nil, err
	}
	return order, nil
}
