package trade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/marketplace/backend/internal/domain/identity"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/domain/trade"
	"github.com/marketplace/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// BasketService handles the open basket of a user and its checkout
type BasketService struct {
	txScope        TransactionScope
	orderRepo      trade.OrderRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewBasketService creates a new BasketService
func NewBasketService(txScope TransactionScope, orderRepo trade.OrderRepository, logger *zap.Logger) *BasketService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BasketService{
		txScope:   txScope,
		orderRepo: orderRepo,
		logger:    logger,
		now:       time.Now,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *BasketService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// AddToBasket adds items to the user's basket. Quantities of products that
// are already in the basket are summed.
func (s *BasketService) AddToBasket(ctx context.Context, actor identity.Actor, items []trade.ItemQuantity) (*BasketResponse, error) {
	merged, err := trade.MergeRequestItems(items)
	if err != nil {
		return nil, err
	}
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		basket, err := s.prepareBasket(ctx, repos, actor.UserID, merged)
		if err != nil {
			return err
		}
		return repos.OrderRepo().MergeItems(ctx, basket.ID, merged)
	})
	if err != nil {
		return nil, err
	}
	return s.ViewBasket(ctx, actor)
}

// ReplaceBasketItems overwrites the quantities of the given products
func (s *BasketService) ReplaceBasketItems(ctx context.Context, actor identity.Actor, items []trade.ItemQuantity) (*BasketResponse, error) {
	replaced, err := trade.ReplaceRequestItems(items)
	if err != nil {
		return nil, err
	}
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		basket, err := s.prepareBasket(ctx, repos, actor.UserID, replaced)
		if err != nil {
			return err
		}
		return repos.OrderRepo().ReplaceItems(ctx, basket.ID, replaced)
	})
	if err != nil {
		return nil, err
	}
	return s.ViewBasket(ctx, actor)
}

func (s *BasketService) prepareBasket(
	ctx context.Context,
	repos TransactionalRepositories,
	userID int64,
	items []trade.ItemQuantity,
) (*trade.Order, error) {
	missing, err := repos.ProductRepo().FindMissingIDs(ctx, trade.ProductIDs(items))
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, shared.NewNotFoundError("PRODUCT_NOT_FOUND", fmt.Sprintf("Products not found: %v", missing))
	}
	return repos.OrderRepo().GetOrCreateBasket(ctx, userID)
}

// RemoveBasketItems deletes the basket lines of the given products.
// Without a basket this is a no-op.
func (s *BasketService) RemoveBasketItems(ctx context.Context, actor identity.Actor, productIDs []int64) (*BasketResponse, error) {
	if productIDs == nil {
		return nil, trade.ErrMissingItems()
	}
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		basket, err := repos.OrderRepo().LockBasket(ctx, actor.UserID)
		if err != nil {
			return err
		}
		removed, err := repos.OrderRepo().RemoveItems(ctx, basket.ID, productIDs)
		if err != nil {
			return err
		}
		s.logger.Debug("basket lines removed", zap.Int64("order_id", basket.ID), zap.Int64("removed", removed))
		return nil
	})
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	return s.ViewBasket(ctx, actor)
}

// ViewBasket returns the user's basket with its total
func (s *BasketService) ViewBasket(ctx context.Context, actor identity.Actor) (*BasketResponse, error) {
	basket, err := s.orderRepo.FindBasket(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return EmptyBasketResponse(), nil
		}
		return nil, err
	}
	return ToBasketResponse(basket), nil
}

// ClearBasket deletes the user's basket and its lines. Without a basket this is a no-op.
func (s *BasketService) ClearBasket(ctx context.Context, actor identity.Actor) error {
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		basket, err := repos.OrderRepo().LockBasket(ctx, actor.UserID)
		if err != nil {
			return err
		}
		if err := repos.OrderRepo().DeleteBasket(ctx, basket.ID); err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		return nil
	})
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return err
	}
	return nil
}

// Checkout places the user's basket as a new order against their delivery contact
func (s *BasketService) Checkout(ctx context.Context, actor identity.Actor) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "basket", "checkout",
		telemetry.WithAttribute(telemetry.SpanAttrUserID, actor.UserID))
	defer span.End()

	var placed *trade.Order
	var err error
	telemetry.WithProfilingLabels(ctx, map[string]string{telemetry.ProfilingLabelOperation: "basket.checkout"}, func(ctx context.Context) {
		err = s.checkout(ctx, actor, &placed)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderID, placed.ID,
		telemetry.SpanAttrItemCount, len(placed.Items),
	)

	s.logger.Info("order placed",
		zap.Int64("order_id", placed.ID),
		zap.Int64("user_id", actor.UserID),
		zap.Int("lines", len(placed.Items)),
	)
	s.publishDomainEvents(ctx, placed)

	resp := ToOrderResponse(placed)
	return &resp, nil
}

func (s *BasketService) checkout(ctx context.Context, actor identity.Actor, placed **trade.Order) error {
	return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		basket, err := repos.OrderRepo().LockBasket(ctx, actor.UserID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return trade.ErrEmptyBasket()
			}
			return err
		}

		count, err := repos.OrderRepo().CountItems(ctx, basket.ID)
		if err != nil {
			return err
		}

		var contactID *int64
		contact, err := repos.ContactRepo().FindByUserID(ctx, actor.UserID)
		switch {
		case err == nil:
			contactID = &contact.ID
		case !errors.Is(err, shared.ErrNotFound):
			return err
		}

		if err := basket.Checkout(count, contactID, s.now()); err != nil {
			return err
		}
		ok, err := repos.OrderRepo().MarkPlaced(ctx, basket.ID, *contactID, basket.Date)
		if err != nil {
			return err
		}
		if !ok {
			return shared.ErrInvalidState.WithMessage("Basket was modified concurrently")
		}
		*placed = basket
		return nil
	})
}

func (s *BasketService) publishDomainEvents(ctx context.Context, order *trade.Order) {
	if s.eventPublisher != nil {
		if events := order.GetDomainEvents(); len(events) > 0 {
			if err := s.eventPublisher.Publish(ctx, events...); err != nil {
				s.logger.Warn("failed to publish order events", zap.Error(err))
			}
		}
	}
	order.ClearDomainEvents()
}
