package catalog

import (
	"context"
	"fmt"

	"github.com/marketplace/backend/internal/domain/catalog"
	"github.com/marketplace/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CatalogEventHandler writes an audit log line for catalog domain events
type CatalogEventHandler struct {
	logger *zap.Logger
}

// NewCatalogEventHandler creates a new handler for catalog events
func NewCatalogEventHandler(logger *zap.Logger) *CatalogEventHandler {
	return &CatalogEventHandler{logger: logger.Named("catalog_events")}
}

// EventTypes returns the event types this handler is interested in
func (h *CatalogEventHandler) EventTypes() []string {
	return []string{catalog.EventTypeCatalogIngested, catalog.EventTypeShopStateChanged}
}

// Handle processes a catalog event
func (h *CatalogEventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch evt := event.(type) {
	case *catalog.CatalogIngestedEvent:
		h.logger.Info("catalog ingested",
			zap.Int64("shop_id", evt.AggregateID()),
			zap.Int64("owner_id", evt.OwnerID),
			zap.String("shop", evt.ShopName),
			zap.String("url", evt.FeedURL),
			zap.Int("products_created", evt.ProductsCreated),
			zap.Int("products_updated", evt.ProductsUpdated),
		)
	case *catalog.ShopStateChangedEvent:
		h.logger.Info("shop state changed",
			zap.Int64("shop_id", evt.AggregateID()),
			zap.Int64("owner_id", evt.OwnerID),
			zap.Bool("accepting_orders", evt.State),
		)
	default:
		h.logger.Error("unexpected event type", zap.String("actual", event.EventType()))
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
	return nil
}
