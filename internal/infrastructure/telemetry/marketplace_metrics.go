package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	appcatalog "github.com/marketplace/backend/internal/application/catalog"
	"github.com/marketplace/backend/internal/domain/catalog"
	"github.com/marketplace/backend/internal/domain/identity"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/domain/trade"
)

// MeterName is the instrumentation scope of marketplace metrics
const MeterName = "github.com/marketplace/backend"

// Ingestion outcomes
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Metric attribute keys
var (
	AttrOutcome  = attribute.Key("outcome")
	AttrKind     = attribute.Key("kind")
	AttrFrom     = attribute.Key("from")
	AttrTo       = attribute.Key("to")
	AttrUserType = attribute.Key("user_type")
)

// MarketplaceMetrics records ingestion outcomes and business events.
// It is both an IngestMetrics sink and an event bus subscriber.
type MarketplaceMetrics struct {
	ingestions     metric.Int64Counter
	products       metric.Int64Counter
	ingestSize     metric.Int64Histogram
	ordersPlaced   metric.Int64Counter
	orderItems     metric.Int64Histogram
	statusChanges  metric.Int64Counter
	registrations  metric.Int64Counter
	shopStateFlips metric.Int64Counter
}

var (
	_ appcatalog.IngestMetrics = (*MarketplaceMetrics)(nil)
	_ shared.EventHandler      = (*MarketplaceMetrics)(nil)
)

// NewMarketplaceMetrics creates the instruments on meter
func NewMarketplaceMetrics(meter metric.Meter) (*MarketplaceMetrics, error) {
	m := &MarketplaceMetrics{}
	var err error

	if m.ingestions, err = meter.Int64Counter("marketplace.feed.ingestions",
		metric.WithDescription("Feed ingestion attempts by outcome"),
		metric.WithUnit("{ingestion}")); err != nil {
		return nil, fmt.Errorf("create ingestions counter: %w", err)
	}
	if m.products, err = meter.Int64Counter("marketplace.feed.products",
		metric.WithDescription("Products written by feed ingestion, by created or updated"),
		metric.WithUnit("{product}")); err != nil {
		return nil, fmt.Errorf("create products counter: %w", err)
	}
	if m.ingestSize, err = meter.Int64Histogram("marketplace.feed.goods",
		metric.WithDescription("Number of goods per successful ingestion"),
		metric.WithUnit("{good}"),
		metric.WithExplicitBucketBoundaries(1, 10, 50, 100, 500, 1000, 5000, 10000)); err != nil {
		return nil, fmt.Errorf("create goods histogram: %w", err)
	}
	if m.ordersPlaced, err = meter.Int64Counter("marketplace.orders.placed",
		metric.WithDescription("Baskets checked out into orders"),
		metric.WithUnit("{order}")); err != nil {
		return nil, fmt.Errorf("create orders counter: %w", err)
	}
	if m.orderItems, err = meter.Int64Histogram("marketplace.orders.items",
		metric.WithDescription("Line count of placed orders"),
		metric.WithUnit("{item}"),
		metric.WithExplicitBucketBoundaries(1, 2, 5, 10, 20, 50, 100)); err != nil {
		return nil, fmt.Errorf("create order items histogram: %w", err)
	}
	if m.statusChanges, err = meter.Int64Counter("marketplace.orders.status_changes",
		metric.WithDescription("Operator order status transitions"),
		metric.WithUnit("{transition}")); err != nil {
		return nil, fmt.Errorf("create status counter: %w", err)
	}
	if m.registrations, err = meter.Int64Counter("marketplace.users.registered",
		metric.WithDescription("Accounts created by type"),
		metric.WithUnit("{user}")); err != nil {
		return nil, fmt.Errorf("create registrations counter: %w", err)
	}
	if m.shopStateFlips, err = meter.Int64Counter("marketplace.shops.state_changes",
		metric.WithDescription("Shops opening or closing for orders"),
		metric.WithUnit("{change}")); err != nil {
		return nil, fmt.Errorf("create shop state counter: %w", err)
	}
	return m, nil
}

// RecordIngest counts an ingestion attempt. Feed errors caused by the
// submitted document are "rejected", anything else failing is "error".
func (m *MarketplaceMetrics) RecordIngest(ctx context.Context, summary *appcatalog.IngestSummary, err error) {
	switch {
	case err == nil:
		m.ingestions.Add(ctx, 1, metric.WithAttributes(AttrOutcome.String(OutcomeSuccess)))
	case appcatalog.IsFeedError(err) || shared.KindOf(err) == shared.KindAuthorization || shared.KindOf(err) == shared.KindConflict:
		m.ingestions.Add(ctx, 1, metric.WithAttributes(AttrOutcome.String(OutcomeRejected)))
		return
	default:
		m.ingestions.Add(ctx, 1, metric.WithAttributes(AttrOutcome.String(OutcomeError)))
		return
	}

	if summary == nil {
		return
	}
	m.products.Add(ctx, int64(summary.ProductsCreated), metric.WithAttributes(AttrKind.String("created")))
	m.products.Add(ctx, int64(summary.ProductsUpdated), metric.WithAttributes(AttrKind.String("updated")))
	m.ingestSize.Record(ctx, int64(summary.ProductsCreated+summary.ProductsUpdated))
}

// Handle counts business events
func (m *MarketplaceMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *trade.OrderPlacedEvent:
		m.ordersPlaced.Add(ctx, 1)
		m.orderItems.Record(ctx, e.ItemCount)
	case *trade.OrderStatusChangedEvent:
		m.statusChanges.Add(ctx, 1, metric.WithAttributes(
			AttrFrom.String(e.From.String()),
			AttrTo.String(e.To.String()),
		))
	case *identity.UserRegisteredEvent:
		m.registrations.Add(ctx, 1, metric.WithAttributes(AttrUserType.String(e.Type.String())))
	case *catalog.ShopStateChangedEvent:
		m.shopStateFlips.Add(ctx, 1, metric.WithAttributes(attribute.Bool("open", e.State)))
	}
	return nil
}

// EventTypes returns the event types this handler counts
func (m *MarketplaceMetrics) EventTypes() []string {
	return []string{
		trade.EventTypeOrderPlaced,
		trade.EventTypeOrderStatusChanged,
		identity.EventTypeUserRegistered,
		catalog.EventTypeShopStateChanged,
	}
}
