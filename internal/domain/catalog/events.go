package catalog

import "github.com/marketplace/backend/internal/domain/shared"

// Aggregate type constant
const AggregateTypeShop = "Shop"

// Event type constants
const (
	EventTypeCatalogIngested  = "CatalogIngested"
	EventTypeShopStateChanged = "ShopStateChanged"
)

// CatalogIngestedEvent is published after a feed has been committed for a shop
type CatalogIngestedEvent struct {
	shared.BaseDomainEvent
	OwnerID         int64  `json:"owner_id"`
	ShopName        string `json:"shop_name"`
	FeedURL         string `json:"feed_url"`
	ProductsCreated int    `json:"products_created"`
	ProductsUpdated int    `json:"products_updated"`
	Parameters      int    `json:"parameters"`
}

// NewCatalogIngestedEvent creates a new CatalogIngestedEvent
func NewCatalogIngestedEvent(shop *Shop, feedURL string, created, updated, params int) *CatalogIngestedEvent {
	return &CatalogIngestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCatalogIngested, AggregateTypeShop, shop.ID),
		OwnerID:         shop.OwnerID,
		ShopName:        shop.Name,
		FeedURL:         feedURL,
		ProductsCreated: created,
		ProductsUpdated: updated,
		Parameters:      params,
	}
}

// ShopStateChangedEvent is published when a shop opens or closes for orders
type ShopStateChangedEvent struct {
	shared.BaseDomainEvent
	OwnerID int64 `json:"owner_id"`
	State   bool  `json:"state"`
}

// NewShopStateChangedEvent creates a new ShopStateChangedEvent
func NewShopStateChangedEvent(shop *Shop) *ShopStateChangedEvent {
	return &ShopStateChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeShopStateChanged, AggregateTypeShop, shop.ID),
		OwnerID:         shop.OwnerID,
		State:           shop.State,
	}
}
