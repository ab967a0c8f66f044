package catalog

import (
	"context"

	"github.com/marketplace/backend/internal/domain/shared"
)

// ShopRepository defines the interface for shop persistence
type ShopRepository interface {
	// FindByID finds a shop by ID
	FindByID(ctx context.Context, id int64) (*Shop, error)

	// FindByOwner finds the shop owned by a user
	FindByOwner(ctx context.Context, ownerID int64) (*Shop, error)

	// GetOrCreate returns the owner's shop, inserting shop when the owner has none.
	// The insert is guarded by the unique owner index so racing callers get one row.
	GetOrCreate(ctx context.Context, shop *Shop) (*Shop, bool, error)

	// Update persists the mutable shop fields (url, state)
	Update(ctx context.Context, shop *Shop) error

	// FindAll lists shops with pagination
	FindAll(ctx context.Context, filter shared.Filter) ([]Shop, int64, error)
}

// CategoryRepository defines the interface for category persistence
type CategoryRepository interface {
	// FindByID finds a category by ID
	FindByID(ctx context.Context, id int64) (*Category, error)

	// GetOrCreateByName returns the category with the given normalized name,
	// inserting it atomically when missing
	GetOrCreateByName(ctx context.Context, name string) (*Category, error)

	// FindAll returns all categories ordered by name
	FindAll(ctx context.Context) ([]Category, error)

	// Count returns the number of categories
	Count(ctx context.Context) (int64, error)
}

// ParameterRepository defines the interface for parameter persistence
type ParameterRepository interface {
	// GetOrCreateByName returns the parameter with the given normalized name,
	// inserting it atomically when missing
	GetOrCreateByName(ctx context.Context, name string) (*Parameter, error)

	// Count returns the number of parameters
	Count(ctx context.Context) (int64, error)
}

// ProductFilter narrows product listings
type ProductFilter struct {
	shared.Filter
	ShopID     int64
	CategoryID int64
	// OnlyOpenShops hides products of shops that stopped accepting orders
	OnlyOpenShops bool
}

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product with its category, shop and parameters
	FindByID(ctx context.Context, id int64) (*Product, error)

	// FindByExternalID finds a product by its natural key
	FindByExternalID(ctx context.Context, shopID, externalID int64) (*Product, error)

	// Upsert inserts or overwrites the product identified by (shop, external_id).
	// It sets product.ID and reports whether a new row was created.
	Upsert(ctx context.Context, product *Product) (bool, error)

	// UpsertParameter sets the value of a parameter for a product
	UpsertParameter(ctx context.Context, productID, parameterID int64, value string) error

	// FindAll lists products matching the filter
	FindAll(ctx context.Context, filter ProductFilter) ([]Product, int64, error)

	// FindMissingIDs returns the subset of ids that do not exist
	FindMissingIDs(ctx context.Context, ids []int64) ([]int64, error)

	// CountByShop returns the number of products a shop has
	CountByShop(ctx context.Context, shopID int64) (int64, error)
}
