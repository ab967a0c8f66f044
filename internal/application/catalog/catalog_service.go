package catalog

import (
	"context"
	"errors"

	"github.com/marketplace/backend/internal/domain/catalog"
	"github.com/marketplace/backend/internal/domain/identity"
	"github.com/marketplace/backend/internal/domain/shared"
)

// CatalogService handles read access to shops, categories and products,
// and the shop owner's order acceptance toggle
type CatalogService struct {
	shopRepo       catalog.ShopRepository
	categoryRepo   catalog.CategoryRepository
	productRepo    catalog.ProductRepository
	eventPublisher shared.EventPublisher
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(
	shopRepo catalog.ShopRepository,
	categoryRepo catalog.CategoryRepository,
	productRepo catalog.ProductRepository,
) *CatalogService {
	return &CatalogService{
		shopRepo:     shopRepo,
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *CatalogService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// ListShops returns a page of shops
func (s *CatalogService) ListShops(ctx context.Context, filter ShopListFilter) (shared.Paginated[ShopResponse], error) {
	f := toFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir, filter.Search)
	shops, total, err := s.shopRepo.FindAll(ctx, f)
	if err != nil {
		return shared.Paginated[ShopResponse]{}, err
	}
	return shared.NewPaginated(ToShopResponses(shops), total, f.Page, f.PageSize), nil
}

// GetShop returns one shop
func (s *CatalogService) GetShop(ctx context.Context, id int64) (*ShopResponse, error) {
	shop, err := s.shopRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("SHOP_NOT_FOUND", "Shop not found")
		}
		return nil, err
	}
	resp := ToShopResponse(shop)
	return &resp, nil
}

// GetMyShop returns the shop owned by the actor
func (s *CatalogService) GetMyShop(ctx context.Context, actor identity.Actor) (*ShopResponse, error) {
	if err := actor.RequireShop(); err != nil {
		return nil, err
	}
	shop, err := s.findOwnedShop(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	resp := ToShopResponse(shop)
	return &resp, nil
}

// SetShopState opens or closes the actor's shop for new orders
func (s *CatalogService) SetShopState(ctx context.Context, actor identity.Actor, open bool) (*ShopResponse, error) {
	if err := actor.RequireShop(); err != nil {
		return nil, err
	}
	shop, err := s.findOwnedShop(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	shop.SetState(open)
	if err := s.shopRepo.Update(ctx, shop); err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		if events := shop.GetDomainEvents(); len(events) > 0 {
			_ = s.eventPublisher.Publish(ctx, events...)
		}
	}
	shop.ClearDomainEvents()

	resp := ToShopResponse(shop)
	return &resp, nil
}

// ListCategories returns all categories ordered by name
func (s *CatalogService) ListCategories(ctx context.Context) ([]CategoryResponse, error) {
	categories, err := s.categoryRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return ToCategoryResponses(categories), nil
}

// ListProducts returns a page of products from shops that accept orders
func (s *CatalogService) ListProducts(ctx context.Context, filter ProductListFilter) (shared.Paginated[ProductResponse], error) {
	pf := catalog.ProductFilter{
		Filter:        toFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir, filter.Search),
		ShopID:        filter.ShopID,
		CategoryID:    filter.CategoryID,
		OnlyOpenShops: true,
	}
	products, total, err := s.productRepo.FindAll(ctx, pf)
	if err != nil {
		return shared.Paginated[ProductResponse]{}, err
	}
	return shared.NewPaginated(ToProductResponses(products), total, pf.Page, pf.PageSize), nil
}

// GetProduct returns a product with its parameters
func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("PRODUCT_NOT_FOUND", "Product not found")
		}
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

func (s *CatalogService) findOwnedShop(ctx context.Context, ownerID int64) (*catalog.Shop, error) {
	shop, err := s.shopRepo.FindByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("SHOP_NOT_FOUND", "You have not loaded a catalog yet")
		}
		return nil, err
	}
	return shop, nil
}

func toFilter(page, pageSize int, orderBy, orderDir, search string) shared.Filter {
	f := shared.DefaultFilter()
	if page > 0 {
		f.Page = page
	}
	if pageSize > 0 {
		f.PageSize = pageSize
	}
	if orderBy != "" {
		f.OrderBy = orderBy
	}
	if orderDir != "" {
		f.OrderDir = orderDir
	}
	f.Search = search
	return f
}
