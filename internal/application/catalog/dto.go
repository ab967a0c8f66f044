package catalog

import (
	"time"

	"github.com/marketplace/backend/internal/domain/catalog"
)

// IngestFeedRequest represents a request to load a shop catalog from a feed URL
type IngestFeedRequest struct {
	URL string `json:"url" binding:"required,max=2048"`
}

// IngestSummary reports what one feed ingestion wrote
type IngestSummary struct {
	ShopID          int64  `json:"shop_id"`
	ShopName        string `json:"shop_name"`
	ShopCreated     bool   `json:"shop_created"`
	Categories      int    `json:"categories"`
	ProductsCreated int    `json:"products_created"`
	ProductsUpdated int    `json:"products_updated"`
	Parameters      int    `json:"parameters"`
	ArchiveKey      string `json:"archive_key,omitempty"`
}

// SetShopStateRequest represents a request to open or close a shop for orders
type SetShopStateRequest struct {
	State *bool `json:"state" binding:"required"`
}

// ShopResponse represents a shop in API responses
type ShopResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url,omitempty"`
	OwnerID   int64     `json:"owner_id"`
	State     bool      `json:"state"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ShopListFilter represents filter options for the shop list
type ShopListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ProductListFilter represents filter options for the product list
type ProductListFilter struct {
	ShopID     int64  `form:"shop_id" binding:"omitempty,min=1"`
	CategoryID int64  `form:"category_id" binding:"omitempty,min=1"`
	Search     string `form:"search"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string `form:"order_by"`
	OrderDir   string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ProductParameterResponse is one parameter value of a product
type ProductParameterResponse struct {
	Parameter string `json:"parameter"`
	Value     string `json:"value"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID           int64                      `json:"id"`
	ExternalID   int64                      `json:"external_id"`
	Name         string                     `json:"name"`
	ShopID       int64                      `json:"shop_id"`
	ShopName     string                     `json:"shop"`
	CategoryID   int64                      `json:"category_id"`
	CategoryName string                     `json:"category"`
	Quantity     int64                      `json:"quantity"`
	Price        int64                      `json:"price"`
	PriceRCC     int64                      `json:"price_rcc"`
	Parameters   []ProductParameterResponse `json:"parameters,omitempty"`
}

// ToShopResponse converts a domain Shop to ShopResponse
func ToShopResponse(s *catalog.Shop) ShopResponse {
	return ShopResponse{
		ID:        s.ID,
		Name:      s.Name,
		URL:       s.URL,
		OwnerID:   s.OwnerID,
		State:     s.State,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// ToShopResponses converts a slice of shops
func ToShopResponses(shops []catalog.Shop) []ShopResponse {
	responses := make([]ShopResponse, len(shops))
	for i := range shops {
		responses[i] = ToShopResponse(&shops[i])
	}
	return responses
}

// ToCategoryResponses converts a slice of categories
func ToCategoryResponses(categories []catalog.Category) []CategoryResponse {
	responses := make([]CategoryResponse, len(categories))
	for i, c := range categories {
		responses[i] = CategoryResponse{ID: c.ID, Name: c.Name}
	}
	return responses
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	resp := ProductResponse{
		ID:           p.ID,
		ExternalID:   p.ExternalID,
		Name:         p.Name,
		ShopID:       p.ShopID,
		ShopName:     p.ShopName,
		CategoryID:   p.CategoryID,
		CategoryName: p.CategoryName,
		Quantity:     p.Quantity,
		Price:        p.Price,
		PriceRCC:     p.PriceRCC,
	}
	if len(p.Parameters) > 0 {
		resp.Parameters = make([]ProductParameterResponse, len(p.Parameters))
		for i, pp := range p.Parameters {
			resp.Parameters[i] = ProductParameterResponse{Parameter: pp.ParameterName, Value: pp.Value}
		}
	}
	return resp
}

// ToProductResponses converts a slice of products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
	}
	return responses
}
