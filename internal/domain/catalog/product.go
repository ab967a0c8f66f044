package catalog

import (
	"strings"

	"github.com/marketplace/backend/internal/domain/shared"
)

// Product is a shop's catalog entry. (ShopID, ExternalID) is its natural key.
type Product struct {
	shared.BaseEntity
	ShopID     int64
	CategoryID int64
	ExternalID int64
	Name       string
	Quantity   int64
	Price      int64
	PriceRCC   int64

	// Read-side fields filled by queries that join related tables
	ShopName     string
	CategoryName string
	Parameters   []ProductParameter
}

// ProductParameter is the value of one parameter for one product
type ProductParameter struct {
	ProductID     int64
	ParameterID   int64
	ParameterName string
	Value         string
}

// NewProductFromGood builds the product row that a feed good describes for a shop
func NewProductFromGood(shopID, categoryID int64, good FeedGood) (*Product, error) {
	if shopID <= 0 || categoryID <= 0 {
		return nil, shared.NewValidationError("VALIDATION_ERROR", "Product requires a shop and a category")
	}
	if err := good.Validate(); err != nil {
		return nil, err
	}
	return &Product{
		BaseEntity: shared.NewBaseEntity(),
		ShopID:     shopID,
		CategoryID: categoryID,
		ExternalID: good.ExternalID,
		Name:       strings.TrimSpace(good.Name),
		Quantity:   good.Quantity,
		Price:      good.Price,
		PriceRCC:   good.PriceRCC,
	}, nil
}

// ParameterValue returns the value stored for the named parameter
func (p *Product) ParameterValue(name string) (string, bool) {
	for _, pp := range p.Parameters {
		if pp.ParameterName == name {
			return pp.Value, true
		}
	}
	return "", false
}
