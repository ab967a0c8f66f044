package models

import (
	"github.com/marketplace/backend/internal/domain/catalog"
)

// ShopModel is the persistence model for the Shop aggregate.
type ShopModel struct {
	BaseModel
	Name    string  `gorm:"type:varchar(48);not null"`
	URL     *string `gorm:"type:varchar(500)"`
	OwnerID int64   `gorm:"not null;uniqueIndex:idx_shops_owner"`
	State   bool    `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ShopModel) TableName() string {
	return "shops"
}

// ToDomain converts the persistence model to a domain Shop.
func (m *ShopModel) ToDomain() *catalog.Shop {
	shop := &catalog.Shop{
		BaseAggregateRoot: m.aggregateRoot(),
		Name:              m.Name,
		OwnerID:           m.OwnerID,
		State:             m.State,
	}
	if m.URL != nil {
		shop.URL = *m.URL
	}
	return shop
}

// FromDomain populates the persistence model from a domain Shop.
func (m *ShopModel) FromDomain(s *catalog.Shop) {
	m.FromDomainBaseEntity(s.BaseEntity)
	m.Name = s.Name
	m.OwnerID = s.OwnerID
	m.State = s.State
	m.URL = nil
	if s.URL != "" {
		url := s.URL
		m.URL = &url
	}
}

// CategoryModel is the persistence model for a product category.
type CategoryModel struct {
	BaseModel
	Name string `gorm:"type:varchar(48);not null;uniqueIndex:idx_categories_name"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// ToDomain converts the persistence model to a domain Category.
func (m *CategoryModel) ToDomain() *catalog.Category {
	return &catalog.Category{BaseEntity: m.BaseModel.ToDomain(), Name: m.Name}
}

// ParameterModel is the persistence model for a product parameter name.
type ParameterModel struct {
	BaseModel
	Name string `gorm:"type:varchar(48);not null;uniqueIndex:idx_parameters_name"`
}

// TableName returns the table name for GORM
func (ParameterModel) TableName() string {
	return "parameters"
}

// ToDomain converts the persistence model to a domain Parameter.
func (m *ParameterModel) ToDomain() *catalog.Parameter {
	return &catalog.Parameter{BaseEntity: m.BaseModel.ToDomain(), Name: m.Name}
}

// ProductModel is the persistence model for the Product domain entity.
// (shop_id, external_id) is the natural key used by feed upserts.
type ProductModel struct {
	BaseModel
	ShopID     int64  `gorm:"not null;uniqueIndex:idx_products_shop_external,priority:1"`
	ExternalID int64  `gorm:"not null;uniqueIndex:idx_products_shop_external,priority:2"`
	CategoryID int64  `gorm:"not null;index"`
	Name       string `gorm:"type:varchar(96);not null"`
	Quantity   int64  `gorm:"not null"`
	Price      int64  `gorm:"not null"`
	PriceRCC   int64  `gorm:"column:price_rcc;not null"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseEntity: m.BaseModel.ToDomain(),
		ShopID:     m.ShopID,
		CategoryID: m.CategoryID,
		ExternalID: m.ExternalID,
		Name:       m.Name,
		Quantity:   m.Quantity,
		Price:      m.Price,
		PriceRCC:   m.PriceRCC,
	}
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.ShopID = p.ShopID
	m.ExternalID = p.ExternalID
	m.CategoryID = p.CategoryID
	m.Name = p.Name
	m.Quantity = p.Quantity
	m.Price = p.Price
	m.PriceRCC = p.PriceRCC
}

// ProductParameterModel stores one parameter value of one product.
type ProductParameterModel struct {
	BaseModel
	ProductID   int64  `gorm:"not null;uniqueIndex:idx_product_parameters_pair,priority:1"`
	ParameterID int64  `gorm:"not null;uniqueIndex:idx_product_parameters_pair,priority:2;index"`
	Value       string `gorm:"type:varchar(255);not null"`
}

// TableName returns the table name for GORM
func (ProductParameterModel) TableName() string {
	return "product_parameters"
}
