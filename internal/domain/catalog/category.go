package catalog

import "github.com/marketplace/backend/internal/domain/shared"

// Category is a product grouping shared by all shops and deduplicated by name
type Category struct {
	shared.BaseEntity
	Name string
}

// NewCategory creates a category with a normalized name
func NewCategory(name string) (*Category, error) {
	name = NormalizeName(name)
	if err := validateName("Category", name, 48); err != nil {
		return nil, err
	}
	return &Category{BaseEntity: shared.NewBaseEntity(), Name: name}, nil
}

// Parameter is a product attribute name such as "color" or "RAM"
type Parameter struct {
	shared.BaseEntity
	Name string
}

// NewParameter creates a parameter with a normalized name
func NewParameter(name string) (*Parameter, error) {
	name = NormalizeName(name)
	if err := validateName("Parameter", name, 48); err != nil {
		return nil, err
	}
	return &Parameter{BaseEntity: shared.NewBaseEntity(), Name: name}, nil
}
