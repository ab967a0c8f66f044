package trade

import (
	"fmt"
	"sort"

	"github.com/marketplace/backend/internal/domain/shared"
)

// ItemQuantity is a requested (product, quantity) pair for basket operations
type ItemQuantity struct {
	ProductID int64
	Quantity  int64
}

// ErrMissingItems is returned when a basket request has no items
func ErrMissingItems() *shared.DomainError {
	return shared.NewValidationError("MISSING_ITEMS", "Items list is required")
}

// ErrEmptyBasket is returned when checking out a missing or empty basket
func ErrEmptyBasket() *shared.DomainError {
	return shared.NewConflictError("EMPTY_BASKET", "Basket is empty")
}

// ErrNoContact is returned when checking out without a delivery contact
func ErrNoContact() *shared.DomainError {
	return shared.NewConflictError("NO_CONTACT", "A delivery contact is required to place an order")
}

// ErrOrderNotFound is returned for an unknown or foreign order
func ErrOrderNotFound() *shared.DomainError {
	return shared.NewNotFoundError("ORDER_NOT_FOUND", "Order not found")
}

func validateItems(items []ItemQuantity) error {
	if len(items) == 0 {
		return ErrMissingItems()
	}
	for i, it := range items {
		if it.ProductID <= 0 {
			return shared.NewValidationError("VALIDATION_ERROR", fmt.Sprintf("items[%d]: product is required", i))
		}
		if it.Quantity < 1 {
			return shared.NewValidationError("INVALID_QUANTITY", fmt.Sprintf("items[%d]: quantity must be at least 1", i))
		}
	}
	return nil
}

// MergeRequestItems validates items for an add request and folds repeated
// products into one entry by summing, so the store sees each product once.
func MergeRequestItems(items []ItemQuantity) ([]ItemQuantity, error) {
	if err := validateItems(items); err != nil {
		return nil, err
	}
	sums := make(map[int64]int64, len(items))
	for _, it := range items {
		sums[it.ProductID] += it.Quantity
	}
	return sortedItems(sums), nil
}

// ReplaceRequestItems validates items for a replace request. When a product
// repeats, the last quantity wins.
func ReplaceRequestItems(items []ItemQuantity) ([]ItemQuantity, error) {
	if err := validateItems(items); err != nil {
		return nil, err
	}
	last := make(map[int64]int64, len(items))
	for _, it := range items {
		last[it.ProductID] = it.Quantity
	}
	return sortedItems(last), nil
}

// ProductIDs returns the product ids of items
func ProductIDs(items []ItemQuantity) []int64 {
	ids := make([]int64, len(items))
	for i, it := range items {
		ids[i] = it.ProductID
	}
	return ids
}

func sortedItems(m map[int64]int64) []ItemQuantity {
	out := make([]ItemQuantity, 0, len(m))
	for id, q := range m {
		out = append(out, ItemQuantity{ProductID: id, Quantity: q})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}
