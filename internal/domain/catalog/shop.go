package catalog

import (
	"github.com/marketplace/backend/internal/domain/shared"
)

// Shop is a seller storefront. Each shop-type user owns at most one shop.
type Shop struct {
	shared.BaseAggregateRoot
	Name    string
	URL     string
	OwnerID int64
	// State is false when the shop has stopped accepting orders
	State bool
}

// NewShop creates a new shop accepting orders
func NewShop(ownerID int64, name string) (*Shop, error) {
	if ownerID <= 0 {
		return nil, shared.NewValidationError("INVALID_OWNER", "Shop owner is required")
	}
	name = NormalizeName(name)
	if err := validateName("Shop", name, 48); err != nil {
		return nil, err
	}
	return &Shop{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		OwnerID:           ownerID,
		State:             true,
	}, nil
}

// IsOwnedBy reports whether userID owns the shop
func (s *Shop) IsOwnedBy(userID int64) bool {
	return s.OwnerID == userID
}

// SetFeedURL records the URL the catalog was last ingested from
func (s *Shop) SetFeedURL(url string) {
	s.URL = url
	s.Touch()
}

// SetState opens or closes the shop for new orders
func (s *Shop) SetState(open bool) {
	if s.State == open {
		return
	}
	s.State = open
	s.Touch()
	s.AddDomainEvent(NewShopStateChangedEvent(s))
}
