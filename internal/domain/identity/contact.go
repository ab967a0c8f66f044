package identity

import (
	"strings"

	"github.com/marketplace/backend/internal/domain/shared"
)

// ClientContact is a buyer's delivery address. Each user owns at most one.
type ClientContact struct {
	shared.BaseAggregateRoot
	UserID    int64
	City      string
	Street    string
	House     string
	Building  string
	Apartment string
	Phone     string
}

// Address groups the editable fields of a contact
type Address struct {
	City      string
	Street    string
	House     string
	Building  string
	Apartment string
	Phone     string
}

// NewClientContact creates a contact for userID
func NewClientContact(userID int64, addr Address) (*ClientContact, error) {
	if userID <= 0 {
		return nil, shared.NewValidationError("INVALID_USER", "User ID is required")
	}
	c := &ClientContact{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
	}
	if err := c.Update(addr); err != nil {
		return nil, err
	}
	return c, nil
}

// Update replaces the address fields after validating them
func (c *ClientContact) Update(addr Address) error {
	addr = addr.trimmed()
	if err := addr.validate(); err != nil {
		return err
	}
	c.City = addr.City
	c.Street = addr.Street
	c.House = addr.House
	c.Building = addr.Building
	c.Apartment = addr.Apartment
	c.Phone = addr.Phone
	c.Touch()
	return nil
}

// String renders the contact the way it is shown on an order
func (c *ClientContact) String() string {
	return strings.Join([]string{c.City, c.Street, c.House}, " ")
}

func (a Address) trimmed() Address {
	return Address{
		City:      strings.TrimSpace(a.City),
		Street:    strings.TrimSpace(a.Street),
		House:     strings.TrimSpace(a.House),
		Building:  strings.TrimSpace(a.Building),
		Apartment: strings.TrimSpace(a.Apartment),
		Phone:     strings.TrimSpace(a.Phone),
	}
}

func (a Address) validate() error {
	required := []struct {
		field, value string
		max          int
	}{
		{"city", a.City, 48},
		{"street", a.Street, 48},
		{"house", a.House, 12},
		{"phone", a.Phone, 24},
	}
	for _, r := range required {
		if r.value == "" {
			return shared.NewValidationError("VALIDATION_ERROR", "Contact "+r.field+" is required")
		}
		if len(r.value) > r.max {
			return shared.NewValidationError("VALIDATION_ERROR", "Contact "+r.field+" is too long")
		}
	}
	if len(a.Building) > 12 || len(a.Apartment) > 12 {
		return shared.NewValidationError("VALIDATION_ERROR", "Contact building and apartment cannot exceed 12 characters")
	}
	return nil
}
