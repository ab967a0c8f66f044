package identity

import (
	"context"
	"errors"

	"github.com/marketplace/backend/internal/domain/identity"
	"github.com/marketplace/backend/internal/domain/shared"
)

// ErrContactNotFound is returned when the user has no delivery contact
var ErrContactNotFound = shared.NewNotFoundError("CONTACT_NOT_FOUND", "Delivery contact not found")

// ContactService manages the single delivery contact of a user
type ContactService struct {
	contactRepo    identity.ContactRepository
	eventPublisher shared.EventPublisher
}

// NewContactService creates a new ContactService
func NewContactService(contactRepo identity.ContactRepository) *ContactService {
	return &ContactService{contactRepo: contactRepo}
}

// SetEventPublisher sets the event publisher for domain events
func (s *ContactService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// GetContact returns the actor's contact
func (s *ContactService) GetContact(ctx context.Context, actor identity.Actor) (*ContactResponse, error) {
	contact, err := s.find(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	resp := ToContactResponse(contact)
	return &resp, nil
}

// CreateContact creates the actor's contact. A second contact is a conflict.
func (s *ContactService) CreateContact(ctx context.Context, actor identity.Actor, req ContactRequest) (*ContactResponse, error) {
	_, err := s.contactRepo.FindByUserID(ctx, actor.UserID)
	switch {
	case err == nil:
		return nil, shared.NewConflictError("CONTACT_EXISTS", "A delivery contact already exists, update it instead")
	case !errors.Is(err, shared.ErrNotFound):
		return nil, err
	}

	contact, err := identity.NewClientContact(actor.UserID, req.ToAddress())
	if err != nil {
		return nil, err
	}
	return s.save(ctx, contact)
}

// UpdateContact replaces the address fields of the actor's contact
func (s *ContactService) UpdateContact(ctx context.Context, actor identity.Actor, req ContactRequest) (*ContactResponse, error) {
	contact, err := s.find(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if err := contact.Update(req.ToAddress()); err != nil {
		return nil, err
	}
	return s.save(ctx, contact)
}

// DeleteContact removes the actor's contact
func (s *ContactService) DeleteContact(ctx context.Context, actor identity.Actor) error {
	if err := s.contactRepo.DeleteByUserID(ctx, actor.UserID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return ErrContactNotFound
		}
		return err
	}
	return nil
}

func (s *ContactService) find(ctx context.Context, userID int64) (*identity.ClientContact, error) {
	contact, err := s.contactRepo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrContactNotFound
		}
		return nil, err
	}
	return contact, nil
}

func (s *ContactService) save(ctx context.Context, contact *identity.ClientContact) (*ContactResponse, error) {
	if err := s.contactRepo.Save(ctx, contact); err != nil {
		return nil, err
	}
	if s.eventPublisher != nil {
		_ = s.eventPublisher.Publish(ctx, identity.NewContactSavedEvent(contact))
	}
	resp := ToContactResponse(contact)
	return &resp, nil
}
