package identity

import "github.com/marketplace/backend/internal/domain/shared"

// Aggregate type constants
const (
	AggregateTypeUser    = "User"
	AggregateTypeContact = "ClientContact"
)

// Identity domain event types
const (
	EventTypeUserRegistered = "UserRegistered"
	EventTypeContactSaved   = "ClientContactSaved"
)

// UserRegisteredEvent is published when a new account is created
type UserRegisteredEvent struct {
	shared.BaseDomainEvent
	Email string   `json:"email"`
	Type  UserType `json:"type"`
}

// NewUserRegisteredEvent creates a new UserRegisteredEvent
func NewUserRegisteredEvent(user *User) *UserRegisteredEvent {
	return &UserRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserRegistered, AggregateTypeUser, user.ID),
		Email:           user.Email,
		Type:            user.Type,
	}
}

// ContactSavedEvent is published when a delivery contact is created or changed
type ContactSavedEvent struct {
	shared.BaseDomainEvent
	UserID int64  `json:"user_id"`
	City   string `json:"city"`
}

// NewContactSavedEvent creates a new ContactSavedEvent
func NewContactSavedEvent(contact *ClientContact) *ContactSavedEvent {
	return &ContactSavedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContactSaved, AggregateTypeContact, contact.ID),
		UserID:          contact.UserID,
		City:            contact.City,
	}
}
