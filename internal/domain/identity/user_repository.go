package identity

import "context"

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// Create inserts a new user and assigns its ID
	Create(ctx context.Context, user *User) error

	// Update updates an existing user
	Update(ctx context.Context, user *User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id int64) (*User, error)

	// FindByEmail finds a user by normalized email
	FindByEmail(ctx context.Context, email string) (*User, error)

	// ExistsByEmail checks if an email is already registered
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// ContactRepository defines the interface for delivery contact persistence
type ContactRepository interface {
	// FindByUserID returns the user's contact or shared.ErrNotFound
	FindByUserID(ctx context.Context, userID int64) (*ClientContact, error)

	// Save creates or updates a contact
	Save(ctx context.Context, contact *ClientContact) error

	// DeleteByUserID removes the user's contact, returning shared.ErrNotFound when absent
	DeleteByUserID(ctx context.Context, userID int64) error
}
