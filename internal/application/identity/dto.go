package identity

import (
	"time"

	"github.com/marketplace/backend/internal/domain/identity"
)

// RegisterRequest represents a request to create an account
type RegisterRequest struct {
	Email      string `json:"email" binding:"required,max=254"`
	Password   string `json:"password" binding:"required"`
	FirstName  string `json:"first_name" binding:"max=40"`
	LastName   string `json:"last_name" binding:"max=40"`
	MiddleName string `json:"middle_name" binding:"max=40"`
	Company    string `json:"company" binding:"max=40"`
	Position   string `json:"position" binding:"max=40"`
	Type       string `json:"type" binding:"omitempty,oneof=shop buyer"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	AccessToken string       `json:"access_token"`
	ExpiresAt   time.Time    `json:"expires_at"`
	TokenType   string       `json:"token_type"`
	User        UserResponse `json:"user"`
}

// LogoutInput identifies the token to revoke
type LogoutInput struct {
	UserID   int64
	TokenJTI string
	// TokenTTL is the remaining lifetime of the token
	TokenTTL time.Duration
}

// ContactRequest represents a request to create or replace the delivery contact
type ContactRequest struct {
	City      string `json:"city" binding:"required,max=48"`
	Street    string `json:"street" binding:"required,max=48"`
	House     string `json:"house" binding:"required,max=12"`
	Building  string `json:"building" binding:"max=12"`
	Apartment string `json:"apartment" binding:"max=12"`
	Phone     string `json:"phone" binding:"required,max=24"`
}

// ToAddress converts the request to a domain address
func (r ContactRequest) ToAddress() identity.Address {
	return identity.Address{
		City:      r.City,
		Street:    r.Street,
		House:     r.House,
		Building:  r.Building,
		Apartment: r.Apartment,
		Phone:     r.Phone,
	}
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID         int64     `json:"id"`
	Email      string    `json:"email"`
	Type       string    `json:"type"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	MiddleName string    `json:"middle_name,omitempty"`
	Company    string    `json:"company,omitempty"`
	Position   string    `json:"position,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ContactResponse represents a delivery contact in API responses
type ContactResponse struct {
	ID        int64  `json:"id"`
	City      string `json:"city"`
	Street    string `json:"street"`
	House     string `json:"house"`
	Building  string `json:"building,omitempty"`
	Apartment string `json:"apartment,omitempty"`
	Phone     string `json:"phone"`
}

// ToUserResponse converts a domain User to UserResponse
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		Type:       u.Type.String(),
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		MiddleName: u.MiddleName,
		Company:    u.Company,
		Position:   u.Position,
		CreatedAt:  u.CreatedAt,
	}
}

// ToContactResponse converts a domain ClientContact to ContactResponse
func ToContactResponse(c *identity.ClientContact) ContactResponse {
	return ContactResponse{
		ID:        c.ID,
		City:      c.City,
		Street:    c.Street,
		House:     c.House,
		Building:  c.Building,
		Apartment: c.Apartment,
		Phone:     c.Phone,
	}
}
