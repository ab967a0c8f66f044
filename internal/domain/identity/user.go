package identity

import (
	"regexp"
	"strings"

	"github.com/marketplace/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// UserType is the marketplace role of an account
type UserType string

const (
	UserTypeShop  UserType = "shop"
	UserTypeBuyer UserType = "buyer"
	UserTypeAdmin UserType = "admin"
)

// IsValid checks if the type is a known UserType
func (t UserType) IsValid() bool {
	switch t {
	case UserTypeShop, UserTypeBuyer, UserTypeAdmin:
		return true
	}
	return false
}

// String returns the string representation of UserType
func (t UserType) String() string {
	return string(t)
}

// Password cost for bcrypt
const bcryptCost = 12

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// User is a marketplace account. Shop owners, buyers and operators share
// the same table and are told apart by Type.
type User struct {
	shared.BaseAggregateRoot
	Email        string
	PasswordHash string
	Type         UserType
	FirstName    string
	LastName     string
	MiddleName   string
	Company      string
	Position     string
	IsActive     bool
}

// Profile holds the optional descriptive fields of a user
type Profile struct {
	FirstName  string
	LastName   string
	MiddleName string
	Company    string
	Position   string
}

// NewUser creates a new active user
func NewUser(email, password string, userType UserType, profile Profile) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if userType == "" {
		userType = UserTypeBuyer
	}
	if !userType.IsValid() {
		return nil, shared.NewValidationError("INVALID_USER_TYPE", "User type must be one of shop, buyer, admin")
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError(shared.KindInternal, "PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	user := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             email,
		PasswordHash:      passwordHash,
		Type:              userType,
		FirstName:         strings.TrimSpace(profile.FirstName),
		LastName:          strings.TrimSpace(profile.LastName),
		MiddleName:        strings.TrimSpace(profile.MiddleName),
		Company:           strings.TrimSpace(profile.Company),
		Position:          strings.TrimSpace(profile.Position),
		IsActive:          true,
	}

	return user, nil
}

// RecordCreated registers the creation event once the user has an ID
func (u *User) RecordCreated() {
	u.AddDomainEvent(NewUserRegisteredEvent(u))
}

// SetPassword replaces the password hash
func (u *User) SetPassword(newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return shared.NewDomainError(shared.KindInternal, "PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	u.PasswordHash = hash
	u.Touch()
	return nil
}

// VerifyPassword checks if the provided password matches the stored hash
func (u *User) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// CanLogin reports whether the account may authenticate
func (u *User) CanLogin() bool {
	return u.IsActive
}

// Actor returns the identity used by application services for capability checks
func (u *User) Actor() Actor {
	return Actor{UserID: u.ID, Type: u.Type}
}

// FullName joins the non-empty name parts
func (u *User) FullName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{u.LastName, u.FirstName, u.MiddleName} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// Actor is an authenticated caller as seen by the application layer
type Actor struct {
	UserID int64
	Type   UserType
}

// IsShop reports whether the actor is a shop owner
func (a Actor) IsShop() bool {
	return a.Type == UserTypeShop
}

// IsAdmin reports whether the actor is an operator
func (a Actor) IsAdmin() bool {
	return a.Type == UserTypeAdmin
}

// RequireShop returns an authorization error unless the actor is a shop owner
func (a Actor) RequireShop() error {
	if !a.IsShop() {
		return shared.NewAuthorizationError("NOT_SHOP_OWNER", "Only shop accounts can perform this action")
	}
	return nil
}

// RequireAdmin returns an authorization error unless the actor is an operator
func (a Actor) RequireAdmin() error {
	if !a.IsAdmin() {
		return shared.NewAuthorizationError("NOT_ADMIN", "Only operators can perform this action")
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return shared.NewValidationError("WEAK_PASSWORD", "Password cannot be empty")
	}
	if len(password) < 8 {
		return shared.NewValidationError("WEAK_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 72 {
		return shared.NewValidationError("WEAK_PASSWORD", "Password cannot exceed 72 bytes")
	}

	hasLetter := regexp.MustCompile(`[a-zA-Z]`).MatchString(password)
	hasNumber := regexp.MustCompile(`[0-9]`).MatchString(password)
	if !hasLetter || !hasNumber {
		return shared.NewValidationError("WEAK_PASSWORD", "Password must contain at least one letter and one number")
	}

	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return shared.NewValidationError("INVALID_EMAIL", "Email is required")
	}
	if len(email) > 200 {
		return shared.NewValidationError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewValidationError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
