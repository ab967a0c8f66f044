package persistence

import (
	"context"

	"github.com/marketplace/backend/internal/domain/identity"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormUserRepository implements UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

var errEmailTaken = shared.NewConflictError("EMAIL_TAKEN", "A user with this email already exists")

// Create inserts a new user and assigns its ID
func (r *GormUserRepository) Create(ctx context.Context, user *identity.User) error {
	model := models.UserModelFromDomain(user)
	model.ID = 0
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return translateError(err, errEmailTaken)
	}
	user.ID = model.ID
	return nil
}

// Update updates an existing user
func (r *GormUserRepository) Update(ctx context.Context, user *identity.User) error {
	model := models.UserModelFromDomain(user)
	result := r.db.WithContext(ctx).Model(&models.UserModel{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{
			"password_hash": model.PasswordHash,
			"first_name":    model.FirstName,
			"last_name":     model.LastName,
			"middle_name":   model.MiddleName,
			"company":       model.Company,
			"position":      model.Position,
			"is_active":     model.IsActive,
			"updated_at":    model.UpdatedAt,
		})
	if result.Error != nil {
		return translateError(result.Error, errEmailTaken)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id int64) (*identity.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, nil)
	}
	return model.ToDomain(), nil
}

// FindByEmail finds a user by normalized email
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&model).Error; err != nil {
		return nil, translateError(err, nil)
	}
	return model.ToDomain(), nil
}

// ExistsByEmail checks if an email is already registered
func (r *GormUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.UserModel{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GormContactRepository implements ContactRepository using GORM
type GormContactRepository struct {
	db *gorm.DB
}

// NewGormContactRepository creates a new GormContactRepository
func NewGormContactRepository(db *gorm.DB) *GormContactRepository {
	return &GormContactRepository{db: db}
}

// FindByUserID returns the user's contact or shared.ErrNotFound
func (r *GormContactRepository) FindByUserID(ctx context.Context, userID int64) (*identity.ClientContact, error) {
	var model models.ClientContactModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&model).Error; err != nil {
		return nil, translateError(err, nil)
	}
	return model.ToDomain(), nil
}

// Save creates or updates a contact
func (r *GormContactRepository) Save(ctx context.Context, contact *identity.ClientContact) error {
	model := &models.ClientContactModel{}
	model.FromDomain(contact)
	if contact.IsNew() {
		if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
			return translateError(err, shared.NewConflictError("CONTACT_EXISTS", "User already has a contact"))
		}
		contact.ID = model.ID
		return nil
	}
	return r.db.WithContext(ctx).Save(model).Error
}

// DeleteByUserID removes the user's contact, returning shared.ErrNotFound when absent
func (r *GormContactRepository) DeleteByUserID(ctx context.Context, userID int64) error {
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.ClientContactModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure interfaces are implemented
var (
	_ identity.UserRepository    = (*GormUserRepository)(nil)
	_ identity.ContactRepository = (*GormContactRepository)(nil)
)
