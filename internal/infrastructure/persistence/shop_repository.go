package persistence

import (
	"context"

	"github.com/marketplace/backend/internal/domain/catalog"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormShopRepository implements ShopRepository using GORM
type GormShopRepository struct {
	db *gorm.DB
}

// NewGormShopRepository creates a new GormShopRepository
func NewGormShopRepository(db *gorm.DB) *GormShopRepository {
	return &GormShopRepository{db: db}
}

// FindByID finds a shop by ID
func (r *GormShopRepository) FindByID(ctx context.Context, id int64) (*catalog.Shop, error) {
	var model models.ShopModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, nil)
	}
	return model.ToDomain(), nil
}

// FindByOwner finds the shop owned by a user
func (r *GormShopRepository) FindByOwner(ctx context.Context, ownerID int64) (*catalog.Shop, error) {
	var model models.ShopModel
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&model).Error; err != nil {
		return nil, translateError(err, nil)
	}
	return model.ToDomain(), nil
}

// FindRefreshable returns open shops that have a stored feed URL
func (r *GormShopRepository) FindRefreshable(ctx context.Context) ([]catalog.Shop, error) {
	var rows []models.ShopModel
	if err := r.db.WithContext(ctx).
		Where("state = ? AND url <> ?", true, "").
		Order("id").
		Find(&rows).Error; err != nil {
		return nil, translateError(err, nil)
	}
	shops := make([]catalog.Shop, 0, len(rows))
	for i := range rows {
		shops = append(shops, *rows[i].ToDomain())
	}
	return shops, nil
}

// GetOrCreate returns the owner's shop, inserting shop when the owner has none
func (r *GormShopRepository) GetOrCreate(ctx context.Context, shop *catalog.Shop) (*catalog.Shop, bool, error) {
	model := &models.ShopModel{}
	model.FromDomain(shop)
	model.ID = 0

	// Use ON CONFLICT to handle race conditions
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner_id"}},
			DoNothing: true,
		}).
		Create(model)
	if result.Error != nil {
		return nil, false, result.Error
	}

	created := result.RowsAffected > 0
	stored, err := r.FindByOwner(ctx, shop.OwnerID)
	if err != nil {
		return nil, false, err
	}
	return stored, created, nil
}

// Update persists the mutable shop fields (url, state)
func (r *GormShopRepository) Update(ctx context.Context, shop *catalog.Shop) error {
	model := &models.ShopModel{}
	model.FromDomain(shop)
	result := r.db.WithContext(ctx).Model(&models.ShopModel{}).
		Where("id = ?", shop.ID).
		Updates(map[string]any{
			"url":        model.URL,
			"state":      model.State,
			"updated_at": model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindAll lists shops with pagination
func (r *GormShopRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Shop, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ShopModel{})
	if filter.Search != "" {
		query = query.Where("name LIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ShopModel
	if err := query.Scopes(OrderBy(filter, ShopSortFields, ""), Paginate(filter)).Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	shops := make([]catalog.Shop, len(rows))
	for i := range rows {
		shops[i] = *rows[i].ToDomain()
	}
	return shops, total, nil
}

// GormCategoryRepository implements CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// FindByID finds a category by its ID
func (r *GormCategoryRepository) FindByID(ctx context.Context, id int64) (*catalog.Category, error) {
	var model models.CategoryModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, nil)
	}
	return model.ToDomain(), nil
}

// GetOrCreateByName returns the category with the given name, inserting it when missing
func (r *GormCategoryRepository) GetOrCreateByName(ctx context.Context, name string) (*catalog.Category, error) {
	category, err := catalog.NewCategory(name)
	if err != nil {
		return nil, err
	}
	model := &models.CategoryModel{Name: category.Name}
	model.FromDomainBaseEntity(category.BaseEntity)

	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).
		Create(model).Error; err != nil {
		return nil, err
	}

	var stored models.CategoryModel
	if err := r.db.WithContext(ctx).Where("name = ?", category.Name).First(&stored).Error; err != nil {
		return nil, translateError(err, nil)
	}
	return stored.ToDomain(), nil
}

// FindAll returns all categories ordered by name
func (r *GormCategoryRepository) FindAll(ctx context.Context) ([]catalog.Category, error) {
	var rows []models.CategoryModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	categories := make([]catalog.Category, len(rows))
	for i := range rows {
		categories[i] = *rows[i].ToDomain()
	}
	return categories, nil
}

// Count returns the number of categories
func (r *GormCategoryRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.CategoryModel{}).Count(&count).Error
	return count, err
}

// GormParameterRepository implements ParameterRepository using GORM
type GormParameterRepository struct {
	db *gorm.DB
}

// NewGormParameterRepository creates a new GormParameterRepository
func NewGormParameterRepository(db *gorm.DB) *GormParameterRepository {
	return &GormParameterRepository{db: db}
}

// GetOrCreateByName returns the parameter with the given name, inserting it when missing
func (r *GormParameterRepository) GetOrCreateByName(ctx context.Context, name string) (*catalog.Parameter, error) {
	parameter, err := catalog.NewParameter(name)
	if err != nil {
		return nil, err
	}
	model := &models.ParameterModel{Name: parameter.Name}
	model.FromDomainBaseEntity(parameter.BaseEntity)

	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).
		Create(model).Error; err != nil {
		return nil, err
	}

	var stored models.ParameterModel
	if err := r.db.WithContext(ctx).Where("name = ?", parameter.Name).First(&stored).Error; err != nil {
		return nil, translateError(err, nil)
	}
	return stored.ToDomain(), nil
}

// Count returns the number of parameters
func (r *GormParameterRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ParameterModel{}).Count(&count).Error
	return count, err
}

// Ensure interfaces are implemented
var (
	_ catalog.ShopRepository      = (*GormShopRepository)(nil)
	_ catalog.CategoryRepository  = (*GormCategoryRepository)(nil)
	_ catalog.ParameterRepository = (*GormParameterRepository)(nil)
)
