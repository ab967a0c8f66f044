package persistence

import (
	"context"
	"time"

	"github.com/marketplace/backend/internal/domain/catalog"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// productRow is a product joined with its shop and category names
type productRow struct {
	models.ProductModel
	ShopName     string
	CategoryName string
}

func (row *productRow) toDomain() *catalog.Product {
	p := row.ProductModel.ToDomain()
	p.ShopName = row.ShopName
	p.CategoryName = row.CategoryName
	p.Parameters = make([]catalog.ProductParameter, 0)
	return p
}

type productParameterRow struct {
	ProductID     int64
	ParameterID   int64
	ParameterName string
	Value         string
}

func (r *GormProductRepository) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("products AS p").
		Joins("JOIN shops AS s ON s.id = p.shop_id").
		Joins("JOIN categories AS c ON c.id = p.category_id")
}

const productColumns = "p.*, s.name AS shop_name, c.name AS category_name"

// FindByID finds a product with its category, shop and parameters
func (r *GormProductRepository) FindByID(ctx context.Context, id int64) (*catalog.Product, error) {
	var rows []productRow
	if err := r.joined(ctx).Select(productColumns).Where("p.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, shared.ErrNotFound
	}
	products := []*catalog.Product{rows[0].toDomain()}
	if err := r.attachParameters(ctx, products); err != nil {
		return nil, err
	}
	return products[0], nil
}

// FindByExternalID finds a product by its natural key
func (r *GormProductRepository) FindByExternalID(ctx context.Context, shopID, externalID int64) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("shop_id = ? AND external_id = ?", shopID, externalID).
		First(&model).Error; err != nil {
		return nil, translateError(err, nil)
	}
	return model.ToDomain(), nil
}

// Upsert inserts or overwrites the product identified by (shop, external_id)
func (r *GormProductRepository) Upsert(ctx context.Context, product *catalog.Product) (bool, error) {
	db := r.db.WithContext(ctx)

	existing, err := r.idByNaturalKey(db, product.ShopID, product.ExternalID)
	if err != nil {
		return false, err
	}

	model := &models.ProductModel{}
	model.FromDomain(product)
	model.ID = 0
	model.UpdatedAt = time.Now()
	if model.CreatedAt.IsZero() {
		model.CreatedAt = model.UpdatedAt
	}

	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "shop_id"}, {Name: "external_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"category_id", "name", "quantity", "price", "price_rcc", "updated_at"}),
	}).Create(model).Error; err != nil {
		return false, err
	}

	product.ID = model.ID
	if product.ID == 0 {
		if product.ID, err = r.idByNaturalKey(db, product.ShopID, product.ExternalID); err != nil {
			return false, err
		}
	}
	return existing == 0, nil
}

func (r *GormProductRepository) idByNaturalKey(db *gorm.DB, shopID, externalID int64) (int64, error) {
	var ids []int64
	if err := db.Model(&models.ProductModel{}).
		Where("shop_id = ? AND external_id = ?", shopID, externalID).
		Limit(1).
		Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	return ids[0], nil
}

// UpsertParameter sets the value of a parameter for a product
func (r *GormProductRepository) UpsertParameter(ctx context.Context, productID, parameterID int64, value string) error {
	now := time.Now()
	model := &models.ProductParameterModel{
		BaseModel:   models.BaseModel{CreatedAt: now, UpdatedAt: now},
		ProductID:   productID,
		ParameterID: parameterID,
		Value:       value,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}, {Name: "parameter_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(model).Error
}

// FindAll lists products matching the filter
func (r *GormProductRepository) FindAll(ctx context.Context, filter catalog.ProductFilter) ([]catalog.Product, int64, error) {
	query := r.joined(ctx)
	if filter.ShopID > 0 {
		query = query.Scopes(ShopScope("p.shop_id", filter.ShopID))
	}
	if filter.CategoryID > 0 {
		query = query.Where("p.category_id = ?", filter.CategoryID)
	}
	if filter.OnlyOpenShops {
		query = query.Where("s.state = ?", true)
	}
	if filter.Search != "" {
		query = query.Where("p.name LIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []productRow
	if err := query.Select(productColumns).
		Scopes(OrderBy(filter.Filter, ProductSortFields, "p."), Paginate(filter.Filter)).
		Scan(&rows).Error; err != nil {
		return nil, 0, err
	}

	products := make([]*catalog.Product, len(rows))
	for i := range rows {
		products[i] = rows[i].toDomain()
	}
	if err := r.attachParameters(ctx, products); err != nil {
		return nil, 0, err
	}

	result := make([]catalog.Product, len(products))
	for i, p := range products {
		result[i] = *p
	}
	return result, total, nil
}

func (r *GormProductRepository) attachParameters(ctx context.Context, products []*catalog.Product) error {
	if len(products) == 0 {
		return nil
	}
	byID := make(map[int64]*catalog.Product, len(products))
	ids := make([]int64, len(products))
	for i, p := range products {
		byID[p.ID] = p
		ids[i] = p.ID
	}

	var rows []productParameterRow
	if err := r.db.WithContext(ctx).
		Table("product_parameters AS pp").
		Select("pp.product_id, pp.parameter_id, pa.name AS parameter_name, pp.value").
		Joins("JOIN parameters AS pa ON pa.id = pp.parameter_id").
		Where("pp.product_id IN ?", ids).
		Order("pa.name ASC").
		Scan(&rows).Error; err != nil {
		return err
	}
	for _, row := range rows {
		if p, ok := byID[row.ProductID]; ok {
			p.Parameters = append(p.Parameters, catalog.ProductParameter(row))
		}
	}
	return nil
}

// FindMissingIDs returns the subset of ids that do not exist
func (r *GormProductRepository) FindMissingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []int64
	if err := r.db.WithContext(ctx).Model(&models.ProductModel{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return nil, err
	}
	present := make(map[int64]struct{}, len(found))
	for _, id := range found {
		present[id] = struct{}{}
	}
	var missing []int64
	for _, id := range ids {
		if _, ok := present[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

// CountByShop returns the number of products a shop has
func (r *GormProductRepository) CountByShop(ctx context.Context, shopID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ProductModel{}).Scopes(ShopScope("shop_id", shopID)).Count(&count).Error
	return count, err
}

// Ensure interface is implemented
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
