package persistence

import (
	"context"

	appcatalog "github.com/marketplace/backend/internal/application/catalog"
	apptrade "github.com/marketplace/backend/internal/application/trade"
	"github.com/marketplace/backend/internal/domain/catalog"
	"github.com/marketplace/backend/internal/domain/identity"
	"github.com/marketplace/backend/internal/domain/trade"
	"gorm.io/gorm"
)

// GormCatalogTransactionScope runs feed ingestion inside one GORM transaction
type GormCatalogTransactionScope struct {
	db *gorm.DB
}

// NewGormCatalogTransactionScope creates a new GormCatalogTransactionScope.
func NewGormCatalogTransactionScope(db *gorm.DB) *GormCatalogTransactionScope {
	return &GormCatalogTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormCatalogTransactionScope) Execute(ctx context.Context, fn func(repos appcatalog.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// GormTradeTransactionScope runs basket and checkout work inside one GORM transaction
type GormTradeTransactionScope struct {
	db *gorm.DB
}

// NewGormTradeTransactionScope creates a new GormTradeTransactionScope.
func NewGormTradeTransactionScope(db *gorm.DB) *GormTradeTransactionScope {
	return &GormTradeTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormTradeTransactionScope) Execute(ctx context.Context, fn func(repos apptrade.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories hands out repositories bound to one transaction.
// SQLite runs with a single connection, so code inside a scope must only use these.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// ShopRepo returns the shop repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ShopRepo() catalog.ShopRepository {
	return NewGormShopRepository(r.tx)
}

// CategoryRepo returns the category repository scoped to the current transaction.
func (r *gormTransactionalRepositories) CategoryRepo() catalog.CategoryRepository {
	return NewGormCategoryRepository(r.tx)
}

// ParameterRepo returns the parameter repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ParameterRepo() catalog.ParameterRepository {
	return NewGormParameterRepository(r.tx)
}

// ProductRepo returns the product repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ProductRepo() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

// OrderRepo returns the order repository scoped to the current transaction.
func (r *gormTransactionalRepositories) OrderRepo() trade.OrderRepository {
	return NewGormOrderRepository(r.tx)
}

// ContactRepo returns the contact repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ContactRepo() identity.ContactRepository {
	return NewGormContactRepository(r.tx)
}

var (
	_ appcatalog.TransactionScope          = (*GormCatalogTransactionScope)(nil)
	_ apptrade.TransactionScope            = (*GormTradeTransactionScope)(nil)
	_ appcatalog.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
	_ apptrade.TransactionalRepositories   = (*gormTransactionalRepositories)(nil)
)
