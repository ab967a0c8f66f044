package catalog

import (
	"context"

	"github.com/marketplace/backend/internal/domain/catalog"
)

// TransactionScope provides transactional access to catalog repositories.
// A feed is written through one scope so a failing good leaves no partial catalog.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all catalog repositories within a transaction.
// All repositories returned share the same underlying database transaction.
type TransactionalRepositories interface {
	ShopRepo() catalog.ShopRepository
	CategoryRepo() catalog.CategoryRepository
	ParameterRepo() catalog.ParameterRepository
	ProductRepo() catalog.ProductRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
// This is useful for testing or when transaction support is not required.
type NoOpTransactionScope struct {
	shopRepo      catalog.ShopRepository
	categoryRepo  catalog.CategoryRepository
	parameterRepo catalog.ParameterRepository
	productRepo   catalog.ProductRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	shopRepo catalog.ShopRepository,
	categoryRepo catalog.CategoryRepository,
	parameterRepo catalog.ParameterRepository,
	productRepo catalog.ProductRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		shopRepo:      shopRepo,
		categoryRepo:  categoryRepo,
		parameterRepo: parameterRepo,
		productRepo:   productRepo,
	}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ShopRepo returns the shop repository
func (s *NoOpTransactionScope) ShopRepo() catalog.ShopRepository { return s.shopRepo }

// CategoryRepo returns the category repository
func (s *NoOpTransactionScope) CategoryRepo() catalog.CategoryRepository { return s.categoryRepo }

// ParameterRepo returns the parameter repository
func (s *NoOpTransactionScope) ParameterRepo() catalog.ParameterRepository { return s.parameterRepo }

// ProductRepo returns the product repository
func (s *NoOpTransactionScope) ProductRepo() catalog.ProductRepository { return s.productRepo }
