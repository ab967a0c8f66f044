package persistence

import (
	"fmt"

	"github.com/marketplace/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// ShopScope restricts a products query to one shop
func ShopScope(column string, shopID int64) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(column+" = ?", shopID)
	}
}

// Paginate applies the filter's page window. A zero page size disables it.
func Paginate(filter shared.Filter) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if filter.Page > 0 && filter.PageSize > 0 {
			return db.Offset(filter.Offset()).Limit(filter.PageSize)
		}
		return db
	}
}

// OrderBy applies a whitelisted sort with id as tiebreaker. prefix qualifies
// the column when the query joins other tables.
func OrderBy(filter shared.Filter, allowed map[string]bool, prefix string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		field := ValidateSortField(filter.OrderBy, allowed, "id")
		dir := ValidateSortOrder(filter.OrderDir)
		db = db.Order(fmt.Sprintf("%s%s %s", prefix, field, dir))
		if field != "id" {
			db = db.Order(prefix + "id ASC")
		}
		return db
	}
}
