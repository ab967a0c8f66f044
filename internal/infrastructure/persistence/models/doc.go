// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
// - base.go: BaseModel shared by every table
// - identity.go: users and client_contacts
// - catalog.go: shops, categories, parameters, products, product_parameters
// - trade.go: orders and order_items
//
// The SQL migrations under migrations/ are the source of truth for PostgreSQL.
// AutoMigrate is only used for the embedded SQLite mode and for tests.
package models
