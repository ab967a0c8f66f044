package models

import (
	"github.com/marketplace/backend/internal/domain/identity"
)

// UserModel is the persistence model for the User domain entity.
type UserModel struct {
	BaseModel
	Email        string `gorm:"type:varchar(200);not null;uniqueIndex:idx_users_email"`
	PasswordHash string `gorm:"type:varchar(255);not null"`
	Type         string `gorm:"type:varchar(5);not null;index"`
	FirstName    string `gorm:"type:varchar(40)"`
	LastName     string `gorm:"type:varchar(40)"`
	MiddleName   string `gorm:"type:varchar(40)"`
	Company      string `gorm:"type:varchar(40)"`
	Position     string `gorm:"type:varchar(40)"`
	IsActive     bool   `gorm:"not null"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseAggregateRoot: m.aggregateRoot(),
		Email:             m.Email,
		PasswordHash:      m.PasswordHash,
		Type:              identity.UserType(m.Type),
		FirstName:         m.FirstName,
		LastName:          m.LastName,
		MiddleName:        m.MiddleName,
		Company:           m.Company,
		Position:          m.Position,
		IsActive:          m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain User entity.
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainBaseEntity(u.BaseEntity)
	m.Email = u.Email
	m.PasswordHash = u.PasswordHash
	m.Type = string(u.Type)
	m.FirstName = u.FirstName
	m.LastName = u.LastName
	m.MiddleName = u.MiddleName
	m.Company = u.Company
	m.Position = u.Position
	m.IsActive = u.IsActive
}

// UserModelFromDomain creates a new persistence model from a domain User entity.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}

// ClientContactModel is the persistence model for a buyer's delivery contact.
type ClientContactModel struct {
	BaseModel
	UserID    int64  `gorm:"not null;uniqueIndex:idx_client_contacts_user"`
	City      string `gorm:"type:varchar(50);not null"`
	Street    string `gorm:"type:varchar(100);not null"`
	House     string `gorm:"type:varchar(15);not null"`
	Building  string `gorm:"type:varchar(15)"`
	Apartment string `gorm:"type:varchar(15)"`
	Phone     string `gorm:"type:varchar(20);not null"`
}

// TableName returns the table name for GORM
func (ClientContactModel) TableName() string {
	return "client_contacts"
}

// ToDomain converts the persistence model to a domain ClientContact.
func (m *ClientContactModel) ToDomain() *identity.ClientContact {
	return &identity.ClientContact{
		BaseAggregateRoot: m.aggregateRoot(),
		UserID:            m.UserID,
		City:              m.City,
		Street:            m.Street,
		House:             m.House,
		Building:          m.Building,
		Apartment:         m.Apartment,
		Phone:             m.Phone,
	}
}

// FromDomain populates the persistence model from a domain ClientContact.
func (m *ClientContactModel) FromDomain(c *identity.ClientContact) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.UserID = c.UserID
	m.City = c.City
	m.Street = c.Street
	m.House = c.House
	m.Building = c.Building
	m.Apartment = c.Apartment
	m.Phone = c.Phone
}
