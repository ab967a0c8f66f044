package identity

import (
	"testing"

	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Run("creates buyer by default and normalizes email", func(t *testing.T) {
		user, err := NewUser("  Buyer@Example.COM ", "Password123", "", Profile{FirstName: " Ann "})

		require.NoError(t, err)
		assert.Equal(t, "buyer@example.com", user.Email)
		assert.Equal(t, UserTypeBuyer, user.Type)
		assert.Equal(t, "Ann", user.FirstName)
		assert.True(t, user.IsActive)
		assert.True(t, user.IsNew())
		assert.NotEqual(t, "Password123", user.PasswordHash)
	})

	t.Run("accepts shop type", func(t *testing.T) {
		user, err := NewUser("shop@example.com", "Password123", UserTypeShop, Profile{})

		require.NoError(t, err)
		assert.True(t, user.Actor().IsShop())
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		_, err := NewUser("x@example.com", "Password123", UserType("vendor"), Profile{})

		require.Error(t, err)
		assert.Equal(t, shared.KindValidation, shared.KindOf(err))
	})

	t.Run("rejects bad email", func(t *testing.T) {
		_, err := NewUser("not-an-email", "Password123", UserTypeBuyer, Profile{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid email")
	})

	t.Run("rejects weak password", func(t *testing.T) {
		_, err := NewUser("x@example.com", "short", UserTypeBuyer, Profile{})
		require.Error(t, err)

		_, err = NewUser("x@example.com", "onlyletters", UserTypeBuyer, Profile{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "one letter and one number")
	})
}

func TestUser_VerifyPassword(t *testing.T) {
	user, err := NewUser("x@example.com", "Password123", UserTypeBuyer, Profile{})
	require.NoError(t, err)

	assert.True(t, user.VerifyPassword("Password123"))
	assert.False(t, user.VerifyPassword("Password124"))

	require.NoError(t, user.SetPassword("Another456"))
	assert.True(t, user.VerifyPassword("Another456"))
	assert.False(t, user.VerifyPassword("Password123"))
}

func TestUser_RecordCreated(t *testing.T) {
	user, err := NewUser("x@example.com", "Password123", UserTypeBuyer, Profile{})
	require.NoError(t, err)
	user.ID = 7

	user.RecordCreated()

	events := user.GetDomainEvents()
	require.Len(t, events, 1)
	evt, ok := events[0].(*UserRegisteredEvent)
	require.True(t, ok)
	assert.Equal(t, int64(7), evt.AggregateID())
	assert.Equal(t, "x@example.com", evt.Email)
}

func TestUser_FullName(t *testing.T) {
	u := &User{FirstName: "Ivan", LastName: "Petrov"}
	assert.Equal(t, "Petrov Ivan", u.FullName())
}

func TestActor(t *testing.T) {
	shop := Actor{UserID: 1, Type: UserTypeShop}
	buyer := Actor{UserID: 2, Type: UserTypeBuyer}
	admin := Actor{UserID: 3, Type: UserTypeAdmin}

	assert.NoError(t, shop.RequireShop())
	assert.Equal(t, shared.KindAuthorization, shared.KindOf(buyer.RequireShop()))
	assert.NoError(t, admin.RequireAdmin())
	assert.Error(t, shop.RequireAdmin())
}

func TestClientContact(t *testing.T) {
	t.Run("creates with required fields", func(t *testing.T) {
		c, err := NewClientContact(5, Address{City: " Moscow ", Street: "Tverskaya", House: "1", Phone: "+70000000000"})

		require.NoError(t, err)
		assert.Equal(t, "Moscow", c.City)
		assert.Equal(t, "Moscow Tverskaya 1", c.String())
	})

	t.Run("rejects missing phone", func(t *testing.T) {
		_, err := NewClientContact(5, Address{City: "Moscow", Street: "Tverskaya", House: "1"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "phone")
	})

	t.Run("rejects missing user", func(t *testing.T) {
		_, err := NewClientContact(0, Address{City: "a", Street: "b", House: "c", Phone: "d"})
		assert.Error(t, err)
	})
}
