package identity

import (
	"context"
	"testing"

	"github.com/marketplace/backend/internal/domain/identity"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var buyer = identity.Actor{UserID: 7, Type: identity.UserTypeBuyer}

func validContactRequest() ContactRequest {
	return ContactRequest{City: "Riga", Street: "Brivibas", House: "12", Apartment: "4", Phone: "+37120000000"}
}

func newContactService() (*ContactService, *MockContactRepository, *MockEventPublisher) {
	contacts := new(MockContactRepository)
	publisher := NewMockEventPublisher()
	svc := NewContactService(contacts)
	svc.SetEventPublisher(publisher)
	return svc, contacts, publisher
}

func storedContact(t *testing.T) *identity.ClientContact {
	t.Helper()
	c, err := identity.NewClientContact(buyer.UserID, validContactRequest().ToAddress())
	require.NoError(t, err)
	c.ID = 9
	return c
}

func TestContactService_CreateContact(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the first contact", func(t *testing.T) {
		svc, contacts, publisher := newContactService()
		contacts.On("FindByUserID", mock.Anything, int64(7)).Return(nil, shared.ErrNotFound)
		contacts.On("Save", mock.Anything, mock.AnythingOfType("*identity.ClientContact")).
			Run(func(args mock.Arguments) { args.Get(1).(*identity.ClientContact).ID = 9 }).
			Return(nil)

		resp, err := svc.CreateContact(ctx, buyer, validContactRequest())

		require.NoError(t, err)
		assert.Equal(t, int64(9), resp.ID)
		assert.Equal(t, "Riga", resp.City)
		assert.Len(t, publisher.GetEventsByType(identity.EventTypeContactSaved), 1)
	})

	t.Run("second contact conflicts", func(t *testing.T) {
		svc, contacts, _ := newContactService()
		contacts.On("FindByUserID", mock.Anything, int64(7)).Return(storedContact(t), nil)

		_, err := svc.CreateContact(ctx, buyer, validContactRequest())

		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "CONTACT_EXISTS", de.Code)
		contacts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("missing phone", func(t *testing.T) {
		svc, contacts, _ := newContactService()
		contacts.On("FindByUserID", mock.Anything, int64(7)).Return(nil, shared.ErrNotFound)
		req := validContactRequest()
		req.Phone = "  "

		_, err := svc.CreateContact(ctx, buyer, req)

		assert.Equal(t, shared.KindValidation, shared.KindOf(err))
		contacts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestContactService_UpdateContact(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces fields", func(t *testing.T) {
		svc, contacts, _ := newContactService()
		contacts.On("FindByUserID", mock.Anything, int64(7)).Return(storedContact(t), nil)
		contacts.On("Save", mock.Anything, mock.MatchedBy(func(c *identity.ClientContact) bool {
			return c.ID == 9 && c.City == "Tallinn" && c.Apartment == ""
		})).Return(nil)

		req := validContactRequest()
		req.City = "Tallinn"
		req.Apartment = ""
		resp, err := svc.UpdateContact(ctx, buyer, req)

		require.NoError(t, err)
		assert.Equal(t, "Tallinn", resp.City)
		contacts.AssertExpectations(t)
	})

	t.Run("no contact yet", func(t *testing.T) {
		svc, contacts, _ := newContactService()
		contacts.On("FindByUserID", mock.Anything, int64(7)).Return(nil, shared.ErrNotFound)

		_, err := svc.UpdateContact(ctx, buyer, validContactRequest())

		assert.ErrorIs(t, err, ErrContactNotFound)
	})
}

func TestContactService_GetAndDelete(t *testing.T) {
	ctx := context.Background()
	svc, contacts, _ := newContactService()
	contacts.On("FindByUserID", mock.Anything, int64(7)).Return(storedContact(t), nil)
	contacts.On("DeleteByUserID", mock.Anything, int64(7)).Return(nil).Once()
	contacts.On("DeleteByUserID", mock.Anything, int64(7)).Return(shared.ErrNotFound)

	resp, err := svc.GetContact(ctx, buyer)
	require.NoError(t, err)
	assert.Equal(t, "+37120000000", resp.Phone)

	require.NoError(t, svc.DeleteContact(ctx, buyer))
	assert.ErrorIs(t, svc.DeleteContact(ctx, buyer), ErrContactNotFound)
}
