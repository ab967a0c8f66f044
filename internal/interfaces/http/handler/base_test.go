package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/marketplace/backend/internal/domain/identity"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/interfaces/http/dto"
	"github.com/marketplace/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func newTestContext(method, target string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, nil)
	return c, w
}

func TestGetRequestID(t *testing.T) {
	t.Run("from context", func(t *testing.T) {
		c, _ := newTestContext(http.MethodGet, "/")
		c.Set(middleware.RequestIDKey, "ctx-id")
		c.Request.Header.Set(middleware.RequestIDHeader, "header-id")
		assert.Equal(t, "ctx-id", getRequestID(c))
	})

	t.Run("falls back to header", func(t *testing.T) {
		c, _ := newTestContext(http.MethodGet, "/")
		c.Request.Header.Set(middleware.RequestIDHeader, "header-id")
		assert.Equal(t, "header-id", getRequestID(c))
	})

	t.Run("empty when not set", func(t *testing.T) {
		c, _ := newTestContext(http.MethodGet, "/")
		assert.Empty(t, getRequestID(c))
	})
}

func TestBaseHandler_SuccessResponses(t *testing.T) {
	h := &BaseHandler{}

	c, w := newTestContext(http.MethodGet, "/")
	h.Success(c, map[string]string{"key": "value"})
	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)

	c, w = newTestContext(http.MethodPost, "/")
	h.Created(c, map[string]int{"id": 1})
	assert.Equal(t, http.StatusCreated, w.Code)

	c, w = newTestContext(http.MethodDelete, "/")
	h.NoContent(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestPaginated(t *testing.T) {
	c, w := newTestContext(http.MethodGet, "/")
	Paginated(c, shared.NewPaginated([]string{"a", "b"}, 5, 1, 2))

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(5), resp.Meta.Total)
	assert.Len(t, resp.Data, 2)
}

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode int
		expectedKind shared.ErrorKind
		errorCode    string
	}{
		{
			name:         "validation",
			err:          shared.NewValidationError("MISSING_ITEMS", "Items are required"),
			expectedCode: http.StatusBadRequest,
			expectedKind: shared.KindValidation,
			errorCode:    "MISSING_ITEMS",
		},
		{
			name:         "not found",
			err:          shared.NewNotFoundError("PRODUCT_NOT_FOUND", "Product not found"),
			expectedCode: http.StatusNotFound,
			expectedKind: shared.KindNotFound,
			errorCode:    "PRODUCT_NOT_FOUND",
		},
		{
			name:         "authorization",
			err:          identity.Actor{Type: identity.UserTypeBuyer}.RequireShop(),
			expectedCode: http.StatusForbidden,
			expectedKind: shared.KindAuthorization,
			errorCode:    "NOT_SHOP_OWNER",
		},
		{
			name:         "conflict wrapped",
			err:          fmt.Errorf("checkout: %w", shared.NewConflictError("EMPTY_BASKET", "Basket is empty")),
			expectedCode: http.StatusConflict,
			expectedKind: shared.KindConflict,
			errorCode:    "EMPTY_BASKET",
		},
		{
			name:         "upstream fetch",
			err:          shared.NewDomainError(shared.KindUpstreamFetch, "FETCH_ERROR", "Feed could not be fetched"),
			expectedCode: http.StatusBadGateway,
			expectedKind: shared.KindUpstreamFetch,
			errorCode:    "FETCH_ERROR",
		},
		{
			name:         "parse",
			err:          shared.NewDomainError(shared.KindParse, "PARSE_ERROR", "Feed is not valid YAML"),
			expectedCode: http.StatusUnprocessableEntity,
			expectedKind: shared.KindParse,
			errorCode:    "PARSE_ERROR",
		},
		{
			name:         "unknown error",
			err:          errors.New("connection reset"),
			expectedCode: http.StatusInternalServerError,
			expectedKind: shared.KindInternal,
			errorCode:    dto.ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			c, w := newTestContext(http.MethodGet, "/")
			c.Set(middleware.RequestIDKey, "req-1")

			h.HandleError(c, tt.err)

			assert.Equal(t, tt.expectedCode, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.expectedKind, resp.Error.Kind)
			assert.Equal(t, tt.errorCode, resp.Error.Code)
			assert.Equal(t, "req-1", resp.Error.RequestID)
			assert.Len(t, c.Errors, 1)
		})
	}
}

func TestBaseHandler_HandleErrorHidesInternalDetail(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext(http.MethodGet, "/")

	h.HandleError(c, errors.New("pq: password authentication failed"))

	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.NotContains(t, resp.Error.Message, "pq:")
}

func TestBaseHandler_HandleErrorNil(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext(http.MethodGet, "/")

	h.HandleError(c, nil)

	assert.Empty(t, w.Body.String())
	assert.Empty(t, c.Errors)
}

func TestBindID(t *testing.T) {
	engine := gin.New()
	engine.GET("/items/:id", func(c *gin.Context) {
		id, ok := bindID(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id})
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/42", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":42}`, w.Body.String())

	for _, raw := range []string{"abc", "0", "-3"} {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/"+raw, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, raw)
		resp := decodeResponse(t, w)
		assert.Equal(t, shared.KindValidation, resp.Error.Kind)
	}
}

func TestActorFrom(t *testing.T) {
	h := &BaseHandler{}

	c, w := newTestContext(http.MethodGet, "/")
	_, ok := h.actorFrom(c)
	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	c, _ = newTestContext(http.MethodGet, "/")
	want := identity.Actor{UserID: 9, Type: identity.UserTypeShop}
	c.Set(middleware.ActorKey, want)
	got, ok := h.actorFrom(c)
	assert.True(t, ok)
	assert.Equal(t, want, got)
}
