package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketplace/backend/internal/domain/shared"
)

func TestStatusForKind(t *testing.T) {
	tests := []struct {
		kind     shared.ErrorKind
		expected int
	}{
		{shared.KindValidation, http.StatusBadRequest},
		{shared.KindNotFound, http.StatusNotFound},
		{shared.KindAuthorization, http.StatusForbidden},
		{shared.KindUnauthenticated, http.StatusUnauthorized},
		{shared.KindConflict, http.StatusConflict},
		{shared.KindUpstreamFetch, http.StatusBadGateway},
		{shared.KindParse, http.StatusUnprocessableEntity},
		{shared.KindInternal, http.StatusInternalServerError},
		{KindRateLimited, http.StatusTooManyRequests},
		{shared.ErrorKind("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.expected, StatusForKind(tt.kind))
		})
	}
}

func TestNewErrorResponse_JSON(t *testing.T) {
	resp := NewErrorResponse(shared.KindConflict, "EMPTY_BASKET", "Basket is empty", "req-1")

	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, false, decoded["success"])
	assert.NotContains(t, decoded, "data")

	errObj := decoded["error"].(map[string]any)
	assert.Equal(t, "EMPTY_BASKET", errObj["code"])
	assert.Equal(t, "CONFLICT", errObj["kind"])
	assert.Equal(t, "Basket is empty", errObj["message"])
	assert.Equal(t, "req-1", errObj["request_id"])
	assert.NotContains(t, errObj, "details")
}

func TestNewValidationErrorResponse(t *testing.T) {
	resp := NewValidationErrorResponse("Request validation failed", "", []ValidationDetail{
		{Field: "url", Message: "This field is required"},
	})

	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, shared.KindValidation, resp.Error.Kind)
	assert.Len(t, resp.Error.Details, 1)
}

func TestNewPaginatedResponse(t *testing.T) {
	page := shared.NewPaginated([]string{"a", "b"}, 12, 2, 5)
	resp := NewPaginatedResponse(page)

	assert.True(t, resp.Success)
	assert.Equal(t, []string{"a", "b"}, resp.Data)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(12), resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.Page)
	assert.Equal(t, 3, resp.Meta.TotalPages)

	empty := NewPaginatedResponse(shared.Paginated[int]{Page: 1, PageSize: 20})
	assert.Equal(t, []int{}, empty.Data)
}
