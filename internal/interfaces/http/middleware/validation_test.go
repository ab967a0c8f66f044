package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketplace/backend/internal/interfaces/http/dto"
)

type basketLine struct {
	Product  int64 `json:"product" binding:"required,min=1"`
	Quantity int64 `json:"quantity" binding:"required,min=1"`
}

type basketInput struct {
	Items []basketLine `json:"items" binding:"required,min=1,dive"`
}

func newValidationRouter() *gin.Engine {
	SetupValidator()
	router := gin.New()
	router.Use(RequestID())
	router.POST("/test", func(c *gin.Context) {
		var req basketInput
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(len(req.Items)))
	})
	return router
}

func postJSON(router http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleValidationError(t *testing.T) {
	router := newValidationRouter()

	t.Run("missing items", func(t *testing.T) {
		w := postJSON(router, `{}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.Equal(t, "VALIDATION", string(resp.Error.Kind))
		require.Len(t, resp.Error.Details, 1)
		assert.Equal(t, "items", resp.Error.Details[0].Field)
		assert.Equal(t, "This field is required", resp.Error.Details[0].Message)
		assert.NotEmpty(t, resp.Error.RequestID)
	})

	t.Run("invalid nested quantity", func(t *testing.T) {
		w := postJSON(router, `{"items":[{"product":1,"quantity":0}]}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"field":"quantity"`)
	})

	t.Run("malformed body", func(t *testing.T) {
		w := postJSON(router, `{"items":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid request body")
	})

	t.Run("valid body", func(t *testing.T) {
		w := postJSON(router, `{"items":[{"product":1,"quantity":2}]}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestGetValidationMessage(t *testing.T) {
	type sample struct {
		Name  string `validate:"min=5"`
		Count int    `validate:"max=3"`
		Type  string `validate:"oneof=shop buyer"`
		URL   string `validate:"url"`
	}

	err := validator.New().Struct(sample{Name: "ab", Count: 9, Type: "admin", URL: "nope"})
	require.Error(t, err)

	messages := map[string]string{}
	for _, fe := range err.(validator.ValidationErrors) {
		messages[fe.Field()] = getValidationMessage(fe)
	}
	assert.Equal(t, "Must be at least 5 characters", messages["Name"])
	assert.Equal(t, "Must be at most 3", messages["Count"])
	assert.Equal(t, "Must be one of: shop buyer", messages["Type"])
	assert.Equal(t, "Invalid URL format", messages["URL"])
}
