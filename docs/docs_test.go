package docs

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestSpecIsValidYAML(t *testing.T) {
	var doc struct {
		OpenAPI string         `yaml:"openapi"`
		Paths   map[string]any `yaml:"paths"`
	}
	require.NoError(t, yaml.Unmarshal(Spec(), &doc))
	assert.Equal(t, "3.0.3", doc.OpenAPI)

	for _, path := range []string{
		"/user/register", "/user/login", "/user/contact",
		"/shop", "/shop/{id}", "/shop/update", "/shop/state", "/shop/orders",
		"/categories", "/products", "/products/{id}",
		"/basket", "/basket/clear", "/order", "/order/{id}", "/order/{id}/status",
		"/health",
	} {
		assert.Contains(t, doc.Paths, path)
	}
}

func TestRegister(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	Register(engine)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, SpecPath, nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/yaml", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "Marketplace Backend API")

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), SpecPath)
}
