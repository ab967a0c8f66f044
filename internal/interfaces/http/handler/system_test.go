package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping() error { return p.err }

func TestNewSystemHandler(t *testing.T) {
	h := NewSystemHandler("marketplace-backend", "1.0.0", nil)
	assert.NotNil(t, h)
	assert.False(t, h.startTime.IsZero())
}

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	h := NewSystemHandler("marketplace-backend", "1.0.0", nil)
	c, w := newTestContext(http.MethodGet, "/system/info")

	h.GetSystemInfo(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]any)
	assert.Equal(t, "marketplace-backend", data["name"])
	assert.Equal(t, "1.0.0", data["version"])
	assert.NotEmpty(t, data["go_version"])
	assert.NotEmpty(t, data["uptime"])
}

func TestSystemHandler_Health(t *testing.T) {
	t.Run("database up", func(t *testing.T) {
		h := NewSystemHandler("marketplace-backend", "1.0.0", stubPinger{})
		c, w := newTestContext(http.MethodGet, "/health")

		h.Health(c)

		assert.Equal(t, http.StatusOK, w.Code)
		data := decodeResponse(t, w).Data.(map[string]any)
		assert.Equal(t, "healthy", data["status"])
		assert.Equal(t, "up", data["database"])
	})

	t.Run("database down", func(t *testing.T) {
		h := NewSystemHandler("marketplace-backend", "1.0.0", stubPinger{err: errors.New("dial tcp: refused")})
		c, w := newTestContext(http.MethodGet, "/health")

		h.Health(c)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, shared.KindInternal, resp.Error.Kind)
		assert.Equal(t, "DATABASE_UNAVAILABLE", resp.Error.Code)
		assert.NotContains(t, resp.Error.Message, "dial tcp")
	})
}
