package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/turbokuzmich/yourcosmetics/internal/application/container"
	"github.com/turbokuzmich/yourcosmetics/internal/infrastructure/email"
	"github.com/turbokuzmich/yourcosmetics/internal/infrastructure/observability/logging"
	"github.com/turbokuzmich/yourcosmetics/internal/infrastructure/storage"
	"github.com/turbokuzmich/yourcosmetics/pkg/config"
)

func TestNewServesHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := logging.NewDiscardLogger()
	c := container.NewContainer(container.Settings{SiteURL: "http://localhost:3000"},
		storage.NewMemoryStore(nil), email.NewLogNotifier(logger), logger)

	srv := New("18080", c)
	assert.Equal(t, ":18080", srv.httpServer.Addr)
	assert.Equal(t, config.ServerReadTimeout, srv.httpServer.ReadTimeout)
	assert.Equal(t, config.ServerWriteTimeout, srv.httpServer.WriteTimeout)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
