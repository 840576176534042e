package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stellarcade-backend-go/internal/auth"
	"stellarcade-backend-go/internal/config"
	"stellarcade-backend-go/internal/controllers"
	"stellarcade-backend-go/internal/stellar"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubHealth struct{ err error }

func (s stubHealth) HealthCheck(context.Context) error { return s.err }

func newTestRouter(t *testing.T, health HealthChecker, horizonURL string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	return NewRouter(config.ServerConfig{Debug: true}, Dependencies{
		Network: stellar.NewNetwork(config.StellarConfig{Network: "testnet", HorizonURL: horizonURL, HorizonTimeout: time.Second}, logger),
		Health:  health,
		Wallet:  controllers.NewWalletController(nil, logger),
		Auth:    auth.NewJWTManager("test-secret-key-32-chars-minimum", time.Hour),
		Logger:  logger,
	})
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t, stubHealth{}, "https://horizon-testnet.stellar.org")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
	assert.Equal(t, http.StatusOK, w.Code)

	router = newTestRouter(t, stubHealth{err: errors.New("db closed")}, "https://horizon-testnet.stellar.org")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHorizonHealth(t *testing.T) {
	horizon := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"horizon_version":"2.30.0","network_passphrase":"Test SDF Network ; September 2015"}`))
	}))
	defer horizon.Close()

	router := newTestRouter(t, stubHealth{}, horizon.URL)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/horizon", http.NoBody))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Test SDF Network")
}

func TestNetworkInfo(t *testing.T) {
	router := newTestRouter(t, stubHealth{}, "https://horizon-testnet.stellar.org")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/network", http.NoBody))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"network":"testnet","horizon_url":"https://horizon-testnet.stellar.org"}`, w.Body.String())
}

func TestWalletRoutesMountedBehindAuth(t *testing.T) {
	router := newTestRouter(t, stubHealth{}, "https://horizon-testnet.stellar.org")

	for _, path := range []string{"/api/wallet/deposit", "/api/wallet/withdraw"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, http.NoBody))
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}
