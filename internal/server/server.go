package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"stellarcade-backend-go/internal/config"
	"stellarcade-backend-go/internal/controllers"
	"stellarcade-backend-go/internal/middleware"
	"stellarcade-backend-go/internal/routes"
	"stellarcade-backend-go/internal/stellar"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const healthCheckTimeout = 5 * time.Second

// HealthChecker reports whether the ledger store is usable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Dependencies are the collaborators the HTTP surface is built from
type Dependencies struct {
	Network *stellar.Network
	Health  HealthChecker
	Wallet  *controllers.WalletController
	Auth    middleware.TokenValidator
	Logger  *zap.Logger
}

type Server struct {
	config config.ServerConfig
	router *gin.Engine
	server *http.Server
	logger *zap.Logger
}

func NewRouter(cfg config.ServerConfig, deps Dependencies) *gin.Engine {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(deps.Logger))

	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		defer cancel()

		if err := deps.Health.HealthCheck(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/health/horizon", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		defer cancel()

		root, err := deps.Network.Ping(ctx)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":             "ok",
			"horizon_version":    root.HorizonVersion,
			"network_passphrase": root.NetworkPassphrase,
		})
	})

	router.GET("/network", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"network":     deps.Network.Name,
			"horizon_url": deps.Network.HorizonURL,
		})
	})

	wallet := router.Group("/api/wallet")
	routes.RegisterWalletRoutes(wallet, middleware.Auth(deps.Auth), deps.Wallet)

	return router
}

func New(cfg config.ServerConfig, deps Dependencies) *Server {
	router := NewRouter(cfg, deps)

	return &Server{
		config: cfg,
		router: router,
		logger: deps.Logger,
		server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Port),
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
	}
}

// Start blocks until the server stops; http.ErrServerClosed is returned after Shutdown
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.server.Addr))
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
