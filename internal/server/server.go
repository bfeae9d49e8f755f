package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/matthieukhl/storefront/internal/catalog"
	"github.com/matthieukhl/storefront/internal/metrics"
	"github.com/matthieukhl/storefront/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthChecker is implemented by backends the health endpoint should probe
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type Config struct {
	Store       *store.Store
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
	CORSOrigins []string
	// Health is optional; when set /api/health reports its status.
	Health HealthChecker
}

type Server struct {
	router  *gin.Engine
	store   *store.Store
	metrics *metrics.Metrics
	health  HealthChecker
}

// NewServer creates a new server instance
func NewServer(cfg Config) *Server {
	router := gin.Default()

	server := &Server{
		router:  router,
		store:   cfg.Store,
		metrics: cfg.Metrics,
		health:  cfg.Health,
	}

	router.Use(server.countRequests)
	router.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	server.setupRoutes()
	if cfg.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}
	return server
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	c.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}
	c.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	for _, o := range origins {
		if o == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	return c
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	// Same shape as the remote catalog so catalog.url can point here.
	s.router.GET("/products", s.getProducts)

	api := s.router.Group("/api")
	{
		api.GET("/health", s.healthCheck)
		api.GET("/state", s.getState)

		api.POST("/session", s.login)
		api.DELETE("/session", s.logout)

		api.POST("/catalog/refresh", s.refreshCatalog)
		api.PUT("/selection", s.selectProduct)

		cart := api.Group("/cart", s.requireSession)
		{
			cart.POST("/items", s.addCartItem)
			cart.PUT("/items/:id", s.updateCartItem)
			cart.DELETE("/items/:id", s.removeCartItem)
			cart.DELETE("", s.clearCart)
		}
	}
}

// Handler exposes the router for embedding and tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	return s.router.Run(addr)
}

func (s *Server) countRequests(c *gin.Context) {
	c.Next()
	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	s.metrics.HTTPRequest(c.Request.Method, route, strconv.Itoa(c.Writer.Status()))
}

// healthCheck endpoint for monitoring
func (s *Server) healthCheck(c *gin.Context) {
	if s.health != nil {
		if err := s.health.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "error",
				"error":  "storage backend unavailable",
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "storefront",
		"version": "0.1.0",
	})
}

func (s *Server) getProducts(c *gin.Context) {
	c.Data(http.StatusOK, "application/json; charset=utf-8", catalog.FixtureJSON())
}
