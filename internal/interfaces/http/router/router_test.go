package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/erp/retail/internal/interfaces/http/handler"
	"github.com/erp/retail/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())

	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	group := NewDomainGroup("test", "/test")
	group.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	NewRouter(engine).Register(group).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/test/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestRouterWithMiddleware(t *testing.T) {
	engine := gin.New()
	deny := func(c *gin.Context) {
		c.AbortWithStatus(http.StatusUnauthorized)
	}
	group := NewDomainGroup("test", "/test").GET("/ping", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	engine.GET("/open", func(c *gin.Context) { c.Status(http.StatusOK) })
	NewRouter(engine, WithMiddleware(deny)).Register(group).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/test/ping", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/open", nil))
	assert.Equal(t, http.StatusOK, w.Code, "middleware applies only under the API prefix")
}

func TestDomainGroup(t *testing.T) {
	t.Run("methods and subgroups", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("orders", "/orders")
		g.GET("", func(c *gin.Context) { c.String(http.StatusOK, "list") }).
			POST("", func(c *gin.Context) { c.String(http.StatusCreated, "create") }).
			PUT("/:id", func(c *gin.Context) { c.String(http.StatusOK, "put "+c.Param("id")) }).
			DELETE("/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
		g.Group("parts", "/:id/parts").GET("", func(c *gin.Context) {
			c.String(http.StatusOK, "parts "+c.Param("id"))
		})
		g.RegisterRoutes(engine.Group("/api"))

		cases := []struct {
			method, path string
			status       int
			body         string
		}{
			{http.MethodGet, "/api/orders", http.StatusOK, "list"},
			{http.MethodPost, "/api/orders", http.StatusCreated, "create"},
			{http.MethodPut, "/api/orders/7", http.StatusOK, "put 7"},
			{http.MethodDelete, "/api/orders/7", http.StatusNoContent, ""},
			{http.MethodGet, "/api/orders/7/parts", http.StatusOK, "parts 7"},
		}
		for _, tc := range cases {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
			assert.Equal(t, tc.status, w.Code, tc.method+" "+tc.path)
			assert.Equal(t, tc.body, w.Body.String(), tc.method+" "+tc.path)
		}
	})

	t.Run("group middleware", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("test", "/test").Use(func(c *gin.Context) {
			c.Header("X-Group", "yes")
			c.Next()
		})
		g.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
		g.RegisterRoutes(engine.Group(""))

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test/ping", nil))
		assert.Equal(t, "yes", w.Header().Get("X-Group"))
	})

	t.Run("name and prefix", func(t *testing.T) {
		g := NewDomainGroup("catalog", "/catalog")
		assert.Equal(t, "catalog", g.Name())
		assert.Equal(t, "/catalog", g.Prefix())
	})
}

func TestHandlers_RegisterAllRoutes(t *testing.T) {
	middleware.SetupValidator()
	engine := gin.New()
	h := Handlers{
		Catalog:      handler.NewCatalogHandler(nil, nil),
		Partner:      handler.NewPartnerHandler(nil, nil),
		Inventory:    handler.NewInventoryHandler(nil, nil),
		Drawer:       handler.NewDrawerHandler(nil),
		Sale:         handler.NewSaleHandler(nil, nil),
		Purchase:     handler.NewPurchaseHandler(nil),
		ServiceOrder: handler.NewServiceOrderHandler(nil),
		Finance:      handler.NewFinanceHandler(nil, nil, nil, nil),
		Report:       handler.NewReportHandler(nil),
	}
	require.Len(t, h.Groups(), 8)

	require.NotPanics(t, func() {
		NewRouter(engine).Register(h.Groups()...).Setup()
	})

	registered := make(map[string]bool)
	for _, route := range engine.Routes() {
		registered[route.Method+" "+route.Path] = true
	}
	for _, want := range []string{
		"POST /api/v1/trade/checkout",
		"GET /api/v1/catalog/products/code/:code",
		"GET /api/v1/cashier/drawers/current",
		"POST /api/v1/servicedesk/orders/:id/parts/:part_id/apply",
		"POST /api/v1/servicedesk/budgets/:id/approve",
		"GET /api/v1/finance/payment-methods/:id/fee",
		"POST /api/v1/inventory/counts/:id/finish",
		"GET /api/v1/reports/dre",
	} {
		assert.True(t, registered[want], want)
	}
}

func TestNewEngine(t *testing.T) {
	failing := errors.New("connection refused")
	health := handler.NewHealthHandler(map[string]handler.HealthCheck{
		"database": func(context.Context) error { return nil },
	})
	engine, err := NewEngine(EngineConfig{
		Mode: gin.TestMode,
		CORS: middleware.DefaultCORSConfig(),
	}, zap.NewNop(), health)
	require.NoError(t, err)

	t.Run("health", func(t *testing.T) {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("unknown route", func(t *testing.T) {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
		require.Equal(t, http.StatusNotFound, w.Code)

		var body struct {
			Success bool `json:"success"`
			Error   struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.False(t, body.Success)
		assert.Equal(t, "ROUTE_NOT_FOUND", body.Error.Code)
	})

	t.Run("unhealthy dependency", func(t *testing.T) {
		sick, err := NewEngine(EngineConfig{}, zap.NewNop(), handler.NewHealthHandler(map[string]handler.HealthCheck{
			"redis": func(context.Context) error { return failing },
		}))
		require.NoError(t, err)

		w := httptest.NewRecorder()
		sick.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), "connection refused")
	})
}
