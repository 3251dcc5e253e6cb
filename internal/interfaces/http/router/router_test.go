package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())

	assert.NotNil(t, r)
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)
	assert.Empty(t, r.middleware)
}

func TestRouterOptions(t *testing.T) {
	noop := func(c *gin.Context) { c.Next() }
	r := NewRouter(gin.New(), WithAPIVersion("v2"), WithMiddleware(noop, noop))

	assert.Equal(t, "v2", r.apiVersion)
	assert.Len(t, r.middleware, 2)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	group := NewDomainGroup("test", "/test").
		GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	NewRouter(engine, WithMiddleware(func(c *gin.Context) {
		c.Header("X-Api", "yes")
		c.Next()
	})).Register(group).Setup()

	w := serve(engine, http.MethodGet, "/api/v1/test/ping")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
	assert.Equal(t, "yes", w.Header().Get("X-Api"))
}

func TestDomainGroup(t *testing.T) {
	t.Run("creates group with name and prefix", func(t *testing.T) {
		g := NewDomainGroup("invoices", "/invoices")
		assert.Equal(t, "invoices", g.Name())
		assert.Equal(t, "/invoices", g.Prefix())
	})

	t.Run("registers every method", func(t *testing.T) {
		engine := gin.New()
		ok := func(c *gin.Context) { c.String(http.StatusOK, c.Request.Method) }
		g := NewDomainGroup("test", "/test").
			GET("/items", ok).
			POST("/items", ok).
			PUT("/items/:id", ok).
			DELETE("/items/:id", ok)
		g.RegisterRoutes(engine.Group("/api/v1"))

		tests := []struct {
			method string
			path   string
		}{
			{http.MethodGet, "/api/v1/test/items"},
			{http.MethodPost, "/api/v1/test/items"},
			{http.MethodPut, "/api/v1/test/items/7"},
			{http.MethodDelete, "/api/v1/test/items/7"},
		}
		for _, tt := range tests {
			w := serve(engine, tt.method, tt.path)
			assert.Equal(t, http.StatusOK, w.Code, "%s %s", tt.method, tt.path)
			assert.Equal(t, tt.method, w.Body.String())
		}
	})

	t.Run("runs route handlers in order", func(t *testing.T) {
		engine := gin.New()
		deny := func(c *gin.Context) { c.AbortWithStatus(http.StatusForbidden) }
		NewDomainGroup("test", "/test").
			DELETE("/items/:id", deny, func(c *gin.Context) { c.Status(http.StatusNoContent) }).
			RegisterRoutes(engine.Group(""))

		assert.Equal(t, http.StatusForbidden, serve(engine, http.MethodDelete, "/test/items/1").Code)
	})

	t.Run("applies middleware", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("test", "/test").Use(func(c *gin.Context) {
			c.Header("X-Test-Middleware", "applied")
			c.Next()
		})
		g.GET("/items", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
		g.RegisterRoutes(engine.Group("/api/v1"))

		w := serve(engine, http.MethodGet, "/api/v1/test/items")
		assert.Equal(t, "applied", w.Header().Get("X-Test-Middleware"))
	})

	t.Run("creates subgroups", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("reports", "/reports")
		g.Group("sales", "/sales").
			GET("", func(c *gin.Context) { c.String(http.StatusOK, "sales") }).
			GET("/summary", func(c *gin.Context) { c.String(http.StatusOK, "summary") })
		g.RegisterRoutes(engine.Group("/api/v1"))

		w := serve(engine, http.MethodGet, "/api/v1/reports/sales")
		assert.Equal(t, "sales", w.Body.String())
		w = serve(engine, http.MethodGet, "/api/v1/reports/sales/summary")
		assert.Equal(t, "summary", w.Body.String())
	})
}

func TestMultipleDomainGroups(t *testing.T) {
	engine := gin.New()
	products := NewDomainGroup("products", "/products").
		GET("", func(c *gin.Context) { c.String(http.StatusOK, "products") })
	customers := NewDomainGroup("customers", "/customers").
		GET("", func(c *gin.Context) { c.String(http.StatusOK, "customers") })

	NewRouter(engine).Register(products).Register(customers).Setup()

	assert.Equal(t, "products", serve(engine, http.MethodGet, "/api/v1/products").Body.String())
	assert.Equal(t, "customers", serve(engine, http.MethodGet, "/api/v1/customers").Body.String())
}
