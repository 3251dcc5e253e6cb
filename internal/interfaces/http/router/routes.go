package router

import (
	"net/http"

	"github.com/erp/pos/internal/infrastructure/auth"
	"github.com/erp/pos/internal/infrastructure/config"
	"github.com/erp/pos/internal/infrastructure/logger"
	"github.com/erp/pos/internal/interfaces/http/dto"
	"github.com/erp/pos/internal/interfaces/http/handler"
	"github.com/erp/pos/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Options configure the HTTP engine
type Options struct {
	HTTP           config.HTTPConfig
	ServiceName    string
	TracingEnabled bool
	// JWTService enables bearer token authentication when set. Without it
	// the cashier is taken from the X-Cashier-ID header and supervisor
	// routes are open.
	JWTService *auth.JWTService
	// Meter records HTTP server metrics when set
	Meter  metric.Meter
	Logger *zap.Logger
}

// Handlers are the endpoint handlers mounted by NewEngine
type Handlers struct {
	Products  *handler.ProductHandler
	Customers *handler.CustomerHandler
	Invoices  *handler.InvoiceHandler
	Reports   *handler.ReportHandler
	System    *handler.SystemHandler
}

// NewEngine builds the gin engine with the middleware chain and every route
func NewEngine(opts Options, h Handlers) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(opts.HTTP.TrustedProxies); err != nil {
		log.Warn("Invalid trusted proxies, trusting none", zap.Error(err))
		_ = engine.SetTrustedProxies(nil)
	}

	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		middleware.Tracing(middleware.TracingConfig{ServiceName: opts.ServiceName, Enabled: opts.TracingEnabled}),
		middleware.TraceAttributes(),
		logger.GinMiddleware(log),
		middleware.HTTPMetrics(opts.Meter, log),
		middleware.Secure(),
		middleware.CORSWithConfig(middleware.CORSConfigFrom(opts.HTTP)),
		middleware.BodyLimit(opts.HTTP.MaxBodySize),
	)
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeNotFound, "Route not found", middleware.GetRequestID(c)))
	})
	engine.GET("/health", h.System.Health)

	authenticate := middleware.CashierFromHeader()
	supervisor := func(c *gin.Context) { c.Next() }
	if opts.JWTService != nil {
		authenticate = middleware.JWTAuth(middleware.JWTMiddlewareConfig{JWTService: opts.JWTService, Logger: log})
		supervisor = middleware.RequireRole(auth.RoleSupervisor)
	}

	NewRouter(engine, WithAPIVersion("v1"), WithMiddleware(authenticate)).
		Register(productRoutes(h.Products, supervisor)).
		Register(customerRoutes(h.Customers, supervisor)).
		Register(invoiceRoutes(h.Invoices, supervisor)).
		Register(reportRoutes(h.Reports)).
		Setup()

	return engine
}

func productRoutes(h *handler.ProductHandler, supervisor gin.HandlerFunc) *DomainGroup {
	return NewDomainGroup("products", "/products").
		POST("", h.Create).
		GET("", h.List).
		GET("/:id", h.GetByID).
		PUT("/:id", h.Update).
		DELETE("/:id", supervisor, h.Delete).
		POST("/:id/inventory", h.AdjustInventory).
		PUT("/:id/expiration", h.SetExpiration).
		GET("/:id/price", h.Price)
}

func customerRoutes(h *handler.CustomerHandler, supervisor gin.HandlerFunc) *DomainGroup {
	return NewDomainGroup("customers", "/customers").
		POST("", h.Register).
		GET("", h.List).
		GET("/:id", h.GetByID).
		PUT("/:id", h.Rename).
		DELETE("/:id", supervisor, h.Delete).
		PUT("/:id/senior-discount", h.SetSeniorDiscount).
		PUT("/:id/contact", h.SetContact).
		PUT("/:id/type", h.ChangeType).
		POST("/:id/points/redeem", h.RedeemPoints).
		POST("/:id/points/accrue", supervisor, h.AccruePoints)
}

func invoiceRoutes(h *handler.InvoiceHandler, supervisor gin.HandlerFunc) *DomainGroup {
	return NewDomainGroup("invoices", "/invoices").
		POST("", h.Create).
		GET("", h.List).
		GET("/:number", h.GetByNumber).
		GET("/:number/receipt", h.Receipt).
		POST("/:number/lines", h.AddLine).
		DELETE("/:number/lines/:line", h.RemoveLine).
		POST("/:number/payment", h.Pay).
		POST("/:number/void", supervisor, h.Void)
}

func reportRoutes(h *handler.ReportHandler) *DomainGroup {
	group := NewDomainGroup("reports", "/reports")
	group.Group("sales", "/sales").
		GET("", h.Sales).
		GET("/summary", h.Summary).
		POST("/archive", h.Archive)
	return group
}
