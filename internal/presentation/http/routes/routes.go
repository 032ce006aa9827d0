package routes

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/receiptly/receiptly-api/internal/config"
	"github.com/receiptly/receiptly-api/internal/domain/enum"
	domainRepo "github.com/receiptly/receiptly-api/internal/domain/repository"
	"github.com/receiptly/receiptly-api/internal/presentation/http/handler"
	"github.com/receiptly/receiptly-api/internal/presentation/http/middleware"
	"github.com/receiptly/receiptly-api/pkg/utils"
	"go.uber.org/zap"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Organization *handler.OrganizationHandler
	Settings     *handler.SettingsHandler
	Catalog      *handler.CatalogHandler
	Contact      *handler.ContactHandler
	Receipt      *handler.ReceiptHandler
	Audit        *handler.AuditHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	Verifier         *utils.TokenVerifier
	Cfg              *config.Config
	Log              *zap.Logger
	OrganizationRepo domainRepo.OrganizationRepository
	IdempotencyRepo  domainRepo.IdempotencyRepository
}

// Setup creates the Gin router and registers all routes. Background work
// started for the router stops when ctx is cancelled.
func Setup(ctx context.Context, h *Handlers, deps *Deps) *gin.Engine {
	handler.RegisterValidators()

	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Log))
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		// Authenticated, no organization selected yet
		authed := v1.Group("")
		authed.Use(middleware.AuthMiddleware(deps.Verifier))
		registerOrganizationRoutes(authed, h)

		// Authenticated and scoped to the organization in X-Organization-ID
		scoped := v1.Group("")
		scoped.Use(middleware.AuthMiddleware(deps.Verifier))
		scoped.Use(middleware.OrganizationMiddleware(deps.OrganizationRepo))

		rateLimiter := middleware.NewOrganizationRateLimiter(ctx, middleware.RateLimiterConfig{
			RequestsPerSecond: float64(deps.Cfg.RateLimit.Requests) / deps.Cfg.RateLimit.RateWindow().Seconds(),
			BurstSize:         deps.Cfg.RateLimit.Requests,
			CleanupInterval:   5 * time.Minute,
			EntryTTL:          10 * time.Minute,
		})
		scoped.Use(rateLimiter.Middleware())

		registerScopedRoutes(scoped, h, deps)
	}

	return router
}

func registerOrganizationRoutes(authed *gin.RouterGroup, h *Handlers) {
	orgs := authed.Group("/organizations")
	{
		orgs.GET("", h.Organization.ListMine)
		orgs.POST("", h.Organization.Create)
	}
}

func registerScopedRoutes(scoped *gin.RouterGroup, h *Handlers, deps *Deps) {
	current := scoped.Group("/organizations/current")
	{
		current.GET("", h.Organization.GetCurrent)
		current.POST("/members", middleware.RequireRole(enum.MemberRoleOwner, enum.MemberRoleAdmin), h.Organization.AddMember)
	}

	// Settings
	scoped.GET("/settings", h.Settings.GetSettings)
	scoped.PUT("/settings", h.Settings.UpdateSettings)

	// Catalog
	scoped.GET("/receipt-types", h.Catalog.ListReceiptTypes)
	scoped.POST("/receipt-types", h.Catalog.CreateReceiptType)
	scoped.GET("/item-categories", h.Catalog.ListItemCategories)
	scoped.POST("/item-categories", h.Catalog.CreateItemCategory)
	scoped.GET("/contact-types", h.Catalog.ListContactTypes)

	// Contacts
	contacts := scoped.Group("/contacts")
	{
		contacts.GET("", h.Contact.List)
		contacts.POST("", h.Contact.Create)
		contacts.GET("/:id", h.Contact.Get)
		contacts.PUT("/:id", h.Contact.Update)
	}

	// Receipts
	registerReceiptRoutes(scoped, h, deps)

	// Audit trail
	scoped.GET("/audit-logs", h.Audit.List)

	// Printer
	scoped.GET("/printer/status", h.Receipt.PrinterStatus)
}

func registerReceiptRoutes(scoped *gin.RouterGroup, h *Handlers, deps *Deps) {
	receipts := scoped.Group("/receipts")
	{
		receipts.GET("", h.Receipt.List)
		// Issuance uses idempotency middleware to prevent duplicates
		receipts.POST("", middleware.IdempotencyRequired(middleware.IdempotencyConfig{
			Repo: deps.IdempotencyRepo,
			Log:  deps.Log,
		}), h.Receipt.Issue)
		receipts.GET("/:id", h.Receipt.Get)
		receipts.POST("/:id/void", h.Receipt.Void)
		receipts.POST("/:id/send", h.Receipt.Send)
		receipts.POST("/:id/viewed", h.Receipt.MarkViewed)
		receipts.GET("/:id/pdf", h.Receipt.PDF)
		receipts.POST("/:id/print", h.Receipt.Print)
	}
}
