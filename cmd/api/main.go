package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/receiptly/receiptly-api/internal/application/service"
	"github.com/receiptly/receiptly-api/internal/config"
	"github.com/receiptly/receiptly-api/internal/domain/repository"
	"github.com/receiptly/receiptly-api/internal/infrastructure/database"
	infraRepo "github.com/receiptly/receiptly-api/internal/infrastructure/repository"
	"github.com/receiptly/receiptly-api/internal/presentation/http/handler"
	"github.com/receiptly/receiptly-api/internal/presentation/http/routes"
	"github.com/receiptly/receiptly-api/pkg/email"
	"github.com/receiptly/receiptly-api/pkg/logger"
	"github.com/receiptly/receiptly-api/pkg/printer"
	"github.com/receiptly/receiptly-api/pkg/utils"
	"go.uber.org/zap"
)

const idempotencySweepInterval = time.Hour

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// logger mode comes from the config, so this one goes to stderr as JSON
		logger.New("production").Fatal("failed to load configuration", zap.Error(err))
	}

	log := logger.New(cfg.Log.Mode)
	defer log.Sync() //nolint:errcheck

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to database
	db, err := database.Open(&cfg.Database, cfg.App.Debug, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Initialize repositories
	store := infraRepo.NewStore(db)
	idempotencyRepo := infraRepo.NewIdempotencyRepository(db)

	// Initialize email service
	emailService := email.NewEmailService(email.EmailConfig{
		SMTPHost:     cfg.Email.SMTPHost,
		SMTPPort:     cfg.Email.SMTPPort,
		SMTPUsername: cfg.Email.SMTPUsername,
		SMTPPassword: cfg.Email.SMTPPassword,
		FromName:     cfg.Email.FromName,
		FromEmail:    cfg.Email.FromEmail,
	})
	if !emailService.Configured() {
		log.Warn("SMTP_HOST is not set, receipt emails are disabled")
	}

	// Initialize thermal printer
	thermalPrinter, err := printer.NewPrinterFromConfig(
		cfg.Printer.Type,
		cfg.Printer.USBPath,
		cfg.Printer.Address,
	)
	if err != nil {
		log.Warn("failed to initialize printer", zap.Error(err))
		thermalPrinter = printer.NewNullPrinter()
	}
	defer thermalPrinter.Close()

	// Initialize services
	auditService := service.NewAuditService(store, log)
	resolver := service.NewContactResolver(auditService)
	receiptService := service.NewReceiptService(store, resolver, auditService, log, cfg.Issuance.MaxAttempts)
	deliveryService := service.NewDeliveryService(
		store,
		receiptService,
		auditService,
		emailService,
		thermalPrinter,
		cfg.Printer.Type,
		cfg.Printer.CharWidth,
		log,
	)
	organizationService := service.NewOrganizationService(store, auditService)
	settingsService := service.NewSettingsService(store, auditService)
	catalogService := service.NewCatalogService(store, auditService)
	contactService := service.NewContactService(store, auditService)

	// Initialize handlers
	handlers := &routes.Handlers{
		Organization: handler.NewOrganizationHandler(organizationService),
		Settings:     handler.NewSettingsHandler(settingsService),
		Catalog:      handler.NewCatalogHandler(catalogService),
		Contact:      handler.NewContactHandler(contactService),
		Receipt:      handler.NewReceiptHandler(receiptService, deliveryService),
		Audit:        handler.NewAuditHandler(auditService),
	}

	// Setup routes
	router := routes.Setup(ctx, handlers, &routes.Deps{
		Verifier:         utils.NewTokenVerifier(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.Audience),
		Cfg:              cfg,
		Log:              log,
		OrganizationRepo: store.Repos().Organizations,
		IdempotencyRepo:  idempotencyRepo,
	})

	go sweepIdempotencyKeys(ctx, idempotencyRepo, log)

	server := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("starting server",
			zap.String("service", cfg.App.Name),
			zap.String("port", cfg.App.Port),
			zap.String("env", cfg.App.Env),
			zap.String("db_driver", cfg.Database.Driver),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
		os.Exit(1)
	}
}

// sweepIdempotencyKeys deletes expired idempotency keys until ctx is cancelled
func sweepIdempotencyKeys(ctx context.Context, repo repository.IdempotencyRepository, log *zap.Logger) {
	ticker := time.NewTicker(idempotencySweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := repo.DeleteExpired(ctx)
			if err != nil {
				log.Warn("idempotency sweep failed", zap.Error(err))
				continue
			}
			if deleted > 0 {
				log.Info("expired idempotency keys removed", zap.Int64("count", deleted))
			}
		}
	}
}
