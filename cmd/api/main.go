package main

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/scenart/agency-api/internal/application/service"
	"github.com/scenart/agency-api/internal/config"
	"github.com/scenart/agency-api/internal/infrastructure/database"
	"github.com/scenart/agency-api/internal/infrastructure/repository"
	"github.com/scenart/agency-api/internal/presentation/http/handler"
	"github.com/scenart/agency-api/internal/presentation/http/routes"
	"github.com/scenart/agency-api/pkg/email"
	"github.com/scenart/agency-api/pkg/pdf"
	"github.com/scenart/agency-api/pkg/storage"
	"github.com/scenart/agency-api/pkg/utils"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Structured logger
	var logger *zap.Logger
	var err error
	if cfg.App.Debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Seed default data
	if err := database.SeedDefaultData(db, &cfg.Admin); err != nil {
		log.Printf("Warning: Failed to seed default data: %v", err)
	}

	// Initialize JWT manager
	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiryHours,
		cfg.JWT.RefreshExpiryHours,
	)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	performerRepo := repository.NewPerformerRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	batchRepo := repository.NewPaymentBatchRepository(db)
	receiptRepo := repository.NewReceiptRepository(db)
	remittanceRepo := repository.NewRemittanceRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	// Initialize email service
	emailService := email.NewEmailService(email.EmailConfig{
		SMTPHost:      cfg.Email.SMTPHost,
		SMTPPort:      cfg.Email.SMTPPort,
		SMTPUsername:  cfg.Email.SMTPUser,
		SMTPPassword:  cfg.Email.SMTPPassword,
		FromName:      cfg.Email.FromName,
		FromEmail:     cfg.Email.FromEmail,
		PublicBaseURL: cfg.Email.PublicBaseURL,
	})

	// Initialize PDF renderer, falling back to a no-op when Chrome is not
	// available. Receipt generation keeps working without documents.
	var renderer pdf.Renderer
	chromeRenderer, err := pdf.NewChromeRenderer(&pdf.ChromeConfig{
		ExecPath:  cfg.PDF.ChromePath,
		Timeout:   cfg.PDF.Timeout,
		NoSandbox: true,
		Logger:    logger,
	})
	if err != nil {
		log.Printf("Warning: Failed to initialize PDF renderer: %v", err)
		renderer = pdf.NullRenderer{}
	} else {
		renderer = chromeRenderer
		defer chromeRenderer.Close()
	}

	// Initialize document storage
	store, err := storage.NewLocalStore(cfg.Storage.Path)
	if err != nil {
		log.Fatalf("Failed to initialize document storage: %v", err)
	}

	// Amount rules applied at signature time
	rules := service.AmountRules{
		MaxReimbursement:  decimal.RequireFromString(cfg.Payment.MaxReimbursement),
		AdvanceFee:        decimal.RequireFromString(cfg.Payment.AdvanceFee),
		AdvanceNetCeiling: decimal.RequireFromString(cfg.Payment.AdvanceNetCeiling),
	}
	tokenTTL := time.Duration(cfg.Payment.TokenTTLDays) * 24 * time.Hour

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtManager)
	performerService := service.NewPerformerService(performerRepo)
	batchService := service.NewBatchService(batchRepo, bookingRepo, receiptRepo,
		emailService, renderer, store, tokenTTL, logger)
	receiptService := service.NewReceiptService(receiptRepo, emailService, store, tokenTTL, logger)
	signatureService := service.NewSignatureService(receiptRepo, renderer, store, rules, logger)
	remittanceService := service.NewRemittanceService(remittanceRepo, logger)

	// Initialize handlers
	handlers := &routes.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		Batch:      handler.NewBatchHandler(batchService),
		Performer:  handler.NewPerformerHandler(performerService),
		Receipt:    handler.NewReceiptHandler(receiptService),
		Signature:  handler.NewSignatureHandler(signatureService, cfg.Storage.UploadMaxSize),
		Remittance: handler.NewRemittanceHandler(remittanceService),
	}

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
		Logger:          logger,
	})

	logger.Info("starting server", zap.String("port", cfg.App.Port))
	if err := router.Run(":" + cfg.App.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
