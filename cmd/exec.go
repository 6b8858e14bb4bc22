package cmd

import (
	"context"
	"log"
	"log/slog"
	"net/http"

	"easel-ticket/config"
	"easel-ticket/internal/clock"
	"easel-ticket/internal/services"
	"easel-ticket/internal/services/payment"
	"easel-ticket/internal/store"
	_ "easel-ticket/migrations"
	"easel-ticket/monitoring"
	"easel-ticket/security"
	"easel-ticket/utils"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func Start() error {
	app := pocketbase.New()

	// Load configuration
	cfg := config.LoadConfig()

	// Initialize Redis. The ledger, rate limits and caches degrade to
	// pass-through without it.
	redisClient, err := utils.NewRedisClient(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Printf("Redis unavailable, continuing without it: %v", err)
	}

	// Initialize PubNub
	var publisher services.Publisher
	if pn := services.NewPubNubPublisher(cfg.PubNubPublishKey, cfg.PubNubSubscribeKey, cfg.PubNubSecretKey); pn != nil {
		publisher = pn
	} else {
		log.Println("PubNub keys not set, payment push notifications disabled")
	}

	// Initialize Stripe
	gateway := payment.NewStripe(payment.StripeConfig{
		APIKey:        cfg.StripeAPIKey,
		WebhookSecret: cfg.StripeWebhookSecret,
		Currency:      cfg.StripeCurrency,
		Locale:        cfg.StripeLocale,
		Timeout:       cfg.StripeTimeout,
	})
	if cfg.StripeWebhookSecret == "" {
		log.Println("STRIPE_WEBHOOK_SECRET not set, webhook deliveries will be rejected")
	}

	// Initialize services
	clk := clock.NewSystem()
	st := store.New(app)
	qr := services.NewQRService()
	mail := services.NewNotificationService(app, qr, cfg)
	fulfillment := services.NewFulfillmentService(st, clk, mail, publisher, cfg.MailSendTimeout)

	svc := &appServices{
		checkout:    services.NewCheckoutService(st, gateway, cfg, clk),
		fulfillment: fulfillment,
		webhooks:    services.NewWebhookService(gateway, fulfillment, services.NewEventLedger(redisClient, cfg.WebhookEventTTL)),
		tickets:     services.NewTicketService(st, clk),
		codes:       services.NewExchangeCodeService(st),
		catalog:     services.NewCatalogService(st, redisClient, clk),
		orders:      services.NewOrderService(st, clk),
		auth:        services.NewAuthService(st, clk),
		qr:          qr,
		clock:       clk,
	}

	// Enable migrations
	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: cfg.IsDevelopment(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	setupRecordHooks(app, svc.catalog)

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		ensureAdmin(se.App, cfg)

		if cfg.EnableMetrics {
			monitoring.NewMonitor(st, redisClient).Start(ctx)
			se.Router.GET("/metrics", apis.WrapStdHandler(promhttp.Handler()))
		}

		registerRoutes(se, cfg, st, svc, security.NewRateLimiter(redisClient))

		// Health check
		se.Router.GET("/health", func(e *core.RequestEvent) error {
			if redisClient != nil {
				if err := utils.RedisHealthCheck(e.Request.Context(), redisClient); err != nil {
					return e.JSON(http.StatusServiceUnavailable, map[string]string{
						"status": "unhealthy",
						"error":  err.Error(),
					})
				}
			}
			return e.JSON(http.StatusOK, map[string]string{"status": "healthy"})
		})

		log.Println("Server routes registered")
		return se.Next()
	})

	// Graceful shutdown
	app.OnTerminate().BindFunc(func(e *core.TerminateEvent) error {
		log.Println("Shutdown signal received, cleaning up...")
		cancel()
		fulfillment.Wait()
		if redisClient != nil {
			_ = redisClient.Close()
		}
		return e.Next()
	})

	return app.Start()
}

// ensureAdmin creates the configured initial admin account once.
func ensureAdmin(app core.App, cfg *config.Config) {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return
	}
	created, err := store.New(app).EnsureAdmin(context.Background(), cfg.AdminEmail, cfg.AdminPassword, "Administrator")
	if err != nil {
		slog.Error("ensure initial admin", "email", cfg.AdminEmail, "error", err)
		return
	}
	if created {
		log.Printf("Created initial admin %s", cfg.AdminEmail)
	}
}

// setupRecordHooks keeps cached availability in step with performance
// edits, including those made from the dashboard.
func setupRecordHooks(app core.App, catalog *services.CatalogService) {
	invalidate := func(e *core.RecordEvent) error {
		catalog.InvalidateAvailability(e.Context, e.Record.Id)
		return e.Next()
	}
	app.OnRecordAfterUpdateSuccess("performances").BindFunc(invalidate)
	app.OnRecordAfterDeleteSuccess("performances").BindFunc(invalidate)
}
