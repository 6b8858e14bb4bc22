package cmd

import (
	"easel-ticket/config"
	"easel-ticket/internal/clock"
	"easel-ticket/internal/handlers"
	"easel-ticket/internal/services"
	"easel-ticket/internal/store"
	"easel-ticket/security"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

const adminCollection = "admins"

type appServices struct {
	checkout    *services.CheckoutService
	fulfillment *services.FulfillmentService
	webhooks    *services.WebhookService
	tickets     *services.TicketService
	codes       *services.ExchangeCodeService
	catalog     *services.CatalogService
	orders      *services.OrderService
	auth        *services.AuthService
	qr          *services.QRService
	clock       clock.Clock
}

func registerRoutes(se *core.ServeEvent, cfg *config.Config, st *store.Store, svc *appServices, limiter *security.RateLimiter) {
	requireAdmin := apis.RequireAuth(adminCollection)

	paymentHandler := handlers.NewPaymentHandler(svc.checkout)
	webhookHandler := handlers.NewWebhookHandler(svc.webhooks, svc.fulfillment, svc.tickets, svc.orders, svc.clock)
	orderHandler := handlers.NewOrderHandler(svc.orders)
	ticketHandler := handlers.NewTicketHandler(svc.tickets)
	codeHandler := handlers.NewExchangeCodeHandler(svc.codes)
	catalogHandler := handlers.NewCatalogHandler(svc.catalog)
	authHandler := handlers.NewAuthHandler(svc.auth)
	qrHandler := handlers.NewQRCodeHandler(st, svc.qr)

	// Payment endpoints
	se.Router.POST("/api/payment/checkout", paymentHandler.Checkout).
		Bind(limiter.BlockBots(), limiter.Limit("checkout", cfg.RateLimitPerMinute))

	// Webhook endpoints
	webhook := se.Router.Group("/api/webhook")
	webhook.POST("/stripe", webhookHandler.Stripe)
	webhook.POST("/complete-by-session/{sessionId}", webhookHandler.CompleteBySession).Bind(requireAdmin)
	webhook.GET("/tickets/{orderId}", webhookHandler.OrderTickets).Bind(requireAdmin)
	if cfg.IsDevelopment() {
		webhook.POST("/test", webhookHandler.Test)
	}

	// Order endpoints
	orders := se.Router.Group("/api/orders")
	orders.GET("/session/{sessionId}", orderHandler.GetBySession)
	admin := orders.Group("")
	admin.Bind(requireAdmin)
	admin.GET("", orderHandler.List)
	admin.GET("/stats", orderHandler.Stats)
	admin.GET("/status/{status}", orderHandler.ByStatus)
	admin.GET("/performance/{date}", orderHandler.ByPerformanceDate)
	admin.GET("/{id}", orderHandler.Get)
	admin.PUT("/{id}/status", orderHandler.UpdateStatus)

	// Ticket endpoints
	tickets := se.Router.Group("/api/tickets").Bind(requireAdmin)
	tickets.POST("/verify", ticketHandler.Verify)
	tickets.POST("/check-in", ticketHandler.CheckIn)
	tickets.GET("/stats", ticketHandler.Stats)
	tickets.GET("/stats/today", ticketHandler.TodayStats)

	// Exchange code endpoints
	codes := se.Router.Group("/api/exchange-codes")
	codes.POST("/validate", codeHandler.Validate).Bind(limiter.Limit("validate", cfg.RateLimitPerMinute))
	codes.POST("/validate-batch", codeHandler.ValidateBatch).Bind(limiter.Limit("validate", cfg.RateLimitPerMinute))
	codes.GET("", codeHandler.List).Bind(requireAdmin)
	codes.POST("", codeHandler.Create).Bind(requireAdmin)
	codes.POST("/batch", codeHandler.Batch).Bind(requireAdmin)

	// News endpoints
	news := se.Router.Group("/api/news")
	news.GET("", catalogHandler.ListNews)
	news.GET("/{id}", catalogHandler.GetNews)
	news.POST("", catalogHandler.CreateNews).Bind(requireAdmin)
	news.PUT("/{id}", catalogHandler.UpdateNews).Bind(requireAdmin)
	news.DELETE("/{id}", catalogHandler.DeleteNews).Bind(requireAdmin)

	// Performance endpoints
	performances := se.Router.Group("/api/performances")
	performances.GET("", catalogHandler.ListPerformances)
	performances.GET("/on-sale", catalogHandler.OnSale)
	performances.GET("/upcoming", catalogHandler.Upcoming)
	performances.GET("/{id}", catalogHandler.GetPerformance)
	performances.GET("/{id}/availability", catalogHandler.Availability)
	performances.POST("", catalogHandler.CreatePerformance).Bind(requireAdmin)
	performances.PUT("/{id}", catalogHandler.UpdatePerformance).Bind(requireAdmin)
	performances.PUT("/{id}/sale-status", catalogHandler.UpdateSaleStatus).Bind(requireAdmin)
	performances.DELETE("/{id}", catalogHandler.DeletePerformance).Bind(requireAdmin)

	// Auth endpoints
	se.Router.POST("/api/auth/login", authHandler.Login).Bind(limiter.Limit("login", 10))
	se.Router.GET("/api/auth/me", authHandler.Me)

	// QR code endpoints
	qrcode := se.Router.Group("/api/qrcode")
	qrcode.GET("/ticket/{ticketCode}", qrHandler.TicketPNG)
	qrcode.GET("/ticket/{ticketCode}/base64", qrHandler.TicketBase64)
	qrcode.GET("/generate", qrHandler.Generate)
}
