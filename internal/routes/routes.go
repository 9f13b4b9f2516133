// Package routes defines the API routing configuration.
// It sets up all HTTP routes and their corresponding handlers,
// including middleware and authentication requirements.
package routes

import (
	"pazar/internal/handlers"
	"pazar/internal/middleware"
	"pazar/internal/models"
	"pazar/internal/services/auth"
	"pazar/internal/services/escrow"
	"pazar/internal/services/ledger"
	"pazar/internal/services/listing"
	"pazar/internal/services/notification"
	"pazar/internal/services/promotion"
	"pazar/internal/services/wallet"
	"pazar/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// Services bundles everything the HTTP layer calls into.
type Services struct {
	Auth          auth.Service
	Tokens        *utils.TokenIssuer
	Wallet        wallet.Service
	Ledger        ledger.Service
	Escrow        escrow.Service
	Listing       listing.Service
	Promotion     promotion.Service
	Notifications *notification.Service
	Health        map[string]handlers.HealthCheckFunc
}

// SetupRoutes configures all application routes.
// It groups routes by functionality and applies appropriate middleware.
func SetupRoutes(app *fiber.App, svc Services) {
	authHandler := handlers.NewAuthHandler(svc.Auth)
	walletHandler := handlers.NewWalletHandler(svc.Wallet, svc.Ledger)
	escrowHandler := handlers.NewEscrowHandler(svc.Escrow)
	listingHandler := handlers.NewListingHandler(svc.Listing)
	featuredHandler := handlers.NewFeaturedHandler(svc.Promotion)
	messageHandler := handlers.NewMessageHandler(svc.Notifications)
	adminHandler := handlers.NewAdminHandler(svc.Listing, svc.Wallet, svc.Ledger)
	healthHandler := handlers.NewHealthHandler(svc.Health)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to Pazar API",
			"version": "1.0.0",
			"docs":    "/api",
		})
	})
	app.Get("/health", healthHandler.HealthCheck)

	api := app.Group("/api")

	// Public endpoints (no auth required)
	api.Post("/register", authHandler.Register)
	api.Post("/login", authHandler.LoginUser)
	api.Post("/refresh", authHandler.RefreshToken)
	api.Get("/featured/prices", featuredHandler.Prices)
	api.Get("/listings/:id", listingHandler.Get)

	authMiddleware := middleware.NewAuthMiddleware(svc.Auth, svc.Tokens)

	setupAdminRoutes(api, authMiddleware, adminHandler)

	protected := api.Group("", authMiddleware.Handler)
	protected.Get("/me", authHandler.Me)
	protected.Get("/messages", messageHandler.Inbox)

	setupWalletRoutes(protected, walletHandler)
	setupEscrowRoutes(protected, escrowHandler)
	setupListingRoutes(protected, listingHandler, featuredHandler)
}

func setupWalletRoutes(router fiber.Router, h *handlers.WalletHandler) {
	wallet := router.Group("/wallet")
	wallet.Get("/", middleware.HasPermission(models.PermissionWalletRead), h.GetWallet)
	wallet.Get("/balance", middleware.HasPermission(models.PermissionWalletRead), h.GetBalance)
	wallet.Get("/verify", middleware.HasPermission(models.PermissionWalletRead), h.VerifyBalance)
	wallet.Post("/topup", middleware.HasPermission(models.PermissionWalletWrite), h.TopUpWallet)
	wallet.Post("/withdraw", middleware.HasPermission(models.PermissionWalletWrite), h.Withdraw)

	cards := wallet.Group("/cards")
	cards.Get("/", middleware.HasPermission(models.PermissionWalletRead), h.ListCards)
	cards.Post("/", middleware.HasPermission(models.PermissionWalletWrite), h.AddCard)
	cards.Delete("/:id", middleware.HasPermission(models.PermissionWalletWrite), h.RemoveCard)
}

func setupEscrowRoutes(router fiber.Router, h *handlers.EscrowHandler) {
	read := middleware.HasPermission(models.PermissionEscrowRead)
	write := middleware.HasPermission(models.PermissionEscrowWrite)

	escrow := router.Group("/escrow")
	escrow.Post("/", write, h.Create)
	escrow.Get("/", read, h.ListMine)
	escrow.Get("/:id", read, h.Get)
	escrow.Post("/:id/pay", write, h.Pay)
	escrow.Post("/:id/ship", write, h.Ship)
	escrow.Post("/:id/confirm", write, h.Confirm)
	escrow.Post("/:id/cancel", write, h.Cancel)
}

func setupListingRoutes(router fiber.Router, h *handlers.ListingHandler, featured *handlers.FeaturedHandler) {
	write := middleware.HasPermission(models.PermissionListingWrite)

	router.Post("/listings", write, h.Create)
	router.Put("/listings/:id", write, h.Update)
	router.Post("/listings/:id/feature", write, featured.Request)
	router.Post("/featured/:id/pay", write, featured.Complete)
}

func setupAdminRoutes(api fiber.Router, authMiddleware *middleware.AuthMiddleware, h *handlers.AdminHandler) {
	admin := api.Group("/admin", authMiddleware.Handler, middleware.AdminAuthMiddleware)
	write := middleware.HasPermission(models.PermissionWriteAdmin)
	read := middleware.HasPermission(models.PermissionReadAdmin)

	admin.Post("/listings/:id/approve", write, h.ApproveListing)
	admin.Post("/listings/:id/reject", write, h.RejectListing)
	admin.Post("/users/:id/ban", write, h.BanUser)
	admin.Post("/users/:id/unban", write, h.UnbanUser)
	admin.Post("/withdrawals/:id/settle", write, h.SettleWithdrawal)
	admin.Post("/withdrawals/:id/cancel", write, h.CancelWithdrawal)
	admin.Get("/users/:id/balance", read, h.VerifyBalance)
	admin.Post("/reconcile", write, h.ReconcileAll)
}
