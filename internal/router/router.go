package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/roadready/roadready-api/internal/config"
	"github.com/roadready/roadready-api/internal/handler"
	"github.com/roadready/roadready-api/internal/middleware"
)

// Handlers groups everything the router wires up.
type Handlers struct {
	Auth    *handler.AuthHandler
	Payment *handler.PaymentHandler
	Webhook *handler.WebhookHandler
	Link    *handler.LinkHandler
	Results *handler.ResultsHandler
	Chat    *handler.ChatHandler
	Contact *handler.ContactHandler
}

// Register wires all routes. Three auth models coexist:
//   - /v1/auth/* and /v1/contact and /route/... are public,
//   - /webhook authenticates by provider signature inside the handler,
//   - everything else under /v1 requires a bearer JWT.
func Register(e *echo.Echo, h Handlers, cfg config.Config, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	// Public surface.
	pub := e.Group("/v1/auth")
	pub.POST("/register", h.Auth.Register)
	pub.POST("/login", h.Auth.Login)
	pub.POST("/refresh", h.Auth.Refresh)
	pub.POST("/logout", h.Auth.Logout)

	e.POST("/v1/contact", h.Contact.Submit)

	// Token redemption: the bearer token in the path is the credential,
	// no session is required or consulted.
	e.GET("/route/:token/:routeId", h.Link.RedeemRoute)

	// Provider webhook: signature-authenticated, raw body required.
	e.POST("/webhook", h.Webhook.Handle)

	// Authenticated API.
	api := e.Group("/v1")
	api.Use(middleware.JWTAuth(cfg.JWTSecret))
	api.Use(middleware.RateLimit(rdb, config.LoadRateLimitConfig()))

	api.GET("/me", h.Auth.Me)
	api.POST("/auth/logout-all", h.Auth.LogoutAll)

	api.POST("/payment-intent", h.Payment.CreatePaymentIntent)
	api.POST("/checkout-session", h.Payment.CreateCheckoutSession)
	api.POST("/confirm-payment", h.Payment.ConfirmPayment)
	api.GET("/license-status", h.Payment.LicenseStatus)

	api.POST("/generate-link", h.Link.GenerateLink)
	api.GET("/validate-link/:token", h.Link.ValidateLink)
	api.POST("/generate-access-token", h.Link.GenerateAccessToken)

	api.POST("/test-results", h.Results.Create)
	api.GET("/test-results", h.Results.List)
	api.GET("/test-results/summary", h.Results.Summary)

	api.POST("/chat", h.Chat.Ask)
}
