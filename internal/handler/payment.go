package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/roadready/roadready-api/internal/config"
	"github.com/roadready/roadready-api/internal/license"
	"github.com/roadready/roadready-api/internal/model"
	"github.com/roadready/roadready-api/internal/payment"
	"github.com/roadready/roadready-api/internal/queue"
	"github.com/roadready/roadready-api/internal/repository"
	queue_publisher "github.com/roadready/roadready-api/internal/service"
)

// PaymentHandler covers intent creation, checkout sessions, the
// synchronous confirm path and license status.
type PaymentHandler struct {
	Cfg      config.Config
	Gateway  payment.Gateway
	Licenses *repository.LicenseRepo
	Checker  *license.Checker
	Log      *zap.Logger
}

func NewPaymentHandler(cfg config.Config, gw payment.Gateway, lic *repository.LicenseRepo, chk *license.Checker, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{Cfg: cfg, Gateway: gw, Licenses: lic, Checker: chk, Log: log}
}

type intentReq struct {
	Amount  int64  `json:"amount"`
	Product string `json:"product"` // "bundle" (default) or "single"
}

// defaultAmount resolves the configured price when the client names a
// product instead of an amount.
func (h *PaymentHandler) defaultAmount(product string) int64 {
	if product == model.LicenseKindSingle {
		return h.Cfg.SinglePriceCents
	}
	return h.Cfg.BundlePriceCents
}

// CreatePaymentIntent handles POST /v1/payment-intent. The amount
// defaults to the bundle price; a bundle purchase is rejected while an
// active license already exists.
func (h *PaymentHandler) CreatePaymentIntent(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req intentReq
	// An empty body means the default bundle purchase; a body that is
	// present but unparseable is a client error.
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount must be a positive integer"})
	}
	amount := req.Amount
	if amount == 0 {
		amount = h.defaultAmount(req.Product)
	}
	if amount < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount must be a positive integer"})
	}
	kind := payment.KindForAmount(amount, h.Cfg.BundlePriceCents)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	if kind == model.LicenseKindBundle {
		active, err := h.Checker.Active(ctx, uid)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "license check failed"})
		}
		if active != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "an active license already exists"})
		}
	}

	in, err := h.Gateway.CreateIntent(ctx, uid, amount, kind)
	if err != nil {
		return h.gatewayError(c, err, "create payment intent")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"clientSecret":    in.ClientSecret,
		"paymentIntentId": in.ID,
	})
}

// CreateCheckoutSession handles POST /v1/checkout-session, the
// hosted-checkout alternative to the intent flow.
func (h *PaymentHandler) CreateCheckoutSession(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req intentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount must be a positive integer"})
	}
	amount := req.Amount
	if amount == 0 {
		amount = h.defaultAmount(req.Product)
	}
	if amount < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount must be a positive integer"})
	}
	kind := payment.KindForAmount(amount, h.Cfg.BundlePriceCents)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	s, err := h.Gateway.CreateCheckoutSession(ctx, uid, amount, kind)
	if err != nil {
		return h.gatewayError(c, err, "create checkout session")
	}
	return c.JSON(http.StatusOK, echo.Map{"sessionId": s.ID, "url": s.URL})
}

type confirmReq struct {
	PaymentIntentID string `json:"paymentIntentId"`
}

// ConfirmPayment handles POST /v1/confirm-payment: the server-side
// re-verification path. The intent is fetched from the gateway and must
// belong to the caller, be succeeded and not yet confirmed.
func (h *PaymentHandler) ConfirmPayment(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req confirmReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.PaymentIntentID) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "paymentIntentId required"})
	}
	intentID := strings.TrimSpace(req.PaymentIntentID)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	in, err := h.Gateway.RetrieveIntent(ctx, intentID)
	if err != nil {
		return h.gatewayError(c, err, "retrieve payment intent")
	}
	if in.Metadata["user_id"] != strconv.FormatUint(uid, 10) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "payment does not belong to this user"})
	}
	if in.Status != payment.StatusSucceeded {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "payment has not succeeded"})
	}

	exists, err := h.Licenses.ExistsForIntent(ctx, intentID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "license check failed"})
	}
	if exists {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "payment already confirmed"})
	}

	kind := in.Metadata["product"]
	if kind == "" {
		kind = payment.KindForAmount(in.Amount, h.Cfg.BundlePriceCents)
	}
	expires, err := h.Licenses.Create(ctx, uid, intentID, kind, "")
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateLicense) {
			// The webhook won the race between our exists-check and the
			// insert. The purchase is already recorded.
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "payment already confirmed"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "license creation failed"})
	}

	if err := queue_publisher.PublishLicenseGranted(ctx, queue.LicenseGrantedEvent{
		UserID:          uid,
		PaymentIntentID: intentID,
		Kind:            kind,
		AmountCents:     in.Amount,
		ExpiresAt:       expires.Format(time.RFC3339),
		Source:          "confirm",
	}); err != nil {
		h.Log.Warn("license event publish failed", zap.Error(err))
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "expiresAt": expires})
}

// LicenseStatus handles GET /v1/license-status.
func (h *PaymentHandler) LicenseStatus(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	active, err := h.Checker.Active(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "license check failed"})
	}
	if active == nil {
		return c.JSON(http.StatusOK, echo.Map{"hasLicense": false})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"hasLicense":  true,
		"expiresAt":   active.ExpiresAt,
		"isPermanent": active.Permanent,
	})
}

// gatewayError translates adapter failures into the response taxonomy.
func (h *PaymentHandler) gatewayError(c echo.Context, err error, op string) error {
	switch {
	case errors.Is(err, payment.ErrNotConfigured):
		h.Log.Error("payment gateway not configured", zap.String("op", op))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "payments are not configured"})
	case errors.Is(err, payment.ErrUpstream):
		h.Log.Error("payment gateway contract violation", zap.String("op", op), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "payment provider error"})
	default:
		h.Log.Error("payment gateway call failed", zap.String("op", op), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "payment provider error"})
	}
}
