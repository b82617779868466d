package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/roadready/roadready-api/internal/config"
	"github.com/roadready/roadready-api/internal/payment"
	"github.com/roadready/roadready-api/internal/queue"
	"github.com/roadready/roadready-api/internal/repository"
	queue_publisher "github.com/roadready/roadready-api/internal/service"
)

// WebhookHandler receives signed payment events from the provider. Once
// the signature verifies, the handler always acknowledges with 200:
// returning 5xx for a transient store failure would make the provider
// retry-storm a delivery we have already logged. License creation is
// idempotent, so a retried delivery is harmless either way.
type WebhookHandler struct {
	Cfg      config.Config
	Gateway  payment.Gateway
	Licenses *repository.LicenseRepo
	Log      *zap.Logger
}

func NewWebhookHandler(cfg config.Config, gw payment.Gateway, lic *repository.LicenseRepo, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{Cfg: cfg, Gateway: gw, Licenses: lic, Log: log}
}

// Handle processes POST /webhook. The raw body is needed verbatim for
// signature verification, so the request is never bound to a DTO.
func (h *WebhookHandler) Handle(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, 1<<20))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unreadable body"})
	}
	sig := c.Request().Header.Get("Stripe-Signature")

	ev, err := h.Gateway.ParseWebhook(body, sig)
	if err != nil {
		if errors.Is(err, payment.ErrNotConfigured) {
			h.Log.Error("webhook secret not configured")
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "webhook not configured"})
		}
		h.Log.Warn("webhook signature rejected", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid signature"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	switch ev.Type {
	case payment.EventIntentSucceeded:
		h.grantFromIntent(ctx, ev.Intent)
	case payment.EventSessionCompleted:
		h.grantFromSession(ctx, ev.Session)
	default:
		// Unhandled event types are acknowledged without action.
	}
	return c.JSON(http.StatusOK, echo.Map{"received": true})
}

func (h *WebhookHandler) grantFromIntent(ctx context.Context, in *payment.Intent) {
	uid, err := strconv.ParseUint(in.Metadata["user_id"], 10, 64)
	if err != nil || uid == 0 {
		h.Log.Error("webhook intent without usable user_id metadata", zap.String("intent", in.ID))
		return
	}
	kind := in.Metadata["product"]
	if kind == "" {
		kind = payment.KindForAmount(in.Amount, h.Cfg.BundlePriceCents)
	}
	h.createLicense(ctx, uid, in.ID, kind, "", in.Amount)
}

// grantFromSession covers the legacy checkout flow, where the user id
// travels in the session's client_reference_id rather than metadata.
func (h *WebhookHandler) grantFromSession(ctx context.Context, s *payment.SessionEvent) {
	ref := s.ClientReferenceID
	if ref == "" {
		ref = s.Metadata["user_id"]
	}
	uid, err := strconv.ParseUint(ref, 10, 64)
	if err != nil || uid == 0 {
		h.Log.Error("webhook session without usable user reference", zap.String("session", s.ID))
		return
	}
	kind := s.Metadata["product"]
	if kind == "" {
		kind = payment.KindForAmount(s.AmountTotal, h.Cfg.BundlePriceCents)
	}
	h.createLicense(ctx, uid, s.ID, kind, s.ID, s.AmountTotal)
}

func (h *WebhookHandler) createLicense(ctx context.Context, uid uint64, intentID, kind, sessionID string, amount int64) {
	expires, err := h.Licenses.Create(ctx, uid, intentID, kind, sessionID)
	if errors.Is(err, repository.ErrDuplicateLicense) {
		// The confirm path got there first. Expected and harmless.
		return
	}
	if err != nil {
		h.Log.Error("webhook license creation failed",
			zap.Uint64("user_id", uid), zap.String("intent", intentID), zap.Error(err))
		return
	}
	if err := queue_publisher.PublishLicenseGranted(ctx, queue.LicenseGrantedEvent{
		UserID:          uid,
		PaymentIntentID: intentID,
		Kind:            kind,
		AmountCents:     amount,
		ExpiresAt:       expires.Format(time.RFC3339),
		Source:          "webhook",
	}); err != nil {
		h.Log.Warn("license event publish failed", zap.Error(err))
	}
}
