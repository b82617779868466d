package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/roadready/roadready-api/internal/queue"
)

// ContactPublisher is the slice of the queue publisher the handler
// needs; tests substitute a capturing implementation.
type ContactPublisher interface {
	PublishContactMessage(ctx context.Context, event queue.ContactMessageEvent) error
}

// ContactHandler relays contact-form submissions to the message queue.
// The API never sends email itself.
type ContactHandler struct {
	Publisher ContactPublisher
	Log       *zap.Logger
}

func NewContactHandler(pub ContactPublisher, log *zap.Logger) *ContactHandler {
	return &ContactHandler{Publisher: pub, Log: log}
}

type contactReq struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Submit handles POST /v1/contact. The route is public; when a bearer
// token happens to be present the user id is attached to the event.
func (h *ContactHandler) Submit(c echo.Context) error {
	var req contactReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Message = strings.TrimSpace(req.Message)
	if req.Name == "" || req.Email == "" || req.Message == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, email and message required"})
	}
	if !strings.Contains(req.Email, "@") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email"})
	}

	uid, _ := getUserID(c) // zero when anonymous

	ev := queue.ContactMessageEvent{
		Name:        req.Name,
		Email:       req.Email,
		Message:     req.Message,
		UserID:      uid,
		SubmittedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := h.Publisher.PublishContactMessage(c.Request().Context(), ev); err != nil {
		h.Log.Error("contact message publish failed", zap.Error(err))
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "message could not be submitted"})
	}
	return c.JSON(http.StatusAccepted, echo.Map{"received": true})
}
