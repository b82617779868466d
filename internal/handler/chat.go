package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Completer is the slice of the chat client the handler needs; tests
// substitute a canned implementation.
type Completer interface {
	Complete(ctx context.Context, message string) (string, error)
}

// QuotaChecker is the slice of chat.Quota the handler needs.
type QuotaChecker interface {
	Allow(ctx context.Context, userID uint64) (int, bool)
}

// ChatHandler proxies learner questions to the LLM provider under a
// per-user daily quota.
type ChatHandler struct {
	Quota QuotaChecker
	LLM   Completer
	Log   *zap.Logger
}

func NewChatHandler(quota QuotaChecker, llm Completer, log *zap.Logger) *ChatHandler {
	return &ChatHandler{Quota: quota, LLM: llm, Log: log}
}

type chatReq struct {
	Message string `json:"message"`
}

// Ask handles POST /v1/chat.
func (h *ChatHandler) Ask(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req chatReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "message required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 45*time.Second)
	defer cancel()

	remaining, ok := h.Quota.Allow(ctx, uid)
	if !ok {
		return c.JSON(http.StatusTooManyRequests, echo.Map{
			"error":     "daily chat limit reached",
			"remaining": 0,
		})
	}

	reply, err := h.LLM.Complete(ctx, strings.TrimSpace(req.Message))
	if err != nil {
		h.Log.Error("chat completion failed", zap.Uint64("user_id", uid), zap.Error(err))
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "assistant unavailable"})
	}
	return c.JSON(http.StatusOK, echo.Map{"reply": reply, "remaining": remaining})
}
