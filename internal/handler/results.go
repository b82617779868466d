package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/roadready/roadready-api/internal/repository"
)

// ResultsHandler stores and lists mock theory-test outcomes.
type ResultsHandler struct {
	Results *repository.ResultRepo
}

func NewResultsHandler(r *repository.ResultRepo) *ResultsHandler {
	return &ResultsHandler{Results: r}
}

type resultReq struct {
	Category string `json:"category"`
	Score    int    `json:"score"`
	Total    int    `json:"total"`
}

// Create handles POST /v1/test-results.
func (h *ResultsHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req resultReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Category = strings.TrimSpace(req.Category)
	if req.Category == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "category required"})
	}
	if req.Total <= 0 || req.Score < 0 || req.Score > req.Total {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "score must be between 0 and total"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Results.Create(ctx, uid, req.Category, req.Score, req.Total)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save result failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// List handles GET /v1/test-results.
func (h *ResultsHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	results, err := h.Results.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]echo.Map, 0, len(results))
	for _, r := range results {
		out = append(out, echo.Map{
			"id":       r.ID,
			"category": r.Category,
			"score":    r.Score,
			"total":    r.Total,
			"takenAt":  r.TakenAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"results": out})
}

// Summary handles GET /v1/test-results/summary.
func (h *ResultsHandler) Summary(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	summary, err := h.Results.SummaryByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"summary": summary})
}
