package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/roadready/roadready-api/internal/license"
	"github.com/roadready/roadready-api/internal/repository"
	"github.com/roadready/roadready-api/internal/routedata"
	"github.com/roadready/roadready-api/internal/utils"
)

// accessTokenTTL is how long a capability token stays redeemable.
const accessTokenTTL = 30 * time.Minute

// LinkHandler mints and validates access links, and mints/redeems
// capability tokens. Two authorization models coexist here on purpose:
// link validation is session-bound (the link only resolves for its
// owner), token redemption is bearer-only (possession is the
// credential). They must not be unified.
type LinkHandler struct {
	Links    *repository.LinkRepo
	Tokens   *repository.AccessTokenRepo
	Settings *repository.SettingsRepo
	Checker  *license.Checker
}

func NewLinkHandler(links *repository.LinkRepo, tokens *repository.AccessTokenRepo, settings *repository.SettingsRepo, chk *license.Checker) *LinkHandler {
	return &LinkHandler{Links: links, Tokens: tokens, Settings: settings, Checker: chk}
}

type generateLinkReq struct {
	CentreName  string `json:"centreName"`
	RouteNumber int    `json:"routeNumber"`
}

// GenerateLink handles POST /v1/generate-link. Requires an active
// license and both centre name and route number.
func (h *LinkHandler) GenerateLink(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req generateLinkReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.CentreName == "" || req.RouteNumber == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "centreName and routeNumber required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	active, err := h.Checker.Active(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "license check failed"})
	}
	if active == nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "no active license"})
	}

	hours := h.Settings.LinkExpiryHours(ctx)
	token := utils.NewLinkToken()
	expires := time.Now().UTC().Add(time.Duration(hours) * time.Hour)
	if _, err := h.Links.Create(ctx, uid, req.CentreName, req.RouteNumber, token, expires); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "link creation failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"linkToken": token, "expiresAt": expires})
}

// ValidateLink handles GET /v1/validate-link/:token. The lookup is
// scoped to the requesting user, so a token minted for someone else is
// indistinguishable from an unknown one. A successful validation marks
// the link used and stamps last_accessed_at, so this read mutates state.
// Validation may repeat until expiry; is_used does not gate it.
func (h *LinkHandler) ValidateLink(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	token := c.Param("token")
	if token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	l, err := h.Links.GetForUser(ctx, uid, token)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusOK, echo.Map{"valid": false, "error": "link not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup failed"})
	}
	if time.Now().UTC().After(l.ExpiresAt) {
		return c.JSON(http.StatusOK, echo.Map{"valid": false, "error": "link expired"})
	}
	_ = h.Links.MarkUsed(ctx, l.ID) // best effort; a failed stamp must not invalidate the link

	return c.JSON(http.StatusOK, echo.Map{
		"valid":       true,
		"centreName":  l.CentreName,
		"routeNumber": l.RouteNumber,
	})
}

// GenerateAccessToken handles POST /v1/generate-access-token. The token
// is not bound to a route; the route is chosen at redemption time.
func (h *LinkHandler) GenerateAccessToken(c echo.Context) error {
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
		return c.JSON(http.StatusForbidden, echo.Map{"error": "no active license"})
	}

	token := utils.NewLinkToken()
	expires := time.Now().UTC().Add(accessTokenTTL)
	if _, err := h.Tokens.Create(ctx, uid, token, expires); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token creation failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"accessToken": token, "expiresAt": expires})
}

// RedeemRoute handles GET /route/:token/:routeId without session auth:
// the bearer token is the credential. On success the client is 302
// redirected to the provider-hosted map; the external address never
// appears in a response body.
func (h *LinkHandler) RedeemRoute(c echo.Context) error {
	token := c.Param("token")
	routeID, err := strconv.Atoi(c.Param("routeId"))
	if token == "" || err != nil || routeID <= 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "route not found"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t, err := h.Tokens.GetByToken(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "invalid token"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup failed"})
	}
	if time.Now().UTC().After(t.ExpiresAt) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "token expired"})
	}
	route, ok := routedata.Lookup(routeID)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "route not found"})
	}
	_ = h.Tokens.MarkUsed(ctx, t.ID)

	return c.Redirect(http.StatusFound, route.MapURL)
}
