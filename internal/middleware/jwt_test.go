package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/roadready/roadready-api/internal/utils"
)

func runJWT(t *testing.T, secret, authHeader string) (*httptest.ResponseRecorder, any) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var injected any
	next := func(c echo.Context) error {
		injected = c.Get("user_id")
		return c.NoContent(http.StatusOK)
	}
	require.NoError(t, JWTAuth(secret)(next)(c))
	return rec, injected
}

func TestJWTAuth_ValidTokenInjectsUserID(t *testing.T) {
	tok, err := utils.NewAccessToken("s3cret", 42, 5)
	require.NoError(t, err)

	rec, injected := runJWT(t, "s3cret", "Bearer "+tok.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	// numeric claims come back as float64 from the parser
	require.EqualValues(t, 42, injected.(float64))
}

func TestJWTAuth_MissingHeader(t *testing.T) {
	rec, _ := runJWT(t, "s3cret", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuth_WrongSecret(t *testing.T) {
	tok, err := utils.NewAccessToken("other-secret", 42, 5)
	require.NoError(t, err)

	rec, _ := runJWT(t, "s3cret", "Bearer "+tok.Token)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
