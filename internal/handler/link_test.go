package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/roadready/roadready-api/internal/license"
	"github.com/roadready/roadready-api/internal/model"
	"github.com/roadready/roadready-api/internal/repository"
	"github.com/roadready/roadready-api/internal/routedata"
)

func licensedChecker() *license.Checker {
	return license.NewChecker(&fakeLicenseStore{
		license: model.License{ID: 1, ExpiresAt: time.Now().Add(time.Hour), IsActive: true},
	}, nil)
}

func unlicensedChecker() *license.Checker {
	return license.NewChecker(&fakeLicenseStore{err: repository.ErrNotFound}, nil)
}

// ----- GenerateLink -----

func TestGenerateLink_MissingFields(t *testing.T) {
	h := NewLinkHandler(nil, nil, nil, licensedChecker())

	c, rec := newTestContext(t, http.MethodPost, "/v1/generate-link", `{"centreName":"Naas"}`, 1)
	require.NoError(t, h.GenerateLink(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateLink_NoLicense(t *testing.T) {
	h := NewLinkHandler(nil, nil, nil, unlicensedChecker())

	c, rec := newTestContext(t, http.MethodPost, "/v1/generate-link", `{"centreName":"Naas","routeNumber":1}`, 1)
	require.NoError(t, h.GenerateLink(c))
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGenerateLink_OK(t *testing.T) {
	db, mock := newHandlerDB(t)
	mock.ExpectQuery(`SELECT link_expiry_hours FROM settings`).
		WillReturnRows(sqlmock.NewRows([]string{"link_expiry_hours"}).AddRow(6))
	mock.ExpectExec(`INSERT INTO access_links`).
		WithArgs(uint64(1), "Naas", 2, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(10, 1))

	h := NewLinkHandler(repository.NewLinkRepo(db), nil, repository.NewSettingsRepo(db), licensedChecker())

	c, rec := newTestContext(t, http.MethodPost, "/v1/generate-link", `{"centreName":"Naas","routeNumber":2}`, 1)
	require.NoError(t, h.GenerateLink(c))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Len(t, body["linkToken"], 36)
	// expiry honours the settings row, not the default
	expires, err := time.Parse(time.RFC3339, body["expiresAt"].(string))
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().UTC().Add(6*time.Hour), expires, 5*time.Second)
	require.NoError(t, mock.ExpectationsWereMet())
}

// ----- ValidateLink -----

func linkRows(id, uid uint64, token string, expires time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "centre_name", "route_number", "token", "created_at", "expires_at", "is_used", "last_accessed_at",
	}).AddRow(id, uid, "Tallaght", 3, token, time.Now().Add(-time.Hour), expires, false, nil)
}

func TestValidateLink_OKMarksUsed(t *testing.T) {
	db, mock := newHandlerDB(t)
	mock.ExpectQuery(`SELECT .+ FROM access_links WHERE user_id=\? AND token=\?`).
		WithArgs(uint64(1), "tok-1").
		WillReturnRows(linkRows(5, 1, "tok-1", time.Now().Add(time.Hour)))
	mock.ExpectExec(`UPDATE access_links SET is_used=1`).
		WithArgs(uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	h := NewLinkHandler(repository.NewLinkRepo(db), nil, nil, nil)

	c, rec := newTestContext(t, http.MethodGet, "/v1/validate-link/tok-1", "", 1)
	c.SetParamNames("token")
	c.SetParamValues("tok-1")
	require.NoError(t, h.ValidateLink(c))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, true, body["valid"])
	require.Equal(t, "Tallaght", body["centreName"])
	require.EqualValues(t, 3, body["routeNumber"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateLink_Expired(t *testing.T) {
	db, mock := newHandlerDB(t)
	mock.ExpectQuery(`SELECT .+ FROM access_links WHERE user_id=\? AND token=\?`).
		WithArgs(uint64(1), "tok-old").
		WillReturnRows(linkRows(5, 1, "tok-old", time.Now().Add(-time.Minute)))

	h := NewLinkHandler(repository.NewLinkRepo(db), nil, nil, nil)

	c, rec := newTestContext(t, http.MethodGet, "/v1/validate-link/tok-old", "", 1)
	c.SetParamNames("token")
	c.SetParamValues("tok-old")
	require.NoError(t, h.ValidateLink(c))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, false, body["valid"])
	require.Equal(t, "link expired", body["error"])
	// an expired link is never stamped used
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateLink_UnknownToken(t *testing.T) {
	db, mock := newHandlerDB(t)
	mock.ExpectQuery(`SELECT .+ FROM access_links WHERE user_id=\? AND token=\?`).
		WithArgs(uint64(1), "nope").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	h := NewLinkHandler(repository.NewLinkRepo(db), nil, nil, nil)

	c, rec := newTestContext(t, http.MethodGet, "/v1/validate-link/nope", "", 1)
	c.SetParamNames("token")
	c.SetParamValues("nope")
	require.NoError(t, h.ValidateLink(c))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, false, body["valid"])
	require.Equal(t, "link not found", body["error"])
}

// ----- GenerateAccessToken -----

func TestGenerateAccessToken_NoLicense(t *testing.T) {
	h := NewLinkHandler(nil, nil, nil, unlicensedChecker())

	c, rec := newTestContext(t, http.MethodPost, "/v1/generate-access-token", "", 1)
	require.NoError(t, h.GenerateAccessToken(c))
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGenerateAccessToken_OK(t *testing.T) {
	db, mock := newHandlerDB(t)
	mock.ExpectExec(`INSERT INTO access_tokens`).
		WithArgs(uint64(1), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	h := NewLinkHandler(nil, repository.NewAccessTokenRepo(db), nil, licensedChecker())

	c, rec := newTestContext(t, http.MethodPost, "/v1/generate-access-token", "", 1)
	require.NoError(t, h.GenerateAccessToken(c))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Len(t, body["accessToken"], 36)
	expires, err := time.Parse(time.RFC3339, body["expiresAt"].(string))
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().UTC().Add(30*time.Minute), expires, 5*time.Second)
	require.NoError(t, mock.ExpectationsWereMet())
}

// ----- RedeemRoute -----

func tokenRows(id, uid uint64, token string, expires time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "token", "created_at", "expires_at", "is_used", "last_accessed_at",
	}).AddRow(id, uid, token, time.Now().Add(-time.Minute), expires, false, nil)
}

func TestRedeemRoute_Redirects(t *testing.T) {
	db, mock := newHandlerDB(t)
	mock.ExpectQuery(`SELECT .+ FROM access_tokens WHERE token=\?`).
		WithArgs("cap-1").
		WillReturnRows(tokenRows(7, 1, "cap-1", time.Now().Add(10*time.Minute)))
	mock.ExpectExec(`UPDATE access_tokens SET is_used=1`).
		WithArgs(uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	h := NewLinkHandler(nil, repository.NewAccessTokenRepo(db), nil, nil)

	c, rec := newTestContext(t, http.MethodGet, "/route/cap-1/1", "", 0)
	c.SetParamNames("token", "routeId")
	c.SetParamValues("cap-1", "1")
	require.NoError(t, h.RedeemRoute(c))
	require.Equal(t, http.StatusFound, rec.Code)
	route, ok := routedata.Lookup(1)
	require.True(t, ok)
	require.Equal(t, route.MapURL, rec.Header().Get("Location"))
	// the map address travels only in the Location header
	require.NotContains(t, rec.Body.String(), route.MapURL)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedeemRoute_UnknownToken(t *testing.T) {
	db, mock := newHandlerDB(t)
	mock.ExpectQuery(`SELECT .+ FROM access_tokens WHERE token=\?`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	h := NewLinkHandler(nil, repository.NewAccessTokenRepo(db), nil, nil)

	c, rec := newTestContext(t, http.MethodGet, "/route/ghost/1", "", 0)
	c.SetParamNames("token", "routeId")
	c.SetParamValues("ghost", "1")
	require.NoError(t, h.RedeemRoute(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRedeemRoute_ExpiredToken(t *testing.T) {
	db, mock := newHandlerDB(t)
	mock.ExpectQuery(`SELECT .+ FROM access_tokens WHERE token=\?`).
		WithArgs("stale").
		WillReturnRows(tokenRows(7, 1, "stale", time.Now().Add(-time.Minute)))

	h := NewLinkHandler(nil, repository.NewAccessTokenRepo(db), nil, nil)

	c, rec := newTestContext(t, http.MethodGet, "/route/stale/1", "", 0)
	c.SetParamNames("token", "routeId")
	c.SetParamValues("stale", "1")
	require.NoError(t, h.RedeemRoute(c))
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedeemRoute_UnknownRoute(t *testing.T) {
	db, mock := newHandlerDB(t)
	mock.ExpectQuery(`SELECT .+ FROM access_tokens WHERE token=\?`).
		WithArgs("cap-1").
		WillReturnRows(tokenRows(7, 1, "cap-1", time.Now().Add(10*time.Minute)))

	h := NewLinkHandler(nil, repository.NewAccessTokenRepo(db), nil, nil)

	c, rec := newTestContext(t, http.MethodGet, "/route/cap-1/999", "", 0)
	c.SetParamNames("token", "routeId")
	c.SetParamValues("cap-1", "999")
	require.NoError(t, h.RedeemRoute(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
	// a valid token is not consumed by a bad route id
	require.NoError(t, mock.ExpectationsWereMet())
}
