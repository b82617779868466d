package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/roadready/roadready-api/internal/model"
	"github.com/roadready/roadready-api/internal/payment"
	"github.com/roadready/roadready-api/internal/repository"
)

var errDuplicateKey = errors.New("Error 1062 (23000): Duplicate entry 'pi_dup' for key 'licenses.uq_licenses_intent'")

func TestWebhook_BadSignature(t *testing.T) {
	db, mock := newHandlerDB(t)
	gw := &fakeGateway{eventErr: payment.ErrBadSignature}
	h := NewWebhookHandler(testConfig(), gw, repository.NewLicenseRepo(db), zap.NewNop())

	c, rec := newTestContext(t, http.MethodPost, "/webhook", `{"type":"payment_intent.succeeded"}`, 0)
	require.NoError(t, h.Handle(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	// a rejected signature must never touch the store
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhook_NotConfigured(t *testing.T) {
	gw := &fakeGateway{eventErr: payment.ErrNotConfigured}
	h := NewWebhookHandler(testConfig(), gw, nil, zap.NewNop())

	c, rec := newTestContext(t, http.MethodPost, "/webhook", `{}`, 0)
	require.NoError(t, h.Handle(c))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestWebhook_IntentSucceeded_BundleByAmount(t *testing.T) {
	db, mock := newHandlerDB(t)
	mock.ExpectExec(`INSERT INTO licenses`).
		WithArgs(uint64(7), "pi_hook", "", model.LicenseKindBundle, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	gw := &fakeGateway{event: payment.Event{
		Type: payment.EventIntentSucceeded,
		Intent: &payment.Intent{
			ID: "pi_hook", Amount: 1399,
			Metadata: map[string]string{"user_id": "7"},
		},
	}}
	h := NewWebhookHandler(testConfig(), gw, repository.NewLicenseRepo(db), zap.NewNop())

	c, rec := newTestContext(t, http.MethodPost, "/webhook", `{}`, 0)
	require.NoError(t, h.Handle(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, decodeBody(t, rec)["received"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhook_IntentSucceeded_SingleBelowThreshold(t *testing.T) {
	db, mock := newHandlerDB(t)
	mock.ExpectExec(`INSERT INTO licenses`).
		WithArgs(uint64(7), "pi_small", "", model.LicenseKindSingle, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	gw := &fakeGateway{event: payment.Event{
		Type: payment.EventIntentSucceeded,
		Intent: &payment.Intent{
			ID: "pi_small", Amount: 499,
			Metadata: map[string]string{"user_id": "7"},
		},
	}}
	h := NewWebhookHandler(testConfig(), gw, repository.NewLicenseRepo(db), zap.NewNop())

	c, rec := newTestContext(t, http.MethodPost, "/webhook", `{}`, 0)
	require.NoError(t, h.Handle(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhook_SessionCompleted_ClientReference(t *testing.T) {
	db, mock := newHandlerDB(t)
	mock.ExpectExec(`INSERT INTO licenses`).
		WithArgs(uint64(9), "cs_1", "cs_1", model.LicenseKindBundle, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	gw := &fakeGateway{event: payment.Event{
		Type: payment.EventSessionCompleted,
		Session: &payment.SessionEvent{
			ID: "cs_1", ClientReferenceID: "9", AmountTotal: 1399,
		},
	}}
	h := NewWebhookHandler(testConfig(), gw, repository.NewLicenseRepo(db), zap.NewNop())

	c, rec := newTestContext(t, http.MethodPost, "/webhook", `{}`, 0)
	require.NoError(t, h.Handle(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhook_DuplicateDeliveryStillAcknowledged(t *testing.T) {
	db, mock := newHandlerDB(t)
	mock.ExpectExec(`INSERT INTO licenses`).
		WillReturnError(errDuplicateKey)

	gw := &fakeGateway{event: payment.Event{
		Type: payment.EventIntentSucceeded,
		Intent: &payment.Intent{
			ID: "pi_dup", Amount: 1399,
			Metadata: map[string]string{"user_id": "7"},
		},
	}}
	h := NewWebhookHandler(testConfig(), gw, repository.NewLicenseRepo(db), zap.NewNop())

	c, rec := newTestContext(t, http.MethodPost, "/webhook", `{}`, 0)
	require.NoError(t, h.Handle(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, decodeBody(t, rec)["received"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhook_MissingUserMetadataIgnored(t *testing.T) {
	db, mock := newHandlerDB(t)
	gw := &fakeGateway{event: payment.Event{
		Type:   payment.EventIntentSucceeded,
		Intent: &payment.Intent{ID: "pi_anon", Amount: 1399},
	}}
	h := NewWebhookHandler(testConfig(), gw, repository.NewLicenseRepo(db), zap.NewNop())

	c, rec := newTestContext(t, http.MethodPost, "/webhook", `{}`, 0)
	require.NoError(t, h.Handle(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhook_UnknownEventAcknowledged(t *testing.T) {
	gw := &fakeGateway{event: payment.Event{Type: "charge.refunded"}}
	h := NewWebhookHandler(testConfig(), gw, nil, zap.NewNop())

	c, rec := newTestContext(t, http.MethodPost, "/webhook", `{}`, 0)
	require.NoError(t, h.Handle(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, decodeBody(t, rec)["received"])
}
