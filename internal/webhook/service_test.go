package webhook

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veldkamp-software/passfoto/internal/domain"
)

func TestSendSignsAndDelivers(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	var (
		gotSignature string
		gotEvent     string
		gotBody      []byte
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSignature = r.Header.Get("X-Passfoto-Signature")
		gotEvent = r.Header.Get("X-Passfoto-Event")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	hook := &Webhook{
		ID:     uuid.New(),
		URL:    server.URL,
		Secret: "s3cret",
	}

	mock.ExpectExec("UPDATE webhooks SET last_triggered_at").
		WithArgs(hook.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	svc := NewService(mock)
	event := EventPayload{Type: EventPhotoValidated, Data: map[string]interface{}{"photo_id": "abc"}, Timestamp: time.Now()}

	require.NoError(t, svc.Send(context.Background(), hook, event))

	assert.Equal(t, EventPhotoValidated, gotEvent)
	assert.True(t, Verify(hook.Secret, gotBody, gotSignature), "delivered body must verify against the signature header")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSendFailureEnqueuesRetry(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	hook := &Webhook{ID: uuid.New(), URL: server.URL, Secret: "s3cret"}

	mock.ExpectExec("INSERT INTO webhook_queue").
		WithArgs(hook.ID, EventPhotoValidated, pgxmock.AnyArg(), "HTTP 500").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	svc := NewService(mock)
	event := EventPayload{Type: EventPhotoValidated, Timestamp: time.Now()}

	require.NoError(t, svc.Send(context.Background(), hook, event))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWebhook(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	svc := NewService(mock)

	hook := &Webhook{
		Name:    "CI endpoint",
		URL:     "https://example.com/hooks",
		Secret:  "s3cret",
		Events:  []string{EventPhotoValidated},
		Enabled: true,
	}

	mock.ExpectQuery("INSERT INTO webhooks").
		WithArgs(pgxmock.AnyArg(), hook.Name, hook.URL, hook.Secret, pgxmock.AnyArg(), true).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(time.Now(), time.Now()))

	require.NoError(t, svc.CreateWebhook(context.Background(), hook))

	assert.NotEqual(t, uuid.Nil, hook.ID, "CreateWebhook assigns an ID")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteWebhookNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	svc := NewService(mock)

	id := uuid.New()
	mock.ExpectExec("DELETE FROM webhooks").
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err = svc.DeleteWebhook(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrWebhookNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetWebhooksByEvent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	svc := NewService(mock)

	id := uuid.New()
	rows := pgxmock.NewRows([]string{
		"id", "name", "url", "secret", "events", "enabled", "last_triggered_at", "created_at", "updated_at",
	}).AddRow(
		id, "CI endpoint", "https://example.com/hooks", "s3cret",
		[]byte(`["photo.validated"]`), true, nil, time.Now(), time.Now(),
	)

	mock.ExpectQuery("SELECT (.+) FROM webhooks").
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(rows)

	hooks, err := svc.GetWebhooksByEvent(context.Background(), EventPhotoValidated)
	require.NoError(t, err)

	require.Len(t, hooks, 1)
	assert.Equal(t, id, hooks[0].ID)
	assert.Equal(t, []string{EventPhotoValidated}, hooks[0].Events)
	assert.Nil(t, hooks[0].LastTriggeredAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}
