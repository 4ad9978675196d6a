package handlers

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"waconsole/internal/database"
	"waconsole/internal/models"
	"waconsole/internal/realtime"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConversationID = "6b1f8d2c-9d6a-4a5f-8d27-0f4b6a1c3e9f"

// newMockConversationService builds a real conversation service on top of
// sqlmock. Both service constructors run their schema bootstrap, so the
// mock expects those statements up front.
func newMockConversationService(t *testing.T) (*database.ConversationService, sqlmock.Sqlmock, func()) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	for i := 0; i < 11; i++ {
		mock.ExpectExec("CREATE").WillReturnResult(sqlmock.NewResult(0, 0))
	}

	db := sqlx.NewDb(mockDB, "sqlmock")
	contacts, err := database.NewContactService(db)
	require.NoError(t, err)
	conversations, err := database.NewConversationService(db, contacts)
	require.NoError(t, err)

	return conversations, mock, func() { mockDB.Close() }
}

func webhookRequest(t *testing.T, handler echo.HandlerFunc, body, secret string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/webhook/wasender", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if secret != "" {
		req.Header.Set("X-Webhook-Secret", secret)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, handler(c))
	return rec
}

func TestWebhookHandler_RejectsBadSecret(t *testing.T) {
	hub := realtime.NewHub(zerolog.Nop())
	handler := WebhookHandler(nil, hub, "expected-secret")

	rec := webhookRequest(t, handler, `{"event":"message.received"}`, "wrong")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = webhookRequest(t, handler, `{"event":"message.received"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWebhookHandler_AcknowledgesUnknownEventType(t *testing.T) {
	hub := realtime.NewHub(zerolog.Nop())
	handler := WebhookHandler(nil, hub, "")

	rec := webhookRequest(t, handler, `{"event":"presence.update"}`, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWebhookHandler_DeliveryStatusUpdate(t *testing.T) {
	conversations, mock, cleanup := newMockConversationService(t)
	defer cleanup()

	hub := realtime.NewHub(zerolog.Nop())
	client := hub.NewClient()
	hub.Subscribe(client, realtime.ConversationChannel(testConversationID))

	mock.ExpectQuery("UPDATE messages").
		WithArgs("wamid.HBg", models.DeliveryRead).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "conversation_id", "seq", "content", "sender_type",
			"provider_message_id", "delivery_status", "ai_thread_id",
			"tokens_used", "latency_ms", "created_at",
		}).AddRow("11111111-2222-3333-4444-555555555555", testConversationID, 5,
			"hello", models.SenderAdmin, "wamid.HBg", models.DeliveryRead, nil, nil, nil, time.Now()))

	handler := WebhookHandler(conversations, hub, "hook-secret")
	rec := webhookRequest(t, handler,
		`{"event":"message.status","msgId":"wamid.HBg","status":"read"}`, "hook-secret")
	assert.Equal(t, http.StatusOK, rec.Code)

	// The update must fan out to sessions watching that conversation
	select {
	case event := <-client.Outbound:
		assert.Equal(t, realtime.EventMessageUpdated, event.Type)
		assert.Equal(t, int64(5), event.Seq)
	default:
		t.Fatal("no realtime event published")
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookHandler_StatusForUntrackedMessageIsAcknowledged(t *testing.T) {
	conversations, mock, cleanup := newMockConversationService(t)
	defer cleanup()

	mock.ExpectQuery("UPDATE messages").
		WillReturnError(sql.ErrNoRows)

	hub := realtime.NewHub(zerolog.Nop())
	handler := WebhookHandler(conversations, hub, "")

	rec := webhookRequest(t, handler,
		`{"event":"message.status","msgId":"wamid.unknown","status":"delivered"}`, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookHandler_RejectsMalformedStatusEvent(t *testing.T) {
	hub := realtime.NewHub(zerolog.Nop())
	handler := WebhookHandler(nil, hub, "")

	rec := webhookRequest(t, handler, `{"event":"message.status","msgId":"x"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = webhookRequest(t, handler, `{"event":"message.status","msgId":"x","status":"teleported"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebhookHandler_RejectsMalformedInboundEvent(t *testing.T) {
	hub := realtime.NewHub(zerolog.Nop())
	handler := WebhookHandler(nil, hub, "")

	rec := webhookRequest(t, handler, `{"event":"message.received","text":"hi"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
