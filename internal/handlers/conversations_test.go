package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"waconsole/internal/models"
	"waconsole/internal/realtime"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkConversationReadHandler(t *testing.T) {
	conversations, mock, cleanup := newMockConversationService(t)
	defer cleanup()

	hub := realtime.NewHub(zerolog.Nop())
	client := hub.NewClient()
	hub.Subscribe(client, realtime.ChannelConversations)

	mock.ExpectExec("SET unread_count = 0").
		WithArgs(testConversationID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/conversations/:id/read")
	c.SetParamNames("id")
	c.SetParamValues(testConversationID)

	require.NoError(t, MarkConversationReadHandler(conversations, hub)(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	// List views watching the global channel get the zeroed badge
	select {
	case event := <-client.Outbound:
		assert.Equal(t, realtime.EventConversationUpdated, event.Type)
	default:
		t.Fatal("no realtime event published")
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkConversationReadHandler_NotFound(t *testing.T) {
	conversations, mock, cleanup := newMockConversationService(t)
	defer cleanup()

	mock.ExpectExec("SET unread_count = 0").
		WillReturnResult(sqlmock.NewResult(0, 0))

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(testConversationID)

	hub := realtime.NewHub(zerolog.Nop())
	require.NoError(t, MarkConversationReadHandler(conversations, hub)(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var response models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.False(t, response.Success)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStartConversationHandler_RequiresPhone(t *testing.T) {
	conversations, mock, cleanup := newMockConversationService(t)
	defer cleanup()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/conversations", strings.NewReader(`{"name":"Maria"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	hub := realtime.NewHub(zerolog.Nop())
	require.NoError(t, StartConversationHandler(conversations, hub)(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSendMessageHandler_RequiresContent(t *testing.T) {
	conversations, mock, cleanup := newMockConversationService(t)
	defer cleanup()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(testConversationID)

	hub := realtime.NewHub(zerolog.Nop())
	require.NoError(t, SendMessageHandler(conversations, nil, hub)(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.NoError(t, mock.ExpectationsWereMet())
}
