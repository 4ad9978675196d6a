package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"waconsole/internal/auth"
	"waconsole/internal/config"
	"waconsole/internal/models"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loginRequest(t *testing.T, manager *auth.Manager, body string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, AdminLoginHandler(manager)(c))
	return rec
}

func TestAdminLoginHandler_Success(t *testing.T) {
	manager := auth.NewManager(&config.Config{AdminUsername: "admin", AdminPassword: "s3cret"})

	rec := loginRequest(t, manager, `{"username":"admin","password":"s3cret"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	var response models.AdminAuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.True(t, response.Success)
	assert.NotEmpty(t, response.Token)
	assert.True(t, manager.ValidateToken(response.Token))
}

func TestAdminLoginHandler_WrongPassword(t *testing.T) {
	manager := auth.NewManager(&config.Config{AdminUsername: "admin", AdminPassword: "s3cret"})

	rec := loginRequest(t, manager, `{"username":"admin","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminLoginHandler_PasswordNotConfigured(t *testing.T) {
	manager := auth.NewManager(&config.Config{AdminUsername: "admin"})

	// An empty configured password must never authenticate anyone
	rec := loginRequest(t, manager, `{"username":"admin","password":""}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
