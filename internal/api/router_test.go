package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freightdesk/quote/internal/config"
	"freightdesk/quote/internal/email"
)

type fakeMailbox map[string]*email.MockEmail

func (f fakeMailbox) Latest(ctx context.Context, address string) (*email.MockEmail, error) {
	return f[address], nil
}

func callService(r http.Handler, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestServiceRouter_GetTestEmail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	box := fakeMailbox{"buyer@example.com": {
		To:      []string{"buyer@example.com"},
		Subject: "Your transport request 02IM0417: information missing",
		SentAt:  time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	}}
	r := SetupServiceRouter(&config.Config{MockServices: true}, box, make(chan struct{}, 1))

	w := callService(r, `{"method":"getTestEmail","arguments":["buyer@example.com"]}`)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Success bool            `json:"success"`
		Data    email.MockEmail `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Contains(t, resp.Data.Subject, "02IM0417")

	assert.Equal(t, http.StatusBadRequest, callService(r, `{"method":"getTestEmail","arguments":"x"}`).Code)
}

func TestServiceRouter_GetTestEmail_Disabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := SetupServiceRouter(&config.Config{}, nil, make(chan struct{}, 1))
	assert.Equal(t, http.StatusNotFound, callService(r, `{"method":"getTestEmail","arguments":["a@b.test"]}`).Code)
}

func TestServiceRouter_Shutdown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	shutdown := make(chan struct{}, 1)
	r := SetupServiceRouter(&config.Config{}, nil, shutdown)

	w := callService(r, `{"method":"shutdown"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	select {
	case <-shutdown:
	default:
		t.Fatal("shutdown was not signaled")
	}

	assert.Equal(t, http.StatusNotFound, callService(r, `{"method":"reboot"}`).Code)
}

func TestRouter_Ping(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := SetupRouter(ctx, &config.Config{RateLimitRefillRate: 1, RateLimitBucketSize: 1}, nil, nil, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/v1/ping", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}
