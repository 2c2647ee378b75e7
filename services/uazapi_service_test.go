package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-saas/config"
)

func newTestUazapi(t *testing.T, handler http.HandlerFunc) *UazapiService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewUazapiService(config.UazapiConfig{
		BaseURL:    srv.URL + "/",
		AdminToken: "admin-secret",
		Timeout:    time.Second,
	})
}

func TestUazapiService_InitInstance(t *testing.T) {
	svc := newTestUazapi(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/instance/init", r.URL.Path)
		assert.Equal(t, "admin-secret", r.Header.Get("admintoken"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "pizzaria-bella", body["name"])

		_, _ = w.Write([]byte(`{"response":"Instance created","token":"inst-token","instance":{"id":"r123","status":"disconnected"}}`))
	})

	inst, err := svc.InitInstance(context.Background(), "pizzaria-bella")
	require.NoError(t, err)
	assert.Equal(t, "r123", inst.ID)
	assert.Equal(t, "inst-token", inst.Token)
}

func TestUazapiService_ConnectInstance(t *testing.T) {
	svc := newTestUazapi(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/instance/connect", r.URL.Path)
		assert.Equal(t, "inst-token", r.Header.Get("token"))
		_, _ = w.Write([]byte(`{"connected":false,"instance":{"status":"connecting","paircode":"ABCD-1234"}}`))
	})

	conn, err := svc.ConnectInstance(context.Background(), "inst-token", "5511999998888")
	require.NoError(t, err)
	assert.Equal(t, "connecting", conn.Status)
	assert.Equal(t, "ABCD-1234", conn.PairCode)
}

func TestUazapiService_DeleteInstance(t *testing.T) {
	var called bool
	svc := newTestUazapi(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/instance", r.URL.Path)
		assert.Equal(t, "inst-token", r.Header.Get("token"))
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, svc.DeleteInstance(context.Background(), "inst-token"))
	assert.True(t, called)
}

func TestUazapiService_GatewayError(t *testing.T) {
	svc := newTestUazapi(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid token"}`))
	})

	err := svc.DisconnectInstance(context.Background(), "bad")
	require.Error(t, err)
	var gwErr *GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, http.StatusUnauthorized, gwErr.StatusCode)
	assert.Equal(t, "disconnect", gwErr.Operation)
}

func TestUazapiService_InitWithoutToken(t *testing.T) {
	svc := newTestUazapi(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"instance":{"id":"r123"}}`))
	})
	_, err := svc.InitInstance(context.Background(), "x")
	assert.Error(t, err)
}
