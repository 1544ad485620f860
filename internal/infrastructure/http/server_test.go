package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("X-Path", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	})
}

func newTestServer(t *testing.T, api http.Handler, cfg ServerConfig) *APIServer {
	t.Helper()
	srv, err := NewAPIServer(api, cfg)
	require.NoError(t, err)
	return srv
}

func TestAPIServer_Health(t *testing.T) {
	srv := newTestServer(t, echoHandler(), ServerConfig{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAPIServer_Ready(t *testing.T) {
	t.Run("ready without check", func(t *testing.T) {
		srv := newTestServer(t, echoHandler(), ServerConfig{})
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ready"}`, rec.Body.String())
	})

	t.Run("unavailable when check fails", func(t *testing.T) {
		srv := newTestServer(t, echoHandler(), ServerConfig{
			Ready: func(context.Context) error { return errors.New("pool closed") },
		})
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.JSONEq(t, `{"status":"unavailable"}`, rec.Body.String())
	})
}

func TestAPIServer_RateLimitsAPIOnly(t *testing.T) {
	srv := newTestServer(t, echoHandler(), ServerConfig{RateLimitRPS: 0.001, RateLimitBurst: 1})

	serve := func(path string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = "192.0.2.7:4000"
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, serve("/v1/dates/parse"))
	assert.Equal(t, http.StatusTooManyRequests, serve("/v1/dates/parse"))
	assert.Equal(t, http.StatusOK, serve("/health"))
	assert.Equal(t, http.StatusOK, serve("/ready"))
}

func TestAPIServer_MountsAPIUnderV1(t *testing.T) {
	srv := newTestServer(t, echoHandler(), ServerConfig{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/dates/parse", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/dates/parse", rec.Header().Get("X-Path"))

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dates/parse", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPIServer_SetsRequestID(t *testing.T) {
	var seen string
	api := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.GetReqID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	srv := newTestServer(t, api, ServerConfig{})

	req := httptest.NewRequest(http.MethodGet, "/v1/x", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-123")
	srv.Handler().ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "req-123", seen)
}

func TestAPIServer_RecoversFromPanic(t *testing.T) {
	api := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})
	srv := newTestServer(t, api, ServerConfig{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/x", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAPIServer_EnforcesMaxBodyBytes(t *testing.T) {
	srv := newTestServer(t, echoHandler(), ServerConfig{MaxBodyBytes: 16})

	t.Run("accepts body within limit", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/x", strings.NewReader(`{"a":1}`)))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, `{"a":1}`, rec.Body.String())
	})

	t.Run("rejects declared oversize body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/x", strings.NewReader(strings.Repeat("x", 64))))
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

		var body struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "PAYLOAD_TOO_LARGE", body.Error.Code)
	})

	t.Run("rejects chunked oversize body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/x", io.MultiReader(bytes.NewReader(bytes.Repeat([]byte("x"), 64))))
		req.ContentLength = -1
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
}

func TestMaxHeaderBytes_EnforcesLimit(t *testing.T) {
	// net/http adds ~8KB of slack to MaxHeaderBytes, so 4KB configured
	// means roughly 12KB effective.
	const maxHeaderBytes = 4 * 1024

	srv := newTestServer(t, echoHandler(), ServerConfig{MaxHeaderBytes: maxHeaderBytes})
	server := httptest.NewUnstartedServer(srv.Handler())
	server.Config.MaxHeaderBytes = maxHeaderBytes
	server.Start()
	defer server.Close()

	t.Run("accepts request within limit", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, server.URL+"/health", nil)
		require.NoError(t, err)
		req.Header.Set("X-Test", strings.Repeat("A", 2*1024))

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("rejects request exceeding limit", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, server.URL+"/health", nil)
		require.NoError(t, err)
		req.Header.Set("X-Test", strings.Repeat("A", 20*1024))

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusRequestHeaderFieldsTooLarge, resp.StatusCode)
	})
}

func TestServerConfig_ApplyDefaults(t *testing.T) {
	t.Run("applies all defaults for zero config", func(t *testing.T) {
		cfg := ServerConfig{}
		cfg.applyDefaults()

		assert.Equal(t, DefaultPort, cfg.Port)
		assert.Equal(t, DefaultReadTimeout, cfg.ReadTimeout)
		assert.Equal(t, DefaultWriteTimeout, cfg.WriteTimeout)
		assert.Equal(t, DefaultIdleTimeout, cfg.IdleTimeout)
		assert.Equal(t, DefaultReadHeaderTimeout, cfg.ReadHeaderTimeout)
		assert.Equal(t, DefaultMaxHeaderBytes, cfg.MaxHeaderBytes)
		assert.Equal(t, int64(DefaultMaxBodyBytes), cfg.MaxBodyBytes)
		assert.Equal(t, "central", cfg.ServiceName)
	})

	t.Run("preserves non-zero values", func(t *testing.T) {
		cfg := ServerConfig{
			Port:           "9000",
			MaxHeaderBytes: 2048,
			MaxBodyBytes:   4096,
		}
		cfg.applyDefaults()

		assert.Equal(t, "9000", cfg.Port)
		assert.Equal(t, 2048, cfg.MaxHeaderBytes)
		assert.Equal(t, int64(4096), cfg.MaxBodyBytes)
		assert.Equal(t, DefaultReadTimeout, cfg.ReadTimeout)
	})
}
