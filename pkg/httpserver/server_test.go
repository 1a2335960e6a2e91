package httpserver_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asoflow/asoflow/pkg/httpserver"
	"github.com/asoflow/asoflow/pkg/logger"
)

func TestServer_RunAndShutdown(t *testing.T) {
	t.Parallel()

	srv := httpserver.New(httpserver.Config{
		Addr:            "127.0.0.1:0",
		ShutdownTimeout: time.Second,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
	}()

	// Let the listener come up, then cancel for a graceful stop.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServer_RunTwice(t *testing.T) {
	t.Parallel()

	srv := httpserver.New(httpserver.Config{Addr: "127.0.0.1:0"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = srv.Run(ctx, nil) }()
	time.Sleep(50 * time.Millisecond)

	err := srv.Run(ctx, nil)
	require.ErrorIs(t, err, httpserver.ErrStart)
}

func TestHealthHandler(t *testing.T) {
	t.Parallel()

	log := logger.New(logger.WithOutput(io.Discard))

	t.Run("liveness without checks", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		httpserver.HealthHandler(log)(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ALIVE", rec.Body.String())
	})

	t.Run("ready when all checks pass", func(t *testing.T) {
		t.Parallel()

		ok := func(context.Context) error { return nil }
		rec := httptest.NewRecorder()
		httpserver.HealthHandler(log, ok, ok)(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "READY", rec.Body.String())
	})

	t.Run("not ready when a check fails", func(t *testing.T) {
		t.Parallel()

		ok := func(context.Context) error { return nil }
		bad := func(context.Context) error { return errors.New("db down") }
		rec := httptest.NewRecorder()
		httpserver.HealthHandler(log, ok, bad)(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "NOT_READY", rec.Body.String())
	})
}
