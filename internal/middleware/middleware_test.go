package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mcoot/racesync/internal/testutil"
)

func TestLoggingLevels(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, requestLevel(http.StatusOK))
	assert.Equal(t, slog.LevelInfo, requestLevel(http.StatusNotFound))
	assert.Equal(t, slog.LevelError, requestLevel(http.StatusInternalServerError))
}

func TestLoggingRecordsStatusAndSize(t *testing.T) {
	logger, logs := testutil.CaptureLogger()
	h := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("missing"))
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/races/4", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, logs.String(), "path=/api/v1/races/4")
	assert.Contains(t, logs.String(), "status=404")
	assert.Contains(t, logs.String(), "size=7")
}

func TestRecoverUsesResponder(t *testing.T) {
	logger, logs := testutil.CaptureLogger()
	responded := false
	h := Recover(logger, func(w http.ResponseWriter, _ *http.Request, recovered any) {
		responded = true
		assert.Equal(t, "boom", recovered)
		w.WriteHeader(http.StatusTeapot)
	})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/session", nil))

	assert.True(t, responded)
	assert.Equal(t, http.StatusTeapot, rr.Code)
	assert.Contains(t, logs.String(), "handler panicked")
	assert.Contains(t, logs.String(), `route="GET /api/v1/session"`)
}

func TestRecoverReraisesAbort(t *testing.T) {
	h := Recover(testutil.NopLogger(), func(http.ResponseWriter, *http.Request, any) {
		t.Fatal("responder must not run for an aborted request")
	})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}
