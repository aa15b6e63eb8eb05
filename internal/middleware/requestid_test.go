package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serveWithRequestID runs one request through RequestID and returns the ID
// the downstream handler saw alongside the recorded response.
func serveWithRequestID(t *testing.T, header string) (string, *httptest.ResponseRecorder) {
	t.Helper()
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))
	req := httptest.NewRequest(http.MethodGet, "/v1/catalog/tables", nil)
	if header != "" {
		req.Header.Set(requestIDHeader, header)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return seen, rec
}

func TestRequestID_HeaderHandling(t *testing.T) {
	tests := []struct {
		name   string
		header string
		keep   bool
	}{
		{name: "absent", header: "", keep: false},
		{name: "ingestion job id", header: "ingest-sales_2026", keep: true},
		{name: "uuid", header: "6f1c2d4e-8a1b-4c3d-9e2f-0a1b2c3d4e5f", keep: true},
		{name: "longest accepted", header: strings.Repeat("z", maxRequestIDLen), keep: true},
		{name: "one past longest", header: strings.Repeat("z", maxRequestIDLen+1), keep: false},
		{name: "newline", header: "q1\nlevel=ERROR msg=forged", keep: false},
		{name: "dotted", header: "bronze.raw_sales", keep: false},
		{name: "slash", header: "silver/silver_sales", keep: false},
		{name: "non ascii", header: "médaille", keep: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen, rec := serveWithRequestID(t, tt.header)

			assert.Equal(t, http.StatusNoContent, rec.Code)
			assert.Equal(t, seen, rec.Header().Get(requestIDHeader))
			if tt.keep {
				assert.Equal(t, tt.header, seen)
				return
			}
			_, err := uuid.Parse(seen)
			require.NoError(t, err, "replacement id should be a uuid, got %q", seen)
		})
	}
}

func TestRequestID_FreshIDsDiffer(t *testing.T) {
	first, _ := serveWithRequestID(t, "")
	second, _ := serveWithRequestID(t, "")
	assert.NotEqual(t, first, second)
}

func TestRequestIDFromContext_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, RequestIDFromContext(req.Context()))
}

func TestRequestLogger_Levels(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantLevel string
	}{
		{name: "implicit ok", status: 0, wantLevel: "INFO"},
		{name: "client error", status: http.StatusNotFound, wantLevel: "INFO"},
		{name: "server error", status: http.StatusInternalServerError, wantLevel: "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, nil))
			handler := RequestID(RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				if tt.status != 0 {
					w.WriteHeader(tt.status)
				}
				_, _ = w.Write([]byte("{}"))
			})))

			req := httptest.NewRequest(http.MethodPost, "/v1/query", nil)
			req.Header.Set(requestIDHeader, "q-42")
			handler.ServeHTTP(httptest.NewRecorder(), req)

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			wantStatus := tt.status
			if wantStatus == 0 {
				wantStatus = http.StatusOK
			}
			assert.Equal(t, tt.wantLevel, entry["level"])
			assert.Equal(t, "http", entry["component"])
			assert.Equal(t, "q-42", entry["request_id"])
			assert.Equal(t, http.MethodPost, entry["method"])
			assert.Equal(t, "/v1/query", entry["path"])
			assert.EqualValues(t, wantStatus, entry["status"])
		})
	}
}

func TestStatusRecorder_Unwrap(t *testing.T) {
	inner := httptest.NewRecorder()
	rec := &statusRecorder{ResponseWriter: inner, status: http.StatusOK}
	assert.Same(t, inner, rec.Unwrap())
}
