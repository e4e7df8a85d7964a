package trace

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/log"
)

func TestHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Output: &buf, Level: slog.LevelDebug, Format: "json"})

	var seen string
	m := NewMiddleware(func(*http.Request) string { return "10.0.0.1" })
	h := log.Middleware(logger)(m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/summary?x=1", nil))

	require.True(t, strings.HasPrefix(seen, "req_"))
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
	assert.Equal(t, int64(1), m.GetMetrics().TotalRequests)

	out := buf.String()
	assert.Contains(t, out, "HTTP request started")
	assert.Contains(t, out, "HTTP request completed")
	assert.Contains(t, out, `"status_code":418`)
	assert.Contains(t, out, `"level":"WARN"`)
	assert.Contains(t, out, `"client_ip":"10.0.0.1"`)
}

func TestGenerateRequestIDUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := GenerateRequestID()
		assert.False(t, seen[id])
		seen[id] = true
	}
}
