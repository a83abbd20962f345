package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		expected   string
	}{
		{
			name:       "first forwarded address",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.2"},
			remoteAddr: "10.0.0.2:5555",
			expected:   "203.0.113.7",
		},
		{
			name:       "real ip when forwarded header is garbage",
			headers:    map[string]string{"X-Forwarded-For": "unknown", "X-Real-IP": "198.51.100.4"},
			remoteAddr: "10.0.0.2:5555",
			expected:   "198.51.100.4",
		},
		{
			name:       "remote address",
			remoteAddr: "192.0.2.10:443",
			expected:   "192.0.2.10",
		},
		{
			name:       "remote address without port",
			remoteAddr: "192.0.2.10",
			expected:   "192.0.2.10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr

			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			assert.Equal(t, tt.expected, GetClientIP(req))
		})
	}
}

func TestPublicClientIP(t *testing.T) {
	tests := []struct {
		remoteAddr string
		expected   string
	}{
		{remoteAddr: "203.0.113.7:1234", expected: "203.0.113.7"},
		{remoteAddr: "127.0.0.1:1234", expected: ""},
		{remoteAddr: "[::1]:1234", expected: ""},
		{remoteAddr: "10.1.2.3:1234", expected: ""},
		{remoteAddr: "192.168.1.20:1234", expected: ""},
		{remoteAddr: "169.254.0.1:1234", expected: ""},
		{remoteAddr: "0.0.0.0:1234", expected: ""},
		{remoteAddr: "not-an-ip", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.remoteAddr, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr

			assert.Equal(t, tt.expected, PublicClientIP(req))
		})
	}
}

func TestCorrelationMiddleware(t *testing.T) {
	m := NewObservabilityMiddleware(nil, zap.NewNop())

	var seenCorrelation, seenRequest string

	handler := m.CorrelationMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenCorrelation = GetCorrelationID(r.Context())
		seenRequest = GetRequestID(r.Context())
	}))

	t.Run("keeps incoming correlation id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("X-Correlation-ID", "abc-123")
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		assert.Equal(t, "abc-123", seenCorrelation)
		assert.Equal(t, "abc-123", rr.Header().Get("X-Correlation-ID"))
		assert.Equal(t, seenRequest, rr.Header().Get("X-Request-ID"))
	})

	t.Run("generates ids", func(t *testing.T) {
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

		_, err := uuid.Parse(seenCorrelation)
		require.NoError(t, err)
		_, err = uuid.Parse(seenRequest)
		require.NoError(t, err)
		assert.NotEqual(t, seenCorrelation, seenRequest)
	})
}

func TestMiddlewareChain_WithoutTelemetry(t *testing.T) {
	m := NewObservabilityMiddleware(nil, zap.NewNop())

	handler := m.CorrelationMiddleware(m.TracingMiddleware(m.MetricsMiddleware(m.LoggingMiddleware(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
			_, _ = w.Write([]byte("short and stout"))
		}),
	))))

	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/anything", nil))

	assert.Equal(t, http.StatusTeapot, rr.Code)
	assert.Equal(t, "short and stout", rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestGetCorrelationID_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	assert.Empty(t, GetCorrelationID(req.Context()))
	assert.Empty(t, GetRequestID(req.Context()))
}
