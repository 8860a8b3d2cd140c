package http

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-secret-keeper/internal/config"
	"github.com/MKhiriev/go-secret-keeper/internal/logger"
	"github.com/MKhiriev/go-secret-keeper/internal/service"
	"github.com/MKhiriev/go-secret-keeper/internal/store"
	"github.com/MKhiriev/go-secret-keeper/internal/utils"
	"github.com/MKhiriev/go-secret-keeper/models"
)

// injectNopLogger puts a nop logger into the request context.
func injectNopLogger(r *http.Request) *http.Request {
	nop := logger.Nop()
	return r.WithContext(nop.Logger.WithContext(r.Context()))
}

// ─────────────────────────────────────────────
// auth
// ─────────────────────────────────────────────

func TestAuth_Middleware_TableTest(t *testing.T) {
	tests := []struct {
		name           string
		authHeader     string
		parseErr       error
		expectParse    bool
		expectedStatus int
		nextCalled     bool
	}{
		{
			name:           "empty Authorization header → 401",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "non-Bearer scheme → 401",
			authHeader:     "Basic dXNlcjpwYXNz",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "scheme without token → 401",
			authHeader:     "Bearer",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "rejected token → 401",
			authHeader:     "Bearer bad",
			parseErr:       service.ErrTokenIsExpiredOrInvalid,
			expectParse:    true,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "valid token → next with user id",
			authHeader:     "bearer good",
			expectParse:    true,
			expectedStatus: http.StatusOK,
			nextCalled:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.expectParse {
				f.auth.EXPECT().ParseToken(gomock.Any(), gomock.Any()).Return(models.Token{UserID: 42}, tt.parseErr)
			}

			var called bool
			var gotUserID int64
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				gotUserID, _ = utils.GetUserIDFromContext(r.Context())
			})

			req := injectNopLogger(httptest.NewRequest(http.MethodGet, "/test", nil))
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()
			f.handler.auth(next).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Equal(t, tt.nextCalled, called)
			if tt.nextCalled {
				assert.Equal(t, int64(42), gotUserID)
			}
		})
	}
}

func TestUserIDFromRequest_Missing(t *testing.T) {
	rr := httptest.NewRecorder()
	req := injectNopLogger(httptest.NewRequest(http.MethodGet, "/", nil))

	_, ok := userIDFromRequest(rr, req)

	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

// ─────────────────────────────────────────────
// withTraceID
// ─────────────────────────────────────────────

func TestWithTraceID(t *testing.T) {
	existing := uuid.NewString()

	tests := []struct {
		name      string
		header    string
		wantReuse bool
	}{
		{"no header generates one", "", false},
		{"valid uuid is reused", existing, true},
		{"garbage is replaced", "<script>", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&service.Services{}, config.Share{}, logger.Nop())

			var ctxHasLogger bool
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ctxHasLogger = logger.FromRequest(r) != nil
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(traceIDHeader, tt.header)
			}
			rr := httptest.NewRecorder()
			h.withTraceID(next).ServeHTTP(rr, req)

			got := rr.Header().Get(traceIDHeader)
			_, err := uuid.Parse(got)
			require.NoError(t, err)
			if tt.wantReuse {
				assert.Equal(t, tt.header, got)
			} else {
				assert.NotEqual(t, tt.header, got)
			}
			assert.True(t, ctxHasLogger)
		})
	}
}

// ─────────────────────────────────────────────
// responseWriter
// ─────────────────────────────────────────────

func TestResponseWriter_RecordsStatusAndSize(t *testing.T) {
	rec := httptest.NewRecorder()
	w := &responseWriter{ResponseWriter: rec}

	w.WriteHeader(http.StatusTeapot)
	w.WriteHeader(http.StatusOK)
	n, err := w.Write([]byte("hello"))

	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, http.StatusTeapot, w.Status())
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, 5, w.size)
}

func TestResponseWriter_ImplicitOK(t *testing.T) {
	w := &responseWriter{ResponseWriter: httptest.NewRecorder()}

	assert.Equal(t, http.StatusOK, w.Status())

	_, _ = w.Write([]byte("x"))
	assert.True(t, w.wroteHeader)
	assert.Equal(t, http.StatusOK, w.status)
}

// ─────────────────────────────────────────────
// statusFromError
// ─────────────────────────────────────────────

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{"wrapped conflict", fmt.Errorf("rotating: %w", store.ErrVersionConflict), http.StatusConflict, store.ErrVersionConflict.Error()},
		{"forbidden", service.ErrForbidden, http.StatusForbidden, service.ErrForbidden.Error()},
		{"share gone", store.ErrShareNotFound, http.StatusNotFound, store.ErrShareNotFound.Error()},
		{"bad request keeps detail", fmt.Errorf("%w: bad login", service.ErrInvalidDataProvided), http.StatusBadRequest, "invalid data provided: bad login"},
		{"sql error hides detail", fmt.Errorf("%w: pq: relation missing", store.ErrExecutingQuery), http.StatusInternalServerError, "Internal Server Error"},
		{"unknown", context.DeadlineExceeded, http.StatusInternalServerError, "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := statusFromError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantMessage, msg)
		})
	}
}

// ─────────────────────────────────────────────
// ipRateLimiter
// ─────────────────────────────────────────────

func TestIPRateLimiter_PerIP(t *testing.T) {
	l := newIPRateLimiter(1, 1)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	assert.True(t, l.allow("10.0.0.1"))
	assert.False(t, l.allow("10.0.0.1"))
	assert.True(t, l.allow("10.0.0.2"))

	now = now.Add(time.Second)
	assert.True(t, l.allow("10.0.0.1"))
}

func TestIPRateLimiter_SweepsIdle(t *testing.T) {
	l := newIPRateLimiter(1, 1)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	l.allow("10.0.0.1")
	now = now.Add(2 * limiterIdleTTL)
	l.allow("10.0.0.2")

	assert.Len(t, l.visitors, 1)
	assert.Contains(t, l.visitors, "10.0.0.2")
}

func TestIPRateLimiter_DisabledWhenNoRate(t *testing.T) {
	l := newIPRateLimiter(0, 0)

	for range 100 {
		require.True(t, l.allow("10.0.0.1"))
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.5:51000"
	assert.Equal(t, "203.0.113.5", clientIP(req))

	req.RemoteAddr = "garbage"
	assert.Equal(t, "garbage", clientIP(req))
}
