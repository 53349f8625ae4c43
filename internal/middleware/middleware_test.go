package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/circles/internal/auth"
	"github.com/mmynk/circles/internal/models"
)

const testProcedure = "/circles.v1.Test/Echo"

// echoUserID returns the authenticated user ID as the response body.
func echoUserID(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
	id := GetUserID(ctx)
	return connect.NewResponse(&id), nil
}

func requestWithHeader(header string) connect.AnyRequest {
	req := connect.NewRequest(&struct{}{})
	if header != "" {
		req.Header().Set("Authorization", header)
	}
	return req
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		err    error
	}{
		{"", "", auth.ErrMissingToken},
		{"Bearer abc", "abc", nil},
		{"bearer abc", "abc", nil},
		{"Basic abc", "", auth.ErrInvalidToken},
		{"Bearer", "", auth.ErrInvalidToken},
	}
	for _, tt := range tests {
		token, err := bearerToken(tt.header)
		assert.ErrorIs(t, err, tt.err, tt.header)
		if tt.err == nil {
			assert.NoError(t, err)
		}
		assert.Equal(t, tt.token, token, tt.header)
	}
}

func TestRequireAuth(t *testing.T) {
	jwtManager := auth.NewJWTManager("secret", time.Hour)
	user := models.NewUser("ada@example.com", "Ada", "hash")
	token, err := jwtManager.Generate(user)
	require.NoError(t, err)

	handler := RequireAuth(jwtManager)(echoUserID)

	resp, err := handler(context.Background(), requestWithHeader("Bearer "+token))
	require.NoError(t, err)
	assert.Equal(t, user.ID, *resp.Any().(*string))

	_, err = handler(context.Background(), requestWithHeader(""))
	assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))

	_, err = handler(context.Background(), requestWithHeader("Bearer not-a-token"))
	assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
}

func TestOptionalAuth(t *testing.T) {
	jwtManager := auth.NewJWTManager("secret", time.Hour)
	handler := OptionalAuth(jwtManager)(echoUserID)

	resp, err := handler(context.Background(), requestWithHeader("Bearer garbage"))
	require.NoError(t, err)
	assert.Empty(t, *resp.Any().(*string))
}

func TestMetricsInterceptor(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	ok := MetricsInterceptor(m)(func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		return nil, nil
	})
	failing := MetricsInterceptor(m)(func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		return nil, connect.NewError(connect.CodeNotFound, errors.New("missing"))
	})

	// connect.NewRequest has no procedure outside a client or handler.
	procedure := requestWithHeader("").Spec().Procedure

	_, _ = ok(context.Background(), requestWithHeader(""))
	_, _ = ok(context.Background(), requestWithHeader(""))
	_, _ = failing(context.Background(), requestWithHeader(""))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestCounter.WithLabelValues(procedure, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestCounter.WithLabelValues(procedure, "not_found")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.RequestsInFlight.WithLabelValues(procedure)))
}

func TestLoggingInterceptorPassesThrough(t *testing.T) {
	want := connect.NewError(connect.CodeInvalidArgument, errors.New("bad"))
	handler := LoggingInterceptor(nil)(func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		return nil, want
	})
	_, err := handler(context.Background(), requestWithHeader(""))
	assert.Same(t, want, err)
}

func TestCORSPreflight(t *testing.T) {
	called := false
	h := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, testProcedure, nil))

	assert.False(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestRequestLoggerRecordsStatus(t *testing.T) {
	h := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
