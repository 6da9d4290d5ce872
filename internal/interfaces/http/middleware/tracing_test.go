package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// setupTestTracer sets up a test tracer provider and returns the span recorder.
func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	t.Cleanup(func() {
		_ = tp.Shutdown(t.Context())
	})

	return sr
}

func testTracingConfig() TracingConfig {
	return TracingConfig{Enabled: true, ServiceName: "test-service"}
}

func serveGET(router http.Handler, header map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/test", nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	router.ServeHTTP(w, req)
	return w
}

func httpSpan(t *testing.T, sr *tracetest.SpanRecorder) sdktrace.ReadOnlySpan {
	t.Helper()
	for _, span := range sr.Ended() {
		if span.Name() == "GET /test" {
			return span
		}
	}
	require.FailNow(t, "HTTP span not found")
	return nil
}

func spanAttr(span sdktrace.ReadOnlySpan, key string) (string, bool) {
	for _, attr := range span.Attributes() {
		if string(attr.Key) == key {
			return attr.Value.Emit(), true
		}
	}
	return "", false
}

// ---------------------------------------------------------------------------
// TracingWithConfig
// ---------------------------------------------------------------------------

func TestTracingWithConfig_Disabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sr := setupTestTracer(t)

	router := gin.New()
	router.Use(TracingWithConfig(TracingConfig{Enabled: false, ServiceName: "test-service"}))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	w := serveGET(router, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, sr.Ended())
}

func TestTracingWithConfig_Enabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sr := setupTestTracer(t)

	router := gin.New()
	router.Use(TracingWithConfig(testTracingConfig()))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	w := serveGET(router, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	span := httpSpan(t, sr)
	assert.NotEqual(t, codes.Error, span.Status().Code)
}

func TestDefaultTracingConfig(t *testing.T) {
	cfg := DefaultTracingConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "retailcrm-backend", cfg.ServiceName)
}

// ---------------------------------------------------------------------------
// TracingAttributeInjector
// ---------------------------------------------------------------------------

func TestTracingAttributeInjector_RequestIDAndUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sr := setupTestTracer(t)
	userID := uuid.New()

	router := gin.New()
	router.Use(RequestID())
	router.Use(TracingWithConfig(testTracingConfig()))
	router.Use(func(c *gin.Context) {
		c.Set(JWTUserIDKey, userID)
		c.Next()
	})
	router.Use(TracingAttributeInjector())
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	serveGET(router, map[string]string{RequestIDHeader: "test-request-id-123"})

	span := httpSpan(t, sr)
	requestID, ok := spanAttr(span, "request_id")
	require.True(t, ok, "request_id attribute not found in span")
	assert.Equal(t, "test-request-id-123", requestID)

	user, ok := spanAttr(span, "user_id")
	require.True(t, ok, "user_id attribute not found in span")
	assert.Equal(t, userID.String(), user)
}

func TestTracingAttributeInjector_AnonymousRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sr := setupTestTracer(t)

	router := gin.New()
	router.Use(TracingWithConfig(testTracingConfig()))
	router.Use(TracingAttributeInjector())
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	serveGET(router, nil)

	_, ok := spanAttr(httpSpan(t, sr), "user_id")
	assert.False(t, ok)
}

func TestTracingAttributeInjector_WithNoSpan(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(TracingAttributeInjector())
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := serveGET(router, nil)

	assert.Equal(t, http.StatusOK, w.Code)
}

// ---------------------------------------------------------------------------
// SpanErrorMarker
// ---------------------------------------------------------------------------

func TestSpanErrorMarker(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		wantCode    codes.Code
		wantMessage string
	}{
		{"bad request", http.StatusBadRequest, codes.Error, "Client Error"},
		{"unauthorized", http.StatusUnauthorized, codes.Error, "Unauthorized"},
		{"not found", http.StatusNotFound, codes.Error, "Not Found"},
		{"sync in progress", http.StatusConflict, codes.Error, "Conflict"},
		{"unprocessable", http.StatusUnprocessableEntity, codes.Error, "Client Error"},
		{"marketplace unavailable", http.StatusBadGateway, codes.Error, "Internal Server Error"},
		{"success", http.StatusOK, codes.Unset, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			sr := setupTestTracer(t)

			router := gin.New()
			router.Use(TracingWithConfig(testTracingConfig()))
			router.Use(SpanErrorMarker())
			router.GET("/test", func(c *gin.Context) {
				c.JSON(tt.status, gin.H{})
			})

			w := serveGET(router, nil)
			require.Equal(t, tt.status, w.Code)

			span := httpSpan(t, sr)
			if tt.wantCode == codes.Error {
				assert.Equal(t, codes.Error, span.Status().Code)
				assert.Equal(t, tt.wantMessage, span.Status().Description)
				return
			}
			assert.NotEqual(t, codes.Error, span.Status().Code)
		})
	}
}

func TestSpanErrorMarker_WithNoSpan(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(SpanErrorMarker())
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusInternalServerError)
	})

	w := serveGET(router, nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
