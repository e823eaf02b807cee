package httputil_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cwrk-planet/chat-service/pkg/httputil"
	"github.com/cwrk-planet/chat-service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestMiddlewareTracing(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})

	var sawTrace bool
	h := httputil.MiddlewareTracing(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawTrace = len(logger.AttrsFromCtx(r.Context())) == 2
		w.WriteHeader(http.StatusBadGateway)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/channels", nil))

	assert.True(t, sawTrace, "handler context must carry the span")
	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /api/channels", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}
