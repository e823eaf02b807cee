package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/api/channels/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, id := range []string{"1", "2", "3"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/channels/"+id, nil))
		require.Equal(t, http.StatusTeapot, rec.Code)
	}

	got := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/channels/{id}", "418"))
	require.Equal(t, float64(3), got)
}

func TestRecordJanitorRun(t *testing.T) {
	before := testutil.ToFloat64(janitorDeleted)
	RecordJanitorRun(5, nil)
	require.Equal(t, before+5, testutil.ToFloat64(janitorDeleted))
}
