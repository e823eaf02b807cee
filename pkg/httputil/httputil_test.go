package httputil_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cwrk-planet/chat-service/pkg/httputil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedactJSON(t *testing.T) {
	got := httputil.RedactJSON([]byte(`{"name":"alice","password":"hunter2","nested":{"refresh_token":"x"}}`))

	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(got), &m))
	assert.Equal(t, "alice", m["name"])
	assert.Equal(t, "***", m["password"])
	assert.Equal(t, "***", m["nested"].(map[string]any)["refresh_token"])

	assert.Equal(t, "<unparsed>", httputil.RedactJSON([]byte(`[1,2]`)))
	assert.Empty(t, httputil.RedactJSON(nil))
}

func TestMiddlewareLogging_KeepsBody(t *testing.T) {
	var seen string
	h := httputil.MiddlewareRequestID(httputil.MiddlewareLogging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		seen = string(b)
		id, ok := httputil.FromContext(r.Context())
		assert.True(t, ok)
		assert.NotEmpty(t, id)
		w.WriteHeader(http.StatusCreated)
	})))

	body := `{"name":"alice","password":"hunter2"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, body, seen)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(httputil.HeaderRequestID))
}

func TestWriteProblem(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/channels/9", nil)
	rec := httptest.NewRecorder()

	httputil.WriteProblem(rec, req, httputil.Problem{Status: http.StatusNotFound, Detail: "channel not found"})

	assert.Equal(t, httputil.ContentTypeProblem, rec.Header().Get("Content-Type"))
	var p httputil.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, httputil.Problem{
		Type:     "about:blank",
		Title:    "Not Found",
		Status:   http.StatusNotFound,
		Detail:   "channel not found",
		Instance: "/api/channels/9",
	}, p)
}
