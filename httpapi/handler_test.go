package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farhan32742/nexusform/clarify"
	"github.com/farhan32742/nexusform/extract"
	"github.com/farhan32742/nexusform/formschema"
	"github.com/farhan32742/nexusform/session"
	"github.com/farhan32742/nexusform/submit"
	"github.com/farhan32742/nexusform/types"
)

type fullRecordExtractor struct{}

func (fullRecordExtractor) Extract(ctx context.Context, req *extract.Request) (*extract.Result, error) {
	return extract.Merge(req.Schema, req.Record, req.Schema.Coerce(map[string]any{
		"full_name":   "Ali Khan",
		"destination": "Istanbul",
	}))
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	def, err := formschema.Build([]formschema.FieldDescriptor{
		{Name: "full_name", Required: true, Label: "Full Name"},
		{Name: "destination", Required: true, Label: "Destination"},
	})
	require.NoError(t, err)

	engine := session.NewEngine(
		formschema.StaticSource{Definition: def},
		fullRecordExtractor{},
		clarify.LocalClarifier{},
		submit.SubmitterFunc(func(ctx context.Context, record formschema.Record) (*submit.Outcome, error) {
			return &submit.Outcome{Tag: types.OutcomeSuccess, Message: "recorded"}, nil
		}),
		session.NewMemoryStore(),
		session.Config{},
	)

	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(engine))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestSessionLifecycleOverHTTP(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	resp, body := postJSON(t, srv.URL+"/sessions", "{}")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id, _ := body["session_id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, string(session.StatusExtracting), body["status"])

	resp, body = postJSON(t, srv.URL+"/sessions/"+id+"/turns", `{"text": "Ali Khan to Istanbul"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, string(session.StatusAwaitingReview), body["status"])
	assert.Equal(t, string(session.ActionReview), body["pending"])

	// The record endpoint reflects the extracted values.
	recordResp, err := http.Get(srv.URL + "/sessions/" + id + "/record")
	require.NoError(t, err)
	defer recordResp.Body.Close()
	var record map[string]any
	require.NoError(t, json.NewDecoder(recordResp.Body).Decode(&record))
	assert.Equal(t, "Ali Khan", record["full_name"])

	resp, body = postJSON(t, srv.URL+"/sessions/"+id+"/approve", "{}")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, string(session.StatusTerminated), body["status"])
	outcome, _ := body["outcome"].(map[string]any)
	require.NotNil(t, outcome)
	assert.Equal(t, string(types.OutcomeSuccess), outcome["tag"])
}

func TestUnknownSessionIs404(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)
	resp, _ := postJSON(t, srv.URL+"/sessions/no-such-id/approve", "{}")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestInvalidTransitionIs409(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	resp, body := postJSON(t, srv.URL+"/sessions", "{}")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := body["session_id"].(string)

	// Approving before anything was extracted conflicts with the state.
	resp, body = postJSON(t, srv.URL+"/sessions/"+id+"/approve", "{}")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.NotEmpty(t, body["error"])
	// The current state rides along so the client can re-prompt.
	state, _ := body["state"].(map[string]any)
	require.NotNil(t, state)
	assert.Equal(t, string(session.StatusExtracting), state["status"])
}

func TestMalformedBodyIs400(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	resp, body := postJSON(t, srv.URL+"/sessions", "{}")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := body["session_id"].(string)

	resp, _ = postJSON(t, srv.URL+"/sessions/"+id+"/turns", `{"text": `)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStatusSnapshotDoesNotAdvance(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	resp, body := postJSON(t, srv.URL+"/sessions", "{}")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := body["session_id"].(string)

	for i := 0; i < 2; i++ {
		statusResp, err := http.Get(srv.URL + "/sessions/" + id)
		require.NoError(t, err)
		var snapshot map[string]any
		require.NoError(t, json.NewDecoder(statusResp.Body).Decode(&snapshot))
		statusResp.Body.Close()
		assert.Equal(t, string(session.StatusExtracting), snapshot["status"])
	}
}
