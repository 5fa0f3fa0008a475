package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/go-drift/nodeward/internal/config"
	"github.com/go-drift/nodeward/pkg/contact"
	"github.com/go-drift/nodeward/pkg/errors"
	"github.com/go-drift/nodeward/pkg/monitor"
	"github.com/go-drift/nodeward/pkg/reveal"
)

func newTestServer(t *testing.T, opts Options) (*Server, *httptest.Server) {
	t.Helper()
	if opts.Store == nil {
		store, err := contact.Open(":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { store.Close() })
		opts.Store = store
	}
	s, err := New(opts)
	require.NoError(t, err)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return s, srv
}

func getJSON(t *testing.T, url string, v any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp
}

func postJSON(t *testing.T, url, body string, v any) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp
}

func TestNew_RequiresStore(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestHealthz(t *testing.T) {
	_, srv := newTestServer(t, Options{})
	var body map[string]string
	resp := getJSON(t, srv.URL+"/healthz", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestContent(t *testing.T) {
	_, srv := newTestServer(t, Options{})
	var body struct {
		Version  string `json:"version"`
		Sections []struct {
			ID string `json:"id"`
		} `json:"sections"`
	}
	resp := getJSON(t, srv.URL+"/api/content", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "v1.0.0", body.Version)
	require.NotEmpty(t, body.Sections)
	assert.Equal(t, "hero", body.Sections[0].ID)
}

func sectionState(t *testing.T, state reveal.PageState, id string) reveal.SectionState {
	t.Helper()
	for _, s := range state.Sections {
		if s.ID == id {
			return s
		}
	}
	t.Fatalf("section %q missing from snapshot", id)
	return reveal.SectionState{}
}

func TestPage_Top(t *testing.T) {
	_, srv := newTestServer(t, Options{})
	var state reveal.PageState
	resp := getJSON(t, srv.URL+"/api/page?elapsed=1500", &state)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	hero := sectionState(t, state, "hero")
	assert.True(t, hero.StatsVisible)
	require.Len(t, hero.Stats, 2)
	assert.Equal(t, "98%", hero.Stats[0].Text)
	assert.Equal(t, "<10ms", hero.Stats[1].Text)
	assert.Equal(t, "held", hero.Stats[0].Status)

	about := sectionState(t, state, "about")
	assert.False(t, about.Revealed)
	assert.Equal(t, "scroll-reveal fade-up", about.Classes)
}

func TestPage_ScrolledToAbout(t *testing.T) {
	_, srv := newTestServer(t, Options{})
	var state reveal.PageState
	resp := getJSON(t, srv.URL+"/api/page?scroll=900&elapsed=2000", &state)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 900.0, state.Scroll)

	hero := sectionState(t, state, "hero")
	assert.False(t, hero.StatsVisible)
	assert.Equal(t, "0%", hero.Stats[0].Text)
	assert.Equal(t, "idle", hero.Stats[0].Status)

	about := sectionState(t, state, "about")
	assert.True(t, about.Revealed)
	assert.True(t, about.BodyVisible)
	assert.Equal(t, "scroll-reveal fade-up visible", about.Classes)
	assert.True(t, about.StatsVisible)
	texts := make([]string, 0, len(about.Stats))
	for _, st := range about.Stats {
		texts = append(texts, st.Text)
	}
	assert.Equal(t, []string{"3M+", "91%", "<10ms"}, texts)
}

func TestPage_BadQuery(t *testing.T) {
	_, srv := newTestServer(t, Options{})
	for _, q := range []string{"scroll=abc", "scroll=-1", "width=0", "height=NaN", "elapsed=999999"} {
		var body errorResponse
		resp := getJSON(t, srv.URL+"/api/page?"+q, &body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
		assert.NotEmpty(t, body.Error, q)
	}
}

func TestContact(t *testing.T) {
	store, err := contact.Open(":memory:")
	require.NoError(t, err)
	defer store.Close()
	_, srv := newTestServer(t, Options{Store: store})

	var stored contact.Submission
	resp := postJSON(t, srv.URL+"/api/contact",
		`{"name":" Ada ","email":"ada@example.com","industry":"DeFi","message":"hello"}`, &stored)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, stored.ID)
	assert.Equal(t, "Ada", stored.Name)
	assert.Equal(t, "defi", stored.Industry)

	list, err := store.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, stored.ID, list[0].ID)
}

func TestContact_Invalid(t *testing.T) {
	_, srv := newTestServer(t, Options{})

	var body errorResponse
	resp := postJSON(t, srv.URL+"/api/contact", `{"name":"Ada"}`, &body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "email is required", body.Error)

	resp = postJSON(t, srv.URL+"/api/contact", `not json`, &body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body.Error, "invalid JSON body")
}

func TestContact_StoreFailure(t *testing.T) {
	store, err := contact.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Close())
	_, srv := newTestServer(t, Options{Store: store})

	var body errorResponse
	resp := postJSON(t, srv.URL+"/api/contact", `{"name":"Ada","email":"ada@example.com"}`, &body)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "submission could not be saved", body.Error)
}

func TestEvents(t *testing.T) {
	s, srv := newTestServer(t, Options{})

	var stored monitor.Event
	resp := postJSON(t, srv.URL+"/api/events", `{"type":"metric","metric_name":"cpu","value":12}`, &stored)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.NotEmpty(t, stored.ID())

	resp = postJSON(t, srv.URL+"/api/events?kind=attack", `{"type":"log","attack_type":"Eclipse"}`, &stored)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, "attack", stored.Type())

	var list eventsResponse
	getJSON(t, srv.URL+"/api/events", &list)
	require.Len(t, list.Events, 2)
	assert.Equal(t, "attack", list.Events[0].Type())
	assert.Equal(t, monitor.Stats{Total: 2, Attacks: 1, Metrics: 1}, list.Stats)
	assert.Equal(t, 2, s.Feed().Len())
}

func TestEvents_Invalid(t *testing.T) {
	_, srv := newTestServer(t, Options{})
	for _, tc := range []struct{ path, body string }{
		{"/api/events", `[1,2]`},
		{"/api/events", `null`},
		{"/api/events?kind=gossip", `{"type":"log"}`},
	} {
		resp := postJSON(t, srv.URL+tc.path, tc.body, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, tc)
	}
}

func TestMetrics(t *testing.T) {
	_, srv := newTestServer(t, Options{})
	postJSON(t, srv.URL+"/api/events", `{"type":"alert"}`, nil)
	postJSON(t, srv.URL+"/api/contact", `{"name":"Ada"}`, nil)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	text := string(body)
	assert.Contains(t, text, `nodeward_events_ingested_total{type="alert"} 1`)
	assert.Contains(t, text, `nodeward_contact_submissions_total{result="invalid"} 1`)
	assert.Contains(t, text, `nodeward_live_clients 0`)
	assert.Contains(t, text, `nodeward_api_requests_total{method="POST",route="/api/events"} 1`)
}

func TestMetrics_GathererFromRegisterer(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, srv := newTestServer(t, Options{Registerer: reg})

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "nodeward_live_clients 0")
}

type registerOnly struct{ prometheus.Registerer }

func TestNew_RegistererWithoutGatherer(t *testing.T) {
	store, err := contact.Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	_, err = New(Options{Store: store, Registerer: registerOnly{prometheus.NewRegistry()}})
	assert.True(t, errors.IsKind(err, errors.KindConfiguration), "got %v", err)
}

func TestCORS(t *testing.T) {
	_, srv := newTestServer(t, Options{})
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/content", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://nodeward.example")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestCORS_Restricted(t *testing.T) {
	_, srv := newTestServer(t, Options{Config: config.ServerConfig{AllowedOrigins: []string{"https://nodeward.example"}}})
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/content", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://evil.example")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

const reloadCatalog = `version: %s
sections:
  - id: only
    title: Only
    height: 400
`

func writeCatalog(t *testing.T, path, version string) {
	t.Helper()
	data := strings.Replace(reloadCatalog, "%s", version, 1)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
}

func TestReloadContent(t *testing.T) {
	s, _ := newTestServer(t, Options{})
	path := filepath.Join(t.TempDir(), "site.yaml")

	writeCatalog(t, path, "v1.3.0")
	require.NoError(t, s.ReloadContent(path))
	assert.Equal(t, "v1.3.0", s.Catalog().Version)

	writeCatalog(t, path, "v2.0.0")
	assert.Error(t, s.ReloadContent(path))
	assert.Equal(t, "v1.3.0", s.Catalog().Version, "a bad catalog must not replace the current one")
}

func TestRun_ServesAndShutsDown(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "site.yaml")
	writeCatalog(t, path, "v1.0.0")

	store, err := contact.Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	s, err := New(Options{
		Config:  config.ServerConfig{ShutdownTimeout: time.Second},
		Content: config.ContentConfig{Path: path, Watch: true},
		Store:   store,
	})
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, ln) }()

	tr := &http.Transport{}
	client := &http.Client{Transport: tr}
	resp, err := client.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	time.Sleep(100 * time.Millisecond)
	writeCatalog(t, path, "v1.1.0")
	assert.Eventually(t, func() bool { return s.Catalog().Version == "v1.1.0" }, 3*time.Second, 20*time.Millisecond)

	tr.CloseIdleConnections()
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
