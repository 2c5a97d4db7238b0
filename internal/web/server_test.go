package web

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/JonMunkholm/trackexport/internal/config"
	"github.com/JonMunkholm/trackexport/internal/core"
	"github.com/JonMunkholm/trackexport/internal/fetch"
	"github.com/JonMunkholm/trackexport/internal/table"
)

type stubFetcher struct {
	results map[string]fetch.Result
}

func (f *stubFetcher) Fetch(_ context.Context, identifier string) (fetch.Result, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return fetch.Result{}, fetch.ErrEmptyIdentifier
	}
	res, ok := f.results[identifier]
	if !ok {
		return fetch.Result{}, fmt.Errorf("%w: status 404", fetch.ErrUpstream)
	}
	return res, nil
}

type stubHistory struct {
	mu    sync.Mutex
	snaps []core.Snapshot
}

func (h *stubHistory) Save(_ context.Context, s core.Snapshot) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.snaps = append(h.snaps, s)
	return nil
}

func (h *stubHistory) List(_ context.Context, _ int) ([]core.Snapshot, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]core.Snapshot(nil), h.snaps...), nil
}

func (h *stubHistory) Get(_ context.Context, id string) (core.Snapshot, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, s := range h.snaps {
		if s.ID == id {
			return s, nil
		}
	}
	return core.Snapshot{}, core.ErrSnapshotNotFound
}

func (h *stubHistory) Purge(context.Context, time.Time) (int64, error) { return 0, nil }

func rawTracks(n int) string {
	var b strings.Builder
	b.WriteString("Track,Album,Plays\n")
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "Song %02d,Album %d,%d\n", i, i%4, i*10)
	}
	return b.String()
}

const artistURL = "https://open.spotify.com/artist/abc"

type testEnv struct {
	server *httptest.Server
	client *http.Client
}

func newTestEnv(t *testing.T, history core.HistoryStore, mutate func(*config.Config)) *testEnv {
	t.Helper()

	cfg := config.Defaults()
	if mutate != nil {
		mutate(cfg)
	}

	fetcher := &stubFetcher{results: map[string]fetch.Result{
		artistURL: {Identifier: artistURL, Label: "The Band", Content: rawTracks(25)},
		"ragged":  {Identifier: "ragged", Label: "Broken", Content: "a,b\n1\n"},
	}}
	svc := core.NewService(fetcher, history, cfg)
	srv := NewServer(svc, cfg)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(func() {
		ts.Close()
		srv.Shutdown(context.Background())
	})

	return &testEnv{server: ts, client: newClient(t)}
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return &http.Client{Jar: jar}
}

func (e *testEnv) do(t *testing.T, method, path string, body io.Reader, contentType string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(method, e.server.URL+path, body)
	if err != nil {
		t.Fatal(err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := e.client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, string(data)
}

func (e *testEnv) postForm(t *testing.T, path string, form url.Values) (*http.Response, string) {
	return e.do(t, http.MethodPost, path, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
}

func (e *testEnv) postJSON(t *testing.T, path, body string) (*http.Response, string) {
	return e.do(t, http.MethodPost, path, strings.NewReader(body), "application/json")
}

func decodeError(t *testing.T, body string) ErrorResponse {
	t.Helper()
	var er ErrorResponse
	if err := json.Unmarshal([]byte(body), &er); err != nil {
		t.Fatalf("error body is not JSON: %v: %s", err, body)
	}
	return er
}

func TestIndex_EmptySession(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	resp, body := env.do(t, http.MethodGet, "/", nil, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if !strings.Contains(body, "No table loaded") {
		t.Error("empty session should show the empty state")
	}

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "trackexport_session" {
			cookie = c
		}
	}
	if cookie == nil {
		u, _ := url.Parse(env.server.URL)
		if len(env.client.Jar.Cookies(u)) == 0 {
			t.Fatal("session cookie not set")
		}
	}

	for header, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
	} {
		if got := resp.Header.Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
	if resp.Header.Get("Content-Security-Policy") == "" {
		t.Error("CSP header missing with SECURITY_ENABLE_CSP default")
	}
}

func TestPageFlow_FetchSortPageExport(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	resp, body := env.postForm(t, "/fetch", url.Values{"artistUrl": {artistURL}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("fetch status = %d: %s", resp.StatusCode, body)
	}
	if !strings.Contains(body, "Page 1 of 3") || !strings.Contains(body, "Song 01") {
		t.Error("page after fetch should show page 1 of 3")
	}

	_, body = env.do(t, http.MethodGet, "/?page=7", nil, "")
	if !strings.Contains(body, "Page 3 of 3") || !strings.Contains(body, "Song 25") {
		t.Error("out-of-range page should clamp to the last page")
	}

	// descending on Track puts Song 25 first; the page is kept at 3
	env.postForm(t, "/sort/0", nil)
	_, body = env.postForm(t, "/sort/0", nil)
	if !strings.Contains(body, "Track ▼") {
		t.Error("second sort on the same column should show the descending marker")
	}
	_, body = env.do(t, http.MethodGet, "/?page=1", nil, "")
	if !strings.Contains(body, "Song 25") || strings.Contains(body, "Song 01") {
		t.Error("descending page 1 should start at Song 25")
	}

	resp, body = env.do(t, http.MethodGet, "/export/csv?name="+url.QueryEscape("my tracks"), nil, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export status = %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Disposition"); got != `attachment; filename="my tracks.csv"` {
		t.Errorf("Content-Disposition = %q", got)
	}
	if got := resp.Header.Get("Content-Type"); !strings.HasPrefix(got, "text/csv") {
		t.Errorf("Content-Type = %q, want text/csv", got)
	}
	lines := strings.Split(strings.TrimRight(body, "\n"), "\n")
	if len(lines) != 26 || lines[0] != "Track,Album,Plays" || !strings.HasPrefix(lines[1], "Song 25,") {
		t.Errorf("export should hold header plus all 25 rows in sorted order, got %d lines starting %q", len(lines), lines[0])
	}

	resp, _ = env.do(t, http.MethodGet, "/export/xlsx", nil, "")
	if got := resp.Header.Get("Content-Disposition"); got != `attachment; filename="The Band.xlsx"` {
		t.Errorf("blank name should fall back to the label, got %q", got)
	}
	if got := resp.Header.Get("Content-Type"); got != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("xlsx Content-Type = %q", got)
	}
}

func TestPageFlow_Errors(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	resp, body := env.postForm(t, "/fetch", url.Values{"artistUrl": {"  "}})
	if resp.StatusCode != http.StatusBadRequest || !strings.Contains(body, "FETCH001") {
		t.Errorf("empty link: status %d, body should carry FETCH001", resp.StatusCode)
	}

	resp, body = env.postForm(t, "/fetch", url.Values{"artistUrl": {"ragged"}})
	if resp.StatusCode != http.StatusUnprocessableEntity || !strings.Contains(body, "PARSE001") {
		t.Errorf("ragged table: status %d, body should carry PARSE001", resp.StatusCode)
	}
	if !strings.Contains(body, "No table loaded") {
		t.Error("failed fetch must not install a table")
	}

	resp, body = env.do(t, http.MethodGet, "/export/csv", nil, "")
	if resp.StatusCode != http.StatusConflict || !strings.Contains(body, "TBL001") {
		t.Errorf("export without table: status %d", resp.StatusCode)
	}
}

func TestAPI_TablePageClamp(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	if resp, body := env.postJSON(t, "/api/fetch", `{"artistUrl":"`+artistURL+`"}`); resp.StatusCode != http.StatusOK {
		t.Fatalf("fetch status = %d: %s", resp.StatusCode, body)
	}

	steps := []struct {
		query string
		want  int
	}{
		{"?page=3", 3},
		{"?page=0", 1},
		{"?page=3", 3},
		{"?page=-2", 1},
		{"?page=99", 3},
		{"", 3},
		{"?page=abc", 3},
	}
	for _, st := range steps {
		_, body := env.do(t, http.MethodGet, "/api/table"+st.query, nil, "")
		var view core.View
		if err := json.Unmarshal([]byte(body), &view); err != nil {
			t.Fatalf("GET /api/table%s decode: %v", st.query, err)
		}
		if view.Page.Number != st.want {
			t.Errorf("GET /api/table%s page = %d, want %d", st.query, view.Page.Number, st.want)
		}
	}
}

func TestAPI_FetchTableSort(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	resp, body := env.postJSON(t, "/api/fetch", `{"artistUrl":"`+artistURL+`"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("fetch status = %d: %s", resp.StatusCode, body)
	}
	var fr struct {
		Result core.FetchResult `json:"result"`
		View   core.View        `json:"view"`
	}
	if err := json.Unmarshal([]byte(body), &fr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if fr.Result.Rows != 25 || !fr.View.Loaded || fr.View.Page.TotalPages != 3 {
		t.Errorf("fetch response = %+v", fr)
	}

	_, body = env.do(t, http.MethodGet, "/api/table?page=2", nil, "")
	var view core.View
	if err := json.Unmarshal([]byte(body), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.Page.Number != 2 || view.Page.FirstRow != 11 || len(view.Page.Rows) != 10 {
		t.Errorf("page 2 = %+v", view.Page)
	}

	_, body = env.postJSON(t, "/api/sort/2", "")
	if err := json.Unmarshal([]byte(body), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !view.Sort.Active || view.Sort.Column != 2 || !view.Sort.Ascending {
		t.Errorf("sort state = %+v", view.Sort)
	}

	tests := []struct {
		method, path string
		wantStatus   int
		wantCode     string
	}{
		{http.MethodPost, "/api/sort/9", http.StatusBadRequest, "SORT001"},
		{http.MethodPost, "/api/sort/x", http.StatusBadRequest, "SORT001"},
		{http.MethodGet, "/api/export/pdf", http.StatusBadRequest, "EXP002"},
		{http.MethodGet, "/api/history", http.StatusNotFound, "HIST001"},
	}
	for _, tt := range tests {
		resp, body := env.do(t, tt.method, tt.path, nil, "")
		if resp.StatusCode != tt.wantStatus {
			t.Errorf("%s %s status = %d, want %d", tt.method, tt.path, resp.StatusCode, tt.wantStatus)
		}
		if er := decodeError(t, body); er.Code != tt.wantCode {
			t.Errorf("%s %s code = %q, want %q", tt.method, tt.path, er.Code, tt.wantCode)
		}
	}

	resp, _ = env.postJSON(t, "/api/fetch", `{"artistUrl":`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("malformed JSON status = %d, want 400", resp.StatusCode)
	}
}

func TestAPI_SessionsAreIsolated(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	env.postJSON(t, "/api/fetch", `{"artistUrl":"`+artistURL+`"}`)

	other := &testEnv{server: env.server, client: newClient(t)}
	_, body := other.do(t, http.MethodGet, "/api/table", nil, "")

	var view core.View
	if err := json.Unmarshal([]byte(body), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.Loaded {
		t.Error("a new browser session must not see another session's table")
	}

	resp, body := other.do(t, http.MethodGet, "/api/export/csv", nil, "")
	if resp.StatusCode != http.StatusConflict || decodeError(t, body).Code != "TBL001" {
		t.Errorf("export from empty session: status %d body %s", resp.StatusCode, body)
	}
}

func TestAPI_HistoryAndStatus(t *testing.T) {
	history := &stubHistory{}
	env := newTestEnv(t, history, nil)

	env.postJSON(t, "/api/fetch", `{"identifier":"`+artistURL+`"}`)

	_, body := env.do(t, http.MethodGet, "/api/history", nil, "")
	var hr struct {
		Snapshots []core.Snapshot `json:"snapshots"`
	}
	if err := json.Unmarshal([]byte(body), &hr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(hr.Snapshots) != 1 || hr.Snapshots[0].SourceLabel != "The Band" || hr.Snapshots[0].RowCount != 25 {
		t.Fatalf("history = %+v", hr.Snapshots)
	}

	other := &testEnv{server: env.server, client: newClient(t)}
	resp, body := other.postJSON(t, "/api/history/"+hr.Snapshots[0].ID+"/load", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("load status = %d: %s", resp.StatusCode, body)
	}
	_, body = other.do(t, http.MethodGet, "/api/table", nil, "")
	var view core.View
	json.Unmarshal([]byte(body), &view)
	if !view.Loaded || view.Label != "The Band" {
		t.Errorf("loaded view = %+v", view)
	}

	resp, body = other.postJSON(t, "/api/history/00000000-0000-0000-0000-000000000000/load", "")
	if resp.StatusCode != http.StatusNotFound || decodeError(t, body).Code != "HIST002" {
		t.Errorf("unknown snapshot: status %d body %s", resp.StatusCode, body)
	}

	_, body = env.do(t, http.MethodGet, "/history", nil, "")
	if !strings.Contains(body, "The Band") {
		t.Error("history page should list the fetch")
	}

	_, body = env.do(t, http.MethodGet, "/api/status", nil, "")
	var status core.Status
	if err := json.Unmarshal([]byte(body), &status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !status.HistoryEnabled || status.Sessions < 2 || status.Fetches.Limit == 0 {
		t.Errorf("status = %+v", status)
	}
}

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t, nil, func(c *config.Config) {
		c.Rate.RequestsPerMinute = 2
	})

	for i := 0; i < 2; i++ {
		if resp, _ := env.do(t, http.MethodGet, "/api/status", nil, ""); resp.StatusCode != http.StatusOK {
			t.Fatalf("request %d status = %d", i, resp.StatusCode)
		}
	}

	resp, body := env.do(t, http.MethodGet, "/api/status", nil, "")
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", resp.StatusCode)
	}
	if resp.Header.Get("Retry-After") == "" {
		t.Error("Retry-After missing")
	}
	if decodeError(t, body).Code != "RATE001" {
		t.Errorf("body = %s, want RATE001", body)
	}
}

func TestRateLimitDisabled(t *testing.T) {
	env := newTestEnv(t, nil, func(c *config.Config) {
		c.Rate.Enabled = false
		c.Rate.RequestsPerMinute = 1
		c.Security.EnableCSP = false
	})

	for i := 0; i < 3; i++ {
		resp, _ := env.do(t, http.MethodGet, "/api/status", nil, "")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("request %d status = %d with rate limiting disabled", i, resp.StatusCode)
		}
		if resp.Header.Get("Content-Security-Policy") != "" {
			t.Error("CSP header set with SECURITY_ENABLE_CSP=false")
		}
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{table.ErrIndexOutOfRange, http.StatusBadRequest},
		{fmt.Errorf("x: %w", table.ErrMalformedInput), http.StatusUnprocessableEntity},
		{table.ErrNoTable, http.StatusConflict},
		{core.ErrFetchInProgress, http.StatusConflict},
		{core.ErrTooManyFetches, http.StatusServiceUnavailable},
		{fmt.Errorf("%w: status 500", fetch.ErrUpstream), http.StatusBadGateway},
		{fmt.Errorf("fetch: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{core.ErrHistoryDisabled, http.StatusNotFound},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestContentDisposition(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"tracks.csv", `attachment; filename=tracks.csv`},
		{"my tracks.csv", `attachment; filename="my tracks.csv"`},
		{".csv", `attachment; filename=spotify_tracks.csv`},
		{"  .parquet", `attachment; filename=spotify_tracks.parquet`},
		{"", `attachment; filename=spotify_tracks`},
	}

	for _, tt := range tests {
		if got := contentDisposition(tt.filename); got != tt.want {
			t.Errorf("contentDisposition(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}
