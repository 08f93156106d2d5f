package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"loadfinder/internal/config"
	"loadfinder/internal/logging"
	"loadfinder/internal/server"
	"loadfinder/internal/testsupport"
)

const testFeed = `[
  {"O-City": "Tulsa", "O-St": "OK", "D-City": "Dallas", "D-St": "TX",
   "O-DH": 12, "Rate": "$1,500", "Pickup": "2026-08-27", "Company": "Acme", "D2P": 10},
  {"O-City": "Enid", "O-St": "OK", "D-City": "Wichita", "D-St": "KS",
   "Rate": "900", "Pickup": "2026-08-28", "Company": "Plains"},
  {"O-St": "OK", "D-City": "Nowhere", "D-St": "KS",
   "Rate": "100", "Pickup": "2026-08-28", "Company": "Ghost"}
]`

func newTestServer(t *testing.T) (*server.Server, *config.Config) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	if err := os.WriteFile(cfg.Ingest.FeedPath, []byte(testFeed), 0o644); err != nil {
		t.Fatalf("write feed: %v", err)
	}
	st := testsupport.MustOpenStore(t, cfg)
	return server.New(cfg, st, logging.NewNop()), cfg
}

func doJSON(t *testing.T, srv *server.Server, method, path string, body any, out any) int {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if out != nil && rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("decode response from %s: %v (%s)", path, err, rec.Body.String())
		}
	}
	return rec.Code
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	var payload map[string]string
	if code := doJSON(t, srv, http.MethodGet, "/api/health", nil, &payload); code != http.StatusOK {
		t.Fatalf("health returned %d", code)
	}
	if payload["status"] != "ok" {
		t.Fatalf("health payload: %v", payload)
	}

	if code := doJSON(t, srv, http.MethodPost, "/api/health", nil, nil); code != http.StatusMethodNotAllowed {
		t.Fatalf("POST health returned %d", code)
	}
}

func TestIngestEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	var resp struct {
		RunID    string `json:"run_id"`
		Inserted int    `json:"inserted"`
		Skipped  int    `json:"skipped"`
	}
	if code := doJSON(t, srv, http.MethodPost, "/api/ingest", map[string]any{}, &resp); code != http.StatusOK {
		t.Fatalf("ingest returned %d", code)
	}
	if resp.Inserted != 2 || resp.Skipped != 1 {
		t.Fatalf("ingest counts: %+v", resp)
	}
	if resp.RunID == "" {
		t.Fatal("run id missing")
	}
}

func TestIngestMissingFeed(t *testing.T) {
	srv, _ := newTestServer(t)

	code := doJSON(t, srv, http.MethodPost, "/api/ingest",
		map[string]any{"feed_path": "/nonexistent/feed.json"}, nil)
	if code != http.StatusInternalServerError {
		t.Fatalf("missing feed returned %d", code)
	}
}

func TestPipelineEndToEnd(t *testing.T) {
	srv, _ := newTestServer(t)

	var resp struct {
		Ingest *struct {
			Inserted int `json:"inserted"`
		} `json:"ingest"`
		Shortlist *struct {
			Tag    string `json:"tag"`
			Marked int    `json:"marked"`
		} `json:"shortlist"`
		Score *struct {
			Scored int `json:"scored"`
		} `json:"score"`
	}
	body := map[string]any{
		"ingest": map[string]any{},
		"shortlist": map[string]any{
			"tag":  "ok-runs",
			"O-St": "ok",
		},
	}
	if code := doJSON(t, srv, http.MethodPost, "/api/pipeline", body, &resp); code != http.StatusOK {
		t.Fatalf("pipeline returned %d", code)
	}
	if resp.Ingest == nil || resp.Ingest.Inserted != 2 {
		t.Fatalf("pipeline ingest: %+v", resp.Ingest)
	}
	if resp.Shortlist == nil || resp.Shortlist.Marked != 2 {
		t.Fatalf("pipeline shortlist: %+v", resp.Shortlist)
	}
	if resp.Score == nil || resp.Score.Scored != 2 {
		t.Fatalf("pipeline score: %+v", resp.Score)
	}

	var queryResp struct {
		Count int `json:"count"`
		Loads []struct {
			LoadKey    string   `json:"load_key"`
			State      string   `json:"state"`
			MatchScore *float64 `json:"match_score"`
		} `json:"loads"`
	}
	if code := doJSON(t, srv, http.MethodPost, "/api/query",
		map[string]any{"tag": "ok-runs"}, &queryResp); code != http.StatusOK {
		t.Fatalf("query returned %d", code)
	}
	if queryResp.Count != 2 {
		t.Fatalf("query count: %d", queryResp.Count)
	}
	for _, load := range queryResp.Loads {
		if load.State != "SCORED" || load.MatchScore == nil {
			t.Fatalf("pipeline left unscored row: %+v", load)
		}
	}
	// Tulsa has a D2P; Enid is penalized for missing one. The page is
	// ordered by descending score.
	if *queryResp.Loads[0].MatchScore <= *queryResp.Loads[1].MatchScore {
		t.Fatalf("scores out of order: %v then %v",
			*queryResp.Loads[0].MatchScore, *queryResp.Loads[1].MatchScore)
	}
}

func TestStateEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	if code := doJSON(t, srv, http.MethodPost, "/api/ingest", map[string]any{}, nil); code != http.StatusOK {
		t.Fatalf("ingest returned %d", code)
	}

	var queryResp struct {
		Loads []struct {
			LoadKey string `json:"load_key"`
		} `json:"loads"`
	}
	if code := doJSON(t, srv, http.MethodPost, "/api/query", map[string]any{"limit": 1}, &queryResp); code != http.StatusOK {
		t.Fatalf("query returned %d", code)
	}
	key := queryResp.Loads[0].LoadKey

	// NEW -> APPLIED skips READY and SCORED.
	code := doJSON(t, srv, http.MethodPost, "/api/loads/state",
		map[string]any{"load_key": key, "state": "APPLIED"}, nil)
	if code != http.StatusConflict {
		t.Fatalf("illegal transition returned %d", code)
	}

	code = doJSON(t, srv, http.MethodPost, "/api/loads/state",
		map[string]any{"load_key": key, "state": "ready"}, nil)
	if code != http.StatusOK {
		t.Fatalf("legal transition returned %d", code)
	}

	code = doJSON(t, srv, http.MethodPost, "/api/loads/state",
		map[string]any{"load_key": key, "state": "SIDEWAYS"}, nil)
	if code != http.StatusBadRequest {
		t.Fatalf("unknown state returned %d", code)
	}

	code = doJSON(t, srv, http.MethodPost, "/api/loads/state",
		map[string]any{"load_key": "load:missing", "state": "READY"}, nil)
	if code != http.StatusNotFound {
		t.Fatalf("missing load returned %d", code)
	}
}

func TestStatsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	if code := doJSON(t, srv, http.MethodPost, "/api/ingest", map[string]any{}, nil); code != http.StatusOK {
		t.Fatalf("ingest returned %d", code)
	}

	var resp struct {
		Total  int            `json:"total"`
		States map[string]int `json:"states"`
		Runs   []struct {
			Mode string `json:"mode"`
		} `json:"recent_runs"`
	}
	if code := doJSON(t, srv, http.MethodGet, "/api/stats", nil, &resp); code != http.StatusOK {
		t.Fatalf("stats returned %d", code)
	}
	if resp.Total != 2 || resp.States["NEW"] != 2 {
		t.Fatalf("stats payload: %+v", resp)
	}
	if len(resp.Runs) != 1 || resp.Runs[0].Mode != "merge" {
		t.Fatalf("stats runs: %+v", resp.Runs)
	}
}

func TestScoreRequiresTag(t *testing.T) {
	srv, _ := newTestServer(t)

	if code := doJSON(t, srv, http.MethodPost, "/api/score", map[string]any{}, nil); code != http.StatusBadRequest {
		t.Fatalf("blank tag returned %d", code)
	}
}
