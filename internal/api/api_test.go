package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bret/internal/session"
	"bret/internal/store"
)

type fixedSource struct{ f float64 }

func (s fixedSource) Float64() float64 { return s.f }

// newTestServer pins the bomb to box 5 of a 10-box trial.
func newTestServer(t *testing.T) *Server {
	t.Helper()
	db, err := store.NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return NewServer(session.New(db, fixedSource{0.45}, nil), db)
}

func doJSON(t *testing.T, h http.Handler, method, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeTrial(t *testing.T, w *httptest.ResponseRecorder) TrialResponse {
	t.Helper()
	var resp TrialResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestServer(t).Routes()

	w := doJSON(t, h, "GET", "/health", "")
	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if got := w.Header().Get("X-Engine-Version"); got != EngineVersion {
		t.Errorf("expected engine version header %s, got %s", EngineVersion, got)
	}
}

func TestTrialFlow(t *testing.T) {
	h := newTestServer(t).Routes()

	w := doJSON(t, h, "POST", "/api/v1/trial/reset",
		`{"box_count": 10, "grid_columns": 5, "payoff_per_box": 10}`)
	if w.Code != http.StatusOK {
		t.Fatalf("reset: expected 200, got %d: %s", w.Code, w.Body)
	}
	resp := decodeTrial(t, w)
	if resp.Trial.BoxCount != 10 || resp.Trial.OpenedCount != 0 || resp.Trial.Revealed {
		t.Fatalf("unexpected fresh trial: %+v", resp.Trial)
	}

	for i := 1; i <= 4; i++ {
		w = doJSON(t, h, "POST", "/api/v1/trial/open", "")
		if w.Code != http.StatusOK {
			t.Fatalf("open %d: expected 200, got %d: %s", i, w.Code, w.Body)
		}
		resp = decodeTrial(t, w)
		if resp.Trial.OpenedCount != i {
			t.Fatalf("open %d: expected opened_count %d, got %d", i, i, resp.Trial.OpenedCount)
		}
	}

	// Pre-reveal snapshot must not leak the bomb.
	w = doJSON(t, h, "GET", "/api/v1/trial", "")
	if strings.Contains(w.Body.String(), "bomb_index") {
		t.Errorf("pre-reveal snapshot leaks bomb: %s", w.Body)
	}

	w = doJSON(t, h, "POST", "/api/v1/trial/stop", "")
	if w.Code != http.StatusOK {
		t.Fatalf("stop: expected 200, got %d: %s", w.Code, w.Body)
	}
	resp = decodeTrial(t, w)
	if !resp.Trial.Revealed || resp.Trial.Outcome != "safe" {
		t.Fatalf("expected safe reveal, got %+v", resp.Trial)
	}
	if resp.Trial.BombIndex == nil || *resp.Trial.BombIndex != 5 {
		t.Errorf("expected bomb index 5, got %v", resp.Trial.BombIndex)
	}
	if resp.Trial.Payoff == nil || resp.Trial.Payoff.String() != "40" {
		t.Errorf("expected payoff 40, got %v", resp.Trial.Payoff)
	}

	// Terminal state: further actions conflict.
	for _, path := range []string{"/api/v1/trial/open", "/api/v1/trial/stop"} {
		w = doJSON(t, h, "POST", path, "")
		if w.Code != http.StatusConflict {
			t.Errorf("%s after reveal: expected 409, got %d", path, w.Code)
		}
		if got := w.Header().Get("X-Error-Type"); got != ErrTypeInvalidTransition {
			t.Errorf("expected error type header %s, got %s", ErrTypeInvalidTransition, got)
		}
	}
}

func TestStopRejectedBeforeAnyOpen(t *testing.T) {
	h := newTestServer(t).Routes()

	w := doJSON(t, h, "POST", "/api/v1/trial/reset", `{"box_count": 10}`)
	if w.Code != http.StatusOK {
		t.Fatalf("reset failed: %d", w.Code)
	}

	w = doJSON(t, h, "POST", "/api/v1/trial/stop", "")
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}

	var taskErr TaskError
	if err := json.NewDecoder(w.Body).Decode(&taskErr); err != nil {
		t.Fatalf("failed to decode error: %v", err)
	}
	if taskErr.Type != ErrTypeInvalidTransition {
		t.Errorf("expected invalid_transition, got %s", taskErr.Type)
	}
	if taskErr.RequestID == "" {
		t.Error("expected request id in error")
	}
}

func TestResetRejectsInvalidConfig(t *testing.T) {
	h := newTestServer(t).Routes()

	cases := []string{
		`{"box_count": 5}`,
		`{"box_count": 500}`,
		`{"payoff_per_box": -1}`,
		`{"grid_columns": 50}`,
	}
	for _, body := range cases {
		w := doJSON(t, h, "POST", "/api/v1/trial/reset", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("reset %s: expected 400, got %d", body, w.Code)
		}
	}

	w := doJSON(t, h, "POST", "/api/v1/trial/reset", `{not json`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("malformed body: expected 400, got %d", w.Code)
	}
}

func TestResetDefaults(t *testing.T) {
	h := newTestServer(t).Routes()

	w := doJSON(t, h, "POST", "/api/v1/trial/reset", "")
	if w.Code != http.StatusOK {
		t.Fatalf("empty reset: expected 200, got %d: %s", w.Code, w.Body)
	}
	resp := decodeTrial(t, w)
	if resp.Trial.BoxCount != 100 || resp.Trial.GridColumns != 10 {
		t.Errorf("expected default config, got %+v", resp.Trial)
	}
}

func TestGridEndpoint(t *testing.T) {
	h := newTestServer(t).Routes()

	doJSON(t, h, "POST", "/api/v1/trial/reset", `{"box_count": 10, "grid_columns": 5}`)
	doJSON(t, h, "POST", "/api/v1/trial/open", "")
	doJSON(t, h, "POST", "/api/v1/trial/open", "")

	w := doJSON(t, h, "GET", "/api/v1/trial/grid", "")
	if w.Code != http.StatusOK {
		t.Fatalf("grid: expected 200, got %d", w.Code)
	}
	var grid GridResponse
	if err := json.NewDecoder(w.Body).Decode(&grid); err != nil {
		t.Fatalf("failed to decode grid: %v", err)
	}
	if len(grid.Cells) != 10 {
		t.Fatalf("expected 10 cells, got %d", len(grid.Cells))
	}
	for i, cell := range grid.Cells {
		want := "closed"
		if i < 2 {
			want = "opened"
		}
		if string(cell) != want {
			t.Errorf("cell %d: expected %s, got %s", i+1, want, cell)
		}
	}
}

func TestRecordEndpointSentinels(t *testing.T) {
	h := newTestServer(t).Routes()

	doJSON(t, h, "POST", "/api/v1/trial/reset", `{"box_count": 10}`)
	doJSON(t, h, "POST", "/api/v1/trial/open", "")

	w := doJSON(t, h, "GET", "/api/v1/trial/record", "")
	if w.Code != http.StatusOK {
		t.Fatalf("record: expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "(hidden until reveal)") {
		t.Errorf("expected hidden sentinels in pre-reveal record: %s", body)
	}

	doJSON(t, h, "POST", "/api/v1/trial/stop", "")
	w = doJSON(t, h, "GET", "/api/v1/trial/record", "")
	body = w.Body.String()
	if strings.Contains(body, "(hidden until reveal)") {
		t.Errorf("expected revealed record, got sentinels: %s", body)
	}
	if !strings.Contains(body, `"bomb_index":5`) {
		t.Errorf("expected bomb index in revealed record: %s", body)
	}
}

func TestSessionsEndpoints(t *testing.T) {
	h := newTestServer(t).Routes()

	// Two archived sessions: one revealed, one pending.
	doJSON(t, h, "POST", "/api/v1/trial/reset", `{"box_count": 10}`)
	doJSON(t, h, "POST", "/api/v1/trial/open", "")
	doJSON(t, h, "POST", "/api/v1/trial/stop", "")
	w := doJSON(t, h, "POST", "/api/v1/trial/reset", `{"box_count": 10}`)
	resp := decodeTrial(t, w)

	w = doJSON(t, h, "GET", "/api/v1/sessions/", "")
	if w.Code != http.StatusOK {
		t.Fatalf("sessions list: expected 200, got %d", w.Code)
	}
	var list SessionsResponse
	if err := json.NewDecoder(w.Body).Decode(&list); err != nil {
		t.Fatalf("failed to decode sessions: %v", err)
	}
	if list.TotalCount != 2 {
		t.Errorf("expected 2 sessions, got %d", list.TotalCount)
	}

	w = doJSON(t, h, "GET", "/api/v1/sessions/"+resp.Trial.SessionID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("session get: expected 200, got %d", w.Code)
	}

	w = doJSON(t, h, "GET", "/api/v1/sessions/nope", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("missing session: expected 404, got %d", w.Code)
	}

	w = doJSON(t, h, "GET", "/api/v1/sessions/export.csv", "")
	if w.Code != http.StatusOK {
		t.Fatalf("export: expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("expected text/csv, got %s", ct)
	}
	if !strings.HasPrefix(w.Body.String(), "session_id,") {
		t.Errorf("expected csv header, got %s", w.Body)
	}
}
