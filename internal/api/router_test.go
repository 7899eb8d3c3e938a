package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/MikeSquared-Agency/Ftopsis/internal/broker"
	"github.com/MikeSquared-Agency/Ftopsis/internal/config"
	"github.com/MikeSquared-Agency/Ftopsis/internal/engine"
	"github.com/MikeSquared-Agency/Ftopsis/internal/metrics"
	"github.com/MikeSquared-Agency/Ftopsis/internal/report"
	"github.com/MikeSquared-Agency/Ftopsis/internal/store"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type testEnv struct {
	router http.Handler
	store  *store.MemoryStore
	broker *broker.Broker
}

func setupTestRouter(t *testing.T) *testEnv {
	t.Helper()
	cfg := config.Default()
	cfg.Server.AdminToken = "test-token"
	cfg.Server.RateLimit = 0

	s := store.NewMemoryStore()
	eng, err := engine.New(cfg.Engine, cfg.Report, nil, discardLogger)
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	b := broker.New(s, nil, eng, nil, cfg.Broker, discardLogger)

	return &testEnv{
		router: NewRouter(s, eng, b, cfg.Server, discardLogger),
		store:  s,
		broker: b,
	}
}

func fixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "input", "testdata", name))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return data
}

func post(router http.Handler, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRankEndpoint(t *testing.T) {
	env := setupTestRouter(t)

	w := post(env.router, "/api/v1/rank", fixture(t, "ranking.json"))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var doc report.RankingDocument
	if err := json.NewDecoder(w.Body).Decode(&doc); err != nil {
		t.Fatalf("failed to decode ranking: %v", err)
	}
	if doc.Results.BestAlternative != "A3" {
		t.Errorf("expected best alternative A3, got %s", doc.Results.BestAlternative)
	}
	if len(doc.Results.Ranking) != 3 {
		t.Errorf("expected 3 ranked alternatives, got %d", len(doc.Results.Ranking))
	}
	if doc.Results.Distances.Len() != 3 {
		t.Errorf("expected distances for 3 alternatives, got %d", doc.Results.Distances.Len())
	}
}

func TestClassifyEndpoint(t *testing.T) {
	env := setupTestRouter(t)

	w := post(env.router, "/api/v1/classify", fixture(t, "triangular.json"))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var doc report.ClassificationDocument
	if err := json.NewDecoder(w.Body).Decode(&doc); err != nil {
		t.Fatalf("failed to decode classification: %v", err)
	}
	if got := doc.Classification["S1"].Profile; got != "Preferred" {
		t.Errorf("expected S1 Preferred, got %s", got)
	}
	if len(doc.Closeness["S1"]) != 3 {
		t.Errorf("expected closeness to 3 profiles, got %d", len(doc.Closeness["S1"]))
	}
}

func TestEvaluateEndpoint_DetectsMode(t *testing.T) {
	env := setupTestRouter(t)

	w := post(env.router, "/api/v1/evaluate", fixture(t, "trapezoidal.json"))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var doc map[string]json.RawMessage
	if err := json.NewDecoder(w.Body).Decode(&doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := doc["classification"]; !ok {
		t.Errorf("expected a classification document, got keys %v", doc)
	}
}

func TestEvaluateEndpoint_BadMode(t *testing.T) {
	env := setupTestRouter(t)

	w := post(env.router, "/api/v1/evaluate?mode=sort", fixture(t, "ranking.json"))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestEvaluateEndpoint_Formats(t *testing.T) {
	env := setupTestRouter(t)

	w := post(env.router, "/api/v1/rank?format=table", fixture(t, "ranking.json"))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Best alternative: A3") {
		t.Errorf("table output missing best alternative:\n%s", w.Body.String())
	}

	w = post(env.router, "/api/v1/rank?format=xlsx", fixture(t, "ranking.json"))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("unexpected content type %q", ct)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("PK")) {
		t.Error("expected a zip container")
	}

	w = post(env.router, "/api/v1/rank?format=pdf", fixture(t, "ranking.json"))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown format, got %d", w.Code)
	}
}

func TestEvaluateEndpoint_Errors(t *testing.T) {
	env := setupTestRouter(t)

	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{"invalid json", "/api/v1/evaluate", `{"parameters":`, http.StatusBadRequest},
		{"unrecognised document", "/api/v1/evaluate", `{"hello":"world"}`, http.StatusUnprocessableEntity},
		{"classify without profiles", "/api/v1/classify", string(fixture(t, "ranking.json")), http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(env.router, tt.path, []byte(tt.body))
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
			var body map[string]string
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil || body["error"] == "" {
				t.Errorf("expected an error body, got %v (%v)", body, err)
			}
		})
	}
}

func TestEvaluateEndpoint_BodyTooLarge(t *testing.T) {
	cfg := config.Default()
	cfg.Server.MaxBodyKiB = 1
	cfg.Server.RateLimit = 0
	eng, err := engine.New(cfg.Engine, cfg.Report, nil, discardLogger)
	if err != nil {
		t.Fatal(err)
	}
	s := store.NewMemoryStore()
	router := NewRouter(s, eng, broker.New(s, nil, eng, nil, cfg.Broker, discardLogger), cfg.Server, discardLogger)

	body := append([]byte(`{"pad":"`), bytes.Repeat([]byte("x"), 2048)...)
	body = append(body, []byte(`"}`)...)

	w := post(router, "/api/v1/evaluate", body)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", w.Code)
	}
}

func TestDetectEndpoint(t *testing.T) {
	env := setupTestRouter(t)

	tests := []struct {
		fixture string
		kind    string
		mode    string
	}{
		{"ranking.json", "triangular", "rank"},
		{"trapezoidal.json", "trapezoidal", "classify"},
		{"triangular.json", "triangular", "classify"},
	}
	for _, tt := range tests {
		t.Run(tt.fixture, func(t *testing.T) {
			w := post(env.router, "/api/v1/detect", fixture(t, tt.fixture))
			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
			}
			var got map[string]string
			if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
				t.Fatal(err)
			}
			if got["kind"] != tt.kind || got["mode"] != tt.mode {
				t.Errorf("expected %s/%s, got %v", tt.kind, tt.mode, got)
			}
		})
	}
}

func TestMetricsRouter(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.SetPending(2)

	router := NewMetricsRouter(reg)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("health: expected 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("metrics: expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "ftopsis_runs_pending 2") {
		t.Errorf("expected pending gauge in output:\n%s", w.Body.String())
	}
}
