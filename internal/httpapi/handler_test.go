package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jonboulle/clockwork"

	"github.com/xtding233/gacha-curve/internal/calculator"
	"github.com/xtding233/gacha-curve/internal/catalog"
	"github.com/xtding233/gacha-curve/internal/gacha"
)

func newTestServer(t *testing.T, origins ...string) *httptest.Server {
	t.Helper()
	clock := clockwork.NewFakeClock()
	svc, err := calculator.New(catalog.NewLoader(t.TempDir()), calculator.Options{
		CacheSize:     8,
		MaxPullsLimit: 500,
		Clock:         clock,
	})
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(NewHandler(svc, Options{AllowedOrigins: origins, Clock: clock}))
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, srv *httptest.Server, path, contentType, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+path, contentType, strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func get(t *testing.T, srv *httptest.Server, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func wantError(t *testing.T, resp *http.Response, status int, kind gacha.ErrorKind) {
	t.Helper()
	if resp.StatusCode != status {
		t.Fatalf("status = %d, want %d", resp.StatusCode, status)
	}
	var body errorBody
	decodeBody(t, resp, &body)
	if body.Error.Kind != kind {
		t.Fatalf("kind = %s, want %s (%s)", body.Error.Kind, kind, body.Error.Message)
	}
}

const coinBody = `{
  "items": [{"label": "A", "probability": "10%%", "count": 1}, {"label": "B", "probability": "90%%", "count": 1}],
  "policy": {"soft_labels": [], "hard_labels": []},
  "targets": [{"label": "A", "count": %d}],
  "max_pulls": %d,
  "sample_step": 1
}`

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	resp := get(t, srv, "/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestCurve(t *testing.T) {
	srv := newTestServer(t)
	resp := post(t, srv, "/curve", "application/json", fmt.Sprintf(coinBody, 1, 3))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body calculator.CurveResponse
	decodeBody(t, resp, &body)
	if len(body.Curve) != 3 || body.Curve[0].PullCount != 1 {
		t.Fatalf("curve = %+v", body.Curve)
	}
	if p := body.Curve[0].Probabilities[0]; p < 0.0999 || p > 0.1001 {
		t.Fatalf("P(pull 1) = %v, want 0.1", p)
	}
}

func TestCurveErrors(t *testing.T) {
	srv := newTestServer(t)
	tests := []struct {
		name   string
		body   string
		status int
		kind   gacha.ErrorKind
	}{
		{"malformed", `{"items": [`, http.StatusBadRequest, KindInvalidRequest},
		{"unknown field", `{"itemz": []}`, http.StatusBadRequest, KindInvalidRequest},
		{"too many copies", fmt.Sprintf(coinBody, 2, 3), http.StatusBadRequest, gacha.KindInvalidTarget},
		{"over limit", fmt.Sprintf(coinBody, 1, 501), http.StatusBadRequest, gacha.KindInvalidSettings},
		{"no data", `{"targets": [{"label": "A", "count": 1}]}`, http.StatusBadRequest, gacha.KindNoData},
		{"unknown game", `{"game": "nope"}`, http.StatusNotFound, calculator.KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wantError(t, post(t, srv, "/curve", "application/json", tt.body), tt.status, tt.kind)
		})
	}
}

func TestBatch(t *testing.T) {
	srv := newTestServer(t)
	body := fmt.Sprintf(`{"requests": [%s, %s]}`, fmt.Sprintf(coinBody, 1, 2), fmt.Sprintf(coinBody, 5, 2))
	resp := post(t, srv, "/curve/batch", "application/json", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var out batchResponse
	decodeBody(t, resp, &out)
	if len(out.Results) != 2 || out.Results[0].Curve == nil || out.Results[1].Error == nil {
		t.Fatalf("results = %+v", out.Results)
	}
}

func TestPlan(t *testing.T) {
	srv := newTestServer(t)
	body := `{
  "items": [{"label": "A", "probability": "10%", "count": 1}, {"label": "B", "probability": "90%", "count": 1}],
  "policy": {"soft_labels": [], "hard_labels": []},
  "targets": [{"label": "A", "count": 1}],
  "max_pulls": 20,
  "probability": 0.5,
  "tokens": {"name": "gems", "per_draw": 100},
  "store": {"currency": "USD", "packs": [{"id": "p", "name": "P", "tokens": 100, "price_cents": 100}]}
}`
	resp := post(t, srv, "/plan", "application/json", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var out calculator.PlanResponse
	decodeBody(t, resp, &out)
	if out.Goal == nil || out.Goal.Pulls != 7 || out.Goal.Purchase == nil || out.Goal.Purchase.TotalCents != 700 {
		t.Fatalf("goal = %+v", out.Goal)
	}
}

func TestPresetsAndCSV(t *testing.T) {
	srv := newTestServer(t)

	resp := get(t, srv, "/games/builtin/presets")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var presets struct {
		Presets []catalog.Preset `json:"presets"`
	}
	decodeBody(t, resp, &presets)
	if len(presets.Presets) != 2 {
		t.Fatalf("presets = %+v", presets.Presets)
	}

	wantError(t, get(t, srv, "/games/nope/presets"), http.StatusNotFound, calculator.KindNotFound)

	resp = get(t, srv, "/games/builtin/items.csv?preset=normal_pickup")
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("content type = %q", ct)
	}
	items, err := catalog.ParseCSV(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != len(catalog.Builtin().Items) {
		t.Fatalf("got %d items", len(items))
	}

	resp = post(t, srv, "/csv", "text/csv", "label,probability,count\nA,1%,2\n")
	var parsed struct {
		Items []gacha.ItemGroup `json:"items"`
	}
	decodeBody(t, resp, &parsed)
	if len(parsed.Items) != 1 || parsed.Items[0] != (gacha.ItemGroup{Label: "A", Probability: "1%", Count: 2}) {
		t.Fatalf("items = %+v", parsed.Items)
	}
}

func TestCORS(t *testing.T) {
	srv := newTestServer(t, "https://example.com")
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	req.Header.Set("Origin", "https://example.com")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "https://example.com" {
		t.Fatalf("allow origin = %q", got)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&gacha.Error{Kind: gacha.KindNoData}, http.StatusBadRequest},
		{&gacha.Error{Kind: gacha.KindComputation}, http.StatusInternalServerError},
		{fmt.Errorf("x: %w", catalog.ErrUnknownPreset), http.StatusNotFound},
		{context.Canceled, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.err); got != tt.want {
			t.Errorf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
