// Package httpapi exposes the calculator over JSON/HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"
	"github.com/rs/cors"

	"github.com/xtding233/gacha-curve/internal/calculator"
	"github.com/xtding233/gacha-curve/internal/catalog"
	"github.com/xtding233/gacha-curve/internal/gacha"
)

// maxBody bounds request bodies, CSV uploads included.
const maxBody = 1 << 20

// KindInvalidRequest reports a body that is not valid JSON for the endpoint.
const KindInvalidRequest gacha.ErrorKind = "invalid-request"

// Options configure the handler chain.
type Options struct {
	// AllowedOrigins enables CORS for these origins; empty disables CORS.
	AllowedOrigins []string
	Clock          clockwork.Clock
}

type handler struct {
	svc *calculator.Service
}

// NewHandler builds the router: access log -> CORS -> routes.
func NewHandler(svc *calculator.Service, opts Options) http.Handler {
	h := &handler{svc: svc}

	r := chi.NewRouter()
	r.Get("/healthz", h.health)
	r.Route("/games/{game}", func(rr chi.Router) {
		rr.Get("/presets", h.presets)
		rr.Get("/items.csv", h.itemsCSV)
	})
	r.Post("/csv", h.parseCSV)
	r.Post("/curve", h.curve)
	r.Post("/curve/batch", h.batch)
	r.Post("/plan", h.plan)

	var next http.Handler = r
	if len(opts.AllowedOrigins) > 0 {
		next = cors.New(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         60 * 15,
		}).Handler(next)
	}
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &requestLogger{next: next, clock: clock}
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) presets(w http.ResponseWriter, r *http.Request) {
	presets, err := h.svc.Presets(chi.URLParam(r, "game"), r.URL.Query().Get("banner"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"presets": presets})
}

func (h *handler) itemsCSV(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := h.svc.Items(chi.URLParam(r, "game"), q.Get("banner"), q.Get("preset"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	if err := catalog.WriteCSV(w, items); err != nil {
		log.Printf("[http] write csv: %v", err)
	}
}

func (h *handler) parseCSV(w http.ResponseWriter, r *http.Request) {
	items, err := catalog.ParseCSV(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		writeInfo(w, http.StatusBadRequest, gacha.ErrorInfo{Kind: KindInvalidRequest, Message: err.Error()})
		return
	}
	if items == nil {
		items = []gacha.ItemGroup{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *handler) curve(w http.ResponseWriter, r *http.Request) {
	var req calculator.Request
	if !decode(w, r, &req) {
		return
	}
	resp, err := h.svc.Curve(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type batchRequest struct {
	Requests []calculator.Request `json:"requests"`
}

type batchResponse struct {
	Results []calculator.BatchResult `json:"results"`
}

func (h *handler) batch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if !decode(w, r, &req) {
		return
	}
	results, err := h.svc.Batch(r.Context(), req.Requests)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, batchResponse{Results: results})
}

func (h *handler) plan(w http.ResponseWriter, r *http.Request) {
	var req calculator.PlanRequest
	if !decode(w, r, &req) {
		return
	}
	resp, err := h.svc.Plan(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// decode reads a JSON body into v, answering 400 itself on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeInfo(w, http.StatusBadRequest, gacha.ErrorInfo{
			Kind:    KindInvalidRequest,
			Message: fmt.Sprintf("decode request: %v", err),
		})
		return false
	}
	return true
}

// StatusFor maps a calculator error to an HTTP status.
func StatusFor(err error) int {
	switch {
	case calculator.NotFound(err):
		return http.StatusNotFound
	case errors.Is(err, gacha.ErrConfiguration):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

type errorBody struct {
	Error gacha.ErrorInfo `json:"error"`
}

func writeError(w http.ResponseWriter, err error) {
	writeInfo(w, StatusFor(err), calculator.Describe(err))
}

func writeInfo(w http.ResponseWriter, status int, info gacha.ErrorInfo) {
	writeJSON(w, status, errorBody{Error: info})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[http] encode response: %v", err)
	}
}
