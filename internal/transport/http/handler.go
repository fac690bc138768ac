// Package httptransport implements the read-only admin HTTP surface:
// liveness, per-customer status and pipeline statistics.
package httptransport

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/iliamunaev/virtual-cafe/internal/cafe"
	"github.com/iliamunaev/virtual-cafe/internal/model"
)

type cafeView interface {
	OrderStatus(customer string) (string, error)
	Inspect(customer string) cafe.Snapshot
	Stats() cafe.Stats
}

// Handler serves admin requests.
type Handler struct {
	cafe cafeView
}

// New returns a Handler reading from c.
//
// It panics if c is nil.
func New(c cafeView) *Handler {
	if c == nil {
		panic("httptransport.New: nil cafe")
	}
	return &Handler{cafe: c}
}

// Routes returns a mux with every admin endpoint registered.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.HandleHealth)
	mux.HandleFunc("GET /status", h.HandleStatus)
	mux.HandleFunc("GET /stats", h.HandleStats)
	return mux
}

func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// StatusResponse is the JSON form of one customer's order status.
type StatusResponse struct {
	Status   string         `json:"status"`
	Customer string         `json:"customer"`
	Text     string         `json:"text"`
	Waiting  map[string]int `json:"waiting"`
	Brewing  map[string]int `json:"brewing"`
	Tray     map[string]int `json:"tray"`
}

// HandleStatus reports the published status of ?customer=NAME.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	customer := strings.TrimSpace(r.URL.Query().Get("customer"))
	if customer == "" {
		writeBadRequest(w, "customer is required")
		return
	}

	text, err := h.cafe.OrderStatus(customer)
	if err != nil {
		writeError(w, err)
		return
	}

	snap := h.cafe.Inspect(customer)
	writeJSON(w, http.StatusOK, StatusResponse{
		Status:   "ok",
		Customer: customer,
		Text:     text,
		Waiting:  byKind(snap.Waiting),
		Brewing:  byKind(snap.Brewing),
		Tray:     byKind(snap.Tray),
	})
}

// HandleStats reports pool occupancy and queue depths.
func (h *Handler) HandleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.cafe.Stats())
}

func byKind(c model.Counts) map[string]int {
	m := make(map[string]int, len(model.Kinds))
	for _, k := range model.Kinds {
		m[k.String()] = c[k]
	}
	return m
}

// writeJSON writes v as a JSON response with the given status code.
// The Content-Type is set to application/json.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
