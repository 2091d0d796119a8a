package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/Jayprox/ai-agent-nba/narrative"
)

// Handler serves the narrative endpoints.
type Handler struct {
	orch *narrative.Orchestrator
}

// NewHandler wires the HTTP surface.
func NewHandler(orch *narrative.Orchestrator) *Handler {
	return &Handler{orch: orch}
}

// RegisterHandlers registers the narrative endpoints on the given mux.
func RegisterHandlers(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("/nba/narrative/today", h.Today)
	mux.HandleFunc("/nba/narrative/markdown", h.Markdown)
}

// Today handles GET /nba/narrative/today.
func (h *Handler) Today(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	env := h.orch.Today(r.Context(), parseRequest(r))
	writeJSON(w, env)
}

// Markdown handles GET /nba/narrative/markdown.
func (h *Handler) Markdown(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	env := h.orch.Markdown(r.Context(), parseRequest(r))
	writeJSON(w, env)
}

// parseRequest reads the shared query parameters. Every parameter is
// optional and malformed values fall back to defaults; query problems
// never fail the request.
func parseRequest(r *http.Request) narrative.Request {
	q := r.URL.Query()

	req := narrative.Request{
		Mode:   q.Get("mode"),
		Format: q.Get("format"),
	}

	if raw := q.Get("cache_ttl"); raw != "" {
		if ttl, err := strconv.Atoi(raw); err == nil {
			req.CacheTTL = ttl
		}
	}

	// trends is tri-state: absent means server default, "0" disables,
	// anything else enables.
	if raw := q.Get("trends"); raw != "" {
		enabled := strings.TrimSpace(raw) != "0"
		req.Trends = &enabled
	}

	if raw := q.Get("compact"); raw != "" {
		req.Compact = strings.TrimSpace(raw) == "1" || strings.EqualFold(raw, "true")
	}

	return req
}

func allowGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}
