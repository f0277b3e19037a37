package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"assetfeed/internal/aggregate"
	"assetfeed/internal/refresh"
)

// Source is the refresh state the API exposes.
type Source interface {
	Latest() (refresh.Snapshot, bool)
	Running() bool
	Trigger() bool
}

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status     string     `json:"status"`
	Refreshing bool       `json:"refreshing"`
	LastCycle  *time.Time `json:"lastCycle,omitempty"`
}

// NewRouter mounts the HTTP API. stream, when not nil, is served on /ws
// outside the JSON and gzip middleware.
func NewRouter(src Source, stream http.Handler, log *logrus.Entry) http.Handler {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	h := &handlers{src: src}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(log))
	r.Use(recoverPanic(log))
	r.Use(withCORS)

	r.Group(func(r chi.Router) {
		r.Use(withJSONHeaders, withGzip, limitBody)
		r.Get("/healthz", h.health)
		r.Route("/api", func(r chi.Router) {
			r.Get("/assets", h.assets)
			r.Get("/assets/{symbol}", h.asset)
			r.Post("/refresh", h.refresh)
		})
	})
	if stream != nil {
		r.Method(http.MethodGet, "/ws", stream)
	}
	return r
}

type handlers struct {
	src Source
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Refreshing: h.src.Running()}
	if snap, ok := h.src.Latest(); ok {
		resp.LastCycle = &snap.FinishedAt
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) assets(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.src.Latest()
	if !ok {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "no refresh cycle has completed yet"})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *handlers) asset(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.src.Latest()
	if !ok {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "no refresh cycle has completed yet"})
		return
	}
	symbol := aggregate.NormalizeTicker(chi.URLParam(r, "symbol"))
	a, ok := aggregate.BySymbol(snap.Assets)[symbol]
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown symbol " + symbol})
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *handlers) refresh(w http.ResponseWriter, r *http.Request) {
	if !h.src.Trigger() {
		writeJSON(w, http.StatusConflict, errorResponse{Error: "refresh already in progress"})
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
