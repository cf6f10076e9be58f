// internal/adapters/http_server/handlers.go
package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"restroom_radar/internal/app"
	"restroom_radar/internal/domain"
	"restroom_radar/internal/geo"
)

// Searcher is the slice of app.SearchService the handlers need.
type Searcher interface {
	Search(ctx context.Context, q domain.Query) ([]domain.BuildingGroup, error)
	Unit() geo.Unit
}

type Handlers struct {
	S             Searcher
	Snapshots     app.SnapshotProvider
	DefaultRadius float64
}

type problem struct {
	Type   string              `json:"type"`
	Title  string              `json:"title"`
	Status int                 `json:"status"`
	Detail string              `json:"detail,omitempty"`
	Errors map[string][]string `json:"errors,omitempty"`
}

type searchRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Radius    *float64 `json:"radius"`
	Limit     int      `json:"limit"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/readyz", h.ready)
	s.mux.Post("/v1/search", h.searchJSON)
	s.mux.Get("/v1/restrooms/nearby", h.nearby)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string, fields map[string][]string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail, Errors: fields}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func (h *Handlers) ready(w http.ResponseWriter, r *http.Request) {
	snap := h.Snapshots.Snapshot()
	if snap == nil {
		writeProblem(w, http.StatusServiceUnavailable, "Not Ready", "restroom data not loaded yet", nil)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"records":   snap.Len(),
		"source":    snap.Source,
		"loaded_at": snap.LoadedAt,
	})
}

func (h *Handlers) searchJSON(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<16))
	if err := dec.Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "request body must be a JSON object", nil)
		return
	}

	var verr domain.ValidationError
	if req.Latitude == nil {
		verr.Add("latitude", "is required")
	}
	if req.Longitude == nil {
		verr.Add("longitude", "is required")
	}
	if !verr.Empty() {
		writeProblem(w, http.StatusBadRequest, "Invalid query", verr.Error(), verr.Fields)
		return
	}
	q := domain.Query{Latitude: *req.Latitude, Longitude: *req.Longitude, Radius: h.DefaultRadius, Limit: req.Limit}
	if req.Radius != nil {
		q.Radius = *req.Radius
	}
	h.respond(w, r, q)
}

func (h *Handlers) nearby(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	var verr domain.ValidationError
	parse := func(name string, required bool, def float64) float64 {
		s := params.Get(name)
		if s == "" {
			if required {
				verr.Add(name, "is required")
			}
			return def
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			verr.Add(name, "must be a number")
			return def
		}
		return f
	}

	q := domain.Query{
		Latitude:  parse("lat", true, 0),
		Longitude: parse("lon", true, 0),
		Radius:    parse("radius", false, h.DefaultRadius),
	}
	if ls := params.Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil {
			verr.Add("limit", "must be an integer")
		}
		q.Limit = l
	}
	if !verr.Empty() {
		writeProblem(w, http.StatusBadRequest, "Invalid query", verr.Error(), verr.Fields)
		return
	}
	h.respond(w, r, q)
}

func (h *Handlers) respond(w http.ResponseWriter, r *http.Request, q domain.Query) {
	groups, err := h.S.Search(r.Context(), q)
	if err != nil {
		var verr *domain.ValidationError
		switch {
		case errors.As(err, &verr):
			writeProblem(w, http.StatusBadRequest, "Invalid query", verr.Error(), verr.Fields)
		case errors.Is(err, domain.ErrDataUnavailable):
			log.Warn().Err(err).Msg("search without restroom data")
			writeProblem(w, http.StatusServiceUnavailable, "Service Unavailable", "restroom data is unavailable", nil)
		default:
			log.Error().Err(err).Msg("search failed")
			writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "search failed", nil)
		}
		return
	}

	etag, body := calcETagAndBody(toGroupViews(groups, h.S.Unit()))
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write search body")
	}
}
