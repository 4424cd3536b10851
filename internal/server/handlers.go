package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"velohub/internal/service"
)

// reportResponse is the envelope every report endpoint returns. Degraded
// lists the data categories that failed to load and were replaced by
// empty sets.
type reportResponse struct {
	Data     any      `json:"data"`
	Degraded []string `json:"degraded,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMaintenanceReport(w http.ResponseWriter, r *http.Request) {
	s.serveReport(w, r, func(ctx context.Context, ids []int64) (any, []service.Warning, error) {
		data, warnings, err := s.builder.BuildMaintenanceSummaries(ctx, ids)
		return data, warnings, err
	})
}

func (s *Server) handleActivityReport(w http.ResponseWriter, r *http.Request) {
	s.serveReport(w, r, func(ctx context.Context, ids []int64) (any, []service.Warning, error) {
		data, warnings, err := s.builder.BuildActivitySummaries(ctx, ids)
		return data, warnings, err
	})
}

func (s *Server) handleStatisticsReport(w http.ResponseWriter, r *http.Request) {
	s.serveReport(w, r, func(ctx context.Context, ids []int64) (any, []service.Warning, error) {
		data, warnings, err := s.builder.BuildMaintenanceStatistics(ctx, ids)
		return data, warnings, err
	})
}

func (s *Server) serveReport(w http.ResponseWriter, r *http.Request, build func(context.Context, []int64) (any, []service.Warning, error)) {
	ids, err := parseAthleteIDs(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	cacheKey := r.URL.Path + "?athlete_ids=" + r.URL.Query().Get("athlete_ids")
	if body, ok := s.cache.Get(cacheKey); ok {
		s.metrics.IncCacheHits()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(body)
		return
	}
	s.metrics.IncCacheMisses()

	data, warnings, err := build(r.Context(), ids)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrRepositoryUnavailable) {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}

	resp := reportResponse{Data: data}
	for _, warning := range warnings {
		resp.Degraded = append(resp.Degraded, warning.Category)
	}

	body, err := json.Marshal(resp)
	if err != nil {
		s.log.Error().Err(err).Msg("encoding report")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "encoding report"})
		return
	}

	// degraded responses stay out of the cache so recovery is visible
	// on the next request
	if len(resp.Degraded) == 0 {
		s.cache.Set(cacheKey, body)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// parseAthleteIDs reads the comma-separated athlete_ids query parameter
func parseAthleteIDs(r *http.Request) ([]int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("athlete_ids"))
	if raw == "" {
		return nil, errors.New("athlete_ids parameter is required")
	}

	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, errors.New("athlete_ids must be a comma-separated list of integers")
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, errors.New("athlete_ids parameter is required")
	}
	return ids, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
