package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/gridiron-data/gridiron/internal/cache"
	"github.com/gridiron-data/gridiron/internal/query"
)

// validateResponse is returned by the validate endpoint: the plan and its
// serialized form, without executing anything.
type validateResponse struct {
	Plan     *query.Plan     `json:"plan"`
	Document *query.Document `json:"document"`
}

// queryResponse wraps executed query data with the plan metadata callers need
// for observability.
type queryResponse struct {
	PlanID     string          `json:"planId"`
	Complexity float64         `json:"complexity"`
	Cached     bool            `json:"cached"`
	Data       json.RawMessage `json:"data"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}

	plan, err := s.builder.Build(req)
	if err != nil {
		s.respondRejection(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, validateResponse{
		Plan:     plan,
		Document: query.Render(plan),
	})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}

	plan, err := s.builder.Build(req)
	if err != nil {
		s.respondRejection(w, err)
		return
	}

	ctx := r.Context()
	fingerprint := plan.Fingerprint()

	if s.cache != nil {
		if data, err := s.cache.Get(ctx, fingerprint); err == nil {
			s.respondJSON(w, http.StatusOK, queryResponse{
				PlanID:     plan.ID,
				Complexity: plan.Complexity,
				Cached:     true,
				Data:       data,
			})
			return
		} else {
			var miss cache.ErrCacheMiss
			if !errors.As(err, &miss) {
				s.logger.Warn("cache lookup failed", zap.Error(err))
			}
		}
	}

	data, err := s.executor.Execute(ctx, query.Render(plan))
	if err != nil {
		s.logger.Error("upstream execution failed",
			zap.String("plan_id", plan.ID),
			zap.String("entity", plan.Entity),
			zap.Error(err))
		s.respondJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, fingerprint, data); err != nil {
			s.logger.Warn("cache fill failed", zap.Error(err))
		}
	}

	s.respondJSON(w, http.StatusOK, queryResponse{
		PlanID:     plan.ID,
		Complexity: plan.Complexity,
		Data:       data,
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	if term == "" {
		s.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "missing query parameter q"})
		return
	}
	s.respondJSON(w, http.StatusOK, s.explorer.Search(term))
}

func (s *Server) handleDescribe(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	desc, exists := s.explorer.DescribeEntity(name)
	if !exists {
		s.respondJSON(w, http.StatusNotFound, map[string]string{"error": "unknown entity: " + name})
		return
	}
	s.respondJSON(w, http.StatusOK, desc)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.explorer.Stats())
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	if s.cache == nil {
		s.respondJSON(w, http.StatusOK, cache.Stats{})
		return
	}
	s.respondJSON(w, http.StatusOK, s.cache.Stats())
}

// decodeRequest parses the request body into the engine's strict shape.
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request) (*query.Request, bool) {
	var req query.Request
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		s.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
		return nil, false
	}
	return &req, true
}

// respondRejection maps a builder failure onto a 400 with the structured
// rejection so callers can repair their request.
func (s *Server) respondRejection(w http.ResponseWriter, err error) {
	if rejection, ok := query.AsRejection(err); ok {
		s.respondJSON(w, http.StatusBadRequest, map[string]interface{}{"rejection": rejection})
		return
	}
	s.respondJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}
