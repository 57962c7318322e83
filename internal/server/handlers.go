package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/njchilds90/diffeq"
	"github.com/njchilds90/diffeq/internal/cache"
)

// respondJSON sends data as a JSON response.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// respondError sends the shared {"status":"error","message":...} envelope.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, diffeq.ErrorResponse(message))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"version":   s.cfg.Version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, diffeq.ToolSpec())
}

func (s *Server) handleCheckLinearity(w http.ResponseWriter, r *http.Request) {
	equation := r.FormValue("equation")
	if equation == "" {
		respondJSON(w, http.StatusOK, diffeq.ErrorResponse("Please enter a differential equation."))
		return
	}
	s.respondCached(w, r, cache.Key("check_linearity", equation), func() interface{} {
		resp := diffeq.LinearityResponse(equation)
		outcome := "nonlinear"
		if resp.Status == diffeq.StatusSuccess {
			outcome = "linear"
		}
		s.metrics.RecordVerdict(r.Context(), "check_linearity", outcome)
		return resp
	})
}

func (s *Server) handleVerifySolution(w http.ResponseWriter, r *http.Request) {
	de, solution := r.FormValue("de"), r.FormValue("solution")
	if de == "" || solution == "" {
		respondJSON(w, http.StatusOK, diffeq.ErrorResponse(
			"Please enter both the differential equation and the proposed solution."))
		return
	}
	s.respondCached(w, r, cache.Key("verify_solution", de, solution), func() interface{} {
		resp := diffeq.VerificationResponse(de, solution)
		outcome := "invalid"
		if resp.Status == diffeq.StatusSuccess {
			outcome = "valid"
		}
		s.metrics.RecordVerdict(r.Context(), "verify_solution", outcome)
		return resp
	})
}

// handleTool executes one tool call. The body must hold exactly one JSON
// object with no unknown fields.
func (s *Server) handleTool(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req diffeq.ToolRequest
	if err := dec.Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, diffeq.ToolResponse{Error: err.Error()})
		return
	}
	if dec.More() {
		respondJSON(w, http.StatusBadRequest, diffeq.ToolResponse{Error: "invalid JSON: trailing data"})
		return
	}

	params, _ := json.Marshal(req.Params)
	s.respondCached(w, r, cache.Key("tool", req.Tool, string(params)), func() interface{} {
		resp := diffeq.HandleToolCall(req)
		outcome := "ok"
		if resp.Error != "" {
			outcome = "error"
		}
		s.metrics.RecordVerdict(r.Context(), req.Tool, outcome)
		return resp
	})
}

// respondCached serves the stored body for key or builds, stores and serves
// a fresh one. The X-Cache header reports which happened.
func (s *Server) respondCached(w http.ResponseWriter, r *http.Request, key string, build func() interface{}) {
	ctx := r.Context()
	if s.cache != nil {
		body, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.log.Warn("cache read failed", "error", err, "request_id", RequestID(ctx))
		}
		s.metrics.RecordCache(ctx, ok)
		if ok {
			writeBody(w, "HIT", body)
			return
		}
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(build()); err != nil {
		respondError(w, http.StatusInternalServerError, "could not encode response")
		return
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, buf.Bytes()); err != nil {
			s.log.Warn("cache write failed", "error", err, "request_id", RequestID(ctx))
		}
	}
	writeBody(w, "MISS", buf.Bytes())
}

func writeBody(w http.ResponseWriter, cacheStatus string, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", cacheStatus)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
