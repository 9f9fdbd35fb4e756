package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/a11yscan/internal/database"
	"github.com/nao1215/a11yscan/internal/guard"
	"github.com/nao1215/a11yscan/internal/model"
	"github.com/nao1215/a11yscan/internal/sanitize"
)

// checkRequest is the body of POST /api/check.
type checkRequest struct {
	URL string `json:"url"`
}

// historyResponse is the body of GET /api/history.
type historyResponse struct {
	URL     string            `json:"url"`
	Records []database.Record `json:"records"`
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Web Compliance Checker API",
		"version": Version,
		"docs":    "/docs",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "Web Compliance Checker API is running",
		"backend": "Go/net/http",
	})
}

// handleCheck runs one analysis. Validation, rendering and evaluation share
// the analysis budget; recommendations get their own budget afterwards and
// never fail the request.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	var req checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, msgInvalidBody)
		return
	}

	start := time.Now()
	analysis := model.NewAnalysis(strings.TrimSpace(req.URL))

	actx, cancel := context.WithTimeout(r.Context(), s.cfg.AnalysisTimeout)
	err := s.checks.Execute(actx, analysis)
	timedOut := errors.Is(actx.Err(), context.DeadlineExceeded)
	cancel()

	if err != nil {
		s.writeAnalysisError(w, r, analysis, err, timedOut)
		s.metrics.observeAnalysis(outcomeOf(err, timedOut), time.Since(start))
		return
	}

	if err := s.advice.Do(r.Context(), analysis); err != nil {
		s.writeAnalysisError(w, r, analysis, err, false)
		s.metrics.observeAnalysis(outcomeError, time.Since(start))
		return
	}

	result := analysis.Result(s.now())
	if result == nil {
		s.writeAnalysisError(w, r, analysis, ErrIncompleteAnalysis, false)
		s.metrics.observeAnalysis(outcomeError, time.Since(start))
		return
	}

	s.logger.Info("analysis complete",
		"request_id", requestIDFrom(r.Context()),
		"hostname", analysis.Hostname,
		"score", result.Score,
		"elapsed", time.Since(start),
	)
	s.metrics.observeAnalysis(outcomeSuccess, time.Since(start))
	s.metrics.observeFailedChecks(result)
	s.saveHistory(r.Context(), result, analysis)

	writeJSON(w, http.StatusOK, result)
}

// writeAnalysisError maps a pipeline error to its response. Rejections
// carry their reason message; everything else is a timeout or a generic
// failure whose text is only shown outside production.
func (s *Server) writeAnalysisError(w http.ResponseWriter, r *http.Request, analysis *model.Analysis, err error, timedOut bool) {
	var reason guard.Reason
	switch {
	case errors.As(err, &reason):
		s.logger.Info("URL rejected",
			"request_id", requestIDFrom(r.Context()),
			"reason", reason.String(),
		)
		writeDetail(w, http.StatusBadRequest, reason.Message())
	case timedOut:
		s.logger.Warn("analysis timed out",
			"request_id", requestIDFrom(r.Context()),
			"hostname", analysis.Hostname,
		)
		writeDetail(w, http.StatusGatewayTimeout, msgAnalysisTimeout)
	default:
		s.logger.Error("analysis failed",
			"request_id", requestIDFrom(r.Context()),
			"hostname", analysis.Hostname,
			"error", err,
		)
		detail := msgAnalysisFailed
		if !s.cfg.IsProduction() {
			detail += ": " + sanitize.Text(err.Error())
		}
		writeDetail(w, http.StatusInternalServerError, detail)
	}
}

// saveHistory stores result when history is enabled. Failures are logged
// and do not affect the response.
func (s *Server) saveHistory(ctx context.Context, result *model.Result, analysis *model.Analysis) {
	if s.history == nil {
		return
	}
	id, err := s.history.SaveResult(context.WithoutCancel(ctx), result, analysis.Snapshot)
	if err != nil {
		s.logger.Warn("failed to save result",
			"hostname", analysis.Hostname,
			"error", err,
		)
		return
	}
	s.logger.Debug("result saved", "id", id, "hostname", analysis.Hostname)
}

// handleCleanup releases the renderer. The next check recreates it.
func (s *Server) handleCleanup(w http.ResponseWriter, r *http.Request) {
	if s.cfg.IsProduction() && r.Header.Get("Authorization") == "" {
		writeDetail(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}
	if err := s.renderer.Close(); err != nil {
		s.logger.Error("failed to close renderer", "error", err)
		writeDetail(w, http.StatusInternalServerError, msgCleanupFailed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": msgCleanupSucceeded})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeDetail(w, http.StatusNotFound, msgHistoryDisabled)
		return
	}

	raw := strings.TrimSpace(r.URL.Query().Get("url"))
	if raw == "" {
		writeDetail(w, http.StatusBadRequest, msgURLRequired)
		return
	}
	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeDetail(w, http.StatusBadRequest, "Query parameter limit must be a positive integer")
			return
		}
		limit = min(n, defaultHistoryLimit)
	}

	// Results are stored under their sanitized URL.
	pageURL := sanitize.URL(raw)
	records, err := s.history.GetHistory(r.Context(), pageURL, limit)
	if err != nil {
		s.logger.Error("failed to read history", "error", err)
		writeDetail(w, http.StatusInternalServerError, msgGenericError)
		return
	}
	writeJSON(w, http.StatusOK, historyResponse{URL: pageURL, Records: records})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeDetail writes a {"detail": msg} error body.
func writeDetail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, detailResponse{Detail: msg})
}

// outcomeOf labels a failed analysis for metrics.
func outcomeOf(err error, timedOut bool) string {
	var reason guard.Reason
	switch {
	case errors.As(err, &reason):
		return outcomeRejected
	case timedOut:
		return outcomeTimeout
	default:
		return outcomeError
	}
}
