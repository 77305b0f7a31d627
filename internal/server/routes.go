package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"regexp"

	"portfolio-feed/internal/usecase"
)

// statusLimit is how many run results /api/status returns.
const statusLimit = 10

var artifactName = regexp.MustCompile(`^(tweets|user)_[A-Za-z0-9_]+\.json$`)

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /api/twitter/{username}", s.handleTimeline)
	s.mux.HandleFunc("POST /admin/refresh/{username}", s.handleAdminRefresh)
	s.mux.HandleFunc("GET /api/status/{username}", s.handleStatus)
	s.mux.HandleFunc("GET /widgets/{username}", s.handleWidget)
	s.mux.HandleFunc("GET /data/{file}", s.handleArtifact)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	tl, err := s.deps.Timeline.Timeline(r.Context(), r.PathValue("username"))
	if err != nil {
		s.writeUsecaseError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tl)
}

// handleAdminRefresh authenticates and acknowledges; it never triggers a fetch.
func (s *Server) handleAdminRefresh(w http.ResponseWriter, r *http.Request) {
	if err := usecase.CheckAdminToken(s.deps.AdminToken, r.Header.Get("X-Admin-Token")); err != nil {
		s.writeUsecaseError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if s.deps.Runs == nil {
		writeError(w, http.StatusNotFound, "run_log_disabled")
		return
	}
	results, err := s.deps.Runs.RecentResults(r.Context(), r.PathValue("username"), statusLimit)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "run log query failed", "err", err)
		writeError(w, http.StatusInternalServerError, usecase.MessageServerError)
		return
	}
	if len(results) == 0 {
		writeError(w, http.StatusNotFound, "no_runs")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": results})
}

func (s *Server) handleWidget(w http.ResponseWriter, r *http.Request) {
	if s.deps.Widgets == nil {
		http.NotFound(w, r)
		return
	}
	var buf bytes.Buffer
	if err := s.deps.Widgets.Widget(&buf, r.PathValue("username")); err != nil {
		s.logger.ErrorContext(r.Context(), "widget render failed", "err", err)
		writeError(w, http.StatusInternalServerError, usecase.MessageServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// handleArtifact serves the JSON snapshots uncached so the page always sees
// the latest refresh.
func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("file")
	if s.deps.DataDir == "" || !artifactName.MatchString(name) {
		http.NotFound(w, r)
		return
	}
	f, err := os.Open(filepath.Join(s.deps.DataDir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			http.NotFound(w, r)
			return
		}
		s.logger.ErrorContext(r.Context(), "artifact open failed", "err", err)
		writeError(w, http.StatusInternalServerError, usecase.MessageServerError)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		writeError(w, http.StatusInternalServerError, usecase.MessageServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	http.ServeContent(w, r, name, info.ModTime(), f)
}

func (s *Server) writeUsecaseError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := usecase.HTTPError(err)
	if msg == usecase.MessageServerError {
		s.logger.ErrorContext(r.Context(), "request failed", "err", err)
	}
	writeError(w, status, msg)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
