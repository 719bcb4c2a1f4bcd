// Package server exposes the diff presentation model over HTTP and serves
// the embedded web UI.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"

	"go.uber.org/zap"

	"github.com/lundberg/diffreview/internal/config"
	"github.com/lundberg/diffreview/internal/diff"
	"github.com/lundberg/diffreview/internal/git"
)

// maxPresentBody caps the size of a POST /api/present request.
const maxPresentBody = 32 << 20

// commitLimit is the number of commits listed by /api/commits.
const commitLimit = 50

// Source produces raw unified diffs and history. *git.Repo implements it.
type Source interface {
	Diff(ctx context.Context, base, target string) (string, error)
	WorktreeDiff(ctx context.Context) (string, error)
	Commits(ctx context.Context, n int) ([]git.Commit, error)
}

// Server is the HTTP server that serves the frontend and API endpoints.
type Server struct {
	config *config.Config
	source Source
	mux    *http.ServeMux
	stdin  []diff.FileDiff
	assets fs.FS
	cache  *diffCache
	events *hub
	logger *zap.Logger
}

// New creates a new server. If stdinFiles is non-nil the server is in stdin
// mode and never consults the source.
func New(cfg *config.Config, source Source, stdinFiles []diff.FileDiff, assets fs.FS, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		config: cfg,
		source: source,
		mux:    http.NewServeMux(),
		stdin:  stdinFiles,
		assets: assets,
		cache:  newDiffCache(),
		events: newHub(logger),
		logger: logger,
	}
	s.routes()
	return s
}

// Handler returns the http.Handler wrapped in request logging.
func (s *Server) Handler() http.Handler {
	return requestLogger(s.logger, s.mux)
}

// Invalidate drops every cached diff and tells connected clients to reload.
func (s *Server) Invalidate() {
	n := s.cache.clear()
	s.logger.Debug("diff cache invalidated", zap.Int("entries", n))
	s.events.broadcast(event{Type: eventDiffInvalidated})
}

// Close disconnects all event subscribers.
func (s *Server) Close() {
	s.events.close()
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/diff", s.handleDiff)
	s.mux.HandleFunc("POST /api/present", s.handlePresent)
	s.mux.HandleFunc("GET /api/commits", s.handleCommits)
	s.mux.HandleFunc("GET /api/settings", s.handleSettings)
	s.mux.HandleFunc("GET /api/events", s.events.serve)
	s.mux.Handle("GET /", http.FileServerFS(s.assets))
}

func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	files, err := s.files(r.Context(), q.Get("base"), q.Get("target"))
	if err != nil {
		s.logger.Error("loading diff failed", zap.Error(err), zap.String("request_id", requestID(r)))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// The configured expand-all only seeds the page; see /api/settings.
	var expanded diff.ExpandState = diff.ExpandedSet(nil)
	if q.Get("expandAll") == "1" {
		expanded = diff.AllExpanded{}
	} else if paths := q["expanded"]; len(paths) > 0 {
		set := make(diff.ExpandedSet, len(paths))
		for _, p := range paths {
			set[p] = true
		}
		expanded = set
	}

	p := diff.Present(files, expanded)
	if q.Get("layout") == config.ViewSplit {
		withPairs(&p)
	}
	writeJSON(w, p)
}

// withPairs fills the side-by-side rows of every expanded file.
func withPairs(p *diff.Presentation) {
	for i := range p.Files {
		if p.Files[i].Expanded {
			p.Files[i].Pairs = diff.SideBySide(p.Files[i].Lines)
		}
	}
}

// settings is the view configuration the web UI starts from.
type settings struct {
	Mode      string `json:"mode"`
	ExpandAll bool   `json:"expandAll"`
}

func (s *Server) handleSettings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, settings{Mode: s.config.View.Mode, ExpandAll: s.config.View.ExpandAll})
}

// files returns the parsed diff for the request, preferring the stdin diff,
// then the working tree in working mode, then base..target.
func (s *Server) files(ctx context.Context, base, target string) ([]diff.FileDiff, error) {
	if s.stdin != nil {
		return s.stdin, nil
	}

	// Loads are shared between requests, so one client going away must not
	// fail the others.
	ctx = context.WithoutCancel(ctx)

	if base == "" && target == "" && s.config.Mode == config.ModeWorking {
		return s.cache.get(cacheKey{worktree: true}, func() ([]diff.FileDiff, error) {
			raw, err := s.source.WorktreeDiff(ctx)
			if err != nil {
				return nil, err
			}
			return diff.Parse(raw)
		})
	}

	if base == "" {
		base = s.config.Base
	}
	if target == "" {
		target = s.config.Target
	}
	if base == "" {
		return nil, fmt.Errorf("no base ref to diff against")
	}

	return s.cache.get(cacheKey{base: base, target: target}, func() ([]diff.FileDiff, error) {
		raw, err := s.source.Diff(ctx, base, target)
		if err != nil {
			return nil, err
		}
		return diff.Parse(raw)
	})
}

// presentRequest is the body of POST /api/present.
type presentRequest struct {
	Files     []diff.FileDiff `json:"files"`
	Expanded  []string        `json:"expanded"`
	ExpandAll bool            `json:"expandAll"`
	Layout    string          `json:"layout"`
}

func (s *Server) handlePresent(w http.ResponseWriter, r *http.Request) {
	var req presentRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPresentBody))
	if err := dec.Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	var expanded diff.ExpandState
	if req.ExpandAll {
		expanded = diff.AllExpanded{}
	} else {
		set := make(diff.ExpandedSet, len(req.Expanded))
		for _, p := range req.Expanded {
			set[p] = true
		}
		expanded = set
	}

	p := diff.Present(req.Files, expanded)
	if req.Layout == config.ViewSplit {
		withPairs(&p)
	}
	writeJSON(w, p)
}

func (s *Server) handleCommits(w http.ResponseWriter, r *http.Request) {
	// In stdin mode, return empty array
	if s.stdin != nil {
		writeJSON(w, []git.Commit{})
		return
	}

	commits, err := s.source.Commits(r.Context(), commitLimit)
	if err != nil {
		s.logger.Error("listing commits failed", zap.Error(err), zap.String("request_id", requestID(r)))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if commits == nil {
		commits = []git.Commit{}
	}

	writeJSON(w, commits)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
