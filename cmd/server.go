package cmd

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jsphweid/loopgen/config"
	"github.com/jsphweid/loopgen/db"
	"github.com/jsphweid/loopgen/engine"
	"github.com/jsphweid/loopgen/file"
	"github.com/jsphweid/loopgen/model"
)

const reloadDelay = 500 * time.Millisecond

// RenderLookup reads back recorded renders.
type RenderLookup interface {
	GetRender(ctx context.Context, id string) (db.RenderRecord, bool, error)
}

type Server struct {
	cfg     config.Config
	logger  *slog.Logger
	renders RenderLookup

	mu     sync.RWMutex
	engine *engine.Engine

	// collapses bursts of reload requests into one library load
	debounced func(f func())
}

func NewServer(cfg config.Config, logger *slog.Logger) (*Server, error) {
	catalog, err := NewCatalog(cfg)
	if err != nil {
		return nil, err
	}
	e, err := NewEngine(cfg, logger, catalog)
	if err != nil {
		return nil, err
	}
	s := &Server{
		cfg:       cfg,
		logger:    logger,
		engine:    e,
		debounced: debounce.New(reloadDelay),
	}
	if catalog != nil {
		s.renders = catalog
	}
	return s, nil
}

func (s *Server) Router() *mux.Router {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/render", s.HandleRender).Methods("POST")
	router.HandleFunc("/library", s.HandleLibrary).Methods("GET")
	router.HandleFunc("/library/reload", s.HandleReload).Methods("POST")
	router.HandleFunc("/files/{name}", s.HandleFile).Methods("GET")
	router.HandleFunc("/renders/{id}", s.HandleRenderLookup).Methods("GET")
	return router
}

func (s *Server) currentEngine() *engine.Engine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

func (s *Server) reload() {
	catalog, err := NewCatalog(s.cfg)
	if err != nil {
		s.logger.Error("reload failed", "err", err)
		return
	}
	e, err := NewEngine(s.cfg, s.logger, catalog)
	if err != nil {
		s.logger.Error("reload failed", "err", err)
		return
	}
	s.mu.Lock()
	s.engine = e
	s.mu.Unlock()
	s.logger.Info("library reloaded", "patterns", s.cfg.PatternsPath, "genres", len(e.Library().Genres()))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, model.ErrorResponse{Error: err.Error()})
}

// outputName turns a client supplied name into a bare file name inside the
// output dir. A short unique suffix keeps renders with the same name apart.
func outputName(name string) string {
	id := uuid.New().String()
	base := file.StripExt(filepath.Base(strings.TrimSpace(name)))
	if base == "" || base == "." || base == ".." || strings.HasPrefix(base, ".") {
		return "loop-" + id
	}
	return base + "-" + id[:8]
}

func (s *Server) HandleRender(w http.ResponseWriter, r *http.Request) {
	var input model.RenderRequestBody
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Could not decode request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if input.Genre == "" || input.Style == "" {
		http.Error(w, "genre and style are required", http.StatusBadRequest)
		return
	}
	if input.BPM < 0 {
		http.Error(w, "bpm must be positive", http.StatusBadRequest)
		return
	}

	name := outputName(input.Name)
	req := model.RenderRequest{
		Genre:      input.Genre,
		Style:      input.Style,
		InspiredBy: input.InspiredBy,
		BPM:        input.BPM,
		OutputPath: filepath.Join(s.cfg.OutputDir, name+".wav"),
		Seed:       input.Seed,
	}

	ctx := r.Context()
	if s.cfg.RenderTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RenderTimeout)
		defer cancel()
	}
	res, err := s.currentEngine().Render(ctx, req)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error("render failed", "genre", input.Genre, "style", input.Style, "err", err)
		}
		writeError(w, status, err)
		return
	}

	out := model.RenderResponse{
		ID:         res.ID,
		PatternID:  res.Entry.ID,
		InspiredBy: res.Entry.InspiredBy,
		BPM:        res.BPM,
		Seed:       res.Seed,
		DurationMs: res.DurationMs,
		Roles:      res.Roles,
		Loop:       "/files/" + filepath.Base(res.LoopPath),
	}
	if res.ArchivePath != "" {
		out.Archive = "/files/" + filepath.Base(res.ArchivePath)
	}
	for _, d := range res.Diagnostics {
		out.Diagnostics = append(out.Diagnostics, d.Error())
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) HandleLibrary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.currentEngine().Library().Summaries())
}

func (s *Server) HandleReload(w http.ResponseWriter, r *http.Request) {
	s.debounced(s.reload)
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) HandleFile(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, filepath.Join(s.cfg.OutputDir, name))
}

func (s *Server) HandleRenderLookup(w http.ResponseWriter, r *http.Request) {
	if s.renders == nil {
		http.Error(w, "render catalog is not configured", http.StatusNotFound)
		return
	}
	id := mux.Vars(r)["id"]
	rec, ok, err := s.renders.GetRender(r.Context(), id)
	if err != nil {
		s.logger.Error("render lookup failed", "id", id, "err", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if !ok {
		http.Error(w, "no render with id "+id, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
