// Package server implements the scoreboard HTTP API: the authoritative
// state store, the match timer, push streams for overlays, persistence
// slots and asset uploads.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"github.com/mkraus12/courtside/internal/assets"
	"github.com/mkraus12/courtside/internal/models"
	"github.com/mkraus12/courtside/internal/saves"
)

// Server bundles the scoreboard components behind one HTTP handler.
type Server struct {
	store  *Store
	timer  *Engine
	hub    *Hub
	saves  *saves.Store
	assets *assets.Store

	staticDir string
}

// New assembles a Server. The timer loop is started separately via Run.
func New(savesStore *saves.Store, assetStore *assets.Store, clock clockwork.Clock, staticDir string) *Server {
	s := &Server{
		store:     NewStore(),
		hub:       NewHub(),
		saves:     savesStore,
		assets:    assetStore,
		staticDir: staticDir,
	}
	s.timer = NewEngine(s.store, clock, s.hub.Broadcast)
	return s
}

// Run drives the timer loop until ctx is cancelled.
func (s *Server) Run(ctx context.Context) {
	s.timer.Run(ctx)
}

// Handler builds the router for the documented API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.handleGetState)
		r.Post("/update", s.handleUpdate)
		r.Get("/stream", s.handleStream)
		r.Get("/ws", s.handleWS)

		r.Post("/timer/start", s.timerHandler(s.timer.Start))
		r.Post("/timer/pause", s.timerHandler(s.timer.Pause))
		r.Post("/timer/reset", s.timerHandler(s.timer.Reset))
		r.Post("/timer/secondHalf", s.timerHandler(s.timer.SecondHalf))
		r.Post("/swapSides", s.handleSwapSides)

		r.Get("/export", s.handleExport)
		r.Post("/import", s.handleImport)

		r.Get("/saves", s.handleListSaves)
		r.Post("/save", s.handleSave)
		r.Post("/load", s.handleLoadSlot)

		r.Get("/sponsors", s.handleListSponsors)
		r.Get("/sponsors/{name}", s.handleGetSponsor)
		r.Post("/sponsors/upload", s.handleUploadSponsors)
		r.Post("/sponsors/delete", s.handleDeleteSponsor)

		r.Get("/qr", s.handleGetQR)
		r.Post("/qr/upload", s.handleUploadQR)
	})

	if s.staticDir != "" {
		if _, err := os.Stat(s.staticDir); err == nil {
			r.Handle("/*", http.FileServer(http.Dir(s.staticDir)))
		}
	}

	c := cors.New(cors.Options{
		AllowedMethods: []string{http.MethodHead, http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(r)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to write response")
	}
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.store.Snapshot())
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var update models.Scoreboard
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	snap := s.store.Apply(update)
	s.hub.Broadcast(snap)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	s.hub.ServeSSE(w, r, s.store.Snapshot())
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	s.hub.ServeWS(w, r, s.store.Snapshot())
}

func (s *Server) timerHandler(op func() models.Scoreboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		op()
		w.WriteHeader(http.StatusOK)
	}
}

// handleSwapSides toggles visual side flipping only; team data stays put.
func (s *Server) handleSwapSides(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Mutate(func(st *models.Scoreboard) {
		st.SidesFlipped = !st.SidesFlipped
	})
	s.hub.Broadcast(snap)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename=scoreboard-state.json")
	writeJSON(w, s.store.Snapshot())
}

// handleImport accepts a snapshot as multipart field "file" or as a raw
// JSON body, replaces the state and re-anchors the timer.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var data []byte
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, ferr := r.FormFile("file")
		if ferr != nil {
			http.Error(w, "missing upload field 'file'", http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, err = io.ReadAll(file)
	} else {
		data, err = io.ReadAll(r.Body)
	}
	if err != nil {
		http.Error(w, "failed to read upload", http.StatusBadRequest)
		return
	}

	var imported models.Scoreboard
	if err := json.Unmarshal(data, &imported); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	snap := s.store.Replace(imported)
	s.timer.Resync()
	s.hub.Broadcast(snap)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleListSaves(w http.ResponseWriter, r *http.Request) {
	names, err := s.saves.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list saves")
		http.Error(w, "failed to list saves", http.StatusInternalServerError)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, names)
}

// handleSave accepts {"filename":"..."} or ?filename=; blank names get a
// timestamp name.
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	type req struct {
		Filename string `json:"filename"`
	}
	q := req{Filename: r.URL.Query().Get("filename")}
	if q.Filename == "" && r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&q)
	}
	name, err := s.saves.Save(r.Context(), q.Filename, s.store.Snapshot())
	if err != nil {
		log.Error().Err(err).Msg("failed to store save")
		http.Error(w, "failed to store save", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"saved": name})
}

func (s *Server) handleLoadSlot(w http.ResponseWriter, r *http.Request) {
	filename := r.URL.Query().Get("filename")
	if filename == "" {
		http.Error(w, "missing filename parameter", http.StatusBadRequest)
		return
	}
	state, err := s.saves.Load(r.Context(), filename)
	if errors.Is(err, saves.ErrNotFound) {
		http.Error(w, "save not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Error().Err(err).Str("filename", filename).Msg("failed to load save")
		http.Error(w, "failed to load save", http.StatusInternalServerError)
		return
	}
	snap := s.store.Replace(state)
	s.timer.Resync()
	s.hub.Broadcast(snap)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleListSponsors(w http.ResponseWriter, r *http.Request) {
	names, err := s.assets.Sponsors()
	if err != nil {
		log.Error().Err(err).Msg("failed to list sponsors")
		http.Error(w, "failed to list sponsors", http.StatusInternalServerError)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, names)
}

func (s *Server) handleGetSponsor(w http.ResponseWriter, r *http.Request) {
	path, err := s.assets.SponsorPath(chi.URLParam(r, "name"))
	if err != nil {
		http.Error(w, "sponsor not found", http.StatusNotFound)
		return
	}
	http.ServeFile(w, r, path)
}

func (s *Server) handleUploadSponsors(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		http.Error(w, "missing upload field 'files'", http.StatusBadRequest)
		return
	}
	var stored []string
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			http.Error(w, "failed to read upload", http.StatusBadRequest)
			return
		}
		name, err := s.assets.AddSponsor(fh.Filename, f)
		f.Close()
		if err != nil {
			http.Error(w, "failed to store upload", http.StatusBadRequest)
			return
		}
		stored = append(stored, name)
	}
	writeJSON(w, stored)
}

func (s *Server) handleDeleteSponsor(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	err := s.assets.DeleteSponsor(name)
	if errors.Is(err, assets.ErrNotFound) {
		http.Error(w, "sponsor not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Error().Err(err).Str("name", name).Msg("failed to delete sponsor")
		http.Error(w, "failed to delete sponsor", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleGetQR(w http.ResponseWriter, r *http.Request) {
	path, err := s.assets.QRPath()
	if err != nil {
		http.Error(w, "no QR uploaded", http.StatusNotFound)
		return
	}
	http.ServeFile(w, r, path)
}

func (s *Server) handleUploadQR(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing upload field 'file'", http.StatusBadRequest)
		return
	}
	defer file.Close()
	if err := s.assets.SetQR(header.Filename, file); err != nil {
		log.Error().Err(err).Msg("failed to store QR")
		http.Error(w, "failed to store QR", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}
