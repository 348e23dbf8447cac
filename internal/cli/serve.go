package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	apperrors "github.com/linguamesh/constellation/pkg/errors"
	"github.com/linguamesh/constellation/pkg/graph"
	"github.com/linguamesh/constellation/pkg/graph/layout"
	"github.com/linguamesh/constellation/pkg/pipeline"
	"github.com/linguamesh/constellation/pkg/render"
	"github.com/linguamesh/constellation/pkg/scene"
	"github.com/linguamesh/constellation/pkg/viewport"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr    string // listen address, overrides config
	noCache bool   // disable the pipeline cache
}

// newServeCmd creates the serve command: an HTTP API that lays out courses
// and serves composited frames, positioned graphs, and hit testing.
func newServeCmd() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve constellation frames and graphs over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the script and layout caches")

	return cmd
}

// server holds the shared state behind the HTTP handlers: the pipeline
// runner plus one scene per (course, canvas) combination.
type server struct {
	logger *log.Logger
	cfg    *Config
	runner *pipeline.Runner

	mu     sync.Mutex
	scenes map[string]*scene.Scene
}

// runServe wires the provider, cache, and router, then serves until the
// context is cancelled.
func runServe(ctx context.Context, opts *serveOpts) error {
	logger := loggerFromContext(ctx)
	cfg := configFromContext(ctx)

	addr := opts.addr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	provider, closeProvider, err := newProvider(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeProvider()

	runner, err := newRunner(cfg, provider, opts.noCache, logger)
	if err != nil {
		return err
	}

	srv := &server{
		logger: logger,
		cfg:    cfg,
		runner: runner,
		scenes: make(map[string]*scene.Scene),
	}

	printKeyValue("Address", addr)
	scriptSource := "dir " + cfg.Courses.Dir
	if cfg.Mongo.URI != "" {
		scriptSource = "mongodb " + cfg.Mongo.Database + "/" + cfg.Mongo.Collection
	}
	printKeyValue("Scripts", scriptSource)
	cacheBackend := "file"
	switch {
	case opts.noCache:
		cacheBackend = "disabled"
	case cfg.Redis.Addr != "":
		cacheBackend = "redis " + cfg.Redis.Addr
	}
	printKeyValue("Cache", cacheBackend)

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving", "addr", addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// routes builds the chi router with request IDs, panic recovery, and the
// course API.
func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/v1/courses/{courseID}", func(r chi.Router) {
		r.Get("/graph.json", s.handleGraph)
		r.Get("/frame.png", s.handleFrame)
		r.Post("/tap", s.handleTap)
		r.Post("/reveal", s.handleReveal)
	})

	return r
}

// requestID attaches a UUID to each request and logs method, path, and
// duration on completion.
func (s *server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			"id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start).Round(time.Millisecond))
	})
}

// sceneFor returns the scene for a course and canvas, building and caching
// it on first use. The pipeline's layout cache keeps rebuilds cheap.
func (s *server) sceneFor(ctx context.Context, courseID string, size viewport.Size, tier graph.Tier) (*scene.Scene, error) {
	key := fmt.Sprintf("%s|%gx%g|%d", courseID, size.Width, size.Height, tier)

	s.mu.Lock()
	if sc, ok := s.scenes[key]; ok {
		s.mu.Unlock()
		return sc, nil
	}
	s.mu.Unlock()

	result, err := s.runner.Execute(ctx, pipeline.Options{
		CourseID:     courseID,
		Canvas:       layout.Size{Width: size.Width, Height: size.Height},
		BoundaryTier: tier,
	})
	if err != nil {
		return nil, err
	}

	sc, err := scene.New(scene.Config{
		Display:    size,
		PixelRatio: s.cfg.Render.PixelRatio,
		Render: render.Options{
			HideUnrevealed: s.cfg.Render.HideUnrevealed,
			GhostOpacity:   s.cfg.Render.GhostOpacity,
		},
		Logger: s.logger,
	})
	if err != nil {
		return nil, err
	}
	sc.InstallGraph(result.Script, result.Graph)

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.scenes[key]; ok {
		return existing, nil
	}
	s.scenes[key] = sc
	return sc, nil
}

// requestScene resolves the course, canvas, and tier from the request.
func (s *server) requestScene(r *http.Request) (*scene.Scene, error) {
	courseID := chi.URLParam(r, "courseID")
	if err := apperrors.ValidateCourseID(courseID); err != nil {
		return nil, err
	}

	size := viewport.Size{
		Width:  queryFloat(r, "width", s.cfg.Render.Width),
		Height: queryFloat(r, "height", s.cfg.Render.Height),
	}
	tier := graph.TierWhite
	if v := r.URL.Query().Get("tier"); v != "" {
		t, err := graph.ParseTier(v)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInvalidTier, err, "parse tier")
		}
		tier = t
	}
	return s.sceneFor(r.Context(), courseID, size, tier)
}

// handleGraph returns the positioned graph as JSON.
func (s *server) handleGraph(w http.ResponseWriter, r *http.Request) {
	sc, err := s.requestScene(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	g := graph.Graph{Nodes: sc.Store().Nodes(), Edges: sc.Store().Edges()}
	data, err := graph.MarshalGraph(g)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

// handleFrame composites and returns the current PNG frame. An optional
// revealed query parameter applies reveal state before painting.
func (s *server) handleFrame(w http.ResponseWriter, r *http.Request) {
	sc, err := s.requestScene(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if v := r.URL.Query().Get("revealed"); v != "" {
		ids, all := parseRevealed(v)
		if all {
			for _, n := range sc.Store().Nodes() {
				ids = append(ids, n.ID)
			}
		}
		sc.SetRevealed(ids)
	}

	w.Header().Set("Content-Type", "image/png")
	if err := sc.EncodeFrame(r.Context(), w); err != nil {
		s.logger.Error("encode frame", "error", err)
	}
}

// tapRequest is the POST /tap body: a point in display coordinates.
type tapRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// tapResponse reports what the tap resolved to.
type tapResponse struct {
	Hit  bool        `json:"hit"`
	Node *graph.Node `json:"node,omitempty"`
}

// handleTap runs a hit test at the posted point and updates the selection.
func (s *server) handleTap(w http.ResponseWriter, r *http.Request) {
	sc, err := s.requestScene(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req tapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "decode tap"))
		return
	}

	ev := sc.Tap(viewport.Point{X: req.X, Y: req.Y})
	resp := tapResponse{}
	if sel, ok := ev.(scene.NodeSelected); ok {
		resp.Hit = true
		resp.Node = &sel.Node
	}
	s.writeJSON(w, resp)
}

// revealRequest is the POST /reveal body.
type revealRequest struct {
	NodeIDs []string `json:"node_ids"`
}

// handleReveal replaces the revealed set for the course's scene.
func (s *server) handleReveal(w http.ResponseWriter, r *http.Request) {
	sc, err := s.requestScene(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req revealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "decode reveal"))
		return
	}

	sc.SetRevealed(req.NodeIDs)
	s.writeJSON(w, map[string]int{"revealed": len(req.NodeIDs)})
}

// writeJSON encodes v as the response body.
func (s *server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

// writeError maps application error codes to HTTP statuses.
func (s *server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeInvalidInput, apperrors.ErrCodeInvalidCourse,
		apperrors.ErrCodeInvalidCanvas, apperrors.ErrCodeInvalidTier:
		status = http.StatusBadRequest
	case apperrors.ErrCodeNotFound, apperrors.ErrCodeCourseNotFound,
		apperrors.ErrCodeNodeNotFound, apperrors.ErrCodeClipNotFound:
		status = http.StatusNotFound
	case apperrors.ErrCodeTimeout:
		status = http.StatusGatewayTimeout
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": apperrors.UserMessage(err),
	})
}

// queryFloat parses a float query parameter, falling back to def.
func queryFloat(r *http.Request, name string, def float64) float64 {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return def
	}
	return f
}
