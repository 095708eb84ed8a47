// Package server hosts interactive views of a mutuals model over HTTP.
//
// Each view owns a selection engine; taps and deselects arrive either as
// JSON POSTs or as WebSocket frames and are applied one at a time per view.
// The model itself is shared read-only and swapped atomically on reload.
//
// # Routes
//
//	GET    /                         viewer page
//	GET    /api/elements             element model (renderer contract)
//	GET    /api/stylesheet           base stylesheet
//	POST   /api/views                new view, Idle output
//	GET    /api/views/{id}           current output
//	POST   /api/views/{id}/tap       {"id": "...", "kind": "..."}
//	POST   /api/views/{id}/deselect
//	DELETE /api/views/{id}
//	GET    /ws                       WebSocket view
//	GET    /healthz
//	GET    /metrics                  Prometheus
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/mutuals/pkg/pipeline"
	"github.com/matzehuels/mutuals/pkg/source"
)

const (
	shutdownTimeout = 5 * time.Second
	sweepInterval   = time.Minute
)

// Options configures a Server.
type Options struct {
	Addr    string
	Source  source.Source
	Build   pipeline.BuildOptions
	Watch   bool          // rebuild when a file source changes
	ViewTTL time.Duration // zero uses DefaultViewTTL

	// Gatherer backs /metrics. Nil uses prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
}

// Server serves one model to many views.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
	opts   Options
	views  *Views
	result atomic.Pointer[pipeline.Result]

	mu       sync.Mutex
	reloaded chan struct{}

	router chi.Router
}

// New creates a server. Call Load (or Run) before serving requests.
func New(runner *pipeline.Runner, logger *log.Logger, opts Options) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	s := &Server{
		runner:   runner,
		logger:   logger,
		opts:     opts,
		views:    NewViews(opts.ViewTTL),
		reloaded: make(chan struct{}),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{}))
	r.Get("/ws", s.handleWebSocket)

	r.Route("/api", func(r chi.Router) {
		r.Get("/elements", s.handleElements)
		r.Get("/stylesheet", s.handleStylesheet)
		r.Post("/views", s.handleCreateView)
		r.Route("/views/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetView)
			r.Delete("/", s.handleDeleteView)
			r.Post("/tap", s.handleTap)
			r.Post("/deselect", s.handleDeselect)
		})
	})
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Views returns the live view store.
func (s *Server) Views() *Views { return s.views }

// Result returns the current build result, or nil before the first Load.
func (s *Server) Result() *pipeline.Result { return s.result.Load() }

// Load builds the model from the configured source and swaps it in.
// Existing views move to the new model and return to Idle.
func (s *Server) Load(ctx context.Context) error {
	res, err := s.runner.Build(ctx, s.opts.Source, s.opts.Build)
	if err != nil {
		return err
	}
	s.SetResult(res)
	return nil
}

// SetResult swaps in an already built result. Views created concurrently
// with the swap land on the new model.
func (s *Server) SetResult(res *pipeline.Result) {
	s.mu.Lock()
	prev := s.result.Swap(res)
	s.views.SetModel(res.Model)
	if prev == nil {
		s.mu.Unlock()
		return
	}
	close(s.reloaded)
	s.reloaded = make(chan struct{})
	s.mu.Unlock()

	s.logger.Info("model reloaded", "nodes", res.Stats.Nodes, "edges", res.Stats.Edges, "views", s.views.Len())
}

// reloadSignal returns a channel closed on the next model swap.
func (s *Server) reloadSignal() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reloaded
}

// Run loads the model and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Load(ctx); err != nil {
		return err
	}

	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.opts.Addr, err)
	}
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("serving", "addr", "http://"+ln.Addr().String(), "source", s.opts.Source.Name())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case now := <-ticker.C:
				if n := s.views.Sweep(now); n > 0 {
					s.logger.Debug("expired views", "count", n)
				}
			}
		}
	})

	if s.opts.Watch {
		file, ok := s.opts.Source.(*source.File)
		if !ok {
			s.logger.Warn("watch needs a file source; ignoring", "source", s.opts.Source.Name())
		} else {
			g.Go(func() error { return s.watch(ctx, file.Path()) })
		}
	}

	return g.Wait()
}
