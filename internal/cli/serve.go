package cli

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/conceptmap/conceptmerge/pkg/cache"
	"github.com/conceptmap/conceptmerge/pkg/graph"
	"github.com/conceptmap/conceptmerge/pkg/layout"
	"github.com/conceptmap/conceptmerge/pkg/pipeline"
	"github.com/conceptmap/conceptmerge/pkg/render/nodelink"
)

const shutdownTimeout = 5 * time.Second

// serveCommand creates the serve command, which builds the combined graph
// once and serves it read-only over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		opts      sourceOpts
		addr      string
		graphPath string
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the combined graph over HTTP",
		Long: `Serve the combined graph over HTTP.

Routes:
  GET /healthz          liveness probe
  GET /api/graph        combined graph JSON
  GET /api/graph/dot    Graphviz DOT (?layout=rows|rings)
  GET /api/graph/svg    rendered SVG (?layout=rows|rings), cached per layout
  GET /api/modules      modules with their concept counts`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)

			var g *graph.Combined
			if graphPath != "" {
				var err error
				if g, err = graph.ReadFile(graphPath); err != nil {
					return err
				}
			} else {
				popts, _, err := opts.resolve(cmd)
				if err != nil {
					return err
				}
				res, err := pipeline.NewRunner(c.Logger).Build(ctx, popts)
				if err != nil {
					return err
				}
				g = res.Graph
			}
			var store cache.Cache = cache.NewMemoryCache()
			if noCache {
				store = cache.NewNullCache()
			}
			defer store.Close()
			return runServe(ctx, addr, newRouter(g, c.Logger, store))
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")
	cmd.Flags().StringVar(&graphPath, "graph", "", "serve an existing combined graph instead of building one")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "render SVG on every request")

	return cmd
}

func runServe(ctx context.Context, addr string, h http.Handler) error {
	logger := loggerFromContext(ctx)
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return ctx.Err()
	}
}

// =============================================================================
// Routes
// =============================================================================

// moduleSummary is one entry of GET /api/modules.
type moduleSummary struct {
	ModuleNum int    `json:"module_num"`
	Course    string `json:"course"`
	Title     string `json:"module_title"`
	Concepts  int    `json:"concepts"`
}

// newRouter returns the HTTP handler serving g. Rendered SVG is kept in
// store, keyed by the graph's content hash and the layout.
func newRouter(g *graph.Combined, logger *log.Logger, store cache.Cache) http.Handler {
	graphHash := ""
	if data, err := graph.Marshal(g); err == nil {
		graphHash = cache.Hash(data)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/graph", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := graph.Write(g, w); err != nil {
				logger.Error("write graph", "err", err)
			}
		})
		r.Get("/graph/dot", func(w http.ResponseWriter, req *http.Request) {
			l, ok := layoutParam(w, req)
			if !ok {
				return
			}
			w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
			_, _ = w.Write([]byte(nodelink.ToDOT(g, nodelink.Options{Layout: l})))
		})
		r.Get("/graph/svg", func(w http.ResponseWriter, req *http.Request) {
			l, ok := layoutParam(w, req)
			if !ok {
				return
			}
			ctx := req.Context()
			key := cache.Key("svg", graphHash, string(l))
			svg, hit, err := store.Get(ctx, key)
			if err != nil {
				logger.Warn("svg cache read", "err", err)
			}
			if !hit {
				if svg, err = nodelink.RenderSVG(ctx, nodelink.ToDOT(g, nodelink.Options{Layout: l})); err != nil {
					logger.Error("render svg", "layout", l, "err", err)
					http.Error(w, "render failed", http.StatusInternalServerError)
					return
				}
				if err := store.Set(ctx, key, svg, 0); err != nil {
					logger.Warn("svg cache write", "err", err)
				}
			}
			logger.Debug("svg", "layout", l, "cached", hit)
			w.Header().Set("Content-Type", "image/svg+xml")
			_, _ = w.Write(svg)
		})
		r.Get("/modules", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, logger, moduleSummaries(g))
		})
	})

	return r
}

// layoutParam reads ?layout=, defaulting to rows. It writes a 400 response
// and returns false for an unknown layout.
func layoutParam(w http.ResponseWriter, req *http.Request) (nodelink.Layout, bool) {
	q := req.URL.Query().Get("layout")
	if q == "" {
		return nodelink.LayoutRows, true
	}
	l, err := nodelink.ParseLayout(q)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return "", false
	}
	return l, true
}

func moduleSummaries(g *graph.Combined) []moduleSummary {
	modules := layout.GroupByModule(g.Nodes)
	out := make([]moduleSummary, 0, len(modules))
	for _, m := range modules {
		first := m.Nodes[0]
		out = append(out, moduleSummary{
			ModuleNum: m.Num,
			Course:    first.Course,
			Title:     first.ModuleTitle,
			Concepts:  len(m.Nodes),
		})
	}
	return out
}

func writeJSON(w http.ResponseWriter, logger *log.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		logger.Error("encode response", "err", err)
	}
}

// requestLogger logs each request at debug level.
func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"id", middleware.GetReqID(r.Context()),
				"duration", time.Since(start).Round(time.Microsecond))
		})
	}
}
