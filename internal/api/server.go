// Package api serves the read-only speech REST API used by mobile apps. It
// exposes article text split into sentences, word counts and duration
// estimates; audio is always synthesised on the client.
package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"github.com/wptts/readaloud/internal/cache"
	"github.com/wptts/readaloud/internal/config"
	"github.com/wptts/readaloud/internal/store"
)

// Posts is the post storage the API reads from.
type Posts interface {
	Get(ctx context.Context, id int64) (*store.Post, error)
	List(ctx context.Context, q store.Query) ([]store.Post, int, error)
}

// Options configures a Server.
type Options struct {
	// BaseURL prefixes speech_endpoint links. When empty it is derived from
	// the request.
	BaseURL string

	CORSOrigins []string
	RateLimit   float64 // requests per second, 0 disables limiting
	RateBurst   int
	CacheBytes  int64

	Logger *log.Logger
}

// OptionsFromConfig maps the server runtime configuration.
func OptionsFromConfig(c config.ServerConfig, logger *log.Logger) Options {
	return Options{
		BaseURL:     c.BaseURL,
		CORSOrigins: c.CORSOrigins,
		RateLimit:   c.RateLimit,
		RateBurst:   c.RateBurst,
		CacheBytes:  c.CacheBytes,
		Logger:      logger,
	}
}

// Server is the REST API handler.
type Server struct {
	brand    config.Brand
	posts    Posts
	settings atomic.Pointer[config.Settings]
	docs     *cache.CompressedCache
	limiter  *rate.Limiter
	baseURL  string
	logger   *log.Logger

	router  *mux.Router
	handler http.Handler
}

// New creates the API for brand. Routes live under /{brand namespace}.
func New(brand config.Brand, posts Posts, settings config.Settings, opts Options) (*Server, error) {
	docs, err := cache.NewCompressedCache(opts.CacheBytes)
	if err != nil {
		return nil, err
	}

	s := &Server{
		brand:   brand,
		posts:   posts,
		docs:    docs,
		baseURL: opts.BaseURL,
		logger:  opts.Logger,
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	s.settings.Store(&settings)

	s.router = mux.NewRouter()
	s.router.NotFoundHandler = http.HandlerFunc(s.notFound)
	s.router.MethodNotAllowedHandler = http.HandlerFunc(s.notFound)

	ns := s.router.PathPrefix("/" + brand.Namespace).Subrouter()
	ns.Use(s.requireEnabled)
	ns.HandleFunc("/speech/{id}", s.getSpeech).Methods(http.MethodGet).Name("speech")
	ns.HandleFunc("/settings", s.getSettings).Methods(http.MethodGet)
	ns.HandleFunc("/posts", s.listPosts).Methods(http.MethodGet)

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})

	s.handler = s.logRequests(s.rateLimit(c.Handler(gzhttp.GzipHandler(s.router))))
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Settings returns the settings in effect.
func (s *Server) Settings() config.Settings {
	return *s.settings.Load()
}

// SetSettings swaps the settings in effect. Cached documents embed settings
// and are dropped.
func (s *Server) SetSettings(settings config.Settings) {
	s.settings.Store(&settings)
	s.docs.Purge()
}

// CacheStats reports document cache statistics.
func (s *Server) CacheStats() cache.Stats {
	return s.docs.Stats()
}

// Janitor prunes cached documents older than maxAge every interval until ctx
// ends.
func (s *Server) Janitor(ctx context.Context, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.docs.Prune(maxAge); n > 0 {
				s.logger.Debug("Pruned cached documents", "count", n)
			}
		}
	}
}

// Close releases the document cache.
func (s *Server) Close() {
	s.docs.Close()
}

func (s *Server) notFound(w http.ResponseWriter, _ *http.Request) {
	writeError(w, noRoute())
}

// requireEnabled hides every route while the API is switched off, as if it
// had never been registered.
func (s *Server) requireEnabled(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.Settings().RESTAPIEnabled {
			writeError(w, noRoute())
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			writeError(w, &Error{
				Code:    s.brand.Code("rate_limited"),
				Message: "Too many requests.",
				Data:    ErrorData{Status: http.StatusTooManyRequests},
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("Request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}

// endpoint returns the absolute speech URL for a post.
func (s *Server) endpoint(r *http.Request, id int64) string {
	u, err := s.router.Get("speech").URL("id", strconv.FormatInt(id, 10))
	if err != nil {
		return ""
	}

	base := s.baseURL
	if base == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if p := r.Header.Get("X-Forwarded-Proto"); p != "" {
			scheme = p
		}
		base = scheme + "://" + r.Host
	}
	return strings.TrimRight(base, "/") + u.Path
}
