package devserver

import (
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// Config controls the behavior of the dev server. The zero value serves
// every request synchronously from an in-memory store, with authentication
// disabled.
type Config struct {
	// APIKey, when set, must match the Authorization header of every API
	// request. Empty disables authentication.
	APIKey string

	// DeferPut defers every write, and DeferGet every read, behind a 202
	// acknowledgment. DeferOver additionally defers any write whose body
	// is at least that many bytes; 0 disables the size trigger.
	DeferPut  bool
	DeferGet  bool
	DeferOver int

	// PendingPolls is the number of pending status responses served
	// before a deferred result is revealed.
	PendingPolls int

	// RetryAfter, when positive, is sent as a Retry-After header (in
	// seconds) with every pending status response.
	RetryAfter time.Duration

	// LegacyRequestIDField switches 202 acknowledgments to the request_id
	// field spelling.
	LegacyRequestIDField bool

	// Latency is an artificial delay added to every request.
	Latency time.Duration

	// Store is the persistence backend. Defaults to NewMemory().
	Store Store

	// NewRequestID generates deferred request ids. Defaults to
	// uuid.NewString.
	NewRequestID func() string

	// Logger receives request logs. Nil disables logging.
	Logger *slog.Logger
}

// Server simulates the Voids Datastore service. It wraps http.Server, so
// its Handler field can also be mounted directly in tests.
type Server struct {
	*http.Server
	cfg     Config
	store   Store
	pending *pendingSet
	logger  *slog.Logger
}

// New returns a dev server listening on addr once started. The addr may be
// empty when the Handler is used directly.
func New(cfg Config, addr string) *Server {
	if cfg.Store == nil {
		cfg.Store = NewMemory()
	}
	if cfg.NewRequestID == nil {
		cfg.NewRequestID = uuid.NewString
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &Server{
		cfg:     cfg,
		store:   cfg.Store,
		pending: newPendingSet(cfg.NewRequestID),
		logger:  cfg.Logger,
	}
	s.Server = &http.Server{
		Handler:           setupRouter(s),
		Addr:              addr,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      10 * time.Minute,
	}

	return s
}

// ListenAndServe is a replacement of http.ListenAndServe to ensure we set
// the correct server address before serving. This is needed when starting
// the server with address ':0'.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}

	s.Addr = ln.Addr().String()
	s.logger.Info("started dev server", "address", s.Addr)

	return s.Serve(ln)
}

// Close shuts the server down and releases the store.
func (s *Server) Close() error {
	err := s.Server.Close()
	if serr := s.store.Close(); err == nil {
		err = serr
	}
	return err
}

func setupRouter(s *Server) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(middleware.Recoverer)
	if s.cfg.Latency > 0 {
		r.Use(latency(s.cfg.Latency))
	}

	r.Mount("/api/v1", apiRouter(s))

	return r
}

func apiRouter(s *Server) chi.Router {
	r := chi.NewRouter()

	// Limit request sizes to 100MB
	r.Use(middleware.RequestSize(100 << (10 * 2)))
	if s.cfg.APIKey != "" {
		r.Use(s.requireAPIKey)
	}

	r.Get("/key/{namespace}/{key}", s.KeyGet)
	r.Post("/key/{namespace}/{key}", s.KeySet)
	r.Get("/status/{requestID}", s.Status)

	return r
}

// latency returns a middleware that delays every request by d.
func latency(d time.Duration) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			t := time.NewTimer(d)
			defer t.Stop()
			select {
			case <-t.C:
			case <-r.Context().Done():
				return
			}
			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(fn)
	}
}
