package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"savingsdash/internal/cache"
	"savingsdash/internal/dashboard"
	"savingsdash/internal/dataset"
	"savingsdash/internal/log"
	"savingsdash/internal/middleware/ratelimit"
	"savingsdash/internal/middleware/security"
	"savingsdash/internal/middleware/trace"
	"savingsdash/internal/services"
	appweb "savingsdash/web"
)

// Config wires the server to its dataset and collaborators.
type Config struct {
	Store       *dataset.Store
	Currency    string
	Breakpoint  int
	SessionTTL  time.Duration
	MaxSessions int
	// Publisher may be nil; analytics are then disabled.
	Publisher *services.SelectionPublisher
	// Ready reports upstream health for /readyz; nil means always ready.
	Ready func(context.Context) error
	// TrustedProxies are CIDRs whose forwarding headers are believed, in
	// addition to loopback and private networks.
	TrustedProxies []string
	Logger         *log.Logger
}

type appMetrics struct {
	selectionEvents int64
	rejectedEvents  int64
	resizes         int64
	uptime          time.Time
}

type Server struct {
	http.Server
	templates *template.Template
	logger    *log.Logger
	events    *log.StructuredLogger
	store     *dataset.Store
	currency  string
	sessions  *sessionStore
	publisher *services.SelectionPublisher
	ready     func(context.Context) error

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware
	metrics  appMetrics

	// publishMu orders publishWG.Add against Shutdown's Wait.
	publishMu    sync.Mutex
	closing      bool
	publishWG    sync.WaitGroup
	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(addr string, cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentHTTP)
	store := cfg.Store
	if store == nil {
		store = dataset.Empty()
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 30 * time.Minute
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = 500
	}

	mux := http.NewServeMux()
	detector := security.NewDetector(logger)
	for _, cidr := range cfg.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring invalid trusted proxy", "cidr", cidr, log.FieldError, err.Error())
		}
	}

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger:    logger,
		events:    log.NewStructuredLogger(logger),
		store:     store,
		currency:  cfg.Currency,
		sessions:  newSessionStore(store, cfg.Currency, cfg.Breakpoint, cfg.MaxSessions, cfg.SessionTTL, logger),
		publisher: cfg.Publisher,
		ready:     cfg.Ready,
		limiter:   ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		detector:  detector,
		tracer:    trace.NewMiddleware(logger, detector.ExtractClientIP),
		metrics:   appMetrics{uptime: time.Now()},
	}

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Warn("Failed parsing templates",
			log.FieldComponent, log.ComponentTemplate,
			log.FieldError, err.Error())
	} else {
		s.templates = t
	}

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		logger.Warn("Failed to mount embedded static FS", log.FieldError, err.Error())
	}

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)
	mux.HandleFunc("/api/dashboard", s.handleDashboard)
	mux.HandleFunc("/api/selection", s.handleSelection)
	mux.HandleFunc("/api/viewport", s.handleViewport)
	mux.HandleFunc("/ui/summary", s.handleSummary)

	var h http.Handler = mux
	h = s.limiter.Middleware(detector.ExtractClientIP, s.onRateLimited)(h)
	h = security.Headers(security.DefaultHeadersConfig())(h)
	h = detector.Middleware(h)
	h = s.tracer.Middleware(h)
	s.Handler = h

	return s
}

// SessionCache exposes the session cache for periodic expiry sweeps.
func (s *Server) SessionCache() cache.Cleaner { return s.sessions.cache }

// Shutdown stops accepting requests, waits for in-flight analytics
// publishes and stops the rate limiter.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.publishMu.Lock()
		s.closing = true
		s.publishMu.Unlock()

		shutdownErr = s.Server.Shutdown(ctx)

		done := make(chan struct{})
		go func() {
			s.publishWG.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			s.logger.Warn("Analytics publishes still in flight at shutdown",
				log.FieldOperation, log.OpShutdown)
		}

		s.limiter.Stop()
	})
	return shutdownErr
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	NewHTMXResponse().
		Status(http.StatusTooManyRequests).
		Header("Retry-After", "60").
		JSONError("rate limit exceeded, try again later").
		Write(w)
}

// publish sends the analytics message without holding up the response.
// Once Shutdown has started messages are dropped.
func (s *Server) publish(ctx context.Context, sessionID, event string, v dashboard.View) {
	if !s.publisher.Enabled() {
		return
	}
	s.publishMu.Lock()
	defer s.publishMu.Unlock()
	if s.closing {
		s.logger.DebugContext(ctx, "Dropped analytics message after shutdown",
			log.FieldOperation, log.OpPublish,
			log.FieldSessionID, sessionID,
			log.FieldEvent, event)
		return
	}
	s.publishWG.Add(1)
	go func() {
		defer s.publishWG.Done()
		s.publisher.SelectionChanged(context.WithoutCancel(ctx), sessionID, event, v)
	}()
}

func (s *Server) countEvent(ok bool) {
	if ok {
		atomic.AddInt64(&s.metrics.selectionEvents, 1)
	} else {
		atomic.AddInt64(&s.metrics.rejectedEvents, 1)
	}
}
