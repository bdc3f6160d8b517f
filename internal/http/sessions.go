package http

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"savingsdash/internal/cache"
	"savingsdash/internal/chart"
	"savingsdash/internal/dashboard"
	"savingsdash/internal/dataset"
	"savingsdash/internal/log"
)

const sessionCookie = "savings_session"

// sessionEntry is one browser tab's dashboard. Its charts live in the
// browser, so the surfaces are recorders drained into every response.
type sessionEntry struct {
	mu       sync.Mutex
	id       string
	session  *dashboard.Session
	category *chart.Recorder
	timeline *chart.Recorder
}

// commands drains both recorders, category first.
func (e *sessionEntry) commands() []chart.Command {
	out := e.category.Drain()
	out = append(out, e.timeline.Drain()...)
	if out == nil {
		out = []chart.Command{}
	}
	return out
}

// sessionStore keeps sessions in an LRU cache with a sliding TTL.
type sessionStore struct {
	cache      *cache.LRUCache[*sessionEntry]
	store      *dataset.Store
	currency   string
	breakpoint int
	ttl        time.Duration
	logger     *log.Logger
}

func newSessionStore(store *dataset.Store, currency string, breakpoint, maxSessions int, ttl time.Duration, logger *log.Logger) *sessionStore {
	s := &sessionStore{
		cache:      cache.NewLRUCache[*sessionEntry](maxSessions, ttl),
		store:      store,
		currency:   currency,
		breakpoint: breakpoint,
		ttl:        ttl,
		logger:     logger,
	}
	s.cache.OnEvict(func(id string, _ *sessionEntry, reason cache.EvictReason) {
		logger.Debug("Dashboard session dropped",
			log.FieldSessionID, id,
			"reason", string(reason))
	})
	return s
}

func (s *sessionStore) create(id string) *sessionEntry {
	e := &sessionEntry{
		id:       id,
		category: chart.NewRecorder(chart.KindCategory),
		timeline: chart.NewRecorder(chart.KindTimeline),
	}
	e.session = dashboard.New(s.store, dashboard.Config{
		Currency: s.currency,
		Viewport: chart.Viewport{Breakpoint: s.breakpoint},
		Category: e.category,
		Timeline: e.timeline,
		Logger:   s.logger.With(log.FieldSessionID, id),
	})
	return e
}

// get returns the session named by the request cookie, creating one when
// the cookie is missing, malformed or names an expired session. The cookie
// is (re)issued on every call so its expiry follows the cache TTL.
func (s *sessionStore) get(w http.ResponseWriter, r *http.Request) *sessionEntry {
	id := ""
	if c, err := r.Cookie(sessionCookie); err == nil {
		if parsed, err := uuid.Parse(c.Value); err == nil {
			id = parsed.String()
		}
	}
	if id == "" {
		id = uuid.NewString()
	}

	entry, created := s.cache.GetOrCreate(id, func() *sessionEntry { return s.create(id) })
	if created {
		s.logger.DebugContext(r.Context(), "Dashboard session created", log.FieldSessionID, id)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	return entry
}

func (s *sessionStore) size() int { return s.cache.Size() }
