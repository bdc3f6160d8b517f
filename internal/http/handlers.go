package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"savingsdash/internal/chart"
	"savingsdash/internal/core"
	"savingsdash/internal/dashboard"
	"savingsdash/internal/log"
	"savingsdash/internal/selection"
)

// dashboardPayload is the JSON body of every dashboard API response. The
// browser applies Commands to its Chart.js instances in order.
type dashboardPayload struct {
	View     dashboard.View     `json:"view"`
	Filters  []dashboard.Filter `json:"filters"`
	Narrow   bool               `json:"narrow"`
	Commands []chart.Command    `json:"commands"`
}

type viewportPayload struct {
	Width    int             `json:"width"`
	Narrow   bool            `json:"narrow"`
	Rebuilt  bool            `json:"rebuilt"`
	Commands []chart.Command `json:"commands"`
}

type pageData struct {
	View           dashboard.View
	Filters        []dashboard.Filter
	DatasetSavings string
	Degraded       bool
}

func (s *Server) payload(e *sessionEntry, v dashboard.View) dashboardPayload {
	return dashboardPayload{
		View:     v,
		Filters:  e.session.Filters(),
		Narrow:   e.session.Narrow(),
		Commands: e.commands(),
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		NotFoundError("Page not found").Write(w)
		return
	}
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded", log.FieldPath, r.URL.Path)
		InternalServerError("templates not loaded").Write(w)
		return
	}

	entry := s.sessions.get(w, r)
	entry.mu.Lock()
	view := entry.session.View()
	data := pageData{
		View:           view,
		Filters:        entry.session.Filters(),
		DatasetSavings: core.WithCurrency(core.Fixed(view.DatasetSavings, 2), s.currency),
		Degraded:       s.store.Degraded(),
	}
	entry.mu.Unlock()

	s.render(w, r, "dashboard.html", data)
}

// handleDashboard returns the current view and re-initializes the charts,
// for a page that has just loaded or reloaded.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	entry := s.sessions.get(w, r)
	entry.mu.Lock()
	p := s.payload(entry, entry.session.Redraw())
	entry.mu.Unlock()

	NewHTMXResponse().JSON(p).Write(w)
}

// handleSelection applies one selection event.
func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}

	events, err := ParseSelectionEvents(NewRequestBodyParser(r))
	if err != nil {
		s.countEvent(false)
		log.FromContext(r.Context()).DebugContext(r.Context(), "Invalid selection request",
			log.FieldOperation, log.OpParse,
			log.FieldError, err.Error())
		BadRequestJSON(err.Error()).Write(w)
		return
	}
	ev := events[len(events)-1]

	entry := s.sessions.get(w, r)
	entry.mu.Lock()
	var view dashboard.View
	for _, e := range events {
		if view, err = entry.session.Dispatch(e); err != nil {
			break
		}
	}
	p := s.payload(entry, view)
	entry.mu.Unlock()

	if err != nil {
		s.countEvent(false)
		status := http.StatusBadRequest
		if !errors.Is(err, selection.ErrUnknownEntity) && !errors.Is(err, selection.ErrUnknownEvent) {
			status = http.StatusInternalServerError
		}
		NewHTMXResponse().
			Status(status).
			TriggerErrorNotification("That company is not in the dashboard").
			JSONError(err.Error()).
			Write(w)
		return
	}
	s.countEvent(true)

	key, index := eventTarget(ev)
	s.events.LogSelectionChanged(r.Context(), entry.id, ev.Name(), key, index, len(view.Selection.Keys), len(view.Entities))

	if _, modifier := ev.(selection.SetModifier); !modifier {
		s.publish(r.Context(), entry.id, ev.Name(), view)
	}

	NewHTMXResponse().
		TriggerDashboardUpdated(view.Selection).
		JSON(p).
		Write(w)
}

// handleViewport records the browser width and returns chart rebuild
// commands when the layout class changed.
func (s *Server) handleViewport(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}

	width, err := ParseViewport(NewRequestBodyParser(r))
	if err != nil {
		BadRequestJSON(err.Error()).Write(w)
		return
	}

	entry := s.sessions.get(w, r)
	entry.mu.Lock()
	rebuilt := entry.session.Resize(width)
	p := viewportPayload{
		Width:    width,
		Narrow:   entry.session.Narrow(),
		Rebuilt:  rebuilt,
		Commands: entry.commands(),
	}
	entry.mu.Unlock()
	atomic.AddInt64(&s.metrics.resizes, 1)

	resp := NewHTMXResponse()
	if rebuilt {
		s.logger.DebugContext(r.Context(), "Charts rebuilt for new layout",
			log.FieldOperation, log.OpResize,
			log.FieldSessionID, entry.id,
			log.FieldWidth, width,
			"narrow", p.Narrow)
		resp.TriggerChartsRebuilt(p.Narrow)
	}
	resp.JSON(p).Write(w)
}

// handleSummary renders the cards and table partial for the current selection.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	if s.templates == nil {
		InternalServerError("templates not loaded").Write(w)
		return
	}

	entry := s.sessions.get(w, r)
	entry.mu.Lock()
	view := entry.session.View()
	entry.mu.Unlock()

	s.render(w, r, "summary", view)
}

// render executes into a buffer so a template error still yields a clean 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.events.LogError(r.Context(), "Template execution failed", err,
			log.ComponentTemplate, log.OpRender,
			log.LogFields{"template": name})
		InternalServerError("Error rendering dashboard").Write(w)
		return
	}
	NewHTMXResponse().BodyHTML(buf.String()).Write(w)
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewHTMXResponse().JSON(map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.metrics.uptime).String(),
	}).Write(w)
}

// handleReady reports whether the dashboard can serve. A degraded dataset
// is reported but does not fail readiness: the dashboard still renders.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]interface{})

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if s.store.Degraded() {
		checks["dataset"] = fmt.Sprintf("degraded: %v", s.store.Err())
	} else {
		checks["dataset"] = map[string]int{"entities": s.store.Len(), "timeline_points": len(s.store.Timeline())}
	}

	if s.ready != nil {
		if err := s.ready(ctx); err != nil {
			checks["upstream"] = fmt.Sprintf("failed: %v", err)
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
		} else {
			checks["upstream"] = "ok"
		}
	} else {
		checks["upstream"] = "not_configured"
	}

	checks["sessions"] = s.sessions.size()
	checks["analytics"] = s.publisher.Enabled()
	checks["rate_limiter"] = map[string]interface{}{
		"active_clients": s.limiter.ActiveClients(),
	}

	NewHTMXResponse().Status(httpStatus).JSON(map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	traceMetrics := s.tracer.GetMetrics()
	limitMetrics := s.limiter.GetMetrics()
	securityMetrics := s.detector.GetMetrics()

	var buf bytes.Buffer
	metric := func(name, help, kind string, value any) {
		fmt.Fprintf(&buf, "# HELP %s %s\n# TYPE %s %s\n%s %v\n\n", name, help, name, kind, name, value)
	}
	metric("http_requests_total", "Total number of HTTP requests", "counter", traceMetrics.TotalRequests)
	metric("selection_events_total", "Selection events applied", "counter", atomic.LoadInt64(&s.metrics.selectionEvents))
	metric("selection_events_rejected_total", "Selection events rejected", "counter", atomic.LoadInt64(&s.metrics.rejectedEvents))
	metric("viewport_changes_total", "Viewport updates received", "counter", atomic.LoadInt64(&s.metrics.resizes))
	metric("dashboard_sessions", "Live dashboard sessions", "gauge", s.sessions.size())
	metric("rate_limit_hits_total", "Total rate limit hits", "counter", limitMetrics.TotalHits)
	metric("suspicious_requests_total", "Total suspicious requests detected", "counter", securityMetrics.SuspiciousRequests)
	metric("uptime_seconds", "Application uptime in seconds", "gauge", int64(time.Since(s.metrics.uptime).Seconds()))

	NewHTMXResponse().
		Header("Content-Type", "text/plain; charset=utf-8").
		Body(buf.Bytes()).
		Write(w)
}

// eventTarget returns the entity key and position an event names, if any.
func eventTarget(ev selection.Event) (string, int) {
	switch e := ev.(type) {
	case selection.Toggle:
		return e.Key, e.Index
	case selection.RangeSelect:
		return e.Key, e.Index
	default:
		return "", -1
	}
}
