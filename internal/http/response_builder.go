// Package http serves the savings dashboard: the page, its HTML partials
// and the JSON API that applies selection events and returns chart commands.
//
// This file implements the Builder Pattern for constructing responses. It
// provides a fluent API for HX-Trigger headers, JSON and HTML bodies.

package http

import (
	"encoding/json"
	"html/template"
	"net/http"

	"savingsdash/internal/selection"
)

// Client-side events announced through HX-Trigger
const (
	EventDashboardUpdated = "dashboard:updated"
	EventChartsRebuilt    = "charts:rebuilt"
)

// HTMXResponseBuilder provides a fluent API for building responses.
// It encapsulates the construction of HX-Trigger headers and response bodies.
type HTMXResponseBuilder struct {
	triggers   map[string]interface{}
	statusCode int
	body       []byte
	headers    map[string]string
}

// NewHTMXResponse creates a new response builder with default 200 status.
func NewHTMXResponse() *HTMXResponseBuilder {
	return &HTMXResponseBuilder{
		triggers:   make(map[string]interface{}),
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *HTMXResponseBuilder) Status(code int) *HTMXResponseBuilder {
	b.statusCode = code
	return b
}

// Trigger adds a named trigger with optional data to the HX-Trigger header.
func (b *HTMXResponseBuilder) Trigger(name string, data interface{}) *HTMXResponseBuilder {
	b.triggers[name] = data
	return b
}

// TriggerDashboardUpdated tells listeners (the summary partial) that the
// selection changed.
func (b *HTMXResponseBuilder) TriggerDashboardUpdated(snap selection.Snapshot) *HTMXResponseBuilder {
	return b.Trigger(EventDashboardUpdated, snap)
}

// TriggerChartsRebuilt announces a layout switch.
func (b *HTMXResponseBuilder) TriggerChartsRebuilt(narrow bool) *HTMXResponseBuilder {
	return b.Trigger(EventChartsRebuilt, map[string]bool{"narrow": narrow})
}

// NotificationType represents the type of notification to display.
type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
	NotificationWarning NotificationType = "warning"
	NotificationInfo    NotificationType = "info"
)

// TriggerNotification adds a show-notification trigger with the specified parameters.
func (b *HTMXResponseBuilder) TriggerNotification(notifType NotificationType, message string, durationMs int) *HTMXResponseBuilder {
	return b.Trigger("show-notification", map[string]interface{}{
		"type":     string(notifType),
		"message":  message,
		"duration": durationMs,
	})
}

// TriggerErrorNotification is a convenience method for error notifications.
func (b *HTMXResponseBuilder) TriggerErrorNotification(message string) *HTMXResponseBuilder {
	return b.TriggerNotification(NotificationError, message, 5000)
}

// Header adds a custom header to the response.
func (b *HTMXResponseBuilder) Header(name, value string) *HTMXResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the response body as bytes.
func (b *HTMXResponseBuilder) Body(content []byte) *HTMXResponseBuilder {
	b.body = content
	return b
}

// BodyHTML sets the response body as HTML content.
func (b *HTMXResponseBuilder) BodyHTML(html string) *HTMXResponseBuilder {
	b.headers["Content-Type"] = "text/html; charset=utf-8"
	b.body = []byte(html)
	return b
}

// JSON encodes v as the response body. An encoding failure turns the
// response into a 500.
func (b *HTMXResponseBuilder) JSON(v interface{}) *HTMXResponseBuilder {
	body, err := json.Marshal(v)
	if err != nil {
		return b.Status(http.StatusInternalServerError).JSONError("response encoding failed")
	}
	b.headers["Content-Type"] = "application/json"
	b.body = body
	return b
}

// JSONError sets a {"error": message} body.
func (b *HTMXResponseBuilder) JSONError(message string) *HTMXResponseBuilder {
	body, _ := json.Marshal(map[string]string{"error": message})
	b.headers["Content-Type"] = "application/json"
	b.body = body
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *HTMXResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}

	if len(b.triggers) > 0 {
		triggerJSON, err := json.Marshal(b.triggers)
		if err == nil {
			w.Header().Set("HX-Trigger", string(triggerJSON))
		}
	}

	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// ErrorResponse creates a standard error response with HTML formatting.
// The message is HTML-escaped for safety.
func ErrorResponse(statusCode int, message string) *HTMXResponseBuilder {
	escapedMsg := template.HTMLEscapeString(message)
	return NewHTMXResponse().
		Status(statusCode).
		BodyHTML(`<div class="error">` + escapedMsg + `</div>`)
}

// BadRequestJSON creates a 400 response with a JSON error body.
func BadRequestJSON(message string) *HTMXResponseBuilder {
	return NewHTMXResponse().Status(http.StatusBadRequest).JSONError(message)
}

// InternalServerError creates a 500 Internal Server Error response.
func InternalServerError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

// MethodNotAllowedError creates a 405 Method Not Allowed error response.
func MethodNotAllowedError(allowedMethods string) *HTMXResponseBuilder {
	return NewHTMXResponse().
		Status(http.StatusMethodNotAllowed).
		Header("Allow", allowedMethods)
}
