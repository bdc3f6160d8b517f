// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data:
// the selection event and viewport bodies posted by the dashboard page.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"savingsdash/internal/selection"
)

// maxBodyBytes bounds event bodies; a selection event is a few dozen bytes.
const maxBodyBytes = 64 << 10

var (
	ErrMissingEventType = errors.New("missing event type")
	ErrUnknownEventType = errors.New("unknown event type")
	ErrMissingKey       = errors.New("missing entity key")
	ErrInvalidIndex     = errors.New("invalid index")
	ErrInvalidFlag      = errors.New("invalid active flag")
	ErrInvalidWidth     = errors.New("invalid width")
)

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]interface{}
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}

	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	trimmed := strings.TrimSpace(string(p.body))
	if trimmed == "" {
		p.formData = url.Values{}
		return nil
	}

	// Try JSON first if content looks like JSON
	if trimmed[0] == '{' {
		p.jsonData = make(map[string]interface{})
		if err := json.Unmarshal([]byte(trimmed), &p.jsonData); err != nil {
			p.jsonData = nil
			p.err = err
			return err
		}
		return nil
	}

	// Fall back to form parsing
	p.formData, p.err = url.ParseQuery(trimmed)
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return strings.TrimSpace(sanitizeInput(stringValue(val)))
		}
		return ""
	}
	if p.formData != nil {
		return strings.TrimSpace(sanitizeInput(p.formData.Get(key)))
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// stringValue converts an interface{} to string.
func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// ParseSelectionEvent builds a selection event from a parsed body:
//
//	{"type": "select_all"}
//	{"type": "toggle", "key": "Shufersal", "index": 2}
//	{"type": "range", "key": "Rami Levy", "index": 5, "active": true}
//	{"type": "modifier", "active": true}
//
// The index is optional; the reducer trusts the key's position anyway.
// The active flag of a range body is read by ParseSelectionEvents.
func ParseSelectionEvent(p *RequestBodyParser) (selection.Event, error) {
	if err := p.Parse(); err != nil {
		return nil, fmt.Errorf("parse body: %w", err)
	}

	typ := p.Get("type")
	switch typ {
	case "":
		return nil, ErrMissingEventType
	case selection.NameSelectAll:
		return selection.SelectAll{}, nil
	case selection.NameModifier:
		active, err := parseFlag(p.Get("active"))
		if err != nil {
			return nil, err
		}
		return selection.SetModifier{Active: active}, nil
	case selection.NameToggle, selection.NameRangeSelect:
		key := p.Get("key")
		if key == "" {
			return nil, ErrMissingKey
		}
		index, err := parseIndex(p.Get("index"))
		if err != nil {
			return nil, err
		}
		if typ == selection.NameToggle {
			return selection.Toggle{Key: key, Index: index}, nil
		}
		return selection.RangeSelect{Key: key, Index: index}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEventType, typ)
	}
}

// ParseSelectionEvents is ParseSelectionEvent for a whole request. A range
// body with "active": true carries the modifier it was clicked with, so the
// SetModifier is returned ahead of the RangeSelect and the range does not
// depend on an earlier modifier request having arrived.
func ParseSelectionEvents(p *RequestBodyParser) ([]selection.Event, error) {
	ev, err := ParseSelectionEvent(p)
	if err != nil {
		return nil, err
	}
	if _, ok := ev.(selection.RangeSelect); !ok {
		return []selection.Event{ev}, nil
	}
	held, err := parseFlag(p.Get("active"))
	if err != nil {
		return nil, err
	}
	if !held {
		return []selection.Event{ev}, nil
	}
	return []selection.Event{selection.SetModifier{Active: true}, ev}, nil
}

// ParseViewport reads the {"width": N} body of a viewport change.
func ParseViewport(p *RequestBodyParser) (int, error) {
	if err := p.Parse(); err != nil {
		return 0, fmt.Errorf("parse body: %w", err)
	}
	width, err := strconv.Atoi(p.Get("width"))
	if err != nil || width < 0 {
		return 0, ErrInvalidWidth
	}
	return width, nil
}

func parseIndex(v string) (int, error) {
	if v == "" {
		return -1, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidIndex, v)
	}
	return i, nil
}

func parseFlag(v string) (bool, error) {
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: %q", ErrInvalidFlag, v)
	}
	return b, nil
}

// RequireMethod checks if the request method matches the expected method(s).
// Returns an error response builder if the method doesn't match.
func RequireMethod(r *http.Request, methods ...string) *HTMXResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// RequirePOST is a convenience function for POST-only handlers.
func RequirePOST(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodPost)
}

// RequireGET is a convenience function for read-only handlers.
func RequireGET(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodGet, http.MethodHead)
}
