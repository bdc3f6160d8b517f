package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"savingsdash/internal/selection"
)

func newParser(body, contentType string) *RequestBodyParser {
	req := httptest.NewRequest(http.MethodPost, "/api/selection", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return NewRequestBodyParser(req)
}

func TestParseSelectionEvent(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    selection.Event
		wantErr error
	}{
		{
			name: "select all",
			body: `{"type": "select_all"}`,
			want: selection.SelectAll{},
		},
		{
			name: "toggle with index",
			body: `{"type": "toggle", "key": "Shufersal", "index": 2}`,
			want: selection.Toggle{Key: "Shufersal", Index: 2},
		},
		{
			name: "toggle without index",
			body: `{"type": "toggle", "key": "Shufersal"}`,
			want: selection.Toggle{Key: "Shufersal", Index: -1},
		},
		{
			name: "range from form data",
			body: "type=range&key=Rami+Levy&index=5",
			want: selection.RangeSelect{Key: "Rami Levy", Index: 5},
		},
		{
			name: "modifier on",
			body: `{"type": "modifier", "active": true}`,
			want: selection.SetModifier{Active: true},
		},
		{
			name: "modifier defaults off",
			body: `{"type": "modifier"}`,
			want: selection.SetModifier{},
		},
		{
			name:    "missing type",
			body:    `{"key": "A"}`,
			wantErr: ErrMissingEventType,
		},
		{
			name:    "unknown type",
			body:    `{"type": "lasso"}`,
			wantErr: ErrUnknownEventType,
		},
		{
			name:    "toggle without key",
			body:    `{"type": "toggle", "index": 1}`,
			wantErr: ErrMissingKey,
		},
		{
			name:    "bad index",
			body:    `{"type": "range", "key": "A", "index": "first"}`,
			wantErr: ErrInvalidIndex,
		},
		{
			name:    "bad flag",
			body:    `{"type": "modifier", "active": "maybe"}`,
			wantErr: ErrInvalidFlag,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSelectionEvent(newParser(tt.body, ""))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSelectionEvent() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseSelectionEvent() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestParseSelectionEvent_MalformedJSON(t *testing.T) {
	if _, err := ParseSelectionEvent(newParser(`{"type": `, "application/json")); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestParseSelectionEvents(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    []selection.Event
		wantErr error
	}{
		{
			name: "range carries the modifier",
			body: `{"type": "range", "key": "Victory", "index": 2, "active": true}`,
			want: []selection.Event{selection.SetModifier{Active: true}, selection.RangeSelect{Key: "Victory", Index: 2}},
		},
		{
			name: "range without flag",
			body: "type=range&key=Victory&index=2",
			want: []selection.Event{selection.RangeSelect{Key: "Victory", Index: 2}},
		},
		{
			name: "toggle ignores flag",
			body: `{"type": "toggle", "key": "Victory", "active": true}`,
			want: []selection.Event{selection.Toggle{Key: "Victory", Index: -1}},
		},
		{
			name:    "range with bad flag",
			body:    `{"type": "range", "key": "Victory", "active": "maybe"}`,
			wantErr: ErrInvalidFlag,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSelectionEvents(newParser(tt.body, ""))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSelectionEvents() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseSelectionEvents() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestParseViewport(t *testing.T) {
	tests := []struct {
		body    string
		want    int
		wantErr bool
	}{
		{`{"width": 480}`, 480, false},
		{`{"width": 0}`, 0, false},
		{"width=1280", 1280, false},
		{`{"width": -3}`, 0, true},
		{`{"width": "wide"}`, 0, true},
		{`{}`, 0, true},
	}

	for _, tt := range tests {
		got, err := ParseViewport(newParser(tt.body, ""))
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseViewport(%s) error = %v, wantErr %v", tt.body, err, tt.wantErr)
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseViewport(%s) = %d, want %d", tt.body, got, tt.want)
		}
	}
}

func TestRequestBodyParser_JSON(t *testing.T) {
	parser := newParser(`{"key": "Shufersal\u0007", "index": 3, "active": false}`, "application/json")
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !parser.IsJSON() {
		t.Error("Expected IsJSON() to be true")
	}
	if key := parser.Get("key"); key != "Shufersal" {
		t.Errorf("Get('key') = %q, control characters should be stripped", key)
	}
	if idx := parser.Get("index"); idx != "3" {
		t.Errorf("Get('index') = %q, want '3'", idx)
	}
	if active := parser.Get("active"); active != "false" {
		t.Errorf("Get('active') = %q, want 'false'", active)
	}
}

func TestRequestBodyParser_FormData(t *testing.T) {
	parser := newParser("key=Rami+Levy&index=4", "application/x-www-form-urlencoded")
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if parser.IsJSON() {
		t.Error("Expected IsJSON() to be false for form data")
	}
	if key := parser.Get("key"); key != "Rami Levy" {
		t.Errorf("Get('key') = %q, want 'Rami Levy'", key)
	}
}

func TestRequestBodyParser_EmptyBody(t *testing.T) {
	parser := newParser("", "")
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if val := parser.Get("nonexistent"); val != "" {
		t.Errorf("Get('nonexistent') = %q, want empty string", val)
	}
}

func TestRequireMethod(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		check   func(*http.Request) *HTMXResponseBuilder
		wantErr bool
	}{
		{"POST allowed", http.MethodPost, RequirePOST, false},
		{"GET rejected by POST", http.MethodGet, RequirePOST, true},
		{"GET allowed", http.MethodGet, RequireGET, false},
		{"HEAD allowed", http.MethodHead, RequireGET, false},
		{"PUT rejected by GET", http.MethodPut, RequireGET, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.check(httptest.NewRequest(tt.method, "/test", nil))
			if tt.wantErr && result == nil {
				t.Error("Expected error response but got nil")
			}
			if !tt.wantErr && result != nil {
				t.Error("Expected nil but got error response")
			}
		})
	}
}
