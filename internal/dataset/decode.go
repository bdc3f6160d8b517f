package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"savingsdash/internal/core"
)

type record map[string]json.RawMessage

// decodeList splits raw into records. Blank input is an empty list; anything
// that is not a JSON array is malformed. Elements that are not objects are
// counted as skipped.
func decodeList(raw []byte, what string) ([]record, int, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, 0, nil
	}
	if trimmed[0] != '[' {
		return nil, 0, fmt.Errorf("%s: %w", what, ErrMalformedInput)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, 0, fmt.Errorf("%s: %w: %v", what, ErrMalformedInput, err)
	}
	records := make([]record, 0, len(items))
	skipped := 0
	for _, item := range items {
		var r record
		if err := json.Unmarshal(item, &r); err != nil || r == nil {
			skipped++
			continue
		}
		records = append(records, r)
	}
	return records, skipped, nil
}

func decodeEntities(raw []byte) ([]core.Entity, int, error) {
	records, skipped, err := decodeList(raw, "entities")
	if err != nil {
		return nil, 0, err
	}
	entities := make([]core.Entity, 0, len(records))
	for _, r := range records {
		e := core.Entity{
			Key:             strings.TrimSpace(r.text("company")),
			Savings:         nonNegative(r.number("savings")),
			TotalValue:      nonNegative(r.number("total_value")),
			CouponsCount:    count(r.number("coupons_count")),
			ActiveCoupons:   count(r.number("active_coupons")),
			UsagePercentage: math.Min(nonNegative(r.number("usage_percentage")), 100),
			RemainingValue:  nonNegative(r.number("remaining_value")),
		}
		if err := e.Validate(); err != nil {
			skipped++
			continue
		}
		entities = append(entities, e)
	}
	return entities, skipped, nil
}

func decodeTimeline(raw []byte) ([]core.TimelinePoint, int, error) {
	records, skipped, err := decodeList(raw, "timeline")
	if err != nil {
		return nil, 0, err
	}
	points := make([]core.TimelinePoint, 0, len(records))
	for _, r := range records {
		p := core.TimelinePoint{
			Month:              r.text("month"),
			Value:              r.number("value"),
			OriginalValue:      r.optionalNumber("original_value"),
			RemainingValue:     r.optionalNumber("remaining_value"),
			DiscountPercentage: r.optionalNumber("discount_percentage"),
			Company:            strings.TrimSpace(r.text("company")),
			Companies:          r.keyList("companies"),
		}
		if n := r.optionalNumber("coupons_count"); n != nil {
			p.CouponsCount = core.Int(count(*n))
		}
		points = append(points, p)
	}
	return points, skipped, nil
}

// text returns a string field. Numbers are accepted and printed as-is.
func (r record) text(field string) string {
	raw, ok := r[field]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// number reads a numeric field leniently: JSON numbers and numeric strings
// are accepted, everything else is zero.
func (r record) number(field string) float64 {
	if v := r.optionalNumber(field); v != nil {
		return *v
	}
	return 0
}

// optionalNumber is nil when the field is absent or null.
func (r record) optionalNumber(field string) *float64 {
	raw, ok := r[field]
	if !ok || string(bytes.TrimSpace(raw)) == "null" {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return core.Float(finite(f))
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return core.Float(finite(f))
		}
	}
	return core.Float(0)
}

// keyList reads a list of keys. A single comma separated string is split.
func (r record) keyList(field string) []string {
	raw, ok := r[field]
	if !ok {
		return nil
	}
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil {
		var joined string
		if err := json.Unmarshal(raw, &joined); err != nil {
			return nil
		}
		return SplitKeys(joined)
	}
	keys := make([]string, 0, len(list))
	for _, item := range list {
		var s string
		if err := json.Unmarshal(item, &s); err != nil {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			keys = append(keys, s)
		}
	}
	if len(keys) == 0 {
		return nil
	}
	return keys
}

// SplitKeys splits a comma separated key list, dropping blanks.
func SplitKeys(joined string) []string {
	var keys []string
	for _, part := range strings.Split(joined, ",") {
		if part = strings.TrimSpace(part); part != "" {
			keys = append(keys, part)
		}
	}
	return keys
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func nonNegative(f float64) float64 {
	return math.Max(f, 0)
}

func count(f float64) int {
	if f <= 0 {
		return 0
	}
	return int(math.Round(f))
}
