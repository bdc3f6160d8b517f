package google

import (
	"encoding/json"
	"fmt"
	"strings"

	"savingsdash/internal/dataset"
)

var (
	entityColumns = []string{
		"company", "savings", "total_value", "coupons_count",
		"active_coupons", "usage_percentage", "remaining_value",
	}
	timelineColumns = []string{
		"month", "value", "original_value", "remaining_value",
		"coupons_count", "discount_percentage", "company", "companies",
	}
)

// rowsToJSON converts a values matrix whose first row is a header into a
// JSON list of objects. Only known columns are kept, blank cells are left
// out so they decode as absent, and list columns are split on commas.
func rowsToJSON(values [][]interface{}, known []string, lists map[string]bool) ([]byte, error) {
	records := make([]map[string]any, 0, max(len(values)-1, 0))
	if len(values) == 0 {
		return json.Marshal(records)
	}

	columns := map[int]string{}
	for i, h := range toStrings(values[0]) {
		name := normalizeHeader(h)
		if indexOf(known, name) >= 0 {
			columns[i] = name
		}
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("unexpected header: none of %v in %v", known, values[0])
	}

	for _, row := range values[1:] {
		rec := map[string]any{}
		for i, cell := range row {
			name, ok := columns[i]
			if !ok || isBlank(cell) {
				continue
			}
			if lists[name] {
				rec[name] = dataset.SplitKeys(fmt.Sprint(cell))
				continue
			}
			rec[name] = cell
		}
		if len(rec) > 0 {
			records = append(records, rec)
		}
	}
	return json.Marshal(records)
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(h)
}

func isBlank(cell interface{}) bool {
	if cell == nil {
		return true
	}
	s, ok := cell.(string)
	return ok && strings.TrimSpace(s) == ""
}

func toStrings(row []interface{}) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = fmt.Sprint(v)
	}
	return out
}

func indexOf(list []string, target string) int {
	for i, v := range list {
		if v == target {
			return i
		}
	}
	return -1
}
