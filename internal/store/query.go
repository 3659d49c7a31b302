package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// MaxLimit caps the page size of a List call no matter what the caller asks
// for. DefaultLimit is what the HTTP layer uses when the caller does not
// specify one.
const (
	MaxLimit     = 1000
	DefaultLimit = 100
)

// ListOptions narrows and orders a List result. Limit is taken literally:
// a zero limit yields an empty page (the total is still reported).
type ListOptions struct {
	// Query keeps only records whose serialized form contains it,
	// case-insensitively. Empty means no filtering.
	Query string
	// SortKey orders records by one top-level field. Empty means
	// insertion order.
	SortKey string
	// Descending flips the sort direction.
	Descending bool
	// Offset and Limit slice the result after filtering and sorting.
	Offset int
	Limit  int
}

// filterRecords retains records whose full JSON serialization contains q,
// ignoring case. Any field can match; this is a substring scan, not a
// structured query.
func filterRecords(rows []Record, q string) []Record {
	if q == "" {
		return rows
	}
	needle := strings.ToLower(q)
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		serialized, err := json.Marshal(row)
		if err != nil {
			continue
		}
		if strings.Contains(strings.ToLower(string(serialized)), needle) {
			out = append(out, row)
		}
	}
	return out
}

// sortRecords stable-sorts rows by one field. Missing or null values order
// before any present value ascending, and mirror to the other end when
// descending. Ties keep their original relative order.
func sortRecords(rows []Record, key string, descending bool) []Record {
	if key == "" {
		return rows
	}
	sign := 1
	if descending {
		sign = -1
	}
	out := make([]Record, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		return sign*compareValues(out[i][key], out[j][key]) < 0
	})
	return out
}

// compareValues is the three-way comparator behind sortRecords. Nulls are
// less than everything; numbers compare numerically, strings and everything
// else lexicographically on their printed form.
func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	if an, aok := a.(float64); aok {
		if bn, bok := b.(float64); bok {
			switch {
			case an < bn:
				return -1
			case an > bn:
				return 1
			}
			return 0
		}
	}
	if as, aok := a.(string); aok {
		if bs, bok := b.(string); bok {
			return strings.Compare(as, bs)
		}
	}
	if ab, aok := a.(bool); aok {
		if bb, bok := b.(bool); bok {
			switch {
			case !ab && bb:
				return -1
			case ab && !bb:
				return 1
			}
			return 0
		}
	}
	// Mixed types: fall back to the printed representation.
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

// paginate slices rows to the half-open range [offset, offset+limit).
// Limit is clamped to MaxLimit, out-of-range offsets yield an empty slice
// rather than an error.
func paginate(rows []Record, offset, limit int) []Record {
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset >= len(rows) {
		return []Record{}
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}
