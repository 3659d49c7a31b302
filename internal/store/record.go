package store

// Record is a single schema-less row in a collection. Fields hold whatever
// JSON the client submitted: strings, numbers (float64 after decoding),
// booleans, nil, nested maps and arrays.
type Record map[string]any

// ID returns the record's id field, or "" when it is absent, null or not
// a string. Callers treat "" as "no id assigned yet".
func (r Record) ID() string {
	id, _ := r["id"].(string)
	return id
}

// Clone returns a shallow copy of the record. Nested values are shared;
// the store only ever replaces top-level fields, never mutates nested ones.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// merge applies patch onto r with shallow-merge semantics: incoming fields
// overwrite existing fields by name. The caller is responsible for pinning
// the id afterwards.
func (r Record) merge(patch Record) Record {
	out := r.Clone()
	for k, v := range patch {
		out[k] = v
	}
	return out
}

// toRecords converts a decoded JSON value into a slice of records. It
// succeeds only for arrays whose elements are all JSON objects; anything
// else is reported as invalid so callers can leave the target untouched.
func toRecords(v any) ([]Record, bool) {
	arr, ok := v.([]any)
	if !ok {
		return nil, false
	}
	rows := make([]Record, 0, len(arr))
	for _, el := range arr {
		m, ok := el.(map[string]any)
		if !ok {
			return nil, false
		}
		rows = append(rows, Record(m))
	}
	return rows, true
}
