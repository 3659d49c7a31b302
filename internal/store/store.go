// Package store implements the collection store at the heart of the
// service: a fixed set of named, schema-less record collections, each
// persisted as one JSON document, with filtering, sorting, pagination,
// bulk transfer and an audit trail of every mutation.
package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrUnknownCollection is returned when a name is outside the closed
	// set of collections known at startup.
	ErrUnknownCollection = errors.New("collection not found")
	// ErrNotFound is returned when a collection holds no record with the
	// requested id.
	ErrNotFound = errors.New("record not found")
)

// AuditCollection is the collection audit entries are appended to.
// Mutations on it are never themselves audited.
const AuditCollection = "audit"

// Collections is the closed set of collection names, fixed at startup.
var Collections = []string{"patients", "appts", "inventory", "invoices", "users", AuditCollection}

// Store owns the full set of collections and provides atomic
// load/query/mutate/save per collection. Every operation runs one
// read-modify-write cycle against the collection's document under that
// collection's lock; operations on different collections never block each
// other.
type Store struct {
	files  *FileStore
	logger *zap.Logger
	locks  map[string]*sync.Mutex
}

// New builds a store over the given file persistence. The logger may be nil.
func New(files *FileStore, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	locks := make(map[string]*sync.Mutex, len(Collections))
	for _, col := range Collections {
		locks[col] = &sync.Mutex{}
	}
	return &Store{files: files, logger: logger, locks: locks}
}

// lock returns the mutex guarding a collection, or ErrUnknownCollection.
func (s *Store) lock(collection string) (*sync.Mutex, error) {
	mu, ok := s.locks[collection]
	if !ok {
		return nil, ErrUnknownCollection
	}
	return mu, nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// List returns the records of a collection after filtering, sorting and
// pagination. The returned total is counted after filtering but before
// pagination.
func (s *Store) List(collection string, opts ListOptions) (int, []Record, error) {
	mu, err := s.lock(collection)
	if err != nil {
		return 0, nil, err
	}
	mu.Lock()
	rows, err := s.files.Load(collection)
	mu.Unlock()
	if err != nil {
		return 0, nil, err
	}

	rows = filterRecords(rows, opts.Query)
	rows = sortRecords(rows, opts.SortKey, opts.Descending)
	return len(rows), paginate(rows, opts.Offset, opts.Limit), nil
}

// Get returns the record with the given id.
func (s *Store) Get(collection, id string) (Record, error) {
	mu, err := s.lock(collection)
	if err != nil {
		return nil, err
	}
	mu.Lock()
	rows, err := s.files.Load(collection)
	mu.Unlock()
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if row.ID() == id {
			return row, nil
		}
	}
	return nil, ErrNotFound
}

// Create appends a record to a collection, assigning an id and a createdAt
// timestamp when the payload carries none. The returned record is exactly
// what was persisted.
func (s *Store) Create(collection string, payload Record) (Record, error) {
	mu, err := s.lock(collection)
	if err != nil {
		return nil, err
	}

	row := payload.Clone()
	if row.ID() == "" {
		row["id"] = NewID(idPrefix(collection))
	}
	if v, ok := row["createdAt"]; !ok || v == nil {
		row["createdAt"] = now()
	}

	mu.Lock()
	rows, err := s.files.Load(collection)
	if err == nil {
		err = s.files.Save(collection, append(rows, row))
	}
	mu.Unlock()
	if err != nil {
		return nil, err
	}

	s.audit(collection, ActionCreate, Record{"col": collection, "id": row.ID()})
	return row, nil
}

// Update shallow-merges patch onto the record with the given id. The id of
// the result is always the one passed in, never the one in the patch.
func (s *Store) Update(collection, id string, patch Record) (Record, error) {
	mu, err := s.lock(collection)
	if err != nil {
		return nil, err
	}

	mu.Lock()
	rows, err := s.files.Load(collection)
	if err != nil {
		mu.Unlock()
		return nil, err
	}
	idx := -1
	for i, row := range rows {
		if row.ID() == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		mu.Unlock()
		return nil, ErrNotFound
	}
	merged := rows[idx].merge(patch)
	merged["id"] = id
	rows[idx] = merged
	err = s.files.Save(collection, rows)
	mu.Unlock()
	if err != nil {
		return nil, err
	}

	s.audit(collection, ActionUpdate, Record{"col": collection, "id": id})
	return merged, nil
}

// Delete removes the record with the given id and returns it. The relative
// order of the remaining records is preserved.
func (s *Store) Delete(collection, id string) (Record, error) {
	mu, err := s.lock(collection)
	if err != nil {
		return nil, err
	}

	mu.Lock()
	rows, err := s.files.Load(collection)
	if err != nil {
		mu.Unlock()
		return nil, err
	}
	idx := -1
	for i, row := range rows {
		if row.ID() == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		mu.Unlock()
		return nil, ErrNotFound
	}
	removed := rows[idx]
	rows = append(rows[:idx], rows[idx+1:]...)
	err = s.files.Save(collection, rows)
	mu.Unlock()
	if err != nil {
		return nil, err
	}

	s.audit(collection, ActionDelete, Record{"col": collection, "id": id})
	return removed, nil
}

// BulkImport appends a batch of records to a collection, assigning missing
// ids the same way Create does, and persists once. Incoming ids are not
// checked against existing ones; duplicates are the caller's problem.
func (s *Store) BulkImport(collection string, incoming []Record) (int, error) {
	mu, err := s.lock(collection)
	if err != nil {
		return 0, err
	}

	batch := make([]Record, 0, len(incoming))
	for _, payload := range incoming {
		row := payload.Clone()
		if row.ID() == "" {
			row["id"] = NewID(idPrefix(collection))
		}
		batch = append(batch, row)
	}

	mu.Lock()
	rows, err := s.files.Load(collection)
	if err == nil {
		err = s.files.Save(collection, append(rows, batch...))
	}
	mu.Unlock()
	if err != nil {
		return 0, err
	}

	s.audit(collection, ActionImport, Record{"col": collection, "count": len(batch)})
	return len(batch), nil
}

// ExportAll returns a snapshot of every collection. Each collection is read
// under its own lock, so a mutation racing with the export can leave the
// snapshot mixing pre- and post-mutation state across collections.
func (s *Store) ExportAll() (map[string][]Record, error) {
	out := make(map[string][]Record, len(Collections))
	for _, col := range Collections {
		mu := s.locks[col]
		mu.Lock()
		rows, err := s.files.Load(col)
		mu.Unlock()
		if err != nil {
			return nil, err
		}
		out[col] = rows
	}
	return out, nil
}

// ImportAll replaces the full contents of every known collection that is
// present in the snapshot as a valid record array. Collections absent or
// invalid in the snapshot are left untouched; unknown keys are ignored.
// Replacement happens one collection at a time, so a racing reader can
// observe a partially-replaced store. One summary audit entry lists every
// key present in the input, valid or not.
func (s *Store) ImportAll(snapshot map[string]any) error {
	for _, col := range Collections {
		v, ok := snapshot[col]
		if !ok {
			continue
		}
		rows, ok := toRecords(v)
		if !ok {
			continue
		}
		mu := s.locks[col]
		mu.Lock()
		err := s.files.Save(col, rows)
		mu.Unlock()
		if err != nil {
			return err
		}
	}

	cols := make([]string, 0, len(snapshot))
	for k := range snapshot {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	s.audit("", ActionImportAll, Record{"cols": cols})
	return nil
}
