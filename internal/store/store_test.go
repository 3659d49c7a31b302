package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	files, err := NewFileStore(dir, nil)
	require.NoError(t, err)
	return New(files, nil), dir
}

func listAll(t *testing.T, s *Store, collection string) (int, []Record) {
	t.Helper()
	total, items, err := s.List(collection, ListOptions{Limit: MaxLimit})
	require.NoError(t, err)
	return total, items
}

func TestListEmptyCollections(t *testing.T) {
	s, dir := newTestStore(t)
	for _, col := range Collections {
		total, items := listAll(t, s, col)
		assert.Equal(t, 0, total, col)
		assert.Empty(t, items, col)

		// Every collection gets a backing document at startup.
		_, err := os.Stat(filepath.Join(dir, col+".json"))
		assert.NoError(t, err, col)
	}
}

func TestUnknownCollection(t *testing.T) {
	s, _ := newTestStore(t)

	_, _, err := s.List("bogus", ListOptions{})
	assert.ErrorIs(t, err, ErrUnknownCollection)
	_, err = s.Get("bogus", "x")
	assert.ErrorIs(t, err, ErrUnknownCollection)
	_, err = s.Create("bogus", Record{})
	assert.ErrorIs(t, err, ErrUnknownCollection)
	_, err = s.Update("bogus", "x", Record{})
	assert.ErrorIs(t, err, ErrUnknownCollection)
	_, err = s.Delete("bogus", "x")
	assert.ErrorIs(t, err, ErrUnknownCollection)
	_, err = s.BulkImport("bogus", nil)
	assert.ErrorIs(t, err, ErrUnknownCollection)
}

func TestCreateAssignsIDAndTimestamp(t *testing.T) {
	s, _ := newTestStore(t)

	row, err := s.Create("patients", Record{"name": "Ayşe"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(row.ID(), "pat_"), "id %q should carry the collection prefix", row.ID())
	assert.NotEmpty(t, row["createdAt"])

	got, err := s.Get("patients", row.ID())
	require.NoError(t, err)
	if diff := cmp.Diff(row, got); diff != "" {
		t.Errorf("stored record differs from returned one (-want +got):\n%s", diff)
	}
}

func TestCreateKeepsProvidedFields(t *testing.T) {
	s, _ := newTestStore(t)

	row, err := s.Create("patients", Record{"id": "p1", "createdAt": "2020-01-01T00:00:00Z"})
	require.NoError(t, err)
	assert.Equal(t, "p1", row.ID())
	assert.Equal(t, "2020-01-01T00:00:00Z", row["createdAt"])
}

func TestCreateTreatsNullIDAsAbsent(t *testing.T) {
	s, _ := newTestStore(t)

	row, err := s.Create("patients", Record{"id": nil, "name": "B"})
	require.NoError(t, err)
	assert.NotEmpty(t, row.ID())
}

func TestUpdateMergePinsID(t *testing.T) {
	s, _ := newTestStore(t)
	row, err := s.Create("patients", Record{"name": "Ayşe", "phone": "123"})
	require.NoError(t, err)

	merged, err := s.Update("patients", row.ID(), Record{"id": "hijacked", "phone": "456"})
	require.NoError(t, err)
	assert.Equal(t, row.ID(), merged.ID())
	assert.Equal(t, "456", merged["phone"])
	assert.Equal(t, "Ayşe", merged["name"], "untouched fields survive the merge")

	_, err = s.Update("patients", "missing", Record{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdatePreservesOrder(t *testing.T) {
	s, _ := newTestStore(t)
	for _, name := range []string{"a", "b", "c"} {
		_, err := s.Create("users", Record{"id": name})
		require.NoError(t, err)
	}

	_, err := s.Update("users", "b", Record{"role": "admin"})
	require.NoError(t, err)

	_, items := listAll(t, s, "users")
	require.Len(t, items, 3)
	assert.Equal(t, "b", items[1].ID())
}

func TestDeleteThenGet(t *testing.T) {
	s, _ := newTestStore(t)
	first, err := s.Create("inventory", Record{"name": "screw"})
	require.NoError(t, err)
	second, err := s.Create("inventory", Record{"name": "vial"})
	require.NoError(t, err)
	third, err := s.Create("inventory", Record{"name": "syringe"})
	require.NoError(t, err)

	removed, err := s.Delete("inventory", second.ID())
	require.NoError(t, err)
	assert.Equal(t, "vial", removed["name"])

	_, err = s.Get("inventory", second.ID())
	assert.ErrorIs(t, err, ErrNotFound)

	_, items := listAll(t, s, "inventory")
	require.Len(t, items, 2)
	assert.Equal(t, first.ID(), items[0].ID())
	assert.Equal(t, third.ID(), items[1].ID())

	_, err = s.Delete("inventory", second.ID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBulkImport(t *testing.T) {
	s, _ := newTestStore(t)
	before, _ := listAll(t, s, "inventory")

	count, err := s.BulkImport("inventory", []Record{{"name": "X", "stock": 5}})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	after, items := listAll(t, s, "inventory")
	assert.Equal(t, before+1, after)
	assert.NotEmpty(t, items[len(items)-1].ID())
}

func TestBulkImportDoesNotDedupe(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.Create("users", Record{"id": "u1"})
	require.NoError(t, err)

	count, err := s.BulkImport("users", []Record{{"id": "u1", "name": "dup"}})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	total, _ := listAll(t, s, "users")
	assert.Equal(t, 2, total, "duplicate ids from bulk import are kept as-is")
}

func TestExportAll(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.Create("patients", Record{"name": "A"})
	require.NoError(t, err)

	snapshot, err := s.ExportAll()
	require.NoError(t, err)
	assert.Len(t, snapshot, len(Collections))
	assert.Len(t, snapshot["patients"], 1)
	assert.Empty(t, snapshot["invoices"])
}

func TestImportAllReplacesNamedCollections(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.Create("patients", Record{"id": "old"})
	require.NoError(t, err)
	_, err = s.Create("appts", Record{"id": "a1"})
	require.NoError(t, err)

	err = s.ImportAll(map[string]any{
		"patients": []any{map[string]any{"id": "p1"}},
		"unknown":  []any{map[string]any{"id": "x"}},
		"invoices": "not an array",
	})
	require.NoError(t, err)

	_, patients := listAll(t, s, "patients")
	require.Len(t, patients, 1, "patients must be replaced, not merged")
	assert.Equal(t, "p1", patients[0].ID())

	total, _ := listAll(t, s, "appts")
	assert.Equal(t, 1, total, "collections absent from the snapshot stay untouched")

	total, _ = listAll(t, s, "invoices")
	assert.Equal(t, 0, total, "invalid snapshot values leave the collection alone")
}

func TestAuditTrail(t *testing.T) {
	s, _ := newTestStore(t)

	row, err := s.Create("patients", Record{"name": "A"})
	require.NoError(t, err)
	_, err = s.Update("patients", row.ID(), Record{"name": "B"})
	require.NoError(t, err)
	_, err = s.Delete("patients", row.ID())
	require.NoError(t, err)
	err = s.ImportAll(map[string]any{"users": []any{}})
	require.NoError(t, err)

	_, entries := listAll(t, s, AuditCollection)
	require.Len(t, entries, 4)

	actions := make([]string, 0, len(entries))
	for _, e := range entries {
		actions = append(actions, e["action"].(string))
		assert.NotEmpty(t, e["id"])
		assert.NotEmpty(t, e["time"])
	}
	assert.Equal(t, []string{ActionCreate, ActionUpdate, ActionDelete, ActionImportAll}, actions)

	detail := entries[0]["detail"].(map[string]any)
	assert.Equal(t, "patients", detail["col"])
	assert.Equal(t, row.ID(), detail["id"])
}

func TestAuditCollectionIsNotSelfAudited(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.Create(AuditCollection, Record{"action": "manual"})
	require.NoError(t, err)

	total, _ := listAll(t, s, AuditCollection)
	assert.Equal(t, 1, total, "mutating the audit collection must not append a second entry")
}

func TestConcurrentCreates(t *testing.T) {
	s, _ := newTestStore(t)
	const n = 20

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := s.Create("patients", Record{"name": fmt.Sprintf("p%d", i)}); err != nil {
				t.Errorf("concurrent create failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	total, items := listAll(t, s, "patients")
	assert.Equal(t, n, total, "no create may be lost")

	seen := make(map[string]bool, n)
	for _, row := range items {
		assert.False(t, seen[row.ID()], "duplicate id %q", row.ID())
		seen[row.ID()] = true
	}
}

func TestPersistenceAcrossRestart(t *testing.T) {
	s, dir := newTestStore(t)
	row, err := s.Create("patients", Record{"name": "A"})
	require.NoError(t, err)

	files, err := NewFileStore(dir, nil)
	require.NoError(t, err)
	reopened := New(files, nil)

	got, err := reopened.Get("patients", row.ID())
	require.NoError(t, err)
	assert.Equal(t, "A", got["name"])
}

func TestMalformedDocumentRecoveredAsEmpty(t *testing.T) {
	s, dir := newTestStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "patients.json"), []byte("{not json"), 0644))

	total, items := listAll(t, s, "patients")
	assert.Equal(t, 0, total)
	assert.Empty(t, items)

	// The next write replaces the damaged document.
	_, err := s.Create("patients", Record{"name": "A"})
	require.NoError(t, err)
	total, _ = listAll(t, s, "patients")
	assert.Equal(t, 1, total)
}

func TestSortDescendingScenario(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.Create("patients", Record{"name": "A"})
	require.NoError(t, err)
	_, err = s.Create("patients", Record{"name": "B", "id": nil})
	require.NoError(t, err)
	_, err = s.Create("patients", Record{"note": "no name field"})
	require.NoError(t, err)

	_, items, err := s.List("patients", ListOptions{SortKey: "name", Descending: true, Limit: MaxLimit})
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "B", items[0]["name"])
	assert.Equal(t, "A", items[1]["name"])
	assert.Nil(t, items[2]["name"], "the record missing the sort field lands at the far end")
}

func TestListFilterCountsBeforePagination(t *testing.T) {
	s, _ := newTestStore(t)
	for i := 0; i < 5; i++ {
		_, err := s.Create("patients", Record{"name": fmt.Sprintf("match-%d", i)})
		require.NoError(t, err)
	}
	_, err := s.Create("patients", Record{"name": "other"})
	require.NoError(t, err)

	total, items, err := s.List("patients", ListOptions{Query: "MATCH", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, total, "total counts matches after filtering, before pagination")
	assert.Len(t, items, 2)
}

func TestNewIDShape(t *testing.T) {
	id := NewID("pat")
	assert.True(t, strings.HasPrefix(id, "pat_"))
	assert.Len(t, id, len("pat_")+idSuffixLen)
	assert.NotEqual(t, id, NewID("pat"))
}
