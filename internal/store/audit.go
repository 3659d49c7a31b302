package store

import "go.uber.org/zap"

// Audit actions, one per kind of mutation.
const (
	ActionCreate    = "create"
	ActionUpdate    = "update"
	ActionDelete    = "delete"
	ActionImport    = "import"
	ActionImportAll = "import_all"
)

// audit appends one entry to the audit collection describing a mutation on
// target. Mutations on the audit collection itself are not recorded. The
// write is best-effort: it happens synchronously after the primary persist,
// but a failure here is logged and never rolls back or fails the mutation
// it describes.
func (s *Store) audit(target, action string, detail Record) {
	if target == AuditCollection {
		return
	}
	entry := Record{
		"id":     NewID(idPrefix(AuditCollection)),
		"time":   now(),
		"action": action,
		"detail": detail,
	}

	mu := s.locks[AuditCollection]
	mu.Lock()
	rows, err := s.files.Load(AuditCollection)
	if err == nil {
		err = s.files.Save(AuditCollection, append(rows, entry))
	}
	mu.Unlock()
	if err != nil {
		s.logger.Warn("audit write failed",
			zap.String("action", action),
			zap.Error(err))
	}
}
