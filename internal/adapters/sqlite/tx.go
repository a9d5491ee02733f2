package sqlite

import (
	"database/sql"

	"memoriakit/internal/domain"
)

// fileTx batches the delete-then-insert of one file's rows so a
// re-index either fully replaces the file's entries or leaves them
// untouched.
type fileTx struct {
	tx        *sql.Tx
	committed bool
}

func (idx *Index) beginFileTx() (*fileTx, error) {
	tx, err := idx.db.Begin()
	if err != nil {
		return nil, err
	}
	return &fileTx{tx: tx}, nil
}

func (t *fileTx) deleteFileEntries(path string) error {
	_, err := t.tx.Exec(`DELETE FROM entries WHERE path = ?`, path)
	return err
}

func (t *fileTx) insertEntry(e *domain.IndexedEntry) error {
	_, err := t.tx.Exec(`
		INSERT OR REPLACE INTO entries (path, position, kind, entry_id, comment, mtime)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.Path, e.Position, e.Kind.String(), nullString(e.EntryID), nullString(e.Comment), e.Mtime)
	return err
}

func (t *fileTx) commit() error {
	if err := t.tx.Commit(); err != nil {
		return err
	}
	t.committed = true
	return nil
}

func (t *fileTx) rollbackUnlessCommitted() {
	if !t.committed {
		t.tx.Rollback()
	}
}

// nullString returns nil for empty strings (for nullable columns)
func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
