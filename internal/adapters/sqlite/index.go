package sqlite

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"memoriakit/internal/domain"
	"memoriakit/internal/ports"

	_ "github.com/mattn/go-sqlite3"
)

const schemaVersion = "1"

// Index implements ports.EntryIndex using SQLite. One database per
// indexed root, kept under the XDG data directory.
type Index struct {
	db       *sql.DB
	rootPath string
	dbPath   string
}

// Ensure Index implements EntryIndex
var _ ports.EntryIndex = (*Index)(nil)

// NewIndex creates a new SQLite index
func NewIndex() *Index {
	return &Index{}
}

// Open initializes the index for the given root path
func (idx *Index) Open(rootPath string) error {
	// Expand ~ in path
	if len(rootPath) > 0 && rootPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		rootPath = filepath.Join(home, rootPath[1:])
	}

	idx.rootPath = rootPath
	idx.dbPath = databasePath(rootPath)

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(idx.dbPath), 0755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite3", idx.dbPath+"?_journal_mode=WAL")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	idx.db = db

	// Performance pragmas + schema in single batch (reduces round-trips)
	_, err = db.Exec(`
		PRAGMA synchronous = NORMAL;
		PRAGMA cache_size = -64000;
		PRAGMA temp_store = MEMORY;
		PRAGMA busy_timeout = 5000;

		CREATE TABLE IF NOT EXISTS entries (
			path TEXT NOT NULL,
			position INTEGER NOT NULL,
			kind TEXT NOT NULL,
			entry_id TEXT,
			comment TEXT,
			mtime INTEGER NOT NULL,
			PRIMARY KEY (path, position)
		);
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_entries_entry_id ON entries(entry_id);
		CREATE INDEX IF NOT EXISTS idx_entries_kind ON entries(kind);
	`)
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to setup database: %w", err)
	}

	// Update metadata
	if err := idx.updateMeta(); err != nil {
		db.Close()
		return fmt.Errorf("failed to update metadata: %w", err)
	}

	return nil
}

// Close closes the database connection
func (idx *Index) Close() error {
	if idx.db != nil {
		return idx.db.Close()
	}
	return nil
}

// NeedsFullRebuild returns true if the index should be fully rebuilt
func (idx *Index) NeedsFullRebuild() bool {
	var version, rootHash string

	idx.db.QueryRow("SELECT value FROM meta WHERE key = 'schema_version'").Scan(&version)
	idx.db.QueryRow("SELECT value FROM meta WHERE key = 'root_path_hash'").Scan(&rootHash)

	expectedHash := hashRootPath(idx.rootPath)

	return version != schemaVersion || rootHash != expectedHash
}

// databasePath returns the path for the SQLite database
func databasePath(rootPath string) string {
	// XDG data directory
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}

	// Hash root path for unique DB name
	hash := hashRootPath(rootPath)

	return filepath.Join(dataHome, "memoriakit", hash+".db")
}

// hashRootPath returns a short hash of the indexed root path
func hashRootPath(rootPath string) string {
	h := sha256.Sum256([]byte(rootPath))
	return hex.EncodeToString(h[:8]) // First 8 bytes = 16 hex chars
}

// updateMeta updates the schema version and root path hash
func (idx *Index) updateMeta() error {
	_, err := idx.db.Exec(`
		INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?);
		INSERT OR REPLACE INTO meta (key, value) VALUES ('root_path_hash', ?);
	`, schemaVersion, hashRootPath(idx.rootPath))
	return err
}

// GetEntries returns the indexed entries of one file, ordered by their
// position in the file.
func (idx *Index) GetEntries(path string) ([]domain.IndexedEntry, error) {
	rows, err := idx.db.Query(`
		SELECT path, position, kind, entry_id, comment, mtime
		FROM entries WHERE path = ?
		ORDER BY position
	`, path)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.IndexedEntry
	for rows.Next() {
		var e domain.IndexedEntry
		var kind string
		var entryID, comment sql.NullString
		if err := rows.Scan(&e.Path, &e.Position, &kind, &entryID, &comment, &e.Mtime); err != nil {
			return nil, err
		}
		e.Kind = domain.ParseKind(kind)
		e.EntryID = entryID.String
		e.Comment = comment.String
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Search returns entries whose ID, comment, or kind matches the query,
// case-insensitively, ordered by file path and position.
func (idx *Index) Search(query string) ([]domain.SearchResult, error) {
	pattern := "%" + query + "%"
	rows, err := idx.db.Query(`
		SELECT path, position, kind, entry_id, comment
		FROM entries
		WHERE entry_id LIKE ? OR comment LIKE ? OR kind LIKE ?
		ORDER BY path, position
	`, pattern, pattern, pattern)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.SearchResult
	for rows.Next() {
		var r domain.SearchResult
		var kind string
		var entryID, comment sql.NullString
		if err := rows.Scan(&r.Path, &r.Position, &kind, &entryID, &comment); err != nil {
			return nil, err
		}
		r.Kind = domain.ParseKind(kind)
		r.EntryID = entryID.String
		r.Comment = comment.String
		results = append(results, r)
	}

	return results, rows.Err()
}
