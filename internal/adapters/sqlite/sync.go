package sqlite

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"memoriakit/internal/domain"
)

// SyncFull performs a complete rebuild of the index
func (idx *Index) SyncFull() (*domain.SyncStats, error) {
	start := time.Now()
	stats := &domain.SyncStats{}

	// Clear existing data
	if _, err := idx.db.Exec(`DELETE FROM entries`); err != nil {
		return nil, err
	}

	err := filepath.Walk(idx.rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}

		// Skip hidden directories
		if info.IsDir() && strings.HasPrefix(info.Name(), ".") {
			return filepath.SkipDir
		}
		if info.IsDir() || !isIndexable(info.Name()) {
			return nil
		}

		relPath, _ := filepath.Rel(idx.rootPath, path)
		stats.FilesScanned++

		added, err := idx.indexFile(relPath, info.ModTime().Unix())
		if err != nil {
			return nil // Continue on error
		}
		stats.EntriesAdded += added

		return nil
	})

	if err != nil {
		return stats, err
	}

	// Update last sync time
	idx.db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES ('last_sync_time', ?)`,
		time.Now().Unix())

	stats.Duration = time.Since(start)
	return stats, nil
}

// SyncIncremental re-indexes only files whose mtime changed since the
// last sync, and drops entries of files that no longer exist.
func (idx *Index) SyncIncremental() (*domain.SyncStats, error) {
	start := time.Now()
	stats := &domain.SyncStats{}

	// Get last sync time
	var lastSyncUnix int64
	idx.db.QueryRow(`SELECT value FROM meta WHERE key = 'last_sync_time'`).Scan(&lastSyncUnix)

	// Track indexed paths to detect deletions
	existingPaths := make(map[string]bool)
	rows, err := idx.db.Query(`SELECT DISTINCT path FROM entries`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var path string
		rows.Scan(&path)
		existingPaths[path] = true
	}
	rows.Close()

	seenPaths := make(map[string]bool)

	err = filepath.Walk(idx.rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}

		if info.IsDir() && strings.HasPrefix(info.Name(), ".") {
			return filepath.SkipDir
		}
		if info.IsDir() || !isIndexable(info.Name()) {
			return nil
		}

		relPath, _ := filepath.Rel(idx.rootPath, path)
		seenPaths[relPath] = true
		stats.FilesScanned++

		mtime := info.ModTime().Unix()
		if mtime <= lastSyncUnix && existingPaths[relPath] {
			stats.FilesUnchanged++
			return nil
		}

		added, err := idx.indexFile(relPath, mtime)
		if err != nil {
			return nil
		}
		stats.EntriesAdded += added

		return nil
	})

	if err != nil {
		return stats, err
	}

	// Drop entries of deleted files
	for path := range existingPaths {
		if !seenPaths[path] {
			res, err := idx.db.Exec(`DELETE FROM entries WHERE path = ?`, path)
			if err != nil {
				continue
			}
			if n, err := res.RowsAffected(); err == nil {
				stats.EntriesRemoved += int(n)
			}
		}
	}

	// Update last sync time
	idx.db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES ('last_sync_time', ?)`,
		time.Now().Unix())

	stats.Duration = time.Since(start)
	return stats, nil
}

// indexFile parses one file and replaces its rows atomically. Returns
// the number of entries inserted.
func (idx *Index) indexFile(relPath string, mtime int64) (int, error) {
	content, err := os.ReadFile(filepath.Join(idx.rootPath, relPath))
	if err != nil {
		return 0, err
	}

	var doc *domain.Document
	if isSequenceFile(relPath) {
		doc = domain.ParseSequence(string(content))
	} else {
		doc = domain.ParseFeatures(string(content))
	}

	tx, err := idx.beginFileTx()
	if err != nil {
		return 0, err
	}
	defer tx.rollbackUnlessCommitted()

	if err := tx.deleteFileEntries(relPath); err != nil {
		return 0, err
	}

	added := 0
	for pos := range doc.Blocks {
		entry, ok := indexedEntry(relPath, pos, &doc.Blocks[pos], mtime)
		if !ok {
			continue
		}
		if err := tx.insertEntry(&entry); err != nil {
			return 0, err
		}
		added++
	}

	if err := tx.commit(); err != nil {
		return 0, err
	}
	return added, nil
}

// indexedEntry converts a block to its index row. Blank lines and
// unknown blocks are not worth a row.
func indexedEntry(path string, position int, b *domain.Block, mtime int64) (domain.IndexedEntry, bool) {
	e := domain.IndexedEntry{
		Path:     path,
		Position: position,
		Kind:     b.Kind,
		Mtime:    mtime,
	}

	switch b.Kind {
	case domain.KindUnknown, domain.KindBlank:
		return e, false
	case domain.KindInstruction:
		e.EntryID, _ = b.Field("Op")
	case domain.KindComment:
		e.Comment, _ = b.Field("Text")
	default:
		e.EntryID = domain.EntryID(b)
		e.Comment, _ = b.Field("Comment")
	}
	return e, true
}

// isIndexable reports whether the file name belongs to the index:
// ability-features text files and sequence files.
func isIndexable(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".txt" || ext == domain.SeqExtension
}

func isSequenceFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), domain.SeqExtension)
}
