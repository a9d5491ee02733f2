package domain

import "time"

// IndexedEntry is one cached entry header from a features file or one
// sequence file, used for fast search without re-parsing every file.
type IndexedEntry struct {
	Path     string // file path relative to the indexed root
	Position int    // block index within the file
	Kind     Kind
	EntryID  string // numeric ID or global marker (features files)
	Comment  string // header comment
	Mtime    int64  // unix mtime of the source file at index time
}

// SearchResult is a search hit against the entry index.
type SearchResult struct {
	Path     string
	Position int
	Kind     Kind
	EntryID  string
	Comment  string
}

// SyncStats holds statistics from an index sync.
type SyncStats struct {
	FilesScanned   int
	FilesUnchanged int
	EntriesAdded   int
	EntriesRemoved int
	Duration       time.Duration
}
