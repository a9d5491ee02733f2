package ports

import "memoriakit/internal/domain"

// EntryIndex provides cached search over the entry headers of a tree
// of feature and sequence files, so browsing does not re-parse every
// file on each query.
type EntryIndex interface {
	// Lifecycle
	Open(rootPath string) error
	Close() error

	// Sync operations
	NeedsFullRebuild() bool
	SyncIncremental() (*domain.SyncStats, error)
	SyncFull() (*domain.SyncStats, error)

	// Queries
	GetEntries(path string) ([]domain.IndexedEntry, error)
	Search(query string) ([]domain.SearchResult, error)
}
