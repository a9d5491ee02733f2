package sqlite

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"memoriakit/internal/domain"
)

func setupIndexedRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	features := ">SA 11 ~~ Auto-Potion ~~\n" +
		"[code=Condition] IsDamaged [/code]\n" +
		">SA Global+\n" +
		">AA 20 ~~ Cure ~~\n"
	if err := os.WriteFile(filepath.Join(root, "AbilityFeatures.txt"), []byte(features), 0644); err != nil {
		t.Fatalf("failed to write features file: %v", err)
	}

	effectDir := filepath.Join(root, "ef0123")
	if err := os.Mkdir(effectDir, 0755); err != nil {
		t.Fatalf("failed to create effect folder: %v", err)
	}
	seq := "// fire spell\nLoadSFX: SFX=Fire ; Char=0\n\tWait: Time=30\n\nPlaySFX: SFX=Fire\n"
	if err := os.WriteFile(filepath.Join(effectDir, "main.seq"), []byte(seq), 0644); err != nil {
		t.Fatalf("failed to write sequence file: %v", err)
	}

	return root
}

func openIndex(t *testing.T, root string) *Index {
	t.Helper()
	idx := NewIndex()
	if err := idx.Open(root); err != nil {
		t.Fatalf("failed to open index: %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestSyncFullIndexesEntries(t *testing.T) {
	root := setupIndexedRoot(t)
	idx := openIndex(t, root)

	stats, err := idx.SyncFull()
	if err != nil {
		t.Fatalf("SyncFull failed: %v", err)
	}

	if stats.FilesScanned != 2 {
		t.Errorf("expected 2 files scanned, got %d", stats.FilesScanned)
	}
	// 3 feature entries + 1 comment + 3 instructions; the blank line
	// gets no row.
	if stats.EntriesAdded != 7 {
		t.Errorf("expected 7 entries added, got %d", stats.EntriesAdded)
	}

	entries, err := idx.GetEntries("AbilityFeatures.txt")
	if err != nil {
		t.Fatalf("GetEntries failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].EntryID != "11" || entries[0].Kind != domain.KindSA {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}
	if entries[0].Comment != "Auto-Potion" {
		t.Errorf("expected comment Auto-Potion, got %q", entries[0].Comment)
	}
	if entries[1].EntryID != "Global+" {
		t.Errorf("expected Global+ marker, got %q", entries[1].EntryID)
	}
}

func TestSearch(t *testing.T) {
	root := setupIndexedRoot(t)
	idx := openIndex(t, root)
	if _, err := idx.SyncFull(); err != nil {
		t.Fatalf("SyncFull failed: %v", err)
	}

	results, err := idx.Search("Potion")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result for Potion, got %d", len(results))
	}
	if results[0].Path != "AbilityFeatures.txt" || results[0].Position != 0 {
		t.Errorf("unexpected result: %+v", results[0])
	}

	// Sequence instruction ops are searchable by name.
	results, err = idx.Search("PlaySFX")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result for PlaySFX, got %d", len(results))
	}
	if results[0].Path != filepath.Join("ef0123", "main.seq") {
		t.Errorf("unexpected path: %s", results[0].Path)
	}

	results, err = idx.Search("nonexistent-xyz")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestSyncIncrementalSkipsUnchanged(t *testing.T) {
	root := setupIndexedRoot(t)
	idx := openIndex(t, root)
	if _, err := idx.SyncFull(); err != nil {
		t.Fatalf("SyncFull failed: %v", err)
	}

	stats, err := idx.SyncIncremental()
	if err != nil {
		t.Fatalf("SyncIncremental failed: %v", err)
	}
	if stats.FilesUnchanged != 2 {
		t.Errorf("expected 2 unchanged files, got %d", stats.FilesUnchanged)
	}
	if stats.EntriesAdded != 0 {
		t.Errorf("expected 0 entries added, got %d", stats.EntriesAdded)
	}
}

func TestSyncIncrementalPicksUpChanges(t *testing.T) {
	root := setupIndexedRoot(t)
	idx := openIndex(t, root)
	if _, err := idx.SyncFull(); err != nil {
		t.Fatalf("SyncFull failed: %v", err)
	}

	// Append an entry with a future mtime so the incremental pass sees it.
	path := filepath.Join(root, "AbilityFeatures.txt")
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read features file: %v", err)
	}
	content = append(content, []byte(">SA 30 ~~ Counter ~~\n")...)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("failed to update features file: %v", err)
	}
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("failed to bump mtime: %v", err)
	}

	if _, err := idx.SyncIncremental(); err != nil {
		t.Fatalf("SyncIncremental failed: %v", err)
	}

	entries, err := idx.GetEntries("AbilityFeatures.txt")
	if err != nil {
		t.Fatalf("GetEntries failed: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries after re-index, got %d", len(entries))
	}
	if entries[3].EntryID != "30" {
		t.Errorf("expected new entry 30, got %q", entries[3].EntryID)
	}
}

func TestSyncIncrementalRemovesDeletedFiles(t *testing.T) {
	root := setupIndexedRoot(t)
	idx := openIndex(t, root)
	if _, err := idx.SyncFull(); err != nil {
		t.Fatalf("SyncFull failed: %v", err)
	}

	if err := os.Remove(filepath.Join(root, "ef0123", "main.seq")); err != nil {
		t.Fatalf("failed to remove sequence file: %v", err)
	}

	stats, err := idx.SyncIncremental()
	if err != nil {
		t.Fatalf("SyncIncremental failed: %v", err)
	}
	if stats.EntriesRemoved != 4 {
		t.Errorf("expected 4 entries removed, got %d", stats.EntriesRemoved)
	}

	entries, err := idx.GetEntries(filepath.Join("ef0123", "main.seq"))
	if err != nil {
		t.Fatalf("GetEntries failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no entries for deleted file, got %d", len(entries))
	}
}

func TestNeedsFullRebuild(t *testing.T) {
	root := setupIndexedRoot(t)
	idx := openIndex(t, root)

	if idx.NeedsFullRebuild() {
		t.Error("fresh index should not need a rebuild")
	}
}
