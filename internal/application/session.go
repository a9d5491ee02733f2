package application

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"memoriakit/internal/ctxlog"
	"memoriakit/internal/domain"
	"memoriakit/internal/ports"
)

// Session is the editing facade over one open file: the parsed
// document, its undo history, and the dirty flag. All mutations go
// through EditCommands so every operation is undoable. A session is
// not safe for concurrent mutation; Save and Revert take the lock so
// background saves cannot interleave with each other.
type Session struct {
	mu      sync.Mutex
	path    string
	doc     *domain.Document
	history UndoStack
	dirty   bool
	store   ports.DocumentStore
	seq     ports.SequenceRepository
}

// Open reads and parses the file at path. Parsing never fails: blocks
// that do not match the format are kept as unknown blocks and logged.
// seq may be nil for sessions that never touch the sequence tree.
func Open(ctx context.Context, store ports.DocumentStore, seq ports.SequenceRepository, path string, format domain.Format) (*Session, error) {
	content, err := store.Read(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	doc := parseByFormat(format, content)
	if anomalies := doc.Anomalies(); len(anomalies) > 0 {
		ctxlog.FromContext(ctx).Warn("file contains unrecognized blocks",
			"path", path, "count", len(anomalies), "indices", anomalies)
	}

	return &Session{
		path:  path,
		doc:   doc,
		store: store,
		seq:   seq,
	}, nil
}

func parseByFormat(format domain.Format, content string) *domain.Document {
	if format == domain.FormatSequence {
		return domain.ParseSequence(content)
	}
	return domain.ParseFeatures(content)
}

// Path returns the backing file path.
func (s *Session) Path() string { return s.path }

// Document returns the live document. Callers must treat it as
// read-only; mutations go through the session's operations.
func (s *Session) Document() *domain.Document { return s.doc }

// Dirty reports whether the document has unsaved changes.
func (s *Session) Dirty() bool { return s.dirty }

// CanUndo reports whether an undo step is available.
func (s *Session) CanUndo() bool { return s.history.CanUndo() }

// CanRedo reports whether a redo step is available.
func (s *Session) CanRedo() bool { return s.history.CanRedo() }

// EntryAt returns the block at index.
func (s *Session) EntryAt(index int) (domain.Block, error) {
	if index < 0 || index >= len(s.doc.Blocks) {
		return domain.Block{}, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	return s.doc.Blocks[index], nil
}

// apply runs a command through the history and marks the session dirty.
func (s *Session) apply(ctx context.Context, cmd EditCommand) error {
	if err := s.history.Apply(s, cmd); err != nil {
		return err
	}
	s.dirty = true
	ctxlog.FromContext(ctx).Debug("applied edit", "command", cmd.Name(), "path", s.path)
	return nil
}

// parseEntryText parses replacement text according to the session's
// format. The text must hold exactly one entry.
func (s *Session) parseEntryText(text string) (domain.Block, error) {
	if s.doc.Format == domain.FormatSequence {
		return domain.ParseSequenceLine(text)
	}
	return domain.ParseEntry(text)
}

// ReplaceEntry swaps the entry at index with the given text. The
// replacement must parse to the same kind as the entry it replaces;
// on mismatch nothing changes and a TypeMismatchError is returned.
func (s *Session) ReplaceEntry(ctx context.Context, index int, text string) error {
	old, err := s.EntryAt(index)
	if err != nil {
		return err
	}
	newBlock, err := s.parseEntryText(text)
	if err != nil {
		return err
	}
	if newBlock.Kind != old.Kind {
		return &TypeMismatchError{Index: index, Want: old.Kind, Got: newBlock.Kind}
	}
	if index < len(s.doc.Blocks)-1 {
		terminateRaw(&newBlock)
	}
	return s.apply(ctx, &ReplaceBlock{Index: index, Old: old, New: newBlock})
}

// AppendEntry parses text as a single entry and appends it to the end
// of the document.
func (s *Session) AppendEntry(ctx context.Context, text string) error {
	newBlock, err := s.parseEntryText(text)
	if err != nil {
		return err
	}
	s.padBeforeAppend(&newBlock)
	return s.apply(ctx, &InsertBlock{Index: len(s.doc.Blocks), Block: newBlock})
}

// padBeforeAppend keeps the new block's header at the start of a line
// when the current file text does not end with a newline.
func (s *Session) padBeforeAppend(b *domain.Block) {
	n := len(s.doc.Blocks)
	if n == 0 {
		if s.doc.Preamble != "" && !strings.HasSuffix(s.doc.Preamble, "\n") {
			b.Raw = "\n" + b.Raw
		}
		return
	}
	if !strings.HasSuffix(s.doc.Blocks[n-1].Raw, "\n") {
		b.Raw = "\n" + b.Raw
	}
}

// terminateRaw appends a line terminator when the text lacks one, so
// the block that follows keeps its header at the start of a line and
// the file re-parses to the same entry count it serialized from.
func terminateRaw(b *domain.Block) {
	if !strings.HasSuffix(b.Raw, "\n") {
		b.Raw += "\n"
	}
}

// InsertEntryAt parses text as a single entry and inserts it before
// the entry at index. index == entry count appends.
func (s *Session) InsertEntryAt(ctx context.Context, index int, text string) error {
	newBlock, err := s.parseEntryText(text)
	if err != nil {
		return err
	}
	if index == len(s.doc.Blocks) {
		s.padBeforeAppend(&newBlock)
	} else {
		terminateRaw(&newBlock)
	}
	return s.apply(ctx, &InsertBlock{Index: index, Block: newBlock})
}

// DeleteEntry removes the entry at index.
func (s *Session) DeleteEntry(ctx context.Context, index int) error {
	old, err := s.EntryAt(index)
	if err != nil {
		return err
	}
	return s.apply(ctx, &DeleteBlock{Index: index, Removed: old})
}

// EditEntryText replaces the raw text of the entry at index without a
// kind check. Text that no longer matches the format degrades the
// block to an unknown kind instead of failing.
func (s *Session) EditEntryText(ctx context.Context, index int, text string) error {
	old, err := s.EntryAt(index)
	if err != nil {
		return err
	}
	return s.apply(ctx, &RawTextEdit{Index: index, OldText: old.Raw, NewText: text})
}

// InsertTemplate renders the template with the given placeholder
// values and inserts the result: slot < 0 appends, otherwise the
// rendered entry replaces the entry at slot, subject to the same kind
// check as ReplaceEntry. A missing placeholder aborts before any
// mutation, reporting every unresolved name.
func (s *Session) InsertTemplate(ctx context.Context, tpl domain.Template, values map[string]string, slot int) error {
	rendered, err := tpl.Render(values)
	if err != nil {
		return err
	}
	if slot < 0 {
		return s.AppendEntry(ctx, rendered)
	}
	return s.ReplaceEntry(ctx, slot, rendered)
}

// RenameNode renames a file or folder in the sequence tree as an
// undoable command: undo renames it back on disk. When the rename
// fails nothing is recorded.
func (s *Session) RenameNode(ctx context.Context, dir, oldName, newName string) error {
	if s.seq == nil {
		return fmt.Errorf("session has no sequence repository")
	}
	cmd := &RenameNode{Repo: s.seq, Dir: dir, OldName: oldName, NewName: newName}
	if err := s.history.Apply(s, cmd); err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Info("renamed node", "dir", dir, "from", oldName, "to", newName)
	return nil
}

// Undo reverses the most recent edit. An empty history returns
// ErrNothingToUndo; callers report it rather than treating it as a
// failure. The dirty flag stays set: the file on disk still differs
// from its last saved bytes until the next Save.
func (s *Session) Undo(ctx context.Context) (string, error) {
	cmd, err := s.history.Undo(s)
	if err != nil {
		return "", err
	}
	if touchesDocument(cmd) {
		s.dirty = true
	}
	ctxlog.FromContext(ctx).Debug("undid edit", "command", cmd.Name(), "path", s.path)
	return cmd.Name(), nil
}

// Redo re-applies the most recently undone edit.
func (s *Session) Redo(ctx context.Context) (string, error) {
	cmd, err := s.history.Redo(s)
	if err != nil {
		return "", err
	}
	if touchesDocument(cmd) {
		s.dirty = true
	}
	ctxlog.FromContext(ctx).Debug("redid edit", "command", cmd.Name(), "path", s.path)
	return cmd.Name(), nil
}

// touchesDocument reports whether undoing or redoing cmd changes the
// document bytes. Renames act on the directory tree, not the file.
func touchesDocument(cmd EditCommand) bool {
	_, isRename := cmd.(*RenameNode)
	return !isRename
}

// Save writes the serialized document atomically. On failure the file
// on disk, the in-memory document, and the undo history are all
// unchanged and the session stays dirty. Saving does not clear the
// history: edits made before a save remain undoable after it.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.dirty {
		return nil
	}
	if err := s.store.WriteAtomic(s.path, s.doc.Serialize()); err != nil {
		return &DiskWriteError{Path: s.path, Err: err}
	}
	s.dirty = false
	ctxlog.FromContext(ctx).Info("saved", "path", s.path)
	return nil
}

// Revert discards all in-memory changes by re-reading the file from
// disk. The undo history is cleared: reverting is the one operation
// that cannot be undone.
func (s *Session) Revert(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	content, err := s.store.Read(s.path)
	if err != nil {
		return fmt.Errorf("reverting %s: %w", s.path, err)
	}
	doc := parseByFormat(s.doc.Format, content)
	if anomalies := doc.Anomalies(); len(anomalies) > 0 {
		ctxlog.FromContext(ctx).Warn("file contains unrecognized blocks",
			"path", s.path, "count", len(anomalies), "indices", anomalies)
	}
	s.doc = doc
	s.history.Clear()
	s.dirty = false
	ctxlog.FromContext(ctx).Info("reverted", "path", s.path)
	return nil
}
