package application

import (
	"fmt"

	"memoriakit/internal/domain"
	"memoriakit/internal/ports"
)

// EditCommand is one invertible mutation of a session. Each command
// carries enough prior state to construct its exact inverse without
// re-reading disk.
type EditCommand interface {
	// Apply executes the command's forward effect on the session.
	Apply(s *Session) error
	// Invert returns the command that exactly reverses this one.
	Invert() EditCommand
	// Name identifies the command for logging.
	Name() string
}

// ReplaceBlock swaps the block at Index. Its inverse swaps it back.
type ReplaceBlock struct {
	Index int
	Old   domain.Block
	New   domain.Block
}

func (c *ReplaceBlock) Apply(s *Session) error {
	if c.Index < 0 || c.Index >= len(s.doc.Blocks) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, c.Index)
	}
	s.doc.Blocks[c.Index] = c.New
	s.doc.Renumber()
	return nil
}

func (c *ReplaceBlock) Invert() EditCommand {
	return &ReplaceBlock{Index: c.Index, Old: c.New, New: c.Old}
}

func (c *ReplaceBlock) Name() string { return "replace-block" }

// InsertBlock inserts a block at Index; Index == len(blocks) appends.
type InsertBlock struct {
	Index int
	Block domain.Block
}

func (c *InsertBlock) Apply(s *Session) error {
	if c.Index < 0 || c.Index > len(s.doc.Blocks) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, c.Index)
	}
	blocks := s.doc.Blocks
	blocks = append(blocks, domain.Block{})
	copy(blocks[c.Index+1:], blocks[c.Index:])
	blocks[c.Index] = c.Block
	s.doc.Blocks = blocks
	s.doc.Renumber()
	return nil
}

func (c *InsertBlock) Invert() EditCommand {
	return &DeleteBlock{Index: c.Index, Removed: c.Block}
}

func (c *InsertBlock) Name() string { return "insert-block" }

// DeleteBlock removes the block at Index, remembering it for undo.
type DeleteBlock struct {
	Index   int
	Removed domain.Block
}

func (c *DeleteBlock) Apply(s *Session) error {
	if c.Index < 0 || c.Index >= len(s.doc.Blocks) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, c.Index)
	}
	s.doc.Blocks = append(s.doc.Blocks[:c.Index], s.doc.Blocks[c.Index+1:]...)
	s.doc.Renumber()
	return nil
}

func (c *DeleteBlock) Invert() EditCommand {
	return &InsertBlock{Index: c.Index, Block: c.Removed}
}

func (c *DeleteBlock) Name() string { return "delete-block" }

// RawTextEdit replaces the raw text of the block at Index, re-deriving
// its kind and fields. Unlike ReplaceBlock it accepts arbitrary text,
// so a block can degrade to KindUnknown without losing bytes.
type RawTextEdit struct {
	Index   int
	OldText string
	NewText string
}

func (c *RawTextEdit) Apply(s *Session) error {
	if c.Index < 0 || c.Index >= len(s.doc.Blocks) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, c.Index)
	}
	s.doc.Blocks[c.Index] = domain.ReparseBlock(s.doc.Format, c.NewText)
	s.doc.Renumber()
	return nil
}

func (c *RawTextEdit) Invert() EditCommand {
	return &RawTextEdit{Index: c.Index, OldText: c.NewText, NewText: c.OldText}
}

func (c *RawTextEdit) Name() string { return "raw-text-edit" }

// RenameNode renames a file or folder in the sequence tree. The
// physical rename happens inside Apply, so undoing the command renames
// it back on disk.
type RenameNode struct {
	Repo    ports.SequenceRepository
	Dir     string
	OldName string
	NewName string
}

func (c *RenameNode) Apply(s *Session) error {
	return c.Repo.Rename(c.Dir, c.OldName, c.NewName)
}

func (c *RenameNode) Invert() EditCommand {
	return &RenameNode{Repo: c.Repo, Dir: c.Dir, OldName: c.NewName, NewName: c.OldName}
}

func (c *RenameNode) Name() string { return "rename-node" }

// UndoStack is the linear two-stack edit history of one session.
// Applying a new command discards the redo tail; nothing else bounds
// the stacks except an explicit Clear.
type UndoStack struct {
	applied []EditCommand
	undone  []EditCommand

	// pushHook, when set, runs before a command is recorded. A hook
	// error rolls back the command's forward effect so disk and
	// history never disagree. Test seam.
	pushHook func(EditCommand) error
}

// Apply executes cmd and records it for undo. The redo list is
// cleared: history is linear, a new action after an undo makes the
// undone tail unreachable.
func (u *UndoStack) Apply(s *Session, cmd EditCommand) error {
	if err := cmd.Apply(s); err != nil {
		return err
	}
	if u.pushHook != nil {
		if err := u.pushHook(cmd); err != nil {
			if rbErr := cmd.Invert().Apply(s); rbErr != nil {
				return fmt.Errorf("recording %s: %w (rollback failed: %v)", cmd.Name(), err, rbErr)
			}
			return fmt.Errorf("recording %s: %w", cmd.Name(), err)
		}
	}
	u.applied = append(u.applied, cmd)
	u.undone = u.undone[:0]
	return nil
}

// Undo reverses the most recent command. Returns ErrNothingToUndo on
// an empty stack; the session treats that as a reported no-op.
func (u *UndoStack) Undo(s *Session) (EditCommand, error) {
	if len(u.applied) == 0 {
		return nil, ErrNothingToUndo
	}
	cmd := u.applied[len(u.applied)-1]
	if err := cmd.Invert().Apply(s); err != nil {
		return nil, err
	}
	u.applied = u.applied[:len(u.applied)-1]
	u.undone = append(u.undone, cmd)
	return cmd, nil
}

// Redo re-applies the most recently undone command.
func (u *UndoStack) Redo(s *Session) (EditCommand, error) {
	if len(u.undone) == 0 {
		return nil, ErrNothingToRedo
	}
	cmd := u.undone[len(u.undone)-1]
	if err := cmd.Apply(s); err != nil {
		return nil, err
	}
	u.undone = u.undone[:len(u.undone)-1]
	u.applied = append(u.applied, cmd)
	return cmd, nil
}

// CanUndo reports whether an undo step is available.
func (u *UndoStack) CanUndo() bool { return len(u.applied) > 0 }

// CanRedo reports whether a redo step is available.
func (u *UndoStack) CanRedo() bool { return len(u.undone) > 0 }

// Len returns the number of undoable commands.
func (u *UndoStack) Len() int { return len(u.applied) }

// Clear empties both stacks. Used by revert, never by save.
func (u *UndoStack) Clear() {
	u.applied = nil
	u.undone = nil
}
