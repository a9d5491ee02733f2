package application

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memoriakit/internal/domain"
)

const threeEntries = ">SA 11 ~~ Auto-Potion ~~\n" +
	"[code=Condition] IsDamaged [/code]\n" +
	">SA 12 ~~ Auto-Regen ~~\n" +
	">AA 20 Cure\n"

func newFeaturesSession(t *testing.T, content string) *Session {
	t.Helper()
	store := newFakeStore()
	store.files["Abilities.txt"] = content
	s, err := Open(context.Background(), store, nil, "Abilities.txt", domain.FormatFeatures)
	require.NoError(t, err)
	return s
}

func mustEntry(t *testing.T, text string) domain.Block {
	t.Helper()
	b, err := domain.ParseEntry(text)
	require.NoError(t, err)
	return b
}

func TestCommandInverseRestoresDocument(t *testing.T) {
	replacement := mustEntry(t, ">SA 12 ~~ Auto-Haste ~~\n")

	tests := []struct {
		name string
		cmd  func(s *Session) EditCommand
	}{
		{"replace", func(s *Session) EditCommand {
			return &ReplaceBlock{Index: 1, Old: s.doc.Blocks[1], New: replacement}
		}},
		{"insert", func(s *Session) EditCommand {
			return &InsertBlock{Index: 1, Block: replacement}
		}},
		{"append", func(s *Session) EditCommand {
			return &InsertBlock{Index: len(s.doc.Blocks), Block: replacement}
		}},
		{"delete", func(s *Session) EditCommand {
			return &DeleteBlock{Index: 0, Removed: s.doc.Blocks[0]}
		}},
		{"raw edit", func(s *Session) EditCommand {
			return &RawTextEdit{Index: 2, OldText: s.doc.Blocks[2].Raw, NewText: "not an entry anymore\n"}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newFeaturesSession(t, threeEntries)
			before := s.doc.Clone()

			cmd := tt.cmd(s)
			require.NoError(t, cmd.Apply(s))
			require.NoError(t, cmd.Invert().Apply(s))

			if diff := cmp.Diff(before, s.doc); diff != "" {
				t.Errorf("document not restored (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUndoRedoRoundTrip(t *testing.T) {
	s := newFeaturesSession(t, threeEntries)
	ctx := context.Background()
	original := s.doc.Serialize()

	require.NoError(t, s.ReplaceEntry(ctx, 1, ">SA 12 ~~ Auto-Haste ~~\n"))
	edited := s.doc.Serialize()
	require.NotEqual(t, original, edited)

	_, err := s.Undo(ctx)
	require.NoError(t, err)
	assert.Equal(t, original, s.doc.Serialize())

	_, err = s.Redo(ctx)
	require.NoError(t, err)
	assert.Equal(t, edited, s.doc.Serialize())
}

func TestUndoEmptyHistory(t *testing.T) {
	s := newFeaturesSession(t, threeEntries)
	_, err := s.Undo(context.Background())
	assert.ErrorIs(t, err, ErrNothingToUndo)

	_, err = s.Redo(context.Background())
	assert.ErrorIs(t, err, ErrNothingToRedo)
}

func TestNewEditDiscardsRedoTail(t *testing.T) {
	s := newFeaturesSession(t, threeEntries)
	ctx := context.Background()

	require.NoError(t, s.ReplaceEntry(ctx, 1, ">SA 12 ~~ first ~~\n"))
	require.NoError(t, s.ReplaceEntry(ctx, 1, ">SA 12 ~~ second ~~\n"))

	_, err := s.Undo(ctx)
	require.NoError(t, err)
	require.True(t, s.CanRedo())

	// A fresh edit after an undo makes the undone tail unreachable.
	require.NoError(t, s.ReplaceEntry(ctx, 1, ">SA 12 ~~ third ~~\n"))
	assert.False(t, s.CanRedo())

	_, err = s.Redo(ctx)
	assert.ErrorIs(t, err, ErrNothingToRedo)
}

func TestPushHookFailureRollsBack(t *testing.T) {
	s := newFeaturesSession(t, threeEntries)
	before := s.doc.Clone()

	hookErr := errors.New("hook rejected")
	s.history.pushHook = func(EditCommand) error { return hookErr }

	err := s.ReplaceEntry(context.Background(), 1, ">SA 12 ~~ Auto-Haste ~~\n")
	require.ErrorIs(t, err, hookErr)

	if diff := cmp.Diff(before, s.doc); diff != "" {
		t.Errorf("document mutated despite hook failure (-want +got):\n%s", diff)
	}
	assert.False(t, s.CanUndo())
}

func TestCommandIndexOutOfRange(t *testing.T) {
	s := newFeaturesSession(t, threeEntries)
	n := len(s.doc.Blocks)

	cmds := []EditCommand{
		&ReplaceBlock{Index: n, New: s.doc.Blocks[0]},
		&DeleteBlock{Index: -1},
		&InsertBlock{Index: n + 1},
		&RawTextEdit{Index: n, NewText: "x\n"},
	}
	for _, cmd := range cmds {
		assert.ErrorIs(t, cmd.Apply(s), ErrIndexOutOfRange, cmd.Name())
	}
}

func TestRenumberAfterEdits(t *testing.T) {
	s := newFeaturesSession(t, threeEntries)
	ctx := context.Background()

	require.NoError(t, s.DeleteEntry(ctx, 0))
	require.Equal(t, 0, s.doc.Blocks[0].Start)
	require.Equal(t, 1, s.doc.Blocks[0].End)
	require.Equal(t, 1, s.doc.Blocks[1].Start)

	_, err := s.Undo(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, s.doc.Blocks[0].Start)
	assert.Equal(t, 2, s.doc.Blocks[0].End)
	assert.Equal(t, 2, s.doc.Blocks[1].Start)
}
