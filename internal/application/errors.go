package application

import (
	"errors"
	"fmt"

	"memoriakit/internal/domain"
)

// Sentinel errors for common conditions
var (
	ErrNothingToUndo   = errors.New("nothing to undo")
	ErrNothingToRedo   = errors.New("nothing to redo")
	ErrIndexOutOfRange = errors.New("block index out of range")
	ErrTypeMismatch    = errors.New("entry type mismatch")
	ErrMalformedPack   = errors.New("malformed template pack")
)

// TypeMismatchError rejects a replace whose replacement entry has a
// different kind than the slot it targets. Raised before any mutation.
type TypeMismatchError struct {
	Index int
	Want  domain.Kind
	Got   domain.Kind
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("cannot replace %s entry at index %d with %s entry", e.Want, e.Index, e.Got)
}

func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}

// DuplicateTemplateError rejects registering a template whose
// (category, kind, name) triple is already present.
type DuplicateTemplateError struct {
	Category string
	Kind     domain.Kind
	Name     string
}

func (e *DuplicateTemplateError) Error() string {
	return fmt.Sprintf("template %q already registered in category %q for kind %s", e.Name, e.Category, e.Kind)
}

// MalformedPackError aborts a template pack import. The registry is
// left exactly as it was before the import began.
type MalformedPackError struct {
	Reason string
	Err    error
}

func (e *MalformedPackError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed template pack: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed template pack: %s", e.Reason)
}

func (e *MalformedPackError) Unwrap() error { return e.Err }

func (e *MalformedPackError) Is(target error) bool {
	return target == ErrMalformedPack
}

// DiskWriteError reports a failed save or revert. In-memory state and
// the on-disk file are unchanged when this is returned.
type DiskWriteError struct {
	Path string
	Err  error
}

func (e *DiskWriteError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
}

func (e *DiskWriteError) Unwrap() error { return e.Err }
