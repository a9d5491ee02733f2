package ports

import "memoriakit/internal/domain"

// SequenceRepository defines the filesystem operations of the battle
// SFX sequence tree (ef#### folders holding *.seq files).
type SequenceRepository interface {
	// ScanRoot lists the effect folders under root, sorted by name.
	ScanRoot(root string) ([]domain.EffectFolder, error)

	// Rename renames a file or folder inside dir. It fails if the
	// target name already exists; it must not partially apply.
	Rename(dir, oldName, newName string) error

	// CreateFolder creates a new effect folder under root and returns
	// its path.
	CreateFolder(root, name string) (string, error)

	// CreateFile creates a new sequence file with the given body and
	// returns its path. Fails if the file already exists.
	CreateFile(dir, name, body string) (string, error)
}
