package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"memoriakit/internal/domain"
)

// SequenceRepo implements ports.SequenceRepository over the battle SFX
// directory tree: ef#### folders, each holding *.seq files.
type SequenceRepo struct{}

// NewSequenceRepo creates a filesystem sequence repository.
func NewSequenceRepo() *SequenceRepo {
	return &SequenceRepo{}
}

// ScanRoot lists the effect folders under root, sorted by name.
// Directories that do not match the ef#### shape are skipped.
func (r *SequenceRepo) ScanRoot(root string) ([]domain.EffectFolder, error) {
	root = expandHome(root)
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading sequence root: %w", err)
	}

	var folders []domain.EffectFolder
	for _, entry := range entries {
		if !entry.IsDir() || !domain.IsEffectFolderName(entry.Name()) {
			continue
		}

		path := filepath.Join(root, entry.Name())
		files, err := r.listSequenceFiles(path)
		if err != nil {
			return nil, err
		}
		folders = append(folders, domain.EffectFolder{
			Name:  entry.Name(),
			Path:  path,
			Files: files,
		})
	}

	sort.Slice(folders, func(i, j int) bool {
		return folders[i].Name < folders[j].Name
	})

	return folders, nil
}

func (r *SequenceRepo) listSequenceFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading effect folder: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), domain.SeqExtension) {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// Rename renames a file or folder inside dir. It refuses to clobber an
// existing target, so a rename either fully applies or changes nothing.
func (r *SequenceRepo) Rename(dir, oldName, newName string) error {
	if oldName == newName {
		return nil
	}
	if strings.ContainsAny(newName, `/\`) {
		return fmt.Errorf("invalid name %q: must not contain path separators", newName)
	}

	dir = expandHome(dir)
	oldPath := filepath.Join(dir, oldName)
	newPath := filepath.Join(dir, newName)

	if _, err := os.Stat(oldPath); err != nil {
		return fmt.Errorf("renaming %s: %w", oldName, err)
	}
	if _, err := os.Stat(newPath); err == nil {
		return fmt.Errorf("renaming %s: %s already exists", oldName, newName)
	}

	return os.Rename(oldPath, newPath)
}

// CreateFolder creates a new effect folder under root and returns its
// path. The name must match the ef#### shape.
func (r *SequenceRepo) CreateFolder(root, name string) (string, error) {
	if !domain.IsEffectFolderName(name) {
		return "", fmt.Errorf("invalid effect folder name %q", name)
	}

	path := filepath.Join(expandHome(root), name)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("folder %s already exists", name)
	}
	if err := os.Mkdir(path, 0755); err != nil {
		return "", fmt.Errorf("creating folder: %w", err)
	}
	return path, nil
}

// CreateFile creates a new sequence file with the given body. The
// .seq extension is appended when missing. Fails if the file exists.
func (r *SequenceRepo) CreateFile(dir, name, body string) (string, error) {
	if strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid name %q: must not contain path separators", name)
	}
	if !strings.EqualFold(filepath.Ext(name), domain.SeqExtension) {
		name += domain.SeqExtension
	}

	path := filepath.Join(expandHome(dir), name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", name, err)
	}
	defer f.Close()

	if _, err := f.WriteString(body); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	return path, nil
}
