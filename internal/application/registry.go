package application

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"memoriakit/internal/ctxlog"
	"memoriakit/internal/domain"
)

// TemplateRegistry owns a set of templates keyed by (category, kind,
// name). It is independent of any session and safe to share read-only
// across sessions once loading is done.
type TemplateRegistry struct {
	templates map[templateKey]domain.Template
}

type templateKey struct {
	Category string
	Kind     domain.Kind
	Name     string
}

// NewTemplateRegistry creates an empty registry.
func NewTemplateRegistry() *TemplateRegistry {
	return &TemplateRegistry{templates: make(map[templateKey]domain.Template)}
}

// Register adds a template. The (category, kind, name) triple must be
// unique.
func (r *TemplateRegistry) Register(t domain.Template) error {
	if err := t.Validate(); err != nil {
		return err
	}
	key := templateKey{Category: t.Category, Kind: t.Kind, Name: t.Name}
	if _, exists := r.templates[key]; exists {
		return &DuplicateTemplateError{Category: t.Category, Kind: t.Kind, Name: t.Name}
	}
	r.templates[key] = t
	return nil
}

// Get looks up a template by its identity triple.
func (r *TemplateRegistry) Get(category string, kind domain.Kind, name string) (domain.Template, bool) {
	t, ok := r.templates[templateKey{Category: category, Kind: kind, Name: name}]
	return t, ok
}

// Find returns the templates with the given name across all categories
// and kinds.
func (r *TemplateRegistry) Find(name string) []domain.Template {
	var out []domain.Template
	for key, t := range r.templates {
		if key.Name == name {
			out = append(out, t)
		}
	}
	sortTemplates(out)
	return out
}

// List returns all templates sorted by category, then name.
func (r *TemplateRegistry) List() []domain.Template {
	out := make([]domain.Template, 0, len(r.templates))
	for _, t := range r.templates {
		out = append(out, t)
	}
	sortTemplates(out)
	return out
}

// ListKind returns the templates producing entries of the given kind,
// sorted by category, then name.
func (r *TemplateRegistry) ListKind(kind domain.Kind) []domain.Template {
	var out []domain.Template
	for key, t := range r.templates {
		if key.Kind == kind {
			out = append(out, t)
		}
	}
	sortTemplates(out)
	return out
}

// Len returns the number of registered templates.
func (r *TemplateRegistry) Len() int { return len(r.templates) }

func sortTemplates(ts []domain.Template) {
	sort.Slice(ts, func(i, j int) bool {
		if ts[i].Category != ts[j].Category {
			return ts[i].Category < ts[j].Category
		}
		if ts[i].Name != ts[j].Name {
			return ts[i].Name < ts[j].Name
		}
		return ts[i].Kind < ts[j].Kind
	})
}

// Template pack wire format. One JSON object per template so exported
// packs diff cleanly.
type packFile struct {
	Name      string         `json:"name"`
	Templates []packTemplate `json:"templates"`
}

type packTemplate struct {
	Name         string            `json:"name"`
	Category     string            `json:"category"`
	Kind         string            `json:"kind"`
	Body         string            `json:"body"`
	Placeholders []packPlaceholder `json:"placeholders"`
	Description  string            `json:"description,omitempty"`
	Notes        string            `json:"notes,omitempty"`
}

type packPlaceholder struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ImportPack parses a template pack and registers every template it
// contains. The import is all-or-nothing: any malformed entry or
// duplicate aborts the whole pack and leaves the registry untouched.
func (r *TemplateRegistry) ImportPack(src io.Reader) ([]domain.Template, error) {
	var pack packFile
	if err := json.NewDecoder(src).Decode(&pack); err != nil {
		return nil, &MalformedPackError{Reason: "invalid JSON", Err: err}
	}
	if len(pack.Templates) == 0 {
		return nil, &MalformedPackError{Reason: "pack contains no templates"}
	}

	// Validate everything into a staging set before touching the
	// registry, so a bad entry cannot leave a partial import behind.
	staged := make([]domain.Template, 0, len(pack.Templates))
	stagedKeys := make(map[templateKey]bool, len(pack.Templates))
	for i, pt := range pack.Templates {
		kind := domain.ParseKind(pt.Kind)
		if kind == domain.KindUnknown {
			return nil, &MalformedPackError{Reason: fmt.Sprintf("template %d (%q): unrecognized kind %q", i, pt.Name, pt.Kind)}
		}
		t := domain.Template{
			Name:        pt.Name,
			Category:    pt.Category,
			Kind:        kind,
			Body:        pt.Body,
			Description: pt.Description,
			Notes:       pt.Notes,
		}
		for _, p := range pt.Placeholders {
			t.Placeholders = append(t.Placeholders, domain.Placeholder{Name: p.Name, Description: p.Description})
		}
		if err := t.Validate(); err != nil {
			return nil, &MalformedPackError{Reason: fmt.Sprintf("template %d", i), Err: err}
		}
		key := templateKey{Category: t.Category, Kind: t.Kind, Name: t.Name}
		if stagedKeys[key] {
			return nil, &MalformedPackError{Reason: fmt.Sprintf("pack registers %q twice", t.Name)}
		}
		if _, exists := r.templates[key]; exists {
			return nil, &DuplicateTemplateError{Category: t.Category, Kind: t.Kind, Name: t.Name}
		}
		stagedKeys[key] = true
		staged = append(staged, t)
	}

	for _, t := range staged {
		r.templates[templateKey{Category: t.Category, Kind: t.Kind, Name: t.Name}] = t
	}
	return staged, nil
}

// ExportPack serializes the named templates (all templates when names
// is empty) in deterministic category-then-name order.
func (r *TemplateRegistry) ExportPack(w io.Writer, packName string, names []string) error {
	var selected []domain.Template
	if len(names) == 0 {
		selected = r.List()
	} else {
		for _, name := range names {
			found := r.Find(name)
			if len(found) == 0 {
				return fmt.Errorf("no template named %q", name)
			}
			selected = append(selected, found...)
		}
		sortTemplates(selected)
	}
	if len(selected) == 0 {
		return fmt.Errorf("no templates to export")
	}

	pack := packFile{Name: packName, Templates: make([]packTemplate, 0, len(selected))}
	for _, t := range selected {
		pt := packTemplate{
			Name:        t.Name,
			Category:    t.Category,
			Kind:        t.Kind.String(),
			Body:        t.Body,
			Description: t.Description,
			Notes:       t.Notes,
		}
		for _, p := range t.Placeholders {
			pt.Placeholders = append(pt.Placeholders, packPlaceholder{Name: p.Name, Description: p.Description})
		}
		pack.Templates = append(pack.Templates, pt)
	}

	data, err := json.MarshalIndent(&pack, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// LoadPackDir imports every *.json pack in dir. A broken pack is
// skipped atomically and logged; the remaining packs still load.
func (r *TemplateRegistry) LoadPackDir(ctx context.Context, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("reading template directory: %w", err)
	}

	logger := ctxlog.FromContext(ctx)
	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		f, err := os.Open(path)
		if err != nil {
			logger.Warn("skipping unreadable template pack", "path", path, "error", err)
			continue
		}
		templates, err := r.ImportPack(f)
		f.Close()
		if err != nil {
			logger.Warn("skipping template pack", "path", path, "error", err)
			continue
		}
		logger.Debug("loaded template pack", "path", path, "templates", len(templates))
		loaded += len(templates)
	}
	return loaded, nil
}
