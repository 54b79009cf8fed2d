package file

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/docsmith/internal/core/domain"
	"github.com/custodia-labs/docsmith/internal/core/ports/driven"
)

// Ensure TemplateSource implements the interfaces.
var (
	_ driven.TemplateSource = (*TemplateSource)(nil)
	_ driven.TemplateWriter = (*TemplateSource)(nil)
)

//go:embed templates/*.yaml
var builtinTemplates embed.FS

const templateExt = ".yaml"

// TemplateSource loads YAML templates from a user directory, falling back
// to the templates compiled into the binary. A user file shadows the
// built-in template of the same kind.
type TemplateSource struct {
	dir string
}

// NewTemplateSource creates a template source reading from dir.
// An empty dir serves built-in templates only.
func NewTemplateSource(dir string) *TemplateSource {
	return &TemplateSource{dir: dir}
}

// Dir returns the user template directory.
func (s *TemplateSource) Dir() string {
	return s.dir
}

// Load returns the template for kind.
func (s *TemplateSource) Load(_ context.Context, kind string) (*domain.Template, error) {
	if !validKind(kind) {
		return nil, fmt.Errorf("%q: %w", kind, domain.ErrTemplateNotFound)
	}

	data, err := s.read(kind)
	if err != nil {
		return nil, err
	}

	var t domain.Template
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("%s%s: %w: %w", kind, templateExt, domain.ErrTemplateMalformed, err)
	}
	if t.Kind == "" {
		t.Kind = kind
	}
	if t.Kind != kind {
		return nil, fmt.Errorf("%s%s declares kind %q: %w", kind, templateExt, t.Kind, domain.ErrTemplateMalformed)
	}
	return &t, nil
}

func (s *TemplateSource) read(kind string) ([]byte, error) {
	name := kind + templateExt
	if s.dir != "" {
		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read template %s: %w", name, err)
		}
	}

	data, err := builtinTemplates.ReadFile("templates/" + name)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", kind, domain.ErrTemplateNotFound)
	}
	return data, nil
}

// Kinds lists built-in and user template kinds in sorted order.
func (s *TemplateSource) Kinds(_ context.Context) ([]string, error) {
	seen := make(map[string]bool)

	builtin, err := fs.Glob(builtinTemplates, "templates/*"+templateExt)
	if err != nil {
		return nil, err
	}
	for _, p := range builtin {
		seen[strings.TrimSuffix(filepath.Base(p), templateExt)] = true
	}

	if s.dir != "" {
		entries, err := os.ReadDir(s.dir)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("list templates: %w", err)
		}
		for _, e := range entries {
			if e.IsDir() || filepath.Ext(e.Name()) != templateExt {
				continue
			}
			seen[strings.TrimSuffix(e.Name(), templateExt)] = true
		}
	}

	kinds := make([]string, 0, len(seen))
	for k := range seen {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds, nil
}

// SaveTemplate writes t to the user directory as <kind>.yaml.
func (s *TemplateSource) SaveTemplate(_ context.Context, t *domain.Template) error {
	if s.dir == "" {
		return errors.New("no template directory configured")
	}
	if t == nil {
		return fmt.Errorf("template: %w", domain.ErrInvalidInput)
	}
	if err := t.Validate(); err != nil {
		return err
	}
	if !validKind(t.Kind) {
		return domain.NewValidationError("kind", "template kind must be a plain name")
	}

	data, err := yaml.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode template %s: %w", t.Kind, err)
	}
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("create template directory: %w", err)
	}
	return os.WriteFile(filepath.Join(s.dir, t.Kind+templateExt), data, 0600)
}

// validKind rejects kinds that would escape the template directory.
func validKind(kind string) bool {
	return kind != "" && !strings.ContainsAny(kind, `/\.`)
}
