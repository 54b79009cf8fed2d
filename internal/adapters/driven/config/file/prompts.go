package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/docsmith/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

const promptExt = ".txt"

// PromptStore serves system prompts from user-editable files, seeded from
// a set of built-in defaults.
//
// Nothing touches the disk until the first Load: the directory and the
// default files are created then, once per store.
type PromptStore struct {
	dir      string
	defaults map[string]string

	mu    sync.RWMutex
	cache map[string]string

	initOnce sync.Once
	initErr  error
}

// NewPromptStore creates a prompt store over dir.
// If dir is empty, defaults to ~/.docsmith/prompts.
func NewPromptStore(dir string, defaults map[string]string) (*PromptStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, DefaultDirName, "prompts")
	}

	copied := make(map[string]string, len(defaults))
	for k, v := range defaults {
		copied[k] = v
	}

	return &PromptStore{
		dir:      dir,
		defaults: copied,
		cache:    make(map[string]string),
	}, nil
}

// Load returns the prompt called name. A user file wins over the default;
// a missing or unreadable file falls back to the default.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.seed)

	s.mu.RLock()
	prompt, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return prompt, nil
	}

	prompt, err := s.readFile(name)
	if err != nil || prompt == "" {
		if def, ok := s.defaults[name]; ok {
			return def, nil
		}
		if s.initErr != nil {
			return "", fmt.Errorf("prompt %q: %w", name, s.initErr)
		}
		return "", fmt.Errorf("prompt %q: %w", name, os.ErrNotExist)
	}

	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		prompt = cached
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload drops cached prompts so edited files are picked up.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory.
func (s *PromptStore) Dir() string {
	return s.dir
}

// seed writes a file for every default prompt that has none yet.
// Existing files are never overwritten.
func (s *PromptStore) seed() {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	for name, content := range s.defaults {
		path := filepath.Join(s.dir, name+promptExt)
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			s.initErr = fmt.Errorf("write default prompt %q: %w", name, err)
			return
		}
	}

	if err := s.writeReadme(); err != nil {
		s.initErr = err
	}
}

func (s *PromptStore) readFile(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid prompt name %q", name)
	}
	data, err := os.ReadFile(filepath.Join(s.dir, name+promptExt))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *PromptStore) writeReadme() error {
	path := filepath.Join(s.dir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil
	}

	names := make([]string, 0, len(s.defaults))
	for name := range s.defaults {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("# docsmith prompts\n\n")
	b.WriteString("Each file holds one system prompt used during document generation.\n")
	b.WriteString("Edit a file to change the assistant's behaviour; delete it to restore the default.\n\n")
	b.WriteString("## Files\n\n")
	for _, name := range names {
		fmt.Fprintf(&b, "- `%s%s`\n", name, promptExt)
	}
	b.WriteString("\nThe `clarification` prompt must keep its single `%s` placeholder.\n")
	b.WriteString("Files named `template_<kind>.txt` add guidance for one template kind.\n")

	return os.WriteFile(path, []byte(b.String()), 0600)
}
