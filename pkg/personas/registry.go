// Package personas provides the executor behavioral briefs referenced by
// workflow steps. Built-in personas can be shadowed by project-local YAML
// files, so any project can customize a persona without touching code.
package personas

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/speckit/speckit/pkg/models"
)

const (
	localConfigDir = ".speckit"
	personasDir    = "personas"
)

// ErrPersonaNotFound indicates no persona matches the requested name.
var ErrPersonaNotFound = errors.New("persona not found")

// Registry resolves persona names to definitions, checking the project-local
// override directory before the built-ins.
type Registry struct {
	root     string
	validate *validator.Validate
	builtins map[string]models.Persona
}

// NewRegistry creates a registry anchored at the given project root.
func NewRegistry(root string) *Registry {
	return &Registry{
		root:     root,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		builtins: builtinPersonas(),
	}
}

// Get resolves a persona by name. Local overrides shadow built-ins.
func (r *Registry) Get(name string) (*models.Persona, error) {
	if persona, err := r.loadLocal(name); err != nil {
		return nil, err
	} else if persona != nil {
		return persona, nil
	}

	if persona, ok := r.builtins[name]; ok {
		return &persona, nil
	}

	return nil, fmt.Errorf("%w: %q, available: %s", ErrPersonaNotFound, name, strings.Join(r.names(), ", "))
}

// GetOrDefault resolves the named persona, falling back to the generic
// spec-writer brief when the name is empty or unknown. Step instruction
// generation must not fail over a missing persona; the workflow author sees
// the fallback in the emitted instruction and can correct the definition.
func (r *Registry) GetOrDefault(name string) *models.Persona {
	if name != "" {
		if persona, err := r.Get(name); err == nil {
			return persona
		}
	}

	fallback := r.builtins[DefaultPersona]

	return &fallback
}

func (r *Registry) loadLocal(name string) (*models.Persona, error) {
	path := filepath.Join(r.root, localConfigDir, personasDir, name+".yaml")

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to read persona %q: %w", name, err)
	}

	var persona models.Persona
	if err := yaml.Unmarshal(data, &persona); err != nil {
		return nil, fmt.Errorf("failed to parse persona %q: %w", name, err)
	}

	if persona.Name == "" {
		persona.Name = name
	}

	if err := r.validate.Struct(&persona); err != nil {
		return nil, fmt.Errorf("invalid persona %q: %w", name, err)
	}

	return &persona, nil
}

func (r *Registry) names() []string {
	names := make([]string, 0, len(r.builtins))
	for name := range r.builtins {
		names = append(names, name)
	}

	return names
}

// List returns every known persona, local overrides applied.
func (r *Registry) List() []models.Persona {
	out := make([]models.Persona, 0, len(r.builtins))

	for name := range r.builtins {
		if persona, err := r.Get(name); err == nil {
			out = append(out, *persona)
		}
	}

	return out
}
