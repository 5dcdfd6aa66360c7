// Package workflow loads, validates and lists declarative workflow
// definitions and their paired document templates.
package workflow

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/speckit/speckit/pkg/models"
)

//go:embed defaults/workflows defaults/templates
var defaultsFS embed.FS

const (
	localConfigDir = ".speckit"
	workflowsDir   = "workflows"
	templatesDir   = "templates"
)

type searchTier struct {
	source models.WorkflowSource
	fsys   fs.FS
	dir    string
}

// Resolver finds workflow definitions and templates by name across an
// ordered list of locations: a project-local override directory, a
// project-root convenience directory, then the packaged defaults. First
// match wins, no merging.
type Resolver struct {
	root     string
	validate *validator.Validate
}

// NewResolver creates a resolver anchored at the given project root
// (normally the process working directory).
func NewResolver(root string) *Resolver {
	return &Resolver{
		root:     root,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (r *Resolver) workflowTiers() []searchTier {
	return []searchTier{
		{source: models.SourceLocal, fsys: os.DirFS(filepath.Join(r.root, localConfigDir, workflowsDir)), dir: "."},
		{source: models.SourceProject, fsys: os.DirFS(filepath.Join(r.root, workflowsDir)), dir: "."},
		{source: models.SourcePackage, fsys: defaultsFS, dir: "defaults/workflows"},
	}
}

func (r *Resolver) templateTiers() []searchTier {
	return []searchTier{
		{source: models.SourceLocal, fsys: os.DirFS(filepath.Join(r.root, localConfigDir, templatesDir)), dir: "."},
		{source: models.SourceProject, fsys: os.DirFS(filepath.Join(r.root, templatesDir)), dir: "."},
		{source: models.SourcePackage, fsys: defaultsFS, dir: "defaults/templates"},
	}
}

// Resolve loads and validates a workflow definition by name (no extension).
// Returns a NotFoundError listing available names when no file matches, or a
// ValidationError when the document violates the schema.
func (r *Resolver) Resolve(name string) (*models.WorkflowDefinition, error) {
	for _, tier := range r.workflowTiers() {
		for _, ext := range []string{".yaml", ".yml"} {
			data, err := fs.ReadFile(tier.fsys, path.Join(tier.dir, name+ext))
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					continue
				}

				return nil, fmt.Errorf("failed to read workflow %q: %w", name, err)
			}

			return r.parseDefinition(name, data)
		}
	}

	available := make([]string, 0)
	for _, summary := range r.listSummaries() {
		available = append(available, summary.Name)
	}

	return nil, &NotFoundError{Kind: "workflow", Name: name, Available: available}
}

// ResolveTemplate loads the document template addressed by a workflow's
// template field, searching the same three tiers as Resolve.
func (r *Resolver) ResolveTemplate(ref string) (string, error) {
	fileName := ref
	if !strings.HasSuffix(fileName, ".md") {
		fileName += ".md"
	}

	for _, tier := range r.templateTiers() {
		data, err := fs.ReadFile(tier.fsys, path.Join(tier.dir, fileName))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}

			return "", fmt.Errorf("failed to read template %q: %w", ref, err)
		}

		return string(data), nil
	}

	return "", &NotFoundError{Kind: "template", Name: ref, Available: r.listTemplateNames()}
}

// ListAll returns a summary per available workflow, deduplicated by name
// with search-order priority (a local override shadows the packaged default
// of the same name). Files that fail to parse still appear by name so the
// operator can see and fix them.
func (r *Resolver) ListAll() []models.WorkflowSummary {
	return r.listSummaries()
}

func (r *Resolver) listSummaries() []models.WorkflowSummary {
	seen := make(map[string]bool)
	summaries := make([]models.WorkflowSummary, 0)

	for _, tier := range r.workflowTiers() {
		names, err := globNames(tier.fsys, tier.dir)
		if err != nil {
			continue
		}

		for _, name := range names {
			if seen[name] {
				continue
			}

			seen[name] = true

			summary := models.WorkflowSummary{Name: name, Source: tier.source}

			if def, err := r.Resolve(name); err == nil {
				summary.DisplayName = def.DisplayName
				summary.Description = def.Description
				summary.Template = def.Template
				summary.StepCount = len(def.Steps)
			}

			summaries = append(summaries, summary)
		}
	}

	return summaries
}

func (r *Resolver) listTemplateNames() []string {
	seen := make(map[string]bool)
	names := make([]string, 0)

	for _, tier := range r.templateTiers() {
		entries, err := fs.Glob(tier.fsys, path.Join(tier.dir, "*.md"))
		if err != nil {
			continue
		}

		for _, entry := range entries {
			name := strings.TrimSuffix(path.Base(entry), ".md")
			if !seen[name] {
				seen[name] = true

				names = append(names, name)
			}
		}
	}

	return names
}

func globNames(fsys fs.FS, dir string) ([]string, error) {
	names := make([]string, 0)

	for _, pattern := range []string{"*.yaml", "*.yml"} {
		entries, err := fs.Glob(fsys, path.Join(dir, pattern))
		if err != nil {
			return nil, err
		}

		for _, entry := range entries {
			base := path.Base(entry)
			names = append(names, strings.TrimSuffix(base, path.Ext(base)))
		}
	}

	return names, nil
}

// parseDefinition decodes and fully validates a workflow document. All
// violations are collected into a single ValidationError so a malformed
// workflow fails fast with one diagnostic.
func (r *Resolver) parseDefinition(name string, data []byte) (*models.WorkflowDefinition, error) {
	var document map[string]any
	if err := yaml.Unmarshal(data, &document); err != nil {
		return nil, &ValidationError{Name: name, Issues: []Issue{{Path: "(document)", Reason: err.Error()}}}
	}

	issues, err := validateDocument(document)
	if err != nil {
		return nil, err
	}

	if len(issues) > 0 {
		return nil, &ValidationError{Name: name, Issues: issues}
	}

	var def models.WorkflowDefinition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, &ValidationError{Name: name, Issues: []Issue{{Path: "(document)", Reason: err.Error()}}}
	}

	if err := r.validate.Struct(&def); err != nil {
		return nil, &ValidationError{Name: name, Issues: structIssues(err)}
	}

	if issues := semanticIssues(&def); len(issues) > 0 {
		return nil, &ValidationError{Name: name, Issues: issues}
	}

	return &def, nil
}

func structIssues(err error) []Issue {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return []Issue{{Path: "(document)", Reason: err.Error()}}
	}

	issues := make([]Issue, 0, len(fieldErrors))
	for _, fieldErr := range fieldErrors {
		path := strings.TrimPrefix(fieldErr.Namespace(), "WorkflowDefinition.")
		issues = append(issues, Issue{
			Path:   path,
			Reason: fmt.Sprintf("failed %q validation", fieldErr.Tag()),
		})
	}

	return issues
}

// semanticIssues applies the checks the structural schema cannot express:
// the closed action enum, step id uniqueness, and that every explicit next
// reference resolves within the same workflow.
func semanticIssues(def *models.WorkflowDefinition) []Issue {
	issues := make([]Issue, 0)
	stepIDs := make(map[string]bool, len(def.Steps))

	for i, step := range def.Steps {
		if stepIDs[step.ID] {
			issues = append(issues, Issue{
				Path:   fmt.Sprintf("steps[%d].id", i),
				Reason: fmt.Sprintf("duplicate step id %q", step.ID),
			})
		}

		stepIDs[step.ID] = true
	}

	for i, step := range def.Steps {
		if !step.Action.IsValid() {
			issues = append(issues, Issue{
				Path:   fmt.Sprintf("steps[%d].action", i),
				Reason: fmt.Sprintf("step %q has unsupported action %q, known actions: %v", step.ID, step.Action, models.KnownActionKinds()),
			})
		}

		if step.Next != "" && !stepIDs[step.Next] {
			issues = append(issues, Issue{
				Path:   fmt.Sprintf("steps[%d].next", i),
				Reason: fmt.Sprintf("step %q references unknown next step %q", step.ID, step.Next),
			})
		}
	}

	return issues
}
