// Package report writes the pipeline artifacts: normalized relations as CSV, the
// validation and insights reports as JSON and CSV, and a signed markdown summary.
// Identical input always produces byte-identical files.
package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"recipepipe/internal/config"
	"recipepipe/internal/logger"
)

// Artifact file names, relative to the output directory.
const (
	NormalizedDir      = "normalized"
	RecipesCSV         = "recipes.csv"
	IngredientsCSV     = "ingredients.csv"
	StepsCSV           = "steps.csv"
	InteractionsCSV    = "interactions.csv"
	ValidationJSON     = "validation_report.json"
	InvalidRecipes     = "invalid_recipes.csv"
	InvalidInteraction = "invalid_interactions.csv"
	InvalidUsers       = "invalid_users.csv"
	InsightsJSON       = "insights_summary.json"
	InsightsCSV        = "insights_table.csv"
	ChecksJSON         = "post_transform_checks.json"
	SummaryMarkdown    = "report.md"
)

// Emitter writes artifacts under one output directory.
type Emitter struct {
	log           *logger.Logger
	dir           string
	prettyPrint   bool
	writeCSV      bool
	writeMarkdown bool
}

// NewEmitter creates an emitter for the output config.
func NewEmitter(cfg *config.OutputConfig, log *logger.Logger) *Emitter {
	if log == nil {
		log = logger.NewNop()
	}

	return &Emitter{
		log:           log.With("stage", "emit"),
		dir:           cfg.Dir,
		prettyPrint:   cfg.PrettyPrint,
		writeCSV:      cfg.WriteCSV,
		writeMarkdown: cfg.WriteMarkdown,
	}
}

// Dir returns the output directory.
func (e *Emitter) Dir() string {
	return e.dir
}

// Path returns the absolute location of an artifact.
func (e *Emitter) Path(parts ...string) string {
	return filepath.Join(append([]string{e.dir}, parts...)...)
}

func (e *Emitter) writeFile(data []byte, parts ...string) error {
	path := e.Path(parts...)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	e.log.Debug("wrote artifact", "path", path, "bytes", len(data))

	return nil
}

func (e *Emitter) writeJSON(v any, parts ...string) error {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if e.prettyPrint {
		enc.SetIndent("", "  ")
	}

	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Join(parts...), err)
	}

	return e.writeFile(buf.Bytes(), parts...)
}

func (e *Emitter) writeTable(header []string, rows [][]string, parts ...string) error {
	var buf bytes.Buffer

	w := csv.NewWriter(&buf)

	if err := w.Write(header); err != nil {
		return err
	}

	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Join(parts...), err)
	}

	return e.writeFile(buf.Bytes(), parts...)
}

// remove deletes a stale artifact from a previous run.
func (e *Emitter) remove(parts ...string) error {
	err := os.Remove(e.Path(parts...))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove stale %s: %w", filepath.Join(parts...), err)
	}

	return nil
}
