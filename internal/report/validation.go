package report

import (
	"strings"

	"recipepipe/internal/models"
	"recipepipe/internal/validator"
)

const reasonSeparator = "; "

// Column layouts of the rejected-record files.
var (
	InvalidRecipeColumns      = []string{"recipe_id", "title", "reasons"}
	InvalidInteractionColumns = []string{"interaction_id", "recipe_id", "type", "timestamp", "reasons"}
	InvalidUserColumns        = []string{"user_id", "email", "reasons"}
)

func field(doc *models.Document, keys ...string) string {
	if doc == nil {
		return ""
	}

	return doc.First(keys...).Display()
}

// InvalidRecipeRows flattens rejected recipes.
func InvalidRecipeRows(rejected []validator.Example) [][]string {
	out := make([][]string, 0, len(rejected))
	for _, ex := range rejected {
		out = append(out, []string{
			ex.ID, field(ex.Record, "title"), strings.Join(ex.Reasons, reasonSeparator),
		})
	}

	return out
}

// InvalidInteractionRows flattens rejected interactions.
func InvalidInteractionRows(rejected []validator.Example) [][]string {
	out := make([][]string, 0, len(rejected))
	for _, ex := range rejected {
		out = append(out, []string{
			ex.ID,
			field(ex.Record, models.FieldRecipeID),
			field(ex.Record, "type"),
			field(ex.Record, "timestamp", "created_at"),
			strings.Join(ex.Reasons, reasonSeparator),
		})
	}

	return out
}

// InvalidUserRows flattens rejected users.
func InvalidUserRows(rejected []validator.Example) [][]string {
	out := make([][]string, 0, len(rejected))
	for _, ex := range rejected {
		out = append(out, []string{ex.ID, field(ex.Record, "email"), strings.Join(ex.Reasons, reasonSeparator)})
	}

	return out
}

// WriteValidation writes validation_report.json and, when CSV output is enabled,
// one invalid_*.csv per relation that rejected at least one record. Files left
// over from an earlier run with rejections are removed.
func (e *Emitter) WriteValidation(rep *validator.Report) error {
	if err := e.writeJSON(rep, ValidationJSON); err != nil {
		return err
	}

	if !e.writeCSV {
		return nil
	}

	files := []struct {
		name     string
		header   []string
		rejected []validator.Example
		encode   func([]validator.Example) [][]string
	}{
		{InvalidRecipes, InvalidRecipeColumns, rep.Recipes.Rejected, InvalidRecipeRows},
		{InvalidInteraction, InvalidInteractionColumns, rep.Interactions.Rejected, InvalidInteractionRows},
		{InvalidUsers, InvalidUserColumns, rep.Users.Rejected, InvalidUserRows},
	}

	for _, f := range files {
		if len(f.rejected) == 0 {
			if err := e.remove(f.name); err != nil {
				return err
			}

			continue
		}

		if err := e.writeTable(f.header, f.encode(f.rejected), f.name); err != nil {
			return err
		}
	}

	e.log.Info("wrote validation report",
		"valid", rep.IsValid(),
		"invalid_recipes", rep.Recipes.Invalid,
		"invalid_interactions", rep.Interactions.Invalid,
		"invalid_users", rep.Users.Invalid,
	)

	return nil
}
