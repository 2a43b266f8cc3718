package validator

import (
	"errors"

	"recipepipe/internal/logger"
	"recipepipe/internal/models"
)

// ErrMissingRelations is returned when normalized validation is requested without relations.
var ErrMissingRelations = errors.New("missing artifact: normalized relations")

// Example describes one invalid record.
type Example struct {
	Record     *models.Document   `json:"-"`
	ID         string             `json:"id"`
	Reasons    []string           `json:"reasons"`
	Violations []models.Violation `json:"violations"`
}

// RelationReport summarizes the verdicts for one relation.
type RelationReport struct {
	InvalidExamples []Example `json:"invalid_examples"`
	Rejected        []Example `json:"-"`
	Total           int       `json:"total"`
	Valid           int       `json:"valid"`
	Invalid         int       `json:"invalid"`
}

// Report is the validation report for all relations.
type Report struct {
	Recipes      RelationReport `json:"recipes"`
	Interactions RelationReport `json:"interactions"`
	Users        RelationReport `json:"users"`
}

// IsValid reports whether every record of every relation passed.
func (r *Report) IsValid() bool {
	return r.Recipes.Invalid == 0 && r.Interactions.Invalid == 0 && r.Users.Invalid == 0
}

// Validator builds validation reports.
type Validator struct {
	log         *logger.Logger
	maxExamples int
}

// New creates a validator. maxExamples caps the examples listed per relation; 0 lists all.
func New(log *logger.Logger, maxExamples int) *Validator {
	if log == nil {
		log = logger.NewNop()
	}

	return &Validator{log: log.With("stage", "validate"), maxExamples: maxExamples}
}

// Validate checks raw documents. Interaction references are resolved against
// every raw recipe document carrying an identifier.
func (v *Validator) Validate(recipes, interactions, users []*models.Document) *Report {
	known := KnownRecipeIDs(recipes)

	return &Report{
		Recipes:      v.ValidateRecipes(recipes),
		Interactions: v.ValidateInteractions(interactions, known),
		Users:        v.ValidateUsers(users),
	}
}

// ValidateDataset checks normalized rows. Recipes are rebuilt with their
// ingredient and step rows so the same rules apply.
func (v *Validator) ValidateDataset(ds *models.Dataset, users []*models.Document) (*Report, error) {
	if ds == nil {
		return nil, ErrMissingRelations
	}

	recipes := RecipeDocuments(ds)
	interactions := make([]*models.Document, 0, len(ds.Interactions))

	for _, it := range ds.Interactions {
		interactions = append(interactions, InteractionDocument(it))
	}

	known := ds.RecipeIDs()

	return &Report{
		Recipes:      v.ValidateRecipes(recipes),
		Interactions: v.ValidateInteractions(interactions, known),
		Users:        v.ValidateUsers(users),
	}, nil
}

// ValidateRecipes builds the report for recipe documents.
func (v *Validator) ValidateRecipes(docs []*models.Document) RelationReport {
	return v.collect("recipes", docs, ValidateRecipe)
}

// ValidateInteractions builds the report for interaction documents.
func (v *Validator) ValidateInteractions(docs []*models.Document, known map[string]struct{}) RelationReport {
	return v.collect("interactions", docs, func(doc *models.Document) Verdict {
		return ValidateInteraction(doc, known)
	})
}

// ValidateUsers builds the report for user documents.
func (v *Validator) ValidateUsers(docs []*models.Document) RelationReport {
	return v.collect("users", docs, ValidateUser)
}

func (v *Validator) collect(relation string, docs []*models.Document, check func(*models.Document) Verdict) RelationReport {
	rep := RelationReport{
		InvalidExamples: []Example{},
		Rejected:        []Example{},
		Total:           len(docs),
	}

	for _, doc := range docs {
		verdict := check(doc)
		if verdict.Valid {
			rep.Valid++
			continue
		}

		rep.Invalid++

		ex := Example{
			Record:     doc,
			ID:         verdict.ID,
			Reasons:    models.Reasons(verdict.Violations),
			Violations: verdict.Violations,
		}

		rep.Rejected = append(rep.Rejected, ex)
		if v.maxExamples == 0 || len(rep.InvalidExamples) < v.maxExamples {
			rep.InvalidExamples = append(rep.InvalidExamples, ex)
		}
	}

	v.log.Info("validated relation",
		"relation", relation,
		"total", rep.Total,
		"valid", rep.Valid,
		"invalid", rep.Invalid,
	)

	return rep
}
