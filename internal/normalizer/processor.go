package normalizer

import (
	"recipepipe/internal/logger"
	"recipepipe/internal/models"
)

// Drop reasons.
const (
	DropMissingRecipeID  = "missing_recipe_id"
	DropDuplicateRecipe  = "duplicate_recipe_id"
	DropUnresolvedRecipe = "unresolved_recipe_id"
)

// DropStats counts the input rows that did not make it into the relations.
type DropStats struct {
	Dropped        map[string]int `json:"dropped"`
	Filter         FilterStats    `json:"interaction_filter"`
	RecipesIn      int            `json:"recipes_in"`
	RecipesOut     int            `json:"recipes_out"`
	InteractionsIn int            `json:"interactions_in"`
}

// Result is the output of a normalization run.
type Result struct {
	Dataset *models.Dataset
	Repairs map[string]int
	Stats   DropStats
}

// Processor runs recipe normalization, interaction normalization and
// referential filtering in sequence.
type Processor struct {
	log *logger.Logger
}

// NewProcessor creates a new processor instance.
func NewProcessor(log *logger.Logger) *Processor {
	if log == nil {
		log = logger.NewNop()
	}

	return &Processor{log: log.With("stage", "normalize")}
}

// Process normalizes raw recipe and interaction documents. It never fails on a
// malformed document.
func (p *Processor) Process(recipes, interactions []*models.Document) *Result {
	rr := NormalizeRecipes(recipes)
	ir := NormalizeInteractions(interactions)
	kept, filter := FilterInteractions(rr.Recipes, ir.Interactions)

	stats := DropStats{
		RecipesIn:      len(recipes),
		RecipesOut:     len(rr.Recipes),
		InteractionsIn: len(interactions),
		Filter:         filter,
		Dropped: map[string]int{
			DropMissingRecipeID:  rr.MissingID,
			DropDuplicateRecipe:  rr.Duplicates,
			DropUnresolvedRecipe: filter.Dropped,
		},
	}

	repairs := make(map[string]int)
	for _, r := range rr.Repairs {
		repairs[r.Key()]++
	}

	for _, r := range ir.Repairs {
		repairs[r.Key()]++
	}

	p.log.Info("normalized recipes",
		"in", stats.RecipesIn,
		"out", stats.RecipesOut,
		"ingredients", len(rr.Ingredients),
		"steps", len(rr.Steps),
		DropMissingRecipeID, rr.MissingID,
		DropDuplicateRecipe, rr.Duplicates,
	)
	p.log.Info("filtered interactions",
		"before", filter.Before,
		"after", filter.After,
		"dropped", filter.Dropped,
	)

	for key, n := range repairs {
		p.log.Debug("repaired field", "repair", key, "count", n)
	}

	return &Result{
		Dataset: &models.Dataset{
			Recipes:      rr.Recipes,
			Ingredients:  rr.Ingredients,
			Steps:        rr.Steps,
			Interactions: kept,
		},
		Repairs: repairs,
		Stats:   stats,
	}
}
