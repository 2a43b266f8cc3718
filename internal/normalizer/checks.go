package normalizer

import (
	"strings"

	"recipepipe/internal/models"
)

const checkSampleSize = 5

// Checks summarizes the shape of a normalized dataset after transformation.
type Checks struct {
	RecipesWithoutIngredients []string       `json:"recipes_without_ingredients"`
	RecipesWithoutSteps       []string       `json:"recipes_without_steps"`
	Counts                    map[string]int `json:"counts"`
	BlankTimestamps           int            `json:"blank_timestamps"`
}

// Sample returns at most the first five ids of a check list.
func Sample(ids []string) []string {
	if len(ids) > checkSampleSize {
		return ids[:checkSampleSize]
	}

	return ids
}

// PostTransformChecks counts the relations, lists recipes that ended up with no
// ingredients or no steps, and counts interactions whose timestamp is unknown.
func PostTransformChecks(ds *models.Dataset) Checks {
	c := Checks{
		RecipesWithoutIngredients: []string{},
		RecipesWithoutSteps:       []string{},
		Counts: map[string]int{
			"recipes":      len(ds.Recipes),
			"ingredients":  len(ds.Ingredients),
			"steps":        len(ds.Steps),
			"interactions": len(ds.Interactions),
		},
	}

	withIngredients := make(map[string]struct{}, len(ds.Ingredients))
	for _, ing := range ds.Ingredients {
		withIngredients[ing.RecipeID] = struct{}{}
	}

	withSteps := make(map[string]struct{}, len(ds.Steps))
	for _, st := range ds.Steps {
		withSteps[st.RecipeID] = struct{}{}
	}

	for _, r := range ds.Recipes {
		if _, ok := withIngredients[r.RecipeID]; !ok {
			c.RecipesWithoutIngredients = append(c.RecipesWithoutIngredients, r.RecipeID)
		}

		if _, ok := withSteps[r.RecipeID]; !ok {
			c.RecipesWithoutSteps = append(c.RecipesWithoutSteps, r.RecipeID)
		}
	}

	for _, it := range ds.Interactions {
		if strings.TrimSpace(it.Timestamp) == UnknownTimestamp {
			c.BlankTimestamps++
		}
	}

	return c
}
