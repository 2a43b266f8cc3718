// Package models defines the raw document shapes and the normalized relations of the recipe pipeline.
package models

import "strings"

// Difficulty values.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// TagSeparator joins tags in tabular encodings. It is removed from individual tags,
// so it never appears inside one.
const TagSeparator = "\x1f"

// Document-store field names shared by the normalizer and the validator.
const (
	FieldDocID       = "_doc_id"
	FieldRecipeID    = "recipe_id"
	FieldIngredients = "ingredients"
	FieldSteps       = "steps"
)

// Recipe is a row of the normalized recipe relation.
type Recipe struct {
	Servings         *int     `json:"servings"`
	RecipeID         string   `json:"recipe_id"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	AuthorID         string   `json:"author_id"`
	Difficulty       string   `json:"difficulty"`
	Cuisine          string   `json:"cuisine"`
	CreatedAt        string   `json:"created_at"`
	UpdatedAt        string   `json:"updated_at"`
	Tags             []string `json:"tags"`
	PrepTimeMinutes  int      `json:"prep_time_minutes"`
	CookTimeMinutes  int      `json:"cook_time_minutes"`
	TotalTimeMinutes int      `json:"total_time_minutes"`
}

// Ingredient is a row of the normalized ingredient relation.
type Ingredient struct {
	Order        *int   `json:"order"`
	RecipeID     string `json:"recipe_id"`
	IngredientID string `json:"ingredient_id"`
	Name         string `json:"name"`
	Quantity     string `json:"quantity"`
}

// Step is a row of the normalized step relation.
type Step struct {
	RecipeID    string `json:"recipe_id"`
	Description string `json:"description"`
	StepNumber  int    `json:"step_number"`
}

// IsValidDifficulty reports whether d is one of easy, medium or hard.
func IsValidDifficulty(d string) bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}

	return false
}

// JoinTags encodes tags as a single delimited string.
func JoinTags(tags []string) string {
	return strings.Join(tags, TagSeparator)
}

// SplitTags decodes a string produced by JoinTags.
func SplitTags(s string) []string {
	if s == "" {
		return []string{}
	}

	return strings.Split(s, TagSeparator)
}

// CleanTag strips the separator from a single tag.
func CleanTag(tag string) string {
	return strings.ReplaceAll(tag, TagSeparator, "")
}
