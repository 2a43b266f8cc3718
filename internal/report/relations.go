package report

import (
	"strconv"

	"recipepipe/internal/models"
	"recipepipe/internal/normalizer"
)

// Column layouts of the normalized relation files.
var (
	RecipeColumns = []string{
		"recipe_id", "title", "description", "author_id", "difficulty", "cuisine", "servings",
		"prep_time_minutes", "cook_time_minutes", "total_time_minutes", "tags", "created_at", "updated_at",
	}
	IngredientColumns  = []string{"ingredient_id", "recipe_id", "name", "quantity", "order"}
	StepColumns        = []string{"recipe_id", "step_number", "description"}
	InteractionColumns = []string{"interaction_id", "recipe_id", "user_id", "type", "value", "timestamp"}
)

func optInt(p *int) string {
	if p == nil {
		return ""
	}

	return strconv.Itoa(*p)
}

func optString(p *string) string {
	if p == nil {
		return ""
	}

	return *p
}

// RecipeRows encodes the recipe relation. Tags are joined with models.TagSeparator.
func RecipeRows(rows []models.Recipe) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			r.RecipeID, r.Title, r.Description, r.AuthorID, r.Difficulty, r.Cuisine, optInt(r.Servings),
			strconv.Itoa(r.PrepTimeMinutes), strconv.Itoa(r.CookTimeMinutes), strconv.Itoa(r.TotalTimeMinutes),
			models.JoinTags(r.Tags), r.CreatedAt, r.UpdatedAt,
		})
	}

	return out
}

// IngredientRows encodes the ingredient relation.
func IngredientRows(rows []models.Ingredient) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{r.IngredientID, r.RecipeID, r.Name, r.Quantity, optInt(r.Order)})
	}

	return out
}

// StepRows encodes the step relation.
func StepRows(rows []models.Step) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{r.RecipeID, strconv.Itoa(r.StepNumber), r.Description})
	}

	return out
}

// InteractionRows encodes the interaction relation.
func InteractionRows(rows []models.Interaction) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			r.InteractionID, r.RecipeID, optString(r.UserID), r.Type, optInt(r.Value), r.Timestamp,
		})
	}

	return out
}

// WriteNormalized writes the four relations under normalized/. It is a no-op when
// CSV output is disabled.
func (e *Emitter) WriteNormalized(ds *models.Dataset) error {
	if !e.writeCSV {
		return nil
	}

	tables := []struct {
		name   string
		header []string
		rows   [][]string
	}{
		{RecipesCSV, RecipeColumns, RecipeRows(ds.Recipes)},
		{IngredientsCSV, IngredientColumns, IngredientRows(ds.Ingredients)},
		{StepsCSV, StepColumns, StepRows(ds.Steps)},
		{InteractionsCSV, InteractionColumns, InteractionRows(ds.Interactions)},
	}

	for _, t := range tables {
		if err := e.writeTable(t.header, t.rows, NormalizedDir, t.name); err != nil {
			return err
		}
	}

	e.log.Info("wrote normalized relations", "dir", e.Path(NormalizedDir))

	return nil
}

// WriteChecks writes the post-transform checks.
func (e *Emitter) WriteChecks(c normalizer.Checks) error {
	return e.writeJSON(c, ChecksJSON)
}
