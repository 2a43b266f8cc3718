package normalizer

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"recipepipe/internal/models"
	"recipepipe/pkg/utils"
)

// idNamespace seeds every generated identifier, so identical input always
// yields identical ids.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("recipepipe"))

// RecipeResult holds the relations extracted from recipe documents.
type RecipeResult struct {
	Recipes     []models.Recipe
	Ingredients []models.Ingredient
	Steps       []models.Step
	Repairs     []Repair
	MissingID   int
	Duplicates  int
}

// NormalizeRecipes converts raw recipe documents into the recipe, ingredient
// and step relations. Documents without an identifier are dropped, as are later
// documents repeating an identifier already seen.
func NormalizeRecipes(docs []*models.Document) RecipeResult {
	res := RecipeResult{
		Recipes:     []models.Recipe{},
		Ingredients: []models.Ingredient{},
		Steps:       []models.Step{},
	}
	seen := make(map[string]struct{}, len(docs))

	for _, doc := range docs {
		id := RecipeID(doc)
		if id == "" {
			res.MissingID++
			continue
		}

		if _, dup := seen[id]; dup {
			res.Duplicates++
			continue
		}

		seen[id] = struct{}{}

		recipe, repairs := normalizeRecipe(id, doc)
		res.Recipes = append(res.Recipes, recipe)
		res.Repairs = append(res.Repairs, repairs...)

		ingredients, repairs := extractIngredients(id, doc)
		res.Ingredients = append(res.Ingredients, ingredients...)
		res.Repairs = append(res.Repairs, repairs...)

		steps, repairs := extractSteps(id, doc)
		res.Steps = append(res.Steps, steps...)
		res.Repairs = append(res.Repairs, repairs...)
	}

	return res
}

// RecipeID resolves a recipe's identity: recipe_id, else the document-store id.
func RecipeID(doc *models.Document) string {
	return doc.First(models.FieldRecipeID, models.FieldDocID).Display()
}

func normalizeRecipe(id string, doc *models.Document) (models.Recipe, []Repair) {
	var repairs []Repair

	note := func(field, reason string) {
		repairs = append(repairs, Repair{RecordID: id, Field: field, Reason: reason})
	}

	minutes := func(field string) int {
		v := doc.Get(field)

		n, ok := AsInt(v)
		switch {
		case !ok:
			note(field, ReasonDefaulted)
			return 0
		case n < 0:
			note(field, ReasonNegative)
			return 0
		}

		return n
	}

	r := models.Recipe{
		RecipeID:        id,
		Title:           AsString(doc.Get("title")),
		Description:     AsString(doc.Get("description")),
		AuthorID:        AsString(doc.Get("author_id")),
		Cuisine:         AsString(doc.Get("cuisine")),
		CreatedAt:       AsString(doc.Get("created_at")),
		UpdatedAt:       AsString(doc.Get("updated_at")),
		Tags:            AsTags(doc.Get("tags")),
		PrepTimeMinutes: minutes("prep_time_minutes"),
		CookTimeMinutes: minutes("cook_time_minutes"),
	}

	r.TotalTimeMinutes = r.PrepTimeMinutes + r.CookTimeMinutes
	if stored, ok := AsInt(doc.Get("total_time_minutes")); ok && stored != r.TotalTimeMinutes {
		note("total_time_minutes", ReasonRecomputed)
	}

	if v := doc.Get("servings"); !v.IsAbsent() {
		n, ok := AsInt(v)

		switch {
		case !ok:
			note("servings", ReasonUnparsable)
		case n < 0:
			note("servings", ReasonNegative)
		default:
			r.Servings = &n
		}
	}

	r.Difficulty = utils.NormalizeKey(AsString(doc.Get("difficulty")))
	if !models.IsValidDifficulty(r.Difficulty) {
		if r.Difficulty == "" {
			note("difficulty", ReasonDefaulted)
		} else {
			note("difficulty", ReasonInvalidEnum)
		}

		r.Difficulty = models.DifficultyMedium
	}

	return r, repairs
}

func extractIngredients(id string, doc *models.Document) ([]models.Ingredient, []Repair) {
	var repairs []Repair

	entries, scalar := AsEntries(doc.Get(models.FieldIngredients))
	if scalar {
		repairs = append(repairs, Repair{RecordID: id, Field: models.FieldIngredients, Reason: ReasonScalarEntry})
	}

	out := make([]models.Ingredient, 0, len(entries))

	for i, entry := range entries {
		ing := models.Ingredient{
			RecipeID:     id,
			IngredientID: IngredientID(id, i),
		}

		if fields := entry.Doc(); fields != nil {
			ing.Name = utils.NormalizeKey(AsString(fields.Get("name")))
			ing.Quantity = strings.TrimSpace(AsString(fields.Get("quantity")))

			if order, ok := AsInt(fields.Get("order")); ok {
				ing.Order = &order
			}
		} else {
			ing.Name = utils.NormalizeKey(AsString(entry))
		}

		out = append(out, ing)
	}

	return out, repairs
}

func extractSteps(id string, doc *models.Document) ([]models.Step, []Repair) {
	var repairs []Repair

	entries, scalar := AsEntries(doc.Get(models.FieldSteps))
	if scalar {
		repairs = append(repairs, Repair{RecordID: id, Field: models.FieldSteps, Reason: ReasonScalarEntry})
	}

	out := make([]models.Step, 0, len(entries))
	renumbered := false

	// Steps are numbered 1..k in declaration order; supplied numbers are discarded.
	for i, entry := range entries {
		step := models.Step{RecipeID: id, StepNumber: i + 1}

		if fields := entry.Doc(); fields != nil {
			step.Description = strings.TrimSpace(AsString(fields.Get("description")))

			if n, ok := AsInt(fields.Get("step_number")); !ok || n != step.StepNumber {
				renumbered = true
			}
		} else {
			step.Description = strings.TrimSpace(AsString(entry))
			renumbered = true
		}

		out = append(out, step)
	}

	if renumbered {
		repairs = append(repairs, Repair{RecordID: id, Field: "step_number", Reason: ReasonRenumbered})
	}

	return out, repairs
}

// IngredientID derives a stable identifier for the i-th ingredient of a recipe.
func IngredientID(recipeID string, i int) string {
	return uuid.NewSHA1(idNamespace, []byte("ingredient/"+recipeID+"/"+strconv.Itoa(i))).String()
}
