package validator

import "recipepipe/internal/models"

// RecipeDocuments re-expresses normalized recipe rows as documents, attaching
// each recipe's ingredient and step rows in relation order.
func RecipeDocuments(ds *models.Dataset) []*models.Document {
	ingredients := make(map[string][]models.Value)
	for _, ing := range ds.Ingredients {
		fields := []models.Field{
			models.F("name", models.String(ing.Name)),
			models.F("quantity", models.String(ing.Quantity)),
		}
		if ing.Order != nil {
			fields = append(fields, models.F("order", models.Int(*ing.Order)))
		}

		ingredients[ing.RecipeID] = append(ingredients[ing.RecipeID], models.Map(models.NewDocument(fields...)))
	}

	steps := make(map[string][]models.Value)
	for _, s := range ds.Steps {
		steps[s.RecipeID] = append(steps[s.RecipeID], models.Map(models.NewDocument(
			models.F("step_number", models.Int(s.StepNumber)),
			models.F("description", models.String(s.Description)),
		)))
	}

	out := make([]*models.Document, 0, len(ds.Recipes))
	for _, r := range ds.Recipes {
		out = append(out, RecipeDocument(r, ingredients[r.RecipeID], steps[r.RecipeID]))
	}

	return out
}

// RecipeDocument renders one recipe row with the given child entries.
func RecipeDocument(r models.Recipe, ingredients, steps []models.Value) *models.Document {
	tags := make([]models.Value, 0, len(r.Tags))
	for _, t := range r.Tags {
		tags = append(tags, models.String(t))
	}

	servings := models.Absent()
	if r.Servings != nil {
		servings = models.Int(*r.Servings)
	}

	return models.NewDocument(
		models.F(models.FieldRecipeID, models.String(r.RecipeID)),
		models.F("title", models.String(r.Title)),
		models.F("description", models.String(r.Description)),
		models.F("author_id", models.String(r.AuthorID)),
		models.F("servings", servings),
		models.F("prep_time_minutes", models.Int(r.PrepTimeMinutes)),
		models.F("cook_time_minutes", models.Int(r.CookTimeMinutes)),
		models.F("total_time_minutes", models.Int(r.TotalTimeMinutes)),
		models.F("difficulty", models.String(r.Difficulty)),
		models.F("cuisine", models.String(r.Cuisine)),
		models.F("tags", models.List(tags...)),
		models.F(models.FieldIngredients, models.List(ingredients...)),
		models.F(models.FieldSteps, models.List(steps...)),
		models.F("created_at", models.String(r.CreatedAt)),
		models.F("updated_at", models.String(r.UpdatedAt)),
	)
}

// InteractionDocument re-expresses a normalized interaction row as a document.
func InteractionDocument(it models.Interaction) *models.Document {
	user := models.Absent()
	if it.UserID != nil {
		user = models.String(*it.UserID)
	}

	value := models.Absent()
	if it.Value != nil {
		value = models.Int(*it.Value)
	}

	return models.NewDocument(
		models.F("interaction_id", models.String(it.InteractionID)),
		models.F(models.FieldRecipeID, models.String(it.RecipeID)),
		models.F("user_id", user),
		models.F("type", models.String(it.Type)),
		models.F("value", value),
		models.F("timestamp", models.String(it.Timestamp)),
	)
}
