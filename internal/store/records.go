package store

import "recipepipe/internal/models"

// Records mirror the normalized relations. Seq keeps relation order across a
// round trip.
type recipeRecord struct {
	Servings         *int
	RecipeID         string `gorm:"uniqueIndex;not null"`
	Title            string
	Description      string
	AuthorID         string
	Difficulty       string `gorm:"type:varchar(16)"`
	Cuisine          string
	SourceCreatedAt  string `gorm:"column:created_at"`
	SourceUpdatedAt  string `gorm:"column:updated_at"`
	Tags             string
	Seq              int `gorm:"primaryKey;autoIncrement:false"`
	PrepTimeMinutes  int
	CookTimeMinutes  int
	TotalTimeMinutes int
}

func (recipeRecord) TableName() string { return "recipes" }

type ingredientRecord struct {
	Order        *int   `gorm:"column:ingredient_order"`
	RecipeID     string `gorm:"index;not null"`
	IngredientID string `gorm:"not null"`
	Name         string
	Quantity     string
	Seq          int `gorm:"primaryKey;autoIncrement:false"`
}

func (ingredientRecord) TableName() string { return "ingredients" }

type stepRecord struct {
	RecipeID    string `gorm:"index;not null"`
	Description string
	StepNumber  int
	Seq         int `gorm:"primaryKey;autoIncrement:false"`
}

func (stepRecord) TableName() string { return "steps" }

type interactionRecord struct {
	UserID        *string
	Value         *int
	InteractionID string `gorm:"not null"`
	RecipeID      string `gorm:"index;not null"`
	Type          string `gorm:"type:varchar(16)"`
	Timestamp     string
	Seq           int `gorm:"primaryKey;autoIncrement:false"`
}

func (interactionRecord) TableName() string { return "interactions" }

func allRecords() []any {
	return []any{&recipeRecord{}, &ingredientRecord{}, &stepRecord{}, &interactionRecord{}}
}

func toRecipeRecords(rows []models.Recipe) []recipeRecord {
	out := make([]recipeRecord, len(rows))
	for i, r := range rows {
		out[i] = recipeRecord{
			Seq:              i,
			RecipeID:         r.RecipeID,
			Title:            r.Title,
			Description:      r.Description,
			AuthorID:         r.AuthorID,
			Difficulty:       r.Difficulty,
			Cuisine:          r.Cuisine,
			SourceCreatedAt:  r.CreatedAt,
			SourceUpdatedAt:  r.UpdatedAt,
			Tags:             models.JoinTags(r.Tags),
			Servings:         r.Servings,
			PrepTimeMinutes:  r.PrepTimeMinutes,
			CookTimeMinutes:  r.CookTimeMinutes,
			TotalTimeMinutes: r.TotalTimeMinutes,
		}
	}

	return out
}

func (r recipeRecord) model() models.Recipe {
	return models.Recipe{
		RecipeID:         r.RecipeID,
		Title:            r.Title,
		Description:      r.Description,
		AuthorID:         r.AuthorID,
		Difficulty:       r.Difficulty,
		Cuisine:          r.Cuisine,
		CreatedAt:        r.SourceCreatedAt,
		UpdatedAt:        r.SourceUpdatedAt,
		Tags:             models.SplitTags(r.Tags),
		Servings:         r.Servings,
		PrepTimeMinutes:  r.PrepTimeMinutes,
		CookTimeMinutes:  r.CookTimeMinutes,
		TotalTimeMinutes: r.TotalTimeMinutes,
	}
}

func toIngredientRecords(rows []models.Ingredient) []ingredientRecord {
	out := make([]ingredientRecord, len(rows))
	for i, r := range rows {
		out[i] = ingredientRecord{
			Seq:          i,
			RecipeID:     r.RecipeID,
			IngredientID: r.IngredientID,
			Name:         r.Name,
			Quantity:     r.Quantity,
			Order:        r.Order,
		}
	}

	return out
}

func (r ingredientRecord) model() models.Ingredient {
	return models.Ingredient{
		RecipeID:     r.RecipeID,
		IngredientID: r.IngredientID,
		Name:         r.Name,
		Quantity:     r.Quantity,
		Order:        r.Order,
	}
}

func toStepRecords(rows []models.Step) []stepRecord {
	out := make([]stepRecord, len(rows))
	for i, r := range rows {
		out[i] = stepRecord{Seq: i, RecipeID: r.RecipeID, StepNumber: r.StepNumber, Description: r.Description}
	}

	return out
}

func (r stepRecord) model() models.Step {
	return models.Step{RecipeID: r.RecipeID, StepNumber: r.StepNumber, Description: r.Description}
}

func toInteractionRecords(rows []models.Interaction) []interactionRecord {
	out := make([]interactionRecord, len(rows))
	for i, r := range rows {
		out[i] = interactionRecord{
			Seq:           i,
			InteractionID: r.InteractionID,
			UserID:        r.UserID,
			RecipeID:      r.RecipeID,
			Type:          r.Type,
			Value:         r.Value,
			Timestamp:     r.Timestamp,
		}
	}

	return out
}

func (r interactionRecord) model() models.Interaction {
	return models.Interaction{
		InteractionID: r.InteractionID,
		UserID:        r.UserID,
		RecipeID:      r.RecipeID,
		Type:          r.Type,
		Value:         r.Value,
		Timestamp:     r.Timestamp,
	}
}
