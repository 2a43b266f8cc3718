package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipepipe/internal/config"
	"recipepipe/internal/models"
)

func openMemory(t *testing.T) *Store {
	t.Helper()

	s, err := Open(&config.StoreConfig{Driver: "sqlite", DSN: ":memory:", BatchSize: 2}, nil)
	require.NoError(t, err)

	t.Cleanup(func() { _ = s.Close() })

	return s
}

func intPtr(n int) *int { return &n }

func strPtr(s string) *string { return &s }

func sampleDataset() *models.Dataset {
	return &models.Dataset{
		Recipes: []models.Recipe{
			{
				RecipeID: "r2", Title: "Soup", Difficulty: "easy",
				Tags:     []string{"warm", "winter"},
				Servings: intPtr(4), PrepTimeMinutes: 10, CookTimeMinutes: 20, TotalTimeMinutes: 30,
				CreatedAt: "2024-01-01T00:00:00Z",
			},
			{RecipeID: "r1", Title: "Salad", Difficulty: "medium", Tags: []string{}},
		},
		Ingredients: []models.Ingredient{
			{RecipeID: "r2", IngredientID: "i1", Name: "water", Quantity: "1 l", Order: intPtr(1)},
			{RecipeID: "r2", IngredientID: "i2", Name: "salt"},
			{RecipeID: "r1", IngredientID: "i3", Name: "lettuce"},
		},
		Steps: []models.Step{
			{RecipeID: "r2", StepNumber: 1, Description: "boil"},
			{RecipeID: "r1", StepNumber: 1, Description: "chop"},
		},
		Interactions: []models.Interaction{
			{InteractionID: "x1", RecipeID: "r2", Type: "view", UserID: strPtr("u1")},
			{InteractionID: "x2", RecipeID: "r2", Type: "rating", Value: intPtr(5), Timestamp: "2024-02-01T10:00:00Z"},
		},
	}
}

func TestStore_RoundTrip(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	want := sampleDataset()
	require.NoError(t, s.SaveDataset(ctx, want))

	got, err := s.LoadDataset(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestStore_SaveReplaces(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	require.NoError(t, s.SaveDataset(ctx, sampleDataset()))

	smaller := &models.Dataset{
		Recipes:      []models.Recipe{{RecipeID: "r9", Tags: []string{}}},
		Ingredients:  []models.Ingredient{},
		Steps:        []models.Step{},
		Interactions: []models.Interaction{},
	}
	require.NoError(t, s.SaveDataset(ctx, smaller))

	got, err := s.LoadDataset(ctx)
	require.NoError(t, err)
	assert.Equal(t, smaller, got)
}

func TestStore_LoadBeforeSave(t *testing.T) {
	_, err := openMemory(t).LoadDataset(context.Background())
	assert.ErrorIs(t, err, ErrArtifactMissing)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(&config.StoreConfig{Driver: "oracle", DSN: "x"}, nil)
	assert.ErrorIs(t, err, ErrUnknownDriver)
}
