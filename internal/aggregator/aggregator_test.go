package aggregator

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipepipe/internal/models"
)

func interactions(recipeID, typ string, n int) []models.Interaction {
	out := make([]models.Interaction, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.Interaction{RecipeID: recipeID, Type: typ})
	}

	return out
}

func rating(recipeID string, v int) models.Interaction {
	return models.Interaction{RecipeID: recipeID, Type: models.InteractionRating, Value: &v}
}

func TestEngagement_EndToEndScenario(t *testing.T) {
	ds := &models.Dataset{
		Recipes: []models.Recipe{{
			RecipeID: "r1", Difficulty: "easy",
			PrepTimeMinutes: 10, CookTimeMinutes: 20, TotalTimeMinutes: 30,
		}},
		Interactions: append(
			interactions("r1", models.InteractionView, 3),
			interactions("r1", models.InteractionLike, 1)...,
		),
	}

	eng := DefaultPolicy().Engagement(ds)
	require.Len(t, eng, 1)

	e := eng[0]
	assert.Equal(t, 3, e.Views)
	assert.Equal(t, 1, e.Likes)
	assert.Equal(t, 0, e.Attempts)
	assert.InDelta(t, 5.0, e.Score, 1e-9)
	assert.InDelta(t, 1.0/3.0, e.LikeRate, 1e-9)
	assert.Equal(t, 0.0, e.AttemptRate)
	assert.Equal(t, BucketShort, e.TimeBucket)
}

func TestEngagement_ZeroViews(t *testing.T) {
	ds := &models.Dataset{
		Recipes:      []models.Recipe{{RecipeID: "r1"}, {RecipeID: "r2"}},
		Interactions: interactions("r1", models.InteractionLike, 2),
	}

	for _, e := range DefaultPolicy().Engagement(ds) {
		assert.Equal(t, 0.0, e.LikeRate, e.RecipeID)
		assert.Equal(t, 0.0, e.AttemptRate, e.RecipeID)
	}
}

func TestPolicy_Bucket(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		prep int
		want string
	}{
		{0, BucketShort},
		{14, BucketShort},
		{15, BucketMedium},
		{30, BucketMedium},
		{31, BucketLong},
		{-1, BucketUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, p.Bucket(tt.prep), "prep=%d", tt.prep)
	}
}

func TestPolicy_CustomWeights(t *testing.T) {
	p := DefaultPolicy()
	p.Weights = Weights{View: 0, Like: 1, Attempt: 10}

	assert.InDelta(t, 21.0, p.Score(5, 1, 2), 1e-9)
}

func TestTopIngredients_StableTies(t *testing.T) {
	ings := []models.Ingredient{
		{RecipeID: "a", Name: "salt"},
		{RecipeID: "a", Name: "Onion"},
		{RecipeID: "b", Name: "onion "},
		{RecipeID: "b", Name: "pepper"},
		{RecipeID: "c", Name: "salt"},
		{RecipeID: "c", Name: "  "},
	}

	got := TopIngredients(ings, 2)
	assert.Equal(t, Series{{"salt", 2}, {"onion", 2}}, got)

	all := TopIngredients(ings, 0)
	assert.Equal(t, []string{"salt", "onion", "pepper"}, all.Keys())
}

func TestPrepTimeStats(t *testing.T) {
	stats := PrepTimeStats([]models.Recipe{
		{PrepTimeMinutes: 10}, {PrepTimeMinutes: 20}, {PrepTimeMinutes: 60},
	})

	require.NotNil(t, stats.Mean)
	assert.InDelta(t, 30.0, *stats.Mean, 1e-9)
	assert.InDelta(t, 20.0, *stats.Median, 1e-9)
	assert.InDelta(t, 26.457513110645905, *stats.Std, 1e-9)

	single := PrepTimeStats([]models.Recipe{{PrepTimeMinutes: 7}})
	assert.InDelta(t, 7.0, *single.Median, 1e-9)
	assert.Nil(t, single.Std)

	empty := PrepTimeStats(nil)
	assert.Nil(t, empty.Mean)
	assert.Nil(t, empty.Median)
	assert.Nil(t, empty.Std)
}

func TestDifficultyDistribution(t *testing.T) {
	got := DifficultyDistribution([]models.Recipe{
		{Difficulty: "easy"}, {Difficulty: "hard"}, {Difficulty: "hard"}, {Difficulty: ""},
	})

	assert.Equal(t, Series{{"hard", 2}, {"easy", 1}, {"unknown", 1}}, got)
}

func TestPrepLikesCorrelation(t *testing.T) {
	eng := []RecipeEngagement{
		{PrepTime: 10, Likes: 1},
		{PrepTime: 20, Likes: 2},
		{PrepTime: 30, Likes: 3},
	}

	r := PrepLikesCorrelation(eng, 3)
	require.NotNil(t, r)
	assert.InDelta(t, 1.0, *r, 1e-9)

	assert.Nil(t, PrepLikesCorrelation(eng[:2], 3))

	flat := []RecipeEngagement{{PrepTime: 10}, {PrepTime: 20}, {PrepTime: 30}}
	assert.Nil(t, PrepLikesCorrelation(flat, 3))
}

func TestTopViewedAndRated(t *testing.T) {
	var its []models.Interaction
	its = append(its, interactions("r2", models.InteractionView, 1)...)
	its = append(its, interactions("r1", models.InteractionView, 2)...)
	its = append(its, interactions("r3", models.InteractionView, 1)...)
	its = append(its, rating("r1", 4), rating("r1", 5), rating("r2", 5))
	its = append(its, models.Interaction{RecipeID: "r3", Type: models.InteractionRating})

	assert.Equal(t, Series{{"r1", 2}, {"r2", 1}, {"r3", 1}}, TopViewed(its, 10))
	assert.Equal(t, Series{{"r1", 2}}, TopViewed(its, 1))
	assert.Equal(t, Series{{"r2", 5}, {"r1", 4.5}}, TopRated(its, 10))
}

func TestIngredientsByEngagement(t *testing.T) {
	eng := []RecipeEngagement{
		{RecipeID: "a", Score: 5},
		{RecipeID: "b", Score: 2},
	}
	ings := []models.Ingredient{
		{RecipeID: "a", Name: "salt"},
		{RecipeID: "a", Name: "salt"},
		{RecipeID: "b", Name: "salt"},
		{RecipeID: "b", Name: "rice"},
		{RecipeID: "z", Name: "saffron"},
	}

	got := IngredientsByEngagement(ings, eng, 15)
	assert.Equal(t, Series{{"salt", 7}, {"rice", 2}, {"saffron", 0}}, got)
}

func TestTopConversion(t *testing.T) {
	eng := []RecipeEngagement{
		{RecipeID: "a", LikeRate: 0.5, AttemptRate: 0.25},
		{RecipeID: "b", LikeRate: 1},
		{RecipeID: "c", LikeRate: 0.5},
	}

	got := TopConversion(eng, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].RecipeID)
	assert.Equal(t, "a", got[1].RecipeID)
	assert.InDelta(t, 0.25, got[1].AttemptRate, 1e-9)

	data, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{"b":{"like_rate":1,"attempt_rate":0},"a":{"like_rate":0.5,"attempt_rate":0.25}}`, string(data))
	assert.Equal(t, `{"b":{"like_rate":1,"attempt_rate":0},"a":{"like_rate":0.5,"attempt_rate":0.25}}`, string(data))
}

func TestEngagementByDifficultyAndBuckets(t *testing.T) {
	eng := []RecipeEngagement{
		{Difficulty: "easy", Score: 2, TimeBucket: BucketLong, Likes: 1},
		{Difficulty: "hard", Score: 6, TimeBucket: BucketShort, Likes: 3},
		{Difficulty: "easy", Score: 4, TimeBucket: BucketShort, Likes: 0},
	}

	assert.Equal(t, Series{{"hard", 6}, {"easy", 3}}, EngagementByDifficulty(eng))
	assert.Equal(t, Series{{"short", 1.5}, {"long", 1}}, LikesByTimeBucket(eng))
}

func TestSeries_MarshalJSON_KeepsOrder(t *testing.T) {
	data, err := json.Marshal(Series{{"z", 1}, {"a", 0.5}})
	require.NoError(t, err)
	assert.Equal(t, `{"z":1,"a":0.5}`, string(data))

	empty, err := json.Marshal(Series{})
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(empty))
}

func TestAggregator_Compute(t *testing.T) {
	ds := &models.Dataset{
		Recipes: []models.Recipe{
			{RecipeID: "r1", Difficulty: "easy", PrepTimeMinutes: 10},
			{RecipeID: "r2", Difficulty: "hard", PrepTimeMinutes: 40},
		},
		Ingredients: []models.Ingredient{
			{RecipeID: "r1", Name: "salt"},
			{RecipeID: "r2", Name: "salt"},
		},
		Interactions: append(
			interactions("r1", models.InteractionView, 3),
			interactions("r1", models.InteractionLike, 1)...,
		),
	}

	out, err := New(DefaultPolicy(), nil).Compute(context.Background(), ds)
	require.NoError(t, err)

	assert.Equal(t, Series{{"salt", 2}}, out.MostCommonIngredients)
	assert.Nil(t, out.PrepLikesCorrelation)
	assert.Equal(t, Series{{"r1", 3}}, out.TopViewedRecipes)
	assert.Equal(t, Series{{"salt", 5}}, out.IngredientsHighEngagement)
	assert.Empty(t, out.TopRatedRecipesAvgRating)
	assert.Equal(t, Series{{"short", 1}, {"long", 0}}, out.AvgLikesByTimeBucket)

	data, err := json.Marshal(out)
	require.NoError(t, err)

	var keys map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &keys))
	assert.Len(t, keys, 10)
}

func TestAggregator_Compute_Empty(t *testing.T) {
	out, err := New(DefaultPolicy(), nil).Compute(context.Background(), &models.Dataset{})
	require.NoError(t, err)

	assert.Nil(t, out.AvgPrepTime.Mean)
	assert.Empty(t, out.MostCommonIngredients)
	assert.Empty(t, out.AvgLikesByTimeBucket)
}

func TestAggregator_Compute_MissingRelations(t *testing.T) {
	_, err := New(DefaultPolicy(), nil).Compute(context.Background(), nil)
	assert.ErrorIs(t, err, ErrMissingRelations)
}

func TestAggregator_Compute_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(DefaultPolicy(), nil).Compute(ctx, &models.Dataset{})
	assert.ErrorIs(t, err, context.Canceled)
}
