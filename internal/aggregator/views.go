package aggregator

import (
	"recipepipe/internal/models"
	"recipepipe/pkg/utils"
)

// PrepStats summarizes prep times. Each field is nil when it cannot be computed.
type PrepStats struct {
	Mean   *float64 `json:"mean"`
	Median *float64 `json:"median"`
	Std    *float64 `json:"std"`
}

// Conversion holds the view-to-like and view-to-attempt rates of a recipe.
type Conversion struct {
	LikeRate    float64 `json:"like_rate"`
	AttemptRate float64 `json:"attempt_rate"`
}

// ConversionEntry is one recipe of a ConversionSeries.
type ConversionEntry struct {
	RecipeID string
	Conversion
}

// ConversionSeries is an ordered recipe to conversion mapping.
type ConversionSeries []ConversionEntry

// MarshalJSON encodes the series as an ordered object.
func (s ConversionSeries) MarshalJSON() ([]byte, error) {
	return marshalOrdered(len(s), func(i int) (string, any) { return s[i].RecipeID, s[i].Conversion })
}

func difficultyKey(d string) string {
	if d = utils.NormalizeKey(d); d == "" {
		return BucketUnknown
	}

	return d
}

// TopIngredients counts ingredient names and returns the n most frequent.
// Blank names are not counted.
func TopIngredients(ingredients []models.Ingredient, n int) Series {
	t := newTally()

	for _, ing := range ingredients {
		if name := utils.NormalizeKey(ing.Name); name != "" {
			t.add(name, 1)
		}
	}

	return top(t.sums(), n)
}

// PrepTimeStats returns the mean, median and sample standard deviation of prep times.
func PrepTimeStats(recipes []models.Recipe) PrepStats {
	if len(recipes) == 0 {
		return PrepStats{}
	}

	xs := make([]float64, 0, len(recipes))
	for _, r := range recipes {
		xs = append(xs, float64(r.PrepTimeMinutes))
	}

	stats := PrepStats{Mean: ptr(mean(xs)), Median: ptr(median(xs))}
	if len(xs) > 1 {
		stats.Std = ptr(sampleStd(xs))
	}

	return stats
}

// DifficultyDistribution counts recipes per difficulty, most common first.
// A blank difficulty is counted as unknown.
func DifficultyDistribution(recipes []models.Recipe) Series {
	t := newTally()
	for _, r := range recipes {
		t.add(difficultyKey(r.Difficulty), 1)
	}

	return top(t.sums(), 0)
}

// PrepLikesCorrelation returns the Pearson correlation of prep time and like
// count, or nil below minRecipes recipes or when either side is constant.
func PrepLikesCorrelation(eng []RecipeEngagement, minRecipes int) *float64 {
	if len(eng) < minRecipes || len(eng) < 2 {
		return nil
	}

	xs := make([]float64, 0, len(eng))
	ys := make([]float64, 0, len(eng))

	for _, e := range eng {
		xs = append(xs, float64(e.PrepTime))
		ys = append(ys, float64(e.Likes))
	}

	r, ok := pearson(xs, ys)
	if !ok {
		return nil
	}

	return ptr(r)
}

// TopViewed returns the n recipes with the most view interactions.
func TopViewed(interactions []models.Interaction, n int) Series {
	t := newTally()

	for _, it := range interactions {
		if it.Type == models.InteractionView {
			t.add(it.RecipeID, 1)
		}
	}

	return top(t.sums(), n)
}

// IngredientsByEngagement sums the engagement score of every recipe containing
// an ingredient and returns the n highest. A recipe listing the same ingredient
// twice contributes once.
func IngredientsByEngagement(ingredients []models.Ingredient, eng []RecipeEngagement, n int) Series {
	scores := make(map[string]float64, len(eng))
	for _, e := range eng {
		scores[e.RecipeID] = e.Score
	}

	type pair struct{ name, recipe string }

	seen := make(map[pair]struct{}, len(ingredients))
	t := newTally()

	for _, ing := range ingredients {
		name := utils.NormalizeKey(ing.Name)
		if name == "" {
			continue
		}

		p := pair{name, ing.RecipeID}
		if _, dup := seen[p]; dup {
			continue
		}

		seen[p] = struct{}{}
		t.add(name, scores[ing.RecipeID])
	}

	return top(t.sums(), n)
}

// TopRated returns the n recipes with the highest mean rating. Ratings without
// a numeric value are ignored.
func TopRated(interactions []models.Interaction, n int) Series {
	t := newTally()

	for _, it := range interactions {
		if it.Type == models.InteractionRating && it.Value != nil {
			t.add(it.RecipeID, float64(*it.Value))
		}
	}

	return top(t.means(), n)
}

// TopConversion returns the n recipes with the highest like rate.
func TopConversion(eng []RecipeEngagement, n int) ConversionSeries {
	rates := make(Series, 0, len(eng))
	byID := make(map[string]Conversion, len(eng))

	for _, e := range eng {
		rates = append(rates, Entry{Key: e.RecipeID, Value: e.LikeRate})
		byID[e.RecipeID] = Conversion{LikeRate: e.LikeRate, AttemptRate: e.AttemptRate}
	}

	ranked := top(rates, n)
	out := make(ConversionSeries, 0, len(ranked))

	for _, r := range ranked {
		out = append(out, ConversionEntry{RecipeID: r.Key, Conversion: byID[r.Key]})
	}

	return out
}

// EngagementByDifficulty returns the mean engagement score per difficulty, highest first.
func EngagementByDifficulty(eng []RecipeEngagement) Series {
	t := newTally()
	for _, e := range eng {
		t.add(difficultyKey(e.Difficulty), e.Score)
	}

	return top(t.means(), 0)
}

// LikesByTimeBucket returns the mean like count per prep-time bucket in
// short, medium, long, unknown order. Empty buckets are omitted.
func LikesByTimeBucket(eng []RecipeEngagement) Series {
	t := newTally()
	for _, e := range eng {
		t.add(e.TimeBucket, float64(e.Likes))
	}

	means := t.means()
	out := make(Series, 0, len(means))

	for _, b := range bucketOrder {
		if v, ok := means.Get(b); ok {
			out = append(out, Entry{Key: b, Value: v})
		}
	}

	return out
}
