// Package aggregator computes the derived insight views over the normalized relations.
package aggregator

import (
	"recipepipe/internal/config"
	"recipepipe/internal/models"
)

// Time buckets.
const (
	BucketShort   = "short"
	BucketMedium  = "medium"
	BucketLong    = "long"
	BucketUnknown = "unknown"
)

// bucketOrder is the output order of the time-bucket view.
var bucketOrder = []string{BucketShort, BucketMedium, BucketLong, BucketUnknown}

// Weights scale the interaction counts in the engagement score.
type Weights struct {
	View    float64
	Like    float64
	Attempt float64
}

// Policy holds the tunable parameters of the insight views.
type Policy struct {
	Weights                  Weights
	TopIngredients           int
	TopViewed                int
	TopEngagementIngredients int
	TopRated                 int
	TopConversion            int
	ShortBucketMax           int
	MediumBucketMax          int
	CorrelationMinRecipes    int
}

// DefaultPolicy returns weights 1/2/1.5 and the default top-N sizes and buckets.
func DefaultPolicy() Policy {
	return PolicyFromConfig(config.Default().Aggregation)
}

// PolicyFromConfig converts the aggregation config section.
func PolicyFromConfig(cfg config.AggregationConfig) Policy {
	return Policy{
		Weights: Weights{
			View:    cfg.Weights.View,
			Like:    cfg.Weights.Like,
			Attempt: cfg.Weights.Attempt,
		},
		TopIngredients:           cfg.TopIngredients,
		TopViewed:                cfg.TopViewed,
		TopEngagementIngredients: cfg.TopEngagementIngredients,
		TopRated:                 cfg.TopRated,
		TopConversion:            cfg.TopConversion,
		ShortBucketMax:           cfg.ShortBucketMax,
		MediumBucketMax:          cfg.MediumBucketMax,
		CorrelationMinRecipes:    cfg.CorrelationMinRecipes,
	}
}

// Bucket classifies a prep time: short below ShortBucketMax, medium up to and
// including MediumBucketMax, long above. Negative times are unknown.
func (p Policy) Bucket(prep int) string {
	switch {
	case prep < 0:
		return BucketUnknown
	case prep < p.ShortBucketMax:
		return BucketShort
	case prep <= p.MediumBucketMax:
		return BucketMedium
	default:
		return BucketLong
	}
}

// Score computes the weighted engagement score.
func (p Policy) Score(views, likes, attempts int) float64 {
	return p.Weights.View*float64(views) + p.Weights.Like*float64(likes) + p.Weights.Attempt*float64(attempts)
}

// RecipeEngagement holds the interaction totals of one recipe.
type RecipeEngagement struct {
	RecipeID    string  `json:"recipe_id"`
	Difficulty  string  `json:"difficulty"`
	TimeBucket  string  `json:"time_bucket"`
	Views       int     `json:"views"`
	Likes       int     `json:"likes"`
	Attempts    int     `json:"attempts"`
	Score       float64 `json:"engagement_score"`
	LikeRate    float64 `json:"like_rate"`
	AttemptRate float64 `json:"attempt_rate"`
	PrepTime    int     `json:"prep_time_minutes"`
}

type counts struct {
	views, likes, attempts int
}

func countInteractions(interactions []models.Interaction) map[string]*counts {
	out := make(map[string]*counts)

	for _, it := range interactions {
		c, ok := out[it.RecipeID]
		if !ok {
			c = &counts{}
			out[it.RecipeID] = c
		}

		switch it.Type {
		case models.InteractionView:
			c.views++
		case models.InteractionLike:
			c.likes++
		case models.InteractionAttempt:
			c.attempts++
		}
	}

	return out
}

// Engagement returns one entry per recipe in recipe-relation order. Recipes
// without interactions get zero counts; rates are 0 when a recipe has no views.
func (p Policy) Engagement(ds *models.Dataset) []RecipeEngagement {
	byRecipe := countInteractions(ds.Interactions)
	out := make([]RecipeEngagement, 0, len(ds.Recipes))

	for _, r := range ds.Recipes {
		c := byRecipe[r.RecipeID]
		if c == nil {
			c = &counts{}
		}

		e := RecipeEngagement{
			RecipeID:   r.RecipeID,
			Difficulty: r.Difficulty,
			TimeBucket: p.Bucket(r.PrepTimeMinutes),
			PrepTime:   r.PrepTimeMinutes,
			Views:      c.views,
			Likes:      c.likes,
			Attempts:   c.attempts,
			Score:      p.Score(c.views, c.likes, c.attempts),
		}

		if c.views > 0 {
			e.LikeRate = float64(c.likes) / float64(c.views)
			e.AttemptRate = float64(c.attempts) / float64(c.views)
		}

		out = append(out, e)
	}

	return out
}
