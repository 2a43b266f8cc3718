package aggregator

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"recipepipe/internal/logger"
	"recipepipe/internal/models"
)

// ErrMissingRelations is returned when insights are requested without normalized relations.
var ErrMissingRelations = errors.New("missing artifact: normalized relations")

// Insights is the insights report. Field order is the report key order.
type Insights struct {
	MostCommonIngredients     Series           `json:"most_common_ingredients"`
	AvgPrepTime               PrepStats        `json:"avg_prep_time"`
	DifficultyDistribution    Series           `json:"difficulty_distribution"`
	PrepLikesCorrelation      *float64         `json:"prep_likes_correlation"`
	TopViewedRecipes          Series           `json:"top_viewed_recipes"`
	IngredientsHighEngagement Series           `json:"ingredients_high_engagement"`
	TopRatedRecipesAvgRating  Series           `json:"top_rated_recipes_avg_rating"`
	TopConversionLikeRate     ConversionSeries `json:"top_conversion_like_rate"`
	EngagementByDifficulty    Series           `json:"engagement_by_difficulty"`
	AvgLikesByTimeBucket      Series           `json:"avg_likes_by_time_bucket"`
}

// Aggregator computes insights under a policy.
type Aggregator struct {
	log    *logger.Logger
	policy Policy
}

// New creates an aggregator.
func New(policy Policy, log *logger.Logger) *Aggregator {
	if log == nil {
		log = logger.NewNop()
	}

	return &Aggregator{policy: policy, log: log.With("stage", "aggregate")}
}

// Policy returns the aggregator's policy.
func (a *Aggregator) Policy() Policy {
	return a.policy
}

// Engagement returns the per-recipe engagement table.
func (a *Aggregator) Engagement(ds *models.Dataset) ([]RecipeEngagement, error) {
	if ds == nil {
		return nil, ErrMissingRelations
	}

	return a.policy.Engagement(ds), nil
}

// Compute runs the ten views concurrently. The views share the read-only dataset
// and engagement table and each writes only its own field.
func (a *Aggregator) Compute(ctx context.Context, ds *models.Dataset) (*Insights, error) {
	if ds == nil {
		return nil, ErrMissingRelations
	}

	start := time.Now()
	p := a.policy
	eng := p.Engagement(ds)
	out := &Insights{}

	g, ctx := errgroup.WithContext(ctx)

	run := func(view func()) {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			view()

			return nil
		})
	}

	run(func() { out.MostCommonIngredients = TopIngredients(ds.Ingredients, p.TopIngredients) })
	run(func() { out.AvgPrepTime = PrepTimeStats(ds.Recipes) })
	run(func() { out.DifficultyDistribution = DifficultyDistribution(ds.Recipes) })
	run(func() { out.PrepLikesCorrelation = PrepLikesCorrelation(eng, p.CorrelationMinRecipes) })
	run(func() { out.TopViewedRecipes = TopViewed(ds.Interactions, p.TopViewed) })
	run(func() {
		out.IngredientsHighEngagement = IngredientsByEngagement(ds.Ingredients, eng, p.TopEngagementIngredients)
	})
	run(func() { out.TopRatedRecipesAvgRating = TopRated(ds.Interactions, p.TopRated) })
	run(func() { out.TopConversionLikeRate = TopConversion(eng, p.TopConversion) })
	run(func() { out.EngagementByDifficulty = EngagementByDifficulty(eng) })
	run(func() { out.AvgLikesByTimeBucket = LikesByTimeBucket(eng) })

	if err := g.Wait(); err != nil {
		return nil, err
	}

	a.log.Info("computed insights",
		"recipes", len(ds.Recipes),
		"interactions", len(ds.Interactions),
		"duration", time.Since(start),
	)

	return out, nil
}
