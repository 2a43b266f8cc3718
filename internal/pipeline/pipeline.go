// Package pipeline runs the batch stages in order: load, normalize, validate,
// persist, aggregate and emit.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"recipepipe/internal/aggregator"
	"recipepipe/internal/config"
	"recipepipe/internal/logger"
	"recipepipe/internal/metrics"
	"recipepipe/internal/models"
	"recipepipe/internal/normalizer"
	"recipepipe/internal/report"
	"recipepipe/internal/source"
	"recipepipe/internal/store"
	"recipepipe/internal/validator"
)

// Stage names used in logs and metrics.
const (
	StageLoad      = "load"
	StageNormalize = "normalize"
	StageValidate  = "validate"
	StagePersist   = "persist"
	StageAggregate = "aggregate"
	StageEmit      = "emit"
)

// ErrMissingArtifact is returned when a stage runs without the artifact it reads.
var ErrMissingArtifact = errors.New("missing artifact")

// Result holds everything a run produced.
type Result struct {
	Raw        *source.RawSet
	Normalized *normalizer.Result
	Checks     *normalizer.Checks
	Validation *validator.Report
	Insights   *aggregator.Insights
}

// Pipeline wires the stages to one configuration.
type Pipeline struct {
	cfg     *config.Config
	log     *logger.Logger
	src     source.Source
	metrics *metrics.Metrics
	emitter *report.Emitter
}

// Option customizes a pipeline.
type Option func(*Pipeline)

// WithSource replaces the source built from the configuration.
func WithSource(src source.Source) Option {
	return func(p *Pipeline) { p.src = src }
}

// New creates a pipeline. The source is built from cfg.Source unless WithSource is given.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger, opts ...Option) (*Pipeline, error) {
	if log == nil {
		log = logger.NewNop()
	}

	p := &Pipeline{
		cfg:     cfg,
		log:     log,
		metrics: metrics.New(),
		emitter: report.NewEmitter(&cfg.Output, log),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.src == nil {
		src, err := source.New(ctx, &cfg.Source)
		if err != nil {
			return nil, err
		}

		p.src = src
	}

	return p, nil
}

// Metrics returns the run metrics.
func (p *Pipeline) Metrics() *metrics.Metrics {
	return p.metrics
}

// Load reads every collection from the source.
func (p *Pipeline) Load(ctx context.Context) (*source.RawSet, error) {
	var raw *source.RawSet

	err := p.metrics.Time(StageLoad, func() error {
		var err error

		raw, err = source.LoadAll(ctx, p.src, p.log)

		return err
	})
	if err != nil {
		return nil, err
	}

	p.metrics.RecordLoaded(source.CollectionRecipes, len(raw.Recipes))
	p.metrics.RecordLoaded(source.CollectionInteractions, len(raw.Interactions))
	p.metrics.RecordLoaded(source.CollectionUsers, len(raw.Users))

	return raw, nil
}

// Normalize builds the normalized relations and the post-transform checks.
func (p *Pipeline) Normalize(raw *source.RawSet) (*normalizer.Result, normalizer.Checks) {
	start := time.Now()
	res := normalizer.NewProcessor(p.log).Process(raw.Recipes, raw.Interactions)
	checks := normalizer.PostTransformChecks(res.Dataset)

	p.metrics.ObserveStage(StageNormalize, time.Since(start))
	p.metrics.RecordNormalize(res)

	if n := len(checks.RecipesWithoutIngredients); n > 0 {
		p.log.Warn("recipes without ingredients", "count", n, "sample", normalizer.Sample(checks.RecipesWithoutIngredients))
	}

	if n := len(checks.RecipesWithoutSteps); n > 0 {
		p.log.Warn("recipes without steps", "count", n, "sample", normalizer.Sample(checks.RecipesWithoutSteps))
	}

	if checks.BlankTimestamps > 0 {
		p.log.Warn("interactions with blank timestamp", "count", checks.BlankTimestamps)
	}

	return res, checks
}

// Validate checks either the raw documents or the normalized relations,
// depending on the configured mode.
func (p *Pipeline) Validate(raw *source.RawSet, ds *models.Dataset) (*validator.Report, error) {
	v := validator.New(p.log, p.cfg.Validation.MaxExamples)

	var rep *validator.Report

	err := p.metrics.Time(StageValidate, func() error {
		if p.cfg.Validation.Mode == config.ModeNormalized {
			var err error

			rep, err = v.ValidateDataset(ds, raw.Users)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrMissingArtifact, err)
			}

			return nil
		}

		rep = v.Validate(raw.Recipes, raw.Interactions, raw.Users)

		return nil
	})
	if err != nil {
		return nil, err
	}

	p.metrics.RecordValidation(rep)

	return rep, nil
}

// Persist saves the relations to the store when it is enabled.
func (p *Pipeline) Persist(ctx context.Context, ds *models.Dataset) error {
	if !p.cfg.Store.Enabled {
		return nil
	}

	return p.metrics.Time(StagePersist, func() error {
		st, err := store.Open(&p.cfg.Store, p.log)
		if err != nil {
			return err
		}

		defer func() { _ = st.Close() }()

		return st.SaveDataset(ctx, ds)
	})
}

// Aggregate computes the insights over ds.
func (p *Pipeline) Aggregate(ctx context.Context, ds *models.Dataset) (*aggregator.Insights, error) {
	agg := aggregator.New(aggregator.PolicyFromConfig(p.cfg.Aggregation), p.log)

	var ins *aggregator.Insights

	err := p.metrics.Time(StageAggregate, func() error {
		var err error

		ins, err = agg.Compute(ctx, ds)
		if errors.Is(err, aggregator.ErrMissingRelations) {
			return fmt.Errorf("%w: %w", ErrMissingArtifact, err)
		}

		return err
	})
	if err != nil {
		return nil, err
	}

	return ins, nil
}

// Run executes every stage and writes all artifacts.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	p.log.Info("starting pipeline",
		"source", p.cfg.Source.Kind,
		"location", p.cfg.Source.Location(),
		"output", p.cfg.Output.Dir,
	)

	raw, err := p.Load(ctx)
	if err != nil {
		return nil, err
	}

	res := &Result{Raw: raw}

	norm, checks := p.Normalize(raw)
	res.Normalized = norm
	res.Checks = &checks

	if res.Validation, err = p.Validate(raw, norm.Dataset); err != nil {
		return res, err
	}

	if err := p.Persist(ctx, norm.Dataset); err != nil {
		return res, err
	}

	if res.Insights, err = p.Aggregate(ctx, norm.Dataset); err != nil {
		return res, err
	}

	if err := p.Emit(res); err != nil {
		return res, err
	}

	p.log.Info("pipeline complete",
		"recipes", len(norm.Dataset.Recipes),
		"interactions", len(norm.Dataset.Interactions),
		"valid", res.Validation.IsValid(),
	)

	return res, nil
}

// Complete reports whether every stage contributed to res.
func (r *Result) Complete() bool {
	return r.Normalized != nil && r.Validation != nil && r.Insights != nil
}

// Emit writes whatever parts of res are present, then the metrics textfile.
// The markdown summary is written only for a complete result, so partial
// commands leave the report of the last full run in place.
func (p *Pipeline) Emit(res *Result) error {
	err := p.metrics.Time(StageEmit, func() error {
		summary := report.Summary{
			Checks:     res.Checks,
			Validation: res.Validation,
			Insights:   res.Insights,
		}

		if res.Normalized != nil {
			summary.Dataset = res.Normalized.Dataset
			summary.Normalize = res.Normalized

			if err := p.emitter.WriteNormalized(res.Normalized.Dataset); err != nil {
				return err
			}
		}

		if res.Checks != nil {
			if err := p.emitter.WriteChecks(*res.Checks); err != nil {
				return err
			}
		}

		if res.Validation != nil {
			if err := p.emitter.WriteValidation(res.Validation); err != nil {
				return err
			}
		}

		if res.Insights != nil {
			if err := p.emitter.WriteInsights(res.Insights); err != nil {
				return err
			}
		}

		if !res.Complete() {
			return nil
		}

		return p.emitter.WriteMarkdown(summary)
	})
	if err != nil {
		return err
	}

	if p.cfg.Metrics.Enabled && p.cfg.Metrics.TextfilePath != "" {
		if err := p.metrics.WriteTextfile(p.cfg.Metrics.TextfilePath); err != nil {
			return err
		}
	}

	return nil
}

// Insights computes insights from the relations persisted by an earlier run.
func (p *Pipeline) Insights(ctx context.Context) (*aggregator.Insights, error) {
	if !p.cfg.Store.Enabled {
		return nil, fmt.Errorf("%w: normalized relations (store disabled)", ErrMissingArtifact)
	}

	st, err := store.Open(&p.cfg.Store, p.log)
	if err != nil {
		return nil, err
	}

	defer func() { _ = st.Close() }()

	ds, err := st.LoadDataset(ctx)
	if errors.Is(err, store.ErrArtifactMissing) {
		return nil, fmt.Errorf("%w: %w", ErrMissingArtifact, err)
	}

	if err != nil {
		return nil, err
	}

	ins, err := p.Aggregate(ctx, ds)
	if err != nil {
		return nil, err
	}

	if err := p.emitter.WriteInsights(ins); err != nil {
		return nil, err
	}

	return ins, nil
}
