// Package store persists the normalized relations in a relational database so the
// insights stage can run separately from normalization.
package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"recipepipe/internal/config"
	"recipepipe/internal/logger"
	"recipepipe/internal/models"
)

// Store errors.
var (
	ErrArtifactMissing = errors.New("missing artifact: normalized relations")
	ErrUnknownDriver   = errors.New("unknown store driver")
)

// Store wraps a gorm connection holding the four normalized relations.
type Store struct {
	db        *gorm.DB
	log       *logger.Logger
	batchSize int
}

// Open connects to the configured database.
func Open(cfg *config.StoreConfig, log *logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.NewNop()
	}

	var dialector gorm.Dialector

	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Driver, err)
	}

	if cfg.Driver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access sqlite handle: %w", err)
		}

		// one connection keeps :memory: databases alive and serializes writers
		sqlDB.SetMaxOpenConns(1)
	}

	batch := cfg.BatchSize
	if batch < 1 {
		batch = 500
	}

	return &Store{db: db, log: log.With("component", "store", "driver", cfg.Driver), batchSize: batch}, nil
}

// Migrate creates or updates the relation tables.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(allRecords()...); err != nil {
		return fmt.Errorf("failed to migrate store: %w", err)
	}

	return nil
}

// SaveDataset replaces the stored relations with ds in a single transaction.
func (s *Store) SaveDataset(ctx context.Context, ds *models.Dataset) error {
	if ds == nil {
		return ErrArtifactMissing
	}

	if err := s.Migrate(ctx); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range allRecords() {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return fmt.Errorf("failed to clear %T: %w", model, err)
			}
		}

		if err := insert(tx, toRecipeRecords(ds.Recipes), s.batchSize); err != nil {
			return err
		}

		if err := insert(tx, toIngredientRecords(ds.Ingredients), s.batchSize); err != nil {
			return err
		}

		if err := insert(tx, toStepRecords(ds.Steps), s.batchSize); err != nil {
			return err
		}

		return insert(tx, toInteractionRecords(ds.Interactions), s.batchSize)
	})
	if err != nil {
		return fmt.Errorf("failed to save dataset: %w", err)
	}

	s.log.Info("saved normalized relations",
		"recipes", len(ds.Recipes),
		"ingredients", len(ds.Ingredients),
		"steps", len(ds.Steps),
		"interactions", len(ds.Interactions),
	)

	return nil
}

func insert[T any](tx *gorm.DB, rows []T, batch int) error {
	if len(rows) == 0 {
		return nil
	}

	if err := tx.CreateInBatches(&rows, batch).Error; err != nil {
		return fmt.Errorf("failed to insert %T: %w", rows, err)
	}

	return nil
}

// LoadDataset reads the stored relations back in insertion order.
func (s *Store) LoadDataset(ctx context.Context) (*models.Dataset, error) {
	db := s.db.WithContext(ctx)

	for _, model := range allRecords() {
		if !db.Migrator().HasTable(model) {
			return nil, ErrArtifactMissing
		}
	}

	var (
		recipes      []recipeRecord
		ingredients  []ingredientRecord
		steps        []stepRecord
		interactions []interactionRecord
	)

	for _, dst := range []any{&recipes, &ingredients, &steps, &interactions} {
		if err := db.Order("seq").Find(dst).Error; err != nil {
			return nil, fmt.Errorf("failed to load relations: %w", err)
		}
	}

	ds := &models.Dataset{
		Recipes:      make([]models.Recipe, len(recipes)),
		Ingredients:  make([]models.Ingredient, len(ingredients)),
		Steps:        make([]models.Step, len(steps)),
		Interactions: make([]models.Interaction, len(interactions)),
	}

	for i, r := range recipes {
		ds.Recipes[i] = r.model()
	}

	for i, r := range ingredients {
		ds.Ingredients[i] = r.model()
	}

	for i, r := range steps {
		ds.Steps[i] = r.model()
	}

	for i, r := range interactions {
		ds.Interactions[i] = r.model()
	}

	s.log.Debug("loaded normalized relations", "recipes", len(ds.Recipes), "interactions", len(ds.Interactions))

	return ds, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}
