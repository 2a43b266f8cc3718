// Package source reads raw document collections exported from the document store.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"

	"recipepipe/internal/config"
	"recipepipe/internal/logger"
	"recipepipe/internal/models"
)

// Collection names.
const (
	CollectionRecipes      = "recipes"
	CollectionInteractions = "interactions"
	CollectionUsers        = "users"
)

// Source errors.
var (
	ErrSourceUnavailable = errors.New("document source unavailable")
	ErrSourceEmpty       = errors.New("document source is empty")
	ErrCollectionMissing = errors.New("collection not found")
	ErrInvalidExport     = errors.New("export must be a JSON array or object of documents")
)

// Source loads one collection of raw documents.
type Source interface {
	Load(ctx context.Context, collection string) ([]*models.Document, error)
}

// RawSet holds the raw documents of every collection.
type RawSet struct {
	Recipes      []*models.Document
	Interactions []*models.Document
	Users        []*models.Document
}

// Total returns the number of documents across collections.
func (r *RawSet) Total() int {
	return len(r.Recipes) + len(r.Interactions) + len(r.Users)
}

// New builds the source selected by cfg.Kind.
func New(ctx context.Context, cfg *config.SourceConfig) (Source, error) {
	switch cfg.Kind {
	case config.SourceFile:
		return NewFileSource(cfg.Dir), nil
	case config.SourceHTTP:
		return NewHTTPSource(cfg.URL, &cfg.Retry, cfg.BufferSizeKb, cfg.Headers), nil
	case config.SourceS3:
		src, err := NewS3Source(ctx, cfg)
		if err != nil {
			return nil, err
		}

		return src, nil
	default:
		return nil, fmt.Errorf("%w: %s", config.ErrInvalidSourceKind, cfg.Kind)
	}
}

// LoadAll loads every collection. A missing collection counts as empty; a source
// with no documents at all is a structural failure.
func LoadAll(ctx context.Context, src Source, log *logger.Logger) (*RawSet, error) {
	if log == nil {
		log = logger.NewNop()
	}

	set := &RawSet{}

	targets := []struct {
		dst  *[]*models.Document
		name string
	}{
		{&set.Recipes, CollectionRecipes},
		{&set.Interactions, CollectionInteractions},
		{&set.Users, CollectionUsers},
	}

	for _, t := range targets {
		docs, err := src.Load(ctx, t.name)

		switch {
		case errors.Is(err, ErrCollectionMissing):
			log.Warn("collection missing, treating as empty", "collection", t.name)

			docs = []*models.Document{}
		case err != nil:
			return nil, fmt.Errorf("failed to load %s: %w", t.name, err)
		}

		log.Info("loaded collection", "collection", t.name, "documents", len(docs))
		*t.dst = docs
	}

	if set.Total() == 0 {
		return nil, ErrSourceEmpty
	}

	return set, nil
}

// Decode reads an export file. The top level is either an array of documents or
// an object mapping document-store ids to documents; in the latter form each
// document receives its id under _doc_id unless it already carries one.
// Non-object array elements are skipped.
func Decode(r io.Reader) ([]*models.Document, error) {
	v, err := models.DecodeValue(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidExport, err)
	}

	switch v.Kind() {
	case models.KindList:
		docs := make([]*models.Document, 0, len(v.Items()))
		for _, item := range v.Items() {
			if doc := item.Doc(); doc != nil {
				docs = append(docs, doc)
			}
		}

		return docs, nil
	case models.KindMap:
		fields := v.Doc().Fields()
		docs := make([]*models.Document, 0, len(fields))

		for _, f := range fields {
			doc := f.Value.Doc()
			if doc == nil {
				continue
			}

			if doc.Get(models.FieldDocID).IsAbsent() {
				doc.Set(models.FieldDocID, models.String(f.Key))
			}

			docs = append(docs, doc)
		}

		return docs, nil
	default:
		return nil, ErrInvalidExport
	}
}
