package source

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipepipe/internal/config"
	"recipepipe/internal/models"
	"recipepipe/pkg/utils"
)

func TestDecode_Array(t *testing.T) {
	docs, err := Decode(strings.NewReader(`[{"recipe_id":"r1","title":"Soup"}, 42, {"recipe_id":"r2"}]`))
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, "r1", docs[0].Get("recipe_id").Display())
	assert.Equal(t, "Soup", docs[0].Get("title").Display())
	assert.Equal(t, "r2", docs[1].Get("recipe_id").Display())
}

func TestDecode_ObjectInjectsDocID(t *testing.T) {
	docs, err := Decode(strings.NewReader(`{"b":{"title":"B"},"a":{"_doc_id":"keep","title":"A"}}`))
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, "b", docs[0].Get(models.FieldDocID).Display())
	assert.Equal(t, "keep", docs[1].Get(models.FieldDocID).Display())
}

func TestDecode_Invalid(t *testing.T) {
	_, err := Decode(strings.NewReader(`"just a string"`))
	assert.ErrorIs(t, err, ErrInvalidExport)

	_, err = Decode(strings.NewReader(`[{"a":`))
	assert.ErrorIs(t, err, ErrInvalidExport)
}

func writeExport(t *testing.T, dir, name, content string) {
	t.Helper()

	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".json"), []byte(content), 0o600))
}

func TestFileSource_Load(t *testing.T) {
	dir := t.TempDir()
	writeExport(t, dir, CollectionRecipes, `[{"recipe_id":"r1"}]`)

	src := NewFileSource(dir)

	docs, err := src.Load(context.Background(), CollectionRecipes)
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	_, err = src.Load(context.Background(), CollectionUsers)
	assert.ErrorIs(t, err, ErrCollectionMissing)

	_, err = NewFileSource(filepath.Join(dir, "nope")).Load(context.Background(), CollectionRecipes)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestLoadAll(t *testing.T) {
	dir := t.TempDir()
	writeExport(t, dir, CollectionRecipes, `[{"recipe_id":"r1"},{"recipe_id":"r2"}]`)
	writeExport(t, dir, CollectionInteractions, `{"i1":{"recipe_id":"r1","type":"view"}}`)

	set, err := LoadAll(context.Background(), NewFileSource(dir), nil)
	require.NoError(t, err)

	assert.Len(t, set.Recipes, 2)
	assert.Len(t, set.Interactions, 1)
	assert.NotNil(t, set.Users)
	assert.Empty(t, set.Users)
	assert.Equal(t, 3, set.Total())
}

func TestLoadAll_EmptySource(t *testing.T) {
	dir := t.TempDir()
	writeExport(t, dir, CollectionRecipes, `[]`)

	_, err := LoadAll(context.Background(), NewFileSource(dir), nil)
	assert.ErrorIs(t, err, ErrSourceEmpty)
}

func fastRetry() *config.RetryPolicy {
	return &config.RetryPolicy{
		MaxAttempts:       3,
		InitialDelayMs:    1,
		MaxDelayMs:        5,
		BackoffMultiplier: 1,
		TimeoutSec:        5,
	}
}

func TestHTTPSource_RetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/export/recipes.json", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-Token"))
		assert.Equal(t, utils.UserAgent, r.Header.Get("User-Agent"))

		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)

			return
		}

		_, _ = io.WriteString(w, `[{"recipe_id":"r1"}]`)
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL+"/export/", fastRetry(), 64, map[string]string{"X-Token": "secret"})

	docs, err := src.Load(context.Background(), CollectionRecipes)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTPSource_NotFoundIsMissingCollection(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := NewHTTPSource(srv.URL, fastRetry(), 64, nil).Load(context.Background(), CollectionUsers)
	assert.ErrorIs(t, err, ErrCollectionMissing)
}

func TestHTTPSource_NonRetryableStatus(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewHTTPSource(srv.URL, fastRetry(), 64, nil).Load(context.Background(), CollectionRecipes)
	require.ErrorIs(t, err, ErrSourceUnavailable)
	assert.ErrorIs(t, err, ErrUnexpectedStatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

type fakeGetter struct {
	objects map[string]string
	keys    []string
}

func (f *fakeGetter) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.keys = append(f.keys, *in.Key)

	body, ok := f.objects[*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}

	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func TestS3Source_Load(t *testing.T) {
	getter := &fakeGetter{objects: map[string]string{
		"exports/recipes.json": `[{"recipe_id":"r1"}]`,
	}}

	src := NewS3SourceWithClient(getter, "bucket", "exports/", 0)

	docs, err := src.Load(context.Background(), CollectionRecipes)
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	_, err = src.Load(context.Background(), CollectionUsers)
	assert.ErrorIs(t, err, ErrCollectionMissing)

	assert.Equal(t, []string{"exports/recipes.json", "exports/users.json"}, getter.keys)
}

type failingGetter struct{}

func (failingGetter) GetObject(context.Context, *s3.GetObjectInput, ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	return nil, errors.New("connection refused")
}

func TestS3Source_Unavailable(t *testing.T) {
	_, err := NewS3SourceWithClient(failingGetter{}, "bucket", "", 0).Load(context.Background(), CollectionRecipes)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestNew_SelectsSource(t *testing.T) {
	cfg := config.Default().Source

	src, err := New(context.Background(), &cfg)
	require.NoError(t, err)
	assert.IsType(t, &FileSource{}, src)

	cfg.Kind = config.SourceHTTP
	cfg.URL = "http://localhost"

	src, err = New(context.Background(), &cfg)
	require.NoError(t, err)
	assert.IsType(t, &HTTPSource{}, src)

	cfg.Kind = "ftp"

	_, err = New(context.Background(), &cfg)
	assert.ErrorIs(t, err, config.ErrInvalidSourceKind)
}
