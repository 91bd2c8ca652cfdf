package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peliculas/catalog-api/internal/core/domain"
	"github.com/peliculas/catalog-api/internal/infrastructure/storage"
)

const (
	testRoot    = "/wwwroot/ImagenesPeliculas"
	testBaseURL = "https://api.example.com"
)

type reconcilerFixture struct {
	fs         afero.Fs
	reconciler *AssetReconciler
	opened     int
}

func newReconcilerFixture(t *testing.T) *reconcilerFixture {
	t.Helper()
	fsys := afero.NewMemMapFs()
	store, err := storage.NewLocalStore(fsys, testRoot)
	require.NoError(t, err)

	r := NewAssetReconciler(store, zerolog.Nop())
	n := 0
	r.newToken = func() string {
		n++
		return fmt.Sprintf("-tok%d", n)
	}
	return &reconcilerFixture{fs: fsys, reconciler: r}
}

func (f *reconcilerFixture) upload(name, content string) domain.Upload {
	return domain.Upload{
		Filename: name,
		Open: func() (io.ReadCloser, error) {
			f.opened++
			return io.NopCloser(strings.NewReader(content)), nil
		},
	}
}

func (f *reconcilerFixture) stored(t *testing.T) []string {
	t.Helper()
	entries, err := afero.ReadDir(f.fs, testRoot)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func (f *reconcilerFixture) content(t *testing.T, path string) string {
	t.Helper()
	b, err := afero.ReadFile(f.fs, path)
	require.NoError(t, err)
	return string(b)
}

func TestOnCreate_StoresFilesInOrder(t *testing.T) {
	f := newReconcilerFixture(t)

	slots, err := f.reconciler.OnCreate(context.Background(), "m1", testBaseURL+"/", []domain.Upload{
		f.upload("poster.jpg", "poster"),
		f.upload("still.PNG", "still"),
	})
	require.NoError(t, err)
	require.Len(t, slots, 2)

	assert.Equal(t, filepath.Join(testRoot, "m1-tok1.jpg"), slots[0].LocalPath)
	assert.Equal(t, testBaseURL+"/ImagenesPeliculas/m1-tok1.jpg", slots[0].URL)
	assert.Equal(t, filepath.Join(testRoot, "m1-tok2.PNG"), slots[1].LocalPath)
	assert.Equal(t, "poster", f.content(t, slots[0].LocalPath))
	assert.Equal(t, "still", f.content(t, slots[1].LocalPath))
}

func TestOnCreate_TooManyFilesWritesNothing(t *testing.T) {
	f := newReconcilerFixture(t)

	files := []domain.Upload{
		f.upload("a.jpg", "a"), f.upload("b.jpg", "b"),
		f.upload("c.jpg", "c"), f.upload("d.jpg", "d"),
	}
	slots, err := f.reconciler.OnCreate(context.Background(), "m1", testBaseURL, files)

	assert.ErrorIs(t, err, domain.ErrUploadLimitExceeded)
	assert.Nil(t, slots)
	assert.Empty(t, f.stored(t))
	assert.Zero(t, f.opened)
}

func TestOnCreate_NoFiles(t *testing.T) {
	f := newReconcilerFixture(t)

	_, err := f.reconciler.OnCreate(context.Background(), "m1", testBaseURL, nil)
	assert.ErrorIs(t, err, domain.ErrImagesRequired)
	assert.Empty(t, f.stored(t))
}

func TestOnCreate_FailureDiscardsWrittenFiles(t *testing.T) {
	f := newReconcilerFixture(t)
	broken := domain.Upload{
		Filename: "broken.jpg",
		Open:     func() (io.ReadCloser, error) { return nil, errors.New("client went away") },
	}

	_, err := f.reconciler.OnCreate(context.Background(), "m1", testBaseURL, []domain.Upload{
		f.upload("ok.jpg", "ok"),
		broken,
	})
	require.Error(t, err)
	assert.Empty(t, f.stored(t))
}

func createMovie(t *testing.T, f *reconcilerFixture, names ...string) *domain.Movie {
	t.Helper()
	files := make([]domain.Upload, 0, len(names))
	for _, n := range names {
		files = append(files, f.upload(n, "v1:"+n))
	}
	slots, err := f.reconciler.OnCreate(context.Background(), "m1", testBaseURL, files)
	require.NoError(t, err)
	return &domain.Movie{ID: "m1", Images: slots}
}

// applyUpdate stands in for the movie service: store the new slots, then
// commit the change.
func applyUpdate(t *testing.T, f *reconcilerFixture, movie *domain.Movie, files []domain.Upload) {
	t.Helper()
	change, err := f.reconciler.OnUpdate(context.Background(), movie, testBaseURL, files)
	require.NoError(t, err)
	movie.Images = change.Slots
	f.reconciler.Commit(context.Background(), change)
}

func TestOnUpdate_SameNamesIsIdempotent(t *testing.T) {
	f := newReconcilerFixture(t)
	movie := createMovie(t, f, "a.jpg", "b.jpg", "c.jpg")
	before := append([]domain.ImageSlot(nil), movie.Images...)
	f.opened = 0

	resubmit := make([]domain.Upload, 0, len(before))
	for _, s := range before {
		resubmit = append(resubmit, f.upload(filepath.Base(s.LocalPath), "ignored"))
	}
	applyUpdate(t, f, movie, resubmit)

	assert.Equal(t, before, movie.Images)
	assert.Zero(t, f.opened)
	assert.Len(t, f.stored(t), 3)
}

func TestOnUpdate_ReplacesOnlyChangedSlot(t *testing.T) {
	f := newReconcilerFixture(t)
	movie := createMovie(t, f, "a.jpg", "b.jpg")
	slot0, oldSlot1 := movie.Images[0], movie.Images[1]

	applyUpdate(t, f, movie, []domain.Upload{
		f.upload(filepath.Base(slot0.LocalPath), "ignored"),
		f.upload("new.png", "v2"),
	})

	require.Len(t, movie.Images, 2)
	assert.Equal(t, slot0, movie.Images[0])
	assert.NotEqual(t, oldSlot1.LocalPath, movie.Images[1].LocalPath)
	assert.Equal(t, ".png", filepath.Ext(movie.Images[1].LocalPath))
	assert.Equal(t, "v2", f.content(t, movie.Images[1].LocalPath))

	gone, err := afero.Exists(f.fs, oldSlot1.LocalPath)
	require.NoError(t, err)
	assert.False(t, gone, "previous slot 1 file should be deleted")

	kept, err := afero.Exists(f.fs, slot0.LocalPath)
	require.NoError(t, err)
	assert.True(t, kept)
}

func TestOnUpdate_KeepsOldFilesUntilCommit(t *testing.T) {
	f := newReconcilerFixture(t)
	movie := createMovie(t, f, "a.jpg", "b.jpg")
	before := append([]domain.ImageSlot(nil), movie.Images...)

	change, err := f.reconciler.OnUpdate(context.Background(), movie, testBaseURL, []domain.Upload{
		f.upload("x.jpg", "x"), f.upload("y.jpg", "y"),
	})
	require.NoError(t, err)

	assert.Equal(t, before, movie.Images, "OnUpdate must not modify the movie")
	assert.Len(t, f.stored(t), 4)

	f.reconciler.Discard(context.Background(), change)
	assert.Equal(t, "v1:a.jpg", f.content(t, before[0].LocalPath))
	assert.Equal(t, "v1:b.jpg", f.content(t, before[1].LocalPath))
	assert.Len(t, f.stored(t), 2)
}

func TestOnUpdate_LaterSlotFailureLeavesStorageIntact(t *testing.T) {
	f := newReconcilerFixture(t)
	movie := createMovie(t, f, "a.jpg", "b.jpg")
	before := append([]domain.ImageSlot(nil), movie.Images...)

	broken := domain.Upload{
		Filename: "broken.jpg",
		Open:     func() (io.ReadCloser, error) { return nil, errors.New("client went away") },
	}
	change, err := f.reconciler.OnUpdate(context.Background(), movie, testBaseURL, []domain.Upload{
		f.upload("new.jpg", "new"),
		broken,
	})
	require.Error(t, err)
	assert.Nil(t, change)

	assert.Equal(t, before, movie.Images)
	for _, s := range before {
		ok, err := afero.Exists(f.fs, s.LocalPath)
		require.NoError(t, err)
		assert.True(t, ok, "%s must still be on disk", s.LocalPath)
	}
	assert.Len(t, f.stored(t), 2)
}

func TestPut_RemovesPartialFileOnWriteFailure(t *testing.T) {
	f := newReconcilerFixture(t)
	truncated := domain.Upload{
		Filename: "big.jpg",
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(io.MultiReader(strings.NewReader("partial"), iotest.ErrReader(errors.New("connection reset")))), nil
		},
	}

	_, err := f.reconciler.OnCreate(context.Background(), "m1", testBaseURL, []domain.Upload{truncated})
	require.Error(t, err)
	assert.Empty(t, f.stored(t))
}

func TestOnUpdate_AppendsNewSlots(t *testing.T) {
	f := newReconcilerFixture(t)
	movie := createMovie(t, f, "a.jpg")
	slot0 := movie.Images[0]

	applyUpdate(t, f, movie, []domain.Upload{
		f.upload(filepath.Base(slot0.LocalPath), "ignored"),
		f.upload("b.jpg", "b"),
		f.upload("c.jpg", "c"),
	})
	require.Len(t, movie.Images, 3)
	assert.Equal(t, slot0, movie.Images[0])
	assert.Len(t, f.stored(t), 3)
}

func TestOnUpdate_StaleSlotFileMissing(t *testing.T) {
	f := newReconcilerFixture(t)
	movie := createMovie(t, f, "a.jpg")
	require.NoError(t, f.fs.Remove(movie.Images[0].LocalPath))

	applyUpdate(t, f, movie, []domain.Upload{f.upload("z.jpg", "z")})
	assert.Equal(t, "z", f.content(t, movie.Images[0].LocalPath))
}

func TestOnUpdate_BoundsCheckedFirst(t *testing.T) {
	f := newReconcilerFixture(t)
	movie := createMovie(t, f, "a.jpg")
	before := append([]domain.ImageSlot(nil), movie.Images...)

	files := []domain.Upload{
		f.upload("1.jpg", "1"), f.upload("2.jpg", "2"),
		f.upload("3.jpg", "3"), f.upload("4.jpg", "4"),
	}
	_, err := f.reconciler.OnUpdate(context.Background(), movie, testBaseURL, files)
	assert.ErrorIs(t, err, domain.ErrUploadLimitExceeded)
	_, err = f.reconciler.OnUpdate(context.Background(), movie, testBaseURL, nil)
	assert.ErrorIs(t, err, domain.ErrImagesRequired)
	assert.Equal(t, before, movie.Images)
	assert.Len(t, f.stored(t), 1)
}

func TestOnDelete_RemovesAllAndToleratesMissing(t *testing.T) {
	f := newReconcilerFixture(t)
	movie := createMovie(t, f, "a.jpg", "b.jpg", "c.jpg")
	require.NoError(t, f.fs.Remove(movie.Images[1].LocalPath))

	require.NoError(t, f.reconciler.OnDelete(context.Background(), movie))
	assert.Empty(t, f.stored(t))
}

func TestOnDelete_NoImages(t *testing.T) {
	f := newReconcilerFixture(t)
	assert.NoError(t, f.reconciler.OnDelete(context.Background(), &domain.Movie{ID: "m1"}))
}
