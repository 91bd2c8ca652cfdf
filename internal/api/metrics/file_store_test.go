package metrics

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	writeErr error
}

func (f *fakeStore) Path(name string) string { return "/img/" + name }
func (f *fakeStore) Exists(context.Context, string) (bool, error) { return true, nil }
func (f *fakeStore) Delete(context.Context, string) error { return nil }
func (f *fakeStore) Write(context.Context, string, io.Reader) error { return f.writeErr }
func (f *fakeStore) Open(context.Context, string) (io.ReadCloser, error) { return nil, nil }

func TestInstrumentFileStore_CountsWritesAndDeletes(t *testing.T) {
	ctx := context.Background()
	okBefore := testutil.ToFloat64(ImageFilesTotal.WithLabelValues("write", "ok"))
	errBefore := testutil.ToFloat64(ImageFilesTotal.WithLabelValues("write", "error"))
	delBefore := testutil.ToFloat64(ImageFilesTotal.WithLabelValues("delete", "ok"))

	inner := &fakeStore{}
	store := InstrumentFileStore(inner)

	require.NoError(t, store.Write(ctx, "a", nil))
	inner.writeErr = errors.New("disk full")
	require.Error(t, store.Write(ctx, "b", nil))
	require.NoError(t, store.Delete(ctx, "a"))

	assert.Equal(t, okBefore+1, testutil.ToFloat64(ImageFilesTotal.WithLabelValues("write", "ok")))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(ImageFilesTotal.WithLabelValues("write", "error")))
	assert.Equal(t, delBefore+1, testutil.ToFloat64(ImageFilesTotal.WithLabelValues("delete", "ok")))
	assert.Equal(t, "/img/x", store.Path("x"))
}
