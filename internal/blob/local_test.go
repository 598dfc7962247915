package blob

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocal(t *testing.T) *Local {
	t.Helper()

	l, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	return l
}

func TestLocalPutOpen(t *testing.T) {
	ctx := context.Background()
	l := newLocal(t)

	loc := l.Locate(NewID())
	require.NoError(t, l.Put(ctx, loc, strings.NewReader("hello")))

	b, err := ReadAll(ctx, l, loc)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))
}

func TestLocalLayoutIsFlat(t *testing.T) {
	ctx := context.Background()
	l := newLocal(t)

	id := NewID()
	loc := l.Locate(id)
	require.NoError(t, l.Put(ctx, loc, strings.NewReader("x")))
	require.NoError(t, l.Put(ctx, Derived(loc, "100"), strings.NewReader("y")))

	entries, err := os.ReadDir(l.Root())
	require.NoError(t, err)

	names := []string{}
	for _, e := range entries {
		assert.False(t, e.IsDir())
		names = append(names, e.Name())
	}

	// no temp files left behind either
	assert.ElementsMatch(t, []string{id, id + "_100"}, names)
}

func TestLocalPutOverwrites(t *testing.T) {
	ctx := context.Background()
	l := newLocal(t)

	loc := l.Locate(NewID())
	require.NoError(t, l.Put(ctx, loc, strings.NewReader("first")))
	require.NoError(t, l.Put(ctx, loc, strings.NewReader("second")))

	b, err := ReadAll(ctx, l, loc)
	require.NoError(t, err)
	assert.Equal(t, "second", string(b))
}

func TestLocalMissing(t *testing.T) {
	ctx := context.Background()
	l := newLocal(t)
	loc := l.Locate(NewID())

	_, err := l.Open(ctx, loc)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, l.Delete(ctx, loc))
}

func TestLocalRejectsOutsideRoot(t *testing.T) {
	ctx := context.Background()
	l := newLocal(t)

	outside := filepath.Join(l.Root(), "..", "escape")
	assert.ErrorIs(t, l.Put(ctx, outside, strings.NewReader("x")), ErrInvalidLocation)

	_, err := l.Open(ctx, filepath.Join(l.Root(), "a", "b"))
	assert.ErrorIs(t, err, ErrInvalidLocation)

	_, err = l.Open(ctx, filepath.Join(l.Root(), ".put-123"))
	assert.ErrorIs(t, err, ErrInvalidLocation)
}

func TestLocalDelete(t *testing.T) {
	ctx := context.Background()
	l := newLocal(t)

	loc := l.Locate(NewID())
	require.NoError(t, l.Put(ctx, loc, strings.NewReader("x")))
	require.NoError(t, l.Delete(ctx, loc))

	_, err := l.Open(ctx, loc)
	assert.ErrorIs(t, err, ErrNotFound)
}
