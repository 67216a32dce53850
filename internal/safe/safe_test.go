package safe

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"vcs/internal/content"
	vcserrors "vcs/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSafe(t *testing.T, dir string) *Safe {
	t.Helper()
	s, err := Open(Options{
		ObjectsDir: filepath.Join(dir, "objects"),
		IndexDir:   filepath.Join(dir, "index"),
		CacheSize:  8,
	})
	require.NoError(t, err)
	return s
}

func TestSafe(t *testing.T) {
	dir := t.TempDir()
	s := openTestSafe(t, dir)
	defer s.Close()

	t.Run("Put and Get", func(t *testing.T) {
		hash, err := s.PutBlob([]byte("hello"))
		require.NoError(t, err)
		assert.Equal(t, content.Hash([]byte("hello")), hash)

		again, err := s.PutBlob([]byte("hello"))
		require.NoError(t, err)
		assert.Equal(t, hash, again)

		data, err := s.Get(hash)
		require.NoError(t, err)
		assert.Equal(t, []byte("hello"), data)
	})

	t.Run("PutCommit", func(t *testing.T) {
		hash, err := s.PutCommit([]byte(`{"message": "m"}`))
		require.NoError(t, err)
		assert.Equal(t, content.Hash([]byte(`{"message": "m"}`)), hash)
	})

	t.Run("Stats", func(t *testing.T) {
		stats, err := s.Stats()
		require.NoError(t, err)
		assert.Equal(t, 2, stats.Objects)
		assert.Equal(t, 1, stats.ByKind[KindBlob])
		assert.Equal(t, 1, stats.ByKind[KindCommit])
		assert.EqualValues(t, len("hello")+len(`{"message": "m"}`), stats.Bytes)
	})

	t.Run("Get missing", func(t *testing.T) {
		_, err := s.Get("1111111111111111111111111111111111111111")
		assert.True(t, stderrors.Is(err, vcserrors.ErrNotFound))
	})
}

func TestSafePersistsAcrossHandles(t *testing.T) {
	dir := t.TempDir()

	s := openTestSafe(t, dir)
	hash, err := s.PutBlob([]byte("persisted"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s = openTestSafe(t, dir)
	defer s.Close()

	data, err := s.Get(hash)
	require.NoError(t, err)
	assert.Equal(t, "persisted", string(data))

	stats, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ByKind[KindBlob])
}

func TestSafeReadsWithoutIndex(t *testing.T) {
	dir := t.TempDir()

	writer := openTestSafe(t, dir)
	defer writer.Close()
	hash, err := writer.PutBlob([]byte("shared"))
	require.NoError(t, err)

	// the writer still holds the index lock
	reader := openTestSafe(t, dir)
	defer reader.Close()

	data, err := reader.Get(hash)
	require.NoError(t, err)
	assert.Equal(t, "shared", string(data))

	_, err = reader.Stats()
	assert.True(t, stderrors.Is(err, vcserrors.ErrIOFailure))
	require.NoError(t, reader.Close())
	require.NoError(t, reader.Close())
}

func TestSafeVerify(t *testing.T) {
	dir := t.TempDir()
	s := openTestSafe(t, dir)
	defer s.Close()

	good, err := s.PutBlob([]byte("good"))
	require.NoError(t, err)
	bad, err := s.PutBlob([]byte("bad"))
	require.NoError(t, err)
	gone, err := s.PutBlob([]byte("gone"))
	require.NoError(t, err)

	report, err := s.Verify()
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Equal(t, 3, report.Checked)

	objects := filepath.Join(dir, "objects")
	require.NoError(t, os.WriteFile(filepath.Join(objects, bad[:2], bad[2:]), []byte("tampered"), 0644))
	require.NoError(t, os.Remove(filepath.Join(objects, gone[:2], gone[2:])))

	// an object written by another tool, without an index entry
	foreign := content.Hash([]byte("foreign"))
	require.NoError(t, os.MkdirAll(filepath.Join(objects, foreign[:2]), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(objects, foreign[:2], foreign[2:]), []byte("foreign"), 0644))

	report, err = s.Verify()
	require.NoError(t, err)
	assert.False(t, report.OK())
	assert.Equal(t, []string{bad}, report.Corrupt)
	assert.Equal(t, []string{gone}, report.Missing)
	assert.Equal(t, []string{foreign}, report.Unindexed)
	assert.NotContains(t, report.Corrupt, good)
}
