package merge

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vcs/internal/object"
)

func entry(hash string) object.TreeEntry {
	return object.TreeEntry{Hash: hash, Mode: object.RegularFileMode, StagedAt: "t"}
}

func TestOverlay(t *testing.T) {
	base := object.Tree{
		"a.txt":      entry("base-a"),
		"shared.txt": entry("base-shared"),
	}
	theirs := object.Tree{
		"b.txt":      entry("their-b"),
		"shared.txt": entry("their-shared"),
	}

	merged := Overlay(base, theirs)
	assert.Equal(t, object.Tree{
		"a.txt":      entry("base-a"),
		"b.txt":      entry("their-b"),
		"shared.txt": entry("their-shared"),
	}, merged)

	assert.Equal(t, "base-shared", base["shared.txt"].Hash)
	assert.Len(t, base, 2)
	assert.Len(t, theirs, 2)

	t.Run("nil inputs", func(t *testing.T) {
		assert.Empty(t, Overlay(nil, nil))
		assert.Equal(t, theirs, Overlay(nil, theirs))
	})
}

func TestStrategy(t *testing.T) {
	assert.Equal(t, FastForward, Strategy(""))
	assert.Equal(t, Commit, Strategy(strings.Repeat("a", 40)))
	assert.Equal(t, "fast-forward", FastForward.String())
	assert.Equal(t, "merge", Commit.String())
}

func TestNewCommit(t *testing.T) {
	current := &object.Commit{Hash: strings.Repeat("1", 40), Tree: object.Tree{"a.txt": entry("a1"), "s.txt": entry("s1")}}
	target := &object.Commit{Hash: strings.Repeat("2", 40), Tree: object.Tree{"b.txt": entry("b2"), "s.txt": entry("s2")}}
	now := time.Date(2024, 5, 1, 10, 20, 31, 0, time.Local)

	c := NewCommit("feature", current, target, now)
	require.NotNil(t, c)
	assert.Equal(t, "Merge branch 'feature'", c.Message)
	assert.Equal(t, Author, c.Author)
	assert.Equal(t, "2024-05-01T10:20:31", c.Timestamp)
	assert.Equal(t, current.Hash, c.Parent)
	assert.Equal(t, target.Hash, c.MergeParent)
	assert.Equal(t, "s2", c.Tree["s.txt"].Hash)
	assert.Contains(t, c.Tree, "a.txt")
	assert.Contains(t, c.Tree, "b.txt")
	assert.Len(t, c.Hash, 40)

	again := NewCommit("feature", current, target, now)
	assert.Equal(t, c.Hash, again.Hash)
}
