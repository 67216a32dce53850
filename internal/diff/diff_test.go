package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"vcs/internal/object"
)

func entry(hash string) object.TreeEntry {
	return object.TreeEntry{Hash: hash, Mode: object.RegularFileMode, StagedAt: "t"}
}

func TestTrees(t *testing.T) {
	t.Run("identical trees", func(t *testing.T) {
		tree := object.Tree{"a.txt": entry("1")}
		r := Trees(tree, tree.Clone())
		assert.True(t, r.Empty())
		assert.Empty(t, r.Changes)
	})

	t.Run("staging time is ignored", func(t *testing.T) {
		from := object.Tree{"a.txt": entry("1")}
		to := object.Tree{"a.txt": {Hash: "1", Mode: object.RegularFileMode, StagedAt: "later"}}
		assert.True(t, Trees(from, to).Empty())
	})

	t.Run("mixed changes sorted by path", func(t *testing.T) {
		from := object.Tree{
			"keep.txt": entry("1"),
			"gone.txt": entry("2"),
			"edit.txt": entry("3"),
		}
		to := object.Tree{
			"keep.txt": entry("1"),
			"edit.txt": entry("4"),
			"new.txt":  entry("5"),
		}

		r := Trees(from, to)
		assert.Equal(t, []Change{
			{Type: Modified, Path: "edit.txt", OldHash: "3", NewHash: "4"},
			{Type: Deleted, Path: "gone.txt", OldHash: "2"},
			{Type: Added, Path: "new.txt", NewHash: "5"},
		}, r.Changes)
		assert.Equal(t, 1, r.Stats.Additions)
		assert.Equal(t, 1, r.Stats.Deletions)
		assert.Equal(t, 1, r.Stats.Modifications)
		symbols := make([]string, 0, len(r.Changes))
		for _, c := range r.Changes {
			symbols = append(symbols, c.Type.Symbol()+" "+c.Path)
		}
		assert.Equal(t, []string{"M edit.txt", "D gone.txt", "A new.txt"}, symbols)
		assert.Equal(t, "1 added, 1 modified, 1 deleted", r.Summary())
	})

	t.Run("nil trees", func(t *testing.T) {
		r := Trees(nil, object.Tree{"a": entry("1")})
		assert.Equal(t, 1, r.Stats.Additions)

		r = Trees(object.Tree{"a": entry("1")}, nil)
		assert.Equal(t, 1, r.Stats.Deletions)

		assert.True(t, Trees(nil, nil).Empty())
	})
}

func TestChangeType(t *testing.T) {
	assert.Equal(t, "added", Added.String())
	assert.Equal(t, "modified", Modified.String())
	assert.Equal(t, "deleted", Deleted.String())
	assert.Equal(t, "D", Deleted.Symbol())
}
