package object

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	t.Run("root commit", func(t *testing.T) {
		c := &Commit{
			Message:   "first",
			Author:    "alice",
			Timestamp: "2024-05-01T10:20:30.123456",
			Tree: Tree{
				"a.txt": {
					Hash:     "aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d",
					Mode:     RegularFileMode,
					StagedAt: "2024-05-01T10:20:29.5",
				},
			},
		}

		want := `{"author": "alice", "message": "first", "parent": null, ` +
			`"timestamp": "2024-05-01T10:20:30.123456", "tree": {"a.txt": ` +
			`{"hash": "aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d", "mode": "100644", ` +
			`"staged_at": "2024-05-01T10:20:29.5"}}}`
		assert.Equal(t, want, string(c.Encode()))
		assert.Equal(t, "f1a7d0520a61d25a1af9bef7255517cb6427960f", c.ComputeHash())
		assert.Equal(t, c.Hash, "f1a7d0520a61d25a1af9bef7255517cb6427960f")
	})

	t.Run("merge commit with escapes", func(t *testing.T) {
		entry := func(h string) TreeEntry {
			return TreeEntry{Hash: strings.Repeat(h, 40), Mode: RegularFileMode, StagedAt: "t"}
		}
		c := &Commit{
			Message:     "Merge branch 'feature'\n\ttab \"q\" \\ café \U0001F600 \x7f \x01 <&>",
			Author:      "System",
			Timestamp:   "2024-05-01T10:20:31",
			Parent:      strings.Repeat("1", 40),
			MergeParent: strings.Repeat("2", 40),
			Tree: Tree{
				"z/b.txt": entry("3"),
				"a.txt":   entry("4"),
				"é.txt":   entry("5"),
			},
		}

		want := `{"author": "System", "merge_parent": "2222222222222222222222222222222222222222", ` +
			`"message": "Merge branch 'feature'\n\ttab \"q\" \\ caf\u00e9 \ud83d\ude00 \u007f \u0001 <&>", ` +
			`"parent": "1111111111111111111111111111111111111111", "timestamp": "2024-05-01T10:20:31", ` +
			`"tree": {"a.txt": {"hash": "4444444444444444444444444444444444444444", "mode": "100644", "staged_at": "t"}, ` +
			`"z/b.txt": {"hash": "3333333333333333333333333333333333333333", "mode": "100644", "staged_at": "t"}, ` +
			`"\u00e9.txt": {"hash": "5555555555555555555555555555555555555555", "mode": "100644", "staged_at": "t"}}}`
		assert.Equal(t, want, string(c.Encode()))
		assert.Equal(t, "9abedd3c828f06ef7aabb8bfab478fd2642f5435", c.ComputeHash())
	})

	t.Run("empty tree", func(t *testing.T) {
		c := &Commit{Message: "m", Author: "a", Timestamp: "t", Tree: Tree{}}
		assert.Equal(t, `{"author": "a", "message": "m", "parent": null, "timestamp": "t", "tree": {}}`, string(c.Encode()))
		assert.Equal(t, "fdfb7950a9e6543c35ff60aacb9c092cd989ab8b", c.ComputeHash())

		c.Tree = nil
		assert.Equal(t, "fdfb7950a9e6543c35ff60aacb9c092cd989ab8b", c.ComputeHash())
	})

	t.Run("deterministic", func(t *testing.T) {
		c := &Commit{Message: "m", Author: "a", Timestamp: "t", Tree: Tree{
			"b": {Hash: "h1", Mode: RegularFileMode, StagedAt: "s"},
			"a": {Hash: "h2", Mode: RegularFileMode, StagedAt: "s"},
		}}
		first := c.Encode()
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, c.Encode())
		}
	})
}

func TestDecode(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		c := &Commit{
			Message:     "Merge branch 'x'\n\U0001F600",
			Author:      "System",
			Timestamp:   "2024-05-01T10:20:31",
			Parent:      strings.Repeat("1", 40),
			MergeParent: strings.Repeat("2", 40),
			Tree: Tree{
				"é.txt": {Hash: strings.Repeat("5", 40), Mode: RegularFileMode, StagedAt: "t"},
			},
		}
		hash := c.ComputeHash()

		got, err := Decode(hash, c.Encode())
		require.NoError(t, err)
		assert.Equal(t, c, got)
		assert.True(t, got.IsMerge())
	})

	t.Run("null parent", func(t *testing.T) {
		got, err := Decode("h", []byte(`{"author": "a", "message": "m", "parent": null, "timestamp": "t", "tree": {}}`))
		require.NoError(t, err)
		assert.Empty(t, got.Parent)
		assert.False(t, got.IsMerge())
		assert.NotNil(t, got.Tree)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := Decode("h", []byte("not json"))
		assert.Error(t, err)
	})
}

func TestTree(t *testing.T) {
	tree := Tree{
		"b/c.txt": {Hash: "1"},
		"a.txt":   {Hash: "2"},
	}
	assert.Equal(t, []string{"a.txt", "b/c.txt"}, tree.Paths())

	clone := tree.Clone()
	clone["new"] = TreeEntry{Hash: "3"}
	assert.Len(t, tree, 2)
	assert.Len(t, clone, 3)
}

func TestTimestamps(t *testing.T) {
	t.Run("microseconds", func(t *testing.T) {
		ts := time.Date(2024, 5, 1, 10, 20, 30, 123456789, time.Local)
		assert.Equal(t, "2024-05-01T10:20:30.123456", FormatTime(ts))
	})

	t.Run("whole seconds omit fraction", func(t *testing.T) {
		ts := time.Date(2024, 5, 1, 10, 20, 30, 999, time.Local)
		assert.Equal(t, "2024-05-01T10:20:30", FormatTime(ts))
	})

	t.Run("leading zeros kept", func(t *testing.T) {
		ts := time.Date(2024, 5, 1, 10, 20, 30, 5000, time.Local)
		assert.Equal(t, "2024-05-01T10:20:30.000005", FormatTime(ts))
	})

	t.Run("parse", func(t *testing.T) {
		for _, s := range []string{"2024-05-01T10:20:30", "2024-05-01T10:20:30.123456", "2024-05-01T10:20:29.5"} {
			_, err := ParseTime(s)
			assert.NoError(t, err, s)
		}

		got, err := ParseTime("2024-05-01T10:20:30.123456")
		require.NoError(t, err)
		assert.Equal(t, "2024-05-01T10:20:30.123456", FormatTime(got))

		_, err = ParseTime("yesterday")
		assert.Error(t, err)
	})
}
