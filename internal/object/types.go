// Package object defines commit records and their canonical encoding.
package object

import (
	"sort"
)

// RegularFileMode is the only mode recorded for tracked files.
const RegularFileMode = "100644"

// TreeEntry is one path's snapshot inside a commit tree.
type TreeEntry struct {
	Hash     string `json:"hash"`
	Mode     string `json:"mode"`
	StagedAt string `json:"staged_at"`
}

// Tree maps slash-separated working-tree paths to their entries.
type Tree map[string]TreeEntry

// Paths returns the tree's paths in sorted order.
func (t Tree) Paths() []string {
	paths := make([]string, 0, len(t))
	for p := range t {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func (t Tree) Clone() Tree {
	out := make(Tree, len(t))
	for p, e := range t {
		out[p] = e
	}
	return out
}

// Commit is an immutable snapshot. Hash is derived from the other fields and
// is not part of the encoding. Empty Parent/MergeParent mean absent.
type Commit struct {
	Hash        string
	Message     string
	Author      string
	Timestamp   string
	Parent      string
	MergeParent string
	Tree        Tree
}

func (c *Commit) IsMerge() bool {
	return c.MergeParent != ""
}

// Summary is the log view of a commit.
type Summary struct {
	Hash      string `json:"hash"`
	Message   string `json:"message"`
	Author    string `json:"author"`
	Timestamp string `json:"timestamp"`
}

func (c *Commit) Summary() Summary {
	return Summary{
		Hash:      c.Hash,
		Message:   c.Message,
		Author:    c.Author,
		Timestamp: c.Timestamp,
	}
}
