// internal/diff/diff.go
package diff

import (
	"fmt"
	"sort"

	"vcs/internal/object"
)

// ChangeType indicates how a path differs between two trees
type ChangeType int

const (
	Added ChangeType = iota
	Modified
	Deleted
)

func (t ChangeType) String() string {
	switch t {
	case Added:
		return "added"
	case Modified:
		return "modified"
	case Deleted:
		return "deleted"
	}
	return fmt.Sprintf("ChangeType(%d)", int(t))
}

// Symbol is the one-character marker used when rendering a change
func (t ChangeType) Symbol() string {
	switch t {
	case Added:
		return "A"
	case Modified:
		return "M"
	case Deleted:
		return "D"
	}
	return "?"
}

// Change is a single path-level difference. OldHash is empty for additions
// and NewHash is empty for deletions.
type Change struct {
	Type    ChangeType
	Path    string
	OldHash string
	NewHash string
}

// Result contains every change between two trees, sorted by path
type Result struct {
	Changes []Change
	Stats   struct {
		Additions     int
		Deletions     int
		Modifications int
	}
}

// Trees compares two trees by path and blob hash. Mode and staging time are
// ignored; a nil tree is empty.
func Trees(from, to object.Tree) *Result {
	result := &Result{}

	paths := make(map[string]struct{}, len(from)+len(to))
	for p := range from {
		paths[p] = struct{}{}
	}
	for p := range to {
		paths[p] = struct{}{}
	}

	sorted := make([]string, 0, len(paths))
	for p := range paths {
		sorted = append(sorted, p)
	}
	sort.Strings(sorted)

	for _, p := range sorted {
		old, inOld := from[p]
		cur, inNew := to[p]

		switch {
		case inOld && !inNew:
			result.Changes = append(result.Changes, Change{Type: Deleted, Path: p, OldHash: old.Hash})
			result.Stats.Deletions++
		case !inOld && inNew:
			result.Changes = append(result.Changes, Change{Type: Added, Path: p, NewHash: cur.Hash})
			result.Stats.Additions++
		case old.Hash != cur.Hash:
			result.Changes = append(result.Changes, Change{Type: Modified, Path: p, OldHash: old.Hash, NewHash: cur.Hash})
			result.Stats.Modifications++
		}
	}

	return result
}

func (r *Result) Empty() bool {
	return len(r.Changes) == 0
}

// Summary renders the change counts, e.g. "2 added, 1 modified, 0 deleted"
func (r *Result) Summary() string {
	return fmt.Sprintf("%d added, %d modified, %d deleted",
		r.Stats.Additions, r.Stats.Modifications, r.Stats.Deletions)
}
