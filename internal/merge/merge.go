// Package merge combines two branch tips. There is no common-ancestor
// search and no conflict detection: the incoming tree wins on shared paths.
package merge

import (
	"fmt"
	"time"

	"vcs/internal/object"
)

// Author is recorded on every merge commit.
const Author = "System"

type Kind int

const (
	FastForward Kind = iota
	Commit
)

func (k Kind) String() string {
	if k == FastForward {
		return "fast-forward"
	}
	return "merge"
}

// Overlay returns base with every entry of theirs applied on top.
// Neither input is modified.
func Overlay(base, theirs object.Tree) object.Tree {
	merged := base.Clone()
	for p, e := range theirs {
		merged[p] = e
	}
	return merged
}

// Strategy picks how to merge into a branch whose tip is current.
func Strategy(current string) Kind {
	if current == "" {
		return FastForward
	}
	return Commit
}

// Message is the commit message for merging branch.
func Message(branch string) string {
	return fmt.Sprintf("Merge branch '%s'", branch)
}

// NewCommit builds the merge commit of target (from branch) into current.
// The returned commit has its hash computed.
func NewCommit(branch string, current, target *object.Commit, now time.Time) *object.Commit {
	c := &object.Commit{
		Message:     Message(branch),
		Author:      Author,
		Timestamp:   object.FormatTime(now),
		Parent:      current.Hash,
		MergeParent: target.Hash,
		Tree:        Overlay(current.Tree, target.Tree),
	}
	c.ComputeHash()
	return c
}
