package repository

import (
	"fmt"

	"go.uber.org/zap"

	"vcs/internal/diff"
	vcserrors "vcs/internal/errors"
	"vcs/internal/merge"
	"vcs/internal/object"
	"vcs/internal/workspace"
)

// MergeResult describes a completed merge.
type MergeResult struct {
	Kind   merge.Kind
	Branch string
	// Hash is the new tip of the current branch.
	Hash   string
	Diff   *diff.Result
	Report *workspace.MaterializeReport
}

func (m *MergeResult) Message() string {
	if m.Kind == merge.FastForward {
		return fmt.Sprintf("Fast-forward merge of '%s'", m.Branch)
	}
	return fmt.Sprintf("Merged branch '%s'", m.Branch)
}

// Merge merges branch into the current branch. If the current branch has no
// commits it is fast-forwarded; otherwise a merge commit is created whose
// tree takes branch's entry for every shared path.
func (r *Repository) Merge(branch string) (*MergeResult, error) {
	s, err := r.begin("merge")
	if err != nil {
		return nil, err
	}
	defer s.close()

	current := s.refs.CurrentBranch()
	if branch == current {
		return nil, vcserrors.SelfReference("Cannot merge branch into itself")
	}
	if !s.refs.Exists(branch) {
		return nil, vcserrors.NotFound("Branch '%s' does not exist", branch)
	}

	targetHash, err := s.refs.Resolve(branch)
	if err != nil {
		return nil, err
	}
	if targetHash == "" {
		return nil, vcserrors.NotFound("Branch '%s' has no commits", branch)
	}
	target, err := s.commit(targetHash)
	if err != nil {
		return nil, err
	}

	currentHash, err := s.refs.Resolve(current)
	if err != nil {
		return nil, err
	}

	result := &MergeResult{Kind: merge.Strategy(currentHash), Branch: branch}
	var before object.Tree
	tip := target

	if result.Kind == merge.Commit {
		head, err := s.commit(currentHash)
		if err != nil {
			return nil, err
		}
		before = head.Tree

		tip = merge.NewCommit(branch, head, target, r.opts.Now())
		if _, err := s.objects.PutCommit(tip.Encode()); err != nil {
			return nil, err
		}
	}

	if err := s.refs.Set(current, tip.Hash); err != nil {
		return nil, err
	}
	report, err := s.worktree.Materialize(tip.Tree, s.objects)
	if err != nil {
		return nil, err
	}

	result.Hash = tip.Hash
	result.Diff = diff.Trees(before, tip.Tree)
	result.Report = report

	s.logger.Debug("Merged branch",
		zap.String("branch", branch),
		zap.String("into", current),
		zap.Stringer("kind", result.Kind),
		zap.String("hash", tip.Hash))

	return result, nil
}
