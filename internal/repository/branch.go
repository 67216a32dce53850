package repository

import (
	"fmt"

	"go.uber.org/zap"

	vcserrors "vcs/internal/errors"
	"vcs/internal/refs"
	"vcs/internal/workspace"
)

// BranchResult is either BranchCreated or BranchList.
type BranchResult interface {
	isBranchResult()
}

// BranchCreated is returned when Branch creates a new branch.
type BranchCreated struct {
	Name string
	Hash string
}

func (BranchCreated) isBranchResult() {}

func (b BranchCreated) Message() string {
	return fmt.Sprintf("Branch '%s' created", b.Name)
}

// BranchList is returned when Branch is called without a name.
type BranchList struct {
	Branches []refs.Branch
}

func (BranchList) isBranchResult() {}

// Branch creates a branch at the current commit, or lists branches when
// name is empty.
func (r *Repository) Branch(name string) (BranchResult, error) {
	s, err := r.begin("branch")
	if err != nil {
		return nil, err
	}
	defer s.close()

	if name == "" {
		branches, err := s.refs.List()
		if err != nil {
			return nil, err
		}
		return BranchList{Branches: branches}, nil
	}

	hash, err := s.refs.Create(name)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Created branch", zap.String("branch", name), zap.String("hash", hash))

	return BranchCreated{Name: name, Hash: hash}, nil
}

// CheckoutResult describes a completed checkout. Hash and Report are empty
// when the branch has no commits.
type CheckoutResult struct {
	Branch string
	Hash   string
	Report *workspace.MaterializeReport
}

func (c *CheckoutResult) Message() string {
	return fmt.Sprintf("Switched to branch '%s'", c.Branch)
}

// Checkout switches HEAD to branch and synchronizes the working tree to its
// commit. Uncommitted changes are overwritten.
func (r *Repository) Checkout(branch string) (*CheckoutResult, error) {
	s, err := r.begin("checkout")
	if err != nil {
		return nil, err
	}
	defer s.close()

	if !s.refs.Exists(branch) {
		return nil, vcserrors.NotFound("Branch '%s' does not exist", branch)
	}

	if err := s.refs.SetHead(branch); err != nil {
		return nil, err
	}

	result := &CheckoutResult{Branch: branch}
	hash, err := s.refs.Resolve(branch)
	if err != nil {
		return nil, err
	}
	if hash == "" {
		return result, nil
	}

	c, err := s.commit(hash)
	if err != nil {
		return nil, err
	}
	report, err := s.worktree.Materialize(c.Tree, s.objects)
	if err != nil {
		return nil, err
	}
	result.Hash = hash
	result.Report = report

	s.logger.Debug("Checked out branch",
		zap.String("branch", branch),
		zap.String("hash", hash),
		zap.Int("written", len(report.Written)),
		zap.Int("removed", len(report.Removed)))

	return result, nil
}
