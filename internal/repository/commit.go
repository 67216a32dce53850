package repository

import (
	"go.uber.org/zap"

	"vcs/internal/content"
	"vcs/internal/diff"
	vcserrors "vcs/internal/errors"
	"vcs/internal/object"
	"vcs/internal/staging"
	"vcs/internal/workspace"
)

// Add stages paths. Failures are reported per path in the result; the
// returned error is reserved for repository-level failures.
func (r *Repository) Add(paths []string) (*staging.AddResult, error) {
	s, err := r.begin("add")
	if err != nil {
		return nil, err
	}
	defer s.close()

	area, err := s.loadStaging(r.opts.Now)
	if err != nil {
		return nil, err
	}

	result, err := area.Add(s.objects, paths)
	if err != nil {
		return nil, err
	}

	for _, o := range result.Outcomes {
		if o.Err != nil {
			s.logger.Warn("Failed to stage path", zap.String("path", o.Input), zap.Error(o.Err))
		}
	}
	s.logger.Debug("Staged paths", zap.Int("added", result.Added()), zap.Int("failed", result.Failed()))

	return result, nil
}

// Commit records the staging set as a new commit on the current branch and
// returns its hash.
func (r *Repository) Commit(message, author string) (string, error) {
	s, err := r.begin("commit")
	if err != nil {
		return "", err
	}
	defer s.close()

	area, err := s.loadStaging(r.opts.Now)
	if err != nil {
		return "", err
	}
	if area.IsEmpty() {
		return "", vcserrors.EmptyState("No changes staged for commit")
	}

	branch, parent, err := s.refs.Head()
	if err != nil {
		return "", err
	}

	c := &object.Commit{
		Message:   message,
		Author:    author,
		Timestamp: object.FormatTime(r.opts.Now()),
		Parent:    parent,
		Tree:      area.Tree(),
	}
	hash := c.ComputeHash()

	if _, err := s.objects.PutCommit(c.Encode()); err != nil {
		return "", err
	}
	if err := s.refs.Set(branch, hash); err != nil {
		return "", err
	}
	if err := area.Clear(); err != nil {
		return "", err
	}

	s.logger.Debug("Created commit",
		zap.String("branch", branch),
		zap.String("hash", hash),
		zap.Int("files", len(c.Tree)))

	return hash, nil
}

// GetCommit loads the commit stored under hash.
func (r *Repository) GetCommit(hash string) (*object.Commit, error) {
	s, err := r.begin("get-commit")
	if err != nil {
		return nil, err
	}
	defer s.close()

	return s.commit(hash)
}

// Log follows parent links from the current branch tip and returns at most
// limit summaries, newest first. A missing object ends the log silently.
func (r *Repository) Log(limit int) ([]object.Summary, error) {
	s, err := r.begin("log")
	if err != nil {
		return nil, err
	}
	defer s.close()

	entries := []object.Summary{}
	if limit <= 0 {
		return entries, nil
	}

	_, hash, err := s.refs.Head()
	if err != nil {
		return nil, err
	}

	for hash != "" && len(entries) < limit {
		c, err := s.commit(hash)
		if err != nil {
			s.logger.Warn("Stopping log at unreadable commit", zap.String("hash", hash), zap.Error(err))
			break
		}
		entries = append(entries, c.Summary())
		hash = c.Parent
	}

	return entries, nil
}

// Status reports staged, modified and untracked paths.
func (r *Repository) Status() (*workspace.Status, error) {
	s, err := r.begin("status")
	if err != nil {
		return nil, err
	}
	defer s.close()

	area, err := s.loadStaging(r.opts.Now)
	if err != nil {
		return nil, err
	}

	branch, _, tree, err := s.headTree()
	if err != nil {
		return nil, err
	}

	return s.worktree.Status(branch, tree, area.Paths())
}

// Show resolves ref to a commit. ref is a branch name or a full commit
// hash; an empty ref means the current branch.
func (r *Repository) Show(ref string) (*object.Commit, error) {
	s, err := r.begin("show")
	if err != nil {
		return nil, err
	}
	defer s.close()

	return s.resolve(ref)
}

// Diff compares the trees of two refs.
func (r *Repository) Diff(from, to string) (*diff.Result, error) {
	s, err := r.begin("diff")
	if err != nil {
		return nil, err
	}
	defer s.close()

	a, err := s.resolve(from)
	if err != nil {
		return nil, err
	}
	b, err := s.resolve(to)
	if err != nil {
		return nil, err
	}

	return diff.Trees(a.Tree, b.Tree), nil
}

func (s *session) resolve(ref string) (*object.Commit, error) {
	if ref == "" {
		ref = s.refs.CurrentBranch()
	}

	if s.refs.Exists(ref) {
		hash, err := s.refs.Resolve(ref)
		if err != nil {
			return nil, err
		}
		if hash == "" {
			return nil, vcserrors.EmptyState("Branch '%s' has no commits", ref)
		}
		return s.commit(hash)
	}

	if content.ValidHash(ref) {
		return s.commit(ref)
	}

	if ref == s.refs.CurrentBranch() {
		return nil, vcserrors.EmptyState("No commits yet")
	}
	return nil, vcserrors.NotFound("unknown revision '%s'", ref)
}
