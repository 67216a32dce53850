package workspace

import (
	stderrors "errors"
	"os"
	"sort"

	"github.com/go-git/go-billy/v5/util"
	"go.uber.org/zap"

	"vcs/internal/content"
	vcserrors "vcs/internal/errors"
	"vcs/internal/object"
)

// DeletedSuffix marks tracked paths that are missing from disk.
const DeletedSuffix = " (deleted)"

// Status describes the working tree relative to the current commit and the
// staging set. All lists are sorted.
type Status struct {
	Branch    string   `json:"branch"`
	Staged    []string `json:"staged"`
	Modified  []string `json:"modified"`
	Untracked []string `json:"untracked"`
}

// Clean reports whether nothing is staged, modified or untracked.
func (s *Status) Clean() bool {
	return len(s.Staged) == 0 && len(s.Modified) == 0 && len(s.Untracked) == 0
}

// Status compares the working tree against tree (the current commit's tree,
// empty before the first commit) and the staged paths.
func (w *Worktree) Status(branch string, tree object.Tree, staged []string) (*Status, error) {
	st := &Status{
		Branch:    branch,
		Staged:    append([]string{}, staged...),
		Modified:  []string{},
		Untracked: []string{},
	}
	sort.Strings(st.Staged)

	for _, p := range tree.Paths() {
		data, err := util.ReadFile(w.fs, p)
		if err != nil {
			if stderrors.Is(err, os.ErrNotExist) {
				st.Modified = append(st.Modified, p+DeletedSuffix)
				continue
			}
			info, statErr := w.fs.Stat(p)
			if statErr == nil && info.IsDir() {
				st.Modified = append(st.Modified, p)
				continue
			}
			return nil, vcserrors.IOFailure(err, "reading %s", p)
		}
		if content.Hash(data) != tree[p].Hash {
			st.Modified = append(st.Modified, p)
		}
	}

	files, err := w.Files()
	if err != nil {
		return nil, err
	}
	stagedSet := make(map[string]struct{}, len(staged))
	for _, p := range staged {
		stagedSet[p] = struct{}{}
	}
	for _, f := range files {
		if _, ok := tree[f]; ok {
			continue
		}
		if _, ok := stagedSet[f]; ok {
			continue
		}
		st.Untracked = append(st.Untracked, f)
	}

	w.logger.Debug("Computed status",
		zap.String("branch", branch),
		zap.Int("staged", len(st.Staged)),
		zap.Int("modified", len(st.Modified)),
		zap.Int("untracked", len(st.Untracked)))

	return st, nil
}
