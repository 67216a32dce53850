package workspace

import (
	"fmt"
	"os"

	"github.com/go-git/go-billy/v5/util"
	"go.uber.org/zap"

	vcserrors "vcs/internal/errors"
	"vcs/internal/object"
	"vcs/internal/staging"
)

// BlobReader fetches stored blob content by hash.
type BlobReader interface {
	Get(hash string) ([]byte, error)
}

// MaterializeReport lists what Materialize changed on disk.
type MaterializeReport struct {
	Written []string
	Removed []string
}

// Materialize makes the working tree match tree exactly: every file not in
// tree is removed, untracked files included, and every entry is written
// from its blob. Paths are checked and all blobs are fetched before the
// first file is touched, so a missing blob or a path outside the working
// tree leaves it unchanged. Directories emptied by removal are left in
// place.
func (w *Worktree) Materialize(tree object.Tree, blobs BlobReader) (*MaterializeReport, error) {
	paths := tree.Paths()

	data := make(map[string][]byte, len(paths))
	for _, p := range paths {
		if clean, err := staging.Normalize(p, w.storageDir); err != nil || clean != p {
			return nil, vcserrors.IOFailure(fmt.Errorf("%w: %q", os.ErrInvalid, p), "tree path outside working tree")
		}
		b, err := blobs.Get(tree[p].Hash)
		if err != nil {
			if vcserrors.TypeOf(err) == vcserrors.ErrorTypeNotFound {
				return nil, vcserrors.NotFound("blob %s for %s not found", tree[p].Hash, p)
			}
			return nil, vcserrors.IOFailure(err, "reading blob for %s", p)
		}
		data[p] = b
	}

	files, err := w.Files()
	if err != nil {
		return nil, err
	}

	report := &MaterializeReport{}
	for _, f := range files {
		if _, ok := tree[f]; ok {
			continue
		}
		if err := w.fs.Remove(f); err != nil {
			return report, vcserrors.IOFailure(err, "removing %s", f)
		}
		report.Removed = append(report.Removed, f)
	}

	for _, p := range paths {
		// a directory left where a file belongs holds no files by now
		if info, err := w.fs.Lstat(p); err == nil && info.IsDir() {
			if err := util.RemoveAll(w.fs, p); err != nil {
				return report, vcserrors.IOFailure(err, "replacing directory %s", p)
			}
		}
		if err := util.WriteFile(w.fs, p, data[p], 0o644); err != nil {
			return report, vcserrors.IOFailure(err, "writing %s", p)
		}
		report.Written = append(report.Written, p)
	}

	w.logger.Debug("Materialized tree",
		zap.Int("written", len(report.Written)),
		zap.Int("removed", len(report.Removed)))

	return report, nil
}
