package workspace

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/go-git/go-billy/v5/util"

	vcserrors "vcs/internal/errors"
)

// Files walks the working tree and returns the slash-separated relative
// paths of all regular files, sorted. The storage directory at the root is
// skipped; symlinks and other special files are ignored.
func (w *Worktree) Files() ([]string, error) {
	var files []string

	err := util.Walk(w.fs, "", func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != "" && filepath.ToSlash(path) == w.storageDir {
				return filepath.SkipDir
			}
			return nil
		}
		if info.Mode().IsRegular() {
			files = append(files, filepath.ToSlash(path))
		}
		return nil
	})
	if err != nil {
		return nil, vcserrors.IOFailure(err, "walking working tree")
	}

	sort.Strings(files)
	return files, nil
}
