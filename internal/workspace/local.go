// internal/workspace/local.go
package workspace

import (
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"go.uber.org/zap"

	vcserrors "vcs/internal/errors"
)

// Worktree is the set of user files under a repository root, excluding the
// storage directory.
type Worktree struct {
	fs         billy.Filesystem
	storageDir string
	logger     *zap.Logger
}

// New returns a Worktree over fs. storageDir is relative to the fs root.
func New(fs billy.Filesystem, storageDir string, logger *zap.Logger) *Worktree {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worktree{fs: fs, storageDir: storageDir, logger: logger}
}

// FindRoot searches startDir and its parents for a directory containing
// storageDir.
func FindRoot(startDir, storageDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", vcserrors.IOFailure(err, "resolving %s", startDir)
	}

	for {
		if info, err := os.Stat(filepath.Join(dir, storageDir)); err == nil && info.IsDir() {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", vcserrors.NotARepository(startDir)
}
