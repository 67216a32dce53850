// internal/repository/repository.go
package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"go.uber.org/zap"

	vcserrors "vcs/internal/errors"
	"vcs/internal/object"
	"vcs/internal/refs"
	"vcs/internal/safe"
	"vcs/internal/staging"
	"vcs/internal/workspace"
)

// StorageDir is the repository's internal directory under the root.
const StorageDir = ".vcs"

const (
	objectsDir  = "objects"
	indexDir    = "index"
	stagingFile = "staging.json"
	metaFile    = "config.json"

	repositoryVersion = "1"
)

// Options configures a Repository handle
type Options struct {
	Logger    *zap.Logger
	CacheSize int

	// Now supplies commit and staging timestamps. Defaults to time.Now.
	Now func() time.Time
}

// Repository is a stateless handle over a working directory. Every operation
// reads persisted state, applies its change and writes it back before
// returning; nothing is cached between calls.
type Repository struct {
	root   string
	opts   Options
	logger *zap.Logger
}

// Metadata is the content of the repository metadata file.
type Metadata struct {
	RepositoryVersion string `json:"repository_version"`
	CreatedAt         string `json:"created_at"`
}

// Open returns a handle for the repository rooted at root. It does not
// require the repository to exist; operations other than Init fail with
// NotARepository until it does.
func Open(root string, opts Options) (*Repository, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("getting absolute path for root %s: %w", root, err)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Repository{
		root:   absRoot,
		opts:   opts,
		logger: opts.Logger.With(zap.String("root", absRoot)),
	}, nil
}

func (r *Repository) Root() string {
	return r.root
}

func (r *Repository) storagePath(elem ...string) string {
	return filepath.Join(append([]string{r.root, StorageDir}, elem...)...)
}

// IsRepository reports whether the storage directory exists.
func (r *Repository) IsRepository() bool {
	info, err := os.Stat(r.storagePath())
	return err == nil && info.IsDir()
}

// Init creates the storage layout. It returns false, leaving everything
// untouched, when the storage directory already exists.
func (r *Repository) Init() (bool, error) {
	if _, err := os.Lstat(r.storagePath()); err == nil {
		r.logger.Debug("Repository already initialized")
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, vcserrors.IOFailure(err, "checking %s", r.storagePath())
	}

	fs := osfs.New(r.root)
	dirs := []string{
		StorageDir,
		path.Join(StorageDir, objectsDir),
		path.Join(StorageDir, "refs", "heads"),
	}
	for _, dir := range dirs {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return false, vcserrors.IOFailure(err, "creating directory %s", dir)
		}
	}

	area, err := staging.Load(fs, path.Join(StorageDir, stagingFile))
	if err != nil {
		return false, err
	}
	if err := area.Clear(); err != nil {
		return false, err
	}

	if err := refs.New(fs, StorageDir).SetHead(refs.DefaultBranch); err != nil {
		return false, err
	}

	meta := Metadata{
		RepositoryVersion: repositoryVersion,
		CreatedAt:         object.FormatTime(r.opts.Now()),
	}
	if err := writeJSON(fs, path.Join(StorageDir, metaFile), meta); err != nil {
		return false, err
	}

	s, err := r.openSafe()
	if err != nil {
		return false, err
	}
	if err := s.OpenIndex(); err != nil {
		s.Close()
		return false, err
	}
	if err := s.Close(); err != nil {
		return false, err
	}

	r.logger.Info("Initialized repository")
	return true, nil
}

// Metadata reads the repository metadata file.
func (r *Repository) Metadata() (*Metadata, error) {
	if !r.IsRepository() {
		return nil, vcserrors.NotARepository(r.root)
	}
	data, err := os.ReadFile(r.storagePath(metaFile))
	if err != nil {
		return nil, vcserrors.IOFailure(err, "reading repository metadata")
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, vcserrors.IOFailure(err, "parsing repository metadata")
	}
	return &meta, nil
}

func writeJSON(fs billy.Filesystem, name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return vcserrors.IOFailure(err, "encoding %s", name)
	}
	if err := util.WriteFile(fs, name, data, 0o644); err != nil {
		return vcserrors.IOFailure(err, "writing %s", name)
	}
	return nil
}

func (r *Repository) openSafe() (*safe.Safe, error) {
	return safe.Open(safe.Options{
		ObjectsDir: r.storagePath(objectsDir),
		IndexDir:   r.storagePath(indexDir),
		CacheSize:  r.opts.CacheSize,
	})
}

// session holds the components for one operation.
type session struct {
	fs       billy.Filesystem
	objects  *safe.Safe
	refs     *refs.Store
	worktree *workspace.Worktree
	logger   *zap.Logger
}

// begin opens a session for op. The caller must close it.
func (r *Repository) begin(op string) (*session, error) {
	if !r.IsRepository() {
		return nil, vcserrors.NotARepository(r.root)
	}

	objects, err := r.openSafe()
	if err != nil {
		return nil, err
	}

	logger := r.logger.With(zap.String("operation", op))
	fs := osfs.New(r.root)
	return &session{
		fs:       fs,
		objects:  objects,
		refs:     refs.New(fs, StorageDir),
		worktree: workspace.New(fs, StorageDir, logger),
		logger:   logger,
	}, nil
}

func (s *session) close() {
	if err := s.objects.Close(); err != nil {
		s.logger.Warn("Failed to close object store", zap.Error(err))
	}
}

func (s *session) loadStaging(now func() time.Time) (*staging.Area, error) {
	area, err := staging.Load(s.fs, path.Join(StorageDir, stagingFile))
	if err != nil {
		return nil, err
	}
	area.Now = now
	return area, nil
}

// commit loads and decodes a commit object.
func (s *session) commit(hash string) (*object.Commit, error) {
	data, err := s.objects.Get(hash)
	if err != nil {
		return nil, err
	}
	c, err := object.Decode(hash, data)
	if err != nil {
		return nil, vcserrors.NotFound("object %s is not a commit", hash)
	}
	return c, nil
}

// headTree returns the current branch, its commit hash and the commit's
// tree. Before the first commit the hash is empty and the tree is empty.
func (s *session) headTree() (string, string, object.Tree, error) {
	branch, hash, err := s.refs.Head()
	if err != nil {
		return "", "", nil, err
	}
	if hash == "" {
		return branch, "", object.Tree{}, nil
	}
	c, err := s.commit(hash)
	if err != nil {
		return "", "", nil, err
	}
	return branch, hash, c.Tree, nil
}
