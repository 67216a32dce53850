// Package refs manages branch pointers and the symbolic HEAD.
package refs

import (
	stderrors "errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	vcserrors "vcs/internal/errors"
)

const (
	DefaultBranch = "main"

	headFile  = "HEAD"
	headsDir  = "refs/heads"
	refPrefix = "ref: refs/heads/"
)

// Store reads and writes refs under a storage directory on fs.
type Store struct {
	fs  billy.Filesystem
	dir string
}

// Branch is one entry of a branch listing.
type Branch struct {
	Name    string `json:"name"`
	Current bool   `json:"current"`
}

func New(fs billy.Filesystem, storageDir string) *Store {
	return &Store{fs: fs, dir: storageDir}
}

func (s *Store) headPath() string {
	return path.Join(s.dir, headFile)
}

// branchPath returns the file for name under refs/heads. Names whose
// segments are empty, "." or ".." do not address a file there.
func (s *Store) branchPath(name string) (string, bool) {
	if name == "" || strings.HasPrefix(name, "/") {
		return "", false
	}
	for _, seg := range strings.Split(name, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return "", false
		}
	}
	return path.Join(s.dir, headsDir, name), true
}

func unaddressable(name, op string) error {
	return vcserrors.IOFailure(fmt.Errorf("%w: branch name %q is outside refs/heads", os.ErrInvalid, name), "%s", op)
}

// CurrentBranch parses HEAD. An absent or unparsable HEAD means main.
func (s *Store) CurrentBranch() string {
	data, err := util.ReadFile(s.fs, s.headPath())
	if err != nil {
		return DefaultBranch
	}
	head := strings.TrimSpace(string(data))
	if !strings.HasPrefix(head, refPrefix) || len(head) == len(refPrefix) {
		return DefaultBranch
	}
	return strings.TrimPrefix(head, refPrefix)
}

// SetHead points HEAD at the named branch.
func (s *Store) SetHead(name string) error {
	if _, ok := s.branchPath(name); !ok {
		return unaddressable(name, "writing HEAD")
	}
	if err := util.WriteFile(s.fs, s.headPath(), []byte(refPrefix+name), 0o644); err != nil {
		return vcserrors.IOFailure(err, "writing HEAD")
	}
	return nil
}

// Exists reports whether a branch file exists for name.
func (s *Store) Exists(name string) bool {
	p, ok := s.branchPath(name)
	if !ok {
		return false
	}
	info, err := s.fs.Stat(p)
	return err == nil && !info.IsDir()
}

// Resolve returns the commit hash a branch points at. An absent or empty
// branch file resolves to "", as does a name outside refs/heads.
func (s *Store) Resolve(name string) (string, error) {
	p, ok := s.branchPath(name)
	if !ok {
		return "", nil
	}
	data, err := util.ReadFile(s.fs, p)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", vcserrors.IOFailure(err, "reading branch '%s'", name)
	}
	return strings.TrimSpace(string(data)), nil
}

// Head resolves the current branch.
func (s *Store) Head() (branch, hash string, err error) {
	branch = s.CurrentBranch()
	hash, err = s.Resolve(branch)
	return branch, hash, err
}

// Set overwrites a branch file, creating parent directories for nested
// names.
func (s *Store) Set(name, hash string) error {
	p, ok := s.branchPath(name)
	if !ok {
		return unaddressable(name, fmt.Sprintf("writing branch '%s'", name))
	}
	if err := s.fs.MkdirAll(path.Dir(p), 0o755); err != nil {
		return vcserrors.IOFailure(err, "writing branch '%s'", name)
	}
	if err := util.WriteFile(s.fs, p, []byte(hash), 0o644); err != nil {
		return vcserrors.IOFailure(err, "writing branch '%s'", name)
	}
	return nil
}

// Create starts a new branch at the current commit.
func (s *Store) Create(name string) (string, error) {
	if s.Exists(name) {
		return "", vcserrors.AlreadyExists("Branch '%s' already exists", name)
	}
	_, hash, err := s.Head()
	if err != nil {
		return "", err
	}
	if hash == "" {
		return "", vcserrors.EmptyState("No commits yet")
	}
	if err := s.Set(name, hash); err != nil {
		return "", err
	}
	return hash, nil
}

// List returns every branch file under refs/heads, nested ones included,
// sorted by name.
func (s *Store) List() ([]Branch, error) {
	current := s.CurrentBranch()
	heads := path.Join(s.dir, headsDir)

	var names []string
	err := util.Walk(s.fs, heads, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			if stderrors.Is(err, os.ErrNotExist) {
				return nil
			}
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		names = append(names, strings.TrimPrefix(filepath.ToSlash(p), heads+"/"))
		return nil
	})
	if err != nil {
		return nil, vcserrors.IOFailure(err, "listing branches")
	}
	sort.Strings(names)

	branches := make([]Branch, 0, len(names))
	for _, n := range names {
		branches = append(branches, Branch{Name: n, Current: n == current})
	}
	return branches, nil
}
