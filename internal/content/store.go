// internal/content/store.go
package content

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	vcserrors "vcs/internal/errors"

	"github.com/google/uuid"
)

const tempPrefix = ".tmp-"

// FileStore keeps one file per object under root/<2 hex>/<38 hex>.
type FileStore struct {
	root string
}

func NewFileStore(root string) (*FileStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, vcserrors.IOFailure(err, "creating object directory")
	}
	return &FileStore{root: root}, nil
}

// Put stores content and returns its hash. Storing existing content is a no-op.
func (s *FileStore) Put(content []byte) (string, error) {
	if content == nil {
		content = []byte{}
	}

	hash := Hash(content)
	path := s.Path(hash)
	if _, err := os.Stat(path); err == nil {
		return hash, nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", vcserrors.IOFailure(err, "creating object directory for %s", hash)
	}

	// Write under a temporary name first so a reader never sees a partial object.
	tmp := filepath.Join(dir, tempPrefix+uuid.NewString())
	if err := os.WriteFile(tmp, content, 0644); err != nil {
		os.Remove(tmp)
		return "", vcserrors.IOFailure(err, "writing object %s", hash)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", vcserrors.IOFailure(err, "writing object %s", hash)
	}

	return hash, nil
}

func (s *FileStore) Get(hash string) ([]byte, error) {
	if !ValidHash(hash) {
		return nil, vcserrors.NotFound("object %q not found", hash)
	}

	data, err := os.ReadFile(s.Path(hash))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, vcserrors.NotFound("object %s not found", hash)
		}
		return nil, vcserrors.IOFailure(err, "reading object %s", hash)
	}
	return data, nil
}

func (s *FileStore) Exists(hash string) bool {
	if !ValidHash(hash) {
		return false
	}
	_, err := os.Stat(s.Path(hash))
	return err == nil
}

// Path returns the object's location; the object need not exist.
func (s *FileStore) Path(hash string) string {
	return filepath.Join(s.root, hash[:2], hash[2:])
}

// List returns the hashes of every stored object, sorted.
func (s *FileStore) List() ([]string, error) {
	var hashes []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), tempPrefix) {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		hash := strings.ReplaceAll(filepath.ToSlash(rel), "/", "")
		if ValidHash(hash) {
			hashes = append(hashes, hash)
		}
		return nil
	})
	if err != nil {
		return nil, vcserrors.IOFailure(err, "listing objects")
	}
	sort.Strings(hashes)
	return hashes, nil
}
