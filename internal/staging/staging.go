// Package staging persists the set of pending changes between commits.
package staging

import (
	"encoding/json"
	stderrors "errors"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	vcserrors "vcs/internal/errors"
	"vcs/internal/object"
)

// BlobStore is the subset of the object store staging needs.
type BlobStore interface {
	PutBlob(data []byte) (string, error)
}

// Area is the staging set backed by a JSON file on fs.
type Area struct {
	fs      billy.Filesystem
	file    string
	entries object.Tree

	// Now stamps new entries. Defaults to time.Now.
	Now func() time.Time
}

// Load reads the staging file. A missing or unparsable file yields an empty
// set; other read failures are IOFailure.
func Load(fs billy.Filesystem, file string) (*Area, error) {
	a := &Area{fs: fs, file: file, entries: object.Tree{}, Now: time.Now}

	data, err := util.ReadFile(fs, file)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return a, nil
		}
		return nil, vcserrors.IOFailure(err, "reading staging file")
	}

	var entries object.Tree
	if err := json.Unmarshal(data, &entries); err != nil || entries == nil {
		return a, nil
	}
	a.entries = entries
	return a, nil
}

// Save overwrites the staging file with the full set.
func (a *Area) Save() error {
	data, err := json.MarshalIndent(a.entries, "", "  ")
	if err != nil {
		return vcserrors.IOFailure(err, "encoding staging set")
	}
	if err := util.WriteFile(a.fs, a.file, data, 0o644); err != nil {
		return vcserrors.IOFailure(err, "writing staging file")
	}
	return nil
}

// Clear empties and persists the set.
func (a *Area) Clear() error {
	a.entries = object.Tree{}
	return a.Save()
}

func (a *Area) IsEmpty() bool { return len(a.entries) == 0 }

func (a *Area) Paths() []string { return a.entries.Paths() }

// Tree returns a copy of the staged entries.
func (a *Area) Tree() object.Tree { return a.entries.Clone() }

// Add stages each path independently and then persists the whole set once.
// Per-path failures are recorded in the result and never abort the batch.
// The returned error is only set when persisting fails.
func (a *Area) Add(store BlobStore, paths []string) (*AddResult, error) {
	result := &AddResult{Outcomes: make([]Outcome, 0, len(paths))}

	for _, p := range paths {
		result.Outcomes = append(result.Outcomes, a.addOne(store, p))
	}

	if err := a.Save(); err != nil {
		return result, err
	}
	return result, nil
}

func (a *Area) addOne(store BlobStore, input string) Outcome {
	out := Outcome{Input: input}

	rel, err := Normalize(input, a.storageDir())
	if err != nil {
		out.Err = err
		return out
	}
	out.Path = rel

	info, err := a.fs.Stat(rel)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			out.Err = vcserrors.NotFound("%s: file not found", input)
		} else {
			out.Err = vcserrors.IOFailure(err, "stat %s", input)
		}
		return out
	}
	if info.IsDir() {
		out.Err = vcserrors.IsDirectory(input)
		return out
	}

	data, err := util.ReadFile(a.fs, rel)
	if err != nil {
		out.Err = vcserrors.IOFailure(err, "reading %s", input)
		return out
	}

	hash, err := store.PutBlob(data)
	if err != nil {
		out.Err = vcserrors.IOFailure(err, "storing %s", input)
		return out
	}

	a.entries[rel] = object.TreeEntry{
		Hash:     hash,
		Mode:     object.RegularFileMode,
		StagedAt: object.FormatTime(a.Now()),
	}
	out.Hash = hash
	return out
}

// storageDir is the first element of the staging file's path.
func (a *Area) storageDir() string {
	dir := filepath.ToSlash(a.file)
	if i := strings.IndexByte(dir, '/'); i > 0 {
		return dir[:i]
	}
	return ""
}

// Normalize converts p into a clean slash-separated path relative to the
// working tree root. Paths that escape the root, name the root itself or
// point into storageDir are NotFound.
func Normalize(p, storageDir string) (string, error) {
	if p == "" {
		return "", vcserrors.NotFound("empty path")
	}
	slashed := filepath.ToSlash(p)
	if path.IsAbs(slashed) || filepath.IsAbs(p) {
		return "", vcserrors.NotFound("%s: outside repository", p)
	}

	clean := path.Clean(slashed)
	switch {
	case clean == ".":
		return "", vcserrors.NotFound("%s: not a file", p)
	case clean == ".." || strings.HasPrefix(clean, "../"):
		return "", vcserrors.NotFound("%s: outside repository", p)
	case storageDir != "" && (clean == storageDir || strings.HasPrefix(clean, storageDir+"/")):
		return "", vcserrors.NotFound("%s: inside repository storage", p)
	}
	return clean, nil
}
