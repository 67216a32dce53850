// internal/safe/safe.go
package safe

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"vcs/internal/content"
	vcserrors "vcs/internal/errors"
	"vcs/internal/storage"

	"github.com/dgraph-io/badger/v4"
	lru "github.com/hashicorp/golang-lru/v2"
)

type Kind string

const (
	KindBlob   Kind = "blob"
	KindCommit Kind = "commit"
)

const metaPrefix = "object"

// ObjectMeta stores metadata about a stored object
type ObjectMeta struct {
	Hash      string    `json:"hash"`
	Kind      Kind      `json:"kind"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

func (m *ObjectMeta) GetID() string { return m.Hash }

// Safe is the repository object store: object files on disk plus a badger
// index of object metadata and an LRU cache of object bytes. A Safe is meant
// to live for a single engine operation.
//
// The index is opened on first use. Reads go to the object files only, so
// read-only operations never take badger's directory lock.
type Safe struct {
	files    *content.FileStore
	indexDir string
	db       *badger.DB
	meta     *storage.BadgerStore
	cache    *lru.Cache[string, []byte]
}

// Options configures Safe behavior
type Options struct {
	ObjectsDir string // Root directory for object files
	IndexDir   string // Badger directory; empty keeps the index in memory
	CacheSize  int    // Number of objects to cache
}

// Open opens the object files. The metadata index is opened lazily.
func Open(opts Options) (*Safe, error) {
	if opts.ObjectsDir == "" {
		return nil, fmt.Errorf("objects directory is required")
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 256
	}

	files, err := content.NewFileStore(opts.ObjectsDir)
	if err != nil {
		return nil, err
	}

	cache, err := lru.New[string, []byte](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating cache: %w", err)
	}

	return &Safe{
		files:    files,
		indexDir: opts.IndexDir,
		cache:    cache,
	}, nil
}

// OpenIndex opens the metadata index if it is not open yet.
func (s *Safe) OpenIndex() error {
	_, err := s.index()
	return err
}

func (s *Safe) index() (*storage.BadgerStore, error) {
	if s.meta != nil {
		return s.meta, nil
	}
	db, err := badger.Open(indexOptions(s.indexDir))
	if err != nil {
		return nil, vcserrors.IOFailure(err, "opening object index")
	}
	s.db = db
	s.meta = storage.NewBadgerStore(db, metaPrefix)
	return s.meta, nil
}

func indexOptions(dir string) badger.Options {
	opts := badger.DefaultOptions(dir).
		WithNumVersionsToKeep(1).
		WithValueLogFileSize(16 << 20).
		WithMemTableSize(8 << 20).
		WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	return opts
}

func (s *Safe) Close() error {
	if s.db == nil {
		return nil
	}
	db := s.db
	s.db, s.meta = nil, nil
	if err := db.Close(); err != nil {
		return vcserrors.IOFailure(err, "closing object index")
	}
	return nil
}

// Put stores data and returns its hash. Duplicate content is not rewritten.
func (s *Safe) Put(kind Kind, data []byte) (string, error) {
	meta, err := s.index()
	if err != nil {
		return "", err
	}

	hash, err := s.files.Put(data)
	if err != nil {
		return "", err
	}

	err = meta.Create(&ObjectMeta{
		Hash:      hash,
		Kind:      kind,
		Size:      int64(len(data)),
		CreatedAt: time.Now(),
	})
	if err != nil && !errors.Is(err, vcserrors.ErrAlreadyExists) {
		return "", vcserrors.IOFailure(err, "indexing object %s", hash)
	}

	s.cache.Add(hash, data)
	return hash, nil
}

func (s *Safe) PutBlob(data []byte) (string, error) {
	return s.Put(KindBlob, data)
}

func (s *Safe) PutCommit(data []byte) (string, error) {
	return s.Put(KindCommit, data)
}

// Get retrieves an object by hash, verifying its content on first read.
func (s *Safe) Get(hash string) ([]byte, error) {
	if data, ok := s.cache.Get(hash); ok {
		return data, nil
	}

	data, err := s.files.Get(hash)
	if err != nil {
		return nil, err
	}
	if content.Hash(data) != hash {
		return nil, vcserrors.IOFailure(fmt.Errorf("content hash mismatch"), "reading object %s", hash)
	}

	s.cache.Add(hash, data)
	return data, nil
}

// Stats summarizes the object index.
type Stats struct {
	Objects int          `json:"objects"`
	Bytes   int64        `json:"bytes"`
	ByKind  map[Kind]int `json:"by_kind"`
}

func (s *Safe) Stats() (*Stats, error) {
	meta, err := s.index()
	if err != nil {
		return nil, err
	}

	stats := &Stats{ByKind: make(map[Kind]int)}
	err = meta.ForEach(func(_ string, val []byte) error {
		var meta ObjectMeta
		if err := json.Unmarshal(val, &meta); err != nil {
			return err
		}
		stats.Objects++
		stats.Bytes += meta.Size
		stats.ByKind[meta.Kind]++
		return nil
	})
	if err != nil {
		return nil, vcserrors.IOFailure(err, "reading object index")
	}
	return stats, nil
}

// Report is the outcome of Verify.
type Report struct {
	Checked   int      `json:"checked"`
	Missing   []string `json:"missing"`   // indexed but absent on disk
	Corrupt   []string `json:"corrupt"`   // content does not hash to its name
	Unindexed []string `json:"unindexed"` // on disk without an index entry
}

func (r *Report) OK() bool {
	return len(r.Missing) == 0 && len(r.Corrupt) == 0
}

// Verify re-hashes every object on disk and cross-checks the index.
func (s *Safe) Verify() (*Report, error) {
	meta, err := s.index()
	if err != nil {
		return nil, err
	}

	hashes, err := s.files.List()
	if err != nil {
		return nil, err
	}

	report := &Report{}
	onDisk := make(map[string]bool, len(hashes))
	for _, hash := range hashes {
		onDisk[hash] = true
		report.Checked++

		data, err := s.files.Get(hash)
		if err != nil {
			return nil, err
		}
		if content.Hash(data) != hash {
			report.Corrupt = append(report.Corrupt, hash)
		}

		has, err := meta.Has(hash)
		if err != nil {
			return nil, vcserrors.IOFailure(err, "checking object index for %s", hash)
		}
		if !has {
			report.Unindexed = append(report.Unindexed, hash)
		}
	}

	err = meta.ForEach(func(hash string, _ []byte) error {
		if !onDisk[hash] {
			report.Missing = append(report.Missing, hash)
		}
		return nil
	})
	if err != nil {
		return nil, vcserrors.IOFailure(err, "reading object index")
	}

	return report, nil
}
