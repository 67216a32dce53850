// internal/archive/archive.go
package archive

import (
	"archive/tar"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/zstd"

	"vcs/internal/object"
)

// BlobReader fetches stored blob content by hash.
type BlobReader interface {
	Get(hash string) ([]byte, error)
}

// Options configures the export stream
type Options struct {
	// Compression level (1=fastest, 4=best)
	Level int
}

// encoderLevel maps Level onto the zstd speed presets, clamping out-of-range
// values.
func encoderLevel(level int) zstd.EncoderLevel {
	switch {
	case level <= 0:
		return zstd.SpeedDefault
	case level > int(zstd.SpeedBestCompression):
		return zstd.SpeedBestCompression
	}
	return zstd.EncoderLevel(level)
}

func DefaultOptions() Options {
	return Options{Level: 2}
}

// Stats describes a written archive
type Stats struct {
	Files int
	Bytes int64
}

// Write streams every entry of c's tree into w as a zstd-compressed tar.
// Entries are regular files with mode 0644 and the commit's timestamp as
// modification time, in path order.
func Write(w io.Writer, c *object.Commit, blobs BlobReader, opts Options) (*Stats, error) {
	if opts.Level <= 0 {
		opts.Level = DefaultOptions().Level
	}

	modTime, err := object.ParseTime(c.Timestamp)
	if err != nil {
		modTime = time.Unix(0, 0)
	}

	enc, err := zstd.NewWriter(w,
		zstd.WithEncoderLevel(encoderLevel(opts.Level)),
		zstd.WithEncoderConcurrency(1),
	)
	if err != nil {
		return nil, fmt.Errorf("creating encoder: %w", err)
	}

	tw := tar.NewWriter(enc)
	stats := &Stats{}

	for _, p := range c.Tree.Paths() {
		data, err := blobs.Get(c.Tree[p].Hash)
		if err != nil {
			enc.Close()
			return nil, err
		}

		hdr := &tar.Header{
			Typeflag: tar.TypeReg,
			Name:     p,
			Mode:     0o644,
			Size:     int64(len(data)),
			ModTime:  modTime,
			Format:   tar.FormatPAX,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			enc.Close()
			return nil, fmt.Errorf("writing header for %s: %w", p, err)
		}
		if _, err := tw.Write(data); err != nil {
			enc.Close()
			return nil, fmt.Errorf("writing %s: %w", p, err)
		}

		stats.Files++
		stats.Bytes += int64(len(data))
	}

	if err := tw.Close(); err != nil {
		enc.Close()
		return nil, fmt.Errorf("closing tar stream: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("closing zstd stream: %w", err)
	}

	return stats, nil
}

// File is one entry read back from an archive
type File struct {
	Path    string
	Data    []byte
	ModTime time.Time
}

// Read decodes an archive produced by Write.
func Read(r io.Reader) ([]File, error) {
	dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("creating decoder: %w", err)
	}
	defer dec.Close()

	var files []File
	tr := tar.NewReader(dec)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading tar stream: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", hdr.Name, err)
		}
		files = append(files, File{Path: hdr.Name, Data: data, ModTime: hdr.ModTime})
	}

	return files, nil
}
