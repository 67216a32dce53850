package repository

import (
	"io"

	"go.uber.org/zap"

	"vcs/internal/archive"
	"vcs/internal/safe"
)

// Archive writes the tree of ref as a zstd-compressed tar stream to w.
func (r *Repository) Archive(ref string, w io.Writer) (*archive.Stats, error) {
	s, err := r.begin("archive")
	if err != nil {
		return nil, err
	}
	defer s.close()

	c, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}

	stats, err := archive.Write(w, c, s.objects, archive.DefaultOptions())
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Wrote archive", zap.String("commit", c.Hash), zap.Int("files", stats.Files))
	return stats, nil
}

// Verify re-hashes every stored object and cross-checks the object index.
func (r *Repository) Verify() (*safe.Report, error) {
	s, err := r.begin("verify")
	if err != nil {
		return nil, err
	}
	defer s.close()

	report, err := s.objects.Verify()
	if err != nil {
		return nil, err
	}
	if !report.OK() {
		s.logger.Warn("Object store damaged",
			zap.Int("missing", len(report.Missing)),
			zap.Int("corrupt", len(report.Corrupt)))
	}
	return report, nil
}

// Stats summarizes the object index.
func (r *Repository) Stats() (*safe.Stats, error) {
	s, err := r.begin("stats")
	if err != nil {
		return nil, err
	}
	defer s.close()

	return s.objects.Stats()
}
