// Package scan walks a repository tree and classifies files by size.
package scan

import (
	"io/fs"
	"path/filepath"

	"github.com/drivestow/drivestow/internal/logging"
	"github.com/drivestow/drivestow/internal/utils"
)

// Candidate is a file whose size exceeds the configured threshold.
type Candidate struct {
	Path string
	Size int64
}

// Scanner finds offload candidates under a repository root.
type Scanner struct {
	logger logging.Logger
}

// New creates a Scanner.
func New(logger logging.Logger) *Scanner {
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	return &Scanner{logger: logger}
}

// FindCandidates walks the tree rooted at root and returns every regular
// file strictly larger than thresholdBytes. The VCS directory is pruned
// and metadata stores are never candidates. Unreadable entries are logged
// and skipped; a single bad file or directory does not abort the scan.
func (s *Scanner) FindCandidates(root string, thresholdBytes int64) ([]Candidate, error) {
	var candidates []Candidate

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			s.logger.Warn("skipping unreadable entry", logging.F("path", path), logging.F("error", walkErr.Error()))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if d.Name() == utils.GitDirName {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}
		if d.Name() == utils.TrackerFileName || d.Name() == utils.RepoConfigFileName {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			s.logger.Warn("skipping file without metadata", logging.F("path", path), logging.F("error", err.Error()))
			return nil
		}

		if info.Size() > thresholdBytes {
			candidates = append(candidates, Candidate{Path: path, Size: info.Size()})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return candidates, nil
}
