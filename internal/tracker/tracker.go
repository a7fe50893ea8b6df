// Package tracker owns the per-directory managed-file metadata stores.
//
// Each directory holding offloaded files carries a reserved-name JSON file
// mapping filename to Record. Stores are created lazily on first write and
// are read, mutated and persisted as a whole; the design assumes a single
// writer per directory at a time.
package tracker

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/drivestow/drivestow/internal/logging"
	"github.com/drivestow/drivestow/internal/utils"
)

// Entry pairs an absolute file path with its record, as yielded by
// EnumerateAll.
type Entry struct {
	Path   string
	Record Record
}

// Tracker reads and writes metadata stores under a repository root.
type Tracker struct {
	repoPath string
	logger   logging.Logger
}

// New creates a Tracker rooted at the repository path.
func New(repoPath string, logger logging.Logger) *Tracker {
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	return &Tracker{
		repoPath: repoPath,
		logger:   logger,
	}
}

func (t *Tracker) storePath(dir string) string {
	return filepath.Join(dir, utils.TrackerFileName)
}

// Read loads the metadata store for a directory. A missing store yields an
// empty mapping. Any record failing to parse is replaced with an
// all-default record and a warning; parsing never fails the whole read.
func (t *Tracker) Read(dir string) (map[string]Record, error) {
	storePath := t.storePath(dir)

	data, err := os.ReadFile(storePath)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]Record{}, nil
		}
		return nil, fmt.Errorf("failed to read metadata store: %w", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.logger.Warn("failed to parse metadata store, treating as empty",
			logging.F("path", storePath), logging.F("error", err.Error()))
		return map[string]Record{}, nil
	}

	records := make(map[string]Record, len(raw))
	for filename, value := range raw {
		rec, err := decodeRecord(value)
		if err != nil {
			t.logger.Warn("failed to parse metadata record, using defaults",
				logging.F("path", storePath), logging.F("filename", filename),
				logging.F("error", err.Error()))
			rec = Record{}
		}
		records[filename] = rec
	}

	return records, nil
}

// Write persists the full mapping for a directory. The store is written to
// a temp file and renamed into place so readers never observe a torn file.
func (t *Tracker) Write(dir string, records map[string]Record) error {
	storePath := t.storePath(dir)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata store: %w", err)
	}

	tmp, err := os.CreateTemp(dir, utils.TrackerFileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp metadata store: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write metadata store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close metadata store: %w", err)
	}
	if err := os.Rename(tmpPath, storePath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace metadata store: %w", err)
	}

	t.logger.Debug("updated metadata store", logging.F("path", storePath))
	return nil
}

// Add records a file mapping via a full read-modify-write cycle.
func (t *Tracker) Add(dir, filename string, rec Record) error {
	records, err := t.Read(dir)
	if err != nil {
		return err
	}
	records[filename] = rec
	return t.Write(dir, records)
}

// Remove drops a file mapping. Removing an absent filename is a no-op and
// does not rewrite the store.
func (t *Tracker) Remove(dir, filename string) error {
	records, err := t.Read(dir)
	if err != nil {
		return err
	}
	if _, ok := records[filename]; !ok {
		return nil
	}
	delete(records, filename)
	return t.Write(dir, records)
}

// Get returns the record for a file, if one exists.
func (t *Tracker) Get(dir, filename string) (Record, bool, error) {
	records, err := t.Read(dir)
	if err != nil {
		return Record{}, false, err
	}
	rec, ok := records[filename]
	return rec, ok, nil
}

// IsManaged reports whether a record exists for the file's own path.
func (t *Tracker) IsManaged(path string) (bool, error) {
	dir := filepath.Dir(path)
	_, ok, err := t.Get(dir, filepath.Base(path))
	return ok, err
}

// NeedsUpdate reports whether a file must be (re-)uploaded. A record with
// a non-empty hash is compared against the file's current content hash.
// Absence of a record, or a record with no trustworthy hash, conservatively
// reports true.
func (t *Tracker) NeedsUpdate(path string) (bool, error) {
	dir := filepath.Dir(path)
	rec, ok, err := t.Get(dir, filepath.Base(path))
	if err != nil {
		return false, err
	}
	if !ok || rec.Hash == "" {
		return true, nil
	}

	current, err := HashFile(path)
	if err != nil {
		return false, err
	}
	return current != rec.Hash, nil
}

// EnumerateAll walks the whole tree, reads every metadata store and yields
// every (path, record) pair. This is the authoritative list of what the
// engine believes is offloaded, independent of whether the local file
// exists. The view is recomputed on every call, never cached.
func (t *Tracker) EnumerateAll() ([]Entry, error) {
	var entries []Entry

	err := filepath.WalkDir(t.repoPath, func(current string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if current == t.repoPath {
				return walkErr
			}
			t.logger.Warn("skipping unreadable entry", logging.F("path", current), logging.F("error", walkErr.Error()))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() && d.Name() == utils.GitDirName {
			return filepath.SkipDir
		}
		if d.IsDir() || d.Name() != utils.TrackerFileName {
			return nil
		}

		dir := filepath.Dir(current)
		records, err := t.Read(dir)
		if err != nil {
			t.logger.Warn("skipping unreadable metadata store", logging.F("path", current), logging.F("error", err.Error()))
			return nil
		}

		names := make([]string, 0, len(records))
		for filename := range records {
			names = append(names, filename)
		}
		sort.Strings(names)
		for _, filename := range names {
			entries = append(entries, Entry{
				Path:   filepath.Join(dir, filename),
				Record: records[filename],
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate managed files: %w", err)
	}

	return entries, nil
}
