// Package store moves file content between the local tree and Google
// Drive, mirroring the repository's directory layout under a configured
// remote root folder.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"google.golang.org/api/drive/v3"

	"github.com/drivestow/drivestow/internal/api"
	"github.com/drivestow/drivestow/internal/logging"
	"github.com/drivestow/drivestow/internal/utils"
)

// UploadResult describes a completed upload.
type UploadResult struct {
	RemoteID string
	Size     int64
}

// DriveStore uploads and downloads repository files against a Drive
// folder tree rooted at rootFolderID.
type DriveStore struct {
	client       *api.Client
	rootFolderID string
	profile      string
	marker       string
	cache        *FolderCache

	mu       sync.Mutex
	resolved map[string]string // relDir -> folderID, this run only

	logger logging.Logger
}

// NewDriveStore creates a store. The persistent folder cache is optional;
// without it resolutions are remembered for the run only.
func NewDriveStore(client *api.Client, rootFolderID, profile, marker string, cache *FolderCache, logger logging.Logger) *DriveStore {
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	return &DriveStore{
		client:       client,
		rootFolderID: rootFolderID,
		profile:      profile,
		marker:       marker,
		cache:        cache,
		resolved:     make(map[string]string),
		logger:       logger,
	}
}

// Upload streams a local file to Drive under the folder matching the
// file's repository-relative directory, creating missing folders on the
// way. relPath always uses forward slashes.
func (s *DriveStore) Upload(ctx context.Context, localPath, relPath string) (*UploadResult, error) {
	parentID, err := s.ensureFolderPath(ctx, path.Dir(relPath))
	if err != nil {
		return nil, err
	}

	f, err := os.Open(localPath)
	if err != nil {
		return nil, utils.NewCLIError(utils.ErrCodeFileNotFound, fmt.Sprintf("cannot open %s: %v", localPath, err))
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	metadata := &drive.File{
		Name:        path.Base(relPath),
		Parents:     []string{parentID},
		Description: s.marker,
	}

	reqCtx := api.NewRequestContext(s.profile, "files.create")
	s.logger.Info("uploading file",
		logging.F("path", relPath),
		logging.F("size", info.Size()),
	)

	created, err := api.ExecuteWithRetry(ctx, s.client, reqCtx, func() (*drive.File, error) {
		// A retried attempt must replay the content from the start.
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		return s.client.Service().Files.Create(metadata).
			Media(f).
			Fields("id,name,size").
			Context(ctx).
			Do()
	})
	if err != nil {
		return nil, err
	}

	return &UploadResult{RemoteID: created.Id, Size: info.Size()}, nil
}

// Download fetches a remote file's content to localPath, creating parent
// directories as needed, and returns the number of bytes written. Content
// is written to a temp file and renamed into place so an interrupted
// transfer never leaves a truncated file.
func (s *DriveStore) Download(ctx context.Context, remoteID, localPath string) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return 0, err
	}

	reqCtx := api.NewRequestContext(s.profile, "files.get.media")
	s.logger.Info("downloading file",
		logging.F("remoteId", remoteID),
		logging.F("path", localPath),
	)

	written, err := api.ExecuteWithRetry(ctx, s.client, reqCtx, func() (int64, error) {
		httpResp, err := s.client.Service().Files.Get(remoteID).Context(ctx).Download()
		if err != nil {
			return 0, err
		}
		defer httpResp.Body.Close()

		tmp, err := os.CreateTemp(filepath.Dir(localPath), ".download-*")
		if err != nil {
			return 0, err
		}
		tmpPath := tmp.Name()

		n, err := io.Copy(tmp, httpResp.Body)
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
			return 0, err
		}
		if err := tmp.Close(); err != nil {
			_ = os.Remove(tmpPath)
			return 0, err
		}
		if err := os.Rename(tmpPath, localPath); err != nil {
			_ = os.Remove(tmpPath)
			return 0, err
		}
		return n, nil
	})
	return written, err
}

// Exists reports whether the remote file is still present and not trashed.
func (s *DriveStore) Exists(ctx context.Context, remoteID string) (bool, error) {
	reqCtx := api.NewRequestContext(s.profile, "files.get")

	file, err := api.ExecuteWithRetry(ctx, s.client, reqCtx, func() (*drive.File, error) {
		return s.client.Service().Files.Get(remoteID).Fields("id,trashed").Context(ctx).Do()
	})
	if err != nil {
		var cliErr *utils.CLIError
		if errors.As(err, &cliErr) && cliErr.Code == utils.ErrCodeFileNotFound {
			return false, nil
		}
		return false, err
	}
	return !file.Trashed, nil
}

// ensureFolderPath resolves (creating as needed) the folder chain for a
// slash-separated relative directory and returns the deepest folder's ID.
// "." and "" mean the root folder itself.
func (s *DriveStore) ensureFolderPath(ctx context.Context, relDir string) (string, error) {
	relDir = strings.Trim(path.Clean(relDir), "/")
	if relDir == "." || relDir == "" {
		return s.rootFolderID, nil
	}

	s.mu.Lock()
	id, ok := s.resolved[relDir]
	s.mu.Unlock()
	if ok {
		return id, nil
	}

	if s.cache != nil {
		if id, ok, err := s.cache.Get(ctx, s.rootFolderID, relDir); err != nil {
			s.logger.Warn("folder cache read failed", logging.F("error", err.Error()))
		} else if ok {
			s.remember(relDir, id)
			return id, nil
		}
	}

	parentID := s.rootFolderID
	walked := ""
	for _, segment := range strings.Split(relDir, "/") {
		if walked == "" {
			walked = segment
		} else {
			walked = walked + "/" + segment
		}

		id, err := s.ensureFolder(ctx, parentID, segment)
		if err != nil {
			return "", err
		}
		s.remember(walked, id)
		if s.cache != nil {
			if err := s.cache.Put(ctx, s.rootFolderID, walked, id); err != nil {
				s.logger.Warn("folder cache write failed", logging.F("error", err.Error()))
			}
		}
		parentID = id
	}

	return parentID, nil
}

func (s *DriveStore) remember(relDir, folderID string) {
	s.mu.Lock()
	s.resolved[relDir] = folderID
	s.mu.Unlock()
}

// ensureFolder finds a child folder by name under parentID, creating it
// when absent.
func (s *DriveStore) ensureFolder(ctx context.Context, parentID, name string) (string, error) {
	query := fmt.Sprintf("'%s' in parents and name = '%s' and mimeType = '%s' and trashed = false",
		parentID, escapeQueryValue(name), utils.MimeTypeFolder)

	reqCtx := api.NewRequestContext(s.profile, "files.list")
	list, err := api.ExecuteWithRetry(ctx, s.client, reqCtx, func() (*drive.FileList, error) {
		return s.client.Service().Files.List().
			Q(query).
			Fields("files(id,name)").
			PageSize(1).
			Context(ctx).
			Do()
	})
	if err != nil {
		return "", err
	}
	if len(list.Files) > 0 {
		return list.Files[0].Id, nil
	}

	metadata := &drive.File{
		Name:     name,
		MimeType: utils.MimeTypeFolder,
		Parents:  []string{parentID},
	}

	createCtx := api.NewRequestContext(s.profile, "files.create")
	created, err := api.ExecuteWithRetry(ctx, s.client, createCtx, func() (*drive.File, error) {
		return s.client.Service().Files.Create(metadata).Fields("id").Context(ctx).Do()
	})
	if err != nil {
		return "", err
	}

	s.logger.Debug("created remote folder",
		logging.F("name", name),
		logging.F("id", created.Id),
	)
	return created.Id, nil
}

// escapeQueryValue escapes single quotes and backslashes for Drive query
// string literals.
func escapeQueryValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	return strings.ReplaceAll(v, `'`, `\'`)
}
