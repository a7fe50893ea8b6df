package utils

// Reserved filenames owned by drivestow inside a repository tree.
const (
	// TrackerFileName is the per-directory managed-file metadata store.
	TrackerFileName = ".drivestow"
	// RepoConfigFileName is the repository-level configuration file.
	RepoConfigFileName = ".drivestow.json"
	// GitDirName is the version-control internal directory pruned from
	// every traversal.
	GitDirName = ".git"
	// GitIgnoreFileName is the ignore file at the tree root.
	GitIgnoreFileName = ".gitignore"
)

// Size units (binary)
const (
	// DefaultThresholdMB is the large-file threshold applied when no
	// configuration overrides it.
	DefaultThresholdMB = 10
	// BytesPerMB converts configured megabytes to bytes.
	BytesPerMB = 1024 * 1024
)

// OAuth scopes
const (
	ScopeDrive     = "https://www.googleapis.com/auth/drive"
	ScopeDriveFile = "https://www.googleapis.com/auth/drive.file"
)

// MimeTypeFolder is the Drive folder MIME type.
const MimeTypeFolder = "application/vnd.google-apps.folder"

// Retry tuning
const (
	// MaxRetryDelayMs caps any single backoff delay.
	MaxRetryDelayMs = 30000
)
