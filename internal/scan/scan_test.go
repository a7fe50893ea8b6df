package scan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drivestow/drivestow/internal/utils"
)

func writeFileOfSize(t *testing.T, path string, size int64) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(size))
	require.NoError(t, f.Close())
}

func candidatePaths(candidates []Candidate) []string {
	paths := make([]string, 0, len(candidates))
	for _, c := range candidates {
		paths = append(paths, c.Path)
	}
	return paths
}

func TestFindCandidatesThresholdIsStrict(t *testing.T) {
	root := t.TempDir()
	threshold := int64(10 * utils.BytesPerMB)

	exactly := filepath.Join(root, "exactly.bin")
	over := filepath.Join(root, "over.bin")
	under := filepath.Join(root, "under.bin")
	writeFileOfSize(t, exactly, threshold)
	writeFileOfSize(t, over, threshold+1)
	writeFileOfSize(t, under, threshold-1)

	s := New(nil)
	candidates, err := s.FindCandidates(root, threshold)
	require.NoError(t, err)

	paths := candidatePaths(candidates)
	assert.Contains(t, paths, over)
	assert.NotContains(t, paths, exactly)
	assert.NotContains(t, paths, under)
}

func TestFindCandidatesPrunesVCSDirectory(t *testing.T) {
	root := t.TempDir()
	writeFileOfSize(t, filepath.Join(root, ".git", "objects", "pack.bin"), 2048)
	writeFileOfSize(t, filepath.Join(root, "media", "clip.mp4"), 2048)

	s := New(nil)
	candidates, err := s.FindCandidates(root, 1024)
	require.NoError(t, err)

	require.Len(t, candidates, 1)
	assert.Equal(t, filepath.Join(root, "media", "clip.mp4"), candidates[0].Path)
	assert.Equal(t, int64(2048), candidates[0].Size)
}

func TestFindCandidatesSkipsMetadataStores(t *testing.T) {
	root := t.TempDir()
	writeFileOfSize(t, filepath.Join(root, utils.TrackerFileName), 4096)
	writeFileOfSize(t, filepath.Join(root, utils.RepoConfigFileName), 4096)
	writeFileOfSize(t, filepath.Join(root, "big.bin"), 4096)

	s := New(nil)
	candidates, err := s.FindCandidates(root, 1024)
	require.NoError(t, err)

	require.Len(t, candidates, 1)
	assert.Equal(t, filepath.Join(root, "big.bin"), candidates[0].Path)
}

func TestFindCandidatesEmptyTree(t *testing.T) {
	s := New(nil)
	candidates, err := s.FindCandidates(t.TempDir(), 1024)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestFindCandidatesMissingRoot(t *testing.T) {
	s := New(nil)
	_, err := s.FindCandidates(filepath.Join(t.TempDir(), "absent"), 1024)
	assert.Error(t, err)
}
