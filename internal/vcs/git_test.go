package vcs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMissingRepository(t *testing.T) {
	_, err := Open(t.TempDir(), nil)
	assert.Error(t, err)
}

func TestInitAndOpen(t *testing.T) {
	dir := t.TempDir()

	created, err := Init(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, dir, created.Path())

	opened, err := Open(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, dir, opened.Path())
}

func TestOpenOrInit(t *testing.T) {
	dir := t.TempDir()

	first, err := OpenOrInit(dir, nil)
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := OpenOrInit(dir, nil)
	require.NoError(t, err)
	require.NotNil(t, second)
}

func TestStageAndCommit(t *testing.T) {
	dir := t.TempDir()
	repo, err := Init(dir, nil)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# repo\n"), 0o644))
	require.NoError(t, repo.Stage("README.md"))

	hash, err := repo.Commit("add readme", "Tester", "tester@example.com")
	require.NoError(t, err)
	assert.Len(t, hash, 40)

	clean, err := repo.IsClean()
	require.NoError(t, err)
	assert.True(t, clean)
}

func TestStageAll(t *testing.T) {
	dir := t.TempDir()
	repo, err := Init(dir, nil)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "b.txt"), []byte("b"), 0o644))

	require.NoError(t, repo.StageAll())
	_, err = repo.Commit("add files", "Tester", "tester@example.com")
	require.NoError(t, err)

	clean, err := repo.IsClean()
	require.NoError(t, err)
	assert.True(t, clean)
}

func TestConfigureUser(t *testing.T) {
	dir := t.TempDir()
	repo, err := Init(dir, nil)
	require.NoError(t, err)

	require.NoError(t, repo.ConfigureUser("Tester", "tester@example.com"))

	cfg, err := repo.repo.Config()
	require.NoError(t, err)
	assert.Equal(t, "Tester", cfg.User.Name)
	assert.Equal(t, "tester@example.com", cfg.User.Email)
}

func TestSetRemoteReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	repo, err := Init(dir, nil)
	require.NoError(t, err)

	assert.Empty(t, repo.RemoteURL())

	require.NoError(t, repo.SetRemote("https://github.com/octo/first.git"))
	assert.Equal(t, "https://github.com/octo/first.git", repo.RemoteURL())

	require.NoError(t, repo.SetRemote("https://github.com/octo/second.git"))
	assert.Equal(t, "https://github.com/octo/second.git", repo.RemoteURL())
}
