package ignore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeIgnore(t *testing.T, dir, content string) *File {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(content), 0644))
	return NewFile(dir, nil)
}

func TestParseSkipsBlanksAndComments(t *testing.T) {
	rules := Parse("# header\n\n*.log\n   \n!important.log\n# trailer\n", nil)

	require.Len(t, rules, 2)
	assert.Equal(t, "*.log", rules[0].Pattern)
	assert.False(t, rules[0].Negated)
	assert.Equal(t, "important.log", rules[1].Pattern)
	assert.True(t, rules[1].Negated)
}

func TestParseDropsInvalidPattern(t *testing.T) {
	rules := Parse("[broken\n*.log\n", nil)

	// The malformed glob is dropped, the rest of the file still parses.
	require.Len(t, rules, 1)
	assert.Equal(t, "*.log", rules[0].Pattern)
}

func TestLastMatchWins(t *testing.T) {
	rules := Parse("*.log\n!important.log\n", nil)

	assert.True(t, Match(rules, "other.log"))
	assert.False(t, Match(rules, "important.log"))
}

func TestLastMatchWinsLongSequence(t *testing.T) {
	rules := Parse("*.bin\n!keep.bin\nkeep.bin\n!keep.bin\n", nil)

	assert.False(t, Match(rules, "keep.bin"))
	assert.True(t, Match(rules, "drop.bin"))
}

func TestNoMatchNotIgnored(t *testing.T) {
	rules := Parse("*.log\n", nil)

	assert.False(t, Match(rules, "readme.md"))
}

func TestAnchoredPattern(t *testing.T) {
	rules := Parse("/build\n", nil)

	assert.True(t, Match(rules, "build"))
	assert.False(t, Match(rules, "src/build"))
}

func TestUnanchoredMatchesAnyDepth(t *testing.T) {
	rules := Parse("*.mp4\n", nil)

	assert.True(t, Match(rules, "video.mp4"))
	assert.True(t, Match(rules, "assets/deep/nested/video.mp4"))
}

func TestUnanchoredMultiSegmentPattern(t *testing.T) {
	rules := Parse("assets/video.mp4\n", nil)

	assert.True(t, Match(rules, "assets/video.mp4"))
	assert.True(t, Match(rules, "media/assets/video.mp4"))
	assert.False(t, Match(rules, "assets/other.mp4"))
}

func TestDirectoryPattern(t *testing.T) {
	rules := Parse("node_modules/\n", nil)

	assert.True(t, Match(rules, "node_modules"))
	assert.True(t, Match(rules, "node_modules/lodash/index.js"))
	assert.True(t, Match(rules, "web/node_modules/react/index.js"))
	assert.False(t, Match(rules, "node_modules.bak"))
}

func TestAnchoredDirectoryPattern(t *testing.T) {
	rules := Parse("/dist/\n", nil)

	assert.True(t, Match(rules, "dist/bundle.js"))
	assert.False(t, Match(rules, "packages/dist/bundle.js"))
}

func TestSeparatorNormalization(t *testing.T) {
	rules := Parse("assets/video.mp4\n", nil)

	assert.True(t, Match(rules, "./assets/video.mp4"))
	assert.True(t, Match(rules, "/assets/video.mp4"))
}

func TestMissingFileYieldsEmptyRuleSet(t *testing.T) {
	f := NewFile(t.TempDir(), nil)

	assert.Empty(t, f.Rules())
	assert.False(t, f.IsIgnored("anything"))
}

func TestAddRule(t *testing.T) {
	dir := t.TempDir()
	f := writeIgnore(t, dir, "# build output\n*.log\n")

	require.NoError(t, f.AddRule("assets/video.mp4", "Managed by drivestow"))

	// The in-memory rule set reflects the append immediately.
	assert.True(t, f.IsIgnored("assets/video.mp4"))

	data, err := os.ReadFile(f.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Managed by drivestow\n")
	assert.Contains(t, string(data), "assets/video.mp4\n")
	assert.True(t, strings.HasPrefix(string(data), "# build output\n*.log\n"), "existing content must be preserved")
}

func TestAddRuleIdempotent(t *testing.T) {
	dir := t.TempDir()
	f := writeIgnore(t, dir, "")

	require.NoError(t, f.AddRule("big.bin", ""))
	require.NoError(t, f.AddRule("big.bin", ""))

	data, err := os.ReadFile(f.Path())
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "big.bin"))
}

func TestAddRuleEnsuresTrailingNewline(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("*.log"), 0644))
	f := NewFile(dir, nil)

	require.NoError(t, f.AddRule("big.bin", ""))

	data, err := os.ReadFile(f.Path())
	require.NoError(t, err)
	assert.Equal(t, "*.log\nbig.bin\n", string(data))
}

func TestAddRuleCreatesFile(t *testing.T) {
	dir := t.TempDir()
	f := NewFile(dir, nil)

	require.NoError(t, f.AddRule("big.bin", ""))

	data, err := os.ReadFile(f.Path())
	require.NoError(t, err)
	assert.Equal(t, "big.bin\n", string(data))
}
