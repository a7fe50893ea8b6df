// Package ignore parses .gitignore files into ordered match rules and
// answers whether a repo-relative path is ignored.
//
// Rules are evaluated in file order and the last matching rule wins: a
// plain match toggles the ignored state to true, a negated ("!") match
// toggles it back to false. A path matching no rule is not ignored.
package ignore

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/drivestow/drivestow/internal/logging"
	"github.com/drivestow/drivestow/internal/utils"
)

// Rule is a single pattern/negation pair derived from one ignore-file line.
type Rule struct {
	Pattern string
	Negated bool

	anchored bool // leading "/": match from the tree root only
	dirOnly  bool // trailing "/": the directory and everything under it
}

// File is an ignore file bound to a repository root. The in-memory rule
// set is rebuilt in full on every Load and after every AddRule.
type File struct {
	path   string
	rules  []Rule
	logger logging.Logger
}

// NewFile creates a File for the .gitignore at the given tree root and
// loads any existing rules. A missing ignore file yields an empty rule set.
func NewFile(repoPath string, logger logging.Logger) *File {
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	f := &File{
		path:   filepath.Join(repoPath, utils.GitIgnoreFileName),
		logger: logger,
	}
	if err := f.Load(); err != nil {
		logger.Warn("failed to load ignore file", logging.F("path", f.path), logging.F("error", err.Error()))
	}
	return f
}

// Path returns the ignore file path.
func (f *File) Path() string {
	return f.path
}

// Rules returns the current ordered rule set.
func (f *File) Rules() []Rule {
	return f.rules
}

// Load rebuilds the rule set from the backing file.
func (f *File) Load() error {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			f.rules = nil
			return nil
		}
		return fmt.Errorf("failed to read ignore file: %w", err)
	}

	f.rules = Parse(string(data), f.logger)
	return nil
}

// Parse converts ignore-file text into an ordered rule sequence. Blank
// lines and comment lines are skipped; an unparsable pattern is logged
// and dropped without aborting the rest of the file.
func Parse(text string, logger logging.Logger) []Rule {
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}

	var rules []Rule
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		negated := false
		pattern := line
		if strings.HasPrefix(pattern, "!") {
			negated = true
			pattern = pattern[1:]
		}

		rule, err := translate(pattern, negated)
		if err != nil {
			logger.Warn("dropping invalid ignore pattern", logging.F("pattern", pattern), logging.F("error", err.Error()))
			continue
		}
		rules = append(rules, rule)
	}
	return rules
}

// translate converts gitignore syntax into the internal rule shape.
func translate(pattern string, negated bool) (Rule, error) {
	rule := Rule{Negated: negated}

	if strings.HasPrefix(pattern, "/") {
		rule.anchored = true
		pattern = strings.TrimPrefix(pattern, "/")
	}
	if strings.HasSuffix(pattern, "/") {
		rule.dirOnly = true
		pattern = strings.TrimSuffix(pattern, "/")
	}
	if pattern == "" {
		return Rule{}, fmt.Errorf("empty pattern")
	}

	// Reject patterns path.Match cannot evaluate, so matching never
	// fails later.
	if _, err := path.Match(pattern, "probe"); err != nil {
		return Rule{}, fmt.Errorf("bad glob: %w", err)
	}

	rule.Pattern = pattern
	return rule, nil
}

// IsIgnored evaluates every rule against the relative path in file order;
// the state after the last matching rule is authoritative.
func (f *File) IsIgnored(relPath string) bool {
	return Match(f.rules, relPath)
}

// Match evaluates a rule sequence against a relative path.
func Match(rules []Rule, relPath string) bool {
	relPath = normalize(relPath)
	ignored := false
	for _, rule := range rules {
		if rule.matches(relPath) {
			ignored = !rule.Negated
		}
	}
	return ignored
}

// normalize makes the engine separator-agnostic.
func normalize(relPath string) string {
	relPath = filepath.ToSlash(relPath)
	relPath = strings.TrimPrefix(relPath, "./")
	return strings.Trim(relPath, "/")
}

func (r Rule) matches(relPath string) bool {
	if r.anchored {
		return r.matchesAt(relPath)
	}
	// An unanchored pattern matches at any depth: try the full path and
	// every segment-boundary suffix of it.
	rest := relPath
	for {
		if r.matchesAt(rest) {
			return true
		}
		idx := strings.Index(rest, "/")
		if idx < 0 {
			return false
		}
		rest = rest[idx+1:]
	}
}

func (r Rule) matchesAt(relPath string) bool {
	if r.dirOnly {
		// The directory itself and everything under it.
		for prefix := relPath; prefix != ""; prefix = parent(prefix) {
			if ok, _ := path.Match(r.Pattern, prefix); ok {
				return true
			}
		}
		return false
	}
	ok, _ := path.Match(r.Pattern, relPath)
	return ok
}

func parent(p string) string {
	idx := strings.LastIndex(p, "/")
	if idx < 0 {
		return ""
	}
	return p[:idx]
}

// AddRule appends a pattern line (with an optional comment line above it)
// to the ignore file and reloads the rule set. Adding a pattern whose
// literal text already exists is a no-op.
func (f *File) AddRule(pattern, comment string) error {
	var content string
	data, err := os.ReadFile(f.path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to read ignore file: %w", err)
		}
	} else {
		content = string(data)
	}

	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == pattern {
			return nil
		}
	}

	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	if comment != "" {
		content += "# " + comment + "\n"
	}
	content += pattern + "\n"

	if err := os.WriteFile(f.path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write ignore file: %w", err)
	}

	f.logger.Debug("added ignore pattern", logging.F("pattern", pattern))
	return f.Load()
}
