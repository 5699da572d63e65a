package scan

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// stateDir is never scanned.
const stateDir = ".strings"

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// FileDiscovery enumerates source files below a set of roots, filtered by
// glob patterns and ignore rules.
type FileDiscovery struct {
	patterns       []compiledPattern
	ignorePatterns []compiledPattern
}

// NewFileDiscovery compiles the include and ignore patterns. With no
// include patterns every file is a candidate.
func NewFileDiscovery(patterns, ignorePatterns []string) (*FileDiscovery, error) {
	fd := &FileDiscovery{}

	var err error
	if fd.patterns, err = compile(patterns); err != nil {
		return nil, err
	}
	if fd.ignorePatterns, err = compile(ignorePatterns); err != nil {
		return nil, err
	}
	return fd, nil
}

func compile(patterns []string) ([]compiledPattern, error) {
	out := make([]compiledPattern, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		out = append(out, compiledPattern{pattern: pattern, glob: g})
	}
	return out, nil
}

// Discover walks every root and returns the matching files as absolute
// paths, deduplicated and in lexical order. A root may also be a file,
// which is taken as is.
func (fd *FileDiscovery) Discover(roots []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", root, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", root, err)
		}
		if !info.IsDir() {
			add(abs)
			continue
		}

		err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			relPath, err := filepath.Rel(abs, path)
			if err != nil {
				return err
			}
			relPath = filepath.ToSlash(relPath)

			if d.IsDir() {
				if relPath != "." && fd.shouldIgnore(relPath) {
					return filepath.SkipDir
				}
				return nil
			}

			if fd.shouldIgnore(relPath) {
				return nil
			}
			if len(fd.patterns) == 0 || fd.matchesAnyPattern(relPath, fd.patterns) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", root, err)
		}
	}

	sort.Strings(files)
	return files, nil
}

// shouldIgnore checks if a path matches any ignore pattern.
func (fd *FileDiscovery) shouldIgnore(relPath string) bool {
	if relPath == stateDir || strings.HasPrefix(relPath, stateDir+"/") {
		return true
	}

	if fd.matchesAnyPattern(relPath, fd.ignorePatterns) {
		return true
	}

	// "node_modules" should match pattern "node_modules/**"
	return fd.matchesAnyPattern(relPath+"/**", fd.ignorePatterns)
}

// matchesAnyPattern checks if a path matches any of the given patterns.
func (fd *FileDiscovery) matchesAnyPattern(path string, patterns []compiledPattern) bool {
	for _, cp := range patterns {
		if cp.glob.Match(path) {
			return true
		}
	}

	// "**/" also matches zero directories: "**/*.cs" matches "Program.cs"
	// and "**/bin/**" matches "bin/Gen.cs".
	for _, cp := range patterns {
		if !strings.HasPrefix(cp.pattern, "**/") {
			continue
		}
		simplified, err := glob.Compile(strings.TrimPrefix(cp.pattern, "**/"), '/')
		if err == nil && simplified.Match(path) {
			return true
		}
	}

	return false
}

// Matches reports whether path, a file below root, would be discovered by
// a walk of root.
func (fd *FileDiscovery) Matches(root, path string) bool {
	relPath, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	relPath = filepath.ToSlash(relPath)
	if relPath == "." || relPath == ".." || strings.HasPrefix(relPath, "../") {
		return false
	}

	// Walks skip whole directories, so every ancestor counts.
	for i := range len(relPath) {
		if relPath[i] == '/' && fd.shouldIgnore(relPath[:i]) {
			return false
		}
	}
	if fd.shouldIgnore(relPath) {
		return false
	}
	return len(fd.patterns) == 0 || fd.matchesAnyPattern(relPath, fd.patterns)
}

// Ignored reports whether dir, a directory below root, is skipped by walks.
func (fd *FileDiscovery) Ignored(root, dir string) bool {
	relPath, err := filepath.Rel(root, dir)
	if err != nil {
		return false
	}
	relPath = filepath.ToSlash(relPath)
	return relPath != "." && fd.shouldIgnore(relPath)
}
