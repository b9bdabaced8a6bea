package watch

import (
	"errors"
	"path/filepath"
	"strings"
)

// Mode selects how a session scopes filesystem changes.
type Mode int

const (
	// ModePaths watches an explicit set of files and directories.
	ModePaths Mode = iota
	// ModeExtensions watches the working directory recursively and keeps
	// only files whose extension is in the configured set.
	ModeExtensions
)

var errEmptyTarget = errors.New("watch target requires at least one path or extension")

// Target is the resolved watch scope for one session. Exactly one mode is
// active: explicit paths or an extension filter rooted at the working
// directory. Targets are immutable for the session's lifetime.
type Target struct {
	mode       Mode
	paths      []string
	extensions map[string]struct{}
}

// NewPathTarget builds an explicit-path target. Paths are cleaned but not
// required to exist; existence is checked when watching starts.
func NewPathTarget(paths []string) (Target, error) {
	cleaned := make([]string, 0, len(paths))
	for _, path := range paths {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		cleaned = append(cleaned, filepath.Clean(path))
	}
	if len(cleaned) == 0 {
		return Target{}, errEmptyTarget
	}
	return Target{mode: ModePaths, paths: cleaned}, nil
}

// NewExtensionTarget builds an extension-filter target. Leading dots are
// optional: "rs" and ".rs" configure the same filter.
func NewExtensionTarget(extensions []string) (Target, error) {
	set := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		ext = strings.TrimSpace(strings.TrimPrefix(ext, "."))
		if ext == "" {
			continue
		}
		set[ext] = struct{}{}
	}
	if len(set) == 0 {
		return Target{}, errEmptyTarget
	}
	return Target{mode: ModeExtensions, extensions: set}, nil
}

// Mode reports which scoping mode is active.
func (t Target) Mode() Mode {
	return t.mode
}

// Roots returns the filesystem roots the watcher must subscribe to. In
// extension mode that is the working directory.
func (t Target) Roots() []string {
	if t.mode == ModeExtensions {
		return []string{"."}
	}
	return t.paths
}

// Matches reports whether a changed file path is in scope for this target.
// Directory events are the watcher's concern; Matches only judges paths.
func (t Target) Matches(path string) bool {
	if path == "" {
		return false
	}
	path = filepath.Clean(path)

	if t.mode == ModeExtensions {
		ext := strings.TrimPrefix(filepath.Ext(path), ".")
		if ext == "" {
			return false
		}
		_, ok := t.extensions[ext]
		return ok
	}

	for _, root := range t.paths {
		if path == root {
			return true
		}
		if rel, err := filepath.Rel(root, path); err == nil {
			if rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
				return true
			}
		}
	}
	return false
}
