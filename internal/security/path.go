// Package security confines caller supplied paths and names to configured
// directories.
package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrOutsideRoot is returned for a path that resolves outside the root
	ErrOutsideRoot = errors.New("path is outside the allowed directory")
	// ErrInvalidName is returned for a file name that is not a plain name
	ErrInvalidName = errors.New("invalid file name")
)

// PathValidator resolves paths against a root directory
type PathValidator struct {
	root string
}

// NewPathValidator creates a validator rooted at dir
func NewPathValidator(dir string) (*PathValidator, error) {
	if dir == "" {
		return nil, fmt.Errorf("root directory cannot be empty")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root directory: %w", err)
	}
	return &PathValidator{root: filepath.Clean(abs)}, nil
}

// Root returns the absolute root directory
func (v *PathValidator) Root() string {
	return v.root
}

// Resolve returns the absolute form of path, which may be relative to the
// root. Symlinks are followed, so a link pointing out of the root is refused.
// The target does not need to exist; its deepest existing ancestor is checked.
func (v *PathValidator) Resolve(path string) (string, error) {
	path = strings.ReplaceAll(path, "\x00", "")
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(v.root, path)
	}
	clean := filepath.Clean(path)

	if !within(clean, v.root) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}

	realRoot := v.root
	if resolved, err := filepath.EvalSymlinks(v.root); err == nil {
		realRoot = resolved
	}

	real, err := realPath(clean)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	if !within(real, realRoot) && !within(real, v.root) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}

	return clean, nil
}

// ResolveFile is Resolve for an existing regular file
func (v *PathValidator) ResolveFile(path string) (string, error) {
	resolved, err := v.Resolve(path)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", fmt.Errorf("cannot access file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("not a regular file: %s", path)
	}
	return resolved, nil
}

// Join returns the path of a plain file name inside the root. Names holding
// separators, dot segments or a different extension are refused.
func (v *PathValidator) Join(name, ext string) (string, error) {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`+"\x00") || filepath.Base(name) != name {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if ext != "" && !strings.EqualFold(filepath.Ext(name), ext) {
		return "", fmt.Errorf("%w: %q must end in %s", ErrInvalidName, name, ext)
	}
	return filepath.Join(v.root, name), nil
}

// realPath follows symlinks in the deepest existing ancestor of path and
// re-attaches the missing tail
func realPath(path string) (string, error) {
	var tail []string
	current := path
	for {
		if _, err := os.Lstat(current); err == nil {
			resolved, err := filepath.EvalSymlinks(current)
			if err != nil {
				return "", err
			}
			for i := len(tail) - 1; i >= 0; i-- {
				resolved = filepath.Join(resolved, tail[i])
			}
			return resolved, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			return path, nil
		}
		tail = append(tail, filepath.Base(current))
		current = parent
	}
}

func within(path, dir string) bool {
	if path == dir {
		return true
	}
	if !strings.HasSuffix(dir, string(filepath.Separator)) {
		dir += string(filepath.Separator)
	}
	return strings.HasPrefix(path, dir)
}
