package file

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrDirectoryTraversal indicates an attempt to access files outside allowed directories.
var ErrDirectoryTraversal = errors.New("path contains directory traversal")

// ValidatePath cleans a local path and rejects traversal sequences.
func ValidatePath(path string) (string, error) {
	if path == "" {
		return "", errors.New("empty path")
	}

	cleaned := filepath.Clean(path)
	for _, part := range strings.Split(filepath.ToSlash(cleaned), "/") {
		if part == ".." {
			return "", ErrDirectoryTraversal
		}
	}
	return cleaned, nil
}

// SafeName reduces a peer-supplied file name to a bare base name that is
// safe to join onto a download directory.
func SafeName(name string) (string, error) {
	// Peers may use either separator regardless of the local OS.
	name = strings.ReplaceAll(name, "\\", "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	switch name {
	case "", ".", "..":
		return "", ErrDirectoryTraversal
	}
	return name, nil
}
