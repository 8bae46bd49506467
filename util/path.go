package util

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

// FileExists reports whether the named file or directory exists
func FileExists(name string) bool {
	_, err := os.Stat(name)
	return !errors.Is(err, os.ErrNotExist)
}

// MakeDirectory creates dir and its parents with owner-only permissions
func MakeDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		var pathErr *os.PathError
		if errors.As(err, &pathErr) && os.IsExist(err) {
			// most likely a dangling symlink to an unmounted volume
			if link, lerr := os.Readlink(pathErr.Path); lerr == nil {
				err = fmt.Errorf("is symlink %s -> %s mounted?", pathErr.Path, link)
			}
		}
		return fmt.Errorf("failed to create dir %s: %w", dir, err)
	}

	return nil
}

// ExpandHomePath resolves a leading ~ and environment variables in path and
// returns the cleaned absolute form
func ExpandHomePath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("empty home path")
	}

	if strings.HasPrefix(path, "~") {
		homeDir := os.Getenv("HOME")
		if u, err := user.Current(); err == nil {
			homeDir = u.HomeDir
		}
		path = strings.Replace(path, "~", homeDir, 1)
	}

	return filepath.Abs(filepath.Clean(os.ExpandEnv(path)))
}
