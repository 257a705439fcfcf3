package util

import (
	"io/fs"
	"os"
)

func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// EnsureDir creates path when it is missing. It fails when path exists but
// is not a directory.
func EnsureDir(path string) error {
	if DirExists(path) {
		return nil
	}
	if _, err := os.Stat(path); err == nil {
		return &fs.PathError{Op: "mkdir", Path: path, Err: fs.ErrExist}
	}
	return os.MkdirAll(path, 0o755)
}
