package filesystem

import (
	"os"
	"path/filepath"
)

// UserHomeDir returns the current user's home directory, falling back to
// "." when it cannot be determined.
func UserHomeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

// AppDir returns the shopmate data directory (~/.shopmate).
func AppDir() string {
	return filepath.Join(UserHomeDir(), ".shopmate")
}
