// Package pathutil converts between the absolute paths buffers are keyed by
// and the root-relative paths shown to users.
package pathutil

import (
	"path/filepath"
	"strings"
)

// ToRelative converts an absolute path to relative based on a root directory.
// Falls back to the original path if conversion fails, the path is already
// relative, or it lies outside root.
//
// Examples:
//   - ToRelative("/home/user/project/src/app.ts", "/home/user/project") → "src/app.ts"
//   - ToRelative("/other/location/app.ts", "/home/user/project") → "/other/location/app.ts"
//   - ToRelative("src/app.ts", "/home/user/project") → "src/app.ts"
func ToRelative(absPath, rootDir string) string {
	if absPath == "" || rootDir == "" {
		return absPath
	}
	if !filepath.IsAbs(absPath) {
		return absPath
	}

	absPath = filepath.Clean(absPath)
	rootDir = filepath.Clean(rootDir)

	relPath, err := filepath.Rel(rootDir, absPath)
	if err != nil {
		// Different volumes on Windows
		return absPath
	}

	// Outside the root the absolute path is clearer
	if relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return absPath
	}
	return relPath
}

// Resolve makes path absolute, joining relative paths onto rootDir rather
// than the process working directory. An empty rootDir falls back to
// filepath.Abs.
func Resolve(path, rootDir string) (string, error) {
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	if rootDir == "" {
		return filepath.Abs(path)
	}
	return filepath.Abs(filepath.Join(rootDir, path))
}
