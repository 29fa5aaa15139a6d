// Package fileutils provides common file operations used throughout the application.
package fileutils

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
)

// PlaceholderName replaces a file name that sanitizes to nothing.
const PlaceholderName = "SIN_NOMBRE"

// FileExists checks if a file exists and is not a directory
func FileExists(filePath string) bool {
	info, err := os.Stat(filePath)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirectoryExists checks if a directory exists
func DirectoryExists(dirPath string) bool {
	info, err := os.Stat(dirPath)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// EnsureDirectoryExists creates a directory if it doesn't exist
func EnsureDirectoryExists(dirPath string) error {
	if !DirectoryExists(dirPath) {
		if err := os.MkdirAll(dirPath, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	return nil
}

// WriteFileAtomic writes data to "<filePath>.tmp" and renames it over
// filePath, creating parent directories if needed. Readers never observe a
// partially written file.
func WriteFileAtomic(filePath string, data []byte, perm os.FileMode) error {
	if err := EnsureDirectoryExists(filepath.Dir(filePath)); err != nil {
		return err
	}

	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmp, filePath); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace file: %w", err)
	}
	return nil
}

// MoveFile renames src to dst, replacing dst when it already exists.
func MoveFile(src, dst string) error {
	if src == dst {
		return nil
	}
	if err := EnsureDirectoryExists(filepath.Dir(dst)); err != nil {
		return err
	}
	if FileExists(dst) {
		if err := os.Remove(dst); err != nil {
			return fmt.Errorf("failed to remove existing file: %w", err)
		}
	}
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("failed to move file: %w", err)
	}
	return nil
}

// ListFilesWithExtension returns the files directly inside dirPath whose
// extension matches (case-insensitively), sorted by name.
func ListFilesWithExtension(dirPath, extension string) ([]string, error) {
	if !DirectoryExists(dirPath) {
		return nil, fmt.Errorf("directory does not exist: %s", dirPath)
	}

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), extension) {
			files = append(files, filepath.Join(dirPath, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// SanitizeFileName replaces every character that is not allowed in a file
// name on common filesystems with '_', trims the result and falls back to
// PlaceholderName when nothing is left.
func SanitizeFileName(name string) string {
	if strings.TrimSpace(name) == "" {
		return PlaceholderName
	}

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if isInvalidFileNameRune(r) {
			b.WriteRune('_')
			continue
		}
		b.WriteRune(r)
	}

	cleaned := strings.TrimSpace(b.String())
	if cleaned == "" || cleaned == "." || cleaned == ".." {
		return PlaceholderName
	}
	return cleaned
}

func isInvalidFileNameRune(r rune) bool {
	switch r {
	case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
		return true
	}
	return unicode.IsControl(r)
}
