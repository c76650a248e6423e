// Package fileops centralizes filesystem access for the analysis pipeline.
// Everything goes through an afero.Fs so tests run against an in-memory
// filesystem without touching disk.
package fileops

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// Dirs never descended into when walking a project tree.
var skipDirs = map[string]bool{
	"__pycache__":   true,
	"venv":          true,
	".venv":         true,
	"env":           true,
	"node_modules":  true,
	"site-packages": true,
}

// Files wraps an afero filesystem with the operations the pipeline needs.
type Files struct {
	fs afero.Fs
}

// New returns a Files over the given filesystem. A nil fs uses the OS
// filesystem.
func New(fs afero.Fs) *Files {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Files{fs: fs}
}

// Fs exposes the underlying filesystem for callers that need raw access.
func (f *Files) Fs() afero.Fs { return f.fs }

// Read returns a file's content.
func (f *Files) Read(path string) ([]byte, error) {
	data, err := afero.ReadFile(f.fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// Write replaces a file's content, creating it when missing.
func (f *Files) Write(path string, data []byte) error {
	if err := afero.WriteFile(f.fs, path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Exists reports whether the path exists.
func (f *Files) Exists(path string) bool {
	ok, err := afero.Exists(f.fs, path)
	return err == nil && ok
}

// Backup copies a file to a timestamped sibling and returns the backup path.
func (f *Files) Backup(path string) (string, error) {
	data, err := f.Read(path)
	if err != nil {
		return "", err
	}
	backup := fmt.Sprintf("%s.bak.%s", path, time.Now().UTC().Format("20060102T150405"))
	if err := f.Write(backup, data); err != nil {
		return "", err
	}
	return backup, nil
}

// Restore copies a backup back over the original path.
func (f *Files) Restore(backupPath, path string) error {
	data, err := f.Read(backupPath)
	if err != nil {
		return err
	}
	return f.Write(path, data)
}

// PythonFiles walks root and returns every .py file in sorted order, skipping
// virtualenvs, caches and hidden directories.
func (f *Files) PythonFiles(root string) ([]string, error) {
	var out []string
	err := afero.Walk(f.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		name := info.Name()
		if info.IsDir() {
			if path != root && (skipDirs[name] || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(name, ".py") {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	sort.Strings(out)
	return out, nil
}
