// Package localfs is the file I/O collaborator of the sync core: plain
// UTF-8 script files, one per script, with the byte-order mark stripped on
// read and never re-added on write.
package localfs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Ext is the file extension of every script source file.
const Ext = ".js"

// ScriptPath returns the local path for a script name under root,
// qualified by a category subfolder when category is non-empty.
func ScriptPath(root, category, name string) string {
	if category != "" {
		return filepath.Join(root, category, name+Ext)
	}
	return filepath.Join(root, name+Ext)
}

// ScriptName derives the extension-less script name from a local path.
func ScriptName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ReadScript reads a script source file and strips a leading byte-order
// mark.
func ReadScript(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return strings.TrimPrefix(string(data), "\ufeff"), nil
}

// WriteScript persists content at path, creating parent directories as
// needed. Content is written as-is; the caller has already stripped the
// BOM and it is never re-added.
func WriteScript(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ListScripts returns the script files directly under root and one level
// of category subfolders, in lexical order.
func ListScripts(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// Categories are a single level deep.
			if path != root && filepath.Dir(path) != root {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) == Ext {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", root, err)
	}
	return paths, nil
}
