package search

import (
	"fmt"
	"os"
	"path/filepath"
)

// validateRoot implements spec.md §4.6 step 2's "external validator": the
// root must resolve to an existing, readable directory. It returns the
// absolute path a walk should actually use, since the walker itself assumes
// an already-resolved root.
func validateRoot(root string) (string, error) {
	if root == "" {
		return "", fmt.Errorf("root path is empty")
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving root path %s: %w", root, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("stat root path %s: %w", abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("root path %s is not a directory", abs)
	}

	return abs, nil
}
