package files

import (
	"os"
	"path/filepath"
)

// FindUp walks from dir toward the filesystem root and returns the path of
// the first existing entry among names, or "" if the root is reached
// without a match. Every name is tried in a directory before moving to its
// parent, so the nearest directory always wins even when an ancestor holds
// an earlier-listed name.
func FindUp(names []string, dir string) string {
	for {
		for _, name := range names {
			p := filepath.Join(dir, name)
			if _, err := os.Stat(p); err == nil {
				return p
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
