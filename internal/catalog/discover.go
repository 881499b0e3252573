package catalog

import (
	"fmt"
	"os"
	"strings"
)

// Discover lists the price list files in dir.
// A file qualifies when its lower-cased name contains "price" and it ends in
// ".csv". An empty dir means the current working directory. Names are
// returned in directory-listing (lexical) order.
func Discover(dir string) ([]string, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, &Error{Op: "catalog.discover", Kind: KindFileSystem, Err: fmt.Errorf("%w: %w", ErrDirectory, err)}
		}
		dir = wd
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &Error{
			Op:   "catalog.discover",
			Kind: KindFileSystem,
			Path: dir,
			Err:  fmt.Errorf("%w: %w", ErrDirectory, err),
		}
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if IsPriceFile(entry.Name()) {
			files = append(files, entry.Name())
		}
	}

	return files, nil
}

// IsPriceFile reports whether name looks like a price list.
func IsPriceFile(name string) bool {
	return strings.Contains(strings.ToLower(name), "price") && strings.HasSuffix(name, ".csv")
}
