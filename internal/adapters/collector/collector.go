// Package collector discovers input workbooks on disk.
package collector

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
)

// Sentinel kinds for collector errors.
var (
	ErrInvalidDir     = errors.New("invalid input directory")
	ErrInvalidPattern = errors.New("invalid file pattern")
)

// Collect returns the regular files in dir whose names match pattern, in
// lexicographic order. No match is an empty result, not an error.
func Collect(ctx context.Context, dir, pattern string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInvalidDir, dir)
	}

	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidPattern, pattern, err)
	}

	files := make([]string, 0, len(matches))
	for _, m := range matches {
		fi, err := os.Stat(m)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", m, err)
		}
		if fi.Mode().IsRegular() {
			files = append(files, m)
		}
	}
	slices.Sort(files)
	return files, nil
}
