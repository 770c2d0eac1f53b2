// Package repo produces a fresh local working copy of a remote repository.
package repo

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
)

// Cloner copies a remote repository to a local path.
type Cloner interface {
	Clone(ctx context.Context, url, dest string) error
}

// Acquirer replaces a stale local copy with a fresh clone.
type Acquirer struct {
	cloner    Cloner
	removeAll func(path string) error
}

// Option configures an Acquirer.
type Option func(*Acquirer)

// WithRemover overrides the function used to delete a stale destination.
func WithRemover(fn func(path string) error) Option {
	return func(a *Acquirer) {
		a.removeAll = fn
	}
}

// NewAcquirer creates an Acquirer that clones through c.
func NewAcquirer(c Cloner, opts ...Option) *Acquirer {
	a := &Acquirer{
		cloner:    c,
		removeAll: os.RemoveAll,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Acquire clones url into dest and returns the path actually used. If dest
// exists and cannot be removed, the first free "<dest>_<n>" is used instead
// and the stale directory is left alone.
func (a *Acquirer) Acquire(ctx context.Context, url, dest string) (string, error) {
	target, err := a.prepare(dest)
	if err != nil {
		return "", err
	}

	if err := a.cloner.Clone(ctx, url, target); err != nil {
		return "", fmt.Errorf("cloning %s: %w", url, err)
	}
	return target, nil
}

// prepare clears dest or picks an alternative name.
func (a *Acquirer) prepare(dest string) (string, error) {
	if _, err := os.Lstat(dest); os.IsNotExist(err) {
		return dest, nil
	} else if err != nil {
		return "", fmt.Errorf("inspecting %s: %w", dest, err)
	}

	if err := clearReadOnly(dest); err != nil {
		log.Printf("WARNING: could not clear read-only flags under %s: %v", dest, err)
	}

	removeErr := a.removeAll(dest)
	if _, statErr := os.Lstat(dest); removeErr == nil && os.IsNotExist(statErr) {
		return dest, nil
	}

	if removeErr != nil {
		log.Printf("WARNING: could not completely remove old directory %s: %v", dest, removeErr)
	} else {
		log.Printf("WARNING: %s still exists after removal", dest)
	}

	alt := nextFreePath(dest)
	log.Printf("using alternative folder: %s", alt)
	return alt, nil
}

// Cleanup removes a clone that is no longer needed.
func (a *Acquirer) Cleanup(path string) error {
	if err := clearReadOnly(path); err != nil && !os.IsNotExist(err) {
		log.Printf("WARNING: could not clear read-only flags under %s: %v", path, err)
	}
	if err := a.removeAll(path); err != nil {
		return fmt.Errorf("removing %s: %w", path, err)
	}
	return nil
}

// clearReadOnly adds owner write permission to everything under root so a
// subsequent removal is not blocked by read-only files. Git object files are
// written read-only, which is the common case this handles.
func clearReadOnly(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		mode := info.Mode().Perm()
		want := mode | 0o200
		if d.IsDir() {
			want |= 0o700
		}
		if want == mode {
			return nil
		}
		return os.Chmod(path, want)
	})
}

// nextFreePath returns base_n for the smallest n >= 1 that does not exist.
func nextFreePath(base string) string {
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s_%d", base, n)
		if _, err := os.Lstat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}
