// Package fsutil reads documents from disk and writes edited content back
// safely: atomic replacement, a sidecar backup of the original, and a check
// that the file was not changed by someone else in the meantime.
package fsutil

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"time"
)

// Sentinel errors for error categorization via errors.Is.
var (
	// ErrNilSnapshot is returned when a nil Snapshot is passed.
	ErrNilSnapshot = errors.New("nil snapshot")

	// ErrNotFound indicates the file does not exist.
	ErrNotFound = errors.New("file not found")

	// ErrIsDirectory indicates the path is a directory, not a file.
	ErrIsDirectory = errors.New("path is a directory")

	// ErrModified indicates the file changed on disk after it was loaded.
	ErrModified = errors.New("file modified since it was loaded")
)

// Snapshot records the state of a file when it was read.
type Snapshot struct {
	Path    string
	Mode    os.FileMode
	ModTime time.Time
	Size    int64
	Hash    [32]byte
}

// Load reads a document and returns its text with a snapshot for later
// modification checks.
func Load(ctx context.Context, path string) (string, *Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, fmt.Errorf("load %s: %w", path, err)
	}

	stat, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return "", nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if stat.IsDir() {
		return "", nil, fmt.Errorf("%w: %s", ErrIsDirectory, path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("read %s: %w", path, err)
	}

	return string(content), &Snapshot{
		Path:    path,
		Mode:    stat.Mode(),
		ModTime: stat.ModTime(),
		Size:    stat.Size(),
		Hash:    sha256.Sum256(content),
	}, nil
}

// Changed reports whether the file differs from the snapshot. Mod time and
// size are compared first; the content hash settles the rest. A deleted
// file counts as changed.
func (s *Snapshot) Changed(ctx context.Context) (bool, error) {
	if s == nil {
		return false, ErrNilSnapshot
	}
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("check modified: %w", err)
	}

	stat, err := os.Stat(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, fmt.Errorf("stat %s: %w", s.Path, err)
	}
	if !stat.ModTime().Equal(s.ModTime) || stat.Size() != s.Size {
		return true, nil
	}

	content, err := os.ReadFile(s.Path)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", s.Path, err)
	}
	return sha256.Sum256(content) != s.Hash, nil
}

// SaveOptions controls Save.
type SaveOptions struct {
	// Backup keeps the original content in a sidecar file (see BackupPath).
	// An existing backup is never overwritten.
	Backup bool

	// Force writes even when the file changed since the snapshot.
	Force bool
}

// Save replaces the file behind snap with text and returns the new snapshot.
func Save(ctx context.Context, snap *Snapshot, text string, opts SaveOptions) (*Snapshot, error) {
	if snap == nil {
		return nil, ErrNilSnapshot
	}

	if !opts.Force {
		changed, err := snap.Changed(ctx)
		if err != nil {
			return nil, err
		}
		if changed {
			return nil, fmt.Errorf("%w: %s", ErrModified, snap.Path)
		}
	}

	if opts.Backup {
		if _, err := CreateBackup(ctx, snap.Path); err != nil {
			return nil, err
		}
	}

	if err := WriteAtomic(ctx, snap.Path, []byte(text), snap.Mode.Perm()); err != nil {
		return nil, err
	}

	_, fresh, err := Load(ctx, snap.Path)
	if err != nil {
		return nil, err
	}
	return fresh, nil
}
