//go:build !unix

// Package lock serializes cleaner runs on one target directory.
package lock

import "errors"

// ErrLocked is returned by TryLock when another process holds the lock.
var ErrLocked = errors.New("target directory is locked by another cleanart run")

// FileLock is a no-op where flock is unavailable.
type FileLock struct {
	path string
}

// NewFileLock creates a new file lock for the given path.
func NewFileLock(path string) *FileLock {
	return &FileLock{path: path}
}

// Path returns the lock file path.
func (l *FileLock) Path() string { return l.path }

// Lock does nothing.
func (l *FileLock) Lock() error { return nil }

// TryLock does nothing.
func (l *FileLock) TryLock() error { return nil }

// Unlock does nothing.
func (l *FileLock) Unlock() error { return nil }
