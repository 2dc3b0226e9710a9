package lock

import "path/filepath"

// FileName is the lock file created inside a target directory.
const FileName = ".cleanart.lock"

// ForTarget returns the lock guarding targetDir.
func ForTarget(targetDir string) *FileLock {
	return NewFileLock(filepath.Join(targetDir, FileName))
}
