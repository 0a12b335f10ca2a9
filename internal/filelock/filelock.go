// Package filelock provides advisory file locking and atomic write
// operations so pricing files are never observed half-written, even when
// several repricer processes target the same directory.
package filelock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

// ErrLockTimeout indicates a lock that could not be acquired in time.
var ErrLockTimeout = errors.New("filelock: lock acquisition timed out")

// lockRetryInterval is the poll interval used by LockWithTimeout.
const lockRetryInterval = 10 * time.Millisecond

// LockMetrics captures how a lock acquisition went.
type LockMetrics struct {
	Attempts int
	Wait     time.Duration
	TimedOut bool
}

// LockMonitor receives metrics each time an acquisition finishes.
type LockMonitor func(path string, metrics LockMetrics)

// FileLock wraps a flock file lock for coordinating access to files.
type FileLock struct {
	flock *flock.Flock
	path  string

	mu      sync.Mutex
	monitor LockMonitor
	metrics LockMetrics
}

// NewFileLock creates a new file lock for the given path.
// The lock file will be created at the specified path.
func NewFileLock(path string) *FileLock {
	return &FileLock{
		flock: flock.New(path),
		path:  path,
	}
}

// Lock acquires an exclusive lock, blocking until it is available.
func (fl *FileLock) Lock() error {
	start := time.Now()
	err := fl.flock.Lock()
	fl.record(LockMetrics{Attempts: 1, Wait: time.Since(start)})
	if err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", fl.path, err)
	}
	return nil
}

// TryLock attempts to acquire an exclusive lock without blocking.
// Returns true if the lock was acquired, false if it is held elsewhere.
func (fl *FileLock) TryLock() (bool, error) {
	start := time.Now()
	acquired, err := fl.flock.TryLock()
	fl.record(LockMetrics{Attempts: 1, Wait: time.Since(start)})
	if err != nil {
		return false, fmt.Errorf("failed to try lock on %s: %w", fl.path, err)
	}
	return acquired, nil
}

// LockWithTimeout polls for the lock until it is acquired or the timeout
// elapses. A timeout surfaces as ErrLockTimeout.
func (fl *FileLock) LockWithTimeout(timeout time.Duration) error {
	start := time.Now()
	deadline := start.Add(timeout)
	var metrics LockMetrics

	for {
		metrics.Attempts++
		acquired, err := fl.flock.TryLock()
		if err != nil {
			metrics.Wait = time.Since(start)
			fl.record(metrics)
			return fmt.Errorf("failed to try lock on %s: %w", fl.path, err)
		}
		if acquired {
			metrics.Wait = time.Since(start)
			fl.record(metrics)
			return nil
		}

		if time.Now().After(deadline) {
			metrics.TimedOut = true
			metrics.Wait = time.Since(start)
			fl.record(metrics)
			return fmt.Errorf("%w: %s after %s", ErrLockTimeout, fl.path, timeout)
		}
		time.Sleep(lockRetryInterval)
	}
}

// Unlock releases the lock.
func (fl *FileLock) Unlock() error {
	if err := fl.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", fl.path, err)
	}
	return nil
}

// SetMonitor registers a callback invoked with the metrics of each
// acquisition. Pass nil to remove it.
func (fl *FileLock) SetMonitor(m LockMonitor) {
	fl.mu.Lock()
	fl.monitor = m
	fl.mu.Unlock()
}

// LastMetrics returns the metrics of the most recent acquisition.
func (fl *FileLock) LastMetrics() LockMetrics {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	return fl.metrics
}

func (fl *FileLock) record(m LockMetrics) {
	fl.mu.Lock()
	fl.metrics = m
	monitor := fl.monitor
	fl.mu.Unlock()

	if monitor != nil {
		monitor(fl.path, m)
	}
}

// AtomicWrite writes data to a file using a temp file and rename, so readers
// never see a partial write even if the process dies mid-operation.
//
// The temp file is created in the target's directory; rename is atomic only
// within the same filesystem. If anything fails, the original file remains
// unchanged and the temp file is removed.
func AtomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	defer func() {
		if tempFile != nil {
			tempFile.Close()
			os.Remove(tempPath)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// CreateTemp uses 0600; published files should be world-readable.
	if err := os.Chmod(tempPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}

	// Rename succeeded, nothing to clean up.
	tempFile = nil

	return nil
}
