package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// DBLock keeps two catalog loads from writing the same SQLite file at once.
// The lock lives next to the database as <db>.lock.
type DBLock struct {
	lock *flock.Flock
	path string
}

func NewDBLock(dbPath string) (*DBLock, error) {
	abs, err := GetAbsDBPath(dbPath)
	if err != nil {
		return nil, fmt.Errorf("resolve catalog path: %w", err)
	}
	return &DBLock{lock: flock.New(abs + ".lock"), path: abs + ".lock"}, nil
}

// Lock blocks until the lock is held, logging once when another load has it.
func (l *DBLock) Lock() error {
	ok, err := l.lock.TryLock()
	if err != nil {
		return fmt.Errorf("lock %s: %w", l.path, err)
	}
	if ok {
		return nil
	}
	Log.Warnf("Catalog %s is being loaded by another buildwise process, waiting", l.path)
	if err := l.lock.Lock(); err != nil {
		return fmt.Errorf("lock %s: %w", l.path, err)
	}
	return nil
}

// Unlock is a no-op when the lock is not held.
func (l *DBLock) Unlock() error {
	if err := l.lock.Unlock(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("unlock %s: %w", l.path, err)
	}
	return nil
}

func (l *DBLock) Path() string { return l.path }

// WithDBLock runs fn while holding the lock for dbPath.
func WithDBLock(dbPath string, fn func() error) error {
	l, err := NewDBLock(dbPath)
	if err != nil {
		return err
	}
	if err := l.Lock(); err != nil {
		return err
	}
	defer l.Unlock()
	return fn()
}

// GetAbsDBPath makes dbPath absolute. Empty means
// ~/.config/buildwise/buildwise.sqlite.
func GetAbsDBPath(dbPath string) (string, error) {
	if dbPath != "" {
		return filepath.Abs(dbPath)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "buildwise", "buildwise.sqlite"), nil
}
