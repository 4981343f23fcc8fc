package guard

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/dtroode/cohort-migrator/internal/model"
)

// Locker grants exclusive runs of a named operation.
type Locker interface {
	Acquire(ctx context.Context, scriptName string) (model.GuardLock, error)
	Release(ctx context.Context, lock model.GuardLock) error
}

var _ Locker = (*StoreLocker)(nil)

// StoreLocker keeps lock records in the database. Acquisition is a single
// conditional write, so two processes can never both hold a live lock.
// A lock whose TTL has passed is treated as abandoned and may be taken over.
type StoreLocker struct {
	store model.LockStore
	ttl   time.Duration
	now   func() time.Time
	host  string
	pid   int
}

// NewStoreLocker creates a StoreLocker issuing locks that expire after ttl.
func NewStoreLocker(store model.LockStore, ttl time.Duration) *StoreLocker {
	host, _ := os.Hostname()
	return &StoreLocker{
		store: store,
		ttl:   ttl,
		now:   time.Now,
		host:  host,
		pid:   os.Getpid(),
	}
}

// Acquire takes the lock for scriptName or returns model.ErrLockHeld.
func (l *StoreLocker) Acquire(ctx context.Context, scriptName string) (model.GuardLock, error) {
	now := l.now()
	lock := model.GuardLock{
		ScriptName: scriptName,
		LockID:     uuid.New(),
		PID:        l.pid,
		Host:       l.host,
		AcquiredAt: now,
		ExpiresAt:  now.Add(l.ttl),
	}

	ok, err := l.store.TryAcquire(ctx, lock)
	if err != nil {
		return model.GuardLock{}, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !ok {
		holder, err := l.store.Get(ctx, scriptName)
		if err != nil {
			return model.GuardLock{}, model.ErrLockHeld
		}
		return model.GuardLock{}, fmt.Errorf("%w: held by pid %d on %s since %s",
			model.ErrLockHeld, holder.PID, holder.Host, holder.AcquiredAt.Format(time.RFC3339))
	}
	return lock, nil
}

// Release deletes the lock record if it still belongs to lock.
func (l *StoreLocker) Release(ctx context.Context, lock model.GuardLock) error {
	if err := l.store.Release(ctx, lock.ScriptName, lock.LockID); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}

var _ Locker = (*FileLocker)(nil)

// FileLocker holds an exclusive flock on one file per operation. The file is
// removed again on release.
type FileLocker struct {
	dir string

	mu   sync.Mutex
	held map[uuid.UUID]*flock.Flock
	now  func() time.Time
	pid  int
	host string
}

// NewFileLocker creates a FileLocker keeping lock files in dir.
func NewFileLocker(dir string) *FileLocker {
	host, _ := os.Hostname()
	return &FileLocker{
		dir:  dir,
		held: make(map[uuid.UUID]*flock.Flock),
		now:  time.Now,
		pid:  os.Getpid(),
		host: host,
	}
}

// Path returns the lock file used for scriptName.
func (l *FileLocker) Path(scriptName string) string {
	name := strings.Map(func(r rune) rune {
		if r == '/' || r == ':' || r == os.PathSeparator {
			return '_'
		}
		return r
	}, scriptName)
	return filepath.Join(l.dir, name+".lock")
}

// Acquire takes a non-blocking lock on the operation's file.
func (l *FileLocker) Acquire(_ context.Context, scriptName string) (model.GuardLock, error) {
	if err := os.MkdirAll(l.dir, 0o750); err != nil {
		return model.GuardLock{}, fmt.Errorf("failed to create lock directory: %w", err)
	}

	path := l.Path(scriptName)
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return model.GuardLock{}, fmt.Errorf("failed to acquire lock %s: %w", path, err)
	}
	if !ok {
		return model.GuardLock{}, fmt.Errorf("%w: %s", model.ErrLockHeld, path)
	}

	lock := model.GuardLock{
		ScriptName: scriptName,
		LockID:     uuid.New(),
		PID:        l.pid,
		Host:       l.host,
		AcquiredAt: l.now(),
	}
	body := fmt.Sprintf("lock_id=%s\npid=%d\nhost=%s\nacquired_at=%s\n",
		lock.LockID, lock.PID, lock.Host, lock.AcquiredAt.UTC().Format(time.RFC3339))
	if err := os.WriteFile(path, []byte(body), 0o640); err != nil {
		_ = fl.Unlock()
		return model.GuardLock{}, fmt.Errorf("failed to write lock file: %w", err)
	}

	l.mu.Lock()
	l.held[lock.LockID] = fl
	l.mu.Unlock()

	return lock, nil
}

// Release removes the lock file and drops the flock.
func (l *FileLocker) Release(_ context.Context, lock model.GuardLock) error {
	l.mu.Lock()
	fl, ok := l.held[lock.LockID]
	delete(l.held, lock.LockID)
	l.mu.Unlock()

	if !ok {
		return fmt.Errorf("lock %s is not held by this process", lock.LockID)
	}

	var errs []error
	if err := os.Remove(fl.Path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		errs = append(errs, fmt.Errorf("failed to remove lock file: %w", err))
	}
	if err := fl.Unlock(); err != nil {
		errs = append(errs, fmt.Errorf("failed to unlock: %w", err))
	}
	return errors.Join(errs...)
}
