package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// LockoutDuration is how long sign-in is blocked after a disposable
// email attempt.
const LockoutDuration = 3 * time.Minute

// ErrLockedOut is returned while a lockout is active.
var ErrLockedOut = errors.New("sign-in temporarily locked")

// Lockout persists a sign-in lockout deadline across restarts.
// The file holds a single unix-millisecond timestamp.
type Lockout struct {
	path string
	now  func() time.Time
}

// NewLockout creates a lockout tracker persisting to the given file.
func NewLockout(path string) *Lockout {
	return &Lockout{path: path, now: time.Now}
}

// Check validates an email for sign-in. A disposable domain triggers a
// fresh lockout; an active lockout blocks every attempt until expiry.
func (l *Lockout) Check(email string) error {
	if remaining := l.Remaining(); remaining > 0 {
		return fmt.Errorf("%w for %ds", ErrLockedOut, int(remaining.Seconds()+0.999))
	}

	if IsDisposableEmail(email) {
		deadline := l.now().Add(LockoutDuration)
		if err := l.save(deadline); err != nil {
			return fmt.Errorf("persisting lockout: %w", err)
		}
		return fmt.Errorf("disposable emails are not allowed: %w for %ds",
			ErrLockedOut, int(LockoutDuration.Seconds()))
	}

	return nil
}

// Remaining returns how long the current lockout has left, or zero.
// Expired lockout files are removed on read.
func (l *Lockout) Remaining() time.Duration {
	data, err := os.ReadFile(l.path) //nolint:gosec // Path lives under the app data dir.
	if err != nil {
		return 0
	}

	millis, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		os.Remove(l.path)
		return 0
	}

	deadline := time.UnixMilli(millis)
	remaining := deadline.Sub(l.now())
	if remaining <= 0 {
		os.Remove(l.path)
		return 0
	}
	return remaining
}

func (l *Lockout) save(deadline time.Time) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o750); err != nil {
		return err
	}
	data := strconv.FormatInt(deadline.UnixMilli(), 10)
	return os.WriteFile(l.path, []byte(data), 0o600)
}
