package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/prateeksi/gupshup/internal/config"
)

func TestConfigProvider_Current(t *testing.T) {
	ctx := context.Background()

	t.Run("configured user", func(t *testing.T) {
		cfg := config.NewConfig()
		cfg.User = &config.User{ID: "u-1", Email: "prateek@example.com"}

		id, err := NewConfigProvider(cfg).Current(ctx)
		if err != nil {
			t.Fatalf("Current() error = %v", err)
		}
		if id.ID != "u-1" || id.Email != "prateek@example.com" {
			t.Errorf("Current() = %+v", id)
		}
	})

	t.Run("no user configured", func(t *testing.T) {
		cfg := config.NewConfig()

		_, err := NewConfigProvider(cfg).Current(ctx)
		if !errors.Is(err, ErrUnauthenticated) {
			t.Errorf("Current() error = %v, want ErrUnauthenticated", err)
		}
	})

	t.Run("nil config", func(t *testing.T) {
		_, err := NewConfigProvider(nil).Current(ctx)
		if !errors.Is(err, ErrUnauthenticated) {
			t.Errorf("Current() error = %v, want ErrUnauthenticated", err)
		}
	})
}

func TestIsDisposableEmail(t *testing.T) {
	cases := []struct {
		email string
		want  bool
	}{
		{"user@mailinator.com", true},
		{"user@MAILINATOR.COM", true},
		{"user@yopmail.com", true},
		{"user@gmail.com", false},
		{"no-at-sign", false},
		{"", false},
	}

	for _, tc := range cases {
		if got := IsDisposableEmail(tc.email); got != tc.want {
			t.Errorf("IsDisposableEmail(%q) = %v, want %v", tc.email, got, tc.want)
		}
	}
}

func TestLockout(t *testing.T) {
	t.Run("clean email passes", func(t *testing.T) {
		l := NewLockout(filepath.Join(t.TempDir(), "lockout"))
		if err := l.Check("user@gmail.com"); err != nil {
			t.Errorf("Check() error = %v", err)
		}
	})

	t.Run("disposable email locks the device", func(t *testing.T) {
		l := NewLockout(filepath.Join(t.TempDir(), "lockout"))

		err := l.Check("user@tempmail.com")
		if !errors.Is(err, ErrLockedOut) {
			t.Fatalf("Check() error = %v, want ErrLockedOut", err)
		}

		// Even a legitimate email is blocked while locked.
		err = l.Check("user@gmail.com")
		if !errors.Is(err, ErrLockedOut) {
			t.Errorf("Check() during lockout error = %v, want ErrLockedOut", err)
		}

		remaining := l.Remaining()
		if remaining <= 0 || remaining > LockoutDuration {
			t.Errorf("Remaining() = %v, want (0, %v]", remaining, LockoutDuration)
		}
	})

	t.Run("lockout survives restart", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "lockout")

		if err := NewLockout(path).Check("user@10minutemail.com"); !errors.Is(err, ErrLockedOut) {
			t.Fatalf("Check() error = %v, want ErrLockedOut", err)
		}

		// A fresh instance reads the persisted deadline.
		if got := NewLockout(path).Remaining(); got <= 0 {
			t.Errorf("Remaining() after restart = %v, want > 0", got)
		}
	})

	t.Run("expired lockout clears", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "lockout")
		l := NewLockout(path)

		if err := l.Check("user@yopmail.com"); !errors.Is(err, ErrLockedOut) {
			t.Fatalf("Check() error = %v, want ErrLockedOut", err)
		}

		l.now = func() time.Time { return time.Now().Add(LockoutDuration + time.Second) }

		if err := l.Check("user@gmail.com"); err != nil {
			t.Errorf("Check() after expiry error = %v", err)
		}
	})
}
