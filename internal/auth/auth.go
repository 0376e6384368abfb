// Package auth resolves the identity that owns persisted chat sessions.
package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/prateeksi/gupshup/internal/config"
)

// ErrUnauthenticated is returned when no identity is configured.
var ErrUnauthenticated = errors.New("not authenticated")

// Identity is the account that owns sessions in the store.
type Identity struct {
	ID    string
	Email string
}

// Provider resolves the current identity.
type Provider interface {
	Current(ctx context.Context) (Identity, error)
}

// ConfigProvider resolves the identity from the local config file.
type ConfigProvider struct {
	cfg *config.Config
}

// NewConfigProvider creates a provider backed by the given config.
func NewConfigProvider(cfg *config.Config) *ConfigProvider {
	return &ConfigProvider{cfg: cfg}
}

// Current returns the configured identity, or ErrUnauthenticated when
// no user is set.
func (p *ConfigProvider) Current(_ context.Context) (Identity, error) {
	if p.cfg == nil || p.cfg.User == nil || p.cfg.User.ID == "" {
		return Identity{}, ErrUnauthenticated
	}
	return Identity{ID: p.cfg.User.ID, Email: p.cfg.User.Email}, nil
}

// Static is a fixed-identity provider, useful for tests.
type Static struct {
	Identity Identity
	Err      error
}

func (s Static) Current(_ context.Context) (Identity, error) {
	if s.Err != nil {
		return Identity{}, s.Err
	}
	return s.Identity, nil
}

// disposableDomains are email domains rejected at sign-in.
var disposableDomains = []string{
	"tempmail.com",
	"mailinator.com",
	"guerrillamail.com",
	"10minutemail.com",
	"yopmail.com",
}

// IsDisposableEmail reports whether the address uses a known disposable
// email domain. Addresses without a domain part are not disposable.
func IsDisposableEmail(email string) bool {
	_, domain, found := strings.Cut(email, "@")
	if !found {
		return false
	}
	domain = strings.ToLower(domain)
	for _, d := range disposableDomains {
		if domain == d {
			return true
		}
	}
	return false
}
