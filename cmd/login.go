package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/prateeksi/gupshup/internal/auth"
	"github.com/prateeksi/gupshup/internal/config"
)

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <email>",
		Short: "Configure the account that owns saved chats",
		Long: `Sets the local identity. Saved chats belong to this identity; any
pre-account local history is migrated on the next chat start.

Disposable email domains are rejected and block further attempts for a
few minutes.`,
		Args: cobra.ExactArgs(1),
		RunE: runLogin,
	}
}

func runLogin(cmd *cobra.Command, args []string) error {
	cfg, err := setupConfig(cmd)
	if err != nil {
		return err
	}

	email := strings.TrimSpace(strings.ToLower(args[0]))
	if !strings.Contains(email, "@") {
		return fmt.Errorf("%q is not an email address", email)
	}

	lockout := auth.NewLockout(filepath.Join(cfg.DataDir(), "auth_lockout"))
	if err := lockout.Check(email); err != nil {
		if errors.Is(err, auth.ErrLockedOut) {
			return err
		}
		return fmt.Errorf("validating email: %w", err)
	}

	// Keep an existing ID so chats stay attached when only the email
	// display value changes.
	userID := uuid.New().String()
	if cfg.User != nil && cfg.User.ID != "" {
		userID = cfg.User.ID
	}

	if err := config.Set("user.id", userID); err != nil {
		return err
	}
	if err := config.Set("user.email", email); err != nil {
		return err
	}

	fmt.Printf("logged in as %s\n", email)
	return nil
}
