package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Move local chat history into the store",
		Long: `Copies chats saved before an account was configured into the
database, then removes the local history file. Runs automatically on
chat start; this command forces a run.`,
		RunE: runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := setupConfig(cmd)
	if err != nil {
		return err
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	ok, err := a.migrator.Run(ctx)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("nothing migrated: configure a user first")
		return nil
	}

	fmt.Println("migration complete")
	return nil
}
