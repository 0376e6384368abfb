package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prateeksi/gupshup/internal/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve shared chats over HTTP",
		Long: `Starts the read-only share server. Shared chats resolve at
GET /chats/<shareCode>; everything else is a 404.`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "Listen address (overrides config)")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := setupConfig(cmd)
	if err != nil {
		return err
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.close()

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = cfg.ListenAddr
	}

	app := server.New(a.sessions)
	fmt.Printf("serving shared chats on %s\n", addr)
	return app.Listen(addr)
}
