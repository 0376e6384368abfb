package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newSessionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List saved chats",
		RunE:  runSessions,
	}
}

func runSessions(cmd *cobra.Command, _ []string) error {
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

	sessions, err := a.sessions.ListSummaries(ctx)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println("no saved chats")
		return nil
	}

	for i, sess := range sessions {
		shared := ""
		if sess.IsShared {
			shared = " [shared]"
		}
		fmt.Printf("%2d. %s (%s)%s\n", i+1, sess.Title,
			sess.LastModified.Format("2006-01-02 15:04"), shared)
	}

	return nil
}
