// Package cmd provides the CLI commands for gupshup.
package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/prateeksi/gupshup/internal/attachment"
	"github.com/prateeksi/gupshup/internal/config"
	"github.com/prateeksi/gupshup/internal/controller"
	"github.com/prateeksi/gupshup/internal/debug"
	"github.com/prateeksi/gupshup/internal/events"
	"github.com/prateeksi/gupshup/internal/message"
	"github.com/prateeksi/gupshup/internal/pubsub"
	"github.com/prateeksi/gupshup/internal/stream"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gupshup",
		Short: "Chat with Gemini from your terminal",
		Long: `Gupshup is a terminal chat client for Gemini models. Conversations
are saved locally, can be resumed, and can be shared read-only via a
public link.

Inside the chat, type a message and press enter to send it. Commands:
  /new           start a new chat
  /list          show saved chats
  /open <n>      open chat n from the list
  /delete <n>    delete chat n from the list
  /share         share the current chat and print its link
  /attach <path> attach a file to the next message
  /quit          exit

Press Ctrl+C while a reply is streaming to stop it; the partial reply
is kept.`,
		RunE: runChat,
	}

	cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newSessionsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func runChat(cmd *cobra.Command, _ []string) error {
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

	// Move any pre-account local history into the store before the
	// first listing.
	if _, err := a.migrator.Run(ctx); err != nil {
		fmt.Printf("Warning: history migration failed: %v\n", err)
	}

	apiKey, err := stream.ResolveAPIKey(cfg.APIKey)
	if err != nil {
		return err
	}

	client, err := stream.NewGemini(ctx, apiKey, cfg.Model)
	if err != nil {
		return err
	}

	ctrl := controller.New(a.sessions, a.messages, client, a.hub, cfg.ShareBaseURL)
	if err := ctrl.RefreshHistory(ctx); err != nil {
		debug.Error("cmd", err, "initial history refresh")
	}

	return replLoop(ctx, ctrl, a.hub)
}

// replLoop is the interactive chat loop. Fragments are printed as they
// arrive via the chat broker; Ctrl+C cancels the in-flight turn.
func replLoop(ctx context.Context, ctrl *controller.Controller, hub *pubsub.Hub) error {
	subCtx, cancelSub := context.WithCancel(ctx)
	defer cancelSub()

	go printFragments(subCtx, hub)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		for range sigCh {
			ctrl.CancelTurn(ctx)
			fmt.Println("\n[stopped]")
		}
	}()

	fmt.Println("gupshup — type a message, or /help for commands")

	var pendingAttachments []message.Attachment
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			quit, err := runCommand(ctx, ctrl, line, &pendingAttachments)
			if err != nil {
				fmt.Printf("error: %v\n", err)
			}
			if quit {
				return nil
			}
			continue
		}

		atts := pendingAttachments
		pendingAttachments = nil

		if err := ctrl.SendTurn(ctx, line, atts); err != nil {
			switch {
			case errors.Is(err, controller.ErrBusy):
				fmt.Println("a reply is still streaming, press Ctrl+C to stop it")
			case errors.Is(err, stream.ErrNoCredential):
				fmt.Println("no API key configured; set api_key or " + stream.EnvAPIKey)
			default:
				fmt.Printf("error: %v\n", err)
			}
			continue
		}
		fmt.Println()
	}
}

func runCommand(ctx context.Context, ctrl *controller.Controller, line string, pending *[]message.Attachment) (quit bool, err error) {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "/quit", "/exit":
		return true, nil

	case "/new":
		ctrl.StartNewChat()
		fmt.Println("started a new chat")

	case "/list":
		printHistory(ctrl)

	case "/open":
		id, err := historyIDByIndex(ctrl, args)
		if err != nil {
			return false, err
		}
		if err := ctrl.LoadSession(ctx, id); err != nil {
			return false, err
		}
		for _, m := range ctrl.Messages() {
			fmt.Printf("[%s] %s\n", m.Role, m.Text)
		}

	case "/delete":
		id, err := historyIDByIndex(ctrl, args)
		if err != nil {
			return false, err
		}
		if err := ctrl.DeleteSession(ctx, id); err != nil {
			return false, err
		}
		fmt.Println("deleted")

	case "/share":
		id := ctrl.CurrentSessionID()
		if id == "" {
			return false, errors.New("no active chat to share")
		}
		url, err := ctrl.ShareSession(ctx, id)
		if err != nil {
			return false, err
		}
		fmt.Println(url)

	case "/attach":
		if len(args) == 0 {
			return false, errors.New("usage: /attach <path>")
		}
		atts, errs := attachment.EncodeAll(args)
		for _, e := range errs {
			fmt.Printf("skipped: %v\n", e)
		}
		*pending = append(*pending, atts...)
		fmt.Printf("%d attachment(s) ready for the next message\n", len(*pending))

	case "/help":
		fmt.Println("/new /list /open <n> /delete <n> /share /attach <path> /quit")

	default:
		return false, fmt.Errorf("unknown command %s", cmd)
	}

	return false, nil
}

func printHistory(ctrl *controller.Controller) {
	history := ctrl.History()
	if len(history) == 0 {
		fmt.Println("no saved chats")
		return
	}
	for i, sess := range history {
		marker := " "
		if sess.ID == ctrl.CurrentSessionID() {
			marker = "*"
		}
		fmt.Printf("%s %2d. %s (%s)\n", marker, i+1, sess.Title,
			sess.LastModified.Format("2006-01-02 15:04"))
	}
}

func historyIDByIndex(ctrl *controller.Controller, args []string) (string, error) {
	if len(args) == 0 {
		return "", errors.New("missing chat number, see /list")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return "", fmt.Errorf("invalid chat number %q", args[0])
	}
	history := ctrl.History()
	if n < 1 || n > len(history) {
		return "", fmt.Errorf("chat number out of range (1-%d)", len(history))
	}
	return history[n-1].ID, nil
}

// printFragments mirrors chat broker events to stdout.
func printFragments(ctx context.Context, hub *pubsub.Hub) {
	for event := range hub.Chat.Subscribe(ctx) {
		switch event.Payload.Type {
		case events.ChatEventFragment:
			fmt.Print(event.Payload.Fragment)
		case events.ChatEventFailed:
			fmt.Printf("\n[error: %v]\n", event.Payload.Error)
		case events.ChatEventCompleted, events.ChatEventCancelled:
			fmt.Println()
		}
	}
}

// setupConfig loads config and honors the --debug flag.
func setupConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	debugMode, _ := cmd.Flags().GetBool("debug")
	if debugMode || (cfg.Options != nil && cfg.Options.Debug) {
		logPath := filepath.Join(cfg.DataDir(), "debug.log")
		if err := debug.Enable(logPath); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to enable debug logging: %v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "Debug: %s\n", logPath)
		}
	}

	return cfg, nil
}
