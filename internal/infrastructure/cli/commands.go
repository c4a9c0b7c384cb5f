package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"shopmate/internal/app"
	"shopmate/internal/domain"
)

// shutdownGrace bounds how long an in-flight chat turn may hold up
// server shutdown.
const shutdownGrace = 10 * time.Second

func newServeCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API for the browser UI",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() { errCh <- container.Server.Start() }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
			defer cancel()
			return container.Server.Stop(shutdownCtx)
		},
	}
}

func newChatCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "chat [message]",
		Short: "Send one message and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reply, err := container.Chat.HandleMessage(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), reply)
			return nil
		},
	}
}

func newHistoryCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Print the stored conversation",
		RunE: func(cmd *cobra.Command, _ []string) error {
			conv, ok, err := container.Store.Read(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !ok || len(conv.Messages) == 0 {
				fmt.Fprintln(out, "No active conversation.")
				return nil
			}
			for _, msg := range conv.Messages {
				if msg.Role == domain.RoleSystem {
					continue
				}
				fmt.Fprintf(out, "[%s] %s: %s\n",
					msg.Timestamp.Format(time.RFC3339), msg.Role, msg.Content)
			}
			if summary := conv.Summary(); summary != "" {
				fmt.Fprintln(out)
				fmt.Fprintln(out, summary)
			}
			return nil
		},
	}
}

func newClearCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the stored conversation",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := container.Store.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Conversation cleared.")
			return nil
		},
	}
}

func newConfigCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the configuration file location and active settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			cfg := container.Config
			fmt.Fprintf(out, "Config file: %s\n", container.ConfigLoader.Path())
			fmt.Fprintf(out, "Provider:    %s (fallback: %s)\n", cfg.Provider.Active, cfg.Provider.Fallback)
			fmt.Fprintf(out, "Backend:     %s (session %q)\n", cfg.Conversation.Backend, cfg.Conversation.Session)
			fmt.Fprintf(out, "Server:      %s\n", cfg.Server.Addr)
			fmt.Fprintf(out, "Allowlist:   %d domains\n", len(cfg.Allowlist))
			return nil
		},
	}
}
