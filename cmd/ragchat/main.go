// Command ragchat is a terminal chat client for a retrieval-augmented
// knowledge base endpoint.
//
// Usage:
//
//	ragchat [flags]                 Open the chat UI (same as "ragchat chat")
//	ragchat ask <question...>       Ask one question and stream the answer to stdout
//	ragchat key set|clear|show      Manage the stored API key
//	ragchat index show|repos        Inspect the vector index record
//	ragchat config init|show        Write or print the configuration
//
// Settings come from ~/.ragchat/config.toml, RAGCHAT_* environment variables
// and flags, in increasing order of precedence.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/fwojciec/ragchat/config"
	"github.com/fwojciec/ragchat/logger"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "ragchat: %v\n", err)
		os.Exit(1)
	}
}

const rootLongDesc = `ragchat asks questions of a knowledge base chat endpoint and renders the
streamed answers.

Run without a subcommand to open the chat UI. The API key is entered in the
UI (or with "ragchat key set") and stored in the state file.`

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ragchat",
		Short:         "Chat with your knowledge base",
		Long:          rootLongDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runChat(cmd, "")
		},
	}
	config.AddFlags(cmd)

	cmd.AddCommand(newChatCmd())
	cmd.AddCommand(newAskCmd())
	cmd.AddCommand(newKeyCmd())
	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newConfigCmd())
	return cmd
}

// newLogger builds the logger described by c, writing to w.
func newLogger(c config.LogConfig, w io.Writer) *slog.Logger {
	return logger.New(
		logger.WithDebug(c.Debug),
		logger.WithJSON(c.JSON),
		logger.WithPretty(c.Pretty),
		logger.WithWriter(w),
	)
}
