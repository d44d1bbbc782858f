package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/ragchat"
	"github.com/fwojciec/ragchat/chatapi"
	"github.com/fwojciec/ragchat/config"
	ragjson "github.com/fwojciec/ragchat/json"
	"github.com/spf13/cobra"
)

const flagAPIKey = "api-key"

func newAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question...>",
		Short: "Ask one question and print the answer",
		Long: `Ask one question and stream the answer to stdout as it arrives.

The stored API key is used unless --api-key is given. Logs go to stderr.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, _ := cmd.Flags().GetString(flagAPIKey)
			return runAsk(cmd, strings.Join(args, " "), key)
		},
	}
	cmd.Flags().String(flagAPIKey, "", "API key (overrides the stored key)")
	return cmd
}

func runAsk(cmd *cobra.Command, question, key string) error {
	cfg, err := config.FromCommand(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cfg.Log, cmd.ErrOrStderr())

	if key == "" {
		key, err = ragchat.LoadCredential(ragjson.NewStore(cfg.StatePath))
		if err != nil {
			return err
		}
	}
	if strings.TrimSpace(key) == "" {
		return errors.New(`no API key: run "ragchat key set <key>" or pass --api-key`)
	}

	client := chatapi.New(chatapi.WithEndpoint(cfg.Endpoint), chatapi.WithLogger(log))
	log.Debug("asking", "endpoint", client.Endpoint(), "bytes", len(question))
	session := ragchat.NewSession(time.Now())
	out := cmd.OutOrStdout()

	err = ragchat.NewExchange(client).Run(cmd.Context(), &session,
		ragchat.Request{Question: question, APIKey: key},
		ragchat.WithEventHandler(printTokens(out)))
	fmt.Fprintln(out)
	if err != nil {
		return fmt.Errorf("ask: %w", err)
	}
	log.Debug("answer complete", "bytes", len(session.Transcript.Messages[1].Content))
	return nil
}
