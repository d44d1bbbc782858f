package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/ragchat"
	"github.com/fwojciec/ragchat/config"
	ragjson "github.com/fwojciec/ragchat/json"
	"github.com/spf13/cobra"
)

func newKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage the stored API key",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "set <key>",
		Short: "Store an API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := strings.TrimSpace(args[0])
			if key == "" {
				return fmt.Errorf("API key must not be blank: %w", ragchat.ErrValidation)
			}
			store, err := keyStore(cmd)
			if err != nil {
				return err
			}
			if err := ragchat.SaveCredential(store, key); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "API key saved to %s\n", store.Path())
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove the stored API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := keyStore(cmd)
			if err != nil {
				return err
			}
			if err := ragchat.SaveCredential(store, ""); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "API key removed")
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the stored API key, masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := keyStore(cmd)
			if err != nil {
				return err
			}
			key, err := ragchat.LoadCredential(store)
			if err != nil {
				return err
			}
			if key == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "no API key stored")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), maskKey(key))
			return nil
		},
	})
	return cmd
}

func keyStore(cmd *cobra.Command) (*ragjson.Store, error) {
	cfg, err := config.FromCommand(cmd)
	if err != nil {
		return nil, err
	}
	return ragjson.NewStore(cfg.StatePath), nil
}

// maskKey keeps the last four characters of keys long enough to stay
// unguessable and masks everything else.
func maskKey(key string) string {
	r := []rune(key)
	if len(r) <= 8 {
		return strings.Repeat("•", len(r))
	}
	return strings.Repeat("•", len(r)-4) + string(r[len(r)-4:])
}
