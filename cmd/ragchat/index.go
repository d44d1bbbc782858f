package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/ragchat/config"
	"github.com/spf13/cobra"
)

var (
	keyStyle  = lipgloss.NewStyle().Bold(true)
	dimStyle  = lipgloss.NewStyle().Faint(true)
	labelPad  = lipgloss.NewStyle().Width(11)
	emptyRepo = "(none)"
)

func newIndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Inspect the vector index record",
		Long: `Inspect the vector index record from the [index] table of the config file.

The record names the index an ingestion job seeds from GitHub repositories.
ragchat only reports it.`,
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the index record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.FromCommand(cmd)
			if err != nil {
				return err
			}
			idx := cfg.Index.Record()
			out := cmd.OutOrStdout()
			row := func(k, v string) {
				fmt.Fprintf(out, "%s%s\n", labelPad.Render(keyStyle.Render(k)), v)
			}
			row("index", idx.Index)
			row("host", idx.Host)
			row("namespace", idx.Namespace)
			if len(idx.Repos) == 0 {
				row("repos", dimStyle.Render(emptyRepo))
			}
			for i, r := range idx.Repos {
				label := ""
				if i == 0 {
					label = "repos"
				}
				row(label, r)
			}
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "repos [pattern]",
		Short: "List repositories, optionally filtered by a glob such as 'acme/*'",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromCommand(cmd)
			if err != nil {
				return err
			}
			pattern := ""
			if len(args) == 1 {
				pattern = args[0]
			}
			repos, err := cfg.Index.Record().MatchRepos(pattern)
			if err != nil {
				return err
			}
			for _, r := range repos {
				fmt.Fprintln(cmd.OutOrStdout(), r)
			}
			return nil
		},
	})
	return cmd
}
