package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/zotsearch/internal/usecase/indexsync"
)

func newUpdateDBCmd(opts *rootOptions) *cobra.Command {
	var (
		syncOpts   indexsync.Options
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "update-db",
		Short: "Sync the search index with the Zotero library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if syncOpts.Limit < 0 {
				return errors.New("--limit must not be negative")
			}
			a, err := newApp(cmd.Context(), opts, configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.updater.Run(cmd.Context(), syncOpts)
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), report); err != nil {
				return err
			}
			if report.Failed() {
				return errors.New("sync failed: " + report.Error)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&syncOpts.ForceRebuild, "force-rebuild", false, "drop the index and re-embed every item")
	cmd.Flags().IntVar(&syncOpts.Limit, "limit", 0, "index at most N items (0 = all)")
	cmd.Flags().StringVar(&configPath, "config-path", "", "update state file (overrides update.config_path)")
	return cmd
}

func newDBStatusCmd(opts *rootOptions) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "db-status",
		Short: "Show index size and the auto-update schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), opts, configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			st, err := a.updater.Status(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), st)
		},
	}
	cmd.Flags().StringVar(&configPath, "config-path", "", "update state file (overrides update.config_path)")
	return cmd
}
