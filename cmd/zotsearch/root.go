package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/zotsearch/internal/config"
)

// rootOptions are the flags shared by every subcommand.
type rootOptions struct {
	configFile string
	env        string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "zotsearch",
		Short:         "Semantic search over a Zotero library",
		Long:          "zotsearch indexes Zotero items as embeddings in Redis/Valkey and answers semantic queries.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "",
		"path to the YAML config (default: config/<ENV>.yaml)")
	cmd.PersistentFlags().StringVar(&opts.env, "env", config.GetEnv(),
		"environment name: prod, local, dev, docker, test")

	cmd.AddCommand(
		newServeCmd(opts),
		newUpdateDBCmd(opts),
		newDBStatusCmd(opts),
		newSearchCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

func (o *rootOptions) loadConfig() (config.Config, error) {
	if o.configFile != "" {
		return config.LoadFile(o.configFile)
	}
	return config.Load(o.env)
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
