package main

import (
	"strings"

	"github.com/spf13/cobra"

	searchuc "github.com/kailas-cloud/zotsearch/internal/usecase/search"
)

func newSearchCmd(opts *rootOptions) *cobra.Command {
	var req searchuc.Request

	cmd := &cobra.Command{
		Use:     "search QUERY",
		Short:   "Run a semantic query against the index",
		Example: `  zotsearch search "graph neural networks" --limit 5 --filter itemType=journalArticle`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Query = strings.Join(args, " ")

			a, err := newApp(cmd.Context(), opts, "")
			if err != nil {
				return err
			}
			defer a.Close()

			resp, err := a.search.Search(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().IntVar(&req.Limit, "limit", searchuc.DefaultLimit, "maximum number of results")
	cmd.Flags().StringToStringVar(&req.Filters, "filter", nil, "metadata filter key=value (repeatable)")
	cmd.Flags().Float64Var(&req.MinScore, "min-score", 0, "drop results below this similarity")
	return cmd
}
