package main

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jusconsultus/lexsearch/config"
	srv "github.com/jusconsultus/lexsearch/internal/server"
)

func searchCMD() *cobra.Command {
	var cfgPath string
	var filters []string
	var limit int
	var search = &cobra.Command{
		Use:   "search [query]",
		Short: "Single-pass retrieval against the legal corpus",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)
			engine, _, _, err := srv.BuildEngine(cfg)
			if err != nil {
				return err
			}
			result, err := engine.Search(context.Background(), strings.Join(args, " "), filters, limit)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
	search.Flags().StringSliceVar(&filters, "filter", nil, "source category filters (law, jurisprudence, issuance, ...)")
	search.Flags().IntVar(&limit, "limit", 10, "max results")
	search.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return search
}
