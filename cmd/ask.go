package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jusconsultus/lexsearch/config"
	"github.com/jusconsultus/lexsearch/internal/deepsearch"
	srv "github.com/jusconsultus/lexsearch/internal/server"
)

func askCMD() *cobra.Command {
	var cfgPath string
	var mode string
	var chatMode string
	var filters []string
	var deepThink bool
	var showSteps bool
	var ask = &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer a legal question with deep search",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)
			engine, _, _, err := srv.BuildEngine(cfg)
			if err != nil {
				return err
			}
			answer, err := engine.DeepAnswer(context.Background(), strings.Join(args, " "), deepsearch.Options{
				Mode:          mode,
				ChatMode:      chatMode,
				SourceFilters: filters,
				DeepThink:     deepThink,
			})
			if err != nil {
				return err
			}
			if showSteps {
				for _, s := range answer.Steps {
					fmt.Printf("[%s] %s (%s)\n", s.Type, s.Label, s.CompletedAt.Sub(s.StartedAt).Round(time.Millisecond))
				}
				fmt.Println()
			}
			fmt.Println(answer.Answer)
			if len(answer.Sources) > 0 {
				fmt.Printf("\nSources (%d of %d scanned):\n", len(answer.Sources), answer.TotalSourcesScanned)
				for i, r := range answer.Sources {
					fmt.Printf("  %d. %s [%s] score=%.1f\n", i+1, r.Title, r.Provenance, r.Score)
				}
			}
			if answer.Fallback {
				fmt.Println("\n(answer generated without the completion provider)")
			}
			return nil
		},
	}
	ask.Flags().StringVar(&mode, "mode", "standard_v2", "response style (standard_v2, concise, professional, educational, simple_english)")
	ask.Flags().StringVar(&chatMode, "chat-mode", "", "task framing (find, explain, draft, digest, analyze)")
	ask.Flags().StringSliceVar(&filters, "filter", nil, "source category filters")
	ask.Flags().BoolVar(&deepThink, "deep-think", false, "extended reasoning mode")
	ask.Flags().BoolVar(&showSteps, "steps", false, "print pipeline progress steps")
	ask.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return ask
}
