package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mohammad-safakhou/scout/agents/researcher"
	"github.com/mohammad-safakhou/scout/config"
	"github.com/mohammad-safakhou/scout/internal/app"
	srv "github.com/mohammad-safakhou/scout/internal/server"
)

func main() {
	root := &cobra.Command{
		Use:   "scout",
		Short: "Bounded-cost web research: one question in, one cited answer out",
	}
	root.AddCommand(researchCMD(), serveCMD())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func researchCMD() *cobra.Command {
	var cfgPath string
	var mode string
	cmd := &cobra.Command{
		Use:   "research [question]",
		Short: "Run one research query and print the cited answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			if err := cfg.LLM.Validate(); err != nil {
				return err
			}
			agent, err := app.BuildAgent(cfg)
			if err != nil {
				return err
			}
			prov, err := app.BuildProvider(cfg)
			if err != nil {
				return err
			}

			answer := agent.Research(cmd.Context(), strings.Join(args, " "), prov, researcher.Options{
				Mode:                mode,
				CacheTTL:            cfg.Research.CacheTTL,
				DefaultSources:      cfg.Research.DefaultSources,
				DefaultSnippetChars: cfg.Research.DefaultSnippetChars,
			})
			fmt.Println(answer)
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "config file (default is ./config)")
	cmd.Flags().StringVarP(&mode, "mode", "m", "default", "research mode: quick, default, or deep")
	return cmd
}

func serveCMD() *cobra.Command {
	var cfgPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP research API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			if err := cfg.LLM.Validate(); err != nil {
				return err
			}
			return srv.Run(cfg)
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "config file (default is ./config)")
	return cmd
}
