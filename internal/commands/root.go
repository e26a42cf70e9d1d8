// Package commands provides the agronova CLI.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// NewRootCmd builds the command tree around deps.
func NewRootCmd(deps *Dependencies) *cobra.Command {
	var modelFlag string

	rootCmd := &cobra.Command{
		Use:   "agronova",
		Short: "AI farming assistant backed by Gemini",
		Long: `agronova answers agricultural questions (crops, pests, weather, soil,
sustainable practices) using a Gemini model.

Examples:
  agronova serve                                   Start the HTTP API
  agronova topics                                  List advice topics
  agronova ask --topic pest-disease "aphids on tomato"
  agronova chat --topic soil-fertilizer            Start interactive chat`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if modelFlag != "" {
				deps.Config.ModelName = modelFlag
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Fprintf(cmd.OutOrStdout(), "agronova %s (built %s)\n", Version, BuildTime)
				return nil
			}
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&modelFlag, "model", "m", "", "Model to use (e.g., gemini-2.5-flash)")
	rootCmd.Flags().BoolP("version", "v", false, "Show version and exit")

	rootCmd.AddCommand(newServeCmd(deps))
	rootCmd.AddCommand(newTopicsCmd(deps))
	rootCmd.AddCommand(newAskCmd(deps))
	rootCmd.AddCommand(newChatCmd(deps))

	return rootCmd
}

// Execute runs the root command
func Execute() {
	deps, err := NewDependencies()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	if err := NewRootCmd(deps).Execute(); err != nil {
		os.Exit(1)
	}
}
