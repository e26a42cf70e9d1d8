package commands

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/PabloGalante/agronova/internal/app/topics"
	"github.com/PabloGalante/agronova/internal/domain"
)

var (
	topicTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#16a34a"))
	topicIDStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#f59e0b"))
	topicDimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
	topicSampleStyle = lipgloss.NewStyle().Italic(true)
)

func newTopicsCmd(_ *Dependencies) *cobra.Command {
	var samplesFlag bool

	cmd := &cobra.Command{
		Use:   "topics",
		Short: "List advice topics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := topics.Default()
			if err != nil {
				return err
			}
			printTopics(cmd.OutOrStdout(), registry.All(), samplesFlag)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&samplesFlag, "samples", "s", false, "Also show sample questions")
	return cmd
}

func printTopics(w io.Writer, all []domain.Topic, withSamples bool) {
	for _, t := range all {
		fmt.Fprintf(w, "%s %s  %s\n", t.Icon, topicTitleStyle.Render(t.Label), topicIDStyle.Render(string(t.ID)))
		fmt.Fprintf(w, "   %s\n", topicDimStyle.Render(t.Description))
		if withSamples {
			for _, p := range t.SamplePrompts {
				fmt.Fprintf(w, "   • %s\n", topicSampleStyle.Render(p))
			}
		}
		fmt.Fprintln(w)
	}
}
