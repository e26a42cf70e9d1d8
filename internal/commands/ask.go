package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PabloGalante/agronova/internal/domain"
	"github.com/PabloGalante/agronova/internal/observability"
	"github.com/PabloGalante/agronova/internal/render"
)

func newAskCmd(deps *Dependencies) *cobra.Command {
	var (
		topicFlag string
		rawFlag   bool
	)

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a single question",
		Long: `Ask one question and print the answer.

The question is read from the arguments, or from stdin when no arguments are given.

Examples:
  agronova ask "Best crops for monsoon season in Kerala"
  agronova ask --topic pest-disease "aphids on tomato"
  echo "NPK ratio for wheat" | agronova ask --raw`,
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")
			if question == "" && !render.IsTerminal() {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				question = string(data)
			}

			svc, err := deps.newService(cmd.Context())
			if err != nil {
				return err
			}

			res, err := svc.Respond(cmd.Context(), question, domain.TopicID(topicFlag), nil)
			if err != nil {
				return err
			}
			if res.Failure != nil {
				observability.Logger().Warn("answer is a fallback message",
					"failure_kind", string(res.Failure.Kind),
				)
			}

			answer := res.AssistantMessage.Content
			if !rawFlag && cmd.OutOrStdout() == os.Stdout {
				answer = render.ForStdout(answer)
			}
			fmt.Fprint(cmd.OutOrStdout(), strings.TrimRight(answer, "\n")+"\n")
			return nil
		},
	}

	cmd.Flags().StringVarP(&topicFlag, "topic", "t", "", "Topic to focus on (see 'agronova topics')")
	cmd.Flags().BoolVar(&rawFlag, "raw", false, "Print markdown without rendering")
	return cmd
}
