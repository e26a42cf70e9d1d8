package commands

import (
	"github.com/spf13/cobra"

	"github.com/PabloGalante/agronova/internal/domain"
)

func newChatCmd(deps *Dependencies) *cobra.Command {
	var topicFlag string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat",
		Long: `Start an interactive chat session.

Commands inside the chat:
  /topics          list topics
  /topic <id>      focus on a topic (/topic clear to remove it)
  /sample [n]      list or send a sample question
  /reset           clear the conversation
  /quit            exit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			svc, err := deps.newService(ctx)
			if err != nil {
				return err
			}

			session, err := svc.StartSession(ctx)
			if err != nil {
				return err
			}
			if topicFlag != "" {
				if _, err := svc.SelectTopic(ctx, session.ID, domain.TopicID(topicFlag)); err != nil {
					return err
				}
			}
			defer func() { _ = svc.EndSession(ctx, session.ID) }()

			return deps.RunChat(ctx, svc, session, deps.Config.ModelName)
		},
	}

	cmd.Flags().StringVarP(&topicFlag, "topic", "t", "", "Topic to focus on (see 'agronova topics')")
	return cmd
}
