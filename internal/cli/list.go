package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your conversations",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}
}

func runList(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	viewer, err := rt.viewerID()
	if err != nil {
		return err
	}

	summaries, err := rt.store.ConversationsForViewer(cmd.Context(), viewer)
	if err != nil {
		return err
	}

	if len(summaries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no conversations")
		return nil
	}

	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		name := s.CounterpartName
		if name == "" {
			name = s.CounterpartID
		}
		rows = append(rows, []string{
			s.ConversationID,
			name,
			s.LastMessage,
			s.ActivityTime().Local().Format("2006-01-02 15:04"),
		})
	}
	return writeTable(cmd.OutOrStdout(), []string{"ID", "WITH", "LAST MESSAGE", "WHEN"}, rows)
}
