package cli

import (
	"github.com/spf13/cobra"

	"github.com/fieldhand/fieldhand/internal/chat"
	"github.com/fieldhand/fieldhand/internal/chattui"
	"github.com/fieldhand/fieldhand/internal/logging"
)

func newInboxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inbox",
		Short: "Open the chat inbox TUI",
		Args:  cobra.NoArgs,
		RunE:  runInbox,
	}
	cmd.Flags().String("theme", "", "Color theme (default, high-contrast)")
	return cmd
}

func runInbox(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	viewer, err := rt.viewerID()
	if err != nil {
		return err
	}

	theme, _ := cmd.Flags().GetString("theme")
	if theme == "" {
		theme = rt.cfg.TUI.Theme
	}

	logger := logging.WithUser(viewer)
	logger.Debug().Msg("opening inbox")

	inbox := chat.NewInbox(rt.store, rt.broker, viewer, rt.cfg.Chat.PageSize)
	if err := inbox.Start(cmd.Context()); err != nil {
		return err
	}
	defer inbox.Stop()

	return chattui.Run(inbox, chattui.Config{
		ViewerName: rt.viewerName(cmd.Context(), viewer),
		Theme:      theme,
	})
}
