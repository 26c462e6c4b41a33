package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fieldhand/fieldhand/internal/logging"
)

func newSendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send <user-id> <message>",
		Short: "Send a message to another user",
		Long:  "Send a message, creating the conversation with that user if it does not exist yet.",
		Args:  cobra.ExactArgs(2),
		RunE:  runSend,
	}
	cmd.Flags().Bool("json", false, "Print the created message as JSON")
	return cmd
}

func runSend(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	viewer, err := rt.viewerID()
	if err != nil {
		return err
	}

	other := strings.TrimSpace(args[0])
	content := args[1]
	if other == "" {
		return fmt.Errorf("recipient user ID is required")
	}

	ctx := cmd.Context()
	conversation, _, err := rt.store.StartConversation(ctx, viewer, other)
	if err != nil {
		return err
	}

	message, err := rt.store.SendMessage(ctx, conversation.ID, viewer, content)
	if err != nil {
		return err
	}
	logger := logging.WithConversation(conversation.ID)
	logger.Debug().
		Str("message_id", message.ID).
		Msg("message sent")

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		payload, err := json.MarshalIndent(message, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode message: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(payload))
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), message.ID)
	return nil
}
