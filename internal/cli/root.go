// Package cli implements the fieldhand command line interface.
package cli

import (
	"github.com/spf13/cobra"
)

// Execute runs the fieldhand CLI.
func Execute(version string) error {
	return newRootCmd(version).Execute()
}

func newRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "fieldhand",
		Short:         "Chat between farmers and farm workers",
		Long:          "fieldhand is a chat inbox connecting farmers with farm workers: conversations, live messages, and unread tracking.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}

	cmd.PersistentFlags().String("config", "", "Config file path")
	cmd.PersistentFlags().String("user", "", "Act as this user ID (overrides the saved session)")

	cmd.AddCommand(
		newInboxCmd(),
		newListCmd(),
		newSendCmd(),
		newLoginCmd(),
		newLogoutCmd(),
		newWhoamiCmd(),
		newProfileCmd(),
		newSeedCmd(),
	)

	return cmd
}
