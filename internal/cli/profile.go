package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fieldhand/fieldhand/internal/db"
	"github.com/fieldhand/fieldhand/internal/models"
)

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or update user profiles",
	}
	cmd.AddCommand(newProfileShowCmd(), newProfileSetCmd())
	return cmd
}

func newProfileShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [user-id]",
		Short: "Show a user's profile (defaults to the acting user)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runProfileShow,
	}
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	userID := ""
	if len(args) == 1 {
		userID = strings.TrimSpace(args[0])
	}
	if userID == "" {
		userID, err = rt.viewerID()
		if err != nil {
			return err
		}
	}

	profile, err := rt.store.Profile(cmd.Context(), userID)
	if errors.Is(err, db.ErrProfileNotFound) {
		return fmt.Errorf("no profile for %s", userID)
	}
	if err != nil {
		return err
	}

	return writeTable(cmd.OutOrStdout(), []string{"USER", "NAME", "AVATAR"}, [][]string{
		{profile.UserID, profile.DisplayName, profile.AvatarURL},
	})
}

func newProfileSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update the acting user's profile",
		Args:  cobra.NoArgs,
		RunE:  runProfileSet,
	}
	cmd.Flags().String("name", "", "Display name")
	cmd.Flags().String("avatar", "", "Avatar URL")
	return cmd
}

func runProfileSet(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	viewer, err := rt.viewerID()
	if err != nil {
		return err
	}

	name, _ := cmd.Flags().GetString("name")
	avatar, _ := cmd.Flags().GetString("avatar")
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("--name is required")
	}

	profile := &models.Profile{
		UserID:      viewer,
		DisplayName: strings.TrimSpace(name),
		AvatarURL:   strings.TrimSpace(avatar),
		UpdatedAt:   time.Now().UTC(),
	}
	if err := rt.store.UpdateProfile(cmd.Context(), profile); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "profile updated for %s\n", viewer)
	return nil
}
