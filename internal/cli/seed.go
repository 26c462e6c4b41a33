package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fieldhand/fieldhand/internal/models"
)

// seedProfiles are the demo counterparts created by 'fieldhand seed'.
var seedProfiles = []models.Profile{
	{UserID: "farmer-greta", DisplayName: "Greta Olsen"},
	{UserID: "farmer-jon", DisplayName: "Jon Berg"},
	{UserID: "farmer-ida", DisplayName: "Ida Strand"},
}

var seedMessages = map[string][]string{
	"farmer-greta": {
		"Hi! We need two extra hands for the apple harvest next week.",
		"Housing is on site, meals included.",
	},
	"farmer-jon": {
		"Are you available for fence repairs this weekend?",
	},
	"farmer-ida": {
		"The greenhouse shift starts at 6, does that work for you?",
		"Bring warm clothes, mornings are cold.",
		"Let me know by Friday.",
	},
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create demo conversations for local development",
		Args:  cobra.NoArgs,
		RunE:  runSeed,
	}
}

func runSeed(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	viewer, err := rt.viewerID()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	for _, profile := range seedProfiles {
		p := profile
		p.UpdatedAt = time.Now().UTC()
		if err := rt.store.UpdateProfile(ctx, &p); err != nil {
			return fmt.Errorf("failed to seed profile %s: %w", p.UserID, err)
		}
		if err := seedConversation(ctx, rt, viewer, p.UserID); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d conversations for %s\n", len(seedProfiles), viewer)
	return nil
}

func seedConversation(ctx context.Context, rt *runtime, viewer, farmerID string) error {
	conversation, created, err := rt.store.StartConversation(ctx, viewer, farmerID)
	if err != nil {
		return fmt.Errorf("failed to seed conversation with %s: %w", farmerID, err)
	}
	if !created {
		return nil // already seeded
	}

	for _, content := range seedMessages[farmerID] {
		if _, err := rt.store.SendMessage(ctx, conversation.ID, farmerID, content); err != nil {
			return fmt.Errorf("failed to seed message from %s: %w", farmerID, err)
		}
	}
	return nil
}
