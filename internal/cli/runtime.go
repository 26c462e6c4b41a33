package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fieldhand/fieldhand/internal/config"
	"github.com/fieldhand/fieldhand/internal/db"
	"github.com/fieldhand/fieldhand/internal/logging"
	"github.com/fieldhand/fieldhand/internal/realtime"
)

// runtime bundles everything a command needs: loaded config, the open
// database, the chat store, and the in-process event broker.
type runtime struct {
	cfg      *config.Config
	database *db.DB
	store    *db.Store
	broker   *realtime.Broker
	session  *config.Session
}

// newRuntime loads configuration, opens the database, and resolves the
// acting viewer from --user or the saved session.
func newRuntime(cmd *cobra.Command) (*runtime, error) {
	configFile, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	var err error
	if strings.TrimSpace(configFile) != "" {
		cfg, err = config.LoadFromFile(configFile)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return nil, err
	}

	logging.Init(logging.Config{
		Level:        cfg.Logging.Level,
		Format:       cfg.Logging.Format,
		EnableCaller: cfg.Logging.EnableCaller,
	})

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	database, err := db.Open(cfg.DatabasePath())
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(cmd.Context()); err != nil {
		_ = database.Close()
		return nil, err
	}

	broker := realtime.NewBroker(realtime.WithSubscribeBuffer(cfg.Chat.SubscribeBuffer))

	session, err := loadSession(cmd)
	if err != nil {
		_ = database.Close()
		return nil, err
	}

	return &runtime{
		cfg:      cfg,
		database: database,
		store:    db.NewStore(database, broker),
		broker:   broker,
		session:  session,
	}, nil
}

// viewerID returns the acting user, failing when nobody is signed in.
func (r *runtime) viewerID() (string, error) {
	if r.session == nil || r.session.IsEmpty() {
		return "", fmt.Errorf("no user selected: run 'fieldhand login <user-id>' or pass --user")
	}
	return r.session.UserID, nil
}

// viewerName returns a display name for the acting user, falling back
// to the stored profile and then the raw ID.
func (r *runtime) viewerName(ctx context.Context, userID string) string {
	if r.session != nil && r.session.DisplayName != "" {
		return r.session.DisplayName
	}
	if profile, err := r.store.Profile(ctx, userID); err == nil {
		return profile.DisplayName
	}
	return userID
}

func (r *runtime) Close() {
	if r.broker != nil {
		r.broker.Close()
	}
	if r.database != nil {
		_ = r.database.Close()
	}
}

// loadSession reads the saved session, letting --user override it.
func loadSession(cmd *cobra.Command) (*config.Session, error) {
	userFlag, _ := cmd.Flags().GetString("user")
	userFlag = strings.TrimSpace(userFlag)
	if userFlag != "" {
		return &config.Session{UserID: userFlag}, nil
	}

	store := config.NewSessionStore("")
	session, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return session, nil
}
