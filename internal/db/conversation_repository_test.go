package db

import (
	"context"
	"errors"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	database, err := OpenInMemory()
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	if err := database.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return database
}

func TestConversationRepositoryGetOrCreateIsSingleton(t *testing.T) {
	ctx := context.Background()
	repo := NewConversationRepository(openTestDB(t))

	conv, created, err := repo.GetOrCreate(ctx, "worker-1", "farmer-1")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if !created {
		t.Fatal("expected first call to create the conversation")
	}
	if conv.ID == "" {
		t.Fatal("GetOrCreate did not assign an ID")
	}

	// Same pair in either order resolves to the same row.
	again, created, err := repo.GetOrCreate(ctx, "farmer-1", "worker-1")
	if err != nil {
		t.Fatalf("GetOrCreate (second): %v", err)
	}
	if created {
		t.Fatal("second call must not create a duplicate")
	}
	if again.ID != conv.ID {
		t.Fatalf("expected conversation %s, got %s", conv.ID, again.ID)
	}
}

func TestConversationRepositoryRejectsSelfConversation(t *testing.T) {
	ctx := context.Background()
	repo := NewConversationRepository(openTestDB(t))

	if _, _, err := repo.GetOrCreate(ctx, "worker-1", "worker-1"); err == nil {
		t.Fatal("expected validation error for identical participants")
	}
}

func TestConversationRepositoryDelete(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	repo := NewConversationRepository(database)
	messages := NewMessageRepository(database)

	conv, _, err := repo.GetOrCreate(ctx, "worker-1", "farmer-1")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if _, err := messages.Insert(ctx, conv.ID, "worker-1", "hello"); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	if err := repo.Delete(ctx, conv.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.Get(ctx, conv.ID); !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("expected ErrConversationNotFound, got %v", err)
	}

	// Messages cascade with the conversation.
	page, err := messages.Page(ctx, conv.ID, 0, 10)
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	if len(page) != 0 {
		t.Fatalf("expected no messages after delete, got %d", len(page))
	}

	if err := repo.Delete(ctx, conv.ID); !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("expected ErrConversationNotFound on double delete, got %v", err)
	}
}

func TestConversationRepositoryListForViewer(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	repo := NewConversationRepository(database)
	messages := NewMessageRepository(database)
	profiles := NewProfileRepository(database)

	if err := profiles.Upsert(ctx, profileFixture("farmer-1", "Greta Olsen")); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := profiles.Upsert(ctx, profileFixture("farmer-2", "Jon Berg")); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	older, _, err := repo.GetOrCreate(ctx, "worker-1", "farmer-1")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	newer, _, err := repo.GetOrCreate(ctx, "worker-1", "farmer-2")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	if _, err := messages.Insert(ctx, older.ID, "farmer-1", "apples this week?"); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if _, err := messages.Insert(ctx, newer.ID, "farmer-2", "need a tractor hand"); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	list, err := repo.ListForViewer(ctx, "worker-1")
	if err != nil {
		t.Fatalf("ListForViewer: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(list))
	}

	// Most recent activity first.
	if list[0].ConversationID != newer.ID {
		t.Fatalf("expected %s first, got %s", newer.ID, list[0].ConversationID)
	}
	if list[0].CounterpartID != "farmer-2" || list[0].CounterpartName != "Jon Berg" {
		t.Fatalf("unexpected counterpart: %+v", list[0])
	}
	if list[0].LastMessage != "need a tractor hand" {
		t.Fatalf("unexpected preview: %q", list[0].LastMessage)
	}
	if list[0].LastMessageAt.IsZero() {
		t.Fatal("expected last message timestamp")
	}

	// A viewer outside both conversations sees nothing.
	empty, err := repo.ListForViewer(ctx, "worker-2")
	if err != nil {
		t.Fatalf("ListForViewer: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty list, got %d", len(empty))
	}
}

func TestConversationRepositoryListIncludesMessagelessConversations(t *testing.T) {
	ctx := context.Background()
	repo := NewConversationRepository(openTestDB(t))

	conv, _, err := repo.GetOrCreate(ctx, "worker-1", "farmer-1")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	list, err := repo.ListForViewer(ctx, "worker-1")
	if err != nil {
		t.Fatalf("ListForViewer: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(list))
	}
	if list[0].ConversationID != conv.ID {
		t.Fatalf("unexpected conversation: %s", list[0].ConversationID)
	}
	if list[0].LastMessage != "" || !list[0].LastMessageAt.IsZero() {
		t.Fatalf("expected empty preview, got %+v", list[0])
	}
	if list[0].ActivityTime() != list[0].CreatedAt {
		t.Fatal("messageless conversation should sort by creation time")
	}
}
