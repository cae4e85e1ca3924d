package database

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"showsync/models"
)

// setupTestDB creates a new test database in a temp directory.
func setupTestDB(t *testing.T) *DB {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")
	db, err := NewDB(Config{DatabasePath: dbPath})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testPin(id string, checkIn, markSeen uint32) models.Pin {
	duration := 40
	return models.Pin{
		ID:       id,
		Time:     time.Date(2024, 3, 2, 1, 0, 0, 0, time.UTC),
		Duration: &duration,
		Layout: models.PinLayout{
			Type:     "calendarPin",
			Title:    "Some Show | S03E07",
			Body:     "The One",
			TinyIcon: "system://images/MOVIE_EVENT",
		},
		Actions: []models.PinAction{
			{Title: models.ActionCheckIn, Type: "openWatchApp", LaunchCode: checkIn},
			{Title: models.ActionMarkAsSeen, Type: "openWatchApp", LaunchCode: markSeen},
		},
	}
}

func TestNewDB_CreatesDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "subdir", "nested", "test.db")

	db, err := NewDB(Config{DatabasePath: dbPath})
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	defer db.Close()
}

func TestAllPinIDs_Empty(t *testing.T) {
	db := setupTestDB(t)

	ids, err := db.Repository.AllPinIDs()
	if err != nil {
		t.Fatalf("AllPinIDs failed: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("expected empty set, got %d ids", len(ids))
	}
}

func TestUpsertPin_AndList(t *testing.T) {
	db := setupTestDB(t)
	repo := db.Repository

	if err := repo.UpsertPin(testPin("schedule-1", 10, 20), models.PinMetadata{EpisodeID: 1}); err != nil {
		t.Fatalf("UpsertPin failed: %v", err)
	}
	if err := repo.UpsertPin(testPin("schedule-2", 30, 40), models.PinMetadata{EpisodeID: 2}); err != nil {
		t.Fatalf("UpsertPin failed: %v", err)
	}

	ids, err := repo.AllPinIDs()
	if err != nil {
		t.Fatalf("AllPinIDs failed: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 ids, got %d", len(ids))
	}
	if _, ok := ids["schedule-1"]; !ok {
		t.Error("expected schedule-1 in id set")
	}
	if _, ok := ids["schedule-2"]; !ok {
		t.Error("expected schedule-2 in id set")
	}
}

func TestUpsertPin_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := db.Repository

	pin := testPin("schedule-1", 10, 20)
	if err := repo.UpsertPin(pin, models.PinMetadata{EpisodeID: 1}); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}

	// Re-recording the same id must replace, not duplicate.
	pin.Layout.Body = "Updated Title"
	if err := repo.UpsertPin(pin, models.PinMetadata{EpisodeID: 1}); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	ids, err := repo.AllPinIDs()
	if err != nil {
		t.Fatalf("AllPinIDs failed: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("expected 1 id after double upsert, got %d", len(ids))
	}

	stored, _, err := repo.PinForLaunchCode(10)
	if err != nil {
		t.Fatalf("PinForLaunchCode failed: %v", err)
	}
	if stored.Layout.Body != "Updated Title" {
		t.Errorf("expected updated body, got %q", stored.Layout.Body)
	}
}

func TestPinForLaunchCode(t *testing.T) {
	db := setupTestDB(t)
	repo := db.Repository

	if err := repo.UpsertPin(testPin("schedule-1", 10, 20), models.PinMetadata{EpisodeID: 1}); err != nil {
		t.Fatalf("UpsertPin failed: %v", err)
	}
	if err := repo.UpsertPin(testPin("schedule-2", 30, 40), models.PinMetadata{EpisodeID: 2}); err != nil {
		t.Fatalf("UpsertPin failed: %v", err)
	}

	pin, meta, err := repo.PinForLaunchCode(30)
	if err != nil {
		t.Fatalf("PinForLaunchCode failed: %v", err)
	}
	if pin.ID != "schedule-2" {
		t.Errorf("expected schedule-2, got %s", pin.ID)
	}
	if meta.EpisodeID != 2 {
		t.Errorf("expected episode id 2, got %d", meta.EpisodeID)
	}

	// Both actions of the same pin resolve to it.
	pin, _, err = repo.PinForLaunchCode(40)
	if err != nil {
		t.Fatalf("PinForLaunchCode failed: %v", err)
	}
	if pin.ID != "schedule-2" {
		t.Errorf("expected schedule-2 for second action, got %s", pin.ID)
	}
}

func TestPinForLaunchCode_NotFound(t *testing.T) {
	db := setupTestDB(t)

	_, _, err := db.Repository.PinForLaunchCode(12345)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPinForLaunchCode_LargeCode(t *testing.T) {
	db := setupTestDB(t)
	repo := db.Repository

	// Launch codes span the full uint32 range; values above MaxInt32 must
	// survive the round trip through JSON storage.
	const big = uint32(4294967295)
	if err := repo.UpsertPin(testPin("schedule-1", big, 20), models.PinMetadata{EpisodeID: 1}); err != nil {
		t.Fatalf("UpsertPin failed: %v", err)
	}

	pin, _, err := repo.PinForLaunchCode(big)
	if err != nil {
		t.Fatalf("PinForLaunchCode failed: %v", err)
	}
	if pin.Actions[0].LaunchCode != big {
		t.Errorf("expected launch code %d, got %d", big, pin.Actions[0].LaunchCode)
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	db, err := NewDB(Config{DatabasePath: dbPath})
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	if err := db.Repository.UpsertPin(testPin("schedule-1", 10, 20), models.PinMetadata{EpisodeID: 1}); err != nil {
		t.Fatalf("UpsertPin failed: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := NewDB(Config{DatabasePath: dbPath})
	if err != nil {
		t.Fatalf("failed to reopen database: %v", err)
	}
	defer reopened.Close()

	ids, err := reopened.Repository.AllPinIDs()
	if err != nil {
		t.Fatalf("AllPinIDs after reopen failed: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("expected 1 id after reopen, got %d", len(ids))
	}
}
