package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mmynk/circles/internal/drafts"
	"github.com/mmynk/circles/internal/models"
	"github.com/mmynk/circles/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	// Create temp directory for test database
	tempDir, err := os.MkdirTemp("", "circles-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func bookClub() *models.Circle {
	circle := models.NewCircle()
	circle.Name = "Book Club"
	circle.Description = "Monthly reads"
	circle.IsFiltered = true
	circle.JoinQuestions = []models.Question{{
		ID: "q1", Question: "Favorite genre?", Order: 1,
		Answers: []models.Answer{
			{ID: "q1a1", Text: "Fiction", Order: 1, IsCorrect: true},
			{ID: "q1a2", Text: "Non-fiction", Order: 2},
			{ID: "q1a3", Text: "Poetry", Order: 3},
			{ID: "q1a4", Text: "Drama", Order: 4},
		},
	}}
	return &circle
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateCircle generates ID and timestamp", func(t *testing.T) {
		circle := bookClub()
		if err := store.CreateCircle(ctx, circle); err != nil {
			t.Fatalf("CreateCircle failed: %v", err)
		}

		if circle.ID == "" {
			t.Error("Expected circle ID to be generated")
		}
		if circle.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}
	})

	t.Run("GetCircle retrieves complete circle", func(t *testing.T) {
		original := bookClub()
		original.Visibility = models.VisibilityPrivate
		original.BannerImage = "data:image/png;base64,AAAA"
		original.CreatedBy = "user-1"
		if err := store.CreateCircle(ctx, original); err != nil {
			t.Fatalf("CreateCircle failed: %v", err)
		}

		retrieved, err := store.GetCircle(ctx, original.ID)
		if err != nil {
			t.Fatalf("GetCircle failed: %v", err)
		}

		if retrieved.Name != original.Name {
			t.Errorf("Name mismatch: got %s, want %s", retrieved.Name, original.Name)
		}
		if retrieved.Visibility != models.VisibilityPrivate {
			t.Errorf("Visibility mismatch: got %s", retrieved.Visibility)
		}
		if !retrieved.IsFiltered {
			t.Error("Expected IsFiltered to round trip")
		}
		if retrieved.BannerImage != original.BannerImage {
			t.Errorf("BannerImage mismatch: got %s", retrieved.BannerImage)
		}
		if retrieved.MemberCount != 1 || retrieved.IsOfficial || retrieved.AutoJoin {
			t.Errorf("Unexpected defaults: %+v", retrieved)
		}
		if retrieved.CreatedBy != "user-1" {
			t.Errorf("CreatedBy mismatch: got %s", retrieved.CreatedBy)
		}
		if len(retrieved.JoinQuestions) != 1 || len(retrieved.JoinQuestions[0].Answers) != 4 {
			t.Fatalf("JoinQuestions mismatch: %+v", retrieved.JoinQuestions)
		}
		if !retrieved.JoinQuestions[0].Answers[0].IsCorrect {
			t.Error("Expected first answer to stay correct")
		}
		if err := retrieved.CheckInvariants(); err != nil {
			t.Errorf("Retrieved circle violates invariants: %v", err)
		}
	})

	t.Run("GetCircle returns ErrNotFound for nonexistent circle", func(t *testing.T) {
		_, err := store.GetCircle(ctx, "nonexistent-id")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("UpdateCircle replaces editable fields", func(t *testing.T) {
		circle := bookClub()
		if err := store.CreateCircle(ctx, circle); err != nil {
			t.Fatalf("CreateCircle failed: %v", err)
		}

		circle.Name = "Poetry Club"
		circle.IsFiltered = false
		circle.JoinQuestions = []models.Question{}
		circle.MemberCount = 99 // not editable
		if err := store.UpdateCircle(ctx, circle); err != nil {
			t.Fatalf("UpdateCircle failed: %v", err)
		}

		updated, err := store.GetCircle(ctx, circle.ID)
		if err != nil {
			t.Fatalf("GetCircle failed: %v", err)
		}
		if updated.Name != "Poetry Club" {
			t.Errorf("Name mismatch: got %s", updated.Name)
		}
		if updated.IsFiltered || len(updated.JoinQuestions) != 0 {
			t.Errorf("Expected unfiltered circle without questions, got %+v", updated)
		}
		if updated.MemberCount != 1 {
			t.Errorf("MemberCount should not change on update, got %d", updated.MemberCount)
		}
	})

	t.Run("UpdateCircle returns ErrNotFound for nonexistent circle", func(t *testing.T) {
		circle := bookClub()
		circle.ID = "nonexistent-id"
		if err := store.UpdateCircle(ctx, circle); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("DeleteCircle removes the row", func(t *testing.T) {
		circle := bookClub()
		if err := store.CreateCircle(ctx, circle); err != nil {
			t.Fatalf("CreateCircle failed: %v", err)
		}
		if err := store.DeleteCircle(ctx, circle.ID); err != nil {
			t.Fatalf("DeleteCircle failed: %v", err)
		}
		if _, err := store.GetCircle(ctx, circle.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected deleted circle to be gone, got %v", err)
		}
		if err := store.DeleteCircle(ctx, circle.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound on second delete, got %v", err)
		}
	})
}

func TestListCirclesNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i, name := range []string{"Oldest", "Middle", "Newest"} {
		circle := models.NewCircle()
		circle.Name = name
		circle.CreatedAt = int64(1000 + i)
		if err := store.CreateCircle(ctx, &circle); err != nil {
			t.Fatalf("CreateCircle failed: %v", err)
		}
	}
	// Same second as "Newest": insertion order breaks the tie
	tie := models.NewCircle()
	tie.Name = "Tie"
	tie.CreatedAt = 1002
	if err := store.CreateCircle(ctx, &tie); err != nil {
		t.Fatalf("CreateCircle failed: %v", err)
	}

	circles, err := store.ListCircles(ctx)
	if err != nil {
		t.Fatalf("ListCircles failed: %v", err)
	}

	want := []string{"Tie", "Newest", "Middle", "Oldest"}
	if len(circles) != len(want) {
		t.Fatalf("Expected %d circles, got %d", len(want), len(circles))
	}
	for i, name := range want {
		if circles[i].Name != name {
			t.Errorf("Position %d: got %s, want %s", i, circles[i].Name, name)
		}
	}
}

func TestListCirclesEmpty(t *testing.T) {
	store := newTestStore(t)

	circles, err := store.ListCircles(context.Background())
	if err != nil {
		t.Fatalf("ListCircles failed: %v", err)
	}
	if circles == nil || len(circles) != 0 {
		t.Errorf("Expected empty non-nil list, got %v", circles)
	}
}

func TestUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := models.NewUser("alice@example.com", "Alice", "hash")
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	byEmail, err := store.GetUserByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if byEmail.ID != user.ID || byEmail.PasswordHash != "hash" {
		t.Errorf("Unexpected user: %+v", byEmail)
	}

	byID, err := store.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if byID.Email != user.Email {
		t.Errorf("Email mismatch: got %s", byID.Email)
	}

	if _, err := store.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	duplicate := models.NewUser("alice@example.com", "Other", "hash")
	if err := store.CreateUser(ctx, duplicate); err == nil {
		t.Error("Expected duplicate email to be rejected")
	}
}

func TestLocalStorageBacksDrafts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	draftStore := drafts.NewStore(store)

	questions := []models.QuestionDraft{
		{ID: "1", Question: "Why join?", Answers: [4]string{"a", "b", "c", "d"}, CorrectAnswer: 1},
	}
	if err := draftStore.Save(ctx, drafts.Key("c-1"), questions); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := draftStore.Save(ctx, drafts.Key("c-1"), questions); err != nil {
		t.Fatalf("Overwriting save failed: %v", err)
	}

	got := draftStore.Load(ctx, drafts.Key("c-1"))
	if len(got) != 1 || got[0] != questions[0] {
		t.Errorf("Draft mismatch: got %+v", got)
	}

	if err := draftStore.Clear(ctx, drafts.Key("c-1")); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, ok, err := store.GetItem(ctx, drafts.Key("c-1")); err != nil || ok {
		t.Errorf("Expected item to be removed, ok=%v err=%v", ok, err)
	}
}
