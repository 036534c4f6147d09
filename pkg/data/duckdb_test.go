package data

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := InitDuckDB(dbPath)
	if err != nil {
		t.Fatalf("Failed to init DB: %v", err)
	}

	repo := &Repository{db: db}
	cleanup := func() {
		db.Close()
	}
	return repo, cleanup
}

func TestSaveAndFetchNovel(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	novel := &Novel{
		ID:           "novel-1",
		Title:        "Test Novel",
		Description:  "A test novel description",
		CoverImage:   "/uploads/cover.jpg",
		Illustration: "/uploads/illust.jpg",
		AuthorID:     "author-1",
		AuthorName:   "Writer",
		Views:        42,
		SerialDays:   []string{"mon", "thu"},
		Tags:         []string{"fantasy"},
		Status:       "completed",
	}

	if err := repo.SaveNovel(novel); err != nil {
		t.Fatalf("Failed to save novel: %v", err)
	}

	retrieved, err := repo.FetchNovel(context.Background(), "novel-1")
	if err != nil {
		t.Fatalf("Failed to fetch novel: %v", err)
	}

	if retrieved.Title != novel.Title {
		t.Errorf("Expected Title %s, got %s", novel.Title, retrieved.Title)
	}
	if retrieved.Views != 42 {
		t.Errorf("Expected Views 42, got %d", retrieved.Views)
	}
	if len(retrieved.SerialDays) != 2 || retrieved.SerialDays[1] != "thu" {
		t.Errorf("Expected serial days [mon thu], got %v", retrieved.SerialDays)
	}
	if len(retrieved.Tags) != 1 || retrieved.Tags[0] != "fantasy" {
		t.Errorf("Expected tags [fantasy], got %v", retrieved.Tags)
	}
}

func TestFetchNonExistent(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	if _, err := repo.FetchNovel(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for novel, got %v", err)
	}
	if _, err := repo.FetchChapter(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for chapter, got %v", err)
	}
	if _, err := repo.GetUserByName("nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for user, got %v", err)
	}
}

func TestListNovels(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	novels, err := repo.ListNovels()
	if err != nil {
		t.Fatalf("Failed to list novels: %v", err)
	}
	if len(novels) != 0 {
		t.Errorf("Expected 0 novels, got %d", len(novels))
	}

	for _, id := range []string{"a", "b", "c"} {
		if err := repo.SaveNovel(&Novel{ID: id, Title: "Novel " + id}); err != nil {
			t.Fatalf("Failed to save novel %s: %v", id, err)
		}
	}

	novels, err = repo.ListNovels()
	if err != nil {
		t.Fatalf("Failed to list novels: %v", err)
	}
	if len(novels) != 3 {
		t.Errorf("Expected 3 novels, got %d", len(novels))
	}
}

func TestSaveAndFetchChapters(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	repo.SaveNovel(&Novel{ID: "novel-1", Title: "Test"})

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	chapters := []*Chapter{
		{ID: "ch-2", Novel: NovelRef{ID: "novel-1"}, Title: "Second", CreatedAt: base.Add(2 * time.Hour)},
		{ID: "ch-1", Novel: NovelRef{ID: "novel-1"}, Title: "First", CreatedAt: base.Add(time.Hour), IsFree: true,
			Images: []string{"/img/a.png"}, Audio: "/bgm/a.mp3"},
		{ID: "ch-3", Novel: NovelRef{Novel: &Novel{ID: "novel-1"}}, Title: "Third", CreatedAt: base.Add(3 * time.Hour)},
	}
	for _, ch := range chapters {
		if err := repo.SaveChapter(ch); err != nil {
			t.Fatalf("Failed to save chapter: %v", err)
		}
	}

	retrieved, err := repo.FetchChaptersByNovel(context.Background(), "novel-1")
	if err != nil {
		t.Fatalf("Failed to fetch chapters: %v", err)
	}
	if len(retrieved) != 3 {
		t.Fatalf("Expected 3 chapters, got %d", len(retrieved))
	}

	want := []string{"ch-1", "ch-2", "ch-3"}
	for i, id := range want {
		if retrieved[i].ID != id {
			t.Errorf("Expected chapter %d to be %s, got %s", i, id, retrieved[i].ID)
		}
		if retrieved[i].Novel.ID != "novel-1" {
			t.Errorf("Expected novel id novel-1, got %s", retrieved[i].Novel.ID)
		}
	}

	first, err := repo.FetchChapter(context.Background(), "ch-1")
	if err != nil {
		t.Fatalf("Failed to fetch chapter: %v", err)
	}
	if !first.IsFree {
		t.Error("Expected chapter to be free")
	}
	if len(first.Images) != 1 || first.Images[0] != "/img/a.png" {
		t.Errorf("Expected images [/img/a.png], got %v", first.Images)
	}
	if first.Audio != "/bgm/a.mp3" {
		t.Errorf("Expected audio /bgm/a.mp3, got %s", first.Audio)
	}
}

func TestSaveChapterRequiresNovel(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	if err := repo.SaveChapter(&Chapter{ID: "orphan"}); err == nil {
		t.Error("Expected error saving a chapter without a novel")
	}
}

func TestDeleteNovel(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	repo.SaveNovel(&Novel{ID: "novel-1", Title: "Test"})
	repo.SaveChapter(&Chapter{ID: "ch-1", Novel: NovelRef{ID: "novel-1"}})

	if err := repo.DeleteNovel("novel-1"); err != nil {
		t.Fatalf("Failed to delete novel: %v", err)
	}

	if _, err := repo.FetchNovel(context.Background(), "novel-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected novel to be deleted, got %v", err)
	}

	chapters, _ := repo.FetchChaptersByNovel(context.Background(), "novel-1")
	if len(chapters) != 0 {
		t.Errorf("Expected 0 chapters, got %d", len(chapters))
	}
}

func TestGetNovelWithChapterCount(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	repo.SaveNovel(&Novel{ID: "novel-1", Title: "Test"})
	chapters := []*Chapter{
		{ID: "ch-1", Novel: NovelRef{ID: "novel-1"}, IsFree: true},
		{ID: "ch-2", Novel: NovelRef{ID: "novel-1"}, IsFree: true},
		{ID: "ch-3", Novel: NovelRef{ID: "novel-1"}, IsFree: false},
	}
	for _, ch := range chapters {
		repo.SaveChapter(ch)
	}

	novel, total, free, err := repo.GetNovelWithChapterCount("novel-1")
	if err != nil {
		t.Fatalf("Failed to get novel with chapter count: %v", err)
	}
	if novel == nil {
		t.Fatal("Expected novel to be found")
	}
	if total != 3 {
		t.Errorf("Expected 3 total chapters, got %d", total)
	}
	if free != 2 {
		t.Errorf("Expected 2 free chapters, got %d", free)
	}
}

func TestSaveNovelUpsert(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	novel := &Novel{ID: "novel-1", Title: "Original", Status: "syncing"}
	repo.SaveNovel(novel)

	novel.Title = "Updated"
	novel.Status = "completed"
	if err := repo.SaveNovel(novel); err != nil {
		t.Fatalf("Failed to update novel: %v", err)
	}

	retrieved, _ := repo.FetchNovel(context.Background(), "novel-1")
	if retrieved.Title != "Updated" {
		t.Errorf("Expected Title 'Updated', got '%s'", retrieved.Title)
	}
	if retrieved.Status != "completed" {
		t.Errorf("Expected Status 'completed', got '%s'", retrieved.Status)
	}
}

func TestSaveAndGetUser(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	if err := repo.SaveUser(&User{ID: "u-1", Username: "mina", Subscribed: true}); err != nil {
		t.Fatalf("Failed to save user: %v", err)
	}

	user, err := repo.GetUserByName("mina")
	if err != nil {
		t.Fatalf("Failed to get user: %v", err)
	}
	if user.Role != RoleReader {
		t.Errorf("Expected default role reader, got %s", user.Role)
	}
	if !user.Subscribed {
		t.Error("Expected user to be subscribed")
	}
}

func TestSaveUserUpdatesExisting(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	if err := repo.SaveUser(&User{ID: "u-1", Username: "mina"}); err != nil {
		t.Fatalf("Failed to save user: %v", err)
	}
	if err := repo.SaveUser(&User{ID: "u-1", Username: "mina", Role: RoleAdmin, Subscribed: true}); err != nil {
		t.Fatalf("Failed to save user again: %v", err)
	}

	user, err := repo.GetUserByName("mina")
	if err != nil {
		t.Fatalf("Failed to get user: %v", err)
	}
	if user.ID != "u-1" {
		t.Errorf("Expected id u-1, got %s", user.ID)
	}
	if user.Role != RoleAdmin {
		t.Errorf("Expected role admin, got %s", user.Role)
	}
	if !user.Subscribed {
		t.Error("Expected user to be subscribed after update")
	}
}
