package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/marcboeker/go-duckdb/v2"
)

const schema = `
CREATE TABLE IF NOT EXISTS novels (
	id            TEXT PRIMARY KEY,
	title         TEXT NOT NULL,
	description   TEXT,
	cover_image   TEXT,
	illustration  TEXT,
	author_id     TEXT,
	author_name   TEXT,
	views         BIGINT DEFAULT 0,
	serial_days   TEXT,
	tags          TEXT,
	genre         TEXT,
	status        TEXT,
	created_at    TIMESTAMP,
	updated_at    TIMESTAMP
);
CREATE TABLE IF NOT EXISTS chapters (
	id          TEXT PRIMARY KEY,
	novel_id    TEXT NOT NULL,
	title       TEXT,
	content     TEXT,
	images      TEXT,
	audio       TEXT,
	is_free     BOOLEAN DEFAULT TRUE,
	author_id   TEXT,
	font_style  TEXT,
	created_at  TIMESTAMP
);
CREATE TABLE IF NOT EXISTS users (
	id          TEXT PRIMARY KEY,
	username    TEXT NOT NULL UNIQUE,
	role        TEXT NOT NULL,
	subscribed  BOOLEAN DEFAULT FALSE
);
`

func InitDuckDB(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create db directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return db, nil
}

type Repository struct {
	db *sql.DB
}

var (
	duckDBMu sync.Mutex
	duckDBs  = map[string]*sql.DB{}
)

// NewDuckDBRepository opens (once per path) the library database.
func NewDuckDBRepository(path string) (*Repository, error) {
	duckDBMu.Lock()
	defer duckDBMu.Unlock()

	if db, ok := duckDBs[path]; ok {
		return &Repository{db: db}, nil
	}
	db, err := InitDuckDB(path)
	if err != nil {
		return nil, err
	}
	duckDBs[path] = db
	return &Repository{db: db}, nil
}

func (r *Repository) SaveNovel(novel *Novel) error {
	if novel == nil || CanonicalID(novel.ID) == "" {
		return fmt.Errorf("novel id is required")
	}
	days, err := encodeList(novel.SerialDays)
	if err != nil {
		return err
	}
	tags, err := encodeList(novel.Tags)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if novel.CreatedAt.IsZero() {
		novel.CreatedAt = now
	}
	novel.UpdatedAt = now

	_, err = r.db.Exec(`INSERT OR REPLACE INTO novels
		(id, title, description, cover_image, illustration, author_id, author_name, views, serial_days, tags, genre, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		CanonicalID(novel.ID), novel.Title, novel.Description, novel.CoverImage, novel.Illustration,
		novel.AuthorID, novel.AuthorName, novel.Views, days, tags, novel.Genre, novel.Status,
		novel.CreatedAt, novel.UpdatedAt,
	)
	return err
}

func (r *Repository) SaveChapter(chapter *Chapter) error {
	if chapter == nil || CanonicalID(chapter.ID) == "" {
		return fmt.Errorf("chapter id is required")
	}
	novelID := CanonicalID(chapter.Novel.ID)
	if chapter.Novel.Novel != nil && CanonicalID(chapter.Novel.Novel.ID) != "" {
		novelID = CanonicalID(chapter.Novel.Novel.ID)
	}
	if novelID == "" {
		return fmt.Errorf("chapter %s has no novel", chapter.ID)
	}
	images, err := encodeList(chapter.Images)
	if err != nil {
		return err
	}
	if chapter.CreatedAt.IsZero() {
		chapter.CreatedAt = time.Now().UTC()
	}

	_, err = r.db.Exec(`INSERT OR REPLACE INTO chapters
		(id, novel_id, title, content, images, audio, is_free, author_id, font_style, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		CanonicalID(chapter.ID), novelID, chapter.Title, chapter.Content, images, chapter.Audio,
		chapter.IsFree, chapter.AuthorID, chapter.FontStyle, chapter.CreatedAt,
	)
	return err
}

func (r *Repository) SaveUser(user *User) error {
	if user == nil || CanonicalID(user.ID) == "" || user.Username == "" {
		return fmt.Errorf("user id and username are required")
	}
	role := user.Role
	if role == "" {
		role = RoleReader
	}
	// users has two unique keys, so the conflict target must be named
	_, err := r.db.Exec(`INSERT INTO users (id, username, role, subscribed) VALUES (?, ?, ?, ?)
		ON CONFLICT (username) DO UPDATE SET role = excluded.role, subscribed = excluded.subscribed`,
		CanonicalID(user.ID), user.Username, string(role), user.Subscribed)
	return err
}

func (r *Repository) GetUserByName(username string) (*User, error) {
	var (
		u    User
		role string
	)
	err := r.db.QueryRow(`SELECT id, username, role, subscribed FROM users WHERE username = ?`, username).
		Scan(&u.ID, &u.Username, &role, &u.Subscribed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %q: %w", username, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	u.Role = Role(role)
	return &u, nil
}

const novelColumns = `id, title, description, cover_image, illustration, author_id, author_name, views, serial_days, tags, genre, status, created_at, updated_at`

func (r *Repository) FetchNovel(ctx context.Context, id string) (*Novel, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+novelColumns+` FROM novels WHERE id = ?`, CanonicalID(id))
	novel, err := scanNovel(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("novel %s: %w", id, ErrNotFound)
	}
	return novel, err
}

func (r *Repository) ListNovels() ([]*Novel, error) {
	rows, err := r.db.Query(`SELECT ` + novelColumns + ` FROM novels ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var novels []*Novel
	for rows.Next() {
		novel, err := scanNovel(rows)
		if err != nil {
			return nil, err
		}
		novels = append(novels, novel)
	}
	return novels, rows.Err()
}

// GetNovelWithChapterCount returns the novel with its total and free chapter counts.
func (r *Repository) GetNovelWithChapterCount(id string) (*Novel, int, int, error) {
	novel, err := r.FetchNovel(context.Background(), id)
	if err != nil {
		return nil, 0, 0, err
	}
	var total, free int
	err = r.db.QueryRow(`SELECT COUNT(*), COUNT(*) FILTER (WHERE is_free) FROM chapters WHERE novel_id = ?`,
		CanonicalID(id)).Scan(&total, &free)
	if err != nil {
		return nil, 0, 0, err
	}
	return novel, total, free, nil
}

func (r *Repository) DeleteNovel(id string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM chapters WHERE novel_id = ?`, CanonicalID(id)); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM novels WHERE id = ?`, CanonicalID(id)); err != nil {
		return err
	}
	return tx.Commit()
}

const chapterColumns = `id, novel_id, title, content, images, audio, is_free, author_id, font_style, created_at`

func (r *Repository) FetchChapter(ctx context.Context, id string) (*Chapter, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+chapterColumns+` FROM chapters WHERE id = ?`, CanonicalID(id))
	chapter, err := scanChapter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("chapter %s: %w", id, ErrNotFound)
	}
	return chapter, err
}

// FetchChaptersByNovel returns the novel's chapters ordered by creation time.
// Callers that need adjacency still build a sequence from the result.
func (r *Repository) FetchChaptersByNovel(ctx context.Context, novelID string) ([]*Chapter, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+chapterColumns+` FROM chapters WHERE novel_id = ? ORDER BY created_at, id`,
		CanonicalID(novelID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chapters []*Chapter
	for rows.Next() {
		chapter, err := scanChapter(rows)
		if err != nil {
			return nil, err
		}
		chapters = append(chapters, chapter)
	}
	return chapters, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNovel(row scanner) (*Novel, error) {
	var (
		n                                        Novel
		desc, cover, illus, authorID, authorName sql.NullString
		days, tags, genre, status                sql.NullString
		views                                    sql.NullInt64
		createdAt, updatedAt                     sql.NullTime
	)
	if err := row.Scan(&n.ID, &n.Title, &desc, &cover, &illus, &authorID, &authorName, &views,
		&days, &tags, &genre, &status, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	n.Description = desc.String
	n.CoverImage = cover.String
	n.Illustration = illus.String
	n.AuthorID = authorID.String
	n.AuthorName = authorName.String
	n.Views = views.Int64
	n.Genre = genre.String
	n.Status = status.String
	n.CreatedAt = createdAt.Time
	n.UpdatedAt = updatedAt.Time

	var err error
	if n.SerialDays, err = decodeList(days.String); err != nil {
		return nil, err
	}
	if n.Tags, err = decodeList(tags.String); err != nil {
		return nil, err
	}
	return &n, nil
}

func scanChapter(row scanner) (*Chapter, error) {
	var (
		c                             Chapter
		title, content, images, audio sql.NullString
		authorID, fontStyle           sql.NullString
		isFree                        sql.NullBool
		createdAt                     sql.NullTime
	)
	if err := row.Scan(&c.ID, &c.Novel.ID, &title, &content, &images, &audio, &isFree,
		&authorID, &fontStyle, &createdAt); err != nil {
		return nil, err
	}
	c.Title = title.String
	c.Content = content.String
	c.Audio = audio.String
	c.IsFree = isFree.Bool
	c.AuthorID = authorID.String
	c.FontStyle = fontStyle.String
	c.CreatedAt = createdAt.Time

	var err error
	if c.Images, err = decodeList(images.String); err != nil {
		return nil, err
	}
	return &c, nil
}

func encodeList(values []string) (string, error) {
	if len(values) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeList(raw string) ([]string, error) {
	if raw == "" || raw == "[]" {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, fmt.Errorf("failed to decode list column: %w", err)
	}
	return values, nil
}
