// Package store persists articles in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
)

// Post statuses.
const (
	StatusPublish = "publish"
	StatusDraft   = "draft"
)

// ErrNotFound is returned when a post does not exist.
var ErrNotFound = errors.New("post not found")

// Post is a stored article.
type Post struct {
	ID            int64     `db:"id"`
	PostType      string    `db:"post_type"`
	Status        string    `db:"status"`
	Title         string    `db:"title"`
	Content       string    `db:"content"` // rendered HTML
	Excerpt       string    `db:"excerpt"`
	Author        string    `db:"author"`
	FeaturedImage string    `db:"featured_image"`
	PublishedAt   time.Time `db:"published_at"`
	ModifiedAt    time.Time `db:"modified_at"`
}

// Published reports whether the post is publicly visible.
func (p Post) Published() bool {
	return p.Status == StatusPublish
}

// Query selects a page of posts.
type Query struct {
	PostType string
	Status   string
	Search   string
	Page     int // 1-based
	PerPage  int
}

// Store is a SQLite backed post store.
type Store struct {
	db *sqlx.DB
}

// Open connects to the database at path, creating it and its schema if
// needed. Use ":memory:" for a private in-memory database.
func Open(ctx context.Context, path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("unable to create database directory: %w", err)
		}
	}

	db, err := sqlx.ConnectContext(ctx, "sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if path == ":memory:" {
		// every connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	s := &Store{db: db}
	if err := s.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

func (s *Store) createTables(ctx context.Context) error {
	postsTable := `
	CREATE TABLE IF NOT EXISTS posts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		post_type TEXT NOT NULL DEFAULT 'post',
		status TEXT NOT NULL DEFAULT 'publish',
		title TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL DEFAULT '',
		excerpt TEXT NOT NULL DEFAULT '',
		author TEXT NOT NULL DEFAULT '',
		featured_image TEXT NOT NULL DEFAULT '',
		published_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		modified_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_posts_type_status ON posts(post_type, status);`,
		`CREATE INDEX IF NOT EXISTS idx_posts_published_at ON posts(published_at);`,
	}

	if _, err := s.db.ExecContext(ctx, postsTable); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	for _, index := range indexes {
		if _, err := s.db.ExecContext(ctx, index); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Insert stores a new post and sets its ID. Zero timestamps are set to now.
func (s *Store) Insert(ctx context.Context, p *Post) error {
	now := time.Now().UTC()
	if p.PublishedAt.IsZero() {
		p.PublishedAt = now
	}
	if p.ModifiedAt.IsZero() {
		p.ModifiedAt = p.PublishedAt
	}
	if p.PostType == "" {
		p.PostType = "post"
	}
	if p.Status == "" {
		p.Status = StatusPublish
	}

	query := `
	INSERT INTO posts (post_type, status, title, content, excerpt, author, featured_image, published_at, modified_at)
	VALUES (:post_type, :status, :title, :content, :excerpt, :author, :featured_image, :published_at, :modified_at)`

	res, err := s.db.NamedExecContext(ctx, query, p)
	if err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read post id: %w", err)
	}
	p.ID = id
	return nil
}

// Get returns the post with the given ID.
func (s *Store) Get(ctx context.Context, id int64) (*Post, error) {
	var p Post
	err := s.db.GetContext(ctx, &p, `SELECT * FROM posts WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post %d: %w", id, err)
	}
	return &p, nil
}

// List returns one page of posts matching q, newest first, and the total
// number of matches.
func (s *Store) List(ctx context.Context, q Query) ([]Post, int, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = 10
	}

	var (
		where []string
		args  []any
	)
	if q.PostType != "" {
		where = append(where, "post_type = ?")
		args = append(args, q.PostType)
	}
	if q.Status != "" {
		where = append(where, "status = ?")
		args = append(args, q.Status)
	}
	if q.Search != "" {
		like := "%" + escapeLike(q.Search) + "%"
		where = append(where, `(title LIKE ? ESCAPE '\' OR excerpt LIKE ? ESCAPE '\' OR content LIKE ? ESCAPE '\')`)
		args = append(args, like, like, like)
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM posts`+clause, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count posts: %w", err)
	}

	posts := []Post{}
	query := `SELECT * FROM posts` + clause + ` ORDER BY published_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, q.PerPage, (q.Page-1)*q.PerPage)
	if err := s.db.SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, total, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
