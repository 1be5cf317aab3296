package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestInsertAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	p := &Post{Title: "Hello", Content: "<p>Hello world.</p>", Author: "Ada"}
	if err := s.Insert(ctx, p); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if p.ID == 0 {
		t.Fatal("expected an ID")
	}

	got, err := s.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Title != "Hello" || got.Author != "Ada" || got.PostType != "post" || !got.Published() {
		t.Errorf("unexpected post %+v", got)
	}
	if got.PublishedAt.IsZero() {
		t.Error("expected publish date")
	}
}

func TestGetMissing(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.Get(context.Background(), 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		p := &Post{
			Title:       fmt.Sprintf("Post %d", i),
			Content:     "<p>Body</p>",
			PublishedAt: base.Add(time.Duration(i) * time.Hour),
		}
		if i == 3 {
			p.Title = "Gardening 100% tips"
		}
		if i == 5 {
			p.Status = StatusDraft
		}
		if i == 7 {
			p.PostType = "page"
		}
		if err := s.Insert(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name      string
		q         Query
		wantLen   int
		wantTotal int
		first     string
	}{
		{"first page", Query{PostType: "post", Status: StatusPublish, Page: 1, PerPage: 4}, 4, 10, "Post 11"},
		{"last page", Query{PostType: "post", Status: StatusPublish, Page: 3, PerPage: 4}, 2, 10, "Post 1"},
		{"past the end", Query{PostType: "post", Status: StatusPublish, Page: 9, PerPage: 4}, 0, 10, ""},
		{"pages", Query{PostType: "page", Status: StatusPublish}, 1, 1, "Post 7"},
		{"search", Query{PostType: "post", Search: "gardening"}, 1, 1, "Gardening 100% tips"},
		{"search escapes wildcards", Query{Search: "100%"}, 1, 1, "Gardening 100% tips"},
		{"no match", Query{Search: "zzz"}, 0, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts, total, err := s.List(ctx, tt.q)
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if len(posts) != tt.wantLen || total != tt.wantTotal {
				t.Fatalf("got %d posts of %d, want %d of %d", len(posts), total, tt.wantLen, tt.wantTotal)
			}
			if tt.first != "" && posts[0].Title != tt.first {
				t.Errorf("first post %q, want %q", posts[0].Title, tt.first)
			}
		})
	}
}
