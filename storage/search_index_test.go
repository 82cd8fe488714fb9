package storage

import (
	"strings"
	"testing"
	"time"

	"parley/model"
)

func testChats() []*model.Chat {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return []*model.Chat{
		{
			ID:    1,
			Title: "Concurrency",
			Content: []model.Message{
				{Role: "User", Content: "Explain goroutines to me", Time: now},
				{Role: "Assistant", Content: "Goroutines are lightweight threads.", Time: now.Add(time.Second)},
			},
		},
		{
			ID:    2,
			Title: "Cooking",
			Content: []model.Message{
				{Role: "User", Content: "Best way to cook rice?", Time: now.Add(time.Hour)},
			},
		},
	}
}

func TestSearchIndex(t *testing.T) {
	si, err := NewSearchIndex(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer si.Close()

	if err := si.Rebuild(testChats()); err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}

	hits, err := si.Search("goroutine")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("hits = %d, want 2", len(hits))
	}
	for _, hit := range hits {
		if hit.ChatID != 1 {
			t.Errorf("hit in chat %d, want 1", hit.ChatID)
		}
	}

	hits, err = si.Search("rice")
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].ChatID != 2 || hits[0].Index != 0 {
		t.Errorf("hits = %+v", hits)
	}

	hits, err = si.Search("")
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Errorf("empty query should return nothing, got %d", len(hits))
	}
}

func TestSearchIndexRemoveAndReindex(t *testing.T) {
	si, err := NewSearchIndex(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer si.Close()

	chats := testChats()
	if err := si.Rebuild(chats); err != nil {
		t.Fatal(err)
	}

	if err := si.RemoveChat(1); err != nil {
		t.Fatal(err)
	}
	hits, err := si.Search("goroutine")
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Errorf("removed chat still indexed: %d hits", len(hits))
	}

	// Re-indexing a chat replaces its rows
	chats[1].Content = append(chats[1].Content, model.Message{
		Role: "Assistant", Content: "Rinse the rice first.", Time: time.Now(),
	})
	if err := si.IndexChat(chats[1]); err != nil {
		t.Fatal(err)
	}
	hits, err = si.Search("rice")
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 {
		t.Errorf("hits after reindex = %d, want 2", len(hits))
	}
}

func TestSearchPreviewCapped(t *testing.T) {
	si, err := NewSearchIndex(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer si.Close()

	long := strings.Repeat("needle haystack ", 20)
	chats := []*model.Chat{{
		ID:      1,
		Content: []model.Message{{Role: "User", Content: long, Time: time.Now()}},
	}}
	if err := si.Rebuild(chats); err != nil {
		t.Fatal(err)
	}

	hits, err := si.Search("needle")
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Fatalf("hits = %d", len(hits))
	}
	if !strings.HasSuffix(hits[0].Preview, "...") {
		t.Errorf("preview not capped: %q", hits[0].Preview)
	}
	if len([]rune(hits[0].Preview)) > 103 {
		t.Errorf("preview too long: %d", len(hits[0].Preview))
	}
}
