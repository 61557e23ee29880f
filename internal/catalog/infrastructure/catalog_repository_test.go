package infrastructure

import (
	"context"
	"errors"
	"testing"
	"time"

	"pricetrack/internal/catalog/domain"
)

type countingCatalog struct {
	tags       map[domain.TagID]string
	categories map[domain.CategoryID]string
	tagCalls   int
	catCalls   int
	err        error
}

func (c *countingCatalog) TagNames(ctx context.Context, ids []domain.TagID) (map[domain.TagID]string, error) {
	c.tagCalls++
	if c.err != nil {
		return nil, c.err
	}
	out := make(map[domain.TagID]string)
	for _, id := range ids {
		if name, ok := c.tags[id]; ok {
			out[id] = name
		}
	}
	return out, nil
}

func (c *countingCatalog) CategoryName(ctx context.Context, id domain.CategoryID) (string, bool, error) {
	c.catCalls++
	if c.err != nil {
		return "", false, c.err
	}
	name, ok := c.categories[id]
	return name, ok, nil
}

func TestCachedCatalog_CategoryName(t *testing.T) {
	source := &countingCatalog{categories: map[domain.CategoryID]string{1: "Audio"}}
	c := NewCachedCatalog(source, time.Minute)
	defer c.Close()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		name, ok, err := c.CategoryName(ctx, 1)
		if err != nil || !ok || name != "Audio" {
			t.Fatalf("CategoryName(1) = %q, %v, %v", name, ok, err)
		}
	}
	if source.catCalls != 1 {
		t.Errorf("store read %d times, want 1", source.catCalls)
	}

	for i := 0; i < 2; i++ {
		if name, ok, err := c.CategoryName(ctx, 9); err != nil || ok || name != "" {
			t.Fatalf("CategoryName(9) = %q, %v, %v", name, ok, err)
		}
	}
	if source.catCalls != 3 {
		t.Errorf("unknown categories must not be cached, store read %d times", source.catCalls)
	}
}

func TestCachedCatalog_CategoryNameError(t *testing.T) {
	boom := errors.New("boom")
	source := &countingCatalog{err: boom}
	c := NewCachedCatalog(source, time.Minute)
	defer c.Close()

	if _, ok, err := c.CategoryName(context.Background(), 1); !errors.Is(err, boom) || ok {
		t.Fatalf("expected store error, got %v, %v", ok, err)
	}
}

func TestCachedCatalog_TagNamesLoadsOnlyMissing(t *testing.T) {
	source := &countingCatalog{tags: map[domain.TagID]string{1: "wireless", 2: "gaming"}}
	c := NewCachedCatalog(source, time.Minute)
	defer c.Close()
	ctx := context.Background()

	if _, err := c.TagNames(ctx, []domain.TagID{1}); err != nil {
		t.Fatal(err)
	}
	names, err := c.TagNames(ctx, []domain.TagID{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[1] != "wireless" || names[2] != "gaming" {
		t.Fatalf("names = %v", names)
	}
	if source.tagCalls != 2 {
		t.Errorf("store read %d times, want 2", source.tagCalls)
	}
	if _, err := c.TagNames(ctx, []domain.TagID{1, 2}); err != nil || source.tagCalls != 2 {
		t.Errorf("cached tags must not reach the store, calls=%d err=%v", source.tagCalls, err)
	}
}
