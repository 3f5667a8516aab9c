package store

import (
	"context"
	"testing"

	"nostrd.dev/pkg/event"
	"nostrd.dev/pkg/filter"
	"nostrd.dev/pkg/tag"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:", 500)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mustEvent(t *testing.T, pubkey string, kind uint16, createdAt int64, content string, tags tag.S) *event.E {
	t.Helper()
	e := &event.E{
		Pubkey: pubkey, Kind: kind, CreatedAt: createdAt, Content: content, Tags: tags,
		Sig: "0000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000",
	}
	id, err := e.ComputeID()
	if err != nil {
		t.Fatalf("compute id: %v", err)
	}
	e.ID = id
	return e
}

func TestSaveAndQueryRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	pk := "aaaa000000000000000000000000000000000000000000000000000000000000aaaa"
	e := mustEvent(t, pk, 1, 100, "hello world", nil)
	if err := s.Save(ctx, e); err != nil {
		t.Fatalf("save: %v", err)
	}
	c, err := s.Query(ctx, &filter.F{IDs: []string{e.ID}})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer c.Close()
	got, ok := c.Next()
	if !ok {
		t.Fatalf("expected one event, got none: %v", c.Err())
	}
	if got.ID != e.ID || got.Content != e.Content {
		t.Fatalf("got %+v, want %+v", got, e)
	}
	if _, ok = c.Next(); ok {
		t.Fatalf("expected exactly one event")
	}
}

func TestReplaceableKeepsNewest(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	pk := "bbbb000000000000000000000000000000000000000000000000000000000000bbbb"
	v1 := mustEvent(t, pk, 0, 100, "v1", nil)
	v2 := mustEvent(t, pk, 0, 200, "v2", nil)
	v3 := mustEvent(t, pk, 0, 150, "v3", nil)
	for _, e := range []*event.E{v1, v2, v3} {
		if err := s.Save(ctx, e); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	c, err := s.Query(ctx, &filter.F{Kinds: []uint16{0}, Authors: []string{pk}})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer c.Close()
	got, ok := c.Next()
	if !ok {
		t.Fatalf("expected one retained event")
	}
	if got.Content != "v2" {
		t.Fatalf("expected v2 retained, got %s", got.Content)
	}
	if _, ok = c.Next(); ok {
		t.Fatalf("expected exactly one retained event")
	}
}

func TestAddressableDeleteByTag(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	pk := "cccc000000000000000000000000000000000000000000000000000000000000cccc"
	orig := mustEvent(t, pk, 30000, 10, "c", tag.S{{"d", "x"}})
	if err := s.Save(ctx, orig); err != nil {
		t.Fatalf("save: %v", err)
	}
	del := mustEvent(t, pk, 5, 20, "", tag.S{{"a", "30000:" + pk + ":x"}})
	if err := s.Save(ctx, del); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.DeleteEvents(ctx, pk, nil, []string{"30000:" + pk + ":x"}, del.CreatedAt); err != nil {
		t.Fatalf("delete: %v", err)
	}
	c, err := s.Query(ctx, &filter.F{Kinds: []uint16{30000}})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer c.Close()
	if _, ok := c.Next(); ok {
		t.Fatalf("expected addressable event to be deleted")
	}
	c2, err := s.Query(ctx, &filter.F{Kinds: []uint16{5}})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer c2.Close()
	if _, ok := c2.Next(); !ok {
		t.Fatalf("expected deletion event to be retained")
	}
}

func TestExpirationSweep(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	pk := "dddd000000000000000000000000000000000000000000000000000000000000dddd"
	e := mustEvent(t, pk, 1, 1, "bye", tag.S{{"expiration", "2"}})
	if err := s.Save(ctx, e); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.CleanupExpired(ctx); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	c, err := s.Query(ctx, &filter.F{IDs: []string{e.ID}})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer c.Close()
	if _, ok := c.Next(); ok {
		t.Fatalf("expected expired event to be swept")
	}
}

func TestTagFilterMatch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	pk := "eeee000000000000000000000000000000000000000000000000000000000000eeee"
	e := mustEvent(t, pk, 1, 1, "tagged", tag.S{{"p", "target"}})
	if err := s.Save(ctx, e); err != nil {
		t.Fatalf("save: %v", err)
	}
	c, err := s.Query(ctx, &filter.F{Tags: map[string][]string{"p": {"target"}}})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer c.Close()
	got, ok := c.Next()
	if !ok || got.ID != e.ID {
		t.Fatalf("expected tag-filtered event to match")
	}
}

func TestCount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	pk := "ffff000000000000000000000000000000000000000000000000000000000000ffff"
	for i := int64(0); i < 3; i++ {
		e := mustEvent(t, pk, 1, 100+i, "x", nil)
		if err := s.Save(ctx, e); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	n, err := s.Count(ctx, filter.S{{Authors: []string{pk}}})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected count 3, got %d", n)
	}
}
