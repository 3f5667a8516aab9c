package filter

import (
	"testing"

	"nostrd.dev/pkg/event"
	"nostrd.dev/pkg/tag"
)

func sampleEvent() *event.E {
	return &event.E{
		ID:        "aaaa0000000000000000000000000000000000000000000000000000000000000000",
		Pubkey:    "bbbb0000000000000000000000000000000000000000000000000000000000000000",
		CreatedAt: 1000,
		Kind:      1,
		Content:   "hello nostr world",
		Tags:      tag.S{{"e", "deadbeef"}, {"p", "cafebabe"}},
	}
}

func TestMatchEmptyFilterMatchesEverything(t *testing.T) {
	f := &F{}
	if !f.Match(sampleEvent()) {
		t.Fatal("expected empty filter to match")
	}
}

func TestMatchByID(t *testing.T) {
	e := sampleEvent()
	if !(&F{IDs: []string{e.ID}}).Match(e) {
		t.Fatal("expected id match")
	}
	if (&F{IDs: []string{"nonexistent"}}).Match(e) {
		t.Fatal("expected id mismatch to reject")
	}
}

func TestMatchByAuthor(t *testing.T) {
	e := sampleEvent()
	if !(&F{Authors: []string{e.Pubkey}}).Match(e) {
		t.Fatal("expected author match")
	}
	if (&F{Authors: []string{"someone-else"}}).Match(e) {
		t.Fatal("expected author mismatch to reject")
	}
}

func TestMatchByKind(t *testing.T) {
	e := sampleEvent()
	if !(&F{Kinds: []uint16{1, 2}}).Match(e) {
		t.Fatal("expected kind match")
	}
	if (&F{Kinds: []uint16{30023}}).Match(e) {
		t.Fatal("expected kind mismatch to reject")
	}
}

func TestMatchBySinceUntil(t *testing.T) {
	e := sampleEvent()
	since := e.CreatedAt - 1
	until := e.CreatedAt + 1
	if !(&F{Since: &since, Until: &until}).Match(e) {
		t.Fatal("expected since/until window to match")
	}
	tooLate := e.CreatedAt - 1
	if (&F{Since: &e.CreatedAt, Until: &tooLate}).Match(e) {
		t.Fatal("expected until before created_at to reject")
	}
	tooEarly := e.CreatedAt + 1
	if (&F{Since: &tooEarly}).Match(e) {
		t.Fatal("expected since after created_at to reject")
	}
}

func TestMatchByTag(t *testing.T) {
	e := sampleEvent()
	if !(&F{Tags: map[string][]string{"e": {"deadbeef"}}}).Match(e) {
		t.Fatal("expected tag value match")
	}
	if (&F{Tags: map[string][]string{"e": {"not-present"}}}).Match(e) {
		t.Fatal("expected tag value mismatch to reject")
	}
	if (&F{Tags: map[string][]string{"x": {"deadbeef"}}}).Match(e) {
		t.Fatal("expected tag name mismatch to reject")
	}
}

func TestMatchBySearch(t *testing.T) {
	e := sampleEvent()
	if !(&F{Search: "Nostr World"}).Match(e) {
		t.Fatal("expected case/segmentation-insensitive search match")
	}
	if (&F{Search: "bitcoin"}).Match(e) {
		t.Fatal("expected unrelated search term to reject")
	}
}

func TestMatchFiltersIsDisjunction(t *testing.T) {
	e := sampleEvent()
	fs := S{
		{IDs: []string{"nonexistent"}},
		{Authors: []string{e.Pubkey}},
	}
	if !MatchFilters(fs, e) {
		t.Fatal("expected match-filters to accept when any filter matches")
	}
	fs = S{{IDs: []string{"nonexistent"}}, {Kinds: []uint16{99}}}
	if MatchFilters(fs, e) {
		t.Fatal("expected match-filters to reject when no filter matches")
	}
}

func TestIsBroad(t *testing.T) {
	if !(&F{}).IsBroad() {
		t.Fatal("expected filter with no ids/authors/tags to be broad")
	}
	if (&F{IDs: []string{"x"}}).IsBroad() {
		t.Fatal("expected filter with ids to be non-broad")
	}
	if (&F{Tags: map[string][]string{"e": {"x"}}}).IsBroad() {
		t.Fatal("expected filter with tags to be non-broad")
	}
}

func TestCappedLimit(t *testing.T) {
	five := 5
	if got := (&F{Limit: &five}).CappedLimit(100); got != 5 {
		t.Fatalf("expected explicit limit to pass through, got %d", got)
	}
	if got := (&F{}).CappedLimit(100); got != 100 {
		t.Fatalf("expected absent limit to default to max, got %d", got)
	}
	thousand := 1000
	if got := (&F{Limit: &thousand}).CappedLimit(100); got != 100 {
		t.Fatalf("expected oversized limit to cap at max, got %d", got)
	}
}

func TestParseExpiration(t *testing.T) {
	ts, ok := ParseExpiration("1700000000")
	if !ok || ts != 1700000000 {
		t.Fatalf("expected valid timestamp to parse, got %d ok=%v", ts, ok)
	}
	if _, ok := ParseExpiration("not-a-number"); ok {
		t.Fatal("expected non-numeric expiration to fail parsing")
	}
}
