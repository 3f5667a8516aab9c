// Package filter defines the Nostr filter shape of spec.md §3 and the
// match-filter/match-filters predicates §4.1 requires.
package filter

import (
	"encoding/json"
	"strconv"
	"strings"

	"nostrd.dev/pkg/event"
	"nostrd.dev/pkg/fts"
)

// F is a single filter: every populated field is a conjunctive predicate: a
// filter matches an event when every populated predicate holds.
type F struct {
	IDs     []string            `json:"ids,omitempty"`
	Authors []string            `json:"authors,omitempty"`
	Kinds   []uint16            `json:"kinds,omitempty"`
	Since   *int64              `json:"since,omitempty"`
	Until   *int64              `json:"until,omitempty"`
	Limit   *int                `json:"limit,omitempty"`
	Search  string              `json:"search,omitempty"`
	Tags    map[string][]string `json:"-"`
}

// S is an ordered sequence of filters, as carried by REQ/COUNT/NEG-OPEN.
type S []*F

// MarshalJSON renders the filter's known fields plus the dynamic "#<tag>"
// keys at the top level of a single JSON object.
func (f *F) MarshalJSON() ([]byte, error) {
	m := map[string]any{}
	if len(f.IDs) > 0 {
		m["ids"] = f.IDs
	}
	if len(f.Authors) > 0 {
		m["authors"] = f.Authors
	}
	if len(f.Kinds) > 0 {
		m["kinds"] = f.Kinds
	}
	if f.Since != nil {
		m["since"] = *f.Since
	}
	if f.Until != nil {
		m["until"] = *f.Until
	}
	if f.Limit != nil {
		m["limit"] = *f.Limit
	}
	if f.Search != "" {
		m["search"] = f.Search
	}
	for name, values := range f.Tags {
		m["#"+name] = values
	}
	return json.Marshal(m)
}

// UnmarshalJSON parses the filter's known fields and collects any "#<name>"
// key into Tags, per spec.md §3.
func (f *F) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key, v := range raw {
		switch key {
		case "ids":
			if err := json.Unmarshal(v, &f.IDs); err != nil {
				return err
			}
		case "authors":
			if err := json.Unmarshal(v, &f.Authors); err != nil {
				return err
			}
		case "kinds":
			if err := json.Unmarshal(v, &f.Kinds); err != nil {
				return err
			}
		case "since":
			var n int64
			if err := json.Unmarshal(v, &n); err != nil {
				return err
			}
			f.Since = &n
		case "until":
			var n int64
			if err := json.Unmarshal(v, &n); err != nil {
				return err
			}
			f.Until = &n
		case "limit":
			var n int
			if err := json.Unmarshal(v, &n); err != nil {
				return err
			}
			f.Limit = &n
		case "search":
			if err := json.Unmarshal(v, &f.Search); err != nil {
				return err
			}
		default:
			if strings.HasPrefix(key, "#") && len(key) > 1 {
				var values []string
				if err := json.Unmarshal(v, &values); err != nil {
					return err
				}
				if f.Tags == nil {
					f.Tags = map[string][]string{}
				}
				f.Tags[key[1:]] = values
			}
		}
	}
	return nil
}

// IsBroad reports whether the filter has none of ids, authors, or any #tag
// populated — per spec.md §4.3, a subscription with a broad filter gets no
// probabilistic prefilter.
func (f *F) IsBroad() bool {
	return len(f.IDs) == 0 && len(f.Authors) == 0 && len(f.Tags) == 0
}

// CappedLimit returns f.Limit capped to maxLimit, defaulting to maxLimit
// when absent or larger.
func (f *F) CappedLimit(maxLimit int) int {
	if f.Limit == nil || *f.Limit > maxLimit || *f.Limit < 0 {
		return maxLimit
	}
	return *f.Limit
}

// Match implements spec.md §3's match-filter: f matches e when every
// populated predicate holds.
func (f *F) Match(e *event.E) bool {
	if len(f.IDs) > 0 && !containsString(f.IDs, e.ID) {
		return false
	}
	if len(f.Authors) > 0 && !containsString(f.Authors, e.Pubkey) {
		return false
	}
	if len(f.Kinds) > 0 && !containsKind(f.Kinds, e.Kind) {
		return false
	}
	if f.Since != nil && e.CreatedAt < *f.Since {
		return false
	}
	if f.Until != nil && e.CreatedAt > *f.Until {
		return false
	}
	for name, values := range f.Tags {
		if len(values) > 0 && !tagValuesMatch(e, name, values) {
			return false
		}
	}
	if f.Search != "" && !searchMatches(f.Search, e.Content) {
		return false
	}
	return true
}

// searchMatches applies the same segmentation to the query and the
// candidate content that the storage engine's FTS relation uses, per
// spec.md §4.2's round-trip requirement.
func searchMatches(query, content string) bool {
	q := fts.Segment(query)
	if q == "" {
		return true
	}
	return strings.Contains(fts.Segment(content), q)
}

func tagValuesMatch(e *event.E, name string, values []string) bool {
	for _, t := range e.Tags {
		if t.Name() != name || !t.Indexable() {
			continue
		}
		if containsString(values, t.Value()) {
			return true
		}
	}
	return false
}

func containsString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func containsKind(set []uint16, k uint16) bool {
	for _, s := range set {
		if s == k {
			return true
		}
	}
	return false
}

// MatchFilters implements spec.md §3's match-filters: e matches when at
// least one filter in fs matches.
func MatchFilters(fs S, e *event.E) bool {
	for _, f := range fs {
		if f.Match(e) {
			return true
		}
	}
	return false
}

// UnionValues returns the union, across every filter in fs, of ids, authors
// and every #tag value, used by §4.3 to build a subscription's probabilistic
// filter.
func UnionValues(fs S) (ids, authors, tagValues []string) {
	seen := map[string]struct{}{}
	add := func(dst *[]string, v string) {
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		*dst = append(*dst, v)
	}
	for _, f := range fs {
		for _, id := range f.IDs {
			add(&ids, id)
		}
		for _, a := range f.Authors {
			add(&authors, a)
		}
		for _, values := range f.Tags {
			for _, v := range values {
				add(&tagValues, v)
			}
		}
	}
	return
}

// AnyBroad reports whether any filter in fs is broad, per spec.md §4.3.
func (fs S) AnyBroad() bool {
	for _, f := range fs {
		if f.IsBroad() {
			return true
		}
	}
	return false
}

// ParseExpiration parses a tag's "expiration" value as a decimal integer
// unix timestamp, per spec.md §4.4/§4.6.
func ParseExpiration(v string) (int64, bool) {
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
