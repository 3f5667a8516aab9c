// Package tag holds the ordered-sequence-of-strings representation of a
// Nostr event tag, and the helpers the protocol and storage layers use to
// pick out the indexable (name, value) pair from it.
package tag

// T is a single tag: an ordered sequence of strings. Tags with fewer than
// two entries are kept (events are stored verbatim) but are not indexed.
type T []string

// Name returns the tag's first element, or "" if the tag is empty.
func (t T) Name() string {
	if len(t) == 0 {
		return ""
	}
	return t[0]
}

// Value returns the tag's second element, or "" if the tag has fewer than
// two entries.
func (t T) Value() string {
	if len(t) < 2 {
		return ""
	}
	return t[1]
}

// Indexable reports whether the tag carries at least a name and a value and
// should therefore get a row in the tag side-index.
func (t T) Indexable() bool { return len(t) >= 2 }

// S is an ordered sequence of tags, as they appear on an event.
type S []T

// GetFirst returns the first tag in s whose name matches name, or nil.
func (s S) GetFirst(name string) *T {
	for i := range s {
		if s[i].Name() == name {
			return &s[i]
		}
	}
	return nil
}

// GetAll returns every tag in s whose name matches name, in order.
func (s S) GetAll(name string) (out []T) {
	for _, t := range s {
		if t.Name() == name {
			out = append(out, t)
		}
	}
	return
}

// Values returns the Value() of every indexable tag in s whose name matches
// name.
func (s S) Values(name string) (out []string) {
	for _, t := range s {
		if t.Name() == name && t.Indexable() {
			out = append(out, t.Value())
		}
	}
	return
}
