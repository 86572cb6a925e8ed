package datastore

import (
	"sort"
	"strings"
)

// Index is a sorted, case-insensitive mapping from a unique key
// (email or username) to an account ID. Sorted order gives O(log n)
// lookup; insertion keeps the slice ordered so lookups stay valid.
// Comparison uses the uppercased key for both insertion and search;
// the two orderings must match exactly or binary search breaks.
//
// Index is not self-synchronizing; callers guard it with their own
// lock when shared.
type Index struct {
	entries []indexEntry
}

type indexEntry struct {
	fold string // uppercased key, the sort key
	key  string // original spelling, for reload round-trips
	id   string
}

// Lookup returns the account ID for key, case-insensitively.
func (ix *Index) Lookup(key string) (string, bool) {
	fold := strings.ToUpper(key)
	i := sort.Search(len(ix.entries), func(i int) bool {
		return ix.entries[i].fold >= fold
	})
	if i < len(ix.entries) && ix.entries[i].fold == fold {
		return ix.entries[i].id, true
	}
	return "", false
}

// Insert adds a key/id pair at its sorted position. Inserting a key
// that already exists (case-insensitively) replaces its id; uniqueness
// is the invariant, and the caller checks before inserting anyway.
func (ix *Index) Insert(key, id string) {
	fold := strings.ToUpper(key)
	i := sort.Search(len(ix.entries), func(i int) bool {
		return ix.entries[i].fold >= fold
	})
	if i < len(ix.entries) && ix.entries[i].fold == fold {
		ix.entries[i] = indexEntry{fold: fold, key: key, id: id}
		return
	}
	ix.entries = append(ix.entries, indexEntry{})
	copy(ix.entries[i+1:], ix.entries[i:])
	ix.entries[i] = indexEntry{fold: fold, key: key, id: id}
}

// Len returns the number of indexed keys.
func (ix *Index) Len() int { return len(ix.entries) }
