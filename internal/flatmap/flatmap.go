// Package flatmap provides the ordered path -> value table produced by
// flattening a JSON document.
//
// Keys are ordered and compared case-insensitively, but each key keeps the
// casing it was first stored with. Once built, a Map may be read from
// multiple goroutines as long as nobody writes to it.
package flatmap

import (
	"strings"
	"unicode"

	"github.com/google/btree"
)

const degree = 32

// Entry is a single path/value pair
type Entry struct {
	Key   string
	Value string
}

type item struct {
	folded string
	key    string
	value  string
}

func less(a, b item) bool {
	return a.folded < b.folded
}

// Fold returns the comparison form of key: every rune upper-cased, then
// lower-cased.
func Fold(key string) string {
	return strings.Map(func(r rune) rune {
		return unicode.ToLower(unicode.ToUpper(r))
	}, key)
}

// Map is an ordered map with case-insensitive keys
type Map struct {
	tree *btree.BTreeG[item]
}

// New creates an empty Map
func New() *Map {
	return &Map{tree: btree.NewG[item](degree, less)}
}

func searchKey(key string) item {
	return item{folded: Fold(key)}
}

// Put stores value under key. When a key equal to key (ignoring case) is
// already present, its value is replaced and its original casing is kept.
func (m *Map) Put(key, value string) {
	it := searchKey(key)
	if existing, ok := m.tree.Get(it); ok {
		existing.value = value
		m.tree.ReplaceOrInsert(existing)
		return
	}
	it.key = key
	it.value = value
	m.tree.ReplaceOrInsert(it)
}

// Get returns the value stored under key
func (m *Map) Get(key string) (string, bool) {
	it, ok := m.tree.Get(searchKey(key))
	return it.value, ok
}

// Contains reports whether key is present
func (m *Map) Contains(key string) bool {
	return m.tree.Has(searchKey(key))
}

// Delete removes key and reports whether it was present
func (m *Map) Delete(key string) bool {
	_, ok := m.tree.Delete(searchKey(key))
	return ok
}

// Floor returns the greatest stored key less than or equal to key
func (m *Map) Floor(key string) (string, bool) {
	var (
		found string
		ok    bool
	)
	m.tree.DescendLessOrEqual(searchKey(key), func(it item) bool {
		found, ok = it.key, true
		return false
	})
	return found, ok
}

// Len returns the number of entries
func (m *Map) Len() int {
	return m.tree.Len()
}

// Ascend calls fn for every entry in key order until fn returns false
func (m *Map) Ascend(fn func(key, value string) bool) {
	m.tree.Ascend(func(it item) bool {
		return fn(it.key, it.value)
	})
}

// Entries returns every entry in key order
func (m *Map) Entries() []Entry {
	entries := make([]Entry, 0, m.tree.Len())
	m.Ascend(func(key, value string) bool {
		entries = append(entries, Entry{Key: key, Value: value})
		return true
	})
	return entries
}

// Keys returns every key in order
func (m *Map) Keys() []string {
	keys := make([]string, 0, m.tree.Len())
	m.Ascend(func(key, _ string) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}
