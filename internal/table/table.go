// Package table implements an open-addressing hash map from interned string
// keys to values, using linear probing and tombstone deletion.
//
// Keys are compared by pointer. That is only content equality because every
// key is interned before it reaches the table; FindString is the one lookup
// that compares contents, and it exists so the interner can find the
// canonical pointer.
package table

import (
	"github.com/xirelogy/azura/internal/memory"
	"github.com/xirelogy/azura/internal/value"
)

const maxLoad = 0.75

// tombstone marks a deleted slot. It is never handed out as a real key, so
// pointer comparison can't match it against a lookup.
var tombstone = value.NewObjString("", 0)

// Entry is one slot of the backing array. A nil Key is an empty slot.
type Entry struct {
	Key   *value.ObjString
	Value value.Value
}

func (e *Entry) live() bool {
	return e.Key != nil && e.Key != tombstone
}

// Table is the hash map. The zero value is an empty table.
type Table struct {
	count      int // live entries
	tombstones int
	entries    []Entry
}

// Count returns the number of live entries.
func (t *Table) Count() int { return t.count }

// Capacity returns the number of slots in the backing array.
func (t *Table) Capacity() int { return len(t.entries) }

// Get returns the value stored under key.
func (t *Table) Get(key *value.ObjString) (value.Value, bool) {
	if t.count == 0 || key == nil {
		return value.Nil(), false
	}
	e := findEntry(t.entries, key)
	if !e.live() {
		return value.Nil(), false
	}
	return e.Value, true
}

// Set stores v under key. It reports whether an existing entry was
// overwritten; a fresh key reports false.
func (t *Table) Set(key *value.ObjString, v value.Value) bool {
	if key == nil {
		return false
	}
	if float64(t.count+t.tombstones+1) > float64(len(t.entries))*maxLoad {
		t.adjustCapacity(memory.GrowCapacity(len(t.entries)))
	}

	e := findEntry(t.entries, key)
	replaced := e.live()
	if !replaced {
		if e.Key == tombstone {
			t.tombstones--
		}
		t.count++
	}
	e.Key = key
	e.Value = v
	return replaced
}

// Delete removes key, leaving a tombstone so that probe sequences running
// through the slot stay intact.
func (t *Table) Delete(key *value.ObjString) bool {
	if t.count == 0 || key == nil {
		return false
	}
	e := findEntry(t.entries, key)
	if !e.live() {
		return false
	}
	e.Key = tombstone
	e.Value = value.Bool(true)
	t.count--
	t.tombstones++
	return true
}

// Each calls fn for every live entry in slot order until fn returns false.
func (t *Table) Each(fn func(key *value.ObjString, v value.Value) bool) {
	for i := range t.entries {
		e := &t.entries[i]
		if e.live() && !fn(e.Key, e.Value) {
			return
		}
	}
}

// FindString looks up a key by content. It stops at the first truly empty
// slot; tombstones are skipped.
func (t *Table) FindString(chars string, hash uint64) *value.ObjString {
	if t.count == 0 {
		return nil
	}
	capacity := uint64(len(t.entries))
	index := hash % capacity
	for {
		e := &t.entries[index]
		switch {
		case e.Key == nil:
			return nil
		case e.Key != tombstone && e.Key.Hash() == hash && e.Key.Len() == len(chars) && e.Key.Chars() == chars:
			return e.Key
		}
		index = (index + 1) % capacity
	}
}

// Free releases the backing array.
func (t *Table) Free() {
	t.entries = nil
	t.count = 0
	t.tombstones = 0
}

// findEntry returns the slot holding key, or the slot where key should be
// inserted: the first tombstone passed on the way, else the empty slot that
// ended the probe. The load limit guarantees an empty slot exists.
func findEntry(entries []Entry, key *value.ObjString) *Entry {
	capacity := uint64(len(entries))
	index := key.Hash() % capacity
	var reuse *Entry
	for {
		e := &entries[index]
		switch {
		case e.Key == nil:
			if reuse != nil {
				return reuse
			}
			return e
		case e.Key == tombstone:
			if reuse == nil {
				reuse = e
			}
		case e.Key == key:
			return e
		}
		index = (index + 1) % capacity
	}
}

// adjustCapacity rebuilds the table into a fresh array, reinserting live
// entries in slot order and dropping tombstones.
func (t *Table) adjustCapacity(capacity int) {
	entries := make([]Entry, capacity)
	t.count = 0
	for i := range t.entries {
		old := &t.entries[i]
		if !old.live() {
			continue
		}
		dest := findEntry(entries, old.Key)
		dest.Key = old.Key
		dest.Value = old.Value
		t.count++
	}
	t.entries = entries
	t.tombstones = 0
}
