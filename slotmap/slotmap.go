// Package slotmap is a small arena keyed by generation-checked handles.
//
// Removing an entry frees its slot for reuse in O(1). Every reuse bumps the
// slot's generation, so a handle kept from before the removal is detected as
// stale instead of aliasing whatever entity now lives in that slot.
package slotmap

import "fmt"

// Key addresses one entry of a Map. The zero Key never refers to a live entry.
type Key struct {
	Index uint32
	Gen   uint32
}

// IsZero reports whether k is the zero Key.
func (k Key) IsZero() bool {
	return k.Gen == 0
}

func (k Key) String() string {
	return fmt.Sprintf("%d@%d", k.Index, k.Gen)
}

type slot[T any] struct {
	value T
	gen   uint32
	used  bool
}

// Map stores values of type T. Its zero value is an empty map.
type Map[T any] struct {
	slots []slot[T]
	free  []uint32
	live  int
}

// Insert stores v and returns its key.
func (m *Map[T]) Insert(v T) Key {
	var idx uint32
	if n := len(m.free); n > 0 {
		idx = m.free[n-1]
		m.free = m.free[:n-1]
	} else {
		idx = uint32(len(m.slots))
		m.slots = append(m.slots, slot[T]{})
	}
	s := &m.slots[idx]
	s.gen++
	s.used = true
	s.value = v
	m.live++
	return Key{Index: idx, Gen: s.gen}
}

// Get returns a pointer to the value stored under k. The pointer is only
// valid until the next Insert.
func (m *Map[T]) Get(k Key) (*T, bool) {
	if !m.Contains(k) {
		return nil, false
	}
	return &m.slots[k.Index].value, true
}

// Contains reports whether k refers to a live entry.
func (m *Map[T]) Contains(k Key) bool {
	if k.Gen == 0 || int(k.Index) >= len(m.slots) {
		return false
	}
	s := &m.slots[k.Index]
	return s.used && s.gen == k.Gen
}

// KeyAt returns the key of the live entry stored in slot index.
func (m *Map[T]) KeyAt(index uint32) (Key, bool) {
	if int(index) >= len(m.slots) || !m.slots[index].used {
		return Key{}, false
	}
	return Key{Index: index, Gen: m.slots[index].gen}, true
}

// Remove deletes the entry under k. It returns false for stale keys.
func (m *Map[T]) Remove(k Key) bool {
	if !m.Contains(k) {
		return false
	}
	s := &m.slots[k.Index]
	var zero T
	s.value = zero
	s.used = false
	m.free = append(m.free, k.Index)
	m.live--
	return true
}

// Len returns the number of live entries.
func (m *Map[T]) Len() int {
	return m.live
}

// Keys returns the keys of all live entries in slot order.
func (m *Map[T]) Keys() []Key {
	keys := make([]Key, 0, m.live)
	for i := range m.slots {
		if m.slots[i].used {
			keys = append(keys, Key{Index: uint32(i), Gen: m.slots[i].gen})
		}
	}
	return keys
}

// Each calls fn for every live entry in slot order until fn returns false.
// fn must not insert into the map.
func (m *Map[T]) Each(fn func(Key, *T) bool) {
	for i := range m.slots {
		s := &m.slots[i]
		if !s.used {
			continue
		}
		if !fn(Key{Index: uint32(i), Gen: s.gen}, &s.value) {
			return
		}
	}
}
