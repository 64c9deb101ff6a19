package slotmap

import "testing"

func TestInsertGetRemove(t *testing.T) {
	var m Map[string]

	a := m.Insert("a")
	b := m.Insert("b")

	if m.Len() != 2 {
		t.Fatalf("Len = %d, want 2", m.Len())
	}
	if v, ok := m.Get(a); !ok || *v != "a" {
		t.Fatalf("Get(a) = %v, %v", v, ok)
	}

	if !m.Remove(a) {
		t.Fatal("Remove(a) returned false")
	}
	if m.Remove(a) {
		t.Error("second Remove(a) should fail")
	}
	if _, ok := m.Get(a); ok {
		t.Error("Get on removed key should fail")
	}

	// The freed slot is reused with a new generation.
	c := m.Insert("c")
	if c.Index != a.Index {
		t.Errorf("slot %d not reused, got %d", a.Index, c.Index)
	}
	if c.Gen == a.Gen {
		t.Error("reused slot kept the old generation")
	}
	if m.Contains(a) {
		t.Error("stale key reported as live")
	}
	if v, _ := m.Get(b); *v != "b" {
		t.Errorf("Get(b) = %q", *v)
	}
}

func TestZeroKey(t *testing.T) {
	var m Map[int]
	m.Insert(1)
	if m.Contains(Key{}) {
		t.Error("zero key must never be live")
	}
	if !(Key{}).IsZero() {
		t.Error("IsZero on zero key")
	}
}

func TestKeysAndEach(t *testing.T) {
	var m Map[int]
	keys := make([]Key, 5)
	for i := range keys {
		keys[i] = m.Insert(i)
	}
	m.Remove(keys[1])
	m.Remove(keys[3])

	got := m.Keys()
	if len(got) != 3 {
		t.Fatalf("Keys len = %d, want 3", len(got))
	}
	for i, want := range []Key{keys[0], keys[2], keys[4]} {
		if got[i] != want {
			t.Errorf("Keys[%d] = %v, want %v", i, got[i], want)
		}
	}

	sum := 0
	m.Each(func(_ Key, v *int) bool {
		sum += *v
		return true
	})
	if sum != 0+2+4 {
		t.Errorf("Each sum = %d, want 6", sum)
	}

	visited := 0
	m.Each(func(Key, *int) bool {
		visited++
		return false
	})
	if visited != 1 {
		t.Errorf("Each visited %d entries after stop, want 1", visited)
	}
}

func TestKeyAt(t *testing.T) {
	var m Map[int]
	a := m.Insert(1)
	if k, ok := m.KeyAt(a.Index); !ok || k != a {
		t.Errorf("KeyAt = %v, %v", k, ok)
	}
	m.Remove(a)
	if _, ok := m.KeyAt(a.Index); ok {
		t.Error("KeyAt on free slot should fail")
	}
	if _, ok := m.KeyAt(99); ok {
		t.Error("KeyAt out of range should fail")
	}
}
