package unit

import "fmt"

// Arena is an insertion-ordered store of units keyed by id. It owns id
// uniqueness: a natural collision is resolved at insert time with a numeric
// suffix, so duplicate ids are never emitted. Later pipeline stages use it
// for constant-time lookup without re-traversal.
type Arena struct {
	units []*Unit
	byID  map[string]*Unit
}

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{byID: make(map[string]*Unit)}
}

// Add inserts a unit, rewriting its id with a "_N" suffix if the id is
// already taken. Returns the id actually stored.
func (a *Arena) Add(u *Unit) string {
	if _, taken := a.byID[u.ID]; taken {
		base := u.ID
		for suffix := 1; ; suffix++ {
			candidate := fmt.Sprintf("%s_%d", base, suffix)
			if _, taken := a.byID[candidate]; !taken {
				u.ID = candidate
				break
			}
		}
	}
	a.byID[u.ID] = u
	a.units = append(a.units, u)
	return u.ID
}

// Get returns the unit with the given id, or nil.
func (a *Arena) Get(id string) *Unit {
	return a.byID[id]
}

// Has reports whether an id exists in the arena.
func (a *Arena) Has(id string) bool {
	_, ok := a.byID[id]
	return ok
}

// Units returns units in insertion (document) order. The slice is shared;
// callers must not reorder it.
func (a *Arena) Units() []*Unit {
	return a.units
}

// Len returns the number of stored units.
func (a *Arena) Len() int {
	return len(a.units)
}

// Children returns the direct children of id in document order.
func (a *Arena) Children(id string) []*Unit {
	var out []*Unit
	for _, u := range a.units {
		if u.ParentID == id {
			out = append(out, u)
		}
	}
	return out
}
