package ecs

import "github.com/milk9111/thirdperson/ecs/component"

// Kind is any component kind, whatever its value type.
type Kind interface {
	ID() component.ComponentID
}

// IntersectEntities returns the entities present in both sets.
func IntersectEntities(a, b *SparseSet) []Entity {
	if a == nil || b == nil {
		return nil
	}
	// iterate smaller set
	if len(a.denseEntities) > len(b.denseEntities) {
		a, b = b, a
	}
	out := make([]Entity, 0, len(a.denseEntities))
	for _, e := range a.denseEntities {
		if b.Has(e) {
			out = append(out, e)
		}
	}
	return out
}

// Query returns the live entities holding every kind listed. With no kinds
// it returns nil.
func Query(w *World, kinds ...Kind) []Entity {
	if w == nil || len(kinds) == 0 {
		return nil
	}
	first := w.store(kinds[0].ID(), false)
	out := first.Entities()
	rest := kinds[1:]
	if len(rest) > 0 {
		out = IntersectEntities(first, w.store(rest[0].ID(), false))
		rest = rest[1:]
	}
	for _, k := range rest {
		if len(out) == 0 {
			return nil
		}
		other := w.store(k.ID(), false)
		kept := out[:0]
		for _, e := range out {
			if other.Has(e) {
				kept = append(kept, e)
			}
		}
		out = kept
	}
	live := out[:0]
	for _, e := range out {
		if IsAlive(w, e) {
			live = append(live, e)
		}
	}
	if len(live) == 0 {
		return nil
	}
	return live
}
