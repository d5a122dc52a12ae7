package fractal

// OrbitStore holds one OrbitState per pixel of the active viewport.
//
// States live in a flat row-major arena indexed by y*width + x. Invalidation
// is O(1): each slot carries the generation it was last reset in, and a slot
// from an older generation is reset lazily the next time it is read.
//
// Thread safety: OrbitStore is NOT thread-safe, but distinct pixels are
// independent. Goroutines that access disjoint pixel sets may use the store
// concurrently between invalidations.
type OrbitStore struct {
	slots  []orbitSlot
	width  int
	height int
	gen    uint32
}

type orbitSlot struct {
	state OrbitState
	gen   uint32
}

// NewOrbitStore creates a store for a width x height frame with every
// pixel in the fresh state.
func NewOrbitStore(width, height int) *OrbitStore {
	s := &OrbitStore{}
	s.Resize(width, height)
	return s
}

// Resize reallocates the arena for a new resolution. Every pixel is fresh
// afterwards. If the resolution is unchanged the store is only invalidated.
func (s *OrbitStore) Resize(width, height int) {
	width = max(width, 0)
	height = max(height, 0)
	if width == s.width && height == s.height && s.slots != nil {
		s.InvalidateAll()
		return
	}
	s.slots = make([]orbitSlot, width*height)
	s.width = width
	s.height = height
	// Generation 0 is reserved for never-touched slots.
	s.gen = 1
}

// InvalidateAll resets every pixel to the fresh state in O(1).
func (s *OrbitStore) InvalidateAll() {
	s.gen++
	if s.gen == 0 {
		// The counter wrapped: stale slots could alias the new generation.
		clear(s.slots)
		s.gen = 1
	}
}

// Get returns the state of pixel (x, y), resetting it first if it belongs
// to an older generation. It panics if (x, y) is out of range.
func (s *OrbitStore) Get(x, y int) *OrbitState {
	if x < 0 || x >= s.width || y < 0 || y >= s.height {
		panic("fractal: OrbitStore.Get out of range")
	}
	return s.At(y*s.width + x)
}

// At returns the state at row-major index idx, resetting it first if it
// belongs to an older generation.
func (s *OrbitStore) At(idx int) *OrbitState {
	slot := &s.slots[idx]
	if slot.gen != s.gen {
		slot.state = OrbitState{}
		slot.gen = s.gen
	}
	return &slot.state
}

// Width returns the frame width the store was sized for.
func (s *OrbitStore) Width() int { return s.width }

// Height returns the frame height the store was sized for.
func (s *OrbitStore) Height() int { return s.height }

// Len returns the number of pixels in the store.
func (s *OrbitStore) Len() int { return len(s.slots) }
