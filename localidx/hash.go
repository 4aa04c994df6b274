// ════════════════════════════════════════════════════════════════════════════════════════════════
// ⚡ ROBIN HOOD LABEL INDEX
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Crab Cups Ring Simulator
// Component: Label → Handle Hash Map
//
// Description:
//   Open-addressing hash map using Robin Hood hashing, mapping non-zero uint32 labels to
//   uint32 arena handles. Backs the ring's constant-time "find the node holding label X"
//   lookup, which the simulation performs tens of millions of times.
//
// Design Principles:
//   - Power-of-2 sizing for mask-based modulo
//   - Robin Hood displacement bounds probe distances
//   - Backward-shift deletion keeps the displacement invariant without tombstones
//   - Parallel arrays for keys and values
//   - Zero key is the empty-slot sentinel
//   - Table doubles once the load factor would exceed 1/2
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package localidx

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// TYPE DEFINITIONS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Hash implements a Robin Hood hash map for single-threaded use.
// Labels in the simulation are dense small integers, so the identity hash
// (key & mask) spreads them perfectly and no mixing step is applied.
type Hash struct {
	keys  []uint32 // Key array (0 = empty sentinel)
	vals  []uint32 // Value array (parallel to keys)
	mask  uint32   // Size mask for fast modulo operation
	count int      // Live entries
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// UTILITY FUNCTIONS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// nextPow2 calculates the smallest power of 2 greater than or equal to n.
//
//go:norace
//go:nosplit
//go:inline
func nextPow2(n int) uint32 {
	s := uint32(1)
	for s < uint32(n) {
		s <<= 1
	}
	return s
}

// distance reports how far the key stored at slot i sits from its home slot.
//
//go:norace
//go:nosplit
//go:inline
func (h *Hash) distance(k, i uint32) uint32 {
	return (i + h.mask + 1 - (k & h.mask)) & h.mask
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// CONSTRUCTOR
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// New creates a hash map with doubled capacity for load factor headroom.
// Final size is rounded up to the nearest power of 2.
func New(capacity int) *Hash {
	if capacity < 1 {
		capacity = 1
	}
	sz := nextPow2(capacity * 2)
	return &Hash{
		keys: make([]uint32, sz),
		vals: make([]uint32, sz),
		mask: sz - 1,
	}
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// QUERY OPERATIONS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Len returns the number of live entries.
//
//go:norace
//go:nosplit
//go:inline
func (h *Hash) Len() int {
	return h.count
}

// Cap returns the number of slots in the table.
//
//go:norace
//go:nosplit
//go:inline
func (h *Hash) Cap() int {
	return len(h.keys)
}

// Get retrieves a value by key with Robin Hood early termination.
//
// EARLY TERMINATION:
//
//	If we find an entry that is closer to its ideal position than our
//	current probe distance, our target key cannot exist in the table.
//
// RETURN VALUES:
//   - value: The associated value if key exists
//   - found: True if key exists, false otherwise
//
//go:norace
//go:nocheckptr
func (h *Hash) Get(key uint32) (uint32, bool) {
	if key == 0 {
		return 0, false
	}
	i := key & h.mask
	dist := uint32(0)

	for {
		k := h.keys[i]

		// Case 1: Empty slot - key not found
		if k == 0 {
			return 0, false
		}

		// Case 2: Key found - return associated value
		if k == key {
			return h.vals[i], true
		}

		// Case 3: Robin Hood early termination
		if h.distance(k, i) < dist {
			return 0, false
		}

		i = (i + 1) & h.mask
		dist++
	}
}

// Range calls fn for every live entry in slot order until fn returns false.
func (h *Hash) Range(fn func(key, val uint32) bool) {
	for i, k := range h.keys {
		if k == 0 {
			continue
		}
		if !fn(k, h.vals[i]) {
			return
		}
	}
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// MUTATION OPERATIONS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Put inserts a key-value pair using Robin Hood displacement.
//
// RETURN VALUE:
//   - For new insertions: returns val
//   - For existing keys: returns the current value without modification
//
// SAFETY REQUIREMENTS:
//   - Key must not be 0 (reserved as empty sentinel); Put ignores it and returns val
//
//go:norace
//go:nocheckptr
func (h *Hash) Put(key, val uint32) uint32 {
	if key == 0 {
		return val
	}
	if existing, ok := h.Get(key); ok {
		return existing
	}
	if (h.count+1)*2 > len(h.keys) {
		h.grow()
	}
	h.insert(key, val)
	h.count++
	return val
}

// insert places a key known to be absent. The table must have a free slot.
func (h *Hash) insert(key, val uint32) {
	i := key & h.mask
	dist := uint32(0)

	for {
		k := h.keys[i]

		if k == 0 {
			h.keys[i], h.vals[i] = key, val
			return
		}

		// Displace the occupant if it is closer to home than we are
		if kDist := h.distance(k, i); kDist < dist {
			key, h.keys[i] = h.keys[i], key
			val, h.vals[i] = h.vals[i], val
			dist = kDist
		}

		i = (i + 1) & h.mask
		dist++
	}
}

// Del removes key and reports whether it was present.
//
// BACKWARD SHIFT:
//
//	After clearing the slot, every following entry that is displaced from its
//	home slot moves back by one until an empty slot or an entry sitting at its
//	home slot is reached. This restores the Robin Hood ordering Get relies on.
//
//go:norace
//go:nocheckptr
func (h *Hash) Del(key uint32) bool {
	if key == 0 {
		return false
	}
	i := key & h.mask
	dist := uint32(0)

	for {
		k := h.keys[i]
		if k == 0 {
			return false
		}
		if k == key {
			break
		}
		if h.distance(k, i) < dist {
			return false
		}
		i = (i + 1) & h.mask
		dist++
	}

	for {
		j := (i + 1) & h.mask
		k := h.keys[j]
		if k == 0 || h.distance(k, j) == 0 {
			break
		}
		h.keys[i], h.vals[i] = k, h.vals[j]
		i = j
	}
	h.keys[i], h.vals[i] = 0, 0
	h.count--
	return true
}

// grow doubles the table and re-inserts every live entry.
func (h *Hash) grow() {
	oldKeys, oldVals := h.keys, h.vals
	sz := uint32(len(oldKeys)) << 1
	h.keys = make([]uint32, sz)
	h.vals = make([]uint32, sz)
	h.mask = sz - 1
	for i, k := range oldKeys {
		if k != 0 {
			h.insert(k, oldVals[i])
		}
	}
}
