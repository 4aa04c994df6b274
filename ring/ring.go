// ════════════════════════════════════════════════════════════════════════════════════════════════
// Indexed Circular Ring
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Crab Cups Ring Simulator
// Component: Circular Doubly-Linked Ring With Label Index
//
// Description:
//   Circular doubly-linked list of unique uint32 labels stored in a growable arena and
//   addressed by stable handles. A Robin Hood index maps each label to its handle, so
//   navigation, removal, re-insertion and lookup by label are all constant time.
//
// Features:
//   - Handle-based links instead of pointers: no reference cycles, dense memory
//   - Explicit Empty / NonEmpty states: current == Nil iff the ring is empty
//   - Detached nodes keep their label and can be re-linked without allocation
//   - Free list recycles released arena slots
//   - Optional Observer receives pre/post mutation events
//
// Safety model:
//   - Single-threaded; callers provide external locking if they share a ring
//   - Structural misuse fails fast with sentinel errors and leaves the ring untouched
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package ring

import (
	"errors"
	"fmt"
	"strings"

	"crabring/localidx"
)

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// TYPE DEFINITIONS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Handle is a stable arena index for a ring node.
type Handle uint32

// Nil is the null handle: no node, or "use the cursor" where documented.
const Nil Handle = ^Handle(0)

type state uint8

const (
	stateFree     state = iota // on the free list
	stateLinked                // member of the cycle and indexed
	stateDetached              // removed from the cycle, still holding its label
)

// entry is one arena slot. For free slots next chains the free list.
type entry struct {
	value uint32
	next  Handle
	prev  Handle
	state state
}

var (
	ErrEmpty       = errors.New("ring: ring is empty")
	ErrDuplicate   = errors.New("ring: value already present")
	ErrZeroValue   = errors.New("ring: zero value is reserved")
	ErrNotLinked   = errors.New("ring: handle is not a linked node")
	ErrNotDetached = errors.New("ring: handle is not a detached node")
	ErrNilAnchor   = errors.New("ring: nil anchor on a non-empty ring")
	ErrFull        = errors.New("ring: arena exhausted")
)

// Ring is the indexed circular list. The zero value is not usable; call New.
type Ring struct {
	arena    []entry
	index    *localidx.Hash
	current  Handle
	freeHead Handle
	size     int
	detached int
	obs      Observer
}

// Option configures a Ring.
type Option func(*Ring)

// WithObserver installs an observer for mutation events.
func WithObserver(o Observer) Option {
	return func(r *Ring) {
		if o != nil {
			r.obs = o
		}
	}
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// CONSTRUCTOR
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// New returns an empty ring with room for capacity nodes before the arena
// or the index has to grow.
func New(capacity int, opts ...Option) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	r := &Ring{
		arena:    make([]entry, 0, capacity),
		index:    localidx.New(capacity),
		current:  Nil,
		freeHead: Nil,
		obs:      nopObserver{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// QUERY OPERATIONS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Len returns the number of linked nodes.
//
//go:norace
//go:nosplit
//go:inline
func (r *Ring) Len() int {
	return r.size
}

// Detached returns the number of nodes removed from the cycle but neither
// re-linked nor released. A non-zero value after a caller finishes a step
// means labels were dropped.
//
//go:norace
//go:nosplit
//go:inline
func (r *Ring) Detached() int {
	return r.detached
}

// Current returns the cursor, or Nil when the ring is empty.
//
//go:norace
//go:nosplit
//go:inline
func (r *Ring) Current() Handle {
	return r.current
}

// Next returns the clockwise neighbour of h, or Nil when h is not a
// linked node.
//
//go:norace
//go:inline
func (r *Ring) Next(h Handle) Handle {
	if !r.Linked(h) {
		return Nil
	}
	return r.arena[h].next
}

// Prev returns the counter-clockwise neighbour of h, or Nil when h is not a
// linked node.
//
//go:norace
//go:inline
func (r *Ring) Prev(h Handle) Handle {
	if !r.Linked(h) {
		return Nil
	}
	return r.arena[h].prev
}

// Value returns the label held by h. Detached nodes keep their label; free
// slots and handles outside the arena report 0, which is never a label.
//
//go:norace
//go:inline
func (r *Ring) Value(h Handle) uint32 {
	if int(h) >= len(r.arena) || r.arena[h].state == stateFree {
		return 0
	}
	return r.arena[h].value
}

// Locate returns the linked node holding v.
func (r *Ring) Locate(v uint32) (Handle, bool) {
	h, ok := r.index.Get(v)
	return Handle(h), ok
}

// Contains reports whether v is held by a linked node.
func (r *Ring) Contains(v uint32) bool {
	_, ok := r.index.Get(v)
	return ok
}

// Linked reports whether h addresses a node that is currently in the cycle.
func (r *Ring) Linked(h Handle) bool {
	return int(h) < len(r.arena) && r.arena[h].state == stateLinked
}

// Min returns the smallest label in the ring. It scans the index.
func (r *Ring) Min() (uint32, error) {
	if r.size == 0 {
		return 0, ErrEmpty
	}
	m := ^uint32(0)
	r.index.Range(func(k, _ uint32) bool {
		if k < m {
			m = k
		}
		return true
	})
	return m, nil
}

// Max returns the largest label in the ring. It scans the index.
func (r *Ring) Max() (uint32, error) {
	if r.size == 0 {
		return 0, ErrEmpty
	}
	var m uint32
	r.index.Range(func(k, _ uint32) bool {
		if k > m {
			m = k
		}
		return true
	})
	return m, nil
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// INTERNAL OPERATIONS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// checkValue rejects labels that can not be indexed.
func (r *Ring) checkValue(v uint32) error {
	if v == 0 {
		return ErrZeroValue
	}
	if r.Contains(v) {
		return ErrDuplicate
	}
	return nil
}

// alloc takes a slot from the free list, or extends the arena.
func (r *Ring) alloc(v uint32) (Handle, error) {
	if h := r.freeHead; h != Nil {
		e := &r.arena[h]
		r.freeHead = e.next
		e.value, e.next, e.prev, e.state = v, Nil, Nil, stateFree
		return h, nil
	}
	if uint64(len(r.arena)) >= uint64(Nil) {
		return Nil, ErrFull
	}
	r.arena = append(r.arena, entry{value: v, next: Nil, prev: Nil})
	return Handle(len(r.arena) - 1), nil
}

// establish turns an empty ring into a single self-referential node.
func (r *Ring) establish(h Handle) {
	e := &r.arena[h]
	e.next, e.prev = h, h
	r.current = h
}

// spliceAfter links h between target and target's successor.
//
// Algorithm:
//  1. h.prev = target, h.next = target.next
//  2. target.next.prev = h
//  3. target.next = h
//
// For a single-node ring target.next == target, which yields a two-node cycle.
func (r *Ring) spliceAfter(target, h Handle) {
	t := &r.arena[target]
	n := t.next
	e := &r.arena[h]
	e.prev, e.next = target, n
	r.arena[n].prev = h
	t.next = h
}

// link records h as a live member: indexed, counted, marked linked.
func (r *Ring) link(h Handle) {
	e := &r.arena[h]
	e.state = stateLinked
	r.index.Put(e.value, uint32(h))
	r.size++
}

// place links an allocated or detached node relative to target.
// Preconditions are checked by the callers.
func (r *Ring) place(target, h Handle, after bool) {
	switch {
	case r.size == 0:
		r.establish(h)
	case after:
		r.spliceAfter(target, h)
	default:
		r.spliceAfter(r.arena[target].prev, h)
	}
	r.link(h)
}

// checkAnchor validates target for an insertion.
func (r *Ring) checkAnchor(target Handle) error {
	if r.size == 0 {
		if target != Nil {
			return ErrNotLinked
		}
		return nil
	}
	if target == Nil {
		return ErrNilAnchor
	}
	if !r.Linked(target) {
		return ErrNotLinked
	}
	return nil
}

// add creates a node for v next to target.
func (r *Ring) add(target Handle, v uint32, after bool) (Handle, error) {
	if err := r.checkAnchor(target); err != nil {
		return Nil, err
	}
	if err := r.checkValue(v); err != nil {
		return Nil, err
	}
	h, err := r.alloc(v)
	if err != nil {
		return Nil, err
	}
	r.obs.BeforeMutation(OpInsert, v)
	r.place(target, h, after)
	r.obs.AfterMutation(OpInsert, v)
	return h, nil
}

// insert re-links a detached node next to target.
func (r *Ring) insert(target, h Handle, after bool) error {
	if int(h) >= len(r.arena) || r.arena[h].state != stateDetached {
		return ErrNotDetached
	}
	if err := r.checkAnchor(target); err != nil {
		return err
	}
	v := r.arena[h].value
	if r.Contains(v) {
		return ErrDuplicate
	}
	r.obs.BeforeMutation(OpRelink, v)
	r.place(target, h, after)
	r.detached--
	r.obs.AfterMutation(OpRelink, v)
	return nil
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// INSERTION
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Append adds v immediately before the cursor, the position reached last
// when walking clockwise from it. On an empty ring v becomes the only node
// and the cursor.
func (r *Ring) Append(v uint32) (Handle, error) {
	h, err := r.add(r.current, v, false)
	if err != nil {
		return Nil, fmt.Errorf("append %d: %w", v, err)
	}
	return h, nil
}

// Add inserts v immediately after the cursor.
func (r *Ring) Add(v uint32) (Handle, error) {
	h, err := r.add(r.current, v, true)
	if err != nil {
		return Nil, fmt.Errorf("add %d: %w", v, err)
	}
	return h, nil
}

// AddAfter inserts v immediately clockwise of target. target must be Nil
// exactly when the ring is empty.
func (r *Ring) AddAfter(target Handle, v uint32) (Handle, error) {
	h, err := r.add(target, v, true)
	if err != nil {
		return Nil, fmt.Errorf("add %d after %d: %w", v, target, err)
	}
	return h, nil
}

// AddBefore inserts v immediately counter-clockwise of target.
func (r *Ring) AddBefore(target Handle, v uint32) (Handle, error) {
	h, err := r.add(target, v, false)
	if err != nil {
		return Nil, fmt.Errorf("add %d before %d: %w", v, target, err)
	}
	return h, nil
}

// InsertAfter re-links the detached node h immediately clockwise of target.
// No allocation takes place; the label h held at removal is indexed again.
func (r *Ring) InsertAfter(target, h Handle) error {
	if err := r.insert(target, h, true); err != nil {
		return fmt.Errorf("insert %d after %d: %w", h, target, err)
	}
	return nil
}

// InsertBefore re-links the detached node h immediately counter-clockwise
// of target.
func (r *Ring) InsertBefore(target, h Handle) error {
	if err := r.insert(target, h, false); err != nil {
		return fmt.Errorf("insert %d before %d: %w", h, target, err)
	}
	return nil
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// REMOVAL
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// RemoveNode splices h out of the cycle and drops its index entry. The node
// becomes detached: Value(h) still answers and InsertAfter can re-link it.
// If h was the cursor, the cursor moves to h's former successor; removing
// the last node leaves the ring empty.
func (r *Ring) RemoveNode(h Handle) (Handle, error) {
	if !r.Linked(h) {
		return Nil, fmt.Errorf("remove %d: %w", h, ErrNotLinked)
	}
	e := &r.arena[h]
	r.obs.BeforeMutation(OpRemove, e.value)

	if r.size == 1 {
		r.current = Nil
	} else {
		p, n := e.prev, e.next
		r.arena[p].next = n
		r.arena[n].prev = p
		if r.current == h {
			r.current = n
		}
	}

	r.index.Del(e.value)
	e.state = stateDetached
	r.size--
	r.detached++

	r.obs.AfterMutation(OpRemove, e.value)
	return h, nil
}

// RemoveItem removes the node holding v. It returns Nil, false when v is
// not in the ring.
func (r *Ring) RemoveItem(v uint32) (Handle, bool) {
	h, ok := r.Locate(v)
	if !ok {
		return Nil, false
	}
	if _, err := r.RemoveNode(h); err != nil {
		return Nil, false
	}
	return h, true
}

// RemoveNext removes the node clockwise of from, or of the cursor when from
// is Nil. The anchor stays in place, so repeated calls peel successive
// nodes off after it.
func (r *Ring) RemoveNext(from Handle) (Handle, error) {
	if r.size == 0 {
		return Nil, fmt.Errorf("remove next: %w", ErrEmpty)
	}
	if from == Nil {
		from = r.current
	} else if !r.Linked(from) {
		return Nil, fmt.Errorf("remove next after %d: %w", from, ErrNotLinked)
	}
	return r.RemoveNode(r.arena[from].next)
}

// Release returns a detached node to the free list. Its label is gone for
// good and h may be handed out again by a later insertion.
func (r *Ring) Release(h Handle) error {
	if int(h) >= len(r.arena) || r.arena[h].state != stateDetached {
		return fmt.Errorf("release %d: %w", h, ErrNotDetached)
	}
	e := &r.arena[h]
	r.obs.BeforeMutation(OpRelease, e.value)
	v := e.value
	e.state, e.prev, e.next = stateFree, Nil, r.freeHead
	r.freeHead = h
	r.detached--
	r.obs.AfterMutation(OpRelease, v)
	return nil
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// CURSOR
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// SetCurrent moves the cursor to h, which must be linked.
func (r *Ring) SetCurrent(h Handle) error {
	if !r.Linked(h) {
		return fmt.Errorf("set current %d: %w", h, ErrNotLinked)
	}
	v := r.arena[h].value
	r.obs.BeforeMutation(OpSetCurrent, v)
	r.current = h
	r.obs.AfterMutation(OpSetCurrent, v)
	return nil
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// DIAGNOSTICS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Walk collects steps labels starting at from (the cursor when Nil),
// following next links, or prev links when backwards is set. The walk
// wraps around the cycle as often as steps demands. It returns nil when
// from is neither Nil nor a linked node.
func (r *Ring) Walk(from Handle, steps int, backwards bool) []uint32 {
	if r.size == 0 || steps <= 0 {
		return nil
	}
	if from == Nil {
		from = r.current
	} else if !r.Linked(from) {
		return nil
	}
	out := make([]uint32, 0, steps)
	for h := from; len(out) < steps; {
		e := &r.arena[h]
		out = append(out, e.value)
		if backwards {
			h = e.prev
		} else {
			h = e.next
		}
	}
	return out
}

// Values returns every label clockwise from the cursor.
func (r *Ring) Values() []uint32 {
	return r.Walk(Nil, r.size, false)
}

// Verify walks the whole cycle and checks the structural invariants:
// pairwise link consistency, closure after Len steps in both directions,
// index fidelity and the cursor's membership. It is O(n) and meant for
// tests and debugging.
func (r *Ring) Verify() error {
	if r.size != r.index.Len() {
		return fmt.Errorf("ring: size %d but index holds %d", r.size, r.index.Len())
	}
	if r.size == 0 {
		if r.current != Nil {
			return fmt.Errorf("ring: empty ring with cursor %d", r.current)
		}
		return nil
	}
	if !r.Linked(r.current) {
		return fmt.Errorf("ring: cursor %d is not linked", r.current)
	}

	h := r.current
	for i := 0; i < r.size; i++ {
		e := &r.arena[h]
		if e.state != stateLinked {
			return fmt.Errorf("ring: node %d reached after %d steps is not linked", h, i)
		}
		if r.arena[e.next].prev != h || r.arena[e.prev].next != h {
			return fmt.Errorf("ring: node %d (value %d) has inconsistent links", h, e.value)
		}
		if got, ok := r.Locate(e.value); !ok || got != h {
			return fmt.Errorf("ring: value %d indexed at %d, want %d", e.value, got, h)
		}
		h = e.next
	}
	if h != r.current {
		return fmt.Errorf("ring: cycle does not close after %d steps", r.size)
	}

	h = r.current
	for i := 0; i < r.size; i++ {
		h = r.arena[h].prev
	}
	if h != r.current {
		return fmt.Errorf("ring: reverse cycle does not close after %d steps", r.size)
	}
	return nil
}

// String renders the cursor, the size and up to the first 20 labels.
func (r *Ring) String() string {
	var b strings.Builder
	if r.size == 0 {
		return "ring(empty)"
	}
	fmt.Fprintf(&b, "ring(current=%d, len=%d) [", r.arena[r.current].value, r.size)
	for i, v := range r.Walk(Nil, min(r.size, 20), false) {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%d", v)
	}
	if r.size > 20 {
		b.WriteString(" ...")
	}
	b.WriteByte(']')
	return b.String()
}
