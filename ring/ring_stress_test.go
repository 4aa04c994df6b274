// ============================================================================
// RING CORRECTNESS VALIDATION SUITE
// ============================================================================
//
// Randomized stress testing of Ring against a slice-based reference model.
//
// Validation methodology:
//   - The model keeps labels clockwise from the cursor: model[0] is current
//   - Apply 200K randomized operations: append, add after/before, remove,
//     remove next, re-insert detached, release, set cursor
//   - Deterministic seed ensures reproducible failure cases
//   - Verify() and a full order comparison run after every operation
//
// Properties verified:
//   - Closure and pairwise link consistency
//   - Index fidelity (every label locates its own node)
//   - Cursor safety across removals
//   - No value loss: linked + detached labels are conserved until release

package ring

import (
	"math/rand"
	"slices"
	"testing"
)

const (
	stressOps   = 200_000
	stressSpace = 256 // labels drawn from [1, stressSpace]
)

type detachedNode struct {
	h Handle
	v uint32
}

func TestRingStressAgainstModel(t *testing.T) {
	rnd := rand.New(rand.NewSource(20201223))
	r := New(8) // small, so arena and index growth are exercised
	var model []uint32
	var loose []detachedNode

	freshValue := func() (uint32, bool) {
		for tries := 0; tries < 16; tries++ {
			v := uint32(rnd.Intn(stressSpace)) + 1
			if !slices.Contains(model, v) {
				return v, true
			}
		}
		return 0, false
	}
	pick := func() (int, Handle) {
		i := rnd.Intn(len(model))
		h, ok := r.Locate(model[i])
		if !ok {
			t.Fatalf("model value %d missing from ring", model[i])
		}
		return i, h
	}

	for op := 0; op < stressOps; op++ {
		switch k := rnd.Intn(8); {
		case k == 0 || len(model) == 0:
			v, ok := freshValue()
			if !ok {
				continue
			}
			if _, err := r.Append(v); err != nil {
				t.Fatalf("op %d: Append(%d): %v", op, v, err)
			}
			model = append(model, v)

		case k == 1:
			v, ok := freshValue()
			if !ok {
				continue
			}
			i, h := pick()
			if _, err := r.AddAfter(h, v); err != nil {
				t.Fatalf("op %d: AddAfter(%d): %v", op, v, err)
			}
			model = slices.Insert(model, i+1, v)

		case k == 2:
			v, ok := freshValue()
			if !ok {
				continue
			}
			i, h := pick()
			if _, err := r.AddBefore(h, v); err != nil {
				t.Fatalf("op %d: AddBefore(%d): %v", op, v, err)
			}
			if i == 0 {
				model = append(model, v)
			} else {
				model = slices.Insert(model, i, v)
			}

		case k == 3:
			i, h := pick()
			if _, err := r.RemoveNode(h); err != nil {
				t.Fatalf("op %d: RemoveNode: %v", op, err)
			}
			loose = append(loose, detachedNode{h, model[i]})
			model = slices.Delete(model, i, i+1)

		case k == 4:
			h, err := r.RemoveNext(Nil)
			if err != nil {
				t.Fatalf("op %d: RemoveNext: %v", op, err)
			}
			i := 1 % len(model)
			if r.Value(h) != model[i] {
				t.Fatalf("op %d: RemoveNext took %d; want %d", op, r.Value(h), model[i])
			}
			loose = append(loose, detachedNode{h, model[i]})
			model = slices.Delete(model, i, i+1)

		case k == 5 && len(loose) > 0:
			j := rnd.Intn(len(loose))
			d := loose[j]
			i, h := pick()
			err := r.InsertAfter(h, d.h)
			if slices.Contains(model, d.v) {
				if err == nil {
					t.Fatalf("op %d: InsertAfter of re-added value %d succeeded", op, d.v)
				}
				continue
			}
			if err != nil {
				t.Fatalf("op %d: InsertAfter(%d): %v", op, d.v, err)
			}
			model = slices.Insert(model, i+1, d.v)
			loose = slices.Delete(loose, j, j+1)

		case k == 6 && len(loose) > 0:
			j := rnd.Intn(len(loose))
			if err := r.Release(loose[j].h); err != nil {
				t.Fatalf("op %d: Release: %v", op, err)
			}
			loose = slices.Delete(loose, j, j+1)

		case k == 7:
			i, h := pick()
			if err := r.SetCurrent(h); err != nil {
				t.Fatalf("op %d: SetCurrent: %v", op, err)
			}
			model = slices.Concat(model[i:], model[:i])
		}

		if err := r.Verify(); err != nil {
			t.Fatalf("op %d: %v", op, err)
		}
		if r.Detached() != len(loose) {
			t.Fatalf("op %d: Detached() = %d; want %d", op, r.Detached(), len(loose))
		}
		if got := r.Values(); !slices.Equal(got, model) {
			t.Fatalf("op %d: order mismatch\n  ring:  %v\n  model: %v", op, got, model)
		}
		for _, d := range loose {
			if r.Value(d.h) != d.v {
				t.Fatalf("op %d: detached node %d lost value %d", op, d.h, d.v)
			}
		}
	}
}
