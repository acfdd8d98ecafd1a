package spatial

import (
	"errors"
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/excaliburjs/excalibur-dist-sub002/pkg/physics"
)

func box(x, y, w, h float64) physics.BoundingBox {
	return physics.NewBoundingBox(x, y, x+w, y+h)
}

func queryAll(tree *Tree[int], b physics.BoundingBox) []int {
	var found []int
	tree.Query(b, func(item int) bool {
		found = append(found, item)
		return false
	})
	sort.Ints(found)
	return found
}

func TestTree_Empty(t *testing.T) {
	tree := NewTree[int]()

	if tree.Len() != 0 || tree.Height() != 0 {
		t.Errorf("empty tree Len()=%d Height()=%d", tree.Len(), tree.Height())
	}
	if err := tree.Validate(); err != nil {
		t.Errorf("Validate() on empty tree: %v", err)
	}
	if got := queryAll(tree, box(0, 0, 100, 100)); len(got) != 0 {
		t.Errorf("Query() on empty tree = %v", got)
	}
	if tree.Remove(1) {
		t.Error("Remove() reported success for an unknown item")
	}
}

func TestTree_InsertQueryRemove(t *testing.T) {
	tree := NewTree[int]()
	tree.Insert(1, box(0, 0, 10, 10))
	tree.Insert(2, box(20, 0, 10, 10))
	tree.Insert(3, box(5, 5, 10, 10))

	tests := []struct {
		name     string
		query    physics.BoundingBox
		expected []int
	}{
		{name: "covers_all", query: box(-1, -1, 50, 50), expected: []int{1, 2, 3}},
		{name: "left_pair", query: box(6, 6, 1, 1), expected: []int{1, 3}},
		{name: "touching_edge", query: box(30, 10, 5, 5), expected: []int{2}},
		{name: "miss", query: box(100, 100, 1, 1), expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := queryAll(tree, tt.query)
			if len(got) != len(tt.expected) {
				t.Fatalf("Query() = %v, expected %v", got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Fatalf("Query() = %v, expected %v", got, tt.expected)
				}
			}
		})
	}

	if !tree.Remove(3) {
		t.Fatal("Remove() failed for a tracked item")
	}
	if tree.Contains(3) {
		t.Error("Contains() still true after Remove()")
	}
	if got := queryAll(tree, box(6, 6, 1, 1)); len(got) != 1 || got[0] != 1 {
		t.Errorf("Query() after Remove() = %v, expected [1]", got)
	}
	if err := tree.Validate(); err != nil {
		t.Errorf("Validate() after Remove(): %v", err)
	}
}

func TestTree_QueryEarlyExit(t *testing.T) {
	tree := NewTree[int]()
	for i := 0; i < 10; i++ {
		tree.Insert(i, box(0, 0, 1, 1))
	}

	visits := 0
	tree.Query(box(0, 0, 1, 1), func(int) bool {
		visits++
		return true
	})
	if visits != 1 {
		t.Errorf("callback ran %d times after returning true, expected 1", visits)
	}
}

func TestTree_Move(t *testing.T) {
	tree := NewTree[string]()
	tree.Insert("a", box(0, 0, 20, 20))
	tree.Insert("b", box(100, 100, 10, 10))

	if tree.Move("a", box(5, 5, 10, 10), box(0, 0, 30, 30)) {
		t.Error("Move() reinserted although the exact bounds still fit")
	}
	if got, _ := tree.Bounds("a"); got != box(0, 0, 20, 20) {
		t.Errorf("Bounds() changed on a no-op move: %v", got)
	}

	if !tree.Move("a", box(15, 15, 10, 10), box(10, 10, 20, 20)) {
		t.Error("Move() did not reinsert bounds that escaped the stored box")
	}
	if got, _ := tree.Bounds("a"); got != box(10, 10, 20, 20) {
		t.Errorf("Bounds() = %v after move", got)
	}

	if !tree.Move("c", box(0, 0, 1, 1), box(0, 0, 2, 2)) || !tree.Contains("c") {
		t.Error("Move() of an untracked item should insert it")
	}
	if err := tree.Validate(); err != nil {
		t.Error(err)
	}
}

func TestTree_RayCast(t *testing.T) {
	tree := NewTree[int]()
	tree.Insert(1, box(10, -5, 5, 10))
	tree.Insert(2, box(40, -5, 5, 10))
	tree.Insert(3, box(10, 50, 5, 5))

	ray := physics.NewRay(physics.Vector2D{}, physics.Vector2D{X: 1})

	var hits []int
	tree.RayCast(ray, 20, func(item int) bool {
		hits = append(hits, item)
		return false
	})
	if len(hits) != 1 || hits[0] != 1 {
		t.Errorf("RayCast(20) hits = %v, expected [1]", hits)
	}

	hits = hits[:0]
	tree.RayCast(ray, math.Inf(1), func(item int) bool {
		hits = append(hits, item)
		return false
	})
	sort.Ints(hits)
	if len(hits) != 2 || hits[0] != 1 || hits[1] != 2 {
		t.Errorf("RayCast(inf) hits = %v, expected [1 2]", hits)
	}
}

func TestTree_FreeListReuse(t *testing.T) {
	tree := NewTree[int]()
	for i := 0; i < 16; i++ {
		tree.Insert(i, box(float64(i)*10, 0, 5, 5))
	}
	capacity := len(tree.nodes)

	for round := 0; round < 5; round++ {
		for i := 0; i < 16; i++ {
			tree.Remove(i)
		}
		for i := 0; i < 16; i++ {
			tree.Insert(i, box(float64(i)*10, float64(round), 5, 5))
		}
	}

	if len(tree.nodes) != capacity {
		t.Errorf("node arena grew from %d to %d, freed nodes were not reused", capacity, len(tree.nodes))
	}
	if err := tree.Validate(); err != nil {
		t.Error(err)
	}
}

// TestTree_RandomOperations checks the structural invariants and query
// completeness against a brute-force scan after every mutation.
func TestTree_RandomOperations(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	tree := NewTree[int]()
	live := make(map[int]physics.BoundingBox)

	randomBox := func() physics.BoundingBox {
		return box(rng.Float64()*1000, rng.Float64()*1000, 1+rng.Float64()*50, 1+rng.Float64()*50)
	}

	for step := 0; step < 2000; step++ {
		item := rng.Intn(200)
		switch op := rng.Intn(3); {
		case op == 0:
			b := randomBox()
			tree.Insert(item, b)
			live[item] = b
		case op == 1:
			_, tracked := live[item]
			if tree.Remove(item) != tracked {
				t.Fatalf("step %d: Remove(%d) disagreed with the model", step, item)
			}
			delete(live, item)
		default:
			b := randomBox()
			tree.Move(item, b, b.Pad(3))
			if got, _ := tree.Bounds(item); !got.ContainsBox(b) {
				t.Fatalf("step %d: stored bounds %v do not contain %v", step, got, b)
			}
			live[item], _ = tree.Bounds(item)
		}

		if err := tree.Validate(); err != nil {
			t.Fatalf("step %d: %v", step, err)
		}
		if tree.Len() != len(live) {
			t.Fatalf("step %d: Len() = %d, expected %d", step, tree.Len(), len(live))
		}

		if step%50 == 0 {
			q := randomBox().Pad(100)
			var expected []int
			for id, b := range live {
				if b.Overlaps(q) {
					expected = append(expected, id)
				}
			}
			sort.Ints(expected)
			got := queryAll(tree, q)
			if len(got) != len(expected) {
				t.Fatalf("step %d: Query() = %v, expected %v", step, got, expected)
			}
			for i := range got {
				if got[i] != expected[i] {
					t.Fatalf("step %d: Query() = %v, expected %v", step, got, expected)
				}
			}
		}
	}

	if n := tree.Len(); n > 1 {
		limit := int(1.45*math.Log2(float64(n))) + 2
		if tree.Height() > limit {
			t.Errorf("Height() = %d for %d leaves, expected at most %d", tree.Height(), n, limit)
		}
	}
}

func TestTree_Walk(t *testing.T) {
	tree := NewTree[int]()
	for i := 0; i < 5; i++ {
		tree.Insert(i, box(float64(i), 0, 1, 1))
	}

	leaves, internal := 0, 0
	tree.Walk(func(_ physics.BoundingBox, _ int, leaf bool) {
		if leaf {
			leaves++
		} else {
			internal++
		}
	})
	if leaves != 5 || internal != 4 {
		t.Errorf("Walk() saw %d leaves and %d internal nodes, expected 5 and 4", leaves, internal)
	}
}

func TestTree_ValidateDetectsCorruption(t *testing.T) {
	tree := NewTree[int]()
	tree.Insert(1, box(0, 0, 1, 1))
	tree.Insert(2, box(5, 0, 1, 1))

	tree.nodes[tree.root].bounds = box(0, 0, 1, 1)
	if err := tree.Validate(); !errors.Is(err, ErrCorrupt) {
		t.Errorf("Validate() = %v, expected ErrCorrupt", err)
	}
}

func TestTree_Clear(t *testing.T) {
	tree := NewTree[int]()
	tree.Insert(1, box(0, 0, 1, 1))
	tree.Clear()

	if tree.Len() != 0 || tree.Contains(1) {
		t.Error("Clear() left items behind")
	}
	tree.Insert(2, box(0, 0, 1, 1))
	if err := tree.Validate(); err != nil {
		t.Error(err)
	}
}
