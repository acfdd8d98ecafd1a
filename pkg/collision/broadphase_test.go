package collision

import (
	"context"
	"testing"

	"github.com/excaliburjs/excalibur-dist-sub002/pkg/config"
	"github.com/excaliburjs/excalibur-dist-sub002/pkg/event"
	"github.com/excaliburjs/excalibur-dist-sub002/pkg/physics"
)

// step runs one frame of the pipeline without resolution
func step(t *testing.T, bp *DynamicTreeBroadphase, bodies []*Body) (started, ended int) {
	t.Helper()
	ctx := context.Background()
	bp.Update(ctx, bodies)
	pairs := bp.Broadphase(ctx, bodies, 16, nil)
	contacts, err := bp.Narrowphase(pairs, nil)
	if err != nil {
		t.Fatalf("Narrowphase() failed: %v", err)
	}
	return bp.RunCollisionStartEnd(contacts)
}

func TestBroadphase_FindsCandidatePairs(t *testing.T) {
	bp := NewDynamicTreeBroadphase(config.DefaultPhysicsConfig(), nil)
	a := newTestBody(t, Active, mustBox(t, 10, 10), vec(0, 0))
	b := newTestBody(t, Active, mustBox(t, 10, 10), vec(8, 0))
	c := newTestBody(t, Fixed, mustBox(t, 10, 10), vec(16, 0))
	far := newTestBody(t, Active, mustBox(t, 10, 10), vec(300, 0))
	ghost := newTestBody(t, PreventCollision, mustBox(t, 10, 10), vec(0, 0))
	bodies := []*Body{a, b, c, far, ghost}
	for _, body := range bodies {
		bp.Track(body)
	}

	var stats FrameStats
	pairs := bp.Broadphase(context.Background(), bodies, 16, &stats)
	ids := make(map[string]bool)
	for _, p := range pairs {
		if ids[p.ID] {
			t.Errorf("pair %s reported twice", p.ID)
		}
		ids[p.ID] = true
	}

	for _, expected := range []string{PairHash(a.Collider, b.Collider), PairHash(b.Collider, c.Collider)} {
		if !ids[expected] {
			t.Errorf("missing pair %s", expected)
		}
	}
	if ids[PairHash(a.Collider, ghost.Collider)] {
		t.Error("a PreventCollision body produced a pair")
	}
	if stats.Pairs != len(pairs) {
		t.Errorf("stats.Pairs = %d, expected %d", stats.Pairs, len(pairs))
	}

	contacts, err := bp.Narrowphase(pairs, &stats)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range contacts {
		if p.Collision == nil {
			t.Errorf("Narrowphase() returned %s without a contact", p.ID)
		}
	}
	if stats.Collisions != len(contacts) {
		t.Errorf("stats.Collisions = %d, expected %d", stats.Collisions, len(contacts))
	}
}

func TestBroadphase_FixedPairsAreSkipped(t *testing.T) {
	bp := NewDynamicTreeBroadphase(config.DefaultPhysicsConfig(), nil)
	a := newTestBody(t, Fixed, mustBox(t, 10, 10), vec(0, 0))
	b := newTestBody(t, Fixed, mustBox(t, 10, 10), vec(5, 0))
	bp.Track(a)
	bp.Track(b)

	if pairs := bp.Broadphase(context.Background(), []*Body{a, b}, 16, nil); len(pairs) != 0 {
		t.Errorf("two overlapping Fixed bodies produced %d pairs", len(pairs))
	}
}

func TestBroadphase_FastBodySnapsToSurface(t *testing.T) {
	tests := []struct {
		name   string
		offset physics.Vector2D
	}{
		{"centered shape", vec(0, 0)},
		{"shape offset ahead of the body", vec(20, 0)},
		{"shape offset behind the body", vec(-5, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bp := NewDynamicTreeBroadphase(config.DefaultPhysicsConfig(), nil)

			// 16ms at 1000 units/s carried the shape from x=0 through the wall to x=16
			shape, err := NewBox(10, 10, center, tt.offset)
			if err != nil {
				t.Fatal(err)
			}
			bullet := newTestBody(t, Active, shape, vec(16, 0).Sub(tt.offset))
			bullet.OldPos = tt.offset.Negate()
			bullet.Vel = vec(1000, 0)

			wall := newTestBody(t, Fixed, mustBox(t, 1, 100), vec(7.5, 0))
			bodies := []*Body{bullet, wall}
			for _, body := range bodies {
				bp.Track(body)
			}

			var stats FrameStats
			pairs := bp.Broadphase(context.Background(), bodies, 16, &stats)

			if stats.FastBodies != 1 || stats.FastBodyCollisions != 1 {
				t.Errorf("stats = %+v, expected one fast body and one hit", stats)
			}
			if len(pairs) != 1 || pairs[0].ID != PairHash(bullet.Collider, wall.Collider) {
				t.Fatalf("Broadphase() = %v, expected the bullet and wall pair", pairs)
			}
			// leading face at the wall surface plus twice the surface epsilon
			if want := vec(2.2, 0).Sub(tt.offset); !bullet.Pos.Equals(want, 1e-9) {
				t.Errorf("bullet.Pos = %v, expected %v", bullet.Pos, want)
			}
			if got := bullet.Collider.Bounds().Right; got > 7+2*bp.cfg.SurfaceEpsilon+1e-9 {
				t.Errorf("leading face at x=%v passed the wall surface", got)
			}

			contacts, err := bp.Narrowphase(pairs, nil)
			if err != nil {
				t.Fatal(err)
			}
			if len(contacts) != 1 {
				t.Fatal("snapped bullet does not touch the wall")
			}
			resolved := bp.Resolve(contacts, 16, config.StrategyBox)
			if len(resolved) != 1 {
				t.Fatalf("Resolve() returned %d pairs", len(resolved))
			}
			// the settling integration after resolution may creep back by less than epsilon
			depth := bullet.Collider.Bounds().Right - wall.Collider.Bounds().Left
			if depth > bp.cfg.SurfaceEpsilon/2 {
				t.Errorf("bullet still %v inside the wall", depth)
			}
		})
	}
}

func TestBroadphase_SlowBodiesAreNotCast(t *testing.T) {
	cfg := config.DefaultPhysicsConfig()
	bp := NewDynamicTreeBroadphase(cfg, nil)
	body := newTestBody(t, Active, mustBox(t, 10, 10), vec(1, 0))
	body.OldPos = vec(0, 0)
	body.Vel = vec(60, 0)
	bp.Track(body)

	var stats FrameStats
	bp.Broadphase(context.Background(), []*Body{body}, 16, &stats)
	if stats.FastBodies != 0 {
		t.Errorf("a body moving %v per step was treated as fast", 60*0.016)
	}

	cfg.DisableMinimumSpeedForFastBody = true
	bp = NewDynamicTreeBroadphase(cfg, nil)
	bp.Track(body)
	bp.Broadphase(context.Background(), []*Body{body}, 16, &stats)
	if stats.FastBodies != 1 {
		t.Error("disabling the minimum speed should cast every moving body")
	}
}

func TestBroadphase_CollisionStartEnd(t *testing.T) {
	bp := NewDynamicTreeBroadphase(config.DefaultPhysicsConfig(), nil)
	a := newTestBody(t, Active, mustCircle(t, 5), vec(0, 0))
	b := newTestBody(t, Active, mustCircle(t, 5), vec(30, 0))
	bodies := []*Body{a, b}
	for _, body := range bodies {
		bp.Track(body)
	}

	counts := map[*Collider]map[event.Type]int{
		a.Collider: {},
		b.Collider: {},
	}
	for _, c := range []*Collider{a.Collider, b.Collider} {
		c := c
		for _, typ := range []event.Type{event.CollisionStart, event.CollisionEnd} {
			typ := typ
			c.On(typ, func(e event.Event) {
				if e.GetSource() != c {
					t.Errorf("event for %d delivered to %d", e.GetSource().(*Collider).ID(), c.ID())
				}
				counts[c][typ]++
			})
		}
	}

	frames := []struct {
		name    string
		posB    float64
		started int
		ended   int
	}{
		{name: "separated", posB: 30, started: 0, ended: 0},
		{name: "overlapping", posB: 8, started: 1, ended: 0},
		{name: "still_overlapping", posB: 7, started: 0, ended: 0},
		{name: "separated_again", posB: 30, started: 0, ended: 1},
		{name: "stays_apart", posB: 31, started: 0, ended: 0},
	}
	for _, f := range frames {
		b.Pos = vec(f.posB, 0)
		started, ended := step(t, bp, bodies)
		if started != f.started || ended != f.ended {
			t.Errorf("%s: started %d ended %d, expected %d and %d", f.name, started, ended, f.started, f.ended)
		}
	}

	for c, got := range counts {
		if got[event.CollisionStart] != 1 || got[event.CollisionEnd] != 1 {
			t.Errorf("collider %d saw %v, expected one start and one end", c.ID(), got)
		}
	}
}

func TestBroadphase_ForgetDropsPairs(t *testing.T) {
	bp := NewDynamicTreeBroadphase(config.DefaultPhysicsConfig(), nil)
	a := newTestBody(t, Active, mustCircle(t, 5), vec(0, 0))
	b := newTestBody(t, Active, mustCircle(t, 5), vec(8, 0))
	bodies := []*Body{a, b}
	for _, body := range bodies {
		bp.Track(body)
	}

	if started, _ := step(t, bp, bodies); started != 1 {
		t.Fatalf("started = %d, expected 1", started)
	}

	ended := 0
	a.Collider.On(event.CollisionEnd, func(event.Event) { ended++ })

	bp.Untrack(b)
	bp.Forget(b)
	if _, n := step(t, bp, []*Body{a}); n != 0 || ended != 0 {
		t.Errorf("removed body still produced %d collisionend events", n)
	}
}
