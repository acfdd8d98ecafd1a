package engo

import (
	"image/color"
	"math"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/excaliburjs/excalibur-dist-sub002/pkg/collision"
	"github.com/excaliburjs/excalibur-dist-sub002/pkg/physics"
)

const (
	edgeThickness = 2
	pointSize     = 4
)

// renderSink receives the entities to draw. *common.RenderSystem satisfies it.
type renderSink interface {
	Add(basic *ecs.BasicEntity, render *common.RenderComponent, space *common.SpaceComponent)
	Remove(basic ecs.BasicEntity)
}

type drawn struct {
	basic  ecs.BasicEntity
	render common.RenderComponent
	space  common.SpaceComponent
}

// DebugRenderer implements render.Renderer on top of an engo render system.
// Every body keeps one entity for as long as it is rendered each frame; the
// dynamic tree overlay draws node bounds from a reusable pool.
type DebugRenderer struct {
	sink renderSink

	bodies map[uint64]*drawn
	seen   map[uint64]bool

	nodes     []*drawn
	usedNodes int
}

// NewDebugRenderer creates a renderer adding its entities to sink
func NewDebugRenderer(sink renderSink) *DebugRenderer {
	return &DebugRenderer{
		sink:   sink,
		bodies: make(map[uint64]*drawn),
		seen:   make(map[uint64]bool),
	}
}

// Clear implements render.Renderer
func (r *DebugRenderer) Clear() {
	clear(r.seen)
	r.usedNodes = 0
}

// RenderBody implements render.Renderer
func (r *DebugRenderer) RenderBody(body *collision.Body) {
	if body == nil {
		return
	}
	id := body.ID()
	d, ok := r.bodies[id]
	if !ok {
		d = &drawn{basic: ecs.NewBasic()}
		r.bodies[id] = d
		r.sink.Add(&d.basic, &d.render, &d.space)
	}
	r.seen[id] = true

	d.render.Drawable, d.space = bodyGeometry(body)
	d.render.Color = ColorFor(body.Collider.Type)
	d.render.Hidden = false
}

// RenderTree draws the bounds of every tree node as an outline
func (r *DebugRenderer) RenderTree(tree *collision.DynamicTree) {
	tree.Walk(func(bounds physics.BoundingBox, height int, leaf bool) {
		d := r.node()
		border := color.Color(treeBranchColor)
		if leaf {
			border = treeLeafColor
		}
		d.render.Drawable = common.Rectangle{BorderWidth: 1, BorderColor: border}
		d.render.Color = color.Transparent
		d.render.Hidden = false
		d.space = boxSpace(bounds)
	})
}

func (r *DebugRenderer) node() *drawn {
	if r.usedNodes == len(r.nodes) {
		d := &drawn{basic: ecs.NewBasic()}
		r.nodes = append(r.nodes, d)
		r.sink.Add(&d.basic, &d.render, &d.space)
	}
	d := r.nodes[r.usedNodes]
	r.usedNodes++
	return d
}

// Present implements render.Renderer. Bodies that were not rendered since the
// last Clear are removed and unused overlay nodes are hidden.
func (r *DebugRenderer) Present() error {
	for id, d := range r.bodies {
		if !r.seen[id] {
			r.sink.Remove(d.basic)
			delete(r.bodies, id)
		}
	}
	for _, d := range r.nodes[r.usedNodes:] {
		d.render.Hidden = true
	}
	return nil
}

// bodyGeometry maps the world geometry of a body onto an engo drawable and its space
func bodyGeometry(body *collision.Body) (common.Drawable, common.SpaceComponent) {
	switch shape := body.Collider.Shape().(type) {
	case *collision.Circle:
		c := shape.Center()
		return common.Circle{}, common.SpaceComponent{
			Position: point(physics.Vector2D{X: c.X - shape.Radius, Y: c.Y - shape.Radius}),
			Width:    float32(2 * shape.Radius),
			Height:   float32(2 * shape.Radius),
		}
	case *collision.Polygon:
		bounds := shape.Bounds()
		return common.ComplexTriangles{Points: fanTriangles(shape.Vertices(), bounds)}, boxSpace(bounds)
	case *collision.Edge:
		line := shape.WorldLine()
		edge := line.Edge()
		return common.Rectangle{}, common.SpaceComponent{
			Position: point(line.Begin),
			Width:    float32(line.Length()),
			Height:   edgeThickness,
			Rotation: float32(math.Atan2(edge.Y, edge.X) * 180 / math.Pi),
		}
	default:
		return common.Rectangle{}, common.SpaceComponent{
			Position: point(body.Pos.Sub(physics.Vector2D{X: pointSize / 2, Y: pointSize / 2})),
			Width:    pointSize,
			Height:   pointSize,
		}
	}
}

// fanTriangles triangulates a convex polygon from its first vertex, in
// coordinates relative to bounds as engo.ComplexTriangles expects
func fanTriangles(vertices []physics.Vector2D, bounds physics.BoundingBox) []engo.Point {
	if len(vertices) < 3 {
		return nil
	}
	w, h := bounds.Width(), bounds.Height()
	rel := func(v physics.Vector2D) engo.Point {
		var p engo.Point
		if w > 0 {
			p.X = float32((v.X - bounds.Left) / w)
		}
		if h > 0 {
			p.Y = float32((v.Y - bounds.Top) / h)
		}
		return p
	}

	points := make([]engo.Point, 0, 3*(len(vertices)-2))
	for i := 1; i < len(vertices)-1; i++ {
		points = append(points, rel(vertices[0]), rel(vertices[i]), rel(vertices[i+1]))
	}
	return points
}

func boxSpace(b physics.BoundingBox) common.SpaceComponent {
	return common.SpaceComponent{
		Position: point(physics.Vector2D{X: b.Left, Y: b.Top}),
		Width:    float32(b.Width()),
		Height:   float32(b.Height()),
	}
}

func point(v physics.Vector2D) engo.Point {
	return engo.Point{X: float32(v.X), Y: float32(v.Y)}
}

var (
	backgroundColor = color.RGBA{R: 16, G: 16, B: 24, A: 255}
	activeColor     = color.RGBA{R: 80, G: 160, B: 255, A: 255}
	fixedColor      = color.RGBA{R: 160, G: 160, B: 160, A: 255}
	passiveColor    = color.RGBA{R: 255, G: 220, B: 0, A: 128}
	preventColor    = color.RGBA{R: 90, G: 90, B: 90, A: 96}
	treeLeafColor   = color.RGBA{R: 0, G: 255, B: 0, A: 160}
	treeBranchColor = color.RGBA{R: 255, G: 0, B: 255, A: 96}
)

// ColorFor returns the fill color of a collision type
func ColorFor(t collision.CollisionType) color.Color {
	switch t {
	case collision.Active:
		return activeColor
	case collision.Fixed:
		return fixedColor
	case collision.Passive:
		return passiveColor
	default:
		return preventColor
	}
}
