package render

import (
	"bufio"
	"io"
	"math"
	"strings"

	"github.com/excaliburjs/excalibur-dist-sub002/pkg/collision"
	"github.com/excaliburjs/excalibur-dist-sub002/pkg/physics"
)

const clearScreen = "\033[H\033[2J"

// TerminalRenderer provides a simple ASCII rendering of bodies for terminals.
// Every cell covers scale world units; a cell is painted when its center lies
// inside a shape.
type TerminalRenderer struct {
	out       io.Writer
	width     int
	height    int
	buffer    [][]rune
	scale     float64
	centerPos physics.Vector2D
	// ClearScreen emits the ANSI clear sequence before every frame
	ClearScreen bool
}

// NewTerminalRenderer creates a new terminal renderer with the specified dimensions
func NewTerminalRenderer(out io.Writer, width, height int, scale float64) *TerminalRenderer {
	if scale <= 0 {
		scale = 1
	}
	buffer := make([][]rune, height)
	for i := range buffer {
		buffer[i] = make([]rune, width)
	}

	r := &TerminalRenderer{
		out:    out,
		width:  width,
		height: height,
		buffer: buffer,
		scale:  scale,
	}
	r.Clear()
	return r
}

// SetCenter sets the world position shown in the middle of the view
func (r *TerminalRenderer) SetCenter(pos physics.Vector2D) {
	r.centerPos = pos
}

func (r *TerminalRenderer) worldToScreen(pos physics.Vector2D) (int, int) {
	screenX := int(math.Floor((pos.X-r.centerPos.X)/r.scale + float64(r.width)/2))
	screenY := int(math.Floor((pos.Y-r.centerPos.Y)/r.scale + float64(r.height)/2))
	return screenX, screenY
}

// cellCenter is the world position sampled for cell (x, y)
func (r *TerminalRenderer) cellCenter(x, y int) physics.Vector2D {
	return physics.Vector2D{
		X: (float64(x)+0.5-float64(r.width)/2)*r.scale + r.centerPos.X,
		Y: (float64(y)+0.5-float64(r.height)/2)*r.scale + r.centerPos.Y,
	}
}

func (r *TerminalRenderer) plot(x, y int, symbol rune) {
	if x >= 0 && x < r.width && y >= 0 && y < r.height {
		r.buffer[y][x] = symbol
	}
}

// Clear implements Renderer
func (r *TerminalRenderer) Clear() {
	for y := range r.buffer {
		for x := range r.buffer[y] {
			r.buffer[y][x] = ' '
		}
	}
}

// RenderBody implements Renderer
func (r *TerminalRenderer) RenderBody(body *collision.Body) {
	if body == nil {
		return
	}
	symbol := Symbol(body.Collider)

	shape := body.Collider.Shape()
	if shape == nil {
		x, y := r.worldToScreen(body.Pos)
		r.plot(x, y, symbol)
		return
	}

	if edge, ok := shape.(*collision.Edge); ok {
		r.renderLine(edge.WorldLine(), symbol)
		return
	}

	bounds := shape.Bounds()
	minX, minY := r.worldToScreen(physics.Vector2D{X: bounds.Left, Y: bounds.Top})
	maxX, maxY := r.worldToScreen(physics.Vector2D{X: bounds.Right, Y: bounds.Bottom})
	painted := false
	for y := max(minY, 0); y <= min(maxY, r.height-1); y++ {
		for x := max(minX, 0); x <= min(maxX, r.width-1); x++ {
			if shape.Contains(r.cellCenter(x, y)) {
				r.buffer[y][x] = symbol
				painted = true
			}
		}
	}
	// shapes smaller than a cell still show up
	if !painted {
		x, y := r.worldToScreen(shape.Center())
		r.plot(x, y, symbol)
	}
}

func (r *TerminalRenderer) renderLine(line physics.Line, symbol rune) {
	steps := int(math.Ceil(line.Length()/r.scale*2)) + 1
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		p := line.Begin.Add(line.End.Sub(line.Begin).Scale(t))
		x, y := r.worldToScreen(p)
		r.plot(x, y, symbol)
	}
}

// Present implements Renderer
func (r *TerminalRenderer) Present() error {
	w := bufio.NewWriter(r.out)
	if r.ClearScreen {
		w.WriteString(clearScreen)
	}

	border := "+" + strings.Repeat("-", r.width) + "+\n"
	w.WriteString(border)
	for y := range r.buffer {
		w.WriteByte('|')
		w.WriteString(string(r.buffer[y]))
		w.WriteString("|\n")
	}
	w.WriteString(border)
	return w.Flush()
}

// Symbol picks the character a collider is drawn with
func Symbol(c *collision.Collider) rune {
	if c.Type == collision.Fixed {
		return '#'
	}
	if c.Type == collision.Passive {
		return ':'
	}
	shape := c.Shape()
	if shape == nil {
		return '?'
	}
	switch shape.Kind() {
	case collision.KindCircle:
		return 'o'
	case collision.KindPolygon:
		return '+'
	default:
		return '='
	}
}
