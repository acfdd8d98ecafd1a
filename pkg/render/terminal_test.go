package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/excaliburjs/excalibur-dist-sub002/pkg/collision"
	"github.com/excaliburjs/excalibur-dist-sub002/pkg/physics"
)

// rows presents the frame and returns the lines inside the border
func rows(t *testing.T, r *TerminalRenderer, out *bytes.Buffer) []string {
	t.Helper()
	out.Reset()
	if err := r.Present(); err != nil {
		t.Fatalf("Present() error = %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	if len(lines) != r.height+2 {
		t.Fatalf("expected %d lines, got %d", r.height+2, len(lines))
	}
	inner := make([]string, 0, r.height)
	for _, line := range lines[1 : len(lines)-1] {
		inner = append(inner, strings.TrimSuffix(strings.TrimPrefix(line, "|"), "|"))
	}
	return inner
}

func TestNewTerminalRenderer_CreatesValidRenderer_WithCorrectDimensions(t *testing.T) {
	tests := []struct {
		name   string
		width  int
		height int
		scale  float64
		expect float64
	}{
		{name: "small renderer", width: 10, height: 5, scale: 1.0, expect: 1.0},
		{name: "large renderer", width: 120, height: 40, scale: 5.5, expect: 5.5},
		{name: "invalid scale", width: 4, height: 4, scale: 0, expect: 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			renderer := NewTerminalRenderer(&bytes.Buffer{}, tt.width, tt.height, tt.scale)

			if renderer.scale != tt.expect {
				t.Errorf("expected scale %f, got %f", tt.expect, renderer.scale)
			}
			if len(renderer.buffer) != tt.height {
				t.Errorf("expected buffer height %d, got %d", tt.height, len(renderer.buffer))
			}
			for i, row := range renderer.buffer {
				if len(row) != tt.width {
					t.Errorf("row %d: expected width %d, got %d", i, tt.width, len(row))
				}
				if strings.TrimSpace(string(row)) != "" {
					t.Errorf("row %d is not blank: %q", i, string(row))
				}
			}
		})
	}
}

func TestTerminalRenderer_RasterizesShapes(t *testing.T) {
	var out bytes.Buffer
	renderer := NewTerminalRenderer(&out, 10, 5, 1)

	box := newBox(t, 4.5, 3, collision.Active, physics.Vector2D{})
	if err := DrawFrame(renderer, []*collision.Body{box}); err != nil {
		t.Fatal(err)
	}

	out.Reset()
	got := rows(t, renderer, &out)
	expected := []string{
		"          ",
		"   ++++   ",
		"   ++++   ",
		"   ++++   ",
		"          ",
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("row %d = %q, expected %q", i, got[i], expected[i])
		}
	}
}

func TestTerminalRenderer_RenderBody(t *testing.T) {
	edgeShape, err := collision.NewEdge(physics.Vector2D{X: -3, Y: 0.5}, physics.Vector2D{X: 3, Y: 0.5})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		body   func(t *testing.T) *collision.Body
		row    int
		expect string
	}{
		{
			name: "tiny circle falls back to its center cell",
			body: func(t *testing.T) *collision.Body {
				return newCircle(t, 0.1, collision.Active, physics.Vector2D{})
			},
			row:    2,
			expect: "     o    ",
		},
		{
			name: "edge is sampled along its length",
			body: func(t *testing.T) *collision.Body {
				return newBody(t, edgeShape, collision.Active, physics.Vector2D{})
			},
			row:    3,
			expect: "  ======= ",
		},
		{
			name: "body outside the view is clipped",
			body: func(t *testing.T) *collision.Body {
				return newCircle(t, 1, collision.Active, physics.Vector2D{X: 50, Y: 50})
			},
			row:    2,
			expect: "          ",
		},
		{
			name: "shapeless body is a point",
			body: func(t *testing.T) *collision.Body {
				return newBody(t, nil, collision.Active, physics.Vector2D{X: -4.5, Y: -2})
			},
			row:    0,
			expect: "?         ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			renderer := NewTerminalRenderer(&out, 10, 5, 1)
			renderer.Clear()
			renderer.RenderBody(tt.body(t))

			if got := rows(t, renderer, &out)[tt.row]; got != tt.expect {
				t.Errorf("row %d = %q, expected %q", tt.row, got, tt.expect)
			}
		})
	}
}

func TestTerminalRenderer_SetCenter(t *testing.T) {
	var out bytes.Buffer
	renderer := NewTerminalRenderer(&out, 10, 5, 1)
	renderer.SetCenter(physics.Vector2D{X: 100, Y: 100})
	renderer.RenderBody(newCircle(t, 0.1, collision.Active, physics.Vector2D{X: 100, Y: 100}))

	if got := rows(t, renderer, &out)[2]; got != "     o    " {
		t.Errorf("row 2 = %q, expected the body in the middle", got)
	}
}

func TestTerminalRenderer_ClearScreen(t *testing.T) {
	var out bytes.Buffer
	renderer := NewTerminalRenderer(&out, 2, 1, 1)
	renderer.ClearScreen = true

	if err := renderer.Present(); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), clearScreen) {
		t.Errorf("expected output to start with the clear sequence, got %q", out.String())
	}
}

func TestSymbol(t *testing.T) {
	circle, _ := collision.NewCircle(1, physics.Vector2D{})
	box, _ := collision.NewBox(1, 1, center, physics.Vector2D{})

	tests := []struct {
		name     string
		shape    collision.Shape
		typ      collision.CollisionType
		expected rune
	}{
		{name: "fixed", shape: box, typ: collision.Fixed, expected: '#'},
		{name: "passive", shape: circle, typ: collision.Passive, expected: ':'},
		{name: "active circle", shape: circle, typ: collision.Active, expected: 'o'},
		{name: "active polygon", shape: box, typ: collision.Active, expected: '+'},
		{name: "no shape", typ: collision.Active, expected: '?'},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := collision.NewCollider(tt.shape)
			c.Type = tt.typ
			if got := Symbol(c); got != tt.expected {
				t.Errorf("Symbol() = %q, expected %q", got, tt.expected)
			}
		})
	}
}
