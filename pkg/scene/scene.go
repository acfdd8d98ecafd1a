// Package scene loads sandbox scenes: named lists of bodies with their shape,
// collision type, material and initial motion, written in YAML or JSON.
package scene

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/excaliburjs/excalibur-dist-sub002/pkg/collision"
	"github.com/excaliburjs/excalibur-dist-sub002/pkg/config"
	"github.com/excaliburjs/excalibur-dist-sub002/pkg/physics"
)

// ErrInvalidScene is wrapped by every scene validation failure
var ErrInvalidScene = errors.New("invalid scene")

//go:embed default.yaml
var defaultScene []byte

// Scene is the root of a scene file
type Scene struct {
	Name   string     `json:"name" yaml:"name"`
	Groups []string   `json:"groups,omitempty" yaml:"groups,omitempty"`
	Bodies []BodySpec `json:"bodies" yaml:"bodies"`
}

// ShapeSpec describes collider geometry. Kind is circle, box, polygon or edge.
type ShapeSpec struct {
	Kind   string             `json:"kind" yaml:"kind"`
	Radius float64            `json:"radius,omitempty" yaml:"radius,omitempty"`
	Width  float64            `json:"width,omitempty" yaml:"width,omitempty"`
	Height float64            `json:"height,omitempty" yaml:"height,omitempty"`
	Anchor *physics.Vector2D  `json:"anchor,omitempty" yaml:"anchor,omitempty"`
	Points []physics.Vector2D `json:"points,omitempty" yaml:"points,omitempty"`
	Begin  physics.Vector2D   `json:"begin,omitempty" yaml:"begin,omitempty"`
	End    physics.Vector2D   `json:"end,omitempty" yaml:"end,omitempty"`
	Offset physics.Vector2D   `json:"offset,omitempty" yaml:"offset,omitempty"`
}

// Repeat stamps a body Count times, each copy moved by Step from the previous
type Repeat struct {
	Count int              `json:"count" yaml:"count"`
	Step  physics.Vector2D `json:"step" yaml:"step"`
}

// BodySpec describes one body, or a row of identical bodies with Repeat
type BodySpec struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	Type string `json:"type" yaml:"type"`
	// Group names one of Scene.Groups; empty collides with everything
	Group string    `json:"group,omitempty" yaml:"group,omitempty"`
	Shape ShapeSpec `json:"shape" yaml:"shape"`

	Pos             physics.Vector2D `json:"pos" yaml:"pos"`
	Vel             physics.Vector2D `json:"vel,omitempty" yaml:"vel,omitempty"`
	Acc             physics.Vector2D `json:"acc,omitempty" yaml:"acc,omitempty"`
	Rotation        float64          `json:"rotation,omitempty" yaml:"rotation,omitempty"`
	AngularVelocity float64          `json:"angularVelocity,omitempty" yaml:"angularVelocity,omitempty"`

	Mass       *float64 `json:"mass,omitempty" yaml:"mass,omitempty"`
	Friction   *float64 `json:"friction,omitempty" yaml:"friction,omitempty"`
	Bounciness *float64 `json:"bounciness,omitempty" yaml:"bounciness,omitempty"`

	Repeat *Repeat `json:"repeat,omitempty" yaml:"repeat,omitempty"`
}

// Load reads a scene file, choosing JSON or YAML by extension
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	return Parse(data, ext == ".json")
}

// Default returns the built-in scene: a floor, two walls, a stack of crates
// and a few balls
func Default() *Scene {
	s, err := Parse(defaultScene, false)
	if err != nil {
		panic(fmt.Sprintf("built-in scene is invalid: %v", err))
	}
	return s
}

// Parse decodes and validates a scene document
func Parse(data []byte, isJSON bool) (*Scene, error) {
	s := &Scene{}
	var err error
	if isJSON {
		err = json.Unmarshal(data, s)
	} else {
		err = yaml.Unmarshal(data, s)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse scene: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the parts of a scene that do not need shape construction
func (s *Scene) Validate() error {
	if len(s.Groups) > collision.MaxGroups {
		return fmt.Errorf("%w: %d groups, at most %d are supported", ErrInvalidScene, len(s.Groups), collision.MaxGroups)
	}
	groups := make(map[string]bool, len(s.Groups))
	for _, g := range s.Groups {
		if groups[g] {
			return fmt.Errorf("%w: group %q declared twice", ErrInvalidScene, g)
		}
		groups[g] = true
	}

	for i, b := range s.Bodies {
		if _, err := collision.ParseCollisionType(b.Type); err != nil {
			return fmt.Errorf("%w: body %s: %w", ErrInvalidScene, b.label(i), err)
		}
		if b.Group != "" && !groups[b.Group] {
			return fmt.Errorf("%w: body %s: undeclared group %q", ErrInvalidScene, b.label(i), b.Group)
		}
		if b.Repeat != nil && b.Repeat.Count < 1 {
			return fmt.Errorf("%w: body %s: repeat count must be at least 1", ErrInvalidScene, b.label(i))
		}
	}
	return nil
}

func (b BodySpec) label(i int) string {
	if b.Name != "" {
		return fmt.Sprintf("%q", b.Name)
	}
	return fmt.Sprintf("#%d", i)
}

// Build creates the bodies of the scene configured with cfg
func (s *Scene) Build(cfg config.PhysicsConfig) ([]*collision.Body, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	manager := collision.NewGroupManager()
	for _, name := range s.Groups {
		if _, err := manager.Create(name); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidScene, err)
		}
	}

	var bodies []*collision.Body
	for i, spec := range s.Bodies {
		count, step := 1, physics.Vector2D{}
		if spec.Repeat != nil {
			count, step = spec.Repeat.Count, spec.Repeat.Step
		}
		for n := 0; n < count; n++ {
			body, err := spec.build(cfg, manager, spec.Pos.Add(step.Scale(float64(n))))
			if err != nil {
				return nil, fmt.Errorf("%w: body %s: %w", ErrInvalidScene, spec.label(i), err)
			}
			bodies = append(bodies, body)
		}
	}
	return bodies, nil
}

func (b BodySpec) build(cfg config.PhysicsConfig, groups *collision.GroupManager, pos physics.Vector2D) (*collision.Body, error) {
	shape, err := b.Shape.build()
	if err != nil {
		return nil, err
	}
	typ, err := collision.ParseCollisionType(b.Type)
	if err != nil {
		return nil, err
	}

	collider := collision.NewCollider(shape)
	collider.Type = typ
	if b.Group != "" {
		collider.Group, _ = groups.Get(b.Group)
	}
	if b.Mass != nil {
		collider.SetMass(*b.Mass)
	}
	if b.Friction != nil {
		collider.Friction = *b.Friction
	}
	if b.Bounciness != nil {
		collider.Bounciness = *b.Bounciness
	}

	body, err := collision.NewBody(collision.BodyOptions{
		Collider: collider,
		Config:   &cfg,
		Pos:      pos,
		Vel:      b.Vel,
		Acc:      b.Acc,
		Rotation: b.Rotation,
	})
	if err != nil {
		return nil, err
	}
	body.AngularVelocity = b.AngularVelocity
	return body, nil
}

func (s ShapeSpec) build() (collision.Shape, error) {
	var (
		shape collision.Shape
		err   error
	)
	switch strings.ToLower(s.Kind) {
	case "circle":
		shape, err = collision.NewCircle(s.Radius, s.Offset)
	case "box":
		anchor := physics.Vector2D{X: 0.5, Y: 0.5}
		if s.Anchor != nil {
			anchor = *s.Anchor
		}
		shape, err = collision.NewBox(s.Width, s.Height, anchor, s.Offset)
	case "polygon":
		shape, err = collision.NewPolygon(s.Points, s.Offset)
	case "edge":
		shape, err = collision.NewEdge(s.Begin, s.End)
	case "":
		// a body without geometry
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown shape kind %q", s.Kind)
	}
	if err != nil {
		return nil, err
	}
	return shape, nil
}
