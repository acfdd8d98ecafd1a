// Package render draws the bodies of a world for debugging. The terminal
// renderer rasterizes shapes to ASCII, the null renderer only logs.
package render

import (
	"context"

	"github.com/excaliburjs/excalibur-dist-sub002/pkg/collision"
	"github.com/excaliburjs/excalibur-dist-sub002/pkg/logging"
)

// Renderer draws one frame at a time: Clear, any number of RenderBody calls, Present.
type Renderer interface {
	Clear()
	RenderBody(body *collision.Body)
	Present() error
}

// DrawFrame renders every body as one frame
func DrawFrame(r Renderer, bodies []*collision.Body) error {
	r.Clear()
	for _, body := range bodies {
		r.RenderBody(body)
	}
	return r.Present()
}

// NullRenderer logs what it is asked to draw at debug level.
type NullRenderer struct {
	logger *logging.Logger
	frames int
	bodies int
}

// NewNullRenderer creates a NullRenderer. A nil logger discards everything.
func NewNullRenderer(logger *logging.Logger) *NullRenderer {
	if logger == nil {
		logger = logging.Discard()
	}
	return &NullRenderer{logger: logger}
}

// Clear implements Renderer.
func (d *NullRenderer) Clear() {
	d.bodies = 0
	d.logger.Debug(context.Background(), "Clear called")
}

// RenderBody implements Renderer.
func (d *NullRenderer) RenderBody(body *collision.Body) {
	ctx := context.Background()
	if body == nil {
		d.logger.Debug(ctx, "RenderBody called with nil body")
		return
	}
	d.bodies++

	shape := "none"
	if s := body.Collider.Shape(); s != nil {
		shape = s.Kind().String()
	}
	d.logger.Debug(ctx, "RenderBody called",
		"body_id", body.ID(),
		"shape", shape,
		"type", body.Collider.Type.String(),
		"x", body.Pos.X,
		"y", body.Pos.Y,
	)
}

// Present implements Renderer.
func (d *NullRenderer) Present() error {
	d.frames++
	d.logger.Debug(context.Background(), "Present called", "bodies", d.bodies)
	return nil
}

// Frames returns the number of presented frames
func (d *NullRenderer) Frames() int {
	return d.frames
}
