package quad

import (
	"log/slog"

	"github.com/gogpu/quad/resource"
	"github.com/gogpu/quad/text"
)

// Option configures a Graphics or Bridge during creation.
//
// Example:
//
//	g, err := quad.NewGraphics(dev,
//	    quad.WithLogger(logger),
//	    quad.WithMaxBatchVertices(16384),
//	)
type Option func(*options)

type options struct {
	cfg        Config
	logger     *slog.Logger
	engine     text.Engine
	rasterizer text.Rasterizer
	surface    *SurfaceConfig
}

func defaultOptions() options {
	return options{cfg: DefaultConfig()}
}

// WithConfig replaces the whole configuration. Options applied after it
// still modify individual fields.
func WithConfig(c Config) Option {
	return func(o *options) {
		o.cfg = c
	}
}

// WithLogger sets the logger for this value and its resource manager,
// overriding the package logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithShaper sets the text shaping engine. The default is
// text.NewHarfbuzzEngine(); text.SFNTEngine{} is a lighter alternative
// for simple Latin text.
func WithShaper(e text.Engine) Option {
	return func(o *options) {
		o.engine = e
	}
}

// WithRasterizer sets the glyph rasterizer.
func WithRasterizer(r text.Rasterizer) Option {
	return func(o *options) {
		o.rasterizer = r
	}
}

// WithResourceConfig sets the texture and glyph atlas configuration.
func WithResourceConfig(c resource.Config) Option {
	return func(o *options) {
		o.cfg.Resource = c
	}
}

// WithMaxBatchVertices caps the vertex count of one draw call.
func WithMaxBatchVertices(n int) Option {
	return func(o *options) {
		o.cfg.MaxBatchVertices = n
	}
}

// WithSurface sets the initial surface configuration. Without it the
// surface matches the device size at scale 1.
func WithSurface(s SurfaceConfig) Option {
	return func(o *options) {
		o.surface = &s
	}
}
