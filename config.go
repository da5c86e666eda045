package quad

import (
	"fmt"
	"math"

	"github.com/gogpu/quad/internal/batch"
	"github.com/gogpu/quad/internal/tess"
	"github.com/gogpu/quad/resource"
)

// Config holds Graphics settings.
type Config struct {
	// MaxBatchVertices caps the vertices of one draw call. At most 65535.
	MaxBatchVertices int

	// Tolerance is the maximum distance in pixels between a curve and
	// its tessellation.
	Tolerance float64

	// FontSize is the initial font size in logical pixels.
	FontSize float64

	// Resource configures textures and the glyph atlas.
	Resource resource.Config
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		MaxBatchVertices: batch.MaxVertices,
		Tolerance:        tess.DefaultTolerance,
		FontSize:         16,
		Resource:         resource.DefaultConfig(),
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.MaxBatchVertices < 3 || c.MaxBatchVertices > batch.MaxVertices {
		return &ConfigError{Field: "MaxBatchVertices", Reason: fmt.Sprintf("%d not in [3, %d]", c.MaxBatchVertices, batch.MaxVertices)}
	}
	if !(c.Tolerance > 0) || math.IsInf(c.Tolerance, 0) {
		return &ConfigError{Field: "Tolerance", Reason: "must be positive"}
	}
	if !(c.FontSize > 0) || math.IsInf(c.FontSize, 0) {
		return &ConfigError{Field: "FontSize", Reason: "must be positive"}
	}
	if err := c.Resource.Validate(); err != nil {
		return fmt.Errorf("quad: resource config: %w", err)
	}
	return nil
}
