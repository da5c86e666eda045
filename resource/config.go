package resource

import (
	"fmt"
	"log/slog"
)

// Config holds resource manager settings.
type Config struct {
	// InitialAtlasSize is the side of the glyph atlas texture when it is
	// first created. Must be a power of two.
	InitialAtlasSize int

	// MaxAtlasSize caps atlas growth. Must be a power of two no smaller
	// than InitialAtlasSize.
	MaxAtlasSize int

	// AtlasPadding is the empty border kept between glyphs, in pixels.
	AtlasPadding int

	// MaxTextureSize is the largest width or height accepted for user
	// textures. Decoded images larger than this are scaled down.
	MaxTextureSize int

	// Logger receives diagnostics. Nil discards them.
	Logger *slog.Logger
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		InitialAtlasSize: 256,
		MaxAtlasSize:     4096,
		AtlasPadding:     1,
		MaxTextureSize:   8192,
	}
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	if !isPow2(c.InitialAtlasSize) {
		return &ConfigError{Field: "InitialAtlasSize", Reason: fmt.Sprintf("%d is not a positive power of two", c.InitialAtlasSize)}
	}
	if !isPow2(c.MaxAtlasSize) {
		return &ConfigError{Field: "MaxAtlasSize", Reason: fmt.Sprintf("%d is not a positive power of two", c.MaxAtlasSize)}
	}
	if c.MaxAtlasSize < c.InitialAtlasSize {
		return &ConfigError{Field: "MaxAtlasSize", Reason: "smaller than InitialAtlasSize"}
	}
	if c.AtlasPadding < 0 {
		return &ConfigError{Field: "AtlasPadding", Reason: "must be non-negative"}
	}
	if c.MaxTextureSize <= 0 {
		return &ConfigError{Field: "MaxTextureSize", Reason: "must be positive"}
	}
	if c.MaxAtlasSize > c.MaxTextureSize {
		return &ConfigError{Field: "MaxAtlasSize", Reason: "exceeds MaxTextureSize"}
	}
	return nil
}

func isPow2(n int) bool { return n > 0 && n&(n-1) == 0 }
