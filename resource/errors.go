package resource

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidHandle is returned for the zero handle or a handle this
	// manager never issued.
	ErrInvalidHandle = errors.New("resource: invalid texture handle")

	// ErrReleasedHandle is returned when a handle is used after Release or
	// ReleaseAll. It indicates a programming error in the caller.
	ErrReleasedHandle = errors.New("resource: texture handle used after release")

	// ErrTextureTooLarge is returned when a texture exceeds MaxTextureSize.
	ErrTextureTooLarge = errors.New("resource: texture exceeds maximum size")

	// ErrInvalidDimensions is returned for non-positive sizes.
	ErrInvalidDimensions = errors.New("resource: invalid dimensions")

	// ErrPixelLength is returned when a pixel buffer does not match the
	// dimensions it is uploaded with.
	ErrPixelLength = errors.New("resource: pixel buffer length mismatch")

	// ErrRegionOutOfBounds is returned when an update region is not inside
	// the texture.
	ErrRegionOutOfBounds = errors.New("resource: region out of bounds")

	// ErrAtlasExhausted is returned when a glyph cannot be placed even after
	// growing the atlas to its maximum size and evicting every glyph not
	// used in the current frame.
	ErrAtlasExhausted = errors.New("resource: glyph atlas exhausted")

	// ErrAtlasOwned is returned when releasing or updating the glyph atlas
	// texture through the manager.
	ErrAtlasOwned = errors.New("resource: texture is owned by the glyph atlas")
)

// ConfigError reports an invalid Config field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("resource: invalid config %s: %s", e.Field, e.Reason)
}
