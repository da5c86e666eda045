package text

import "errors"

// Sentinel errors for text package.
var (
	// ErrEmptyFontData is returned when font data is empty.
	ErrEmptyFontData = errors.New("text: empty font data")

	// ErrInvalidSize is returned for a non-positive or non-finite font size.
	ErrInvalidSize = errors.New("text: invalid font size")

	// ErrNilFont is returned when shaping without a font.
	ErrNilFont = errors.New("text: nil font")
)
