package quad

import (
	"errors"
	"fmt"
)

var (
	// ErrFrameInProgress is returned by BeginFrame when a frame is open.
	ErrFrameInProgress = errors.New("quad: frame already in progress")

	// ErrNoFrame is returned by EndFrame without a matching BeginFrame.
	ErrNoFrame = errors.New("quad: no frame in progress")

	// ErrSubmit wraps errors from submitting a frame to the device.
	ErrSubmit = errors.New("quad: frame submission failed")

	// ErrClipUnderflow is returned by PopClip on an empty clip stack.
	ErrClipUnderflow = errors.New("quad: clip stack underflow")

	// ErrTransformUnderflow is returned by Pop on an empty transform stack.
	ErrTransformUnderflow = errors.New("quad: transform stack underflow")

	// ErrContextLost is returned while the GPU context is lost and until
	// HandleContextRestored succeeds.
	ErrContextLost = errors.New("quad: GPU context lost")

	// ErrClosed is returned by a Bridge after teardown.
	ErrClosed = errors.New("quad: bridge closed")

	// ErrNilDevice is returned when a nil gpu.Device is supplied.
	ErrNilDevice = errors.New("quad: nil device")

	// ErrNilHandler is returned by NewBridge without a handler.
	ErrNilHandler = errors.New("quad: nil handler")
)

// ConfigError reports an invalid Config field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("quad: invalid config %s: %s", e.Field, e.Reason)
}
