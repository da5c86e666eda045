// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package halgpu

import (
	"fmt"
	"log/slog"
	"time"
)

// Config holds device settings.
type Config struct {
	// Width and Height are the initial target size in pixels.
	Width, Height int

	// FenceTimeout bounds the wait for a submitted frame. A timeout is
	// reported as gpu.ErrDeviceLost.
	FenceTimeout time.Duration

	// Readback copies the target to host memory after every frame so that
	// Image returns the rendered pixels.
	Readback bool

	// Logger receives diagnostics. Nil discards them.
	Logger *slog.Logger
}

// DefaultConfig returns a 1x1 target with a five second fence timeout.
func DefaultConfig() Config {
	return Config{
		Width:        1,
		Height:       1,
		FenceTimeout: 5 * time.Second,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("halgpu: invalid target size %dx%d", c.Width, c.Height)
	}
	if c.FenceTimeout <= 0 {
		return fmt.Errorf("halgpu: fence timeout must be positive")
	}
	return nil
}
