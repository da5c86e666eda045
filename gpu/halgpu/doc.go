// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package halgpu implements gpu.Device on the gogpu/wgpu hardware
// abstraction layer.
//
// One render pipeline is built per blend mode from a single WGSL shader.
// SubmitDraw only records batches; Present encodes them into one render
// pass over an offscreen RGBA8 target, submits it, waits on a fence and,
// when enabled, reads the target back into an image.
//
// The device works with any HAL backend, including the noop backend used
// in tests:
//
//	api := noop.API{}
//	inst, _ := api.CreateInstance(nil)
//	open, _ := inst.EnumerateAdapters(nil)[0].Adapter.Open(0, gputypes.DefaultLimits())
//	dev, err := halgpu.New(open.Device, open.Queue, halgpu.DefaultConfig())
package halgpu
