// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package halgpu

import (
	"encoding/binary"
	"fmt"
	"image"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/quad/gpu"
	"github.com/gogpu/wgpu/hal"
)

// copyPitchAlignment is the row alignment required by texture-to-buffer
// copies.
const copyPitchAlignment = 256

// packed holds the frame's geometry in one vertex and one index buffer.
type packed struct {
	vertices []byte
	indices  []byte
	// firstIndex and baseVertex locate each pending call.
	firstIndex []uint32
	baseVertex []int32
}

func pack(calls []pendingDraw) packed {
	var nv, ni int
	for _, c := range calls {
		nv += len(c.Vertices)
		ni += len(c.Indices)
	}
	p := packed{
		vertices:   make([]byte, 0, nv*gpu.VertexStride),
		indices:    make([]byte, 0, (ni*2+3)&^3),
		firstIndex: make([]uint32, len(calls)),
		baseVertex: make([]int32, len(calls)),
	}
	var vbase, ibase int
	for i, c := range calls {
		p.firstIndex[i] = uint32(ibase)
		p.baseVertex[i] = int32(vbase)
		for _, v := range c.Vertices {
			for _, f := range [...]float32{v.X, v.Y, v.U, v.V, v.R, v.G, v.B, v.A} {
				p.vertices = binary.LittleEndian.AppendUint32(p.vertices, math.Float32bits(f))
			}
		}
		for _, idx := range c.Indices {
			p.indices = binary.LittleEndian.AppendUint16(p.indices, idx)
		}
		vbase += len(c.Vertices)
		ibase += len(c.Indices)
	}
	// Buffer writes must be 4-byte aligned.
	for len(p.indices)%4 != 0 {
		p.indices = append(p.indices, 0)
	}
	return p
}

// ensureBuffer grows *buf to hold size bytes.
func (d *Device) ensureBuffer(buf *hal.Buffer, capacity *uint64, size uint64, usage gputypes.BufferUsage, label string) error {
	if *buf != nil && *capacity >= size {
		return nil
	}
	if *buf != nil {
		d.dev.DestroyBuffer(*buf)
		*buf = nil
	}
	newCap := max(size, *capacity*2, 4096)
	b, err := d.dev.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  newCap,
		Usage: usage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		*capacity = 0
		return fmt.Errorf("halgpu: create %s: %w", label, err)
	}
	*buf, *capacity = b, newCap
	d.log.Debug("halgpu: buffer grown", "buffer", label, "bytes", newCap)
	return nil
}

// render encodes the pending calls into one render pass, submits it and
// waits for completion.
func (d *Device) render() error {
	geo := pack(d.pending)
	if len(d.pending) > 0 {
		if err := d.ensureBuffer(&d.vertBuf, &d.vertCap, uint64(len(geo.vertices)), gputypes.BufferUsageVertex, "quad_vertices"); err != nil {
			return err
		}
		if err := d.ensureBuffer(&d.idxBuf, &d.idxCap, uint64(len(geo.indices)), gputypes.BufferUsageIndex, "quad_indices"); err != nil {
			return err
		}
		d.queue.WriteBuffer(d.vertBuf, 0, geo.vertices)
		d.queue.WriteBuffer(d.idxBuf, 0, geo.indices)
	}

	encoder, err := d.dev.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "quad_encoder"})
	if err != nil {
		return fmt.Errorf("halgpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("quad_frame"); err != nil {
		return fmt.Errorf("halgpu: begin encoding: %w", err)
	}

	load, clearValue := gputypes.LoadOpLoad, gputypes.Color{}
	if d.clear != nil {
		load = gputypes.LoadOpClear
		clearValue = gputypes.Color{
			R: float64(d.clear.R), G: float64(d.clear.G),
			B: float64(d.clear.B), A: float64(d.clear.A),
		}
	}
	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "quad_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       d.targetView,
			LoadOp:     load,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: clearValue,
		}},
	})
	if len(d.pending) > 0 {
		rp.SetVertexBuffer(0, d.vertBuf, 0)
		rp.SetIndexBuffer(d.idxBuf, gputypes.IndexFormatUint16, 0)
	}
	bounds := image.Rect(0, 0, d.w, d.h)
	for i, call := range d.pending {
		clip := bounds
		if call.HasClip {
			clip = call.Clip.Intersect(bounds)
		}
		if clip.Empty() || len(call.Indices) == 0 {
			continue
		}
		mode := call.Blend
		if mode == gpu.BlendAuto {
			mode = gpu.BlendAlpha
		}
		rp.SetPipeline(d.pipes.byBlend[mode])
		rp.SetBindGroup(0, call.tex.bind, nil)
		rp.SetScissorRect(uint32(clip.Min.X), uint32(clip.Min.Y), uint32(clip.Dx()), uint32(clip.Dy()))
		rp.DrawIndexed(uint32(len(call.Indices)), 1, geo.firstIndex[i], geo.baseVertex[i], 0)
	}
	rp.End()

	var staging hal.Buffer
	w, h := uint32(d.w), uint32(d.h)
	alignedRow := (w*4 + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	if d.cfg.Readback {
		staging, err = d.dev.CreateBuffer(&hal.BufferDescriptor{
			Label: "quad_staging",
			Size:  uint64(alignedRow) * uint64(h),
			Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			encoder.DiscardEncoding()
			return fmt.Errorf("halgpu: create staging buffer: %w", err)
		}
		defer d.dev.DestroyBuffer(staging)

		encoder.TransitionTextures([]hal.TextureBarrier{{
			Texture: d.target,
			Usage: hal.TextureUsageTransition{
				OldUsage: gputypes.TextureUsageRenderAttachment,
				NewUsage: gputypes.TextureUsageCopySrc,
			},
		}})
		encoder.CopyTextureToBuffer(d.target, staging, []hal.BufferTextureCopy{{
			BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedRow, RowsPerImage: h},
			TextureBase:  hal.ImageCopyTexture{Texture: d.target, MipLevel: 0},
			Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		}})
		encoder.TransitionTextures([]hal.TextureBarrier{{
			Texture: d.target,
			Usage: hal.TextureUsageTransition{
				OldUsage: gputypes.TextureUsageCopySrc,
				NewUsage: gputypes.TextureUsageRenderAttachment,
			},
		}})
	}

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("halgpu: end encoding: %w", err)
	}
	defer d.dev.FreeCommandBuffer(cmdBuf)

	fence, err := d.dev.CreateFence()
	if err != nil {
		return fmt.Errorf("halgpu: create fence: %w", err)
	}
	defer d.dev.DestroyFence(fence)

	if err := d.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("halgpu: submit: %w", err)
	}
	ok, err := d.dev.Wait(fence, 1, d.cfg.FenceTimeout)
	if err != nil || !ok {
		d.lost = true
		d.log.Warn("halgpu: frame did not complete", "timeout", d.cfg.FenceTimeout, "err", err)
		return fmt.Errorf("%w: wait for frame: ok=%v err=%v", gpu.ErrDeviceLost, ok, err)
	}

	if staging != nil {
		readback := make([]byte, uint64(alignedRow)*uint64(h))
		if err := d.queue.ReadBuffer(staging, 0, readback); err != nil {
			return fmt.Errorf("halgpu: readback: %w", err)
		}
		row := int(w) * 4
		for y := range int(h) {
			copy(d.pixels.Pix[y*d.pixels.Stride:y*d.pixels.Stride+row], readback[y*int(alignedRow):])
		}
	}
	return nil
}
