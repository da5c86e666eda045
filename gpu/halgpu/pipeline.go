// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package halgpu

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/quad/gpu"
	"github.com/gogpu/wgpu/hal"
)

//go:embed shaders/quad.wgsl
var quadShaderSource string

// targetFormat is the format of the offscreen render target.
const targetFormat = gputypes.TextureFormatRGBA8Unorm

// viewportUniformSize is the byte size of the Viewport uniform: the
// target size as vec2<f32> padded to 16 bytes.
const viewportUniformSize = 16

// pipelines owns the GPU objects shared by every draw.
type pipelines struct {
	shader     hal.ShaderModule
	layout     hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	sampler    hal.Sampler
	byBlend    map[gpu.BlendMode]hal.RenderPipeline
}

// compileShader compiles WGSL to little-endian SPIR-V words.
func compileShader(src string) ([]uint32, error) {
	spirv, err := naga.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("halgpu: compile shader: %w", err)
	}
	if len(spirv)%4 != 0 {
		return nil, fmt.Errorf("halgpu: SPIR-V length %d is not a multiple of 4", len(spirv))
	}
	words := make([]uint32, len(spirv)/4)
	for i := range words {
		words[i] = uint32(spirv[i*4]) |
			uint32(spirv[i*4+1])<<8 |
			uint32(spirv[i*4+2])<<16 |
			uint32(spirv[i*4+3])<<24
	}
	return words, nil
}

func (d *Device) createPipelines() error {
	code, err := compileShader(quadShaderSource)
	if err != nil {
		return err
	}
	p := &d.pipes
	p.shader, err = d.dev.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "quad_shader",
		Source: hal.ShaderSource{SPIRV: code},
	})
	if err != nil {
		return fmt.Errorf("halgpu: create shader module: %w", err)
	}

	// Binding 0: viewport uniform, 1: texture, 2: sampler.
	p.layout, err = d.dev.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "quad_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("halgpu: create bind group layout: %w", err)
	}

	p.pipeLayout, err = d.dev.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "quad_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.layout},
	})
	if err != nil {
		return fmt.Errorf("halgpu: create pipeline layout: %w", err)
	}

	// Nearest sampling keeps glyph coverage and image texels exact.
	p.sampler, err = d.dev.CreateSampler(&hal.SamplerDescriptor{
		Label:        "quad_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeNearest,
		MinFilter:    gputypes.FilterModeNearest,
		MipmapFilter: gputypes.FilterModeNearest,
	})
	if err != nil {
		return fmt.Errorf("halgpu: create sampler: %w", err)
	}

	p.byBlend = make(map[gpu.BlendMode]hal.RenderPipeline, len(gpu.BlendModes))
	for _, mode := range gpu.BlendModes {
		pl, err := d.createPipeline(mode)
		if err != nil {
			return err
		}
		p.byBlend[mode] = pl
	}
	return nil
}

func (d *Device) createPipeline(mode gpu.BlendMode) (hal.RenderPipeline, error) {
	blend := mode.BlendState()
	pl, err := d.dev.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "quad_pipeline_" + mode.String(),
		Layout: d.pipes.pipeLayout,
		Vertex: hal.VertexState{
			Module:     d.pipes.shader,
			EntryPoint: "vs_main",
			Buffers:    vertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     d.pipes.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    targetFormat,
					Blend:     &blend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("halgpu: create %v pipeline: %w", mode, err)
	}
	return pl, nil
}

// vertexLayout matches gpu.Vertex and VertexInput in quad.wgsl.
func vertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: gpu.VertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},  // position
				{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},  // uv
				{Format: gputypes.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 2}, // color
			},
		},
	}
}

// destroyPipelines releases pipeline objects in reverse creation order.
func (d *Device) destroyPipelines() {
	p := &d.pipes
	for mode, pl := range p.byBlend {
		d.dev.DestroyRenderPipeline(pl)
		delete(p.byBlend, mode)
	}
	if p.sampler != nil {
		d.dev.DestroySampler(p.sampler)
		p.sampler = nil
	}
	if p.pipeLayout != nil {
		d.dev.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.layout != nil {
		d.dev.DestroyBindGroupLayout(p.layout)
		p.layout = nil
	}
	if p.shader != nil {
		d.dev.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}
