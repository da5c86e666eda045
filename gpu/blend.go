package gpu

import "github.com/gogpu/gputypes"

// BlendMode selects how a batch combines with the render target.
type BlendMode uint8

const (
	// BlendAuto lets the frame driver pick BlendOpaque for untextured
	// opaque geometry and BlendAlpha for everything else. Backends never
	// see it: it is resolved before a DrawCall is built.
	BlendAuto BlendMode = iota

	// BlendAlpha is source-over with straight alpha.
	BlendAlpha

	// BlendOpaque replaces the destination.
	BlendOpaque

	// BlendAdditive adds the alpha-weighted source to the destination.
	BlendAdditive

	// BlendPremultiplied is source-over for premultiplied colors.
	BlendPremultiplied
)

// String returns the blend mode name.
func (m BlendMode) String() string {
	switch m {
	case BlendAuto:
		return "auto"
	case BlendAlpha:
		return "alpha"
	case BlendOpaque:
		return "opaque"
	case BlendAdditive:
		return "additive"
	case BlendPremultiplied:
		return "premultiplied"
	default:
		return "unknown"
	}
}

// BlendModes lists the concrete modes a backend must support.
var BlendModes = []BlendMode{BlendAlpha, BlendOpaque, BlendAdditive, BlendPremultiplied}

// BlendState returns the fixed-function blend state for m. BlendAuto maps
// to the BlendAlpha state.
func (m BlendMode) BlendState() gputypes.BlendState {
	switch m {
	case BlendOpaque:
		return blendState(gputypes.BlendFactorOne, gputypes.BlendFactorZero, gputypes.BlendFactorOne, gputypes.BlendFactorZero)
	case BlendAdditive:
		return blendState(gputypes.BlendFactorSrcAlpha, gputypes.BlendFactorOne, gputypes.BlendFactorOne, gputypes.BlendFactorOne)
	case BlendPremultiplied:
		return gputypes.BlendStatePremultiplied()
	default:
		return blendState(gputypes.BlendFactorSrcAlpha, gputypes.BlendFactorOneMinusSrcAlpha, gputypes.BlendFactorOne, gputypes.BlendFactorOneMinusSrcAlpha)
	}
}

func blendState(srcColor, dstColor, srcAlpha, dstAlpha gputypes.BlendFactor) gputypes.BlendState {
	return gputypes.BlendState{
		Color: gputypes.BlendComponent{SrcFactor: srcColor, DstFactor: dstColor, Operation: gputypes.BlendOperationAdd},
		Alpha: gputypes.BlendComponent{SrcFactor: srcAlpha, DstFactor: dstAlpha, Operation: gputypes.BlendOperationAdd},
	}
}
