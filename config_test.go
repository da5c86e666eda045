package quad

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/gogpu/quad/gpu/softgpu"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*Config)
		field string
	}{
		{"default", func(*Config) {}, ""},
		{"too few vertices", func(c *Config) { c.MaxBatchVertices = 2 }, "MaxBatchVertices"},
		{"too many vertices", func(c *Config) { c.MaxBatchVertices = 1 << 16 }, "MaxBatchVertices"},
		{"zero tolerance", func(c *Config) { c.Tolerance = 0 }, "Tolerance"},
		{"NaN tolerance", func(c *Config) { c.Tolerance = math.NaN() }, "Tolerance"},
		{"zero font size", func(c *Config) { c.FontSize = 0 }, "FontSize"},
		{"bad atlas", func(c *Config) { c.Resource.InitialAtlasSize = 100 }, "InitialAtlasSize"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.edit(&c)
			err := c.Validate()
			if tt.field == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error on %s", tt.field)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("Validate() = %v, want mention of %s", err, tt.field)
			}
		})
	}
}

func TestNewGraphicsOptions(t *testing.T) {
	if _, err := NewGraphics(nil); !errors.Is(err, ErrNilDevice) {
		t.Errorf("NewGraphics(nil) = %v, want ErrNilDevice", err)
	}

	_, err := NewGraphics(softgpu.New(8, 8), WithMaxBatchVertices(1))
	var ce *ConfigError
	if !errors.As(err, &ce) || ce.Field != "MaxBatchVertices" {
		t.Errorf("WithMaxBatchVertices(1) = %v, want ConfigError", err)
	}

	g, err := NewGraphics(softgpu.New(20, 10), WithSurface(SurfaceConfig{Width: 20, Height: 10, Scale: 2}))
	if err != nil {
		t.Fatalf("NewGraphics: %v", err)
	}
	if w, h := g.Size(); w != 10 || h != 5 {
		t.Errorf("Size() = %v, %v, want 10, 5", w, h)
	}
	if g.FontSize() != DefaultConfig().FontSize {
		t.Errorf("FontSize() = %v", g.FontSize())
	}
}
