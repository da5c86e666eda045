package quad

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/gogpu/quad/gpu/softgpu"
)

func TestNopHandler(t *testing.T) {
	h := nopHandler{}
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		if h.Enabled(context.Background(), level) {
			t.Errorf("nopHandler.Enabled(%v) = true, want false", level)
		}
	}
	if err := h.Handle(context.Background(), slog.Record{}); err != nil {
		t.Errorf("nopHandler.Handle() = %v, want nil", err)
	}
	if _, ok := h.WithAttrs([]slog.Attr{slog.String("k", "v")}).(nopHandler); !ok {
		t.Error("WithAttrs did not return nopHandler")
	}
	if _, ok := h.WithGroup("g").(nopHandler); !ok {
		t.Error("WithGroup did not return nopHandler")
	}
}

func TestSetLogger(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	g, err := NewGraphics(softgpu.New(8, 8))
	if err != nil {
		t.Fatalf("NewGraphics: %v", err)
	}
	g.FillRect(0, 0, 1, 1, Red)
	if !strings.Contains(buf.String(), "outside a frame") {
		t.Errorf("log = %q, want warning about draw outside a frame", buf.String())
	}

	SetLogger(nil)
	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Error("SetLogger(nil) did not restore the silent logger")
	}
}

func TestWithLoggerOverridesPackageLogger(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	g, err := NewGraphics(softgpu.New(8, 8), WithLogger(l))
	if err != nil {
		t.Fatalf("NewGraphics: %v", err)
	}
	if err := g.BeginFrame(); err != nil {
		t.Fatal(err)
	}
	if err := g.EndFrame(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "frame submitted") {
		t.Errorf("log = %q, want frame debug line", buf.String())
	}
}
