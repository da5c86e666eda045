// Command quaddemo renders a few frames headlessly and saves the last one
// as a PNG.
package main

import (
	"flag"
	"fmt"
	"image/png"
	"log"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/gogpu/quad"
	"github.com/gogpu/quad/gpu/softgpu"
)

func main() {
	var (
		width   = flag.Int("width", 800, "image width")
		height  = flag.Int("height", 600, "image height")
		scale   = flag.Float64("scale", 1, "surface scale factor")
		frames  = flag.Int("frames", 3, "frames to render")
		output  = flag.String("output", "demo.png", "output file")
		verbose = flag.Bool("v", false, "log frame diagnostics")
	)
	flag.Parse()

	if *verbose {
		quad.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	pw, ph := int(float64(*width)**scale), int(float64(*height)**scale)
	dev := softgpu.New(pw, ph)
	d := &demo{}
	b, err := quad.NewBridge(dev, d, quad.WithSurface(quad.SurfaceConfig{
		Width: pw, Height: ph, Scale: *scale,
	}))
	if err != nil {
		log.Fatalf("create bridge: %v", err)
	}
	defer b.HandleTeardown()

	for range *frames {
		if err := b.HandleRedraw(); err != nil {
			log.Fatalf("render frame: %v", err)
		}
	}

	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("create output: %v", err)
	}
	if err := png.Encode(f, dev.Image()); err != nil {
		_ = f.Close()
		log.Fatalf("encode PNG: %v", err)
	}
	if err := f.Close(); err != nil {
		log.Fatalf("close output: %v", err)
	}

	st := b.Graphics().Stats()
	log.Printf("Demo saved to %s (%dx%d), %d batches, %d glyphs, %v per frame\n",
		*output, pw, ph, st.Batches, st.Glyphs, st.FrameTime)
}

// demo draws the scene and animates the rotating squares.
type demo struct {
	angle float64
}

func (d *demo) OnUpdate(dt time.Duration) error {
	d.angle += dt.Seconds() * math.Pi / 4
	return nil
}

func (d *demo) OnDraw(g *quad.Graphics) error {
	w, h := g.Size()
	g.Clear(quad.RGB(0.1, 0.15, 0.25))
	g.FillRectGradient(0, 0, w, h, [4]quad.Color{
		quad.RGB(0.1, 0.2, 0.4), quad.RGB(0.1, 0.2, 0.4),
		quad.RGB(0.5, 0.5, 0.6), quad.RGB(0.5, 0.5, 0.6),
	})

	drawShapes(g)
	d.drawTransforms(g)
	drawPaths(g)

	g.DrawText("quad", 40, h-60, quad.White, quad.DrawOptions{})
	g.DrawTextWith(fmt.Sprintf("%.0fx%.0f logical pixels at scale %.1f", w, h, g.ScaleFactor()),
		40, h-30, quad.RGBA(1, 1, 1, 0.7), quad.TextOptions{Size: 14})
	return nil
}

func drawShapes(g *quad.Graphics) {
	g.FillCircle(150, 150, 60, quad.RGBA(1, 0.3, 0.3, 0.8))
	g.FillCircle(200, 150, 60, quad.RGBA(0.3, 1, 0.3, 0.8))
	g.FillCircle(175, 200, 60, quad.RGBA(0.3, 0.3, 1, 0.8))

	g.FillRoundedRect(350, 100, 120, 80, 15, quad.RGB(1, 0.8, 0))
	g.StrokeRect(350, 100, 120, 80, 4, quad.White)
}

func (d *demo) drawTransforms(g *quad.Graphics) {
	for i := range 8 {
		g.Push()
		g.Translate(600, 150)
		g.Rotate(float64(i)*math.Pi/4 + d.angle)
		g.FillRect(-30, -30, 60, 60, quad.HSL(float64(i)*45, 0.8, 0.6).WithAlpha(0.8))
		_ = g.Pop()
	}
}

func drawPaths(g *quad.Graphics) {
	wave := make([]quad.Point, 0, 61)
	for i := range 61 {
		x := float64(i) * 5
		wave = append(wave, quad.Pt(150+x, 400+30*math.Sin(x/300*4*math.Pi)))
	}
	g.DrawPolyline(wave, 6, false, quad.RGB(1, 0.5, 0))

	const points = 5
	star := make([]quad.Point, 0, points*2)
	for i := range points * 2 {
		angle := float64(i) * math.Pi / points
		r := 60.0
		if i%2 == 1 {
			r = 30
		}
		star = append(star, quad.Pt(550+r*math.Cos(angle-math.Pi/2), 400+r*math.Sin(angle-math.Pi/2)))
	}
	g.FillPolygon(star, quad.RGB(1, 1, 0))

	g.PushClip(quad.R(650, 340, 60, 120))
	g.FillCircle(700, 400, 50, quad.Cyan)
	_ = g.PopClip()
	g.SetDash(quad.NewDash(8, 4))
	g.StrokeCircle(700, 400, 50, 2, quad.White)
	g.SetDash(nil)
}
