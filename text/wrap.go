package text

import (
	"unicode"
	"unicode/utf8"
)

// Line is one line of wrapped text.
type Line struct {
	// Run holds the line's glyphs, with pen positions starting at 0.
	Run Run

	// Width is the advance of the line without trailing whitespace.
	Width float64
}

// Dimensions is the size of a block of text.
type Dimensions struct {
	Width  float64
	Height float64

	// Ascent is the distance from the top of the block to the first
	// baseline.
	Ascent float64
}

// Wrap breaks run into lines no wider than maxWidth. Lines break after
// whitespace; a word wider than maxWidth breaks between glyphs. A newline
// always ends a line. maxWidth <= 0 disables wrapping.
func Wrap(run Run, maxWidth float64) []Line {
	n := run.Len()
	if n == 0 {
		return nil
	}
	var lines []Line
	emit := func(i, j int) {
		l := run.slice(i, j)
		lines = append(lines, Line{Run: l, Width: trimmedWidth(l)})
	}

	start, brk := 0, -1
	for i := 0; i < n; i++ {
		g := run.glyphs[i]
		r := clusterRune(run.Text, g.Cluster)
		if r == '\n' {
			emit(start, i)
			start, brk = i+1, -1
			continue
		}
		if maxWidth > 0 && i > start && !unicode.IsSpace(r) {
			if g.X+g.Advance-run.glyphs[start].X > maxWidth {
				end := i
				if brk > start {
					end = brk
				}
				emit(start, end)
				start, brk = end, -1
				// Re-examine the glyphs after the break on the new line.
				i = end - 1
				continue
			}
		}
		if unicode.IsSpace(r) {
			brk = i + 1
		}
	}
	if start < n {
		emit(start, n)
	}
	return lines
}

// Measure returns the extent of run set on one line.
func Measure(run Run) Dimensions {
	d := Dimensions{Width: run.Advance()}
	if run.Font == nil {
		return d
	}
	m, err := run.Font.Metrics(run.Size)
	if err != nil {
		return d
	}
	d.Height, d.Ascent = m.Ascent+m.Descent, m.Ascent
	return d
}

// MeasureLines returns the extent of wrapped lines with line advance
// lineHeight.
func MeasureLines(lines []Line, lineHeight float64) Dimensions {
	var d Dimensions
	for i, l := range lines {
		d.Width = max(d.Width, l.Width)
		if i == 0 {
			first := Measure(l.Run)
			d.Ascent = first.Ascent
			d.Height = first.Height
			continue
		}
		d.Height += lineHeight
	}
	return d
}

func trimmedWidth(l Run) float64 {
	for i := l.Len() - 1; i >= 0; i-- {
		g := l.glyphs[i]
		if !unicode.IsSpace(clusterRune(l.Text, g.Cluster)) {
			return g.X + g.Advance
		}
	}
	return 0
}

func clusterRune(s string, i int) rune {
	if i < 0 || i >= len(s) {
		return utf8.RuneError
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return r
}
