/*
Copyright 2024 Tim St. Pierre
Terminal view of the simulated display
*/
package sim

import (
	"bytes"
	"image/color"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
)

var (
	backlightOn  = color.NRGBA{R: 0x30, G: 0x60, B: 0xff, A: 0xff}
	backlightOff = color.NRGBA{R: 0x10, G: 0x10, B: 0x10, A: 0xff}
)

// Screen prints a Controller's visible characters to a terminal, framed in
// the backlight colour.
type Screen struct {
	w       io.Writer
	palette ansi256.Palette
	rows    int
	cols    int
	buf     bytes.Buffer
}

// NewScreen renders a rows x cols panel to stdout. Colours work on Windows
// consoles too.
func NewScreen(rows, cols int) *Screen {
	return NewScreenTo(colorable.NewColorableStdout(), rows, cols)
}

// NewScreenTo renders to w.
func NewScreenTo(w io.Writer, rows, cols int) *Screen {
	return &Screen{w: w, palette: *ansi256.Default, rows: rows, cols: cols}
}

// Render draws the panel once.
func (s *Screen) Render(c *Controller) error {
	edge := backlightOff
	if c.Backlight() {
		edge = backlightOn
	}
	on, _, _ := c.DisplayOn()
	s.buf.Reset()
	for r := 0; r < s.rows; r++ {
		line := []byte(c.Line(r, s.cols))
		for i, ch := range line {
			switch {
			case !on:
				line[i] = ' '
			case ch < 0x08:
				line[i] = '#'
			case ch < 0x20 || ch > 0x7e:
				line[i] = '?'
			}
		}
		_, _ = io.WriteString(&s.buf, s.palette.Block(edge))
		_, _ = s.buf.WriteString("\033[0m")
		_, _ = s.buf.Write(line)
		_, _ = io.WriteString(&s.buf, s.palette.Block(edge))
		_, _ = s.buf.WriteString("\033[0m\n")
	}
	_, err := s.buf.WriteTo(s.w)
	return err
}
