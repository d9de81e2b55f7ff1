package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type brailleBuf struct {
	w, h int       // in cells
	m    [][]uint8 // per-cell 8-bit mask
}

func newBrailleBuf(w, h int) *brailleBuf {
	m := make([][]uint8, h)
	for i := range m {
		m[i] = make([]uint8, w)
	}
	return &brailleBuf{w: w, h: h, m: m}
}

// dot bits of a braille cell, indexed [column][row]
var brailleBits = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

// setPixel sets a micro-pixel at micro coords (2x4 per cell)
func (b *brailleBuf) setPixel(mx, my int) {
	if mx < 0 || my < 0 {
		return
	}
	cx, rx := mx/2, mx%2
	cy, ry := my/4, my%4
	if cy >= b.h || cx >= b.w {
		return
	}
	b.m[cy][cx] |= brailleBits[rx][ry]
}

// drawLineMicro draws a line on the microgrid using Bresenham
func (b *brailleBuf) drawLineMicro(x0, y0, x1, y1 int) {
	// far off-screen segments only cost time
	if (x0 < 0 && x1 < 0) || (y0 < 0 && y1 < 0) ||
		(x0 >= b.w*2 && x1 >= b.w*2) || (y0 >= b.h*4 && y1 >= b.h*4) {
		return
	}
	dx := abs(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -abs(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		b.setPixel(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// canvas stacks braille layers. Dots of all layers merge into one glyph
// per cell; the cell takes the style of the topmost layer that has a dot
// there.
type canvas struct {
	w, h   int
	layers []*brailleBuf
	styles []lipgloss.Style
}

func newCanvas(w, h int, styles ...lipgloss.Style) *canvas {
	c := &canvas{w: w, h: h, styles: styles}
	for range styles {
		c.layers = append(c.layers, newBrailleBuf(w, h))
	}
	return c
}

func (c *canvas) layer(i int) *brailleBuf { return c.layers[i] }

func (c *canvas) toLines() []string {
	out := make([]string, c.h)
	for y := 0; y < c.h; y++ {
		var sb strings.Builder
		for x := 0; x < c.w; x++ {
			var mask uint8
			top := -1
			for i, l := range c.layers {
				if l.m[y][x] != 0 {
					mask |= l.m[y][x]
					top = i
				}
			}
			if mask == 0 {
				sb.WriteByte(' ')
				continue
			}
			sb.WriteString(c.styles[top].Render(string(rune(0x2800 + int(mask)))))
		}
		out[y] = sb.String()
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
