package render

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Text image size in pixels, matching the plot canvas.
const (
	textWidth  = 800
	textHeight = 500
	textMargin = 20
)

const placeholderPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAIAAACQd1PeAAAADElEQVQI12P4//8/AAX+Av7czFnnAAAAAElFTkSuQmCC"

var placeholder = sync.OnceValue(func() []byte {
	b, _ := base64.StdEncoding.DecodeString(placeholderPNG)
	return b
})

// Placeholder returns a fixed 1x1 PNG, the last-resort image.
func Placeholder() []byte {
	return bytes.Clone(placeholder())
}

// Text renders msg centred on a white canvas. Lines break at "\n" and wrap
// at the canvas width. It returns Placeholder() if encoding fails.
func Text(msg string) []byte {
	img := image.NewRGBA(image.Rect(0, 0, textWidth, textHeight))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	face := basicfont.Face7x13
	d := &font.Drawer{Dst: img, Src: image.NewUniform(color.Black), Face: face}
	cols := (textWidth - 2*textMargin) / face.Advance
	lines := wrap(msg, cols)

	lineHeight := face.Metrics().Height.Ceil() + 4
	top := (textHeight-len(lines)*lineHeight)/2 + face.Metrics().Ascent.Ceil()
	if top < textMargin {
		top = textMargin
	}
	for i, line := range lines {
		w := d.MeasureString(line).Ceil()
		d.Dot = fixed.P((textWidth-w)/2, top+i*lineHeight)
		d.DrawString(line)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Placeholder()
	}
	return buf.Bytes()
}

// wrap splits msg on newlines and hard-wraps each line at cols runes.
func wrap(msg string, cols int) []string {
	var out []string
	for _, line := range strings.Split(msg, "\n") {
		runes := []rune(line)
		for len(runes) > cols {
			out = append(out, string(runes[:cols]))
			runes = runes[cols:]
		}
		out = append(out, string(runes))
	}
	return out
}
