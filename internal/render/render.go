// Package render turns decoded images into terminal output. Each text cell
// covers two vertically stacked pixels drawn with the upper half block glyph,
// the top pixel as the foreground color and the bottom pixel as the
// background color, using 24-bit SGR sequences.
package render

import (
	"image"
	"image/color"
	"strings"

	xdraw "golang.org/x/image/draw"
)

// halfBlock is the glyph used for every image cell.
const halfBlock = "▀"

// DefaultBackground matches the neutral gray used to letterbox images that
// do not fill the viewport.
var DefaultBackground = color.RGBA{R: 146, G: 146, B: 146, A: 255}

// Options controls how an image is fitted and drawn.
type Options struct {
	// Cols and Rows bound the output in terminal cells. Each row holds two
	// pixel rows.
	Cols int
	Rows int
	// Upscale allows images smaller than the viewport to be enlarged.
	// When false small images are drawn at their native size.
	Upscale bool
	// Letterbox fills the whole viewport, centering the image on Background.
	// When false the output is only as large as the fitted image.
	Letterbox bool
	// Background is the letterbox fill color. Zero value means
	// DefaultBackground.
	Background color.RGBA
}

func (o Options) background() color.RGBA {
	if o.Background.A == 0 {
		return DefaultBackground
	}
	return o.Background
}

// FitSize returns the pixel dimensions an srcW x srcH image should be scaled
// to inside a viewport of cols x rows cells, preserving aspect ratio. The
// pixel viewport is cols wide and rows*2 tall. Without upscale, images that
// already fit are returned unchanged.
func FitSize(srcW, srcH, cols, rows int, upscale bool) (int, int) {
	if srcW <= 0 || srcH <= 0 || cols <= 0 || rows <= 0 {
		return 0, 0
	}
	maxW, maxH := cols, rows*2
	if !upscale && srcW <= maxW && srcH <= maxH {
		return srcW, srcH
	}
	w := maxW
	h := srcH * maxW / srcW
	if h > maxH {
		h = maxH
		w = srcW * maxH / srcH
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// Scale resamples img to w x h pixels with Catmull-Rom interpolation.
func Scale(img image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Over, nil)
	return dst
}

// Render draws img into a string of styled half-block cells according to
// opts. It returns the empty string when the image or viewport is
// degenerate.
func Render(img image.Image, opts Options) string {
	if img == nil {
		return ""
	}
	b := img.Bounds()
	w, h := FitSize(b.Dx(), b.Dy(), opts.Cols, opts.Rows, opts.Upscale)
	if w == 0 || h == 0 {
		return ""
	}

	canvasW, canvasH := w, h
	if opts.Letterbox {
		canvasW, canvasH = opts.Cols, opts.Rows*2
	}
	canvas := image.NewRGBA(image.Rect(0, 0, canvasW, canvasH))
	bg := opts.background()
	for i := 0; i < len(canvas.Pix); i += 4 {
		canvas.Pix[i] = bg.R
		canvas.Pix[i+1] = bg.G
		canvas.Pix[i+2] = bg.B
		canvas.Pix[i+3] = bg.A
	}
	offX := (canvasW - w) / 2
	offY := (canvasH - h) / 2
	dstRect := image.Rect(offX, offY, offX+w, offY+h)
	xdraw.CatmullRom.Scale(canvas, dstRect, img, b, xdraw.Over, nil)

	return HalfBlocks(canvas)
}

// HalfBlocks converts an image into half-block cells, one text row per two
// pixel rows. Odd final rows are padded with a transparent-looking duplicate
// of the last row. Every line ends with an SGR reset so trailing cells do
// not bleed into surrounding output.
func HalfBlocks(img image.Image) string {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return ""
	}

	var sb strings.Builder
	sb.Grow(b.Dx() * (b.Dy() / 2) * 24)

	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		if y > b.Min.Y {
			sb.WriteByte('\n')
		}
		var prevFg, prevBg color.RGBA
		havePrev := false
		for x := b.Min.X; x < b.Max.X; x++ {
			fg := rgbaAt(img, x, y)
			bgY := y + 1
			if bgY >= b.Max.Y {
				bgY = y
			}
			bg := rgbaAt(img, x, bgY)
			if !havePrev || fg != prevFg || bg != prevBg {
				sb.WriteString("\x1b[38;2;")
				writeRGB(&sb, fg)
				sb.WriteString(";48;2;")
				writeRGB(&sb, bg)
				sb.WriteByte('m')
				prevFg, prevBg = fg, bg
				havePrev = true
			}
			sb.WriteString(halfBlock)
		}
		sb.WriteString("\x1b[0m")
	}
	return sb.String()
}

func rgbaAt(img image.Image, x, y int) color.RGBA {
	r, g, b, a := img.At(x, y).RGBA()
	return color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
}

func writeRGB(sb *strings.Builder, c color.RGBA) {
	writeUint8(sb, c.R)
	sb.WriteByte(';')
	writeUint8(sb, c.G)
	sb.WriteByte(';')
	writeUint8(sb, c.B)
}

// writeUint8 appends the decimal form of v without allocating.
func writeUint8(sb *strings.Builder, v uint8) {
	if v >= 100 {
		sb.WriteByte('0' + v/100)
	}
	if v >= 10 {
		sb.WriteByte('0' + (v/10)%10)
	}
	sb.WriteByte('0' + v%10)
}
