// Package decode turns files on disk into displayable frames. It sniffs the
// format, routes Netpbm data to the native decoder (with byte order and
// colormap options) and everything else to the image package, and records
// per-format metadata for the viewer chrome.
package decode

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/mbarre/pixview/internal/errors"
)

// tracer instruments the load path; without a configured SDK the spans are
// no-ops.
var tracer = otel.Tracer("github.com/mbarre/pixview/internal/decode")

// Frame is a decoded image plus the metadata the viewer displays.
type Frame struct {
	// Path is the file the frame was loaded from.
	Path string
	// Image is the decoded (and possibly colormapped) pixel data.
	Image image.Image
	// Format is the decoded format name, e.g. "pgm" or "png".
	Format string
	// BitDepth is the sample width in bits: 8 or 16.
	BitDepth int
	// FileSize is the size of the source file in bytes.
	FileSize int64
}

// Name returns the base name of the frame's path, used as the title.
func (f *Frame) Name() string { return filepath.Base(f.Path) }

// Bounds returns the pixel bounds of the decoded image.
func (f *Frame) Bounds() image.Rectangle { return f.Image.Bounds() }

// Info describes an image file without decoding its pixels.
type Info struct {
	Path     string
	Format   string
	Width    int
	Height   int
	BitDepth int
	FileSize int64
}

// Load reads, sniffs and decodes the image at path. When opts.Colormap is
// set and the decoded image is 16-bit grayscale, the samples are mapped
// through the colormap into an RGBA image.
func Load(ctx context.Context, path string, opts Options) (*Frame, error) {
	ctx, span := tracer.Start(ctx, "decode.Load",
		trace.WithAttributes(attribute.String("image.path", path)))
	defer span.End()

	data, err := os.ReadFile(path)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, apperrors.NewDecodeError(path, err)
	}

	frame, err := decodeBytes(ctx, path, data, opts)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.String("image.format", frame.Format),
		attribute.Int("image.width", frame.Bounds().Dx()),
		attribute.Int("image.height", frame.Bounds().Dy()),
		attribute.Int("image.bit_depth", frame.BitDepth),
	)
	return frame, nil
}

// decodeBytes picks a decoder for the data and builds the frame.
func decodeBytes(ctx context.Context, path string, data []byte, opts Options) (*Frame, error) {
	_, span := tracer.Start(ctx, "decode.decodeBytes")
	defer span.End()

	br := bytes.NewReader(data)
	magic, err := sniff(br)
	if err != nil {
		return nil, apperrors.NewDecodeError(path, err)
	}

	dec, ok := Lookup(magic)
	if !ok {
		// stdDecoder matches everything, so this cannot happen with the
		// default registry; guard for custom registries.
		return nil, apperrors.NewDecodeError(path, image.ErrFormat)
	}

	img, err := dec.Decode(br, opts)
	if err != nil {
		return nil, apperrors.NewDecodeError(path, err)
	}

	frame := &Frame{
		Path:     path,
		Image:    img,
		Format:   formatName(magic, data),
		BitDepth: bitDepth(img),
		FileSize: int64(len(data)),
	}

	if opts.Colormap != nil {
		if gray, ok := img.(*image.Gray16); ok {
			frame.Image = applyColormap(gray, opts)
		}
	}
	return frame, nil
}

// applyColormap maps every 16-bit sample through the colormap.
func applyColormap(src *image.Gray16, opts Options) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			v := uint32(src.Gray16At(x, y).Y)
			dst.SetRGBA(x, y, opts.Colormap.RGB(v, 65535))
		}
	}
	return dst
}

// Identify reads only as much of the file as needed to report its format
// and geometry.
func Identify(ctx context.Context, path string) (*Info, error) {
	_, span := tracer.Start(ctx, "decode.Identify",
		trace.WithAttributes(attribute.String("image.path", path)))
	defer span.End()

	f, err := os.Open(path)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, apperrors.NewDecodeError(path, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, apperrors.NewDecodeError(path, err)
	}

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, apperrors.NewDecodeError(path, err)
	}

	return &Info{
		Path:     path,
		Format:   format,
		Width:    cfg.Width,
		Height:   cfg.Height,
		BitDepth: modelBitDepth(cfg.ColorModel),
		FileSize: st.Size(),
	}, nil
}

// formatName names the format from its magic bytes, falling back to the
// image package's sniffing over the full data for non-Netpbm formats.
func formatName(magic, data []byte) string {
	if (netpbmDecoder{}).Match(magic) {
		switch magic[1] {
		case '1', '4':
			return "pbm"
		case '2', '5':
			return "pgm"
		default:
			return "ppm"
		}
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || format == "" {
		// The name is cosmetic; decoding already succeeded.
		return "image"
	}
	return format
}

// bitDepth reports the sample width of a decoded image.
func bitDepth(img image.Image) int {
	switch img.(type) {
	case *image.Gray16, *image.RGBA64, *image.NRGBA64:
		return 16
	default:
		return 8
	}
}

// modelBitDepth reports the sample width implied by a color model.
func modelBitDepth(m color.Model) int {
	switch m {
	case color.Gray16Model, color.RGBA64Model, color.NRGBA64Model:
		return 16
	default:
		return 8
	}
}
