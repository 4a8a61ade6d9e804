// Package netpbm decodes the six Netpbm image formats: PBM (P1/P4),
// PGM (P2/P5) and PPM (P3/P6), in both their ASCII and raw encodings.
//
// Samples wider than 8 bits (maxval > 255) are supported and decoded into
// 16-bit image types. Raw multi-byte samples are big-endian per the Netpbm
// specification; WithByteOrder can flip this for producers that write
// little-endian data.
//
// The package registers itself with the standard image package, so
// image.Decode recognizes Netpbm files once this package is imported.
package netpbm

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"io"
)

// MaxMaxval is the largest sample value the Netpbm formats allow.
const MaxMaxval = 65535

// Header holds the parsed Netpbm header.
type Header struct {
	// Magic is the two-character format identifier, "P1" through "P6".
	Magic string
	// Width and Height are the image dimensions in pixels.
	Width  int
	Height int
	// Maxval is the largest sample value. It is fixed at 1 for PBM.
	Maxval int
}

// Raw reports whether the pixel data is binary rather than ASCII.
func (h Header) Raw() bool {
	return h.Magic == "P4" || h.Magic == "P5" || h.Magic == "P6"
}

// Channels returns the number of samples per pixel.
func (h Header) Channels() int {
	if h.Magic == "P3" || h.Magic == "P6" {
		return 3
	}
	return 1
}

// Wide reports whether samples occupy two bytes (maxval > 255).
func (h Header) Wide() bool { return h.Maxval > 255 }

// options holds decode-time settings.
type options struct {
	byteOrder binary.ByteOrder
}

// Option configures decoding.
type Option func(*options)

// WithByteOrder sets the byte order used for raw samples wider than 8 bits.
// The Netpbm default is binary.BigEndian.
func WithByteOrder(order binary.ByteOrder) Option {
	return func(o *options) { o.byteOrder = order }
}

// DecodeHeader parses a Netpbm header from r, leaving the reader positioned
// at the first byte of pixel data.
//
// Comments (# to end of line) are legal between any two header tokens and
// directly after the magic number. Dimensions must be positive and maxval
// must lie in [1, 65535].
func DecodeHeader(r *bufio.Reader) (Header, error) {
	var h Header

	magic, err := readToken(r)
	if err != nil {
		return h, fmt.Errorf("reading magic: %w", err)
	}
	switch magic {
	case "P1", "P2", "P3", "P4", "P5", "P6":
		h.Magic = magic
	default:
		return h, fmt.Errorf("not a netpbm file: magic %q", magic)
	}

	if h.Width, err = readNumber(r, "width"); err != nil {
		return h, err
	}
	if h.Height, err = readNumber(r, "height"); err != nil {
		return h, err
	}
	if h.Width <= 0 || h.Height <= 0 {
		return h, fmt.Errorf("invalid dimensions %dx%d", h.Width, h.Height)
	}

	if h.Magic == "P1" || h.Magic == "P4" {
		h.Maxval = 1
	} else {
		if h.Maxval, err = readNumber(r, "maxval"); err != nil {
			return h, err
		}
		if h.Maxval < 1 || h.Maxval > MaxMaxval {
			return h, fmt.Errorf("maxval %d out of range [1, %d]", h.Maxval, MaxMaxval)
		}
	}

	if h.Raw() {
		// Exactly one whitespace byte separates the header from raw pixel
		// data, except that comment lines may still trail the maxval. Each
		// comment runs to its newline, and that newline doubles as the
		// separator. Past the separator a 0x0A is data, not formatting.
		b, err := r.ReadByte()
		if err != nil {
			return h, eofToUnexpected(err)
		}
		if b == '#' {
			if err := r.UnreadByte(); err != nil {
				return h, err
			}
		} else if !isSpace(b) {
			return h, fmt.Errorf("missing whitespace after header, got %q", b)
		}
		if err := skipTrailingComments(r); err != nil {
			return h, err
		}
	}
	return h, nil
}

// skipTrailingComments consumes comment lines between the header and the
// raw pixel data. The terminating newline belongs to the comment, so pixel
// data begins directly after it.
func skipTrailingComments(br *bufio.Reader) error {
	for {
		peek, err := br.Peek(1)
		if err != nil || peek[0] != '#' {
			return nil
		}
		for {
			c, err := br.ReadByte()
			if err != nil {
				return eofToUnexpected(err)
			}
			if c == '\n' || c == '\r' {
				break
			}
		}
	}
}

// Decode reads a complete Netpbm image from r.
//
// The returned concrete type depends on the format and bit depth:
// image.Gray for PBM and 8-bit PGM, image.Gray16 for 16-bit PGM,
// image.RGBA for 8-bit PPM and image.RGBA64 for 16-bit PPM. Samples are
// scaled from [0, maxval] to the full range of the pixel type. Data past
// the final sample is ignored; missing data is an error.
func Decode(r io.Reader, opts ...Option) (image.Image, error) {
	o := options{byteOrder: binary.BigEndian}
	for _, opt := range opts {
		opt(&o)
	}

	br := bufio.NewReader(r)
	h, err := DecodeHeader(br)
	if err != nil {
		return nil, err
	}

	switch h.Magic {
	case "P1":
		return decodeBitmapASCII(br, h)
	case "P4":
		return decodeBitmapRaw(br, h)
	case "P2", "P3":
		return decodeSamples(br, h, asciiSampleReader(br))
	case "P5", "P6":
		return decodeSamples(br, h, rawSampleReader(br, h, o.byteOrder))
	}
	// DecodeHeader only returns known magics.
	return nil, fmt.Errorf("unsupported magic %q", h.Magic)
}

// DecodeConfig parses only the header and returns the image configuration.
func DecodeConfig(r io.Reader) (image.Config, error) {
	h, err := DecodeHeader(bufio.NewReader(r))
	if err != nil {
		return image.Config{}, err
	}

	var model color.Model
	switch {
	case h.Channels() == 3 && h.Wide():
		model = color.RGBA64Model
	case h.Channels() == 3:
		model = color.RGBAModel
	case h.Wide():
		model = color.Gray16Model
	default:
		model = color.GrayModel
	}
	return image.Config{ColorModel: model, Width: h.Width, Height: h.Height}, nil
}

// sampleReader returns the next sample value, in [0, maxval].
type sampleReader func() (int, error)

// asciiSampleReader reads whitespace-separated decimal samples.
func asciiSampleReader(br *bufio.Reader) sampleReader {
	return func() (int, error) {
		return readNumber(br, "sample")
	}
}

// rawSampleReader reads one or two bytes per sample, depending on maxval.
func rawSampleReader(br *bufio.Reader, h Header, order binary.ByteOrder) sampleReader {
	if !h.Wide() {
		return func() (int, error) {
			b, err := br.ReadByte()
			if err != nil {
				return 0, eofToUnexpected(err)
			}
			return int(b), nil
		}
	}
	buf := make([]byte, 2)
	return func() (int, error) {
		if _, err := io.ReadFull(br, buf); err != nil {
			return 0, eofToUnexpected(err)
		}
		return int(order.Uint16(buf)), nil
	}
}

// decodeSamples fills a grayscale or RGB image from consecutive samples.
func decodeSamples(br *bufio.Reader, h Header, next sampleReader) (image.Image, error) {
	read := func() (int, error) {
		v, err := next()
		if err != nil {
			return 0, fmt.Errorf("%s pixel data: %w", h.Magic, err)
		}
		if v > h.Maxval {
			// Out-of-range samples are clamped rather than rejected; real
			// producers get this wrong often enough that rejection would
			// make the viewer useless on them.
			v = h.Maxval
		}
		return v, nil
	}

	switch {
	case h.Channels() == 1 && !h.Wide():
		img := image.NewGray(image.Rect(0, 0, h.Width, h.Height))
		for y := 0; y < h.Height; y++ {
			row := img.Pix[y*img.Stride : y*img.Stride+h.Width]
			for x := range row {
				v, err := read()
				if err != nil {
					return nil, err
				}
				row[x] = uint8(scale(v, h.Maxval, 255))
			}
		}
		return img, nil

	case h.Channels() == 1:
		img := image.NewGray16(image.Rect(0, 0, h.Width, h.Height))
		for y := 0; y < h.Height; y++ {
			for x := 0; x < h.Width; x++ {
				v, err := read()
				if err != nil {
					return nil, err
				}
				img.SetGray16(x, y, color.Gray16{Y: uint16(scale(v, h.Maxval, 65535))})
			}
		}
		return img, nil

	case !h.Wide():
		img := image.NewRGBA(image.Rect(0, 0, h.Width, h.Height))
		for y := 0; y < h.Height; y++ {
			for x := 0; x < h.Width; x++ {
				var rgb [3]uint8
				for c := 0; c < 3; c++ {
					v, err := read()
					if err != nil {
						return nil, err
					}
					rgb[c] = uint8(scale(v, h.Maxval, 255))
				}
				img.SetRGBA(x, y, color.RGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 255})
			}
		}
		return img, nil

	default:
		img := image.NewRGBA64(image.Rect(0, 0, h.Width, h.Height))
		for y := 0; y < h.Height; y++ {
			for x := 0; x < h.Width; x++ {
				var rgb [3]uint16
				for c := 0; c < 3; c++ {
					v, err := read()
					if err != nil {
						return nil, err
					}
					rgb[c] = uint16(scale(v, h.Maxval, 65535))
				}
				img.SetRGBA64(x, y, color.RGBA64{R: rgb[0], G: rgb[1], B: rgb[2], A: 65535})
			}
		}
		return img, nil
	}
}

// decodeBitmapASCII decodes P1 data. Digits need not be separated by
// whitespace, so samples are read rune by rune.
func decodeBitmapASCII(br *bufio.Reader, h Header) (image.Image, error) {
	img := image.NewGray(image.Rect(0, 0, h.Width, h.Height))
	for y := 0; y < h.Height; y++ {
		for x := 0; x < h.Width; x++ {
			bit, err := readBit(br)
			if err != nil {
				return nil, fmt.Errorf("P1 pixel data: %w", err)
			}
			// 1 is black in PBM.
			if bit == 0 {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img, nil
}

// decodeBitmapRaw decodes P4 data: bits packed MSB first, each row padded
// to a byte boundary.
func decodeBitmapRaw(br *bufio.Reader, h Header) (image.Image, error) {
	img := image.NewGray(image.Rect(0, 0, h.Width, h.Height))
	rowBytes := (h.Width + 7) / 8
	row := make([]byte, rowBytes)
	for y := 0; y < h.Height; y++ {
		if _, err := io.ReadFull(br, row); err != nil {
			return nil, fmt.Errorf("P4 pixel data: %w", eofToUnexpected(err))
		}
		for x := 0; x < h.Width; x++ {
			if row[x/8]&(0x80>>uint(x%8)) == 0 {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img, nil
}

// scale maps v from [0, maxval] to [0, full] by integer arithmetic,
// matching the normalization the viewer applies everywhere else.
func scale(v, maxval, full int) int {
	if maxval == full {
		return v
	}
	return full * v / maxval
}

// readToken skips whitespace and comments, then returns the next run of
// non-whitespace bytes.
func readToken(br *bufio.Reader) (string, error) {
	if err := skipSpaceAndComments(br); err != nil {
		return "", err
	}
	var tok []byte
	for {
		b, err := br.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		if isSpace(b) || b == '#' {
			// The delimiter stays unconsumed for the next token; a comment
			// marker may directly follow a number.
			if err := br.UnreadByte(); err != nil {
				return "", err
			}
			break
		}
		tok = append(tok, b)
	}
	if len(tok) == 0 {
		return "", io.ErrUnexpectedEOF
	}
	return string(tok), nil
}

// readNumber reads the next token and parses it as a non-negative decimal.
func readNumber(br *bufio.Reader, what string) (int, error) {
	tok, err := readToken(br)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", what, err)
	}
	n := 0
	for _, c := range []byte(tok) {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("invalid %s %q", what, tok)
		}
		n = n*10 + int(c-'0')
		if n > 1<<30 {
			return 0, fmt.Errorf("%s %q too large", what, tok)
		}
	}
	return n, nil
}

// readBit reads the next 0 or 1 digit, skipping whitespace and comments.
func readBit(br *bufio.Reader) (int, error) {
	if err := skipSpaceAndComments(br); err != nil {
		return 0, err
	}
	b, err := br.ReadByte()
	if err != nil {
		return 0, eofToUnexpected(err)
	}
	switch b {
	case '0':
		return 0, nil
	case '1':
		return 1, nil
	}
	return 0, fmt.Errorf("invalid bitmap digit %q", b)
}

// skipSpaceAndComments consumes whitespace and # comments. A comment runs
// to the next CR or LF.
func skipSpaceAndComments(br *bufio.Reader) error {
	for {
		b, err := br.ReadByte()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if isSpace(b) {
			continue
		}
		if b == '#' {
			for {
				c, err := br.ReadByte()
				if err == io.EOF {
					return nil
				}
				if err != nil {
					return err
				}
				if c == '\n' || c == '\r' {
					break
				}
			}
			continue
		}
		return br.UnreadByte()
	}
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\v' || b == '\f'
}

func eofToUnexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

func init() {
	decode := func(r io.Reader) (image.Image, error) { return Decode(r) }
	image.RegisterFormat("pbm", "P1", decode, DecodeConfig)
	image.RegisterFormat("pgm", "P2", decode, DecodeConfig)
	image.RegisterFormat("ppm", "P3", decode, DecodeConfig)
	image.RegisterFormat("pbm", "P4", decode, DecodeConfig)
	image.RegisterFormat("pgm", "P5", decode, DecodeConfig)
	image.RegisterFormat("ppm", "P6", decode, DecodeConfig)
}
