package decode

import (
	"bytes"
	"encoding/binary"
	"image"
	"io"
	"sync"

	"github.com/mbarre/pixview/internal/colormap"
	"github.com/mbarre/pixview/internal/netpbm"
)

// Options carries decode-time settings shared by all decoders.
type Options struct {
	// ByteOrder applies to raw Netpbm samples wider than 8 bits.
	// Nil means the format default (big-endian).
	ByteOrder binary.ByteOrder
	// Colormap, when non-nil, is applied to 16-bit grayscale images after
	// decoding. 8-bit and color images are never remapped.
	Colormap colormap.Map
}

// Decoder decodes one image format family.
type Decoder interface {
	// Name returns a human-readable format name.
	Name() string
	// Match reports whether the magic bytes belong to this decoder.
	Match(magic []byte) bool
	// Decode reads a complete image from r.
	Decode(r io.Reader, opts Options) (image.Image, error)
}

// Registry manages the available decoders in registration order.
type Registry struct {
	mu       sync.RWMutex
	decoders []Decoder
}

var defaultRegistry = &Registry{}

// Register adds a decoder to the default registry.
func Register(d Decoder) {
	defaultRegistry.Register(d)
}

// Lookup finds a decoder for the given magic bytes in the default registry.
func Lookup(magic []byte) (Decoder, bool) {
	return defaultRegistry.Lookup(magic)
}

// Register adds a decoder. Decoders registered first win ties.
func (r *Registry) Register(d Decoder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decoders = append(r.decoders, d)
}

// Lookup returns the first decoder matching the magic bytes.
func (r *Registry) Lookup(magic []byte) (Decoder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.decoders {
		if d.Match(magic) {
			return d, true
		}
	}
	return nil, false
}

// netpbmDecoder routes PBM/PGM/PPM data to the netpbm package, honoring the
// configured byte order for wide samples.
type netpbmDecoder struct{}

func (netpbmDecoder) Name() string { return "netpbm" }

func (netpbmDecoder) Match(magic []byte) bool {
	if len(magic) < 2 || magic[0] != 'P' {
		return false
	}
	return magic[1] >= '1' && magic[1] <= '6'
}

func (netpbmDecoder) Decode(r io.Reader, opts Options) (image.Image, error) {
	var netpbmOpts []netpbm.Option
	if opts.ByteOrder != nil {
		netpbmOpts = append(netpbmOpts, netpbm.WithByteOrder(opts.ByteOrder))
	}
	return netpbm.Decode(r, netpbmOpts...)
}

// stdDecoder is the fallback for everything the image package knows about:
// the stdlib codecs plus the golang.org/x/image ones blank-imported in
// formats.go.
type stdDecoder struct{}

func (stdDecoder) Name() string { return "std" }

// Match accepts anything; stdDecoder must be registered last.
func (stdDecoder) Match([]byte) bool { return true }

func (stdDecoder) Decode(r io.Reader, _ Options) (image.Image, error) {
	img, _, err := image.Decode(r)
	return img, err
}

// sniffLen is how many leading bytes Lookup gets to inspect.
const sniffLen = 16

// sniff returns up to sniffLen leading bytes without consuming them.
func sniff(br *bytes.Reader) ([]byte, error) {
	magic := make([]byte, sniffLen)
	n, err := br.ReadAt(magic, 0)
	if err != nil && err != io.EOF {
		return nil, err
	}
	return magic[:n], nil
}

func init() {
	Register(netpbmDecoder{})
	Register(stdDecoder{})
}
