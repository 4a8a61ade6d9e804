// Package colormap maps grayscale samples to RGB colors. It implements the
// gradients used to visualize high-bit-depth grayscale data, where a plain
// 8-bit downscale would flatten most of the dynamic range.
package colormap

import (
	"fmt"
	"image/color"
	"sort"
	"sync"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Map converts a grayscale sample into an RGB color.
type Map interface {
	// Name returns the identifier used to select this map.
	Name() string
	// RGB maps a sample in [0, maxval] to 8-bit RGB channels.
	RGB(value, maxval uint32) color.RGBA
}

// Grayscale is the identity mapping: the sample is normalized to 8 bits and
// replicated across the three channels.
type Grayscale struct{}

// Name returns "gray".
func (Grayscale) Name() string { return "gray" }

// RGB returns the normalized sample on all three channels.
// Normalization is integer: 255*value/maxval.
func (Grayscale) RGB(value, maxval uint32) color.RGBA {
	if maxval == 0 {
		maxval = 1
	}
	if value > maxval {
		value = maxval
	}
	n := uint8(255 * value / maxval)
	return color.RGBA{R: n, G: n, B: n, A: 255}
}

// Rainbow maps low samples to blue, midrange to green and high samples to
// red. With mid = maxval/2:
//
//	r = max(0, 255*(value/mid - 1))
//	b = max(0, 255*(1 - value/mid))
//	g = 255 - b - r
//
// so 0 maps to pure blue, mid to pure green and maxval to pure red.
type Rainbow struct{}

// Name returns "rainbow".
func (Rainbow) Name() string { return "rainbow" }

// RGB maps the sample along the blue-green-red ramp.
func (Rainbow) RGB(value, maxval uint32) color.RGBA {
	if maxval == 0 {
		maxval = 1
	}
	if value > maxval {
		value = maxval
	}
	mid := float64(maxval) / 2

	var r, b int
	if mid > 0 {
		r = int(max(0, 255*(float64(value)/mid-1)))
		b = int(max(0, 255*(1-float64(value)/mid)))
	} else {
		// maxval 1 degenerates to a two-color ramp.
		if value > 0 {
			r = 255
		} else {
			b = 255
		}
	}
	g := 255 - b - r
	return color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 255}
}

// Heat blends from black through red and orange to white in HSV space.
type Heat struct{}

// heatStops are the HSV blend anchors, evenly spaced over [0, 1].
var heatStops = []colorful.Color{
	{R: 0, G: 0, B: 0},
	{R: 0.8, G: 0, B: 0},
	{R: 1, G: 0.55, B: 0},
	{R: 1, G: 1, B: 1},
}

// Name returns "heat".
func (Heat) Name() string { return "heat" }

// RGB blends between the heat anchors for the normalized sample.
func (Heat) RGB(value, maxval uint32) color.RGBA {
	if maxval == 0 {
		maxval = 1
	}
	if value > maxval {
		value = maxval
	}
	pos := float64(value) / float64(maxval) * float64(len(heatStops)-1)
	i := int(pos)
	if i >= len(heatStops)-1 {
		i = len(heatStops) - 2
	}
	c := heatStops[i].BlendHsv(heatStops[i+1], pos-float64(i)).Clamped()
	r8, g8, b8 := c.RGB255()
	return color.RGBA{R: r8, G: g8, B: b8, A: 255}
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Map{}
)

// Register adds a colormap to the registry, replacing any previous map with
// the same name.
func Register(m Map) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[m.Name()] = m
}

// Get returns the colormap with the given name.
func Get(name string) (Map, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	m, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown colormap %q (have %v)", name, names())
	}
	return m, nil
}

// Names returns the registered colormap names, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return names()
}

func names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func init() {
	Register(Grayscale{})
	Register(Rainbow{})
	Register(Heat{})
}
