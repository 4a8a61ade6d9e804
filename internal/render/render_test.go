package render

import (
	"image"
	"image/color"
	"strings"
	"testing"
)

func TestFitSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		srcW, srcH   int
		cols, rows   int
		upscale      bool
		wantW, wantH int
	}{
		{
			name: "fits without upscale stays native",
			srcW: 10, srcH: 10, cols: 80, rows: 24,
			wantW: 10, wantH: 10,
		},
		{
			name: "fits with upscale grows to viewport",
			srcW: 10, srcH: 10, cols: 80, rows: 24, upscale: true,
			wantW: 48, wantH: 48,
		},
		{
			name: "wide image bound by columns",
			srcW: 800, srcH: 100, cols: 80, rows: 24,
			wantW: 80, wantH: 10,
		},
		{
			name: "tall image bound by rows",
			srcW: 100, srcH: 960, cols: 80, rows: 24,
			wantW: 5, wantH: 48,
		},
		{
			name: "extreme aspect ratio never collapses to zero",
			srcW: 10000, srcH: 1, cols: 80, rows: 24,
			wantW: 80, wantH: 1,
		},
		{
			name: "zero source",
			srcW: 0, srcH: 10, cols: 80, rows: 24,
			wantW: 0, wantH: 0,
		},
		{
			name: "zero viewport",
			srcW: 10, srcH: 10, cols: 0, rows: 24,
			wantW: 0, wantH: 0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			w, h := FitSize(tc.srcW, tc.srcH, tc.cols, tc.rows, tc.upscale)
			if w != tc.wantW || h != tc.wantH {
				t.Errorf("FitSize(%d, %d, %d, %d, %v) = (%d, %d), want (%d, %d)",
					tc.srcW, tc.srcH, tc.cols, tc.rows, tc.upscale, w, h, tc.wantW, tc.wantH)
			}
		})
	}
}

func TestHalfBlocks(t *testing.T) {
	t.Parallel()

	t.Run("one cell carries both pixel colors", func(t *testing.T) {
		t.Parallel()
		img := image.NewRGBA(image.Rect(0, 0, 1, 2))
		img.SetRGBA(0, 0, color.RGBA{R: 255, A: 255})
		img.SetRGBA(0, 1, color.RGBA{B: 255, A: 255})

		got := HalfBlocks(img)
		want := "\x1b[38;2;255;0;0;48;2;0;0;255m▀\x1b[0m"
		if got != want {
			t.Errorf("HalfBlocks = %q, want %q", got, want)
		}
	})

	t.Run("runs of identical colors emit one escape", func(t *testing.T) {
		t.Parallel()
		img := image.NewRGBA(image.Rect(0, 0, 4, 2))
		for x := 0; x < 4; x++ {
			img.SetRGBA(x, 0, color.RGBA{G: 255, A: 255})
			img.SetRGBA(x, 1, color.RGBA{G: 255, A: 255})
		}

		got := HalfBlocks(img)
		if n := strings.Count(got, "\x1b[38;2;"); n != 1 {
			t.Errorf("escape count = %d, want 1 in %q", n, got)
		}
		if n := strings.Count(got, halfBlock); n != 4 {
			t.Errorf("glyph count = %d, want 4", n)
		}
	})

	t.Run("odd height duplicates last row", func(t *testing.T) {
		t.Parallel()
		img := image.NewRGBA(image.Rect(0, 0, 2, 3))
		got := HalfBlocks(img)
		if n := strings.Count(got, "\n"); n != 1 {
			t.Errorf("line breaks = %d, want 1 for a 3-pixel-tall image", n)
		}
	})

	t.Run("empty image", func(t *testing.T) {
		t.Parallel()
		if got := HalfBlocks(image.NewRGBA(image.Rect(0, 0, 0, 0))); got != "" {
			t.Errorf("HalfBlocks(empty) = %q, want empty", got)
		}
	})
}

func TestRender(t *testing.T) {
	t.Parallel()

	t.Run("letterbox fills the viewport with background", func(t *testing.T) {
		t.Parallel()
		img := image.NewRGBA(image.Rect(0, 0, 2, 2))
		out := Render(img, Options{Cols: 10, Rows: 4, Letterbox: true})

		lines := strings.Split(out, "\n")
		if len(lines) != 4 {
			t.Fatalf("rows = %d, want 4", len(lines))
		}
		if !strings.Contains(out, "146;146;146") {
			t.Error("letterbox background color missing from output")
		}
		for i, line := range lines {
			if n := strings.Count(line, halfBlock); n != 10 {
				t.Errorf("row %d has %d cells, want 10", i, n)
			}
		}
	})

	t.Run("without letterbox output matches fitted size", func(t *testing.T) {
		t.Parallel()
		img := image.NewRGBA(image.Rect(0, 0, 6, 4))
		out := Render(img, Options{Cols: 80, Rows: 24})

		lines := strings.Split(out, "\n")
		if len(lines) != 2 {
			t.Fatalf("rows = %d, want 2", len(lines))
		}
		if n := strings.Count(lines[0], halfBlock); n != 6 {
			t.Errorf("cells per row = %d, want 6", n)
		}
	})

	t.Run("nil and degenerate inputs", func(t *testing.T) {
		t.Parallel()
		if out := Render(nil, Options{Cols: 10, Rows: 10}); out != "" {
			t.Errorf("Render(nil) = %q, want empty", out)
		}
		img := image.NewRGBA(image.Rect(0, 0, 5, 5))
		if out := Render(img, Options{}); out != "" {
			t.Errorf("Render with zero viewport = %q, want empty", out)
		}
	})
}
