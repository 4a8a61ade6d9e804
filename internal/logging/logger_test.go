package logging

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// TestFieldHelpers tests the Field constructor functions.
func TestFieldHelpers(t *testing.T) {
	tests := []struct {
		name      string
		field     Field
		wantKey   string
		wantValue any
	}{
		{"String", String("file", "sunset.pgm"), "file", "sunset.pgm"},
		{"Int", Int("width", 640), "width", 640},
		{"Uint64", Uint64("bytes", 12345678901234567890), "bytes", uint64(12345678901234567890)},
		{"Float64", Float64("seconds", 0.042), "seconds", 0.042},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.field.Key != tt.wantKey {
				t.Errorf("Key = %q, want %q", tt.field.Key, tt.wantKey)
			}
			if tt.field.Value != tt.wantValue {
				t.Errorf("Value = %v, want %v", tt.field.Value, tt.wantValue)
			}
		})
	}

	t.Run("Err uses the error key", func(t *testing.T) {
		decodeErr := errors.New("short pixel data")
		f := Err(decodeErr)
		if f.Key != "error" {
			t.Errorf("Err().Key = %q, want %q", f.Key, "error")
		}
		if f.Value != decodeErr {
			t.Errorf("Err().Value = %v, want %v", f.Value, decodeErr)
		}
	})

	t.Run("Err with nil error", func(t *testing.T) {
		f := Err(nil)
		if f.Key != "error" || f.Value != nil {
			t.Errorf("Err(nil) = %+v, want error key and nil value", f)
		}
	})
}

// TestNewZerologAdapter tests the ZerologAdapter constructor.
func TestNewZerologAdapter(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewZerologAdapter(zerolog.New(&buf))
	if adapter == nil {
		t.Fatal("NewZerologAdapter returned nil")
	}

	adapter.Info("frame decoded")
	if !strings.Contains(buf.String(), "frame decoded") {
		t.Errorf("NewZerologAdapter logger not working, output: %s", buf.String())
	}
}

// TestNewDefaultLogger tests the default logger constructor.
func TestNewDefaultLogger(t *testing.T) {
	if NewDefaultLogger() == nil {
		t.Fatal("NewDefaultLogger returned nil")
	}
}

// TestNewLogger tests the custom logger constructor.
func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "decode")
	if logger == nil {
		t.Fatal("NewLogger returned nil")
	}

	logger.Info("loaded")
	output := buf.String()

	if !strings.Contains(output, "decode") {
		t.Errorf("NewLogger should include the component field, got: %s", output)
	}
	if !strings.Contains(output, "loaded") {
		t.Errorf("NewLogger should include the message, got: %s", output)
	}
}

// TestZerologAdapter_Info tests the Info method.
func TestZerologAdapter_Info(t *testing.T) {
	tests := []struct {
		name     string
		msg      string
		fields   []Field
		contains []string
	}{
		{
			name:     "no fields",
			msg:      "viewer started",
			fields:   nil,
			contains: []string{"viewer started", "info"},
		},
		{
			name:     "with string field",
			msg:      "frame decoded",
			fields:   []Field{String("format", "pgm")},
			contains: []string{"frame decoded", "pgm"},
		},
		{
			name:     "with multiple fields",
			msg:      "image rendered",
			fields:   []Field{String("file", "dunes.ppm"), Int("width", 800)},
			contains: []string{"image rendered", "dunes.ppm", "800"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(&buf, "viewer")
			logger.Info(tt.msg, tt.fields...)

			output := buf.String()
			for _, want := range tt.contains {
				if !strings.Contains(output, want) {
					t.Errorf("output should contain %q, got: %s", want, output)
				}
			}
		})
	}
}

// TestZerologAdapter_Error tests the Error method.
func TestZerologAdapter_Error(t *testing.T) {
	tests := []struct {
		name     string
		msg      string
		err      error
		fields   []Field
		contains []string
	}{
		{
			name:     "with error",
			msg:      "decode failed",
			err:      errors.New("truncated raw data"),
			fields:   nil,
			contains: []string{"decode failed", "truncated raw data", "error"},
		},
		{
			name:     "with nil error",
			msg:      "metrics server stopped",
			err:      nil,
			fields:   nil,
			contains: []string{"metrics server stopped", "error"},
		},
		{
			name:     "with error and fields",
			msg:      "decode failed",
			err:      errors.New("maxval 0 out of range"),
			fields:   []Field{String("file", "bad.pgm"), Int("index", 3)},
			contains: []string{"decode failed", "maxval 0 out of range", "bad.pgm", "3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(&buf, "viewer")
			logger.Error(tt.msg, tt.err, tt.fields...)

			output := buf.String()
			for _, want := range tt.contains {
				if !strings.Contains(output, want) {
					t.Errorf("output should contain %q, got: %s", want, output)
				}
			}
		})
	}
}

// TestZerologAdapter_Debug tests the Debug method.
func TestZerologAdapter_Debug(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologAdapter(zerolog.New(&buf).Level(zerolog.DebugLevel))

	logger.Debug("sniffed format", String("decoder", "netpbm"))

	output := buf.String()
	if !strings.Contains(output, "sniffed format") {
		t.Errorf("Debug output should contain the message, got: %s", output)
	}
	if !strings.Contains(output, "debug") {
		t.Errorf("Debug output should contain the level, got: %s", output)
	}
}

// TestZerologAdapter_PrintfAndPrintln tests the printf-style compatibility methods.
func TestZerologAdapter_PrintfAndPrintln(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "server")

	logger.Printf("listening on %s", ":9090")
	if !strings.Contains(buf.String(), "listening on :9090") {
		t.Errorf("Printf should format the message, got: %s", buf.String())
	}

	buf.Reset()
	logger.Println("shutdown", "complete")
	if !strings.Contains(buf.String(), "shutdown") || !strings.Contains(buf.String(), "complete") {
		t.Errorf("Println should include all arguments, got: %s", buf.String())
	}
}

// TestZerologAdapter_applyFields tests field application with all supported types.
func TestZerologAdapter_applyFields(t *testing.T) {
	tests := []struct {
		name     string
		field    Field
		contains string
	}{
		{"string field", Field{Key: "palette", Value: "rainbow"}, "rainbow"},
		{"int field", Field{Key: "height", Value: 480}, "480"},
		{"int64 field", Field{Key: "size", Value: int64(9223372036854775807)}, "9223372036854775807"},
		{"uint64 field", Field{Key: "samples", Value: uint64(18446744073709551615)}, "18446744073709551615"},
		{"float64 field", Field{Key: "elapsed", Value: 0.25}, "0.25"},
		{"error field", Field{Key: "cause", Value: errors.New("not a netpbm file")}, "not a netpbm file"},
		{"bool field", Field{Key: "upscale", Value: true}, "true"},
		{"interface field", Field{Key: "frame", Value: struct{ Index int }{Index: 1}}, "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(&buf, "decode")
			logger.Info("loaded", tt.field)

			output := buf.String()
			if !strings.Contains(output, tt.contains) {
				t.Errorf("applyFields should handle %s, output: %s", tt.name, output)
			}
		})
	}
}

// TestStdLoggerAdapter exercises the standard library fallback backend.
func TestStdLoggerAdapter(t *testing.T) {
	newAdapter := func() (*StdLoggerAdapter, *bytes.Buffer) {
		var buf bytes.Buffer
		return NewStdLoggerAdapter(log.New(&buf, "", 0)), &buf
	}

	t.Run("Info with fields", func(t *testing.T) {
		adapter, buf := newAdapter()
		adapter.Info("frame decoded", String("file", "dot.pgm"))
		for _, want := range []string{"[INFO]", "frame decoded", "file", "dot.pgm"} {
			if !strings.Contains(buf.String(), want) {
				t.Errorf("output should contain %q, got: %s", want, buf.String())
			}
		}
	})

	t.Run("Error includes the cause", func(t *testing.T) {
		adapter, buf := newAdapter()
		adapter.Error("decode failed", errors.New("short pixel data"), Int("index", 2))
		for _, want := range []string{"[ERROR]", "decode failed", "short pixel data", "index", "2"} {
			if !strings.Contains(buf.String(), want) {
				t.Errorf("output should contain %q, got: %s", want, buf.String())
			}
		}
	})

	t.Run("Error with nil error", func(t *testing.T) {
		adapter, buf := newAdapter()
		adapter.Error("viewer exited", nil)
		if strings.Contains(buf.String(), "error=") {
			t.Errorf("nil error should not emit an error field, got: %s", buf.String())
		}
	})

	t.Run("Debug with fields", func(t *testing.T) {
		adapter, buf := newAdapter()
		adapter.Debug("rendering", Int("cols", 80))
		for _, want := range []string{"[DEBUG]", "rendering", "cols", "80"} {
			if !strings.Contains(buf.String(), want) {
				t.Errorf("output should contain %q, got: %s", want, buf.String())
			}
		}
	})

	t.Run("Printf and Println", func(t *testing.T) {
		adapter, buf := newAdapter()
		adapter.Printf("loaded %d of %d", 2, 5)
		if !strings.Contains(buf.String(), "loaded 2 of 5") {
			t.Errorf("Printf should format the message, got: %s", buf.String())
		}
		buf.Reset()
		adapter.Println("a.pgm", "b.pgm")
		if !strings.Contains(buf.String(), "a.pgm") || !strings.Contains(buf.String(), "b.pgm") {
			t.Errorf("Println should include all arguments, got: %s", buf.String())
		}
	})
}

// TestLoggerInterface verifies both adapters implement the Logger interface.
func TestLoggerInterface(t *testing.T) {
	var buf bytes.Buffer
	var _ Logger = NewLogger(&buf, "viewer")
	var _ Logger = NewStdLoggerAdapter(log.New(&buf, "", 0))
}
