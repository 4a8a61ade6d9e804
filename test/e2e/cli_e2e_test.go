package e2e

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// TestCLI_E2E verifies the built binary functions correctly.
func TestCLI_E2E(t *testing.T) {
	tmpDir := t.TempDir()
	binName := "pixview"
	if runtime.GOOS == "windows" {
		binName = "pixview.exe"
	}
	binPath := filepath.Join(tmpDir, binName)

	// go test runs with the package directory as CWD; build from the
	// module root.
	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/pixview")
	cmd.Dir = "../.."
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("Failed to build pixview: %v", err)
	}

	// A 2x2 16-bit gradient and a 1x1 8-bit dot.
	widePGM := filepath.Join(tmpDir, "wide.pgm")
	if err := os.WriteFile(widePGM, []byte("P5\n2 2\n65535\n\x00\x00\x40\x00\x80\x00\xff\xff"), 0o644); err != nil {
		t.Fatal(err)
	}
	dotPGM := filepath.Join(tmpDir, "dot.pgm")
	if err := os.WriteFile(dotPGM, []byte("P5 1 1 255\n\x7f"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		args     []string
		wantOut  string // substring match (case-insensitive)
		wantCode int
	}{
		{
			name:     "Help",
			args:     []string{"--help"},
			wantOut:  "usage",
			wantCode: 0,
		},
		{
			name:     "Version Flag",
			args:     []string{"--version"},
			wantOut:  "pixview",
			wantCode: 0,
		},
		{
			name:     "Identify",
			args:     []string{"--identify", widePGM, dotPGM},
			wantOut:  "16-bit",
			wantCode: 0,
		},
		{
			name:     "Print",
			args:     []string{"--print", dotPGM},
			wantOut:  "dot.pgm",
			wantCode: 0,
		},
		{
			name:     "Print Colorized",
			args:     []string{"--print", "-c", widePGM},
			wantOut:  "wide.pgm",
			wantCode: 0,
		},
		{
			name:     "No Input Files",
			args:     []string{"--print"},
			wantOut:  "no input files",
			wantCode: 4,
		},
		{
			name:     "Invalid Theme",
			args:     []string{"--theme", "sepia", dotPGM},
			wantOut:  "theme",
			wantCode: 4,
		},
		{
			name:     "Missing File",
			args:     []string{"--print", filepath.Join(tmpDir, "absent.pgm")},
			wantOut:  "",
			wantCode: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := exec.Command(binPath, tt.args...)
			cmd.Env = append(os.Environ(), "NO_COLOR=1")
			output, err := cmd.CombinedOutput()

			outStr := string(output)

			if tt.wantCode == 0 {
				if err != nil {
					t.Errorf("Command failed unexpectedly: %v\nOutput: %s", err, outStr)
				}
			} else {
				if err == nil {
					t.Errorf("Expected non-zero exit code, but command succeeded.\nOutput: %s", outStr)
				} else if exitErr, ok := err.(*exec.ExitError); ok {
					if exitErr.ExitCode() != tt.wantCode {
						t.Errorf("Exit code = %d, want %d\nOutput: %s",
							exitErr.ExitCode(), tt.wantCode, outStr)
					}
				}
			}

			if tt.wantOut != "" {
				if !strings.Contains(strings.ToLower(outStr), strings.ToLower(tt.wantOut)) {
					t.Errorf("Output missing expected string.\nExpected: %q\nGot:\n%s", tt.wantOut, outStr)
				}
			}
		})
	}
}
