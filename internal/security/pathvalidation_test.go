package security

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidatePathWithinDirectory(t *testing.T) {
	tmpDir := t.TempDir()

	reportsDir := filepath.Join(tmpDir, "reports")
	outsideDir := filepath.Join(tmpDir, "outside")
	for _, dir := range []string{reportsDir, outsideDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("Failed to create %s: %v", dir, err)
		}
	}
	if err := os.WriteFile(filepath.Join(outsideDir, "report.json"), []byte("{}"), 0644); err != nil {
		t.Fatalf("Failed to create outside report: %v", err)
	}
	linkPath := filepath.Join(reportsDir, "latest")
	if err := os.Symlink(outsideDir, linkPath); err != nil {
		t.Fatalf("Failed to create symlink: %v", err)
	}

	tests := []struct {
		name      string
		filePath  string
		dir       string
		wantError bool
	}{
		{"report in directory", filepath.Join(reportsDir, "serve.json"), reportsDir, false},
		{"report in missing subdirectory", filepath.Join(reportsDir, "2026", "10", "serve.json"), reportsDir, false},
		{"directory itself", reportsDir, reportsDir, false},
		{"dot-dot escape", filepath.Join(reportsDir, "..", "serve.json"), reportsDir, true},
		{"relative escape", "../../../etc/passwd", reportsDir, true},
		{"absolute outside", "/etc/passwd", reportsDir, true},
		{"sibling with shared prefix", reportsDir + "-old/serve.json", reportsDir, true},
		{"through symlink to existing file", filepath.Join(linkPath, "report.json"), reportsDir, true},
		{"through symlink to new file", filepath.Join(linkPath, "new", "serve.json"), reportsDir, true},
		{"symlink itself", linkPath, reportsDir, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePathWithinDirectory(tt.filePath, tt.dir)
			if (err != nil) != tt.wantError {
				t.Errorf("ValidatePathWithinDirectory(%q) error = %v, wantError %v", tt.filePath, err, tt.wantError)
			}
		})
	}
}

func TestValidatePathWithinAllowedDirs(t *testing.T) {
	tmpDir1 := t.TempDir()
	tmpDir2 := t.TempDir()

	tests := []struct {
		name        string
		filePath    string
		allowedDirs []string
		wantError   bool
	}{
		{"first dir", filepath.Join(tmpDir1, "a.json"), []string{tmpDir1, tmpDir2}, false},
		{"second dir", filepath.Join(tmpDir2, "b.json"), []string{tmpDir1, tmpDir2}, false},
		{"outside all", "/etc/passwd", []string{tmpDir1, tmpDir2}, true},
		{"no dirs", filepath.Join(tmpDir1, "a.json"), nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePathWithinAllowedDirs(tt.filePath, tt.allowedDirs)
			if (err != nil) != tt.wantError {
				t.Errorf("ValidatePathWithinAllowedDirs() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestValidateReportPath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{"temp dir report", filepath.Join(os.TempDir(), "serve_alice.json"), ""},
		{"relative report", "serve_alice.json", ""},
		{"wrong extension", filepath.Join(os.TempDir(), "serve_alice.txt"), ".json extension"},
		{"no extension", filepath.Join(os.TempDir(), "serve_alice"), ".json extension"},
		{"outside allowed dirs", "/etc/serve.json", "allowed directories"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateReportPath(tt.path)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("ValidateReportPath(%q) unexpected error: %v", tt.path, err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ValidateReportPath(%q) error = %v, want containing %q", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"alice", "alice"},
		{"Alice Smith", "Alice_Smith"},
		{"../../etc/passwd", "etc_passwd"},
		{"serve #2 (slow-mo)", "serve_2_slow-mo"},
		{"__hidden__", "hidden"},
		{"v1.2", "v1.2"},
		{"", "unknown"},
		{"///", "unknown"},
		{"jöe", "j_e"},
	}
	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	long := SanitizeFilename(strings.Repeat("a", 500))
	if len(long) != maxFilenameLen {
		t.Errorf("SanitizeFilename(500 chars) length = %d, want %d", len(long), maxFilenameLen)
	}
}

func TestReportFilename(t *testing.T) {
	tests := []struct {
		subject, runID, want string
	}{
		{"alice", "1b4e28ba-2fa1-11d2-883f-0016d3cca427", "serve_alice_1b4e28ba.json"},
		{"", "abc", "serve_unknown_abc.json"},
		{"coach/../bob", "", "serve_coach_.._bob_unknown.json"},
	}
	for _, tt := range tests {
		if got := ReportFilename(tt.subject, tt.runID); got != tt.want {
			t.Errorf("ReportFilename(%q, %q) = %q, want %q", tt.subject, tt.runID, got, tt.want)
		}
	}
}
