// Package security guards the file paths the analysis tools write to.
package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidatePathWithinDirectory checks that filePath stays inside dir. Symlinks
// are resolved on the longest existing prefix of each path, so a link inside
// dir pointing elsewhere is caught even before the target file exists.
func ValidatePathWithinDirectory(filePath, dir string) error {
	target, err := canonicalPath(filePath)
	if err != nil {
		return err
	}
	root, err := canonicalPath(dir)
	if err != nil {
		return err
	}

	rel, err := filepath.Rel(root, target)
	if err != nil {
		return fmt.Errorf("path is outside %s: %w", dir, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return fmt.Errorf("path traversal detected: %s attempts to escape %s", filePath, dir)
	}
	return nil
}

// canonicalPath returns p as an absolute path with symlinks resolved on its
// nearest existing ancestor.
func canonicalPath(p string) (string, error) {
	abs, err := filepath.Abs(filepath.Clean(p))
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	rest := ""
	for cur := abs; ; {
		if resolved, err := filepath.EvalSymlinks(cur); err == nil {
			return filepath.Join(resolved, rest), nil
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return abs, nil
		}
		rest = filepath.Join(filepath.Base(cur), rest)
		cur = parent
	}
}

// ValidatePathWithinAllowedDirs checks that filePath is inside at least one
// of allowedDirs.
func ValidatePathWithinAllowedDirs(filePath string, allowedDirs []string) error {
	if len(allowedDirs) == 0 {
		return fmt.Errorf("no allowed directories specified")
	}
	for _, dir := range allowedDirs {
		if err := ValidatePathWithinDirectory(filePath, dir); err == nil {
			return nil
		}
	}
	return fmt.Errorf("path must be within one of the allowed directories: %v", allowedDirs)
}

// ValidateReportPath checks a report output path: it must name a .json file
// inside the working directory or the temp directory.
func ValidateReportPath(filePath string) error {
	if ext := filepath.Ext(filePath); ext != ".json" {
		return fmt.Errorf("report path %s must have .json extension, got %q", filePath, ext)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	return ValidatePathWithinAllowedDirs(filePath, []string{cwd, os.TempDir()})
}

// maxFilenameLen bounds names built by SanitizeFilename.
const maxFilenameLen = 128

// SanitizeFilename makes a safe filename component from an arbitrary string.
// Runs of characters other than ASCII letters, digits, dot, underscore and
// dash collapse into a single underscore; leading and trailing dots and
// underscores are trimmed. Empty results become "unknown".
func SanitizeFilename(s string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range s {
		if b.Len() >= maxFilenameLen {
			break
		}
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'),
			r == '.', r == '-':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteRune('_')
				lastUnderscore = true
			}
		}
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "unknown"
	}
	return out
}

// ReportFilename names the report file for one subject of a run, e.g.
// "serve_alice_1b4e28ba.json".
func ReportFilename(subject, runID string) string {
	id := SanitizeFilename(runID)
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("serve_%s_%s.json", SanitizeFilename(subject), id)
}
