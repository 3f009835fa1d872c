package fsutil

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestOSFileSystem_RoundTrip(t *testing.T) {
	fsys := OSFileSystem{}
	path := filepath.Join(t.TempDir(), "reports", "serve.json")

	if err := WriteFileAll(fsys, path, []byte(`{"ok":true}`)); err != nil {
		t.Fatalf("WriteFileAll: %v", err)
	}
	if !fsys.Exists(path) {
		t.Fatal("file should exist after WriteFileAll")
	}

	data, err := ReadFileLimited(fsys, path, 1024)
	if err != nil {
		t.Fatalf("ReadFileLimited: %v", err)
	}
	if string(data) != `{"ok":true}` {
		t.Errorf("got %q", data)
	}
}

func TestMemoryFileSystem_WriteAndRead(t *testing.T) {
	fsys := NewMemoryFileSystem()

	if err := WriteFileAll(fsys, "/data/rec.json", []byte("hello")); err != nil {
		t.Fatalf("WriteFileAll: %v", err)
	}
	if !fsys.Exists("/data") {
		t.Error("parent directory should exist")
	}

	data, err := fsys.ReadFile("/data/../data/rec.json")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("got %q, want hello", data)
	}

	// Returned slice must not alias the stored file.
	data[0] = 'J'
	again, _ := fsys.ReadFile("/data/rec.json")
	if string(again) != "hello" {
		t.Errorf("stored data was mutated through returned slice: %q", again)
	}
}

func TestMemoryFileSystem_StatAndMissing(t *testing.T) {
	fsys := NewMemoryFileSystem()
	_ = fsys.MkdirAll("/a/b", 0755)

	info, err := fsys.Stat("/a/b")
	if err != nil {
		t.Fatalf("Stat dir: %v", err)
	}
	if !info.IsDir() {
		t.Error("expected directory")
	}

	if _, err := fsys.Stat("/missing"); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := fsys.ReadFile("/missing"); err == nil {
		t.Error("expected error reading missing file")
	}
	if fsys.Exists("/missing") {
		t.Error("missing file should not exist")
	}
}

func TestReadFileLimited_Errors(t *testing.T) {
	fsys := NewMemoryFileSystem()
	_ = fsys.WriteFile("/big.json", []byte(strings.Repeat("x", 100)), 0644)
	_ = fsys.MkdirAll("/dir", 0755)

	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{"too large", "/big.json", "too large"},
		{"directory", "/dir", "is a directory"},
		{"missing", "/nope.json", "failed to stat"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadFileLimited(fsys, tt.path, 10)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ReadFileLimited(%s) error = %v, want containing %q", tt.path, err, tt.wantErr)
			}
		})
	}
}
