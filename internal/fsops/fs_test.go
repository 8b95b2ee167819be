package fsops

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestRealFS_ValidateRelPath(t *testing.T) {
	fs := &RealFS{}

	tests := []struct {
		name      string
		path      string
		wantError bool
	}{
		{name: "valid page path", path: "pages/index/index.wxml", wantError: false},
		{name: "valid single file", path: "app.json", wantError: false},
		{name: "empty path", path: "", wantError: true},
		{name: "current directory", path: ".", wantError: true},
		{name: "absolute path", path: "/etc/hosts", wantError: true},
		{name: "parent directory traversal", path: "../etc/hosts", wantError: true},
		{name: "traversal in middle", path: "pkg/../../../etc/hosts", wantError: true},
		{name: "dot prefix", path: ".subpkg/state.json", wantError: false},
		{name: "dot dot prefix in name", path: "..hidden/file", wantError: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fs.ValidateRelPath(tt.path)
			if (err != nil) != tt.wantError {
				t.Errorf("ValidateRelPath(%q) error = %v, wantError %v", tt.path, err, tt.wantError)
			}
		})
	}
}

func TestRealFS_Exists(t *testing.T) {
	fs := &RealFS{}
	tmpDir := t.TempDir()

	t.Run("existing file", func(t *testing.T) {
		testFile := filepath.Join(tmpDir, "exists.wxml")
		if err := os.WriteFile(testFile, []byte("<view/>"), 0644); err != nil {
			t.Fatalf("failed to create test file: %v", err)
		}

		exists, err := fs.Exists(testFile)
		if err != nil {
			t.Errorf("Exists returned error: %v", err)
		}
		if !exists {
			t.Error("Exists should return true for existing file")
		}
	})

	t.Run("non-existing file", func(t *testing.T) {
		exists, err := fs.Exists(filepath.Join(tmpDir, "missing.wxml"))
		if err != nil {
			t.Errorf("Exists returned error: %v", err)
		}
		if exists {
			t.Error("Exists should return false for non-existing file")
		}
	})
}

func TestRealFS_Move(t *testing.T) {
	fs := &RealFS{}
	tmpDir := t.TempDir()

	t.Run("creates destination directories", func(t *testing.T) {
		src := filepath.Join(tmpDir, "components", "card", "index.wxml")
		dst := filepath.Join(tmpDir, "pkg-0", "components", "card", "index.wxml")
		if err := os.MkdirAll(filepath.Dir(src), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(src, []byte("<view/>"), 0644); err != nil {
			t.Fatal(err)
		}

		if err := fs.Move(src, dst); err != nil {
			t.Fatalf("Move failed: %v", err)
		}
		if _, err := os.Stat(src); !os.IsNotExist(err) {
			t.Error("source should be gone after move")
		}
		data, err := os.ReadFile(dst)
		if err != nil {
			t.Fatalf("failed to read destination: %v", err)
		}
		if string(data) != "<view/>" {
			t.Errorf("destination content = %q", data)
		}
	})

	t.Run("overwrites destination", func(t *testing.T) {
		src := filepath.Join(tmpDir, "a.js")
		dst := filepath.Join(tmpDir, "b.js")
		_ = os.WriteFile(src, []byte("new"), 0644)
		_ = os.WriteFile(dst, []byte("old"), 0644)

		if err := fs.Move(src, dst); err != nil {
			t.Fatalf("Move failed: %v", err)
		}
		data, _ := os.ReadFile(dst)
		if string(data) != "new" {
			t.Errorf("destination content = %q, want %q", data, "new")
		}
	})

	t.Run("missing source", func(t *testing.T) {
		if err := fs.Move(filepath.Join(tmpDir, "nope"), filepath.Join(tmpDir, "x")); err == nil {
			t.Error("expected error for missing source")
		}
	})
}

func TestRealFS_Copy(t *testing.T) {
	fs := &RealFS{}
	tmpDir := t.TempDir()

	src := filepath.Join(tmpDir, "index.wxss")
	if err := os.WriteFile(src, []byte(".a{}"), 0644); err != nil {
		t.Fatal(err)
	}
	dst := filepath.Join(tmpDir, "pkg", "index.wxss")

	if err := fs.Copy(src, dst); err != nil {
		t.Fatalf("Copy failed: %v", err)
	}
	if _, err := os.Stat(src); err != nil {
		t.Error("source should survive a copy")
	}
	data, _ := os.ReadFile(dst)
	if string(data) != ".a{}" {
		t.Errorf("copied content = %q", data)
	}

	if err := fs.Copy(tmpDir, filepath.Join(tmpDir, "dir-copy")); err == nil {
		t.Error("expected error when copying a directory")
	}
}

func TestRealFS_AtomicWrite(t *testing.T) {
	fs := &RealFS{}
	tmpDir := t.TempDir()

	testFile := filepath.Join(tmpDir, "nested", "app.json")
	if err := fs.AtomicWrite(testFile, []byte("{}"), 0644); err != nil {
		t.Fatalf("AtomicWrite failed: %v", err)
	}
	if err := fs.AtomicWrite(testFile, []byte(`{"pages":[]}`), 0644); err != nil {
		t.Fatalf("AtomicWrite overwrite failed: %v", err)
	}

	readContent, err := os.ReadFile(testFile)
	if err != nil {
		t.Fatalf("failed to read written file: %v", err)
	}
	if string(readContent) != `{"pages":[]}` {
		t.Errorf("File content mismatch: got %q", readContent)
	}

	entries, _ := os.ReadDir(filepath.Dir(testFile))
	if len(entries) != 1 {
		t.Errorf("expected temp files to be cleaned up, found %d entries", len(entries))
	}
}

func TestRealFS_ListFiles(t *testing.T) {
	fs := &RealFS{}
	tmpDir := t.TempDir()

	for _, rel := range []string{"app.json", "pages/index/index.wxml", "pages/index/index.json"} {
		p := filepath.Join(tmpDir, filepath.FromSlash(rel))
		_ = os.MkdirAll(filepath.Dir(p), 0755)
		if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	files, err := fs.ListFiles(tmpDir)
	if err != nil {
		t.Fatalf("ListFiles failed: %v", err)
	}
	want := []string{"app.json", "pages/index/index.json", "pages/index/index.wxml"}
	if !reflect.DeepEqual(files, want) {
		t.Errorf("ListFiles() = %v, want %v", files, want)
	}

	missing, err := fs.ListFiles(filepath.Join(tmpDir, "missing"))
	if err != nil {
		t.Errorf("ListFiles on missing root should not fail: %v", err)
	}
	if len(missing) != 0 {
		t.Errorf("expected no files, got %v", missing)
	}
}
