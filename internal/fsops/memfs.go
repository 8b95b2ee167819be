package fsops

import (
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemFS is an in-memory FS keyed by slash-separated paths. It is safe for
// concurrent use, which lets the executor's parallel batch run against it.
type MemFS struct {
	mu    sync.Mutex
	files map[string][]byte

	// FailOn makes any mutation touching a listed path fail.
	FailOn map[string]error
}

// NewMemFS creates a MemFS seeded with files.
func NewMemFS(files map[string]string) *MemFS {
	m := &MemFS{files: make(map[string][]byte), FailOn: make(map[string]error)}
	for p, content := range files {
		m.files[clean(p)] = []byte(content)
	}
	return m
}

func clean(p string) string {
	return path.Clean(strings.ReplaceAll(p, "\\", "/"))
}

func (m *MemFS) failure(paths ...string) error {
	for _, p := range paths {
		if err, ok := m.FailOn[clean(p)]; ok {
			return err
		}
	}
	return nil
}

// Files returns a snapshot of the tree as path -> content.
func (m *MemFS) Files() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.files))
	for p, data := range m.files {
		out[p] = string(data)
	}
	return out
}

// Lstat reports files and implied directories.
func (m *MemFS) Lstat(p string) (os.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p = clean(p)
	if data, ok := m.files[p]; ok {
		return &memFileInfo{name: path.Base(p), size: int64(len(data))}, nil
	}
	if m.isDirLocked(p) {
		return &memFileInfo{name: path.Base(p), isDir: true}, nil
	}
	return nil, os.ErrNotExist
}

func (m *MemFS) isDirLocked(p string) bool {
	prefix := p + "/"
	if p == "." || p == "/" {
		return len(m.files) > 0
	}
	for f := range m.files {
		if strings.HasPrefix(f, prefix) {
			return true
		}
	}
	return false
}

// Remove removes a file.
func (m *MemFS) Remove(p string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(p); err != nil {
		return err
	}
	p = clean(p)
	if _, ok := m.files[p]; !ok {
		return os.ErrNotExist
	}
	delete(m.files, p)
	return nil
}

// RemoveAll removes a file or every file below a directory.
func (m *MemFS) RemoveAll(p string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(p); err != nil {
		return err
	}
	p = clean(p)
	delete(m.files, p)
	for f := range m.files {
		if strings.HasPrefix(f, p+"/") {
			delete(m.files, f)
		}
	}
	return nil
}

// Copy duplicates a file.
func (m *MemFS) Copy(src, dst string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(src, dst); err != nil {
		return err
	}
	data, ok := m.files[clean(src)]
	if !ok {
		return fmt.Errorf("failed to stat source: %w", os.ErrNotExist)
	}
	m.files[clean(dst)] = append([]byte(nil), data...)
	return nil
}

// Move renames a file.
func (m *MemFS) Move(src, dst string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(src, dst); err != nil {
		return err
	}
	src, dst = clean(src), clean(dst)
	data, ok := m.files[src]
	if !ok {
		return fmt.Errorf("failed to move %s: %w", src, os.ErrNotExist)
	}
	delete(m.files, src)
	m.files[dst] = data
	return nil
}

// AtomicWrite stores data at p.
func (m *MemFS) AtomicWrite(p string, data []byte, perm os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(p); err != nil {
		return err
	}
	m.files[clean(p)] = append([]byte(nil), data...)
	return nil
}

// ReadFile returns the content stored at p.
func (m *MemFS) ReadFile(p string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[clean(p)]
	if !ok {
		return nil, os.ErrNotExist
	}
	return append([]byte(nil), data...), nil
}

// Exists reports whether p is a file or an implied directory.
func (m *MemFS) Exists(p string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p = clean(p)
	if _, ok := m.files[p]; ok {
		return true, nil
	}
	return m.isDirLocked(p), nil
}

// ListFiles returns files below root relative to it.
func (m *MemFS) ListFiles(root string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	root = clean(root)
	var out []string
	for f := range m.files {
		switch {
		case root == ".":
			out = append(out, f)
		case strings.HasPrefix(f, root+"/"):
			out = append(out, strings.TrimPrefix(f, root+"/"))
		}
	}
	sort.Strings(out)
	return out, nil
}

// ValidateRelPath validates a relative path for safety.
func (m *MemFS) ValidateRelPath(relPath string) error {
	return validateRelPath(relPath)
}

type memFileInfo struct {
	name  string
	size  int64
	isDir bool
}

func (f *memFileInfo) Name() string { return f.name }
func (f *memFileInfo) Size() int64  { return f.size }
func (f *memFileInfo) Mode() os.FileMode {
	if f.isDir {
		return os.ModeDir | 0755
	}
	return 0644
}
func (f *memFileInfo) ModTime() time.Time { return time.Time{} }
func (f *memFileInfo) IsDir() bool        { return f.isDir }
func (f *memFileInfo) Sys() interface{}   { return nil }
