package fsutil

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestOSFileSystem_WriteFileReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "board.txt")
	fsys := OSFileSystem{}

	if err := fsys.WriteFile(path, []byte("first"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := fsys.WriteFile(path, []byte("second"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	f, err := fsys.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(data) != "second" {
		t.Errorf("expected %q, got %q", "second", data)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the target file, found %d entries", len(entries))
	}
}

func TestOSFileSystem_WriteFileMissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "board.txt")
	if err := (OSFileSystem{}).WriteFile(path, []byte("x"), 0o644); err == nil {
		t.Error("expected error writing into a missing directory")
	}
}

func TestOSFileSystem_MkdirAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b")
	fsys := OSFileSystem{}
	if err := fsys.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := fsys.WriteFile(filepath.Join(path, "c.txt"), []byte("ok"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
}

func TestMemoryFileSystem_WriteAndOpen(t *testing.T) {
	mfs := NewMemoryFileSystem()

	testData := []byte("0101\n1010")
	if err := mfs.WriteFile("/test.txt", testData, 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	// Mutating the caller's slice must not change the stored file.
	testData[0] = 'x'

	f, err := mfs.Open("/test.txt")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(data) != "0101\n1010" {
		t.Errorf("expected stored data, got %q", data)
	}

	info, err := f.Stat()
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Name() != "test.txt" || info.Size() != 9 {
		t.Errorf("unexpected file info %s/%d", info.Name(), info.Size())
	}
}

func TestMemoryFileSystem_OpenMissing(t *testing.T) {
	mfs := NewMemoryFileSystem()
	if _, err := mfs.Open("/nope"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
	if _, err := mfs.ReadFile("/nope"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}

func TestMemoryFileSystem_MkdirAll(t *testing.T) {
	mfs := NewMemoryFileSystem()
	if err := mfs.MkdirAll("/a/b/c", 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	for _, dir := range []string{"/a", "/a/b", "/a/b/c"} {
		if !mfs.HasDir(dir) {
			t.Errorf("expected %s to exist", dir)
		}
	}
}
