package utils

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestSafeWriteFileRespectsOverwrite(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "out.md")
	if err := SafeWriteFile(p, []byte("one"), false); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := SafeWriteFile(p, []byte("two"), false); !errors.Is(err, ErrExists) {
		t.Fatalf("second write err = %v, want ErrExists", err)
	}
	if err := SafeWriteFile(p, []byte("three"), true); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "three" {
		t.Fatalf("content = %q", b)
	}
	if _, err := os.Stat(p + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind")
	}
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	if got := ExpandHome("~/data/tasks.csv"); got != filepath.Join(home, "data", "tasks.csv") {
		t.Fatalf("ExpandHome = %q", got)
	}
	if got := ExpandHome("/abs/tasks.csv"); got != "/abs/tasks.csv" {
		t.Fatalf("ExpandHome changed absolute path: %q", got)
	}
}
