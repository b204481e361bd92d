package scratch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDirLifecycle(t *testing.T) {
	base := t.TempDir()

	d, err := New(base, "req1")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(d.Root()), "convert-req1-") {
		t.Errorf("unexpected dir name %q", d.Root())
	}

	n, err := d.Save("input.wav", strings.NewReader("RIFF"))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if n != 4 {
		t.Errorf("expected 4 bytes written, got %d", n)
	}

	data, err := os.ReadFile(d.Path("input.wav"))
	if err != nil || string(data) != "RIFF" {
		t.Fatalf("unexpected file content %q (%v)", data, err)
	}

	if err := d.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	entries, _ := os.ReadDir(base)
	if len(entries) != 0 {
		t.Errorf("expected base dir to be empty after Close, got %d entries", len(entries))
	}
}

func TestDirsAreUnique(t *testing.T) {
	base := t.TempDir()

	a, err := New(base, "same")
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	b, err := New(base, "same")
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	if a.Root() == b.Root() {
		t.Fatal("two scratch dirs share a path")
	}
}

func TestPathCannotEscape(t *testing.T) {
	d, err := New(t.TempDir(), "esc")
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	p := d.Path("../../etc/passwd")
	if filepath.Dir(p) != d.Root() {
		t.Errorf("path %q escaped %q", p, d.Root())
	}
}

func TestSaveRefusesOverwrite(t *testing.T) {
	d, err := New(t.TempDir(), "dup")
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	if _, err := d.Save("input.wav", strings.NewReader("a")); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Save("input.wav", strings.NewReader("b")); err == nil {
		t.Fatal("expected second Save of the same name to fail")
	}
}
