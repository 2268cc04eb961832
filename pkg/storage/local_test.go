package storage

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) (FileStorage, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	if err != nil {
		t.Fatalf("NewLocalStorage failed: %v", err)
	}
	return store, dir
}

func TestSaveAllowedFile(t *testing.T) {
	store, dir := newTestStore(t)

	name, err := store.Save("photo.jpg", strings.NewReader("fake image"))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if name != "photo.jpg" {
		t.Errorf("expected photo.jpg, got %q", name)
	}
	if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
		t.Errorf("stored file missing: %v", err)
	}
}

func TestSaveRejectsDisallowedExtension(t *testing.T) {
	store, dir := newTestStore(t)

	name, err := store.Save("malware.exe", strings.NewReader("nope"))
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if name != "" {
		t.Errorf("expected empty marker, got %q", name)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("expected no stored files, found %d", len(entries))
	}
}

func TestSaveRejectsEmptyFilename(t *testing.T) {
	store, _ := newTestStore(t)

	name, err := store.Save("", strings.NewReader("data"))
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if name != "" {
		t.Errorf("expected empty marker, got %q", name)
	}
}

func TestSaveNeverOverwrites(t *testing.T) {
	store, _ := newTestStore(t)

	first, err := store.Save("catalog.pdf", strings.NewReader("first"))
	if err != nil {
		t.Fatalf("first Save failed: %v", err)
	}
	second, err := store.Save("catalog.pdf", strings.NewReader("second"))
	if err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	if first == second {
		t.Fatalf("expected distinct names, both were %q", first)
	}
	if second != "catalog_1.pdf" {
		t.Errorf("expected sequential suffix catalog_1.pdf, got %q", second)
	}

	for name, want := range map[string]string{first: "first", second: "second"} {
		f, err := store.Open(name)
		if err != nil {
			t.Fatalf("Open(%s) failed: %v", name, err)
		}
		data, _ := io.ReadAll(f)
		f.Close()
		if string(data) != want {
			t.Errorf("content of %s = %q, want %q", name, data, want)
		}
	}
}

func TestSaveSanitizesPathComponents(t *testing.T) {
	store, dir := newTestStore(t)

	name, err := store.Save("../../etc/passwd.png", strings.NewReader("data"))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if strings.Contains(name, "/") || strings.Contains(name, "..") {
		t.Errorf("stored name contains path components: %q", name)
	}
	if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
		t.Errorf("stored file missing: %v", err)
	}
}

func TestDeleteMissingFileIsNoop(t *testing.T) {
	store, _ := newTestStore(t)

	if err := store.Delete("never-existed.png"); err != nil {
		t.Errorf("Delete of missing file should be a no-op, got %v", err)
	}
	if err := store.Delete(""); err != nil {
		t.Errorf("Delete of empty name should be a no-op, got %v", err)
	}
}

func TestListPrefix(t *testing.T) {
	store, _ := newTestStore(t)

	for _, name := range []string{"whatsapp_qr_42.png", "whatsapp_qr_42_1.png", "wechat_qr_42.png", "photo.jpg"} {
		if _, err := store.Save(name, strings.NewReader("x")); err != nil {
			t.Fatalf("Save(%s) failed: %v", name, err)
		}
	}

	names, err := store.ListPrefix("whatsapp_qr_42")
	if err != nil {
		t.Fatalf("ListPrefix failed: %v", err)
	}
	if len(names) != 2 {
		t.Errorf("expected 2 matches, got %d: %v", len(names), names)
	}
	for _, name := range names {
		if !strings.HasPrefix(name, "whatsapp_qr_42") {
			t.Errorf("unexpected match %q", name)
		}
	}
}
