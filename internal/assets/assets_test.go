package assets

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.SetRGBA(0, 0, color.RGBA{1, 2, 3, 255})
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestResolvePriority(t *testing.T) {
	low := t.TempDir()
	high := t.TempDir()
	writePNG(t, filepath.Join(low, "tex", "a.png"), 1, 1)
	writePNG(t, filepath.Join(high, "tex", "a.png"), 2, 2)
	writePNG(t, filepath.Join(low, "only_low.png"), 1, 1)

	l := NewLoader(low, high)

	tests := []struct {
		ref  string
		want string
	}{
		{`tex\a.png`, filepath.Join(high, "tex", "a.png")},
		{"tex/a.png", filepath.Join(high, "tex", "a.png")},
		{"./tex/../only_low.png", filepath.Join(low, "only_low.png")},
	}
	for _, tt := range tests {
		got, err := l.Resolve(tt.ref)
		if err != nil {
			t.Errorf("Resolve(%q) failed: %v", tt.ref, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Resolve(%q) = %s, want %s", tt.ref, got, tt.want)
		}
	}
}

func TestResolveAbsolute(t *testing.T) {
	dir := t.TempDir()
	abs := filepath.Join(dir, "a.png")
	writePNG(t, abs, 1, 1)

	l := NewLoader()
	if got, err := l.Resolve(abs); err != nil || got != abs {
		t.Errorf("Resolve(%q) = %s, %v", abs, got, err)
	}
	if _, err := l.Resolve(filepath.Join(dir, "b.png")); !errors.Is(err, ErrAssetNotFound) {
		t.Errorf("expected ErrAssetNotFound, got %v", err)
	}
}

func TestResolveMissing(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "sub.png"), 0755); err != nil {
		t.Fatal(err)
	}
	l := NewLoader(dir)

	for _, ref := range []string{"missing.png", "", "sub.png"} {
		if _, err := l.Resolve(ref); !errors.Is(err, ErrAssetNotFound) {
			t.Errorf("Resolve(%q): expected ErrAssetNotFound, got %v", ref, err)
		}
	}
}

func TestImageCache(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"), 3, 2)
	l := NewLoader(dir)

	img, path, err := l.Image("a.png")
	if err != nil {
		t.Fatalf("Image failed: %v", err)
	}
	if path != filepath.Join(dir, "a.png") {
		t.Errorf("unexpected path %s", path)
	}
	if img.Bounds().Dx() != 3 || img.Bounds().Dy() != 2 {
		t.Errorf("unexpected bounds %v", img.Bounds())
	}
	if got := img.RGBAAt(0, 0); got != (color.RGBA{1, 2, 3, 255}) {
		t.Errorf("unexpected pixel %v", got)
	}

	again, _, err := l.Image(`.\a.png`)
	if err != nil {
		t.Fatalf("second Image failed: %v", err)
	}
	if again != img {
		t.Error("expected cached image on second load")
	}

	hits, misses := l.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("expected 1 hit and 1 miss, got %d/%d", hits, misses)
	}

	l.Close()
	if hits, misses := l.Stats(); hits != 0 || misses != 0 {
		t.Errorf("Close should reset stats, got %d/%d", hits, misses)
	}
}

func TestImageDecodeError(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.png"), []byte("not an image"), 0644); err != nil {
		t.Fatal(err)
	}
	l := NewLoader(dir)
	if _, _, err := l.Image("bad.png"); err == nil {
		t.Error("expected decode error")
	}
	if l.cache.Len() != 0 {
		t.Error("failed decode should not be cached")
	}
}

func TestRoots(t *testing.T) {
	l := NewLoader("a", "")
	l.AddRoot("b/../c")

	roots := l.Roots()
	want := []string{"a", ".", "c"}
	if len(roots) != len(want) {
		t.Fatalf("expected %d roots, got %v", len(want), roots)
	}
	for i := range want {
		if roots[i] != want[i] {
			t.Errorf("root %d: got %s, want %s", i, roots[i], want[i])
		}
	}
}
