package merge

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

func stageAll(t *testing.T, st *staging, dsts ...string) {
	t.Helper()
	for _, dst := range dsts {
		if err := st.write(dst, func(w io.Writer) error {
			_, err := io.WriteString(w, filepath.Base(dst))
			return err
		}); err != nil {
			t.Fatalf("staging %s: %v", dst, err)
		}
	}
}

func TestStagingCommit(t *testing.T) {
	dir := t.TempDir()
	a, b := filepath.Join(dir, "a.png"), filepath.Join(dir, "b.mtl")

	var st staging
	stageAll(t, &st, a, b)
	if _, err := os.Stat(a); !os.IsNotExist(err) {
		t.Fatal("staged file visible before commit")
	}
	if err := st.commit(); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	for _, p := range []string{a, b} {
		if got := readFile(t, p); got != filepath.Base(p) {
			t.Errorf("%s: got %q", p, got)
		}
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 2 {
		t.Errorf("expected only committed files, got %d entries", len(entries))
	}
}

func TestStagingCommitFailure(t *testing.T) {
	dir := t.TempDir()
	tex, mtl, obj := filepath.Join(dir, "atlas.png"), filepath.Join(dir, "mtl.mtl"), filepath.Join(dir, "obj.obj")

	var st staging
	stageAll(t, &st, tex, mtl, obj)

	// A non-empty directory at the library's name makes its rename fail.
	if err := os.MkdirAll(filepath.Join(mtl, "keep"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := st.commit(); err == nil {
		t.Fatal("expected rename error")
	}

	if got := readFile(t, tex); got != "atlas.png" {
		t.Errorf("texture renamed before the failure should stay, got %q", got)
	}
	if _, err := os.Stat(obj); !os.IsNotExist(err) {
		t.Error("model staged after the failure should not be committed")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 2 {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		t.Errorf("expected atlas.png and mtl.mtl only, got %v", names)
	}
}

func TestStagingAbort(t *testing.T) {
	dir := t.TempDir()

	var st staging
	stageAll(t, &st, filepath.Join(dir, "a.png"), filepath.Join(dir, "b.mtl"))
	if err := st.abort(); err != nil {
		t.Fatalf("abort failed: %v", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("expected no files after abort, got %d entries", len(entries))
	}
}
