package commands

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeScene(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	f, err := os.Create(filepath.Join(dir, "wall.png"))
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, 16, 8))); err != nil {
		t.Fatal(err)
	}
	f.Close()

	files := map[string]string{
		"scene.mtl": "newmtl wall\nmap_Kd wall.png\nnewmtl floor\nKd 1 1 1\nnewmtl spare\nmap_Kd spare.png\n",
		"scene.obj": "mtllib scene.mtl\nv 0 0 0\nvt 0 0\nvt 1 1\nusemtl wall\nf 1/1 1/1 1/1\nusemtl floor\nf 1/2 1/2 1/2\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return filepath.Join(dir, "scene.obj")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestPlanCommand(t *testing.T) {
	out, err := execute(t, "plan", "-i", writeScene(t))
	if err != nil {
		t.Fatalf("plan failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 7 {
		t.Fatalf("expected 7 lines, got %d:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "atlas 16x16, 1 images, 1 attempts, 50.0% used") {
		t.Errorf("unexpected summary %q", lines[0])
	}
	if !strings.HasPrefix(lines[2], "wall") || !strings.Contains(lines[2], "(0,0)-(16,8)") {
		t.Errorf("unexpected wall row %q", lines[2])
	}
	if !strings.Contains(lines[3], "floor") || !strings.Contains(lines[3], "(no map_Kd)") {
		t.Errorf("unexpected floor row %q", lines[3])
	}
	if !strings.Contains(lines[4], "spare") || !strings.Contains(lines[4], "(unused)") {
		t.Errorf("unexpected spare row %q", lines[4])
	}
	if lines[5] != "free regions: 1, largest (0,8)-(16,16)" {
		t.Errorf("unexpected free regions line %q", lines[5])
	}
	if !strings.HasPrefix(lines[6], "images: 1 decoded, 0 cache hits, roots ") {
		t.Errorf("unexpected images line %q", lines[6])
	}
}

func TestConfigCommand(t *testing.T) {
	out, err := execute(t, "config", "--order", "area", "--max-size", "1024")
	if err != nil {
		t.Fatalf("config failed: %v", err)
	}
	if !strings.Contains(out, "order: area") || !strings.Contains(out, "max_size: 1024") {
		t.Errorf("unexpected config output:\n%s", out)
	}

	path := filepath.Join(t.TempDir(), "objatlas.yaml")
	if _, err := execute(t, "config", path); err != nil {
		t.Fatalf("config save failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if !strings.Contains(string(data), "texture: mtl.jpg") {
		t.Errorf("unexpected saved config:\n%s", data)
	}
}

func TestInvalidFlag(t *testing.T) {
	if _, err := execute(t, "plan", "--order", "random"); err == nil {
		t.Error("expected error for invalid order")
	}
}
