package diagram

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"candedit/internal/cande"
	"candedit/internal/cande/candetest"
	"candedit/internal/synth"
)

func TestExport(t *testing.T) {
	m := candetest.Grid()
	if _, err := synth.CreateInterfaces(m, []cande.ElementID{5, 6}, 0.3); err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	tests := []struct {
		name string
		file string
		opts Options
		want string
	}{
		{"png by material", "mesh.png", Options{Labels: true}, "mesh.png"},
		{"svg by step", "mesh.svg", Options{ColorBy: ByStep}, "mesh.svg"},
		{"no extension", "out/mesh", Options{}, "out/mesh.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Export(m, filepath.Join(dir, tt.file), tt.opts)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != filepath.Join(dir, tt.want) {
				t.Errorf("wrote %s, want %s", got, tt.want)
			}
			fi, err := os.Stat(got)
			if err != nil {
				t.Fatal(err)
			}
			if fi.Size() == 0 {
				t.Errorf("%s is empty", got)
			}
		})
	}
}

func TestExportEmptyMesh(t *testing.T) {
	_, err := Export(cande.New(), filepath.Join(t.TempDir(), "x.png"), Options{})
	var v *cande.ValidationError
	if !errors.As(err, &v) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestParseColorBy(t *testing.T) {
	tests := []struct {
		in      string
		want    ColorBy
		wantErr bool
	}{
		{"", ByMaterial, false},
		{"material", ByMaterial, false},
		{"Step", ByStep, false},
		{"density", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseColorBy(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseColorBy(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestColor(t *testing.T) {
	rgba := func(c color.Color) [3]uint32 {
		r, g, b, _ := c.RGBA()
		return [3]uint32{r >> 8, g >> 8, b >> 8}
	}
	if got := rgba(Color(1)); got != [3]uint32{255, 0, 0} {
		t.Errorf("Color(1) = %v, want red", got)
	}
	if rgba(Color(21)) != rgba(Color(1)) {
		t.Errorf("palette should repeat after 20 entries")
	}
	if rgba(Color(0)) != rgba(Color(1)) {
		t.Errorf("Color(0) should clamp to the first entry")
	}
}
