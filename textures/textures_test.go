package textures

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/xfmoulet/qoi"
	"go.uber.org/zap/zaptest"
)

func writeQOI(t *testing.T, path string, w, h int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := qoi.Encode(f, image.NewNRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
}

func TestSize(t *testing.T) {
	dir := t.TempDir()
	writeQOI(t, filepath.Join(dir, "FLOOR4_8.qoi"), 128, 32)
	writeQOI(t, filepath.Join(dir, "nukage1.qoi"), 64, 64)
	if err := os.WriteFile(filepath.Join(dir, "BROKEN.qoi"), []byte("not an image"), 0644); err != nil {
		t.Fatal(err)
	}

	r := NewResolver(dir, zaptest.NewLogger(t))

	tests := []struct {
		name    string
		want    Size
		wantErr error
	}{
		{name: "FLOOR4_8", want: Size{128, 32}},
		{name: "floor4_8", want: Size{128, 32}},
		{name: "NUKAGE1", want: Size{64, 64}},
		{name: "MISSING", wantErr: ErrNotFound},
		{name: "-", wantErr: ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Size(tt.name)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Size error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Size: %v", err)
			}
			if got != tt.want {
				t.Errorf("Size = %+v, want %+v", got, tt.want)
			}
		})
	}

	if _, err := r.Size("BROKEN"); err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("broken texture error = %v", err)
	}
}

func TestTexParams(t *testing.T) {
	dir := t.TempDir()
	writeQOI(t, filepath.Join(dir, "RROCK01.qoi"), 256, 128)
	r := NewResolver(dir, zaptest.NewLogger(t))

	tp := r.TexParams("RROCK01")
	if tp.Width != 256 || tp.Height != 128 || tp.ScaleX != 1 {
		t.Errorf("TexParams = %+v", tp)
	}

	// served from the cache once the file is gone
	if err := os.Remove(filepath.Join(dir, "RROCK01.qoi")); err != nil {
		t.Fatal(err)
	}
	if tp := r.TexParams("RROCK01"); tp.Width != 256 {
		t.Errorf("cached TexParams = %+v", tp)
	}

	if tp := r.TexParams("NOPE"); tp.Width != 64 || tp.Height != 64 {
		t.Errorf("fallback TexParams = %+v", tp)
	}
}
