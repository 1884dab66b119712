package assets

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestTextureFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "props.tex")

	// Two tiny RGBA textures sharing one sample arena.
	redPix := bytes.Repeat([]byte{255, 0, 0, 255}, 4)   // 2x2
	bluePix := bytes.Repeat([]byte{0, 0, 255, 255}, 2)  // 2x1
	samples := append(append([]byte{}, redPix...), bluePix...)

	textures := []TextureData{
		{ID: 11, Width: 2, Height: 2, Components: 4, Offset: 0},
		{ID: 12, Width: 2, Height: 1, Components: 4, Offset: uint32(len(redPix))},
	}

	if err := WriteTextureFile(path, textures, samples); err != nil {
		t.Fatalf("WriteTextureFile: %v", err)
	}

	handle, err := OpenTextureFile(path)
	if err != nil {
		t.Fatalf("OpenTextureFile: %v", err)
	}
	defer handle.Close()

	header := handle.Header()
	if header.TextureCount != 2 || header.SampleCount != uint32(len(samples)) {
		t.Errorf("header: got %+v", header)
	}

	tex, ok := handle.FindTexture(12)
	if !ok {
		t.Fatal("FindTexture(12): expected a match")
	}
	out := make([]byte, int(tex.Width)*int(tex.Height)*int(tex.Components))
	ok, err = handle.ReadTexture(12, out)
	if err != nil || !ok {
		t.Fatalf("ReadTexture(12): ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(out, bluePix) {
		t.Errorf("ReadTexture(12): got %v, want %v", out, bluePix)
	}

	ok, err = handle.ReadTexture(99, out)
	if err != nil {
		t.Fatalf("ReadTexture(99): %v", err)
	}
	if ok {
		t.Error("ReadTexture(99): expected not-found")
	}
}

func TestWriteTextureFileValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.tex")

	// The declared sample range runs past the arena.
	textures := []TextureData{{ID: 1, Width: 4, Height: 4, Components: 4, Offset: 0}}
	if err := WriteTextureFile(path, textures, make([]byte, 8)); err == nil {
		t.Error("expected out-of-arena sample range to fail")
	}
}

func TestOpenTextureFileBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.tex")

	junk := make([]byte, TextureFileHeaderSize)
	if err := os.WriteFile(path, junk, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenTextureFile(path); err == nil {
		t.Error("expected bad magic to fail")
	}
}
