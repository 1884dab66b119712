package assets

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spaghettifunk/crpg/engine/core"
)

// The texture file format mirrors the mesh file format: a header, an
// eagerly-loaded record array, then a shared sample arena addressed by
// per-texture byte offsets.

// WriteTextureFile writes a packed texture file at path. Each texture's
// Offset must point at its samples inside the arena; offsets are byte
// positions, unlike the element counts of the mesh format.
func WriteTextureFile(path string, textures []TextureData, samples []byte) error {
	for i := range textures {
		tex := &textures[i]
		size := uint32(tex.Width) * uint32(tex.Height) * uint32(tex.Components)
		if tex.Offset+size > uint32(len(samples)) {
			err := fmt.Errorf("texture %d sample range [%d, %d) exceeds arena size %d",
				tex.ID, tex.Offset, tex.Offset+size, len(samples))
			core.LogError("failed to write texture file '%s': %s", path, err.Error())
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		core.LogError("failed to create texture file '%s': %s", path, err.Error())
		return err
	}

	out := bufio.NewWriter(f)
	w := &writer{w: out}
	w.putMagic(TextureMagic)
	w.putU32(uint32(len(textures)))
	w.putU32(uint32(len(samples)))
	for i := range textures {
		w.putU32(uint32(textures[i].ID))
		w.putU16(textures[i].Width)
		w.putU16(textures[i].Height)
		w.putU16(textures[i].Components)
		w.putU32(textures[i].Offset)
	}
	w.write(samples)

	if w.err != nil {
		f.Close()
		return w.err
	}
	if err := out.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// TextureFileHandle is the texture analog of MeshFileHandle: records in
// memory, samples on disk.
type TextureFileHandle struct {
	path     string
	file     *os.File
	header   TextureFileHeader
	textures []TextureData
	isOpen   bool
}

// OpenTextureFile reads the header and texture record array at path and
// returns a live handle.
func OpenTextureFile(path string) (*TextureFileHandle, error) {
	f, err := os.Open(path)
	if err != nil {
		core.LogError("failed to open texture file '%s': %s", path, err.Error())
		return nil, err
	}

	head := make([]byte, TextureFileHeaderSize)
	if _, err := io.ReadFull(f, head); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read texture file header from '%s': %w", path, err)
	}

	r := &reader{data: head}
	if magic := r.readMagic(); magic != TextureMagic {
		f.Close()
		return nil, fmt.Errorf("'%s' is not a texture file (magic '%s')", path, magic)
	}

	var header TextureFileHeader
	header.TextureCount = r.readU32()
	header.SampleCount = r.readU32()

	recBytes := make([]byte, int(header.TextureCount)*TextureDataSize)
	if _, err := io.ReadFull(f, recBytes); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read %d texture records from '%s': %w", header.TextureCount, path, err)
	}

	r = &reader{data: recBytes}
	textures := make([]TextureData, header.TextureCount)
	for i := range textures {
		textures[i] = TextureData{
			ID:         TextureID(r.readU32()),
			Width:      r.readU16(),
			Height:     r.readU16(),
			Components: r.readU16(),
			Offset:     r.readU32(),
		}
	}

	for i := range textures {
		tex := &textures[i]
		size := uint32(tex.Width) * uint32(tex.Height) * uint32(tex.Components)
		if tex.Offset+size > header.SampleCount {
			f.Close()
			return nil, fmt.Errorf("corrupt texture file '%s': texture %d sample range exceeds arena", path, tex.ID)
		}
	}

	return &TextureFileHandle{
		path:     path,
		file:     f,
		header:   header,
		textures: textures,
		isOpen:   true,
	}, nil
}

func (h *TextureFileHandle) Header() TextureFileHeader {
	return h.header
}

// FindTexture scans the record array for id.
func (h *TextureFileHandle) FindTexture(id TextureID) (TextureData, bool) {
	for i := range h.textures {
		if h.textures[i].ID == id {
			return h.textures[i], true
		}
	}
	return TextureData{}, false
}

// ReadTexture reads the samples of id into out, which the caller sizes
// to Width*Height*Components bytes. Returns false when id is not in
// this file.
func (h *TextureFileHandle) ReadTexture(id TextureID, out []byte) (bool, error) {
	if !h.isOpen {
		return false, fmt.Errorf("texture file '%s' is closed", h.path)
	}

	tex, ok := h.FindTexture(id)
	if !ok {
		return false, nil
	}

	offset := int64(TextureFileHeaderSize) +
		int64(h.header.TextureCount)*TextureDataSize +
		int64(tex.Offset)
	if _, err := h.file.Seek(offset, io.SeekStart); err != nil {
		return false, err
	}
	size := int(tex.Width) * int(tex.Height) * int(tex.Components)
	if _, err := io.ReadFull(h.file, out[:size]); err != nil {
		return false, fmt.Errorf("failed to read samples of texture %d from '%s': %w", id, h.path, err)
	}
	return true, nil
}

// Close releases the underlying file. Double-close is a no-op.
func (h *TextureFileHandle) Close() error {
	if !h.isOpen {
		return nil
	}
	h.isOpen = false
	h.textures = nil
	return h.file.Close()
}
