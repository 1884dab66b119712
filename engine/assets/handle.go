package assets

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// MeshFileHandle is an open, randomly-addressable view over a mesh file.
// The header and descriptor array live in memory; vertex and index data
// stay on disk and are fetched by offset. A handle is either open or
// closed; every read requires it to be open.
//
// The handle owns its *os.File exclusively and is not safe for use from
// multiple goroutines: reads share the file's seek cursor.
type MeshFileHandle struct {
	path   string
	file   *os.File
	header StaticMeshFileHeader
	meshes []StaticMeshData
	isOpen bool
}

func (h *MeshFileHandle) Path() string {
	return h.path
}

func (h *MeshFileHandle) Header() StaticMeshFileHeader {
	return h.header
}

// Descriptors returns the loaded descriptor array in file order.
func (h *MeshFileHandle) Descriptors() []StaticMeshData {
	return h.meshes
}

// FindDescriptor scans the descriptor array for id. If the file holds
// duplicate ids the last match wins; the write path rejects duplicates,
// so this only matters for files produced elsewhere.
func (h *MeshFileHandle) FindDescriptor(id MeshID) (StaticMeshData, bool) {
	found := -1
	for i := range h.meshes {
		if h.meshes[i].ID == id {
			found = i
		}
	}
	if found == -1 {
		return StaticMeshData{}, false
	}
	return h.meshes[found], true
}

// ReadMesh resolves id and reads its vertex and index sub-ranges into
// the caller's slices. verts and indices must be sized to the
// descriptor's VertexCount and IndexCount; this layer does not check
// them. The first return value is false when id is not in this file.
func (h *MeshFileHandle) ReadMesh(id MeshID, verts []StaticVertex, indices []uint16) (bool, error) {
	if !h.isOpen {
		return false, fmt.Errorf("mesh file '%s' is closed", h.path)
	}

	mesh, ok := h.FindDescriptor(id)
	if !ok {
		return false, nil
	}

	buf, err := h.readAt(h.vertexOffsetToBytes(mesh.VertexOffset), int(mesh.VertexCount)*StaticVertexSize)
	if err != nil {
		return false, fmt.Errorf("failed to read vertices of mesh %d from '%s': %w", id, h.path, err)
	}
	r := &reader{data: buf}
	for i := uint32(0); i < mesh.VertexCount; i++ {
		verts[i] = readStaticVertex(r)
	}

	buf, err = h.readAt(h.indexOffsetToBytes(mesh.IndexOffset), int(mesh.IndexCount)*IndexSize)
	if err != nil {
		return false, fmt.Errorf("failed to read indices of mesh %d from '%s': %w", id, h.path, err)
	}
	r = &reader{data: buf}
	for i := uint32(0); i < mesh.IndexCount; i++ {
		indices[i] = r.readU16()
	}

	return true, nil
}

// Close releases the underlying file. Closing an already-closed handle
// is a no-op.
func (h *MeshFileHandle) Close() error {
	if !h.isOpen {
		return nil
	}
	h.isOpen = false
	h.meshes = nil
	return h.file.Close()
}

func (h *MeshFileHandle) readAt(offset int64, size int) ([]byte, error) {
	if _, err := h.file.Seek(offset, io.SeekStart); err != nil {
		return nil, err
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(h.file, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// Byte offsets are computed from element counts rather than stored in
// the file; keeping the arithmetic here keeps the format compact and
// the math in one place.

func (h *MeshFileHandle) vertexOffsetToBytes(vertexOffset uint32) int64 {
	return int64(StaticMeshFileHeaderSize) +
		int64(h.header.MeshCount)*StaticMeshDataSize +
		int64(vertexOffset)*StaticVertexSize
}

func (h *MeshFileHandle) indexOffsetToBytes(indexOffset uint32) int64 {
	return int64(StaticMeshFileHeaderSize) +
		int64(h.header.MeshCount)*StaticMeshDataSize +
		int64(h.header.VertexCount)*StaticVertexSize +
		int64(indexOffset)*IndexSize
}

// String renders the header and descriptor array for debugging.
func (h *MeshFileHandle) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "StaticMesh {\n")
	fmt.Fprintf(&sb, "  meshCount:   %d,\n", h.header.MeshCount)
	fmt.Fprintf(&sb, "  vertexCount: %d,\n", h.header.VertexCount)
	fmt.Fprintf(&sb, "  indexCount:  %d,\n", h.header.IndexCount)
	for i := range h.meshes {
		mesh := &h.meshes[i]
		fmt.Fprintf(&sb, "  mesh %d {\n", mesh.ID)
		fmt.Fprintf(&sb, "    vertexOffset: %d,\n", mesh.VertexOffset)
		fmt.Fprintf(&sb, "    vertexCount:  %d,\n", mesh.VertexCount)
		fmt.Fprintf(&sb, "    indexOffset:  %d,\n", mesh.IndexOffset)
		fmt.Fprintf(&sb, "    indexCount:   %d,\n", mesh.IndexCount)
		fmt.Fprintf(&sb, "    bounds {\n")
		fmt.Fprintf(&sb, "      min: vec3(%g, %g, %g)\n", mesh.Bounds.Min.X, mesh.Bounds.Min.Y, mesh.Bounds.Min.Z)
		fmt.Fprintf(&sb, "      max: vec3(%g, %g, %g)\n", mesh.Bounds.Max.X, mesh.Bounds.Max.Y, mesh.Bounds.Max.Z)
		fmt.Fprintf(&sb, "    }\n")
		fmt.Fprintf(&sb, "  }\n")
	}
	fmt.Fprintf(&sb, "}")
	return sb.String()
}
