package assets

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spaghettifunk/crpg/engine/core"
)

func putStaticMeshData(w *writer, mesh *StaticMeshData) {
	w.putVec3(mesh.Bounds.Min)
	w.putVec3(mesh.Bounds.Max)
	w.putU32(uint32(mesh.ID))
	w.putU32(uint32(mesh.Color))
	w.putU32(uint32(mesh.Normal))
	w.putU32(uint32(mesh.Roughness))
	w.putU32(uint32(mesh.Occlusion))
	w.putU32(uint32(mesh.Emission))
	w.putU32(mesh.VertexOffset)
	w.putU32(mesh.VertexCount)
	w.putU32(mesh.IndexOffset)
	w.putU32(mesh.IndexCount)
}

func readStaticMeshData(r *reader) StaticMeshData {
	var mesh StaticMeshData
	mesh.Bounds.Min = r.readVec3()
	mesh.Bounds.Max = r.readVec3()
	mesh.ID = MeshID(r.readU32())
	mesh.Color = TextureID(r.readU32())
	mesh.Normal = TextureID(r.readU32())
	mesh.Roughness = TextureID(r.readU32())
	mesh.Occlusion = TextureID(r.readU32())
	mesh.Emission = TextureID(r.readU32())
	mesh.VertexOffset = r.readU32()
	mesh.VertexCount = r.readU32()
	mesh.IndexOffset = r.readU32()
	mesh.IndexCount = r.readU32()
	return mesh
}

func putStaticVertex(w *writer, v *StaticVertex) {
	w.putVec3(v.Position)
	w.putVec2(v.UV)
	w.putVec3(v.Normal)
	w.putVec3(v.Tangent)
}

func readStaticVertex(r *reader) StaticVertex {
	var v StaticVertex
	v.Position = r.readVec3()
	v.UV = r.readVec2()
	v.Normal = r.readVec3()
	v.Tangent = r.readVec3()
	return v
}

// EncodeStaticMeshes writes a complete mesh file to w: header, descriptor
// array, vertex arena, index arena. It performs no validation of the
// descriptors; WriteStaticMeshFile is the checked entry point.
func EncodeStaticMeshes(out io.Writer, meshes []StaticMeshData, verts []StaticVertex, indices []uint16) error {
	w := &writer{w: out}

	w.putMagic(StaticMeshMagic)
	w.putU32(uint32(len(meshes)))
	w.putU32(uint32(len(verts)))
	w.putU32(uint32(len(indices)))

	for i := range meshes {
		putStaticMeshData(w, &meshes[i])
	}
	for i := range verts {
		putStaticVertex(w, &verts[i])
	}
	for _, idx := range indices {
		w.putU16(idx)
	}

	return w.err
}

// validateStaticMeshes checks the invariants the write path enforces:
// identifiers are unique within the file and every descriptor's vertex
// and index range falls inside the shared arenas.
func validateStaticMeshes(meshes []StaticMeshData, vertexCount, indexCount uint32) error {
	seen := make(map[MeshID]struct{}, len(meshes))
	for i := range meshes {
		mesh := &meshes[i]
		if _, ok := seen[mesh.ID]; ok {
			return fmt.Errorf("duplicate mesh id %d in file", mesh.ID)
		}
		seen[mesh.ID] = struct{}{}

		if mesh.VertexOffset+mesh.VertexCount > vertexCount {
			return fmt.Errorf("mesh %d vertex range [%d, %d) exceeds vertex count %d",
				mesh.ID, mesh.VertexOffset, mesh.VertexOffset+mesh.VertexCount, vertexCount)
		}
		if mesh.IndexOffset+mesh.IndexCount > indexCount {
			return fmt.Errorf("mesh %d index range [%d, %d) exceeds index count %d",
				mesh.ID, mesh.IndexOffset, mesh.IndexOffset+mesh.IndexCount, indexCount)
		}
	}
	return nil
}

// WriteStaticMeshFile validates the descriptors and writes the packed
// mesh file at path. The file is created or truncated.
func WriteStaticMeshFile(path string, meshes []StaticMeshData, verts []StaticVertex, indices []uint16) error {
	if err := validateStaticMeshes(meshes, uint32(len(verts)), uint32(len(indices))); err != nil {
		core.LogError("failed to write mesh file '%s': %s", path, err.Error())
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		core.LogError("failed to create mesh file '%s': %s", path, err.Error())
		return err
	}

	out := bufio.NewWriter(f)
	if err := EncodeStaticMeshes(out, meshes, verts, indices); err != nil {
		f.Close()
		core.LogError("failed to encode mesh file '%s': %s", path, err.Error())
		return err
	}
	if err := out.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// OpenStaticMeshFile reads the header and descriptor array of the mesh
// file at path and returns a live handle over it. The vertex and index
// arenas are not loaded; ReadMesh fetches sub-ranges on demand.
func OpenStaticMeshFile(path string) (*MeshFileHandle, error) {
	f, err := os.Open(path)
	if err != nil {
		core.LogError("failed to open mesh file '%s': %s", path, err.Error())
		return nil, err
	}

	head := make([]byte, StaticMeshFileHeaderSize)
	if _, err := io.ReadFull(f, head); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read mesh file header from '%s': %w", path, err)
	}

	r := &reader{data: head}
	if magic := r.readMagic(); magic != StaticMeshMagic {
		f.Close()
		return nil, fmt.Errorf("'%s' is not a static mesh file (magic '%s')", path, magic)
	}

	var header StaticMeshFileHeader
	header.MeshCount = r.readU32()
	header.VertexCount = r.readU32()
	header.IndexCount = r.readU32()

	descBytes := make([]byte, int(header.MeshCount)*StaticMeshDataSize)
	if _, err := io.ReadFull(f, descBytes); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read %d mesh descriptors from '%s': %w", header.MeshCount, path, err)
	}

	r = &reader{data: descBytes}
	meshes := make([]StaticMeshData, header.MeshCount)
	for i := range meshes {
		meshes[i] = readStaticMeshData(r)
	}

	// A corrupt descriptor would otherwise send ReadMesh past the end of
	// the arenas.
	if err := validateRanges(meshes, header.VertexCount, header.IndexCount); err != nil {
		f.Close()
		return nil, fmt.Errorf("corrupt mesh file '%s': %w", path, err)
	}

	return &MeshFileHandle{
		path:   path,
		file:   f,
		header: header,
		meshes: meshes,
		isOpen: true,
	}, nil
}

// validateRanges is the decode-time subset of validateStaticMeshes:
// range checks only. Duplicate ids are tolerated on read (last match
// wins, see FindDescriptor).
func validateRanges(meshes []StaticMeshData, vertexCount, indexCount uint32) error {
	for i := range meshes {
		mesh := &meshes[i]
		if mesh.VertexOffset+mesh.VertexCount > vertexCount {
			return fmt.Errorf("mesh %d vertex range exceeds vertex count %d", mesh.ID, vertexCount)
		}
		if mesh.IndexOffset+mesh.IndexCount > indexCount {
			return fmt.Errorf("mesh %d index range exceeds index count %d", mesh.ID, indexCount)
		}
	}
	return nil
}
