// Package importer converts interchange assets (glTF meshes, common
// image formats) into the packed crpg asset files. It is offline
// tooling: the render path only ever sees the packed formats.
package importer

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/spaghettifunk/crpg/engine/assets"
	"github.com/spaghettifunk/crpg/engine/core"
	"github.com/spaghettifunk/crpg/engine/math"
	"github.com/spaghettifunk/crpg/engine/strid"
)

// StaticMesh is the in-memory result of a conversion, ready for
// assets.WriteStaticMeshFile.
type StaticMesh struct {
	Data     assets.StaticMeshData
	Vertices []assets.StaticVertex
	Indices  []uint16
}

// StaticMeshFromGLTF parses the glTF file at path and converts it. The
// mesh id is interned from the glTF mesh name through db.
func StaticMeshFromGLTF(db *strid.DB, path string) (*StaticMesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		core.LogError("failed to parse glTF file '%s': %s", path, err.Error())
		return nil, err
	}
	return StaticMeshFromDocument(db, doc)
}

// StaticMeshFromDocument converts a single-mesh glTF document, as
// exported by Blender, into a static mesh. The document must contain
// exactly one mesh with exactly one primitive carrying POSITION,
// NORMAL, TEXCOORD_0 and TANGENT attributes; anything else is a
// conversion error.
func StaticMeshFromDocument(db *strid.DB, doc *gltf.Document) (*StaticMesh, error) {
	if len(doc.Meshes) != 1 {
		return nil, fmt.Errorf("expected exactly 1 mesh in this document, got %d", len(doc.Meshes))
	}
	mesh := doc.Meshes[0]

	if len(mesh.Primitives) != 1 {
		return nil, fmt.Errorf("expected exactly 1 primitive in this mesh, got %d", len(mesh.Primitives))
	}
	prim := mesh.Primitives[0]

	posAcc, err := primitiveAccessor(doc, prim, "POSITION")
	if err != nil {
		return nil, err
	}
	normAcc, err := primitiveAccessor(doc, prim, "NORMAL")
	if err != nil {
		return nil, err
	}
	uvAcc, err := primitiveAccessor(doc, prim, "TEXCOORD_0")
	if err != nil {
		return nil, err
	}
	tangentAcc, err := primitiveAccessor(doc, prim, "TANGENT")
	if err != nil {
		return nil, err
	}

	positions, err := modeler.ReadPosition(doc, posAcc, nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}
	normals, err := modeler.ReadNormal(doc, normAcc, nil)
	if err != nil {
		return nil, fmt.Errorf("normals: %w", err)
	}
	uvs, err := modeler.ReadTextureCoord(doc, uvAcc, nil)
	if err != nil {
		return nil, fmt.Errorf("uvs: %w", err)
	}
	tangents, err := modeler.ReadTangent(doc, tangentAcc, nil)
	if err != nil {
		return nil, fmt.Errorf("tangents: %w", err)
	}

	vertexCount := len(positions)
	if len(normals) != vertexCount {
		return nil, fmt.Errorf("sanity check: normal count (%d) != position count (%d)", len(normals), vertexCount)
	}
	if len(uvs) != vertexCount {
		return nil, fmt.Errorf("sanity check: uv count (%d) != position count (%d)", len(uvs), vertexCount)
	}
	if len(tangents) != vertexCount {
		return nil, fmt.Errorf("sanity check: tangent count (%d) != position count (%d)", len(tangents), vertexCount)
	}

	if prim.Indices == nil {
		return nil, fmt.Errorf("this mesh has no index buffer")
	}
	rawIndices, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
	if err != nil {
		return nil, fmt.Errorf("indices: %w", err)
	}

	// The packed format stores 16-bit indices; this narrowing is the
	// format's hard ceiling.
	indices := make([]uint16, len(rawIndices))
	for i, idx := range rawIndices {
		if idx > 0xFFFF {
			return nil, fmt.Errorf("this mesh has %d as an index, which won't fit in a uint16", idx)
		}
		indices[i] = uint16(idx)
	}

	name := mesh.Name
	if name == "" {
		name = fmt.Sprintf("mesh-%s", uuid.New().String())
		core.LogWarn("glTF mesh has no name, interning generated name '%s'", name)
	}

	out := &StaticMesh{
		Data: assets.StaticMeshData{
			ID:          assets.MeshID(db.GetID(name)),
			VertexCount: uint32(vertexCount),
			IndexCount:  uint32(len(indices)),
		},
		Vertices: make([]assets.StaticVertex, vertexCount),
		Indices:  indices,
	}

	for i := range out.Vertices {
		v := &out.Vertices[i]
		v.Position = math.NewVec3(positions[i][0], positions[i][1], positions[i][2])
		v.UV = math.NewVec2(uvs[i][0], uvs[i][1])
		v.Normal = math.NewVec3(normals[i][0], normals[i][1], normals[i][2])
		// glTF tangents are vec4 with a handedness sign in w; the
		// packed format keeps only xyz.
		v.Tangent = math.NewVec3(tangents[i][0], tangents[i][1], tangents[i][2])
	}

	if vertexCount > 0 {
		out.Data.Bounds.Min = out.Vertices[0].Position
		out.Data.Bounds.Max = out.Vertices[0].Position
		for i := 1; i < vertexCount; i++ {
			out.Data.Bounds.ExpandToFit(out.Vertices[i].Position)
		}
	}

	return out, nil
}

func primitiveAccessor(doc *gltf.Document, prim *gltf.Primitive, attr string) (*gltf.Accessor, error) {
	idx, ok := prim.Attributes[attr]
	if !ok {
		return nil, fmt.Errorf("this mesh has no %s attribute", attr)
	}
	acc := doc.Accessors[idx]
	if acc.Sparse != nil {
		return nil, fmt.Errorf("%s data is sparse -- we can't handle this at the moment", attr)
	}
	return acc, nil
}
