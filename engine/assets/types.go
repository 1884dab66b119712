package assets

import (
	"github.com/spaghettifunk/crpg/engine/math"
)

// AssetID is the stable numeric name of an asset, produced by the
// strid interner. 0 is reserved and means "no asset".
type AssetID uint32

type MeshID = AssetID
type TextureID = AssetID

const NullAssetID AssetID = 0

const (
	// magicSize is the fixed on-disk size of every magic string,
	// NUL-padded to the right.
	magicSize = 32

	StaticMeshMagic = "crpg:asset:static-mesh"
	TextureMagic    = "crpg:asset:texture"
	LibraryMagic    = "crpg:asset:library"
)

// On-disk record sizes. Everything is packed little-endian; there is no
// alignment padding and no versioning beyond the magic string.
const (
	StaticMeshFileHeaderSize = magicSize + 3*4
	StaticMeshDataSize       = 6*4 + 6*4 + 4*4
	StaticVertexSize         = 11 * 4
	IndexSize                = 2

	LibraryHeaderSize = magicSize + 2*4
	AssetRefSize      = 3 * 4

	TextureFileHeaderSize = magicSize + 2*4
	TextureDataSize       = 4 + 3*2 + 4
)

// StaticVertex is the fixed vertex record of the static mesh format.
// It is written to disk as a flat copy, so the field layout is part of
// the format.
type StaticVertex struct {
	Position math.Vec3
	UV       math.Vec2
	Normal   math.Vec3
	Tangent  math.Vec3
}

// StaticMeshData describes one mesh inside a mesh file: its identifier,
// bounds, texture bindings and its sub-range of the file's shared vertex
// and index arenas. Offsets are element counts, not bytes.
type StaticMeshData struct {
	Bounds math.Extents3D
	ID     MeshID

	Color     TextureID
	Normal    TextureID
	Roughness TextureID
	Occlusion TextureID
	Emission  TextureID

	VertexOffset uint32
	VertexCount  uint32
	IndexOffset  uint32
	IndexCount   uint32
}

// StaticMeshFileHeader is the fixed header of a mesh file. The counts
// cover the whole file: meshes share a single vertex arena and a single
// index arena.
type StaticMeshFileHeader struct {
	MeshCount   uint32
	VertexCount uint32
	IndexCount  uint32
}

// TextureData describes one texture inside a texture file. Offset is in
// bytes into the file's sample arena.
type TextureData struct {
	ID         TextureID
	Width      uint16
	Height     uint16
	Components uint16
	Offset     uint32
}

// TextureFileHeader is the fixed header of a texture file. SampleCount
// is the total number of sample bytes in the arena.
type TextureFileHeader struct {
	TextureCount uint32
	SampleCount  uint32
}

// AssetType tags a library reference with the kind of file it points at.
type AssetType uint32

const (
	AssetTypeStaticMesh AssetType = iota
	AssetTypeTexture
)

// AssetRef maps one asset identifier to a path in the library's path
// blob. PathOffset is a byte index of a NUL-terminated string.
type AssetRef struct {
	AssetID    AssetID
	Type       AssetType
	PathOffset uint32
}
