package assets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/crpg/engine/math"
)

func testVertex(seed float32) StaticVertex {
	return StaticVertex{
		Position: math.NewVec3(seed, seed+1, seed+2),
		UV:       math.NewVec2(seed*0.1, seed*0.2),
		Normal:   math.NewVec3(0, 1, 0),
		Tangent:  math.NewVec3(1, 0, 0),
	}
}

func TestMeshFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tri.mesh")

	verts := []StaticVertex{testVertex(0), testVertex(10), testVertex(20)}
	indices := []uint16{0, 1, 2}
	meshes := []StaticMeshData{{
		Bounds:       math.Extents3D{Min: math.NewVec3(0, 1, 2), Max: math.NewVec3(20, 21, 22)},
		ID:           7,
		VertexOffset: 0,
		VertexCount:  3,
		IndexOffset:  0,
		IndexCount:   3,
	}}

	if err := WriteStaticMeshFile(path, meshes, verts, indices); err != nil {
		t.Fatalf("WriteStaticMeshFile: %v", err)
	}

	handle, err := OpenStaticMeshFile(path)
	if err != nil {
		t.Fatalf("OpenStaticMeshFile: %v", err)
	}
	defer handle.Close()

	header := handle.Header()
	if header.MeshCount != 1 || header.VertexCount != 3 || header.IndexCount != 3 {
		t.Errorf("header counts: got %+v, want 1/3/3", header)
	}

	outVerts := make([]StaticVertex, 3)
	outIndices := make([]uint16, 3)
	ok, err := handle.ReadMesh(7, outVerts, outIndices)
	if err != nil {
		t.Fatalf("ReadMesh: %v", err)
	}
	if !ok {
		t.Fatal("ReadMesh(7): expected success")
	}
	for i := range verts {
		if outVerts[i] != verts[i] {
			t.Errorf("vertex %d: got %+v, want %+v", i, outVerts[i], verts[i])
		}
	}
	for i := range indices {
		if outIndices[i] != indices[i] {
			t.Errorf("index %d: got %d, want %d", i, outIndices[i], indices[i])
		}
	}

	// A missing id is a recoverable miss, not an error.
	ok, err = handle.ReadMesh(99, outVerts, outIndices)
	if err != nil {
		t.Fatalf("ReadMesh(99): %v", err)
	}
	if ok {
		t.Error("ReadMesh(99): expected not-found")
	}
	if _, found := handle.FindDescriptor(99); found {
		t.Error("FindDescriptor(99): expected not-found")
	}
}

func TestMeshFileEmptyRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.mesh")

	if err := WriteStaticMeshFile(path, nil, nil, nil); err != nil {
		t.Fatalf("WriteStaticMeshFile: %v", err)
	}

	handle, err := OpenStaticMeshFile(path)
	if err != nil {
		t.Fatalf("OpenStaticMeshFile: %v", err)
	}
	defer handle.Close()

	header := handle.Header()
	if header.MeshCount != 0 || header.VertexCount != 0 || header.IndexCount != 0 {
		t.Errorf("header counts: got %+v, want all zero", header)
	}
	if _, found := handle.FindDescriptor(1); found {
		t.Error("FindDescriptor on empty file: expected not-found")
	}
}

func TestMeshFileSharedArenas(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shared.mesh")

	verts := make([]StaticVertex, 8)
	for i := range verts {
		verts[i] = testVertex(float32(i) * 100)
	}
	indices := []uint16{0, 1, 2, 0, 1, 2, 3, 4}
	meshes := []StaticMeshData{
		{ID: 1, VertexOffset: 0, VertexCount: 3, IndexOffset: 0, IndexCount: 3},
		{ID: 2, VertexOffset: 3, VertexCount: 5, IndexOffset: 3, IndexCount: 5},
	}

	if err := WriteStaticMeshFile(path, meshes, verts, indices); err != nil {
		t.Fatalf("WriteStaticMeshFile: %v", err)
	}

	handle, err := OpenStaticMeshFile(path)
	if err != nil {
		t.Fatalf("OpenStaticMeshFile: %v", err)
	}
	defer handle.Close()

	// Mesh 2's vertex range starts after mesh 1's three records.
	wantOffset := int64(StaticMeshFileHeaderSize) + 2*StaticMeshDataSize + 3*StaticVertexSize
	if got := handle.vertexOffsetToBytes(3); got != wantOffset {
		t.Errorf("vertexOffsetToBytes(3): got %d, want %d", got, wantOffset)
	}
	wantIndexOffset := int64(StaticMeshFileHeaderSize) + 2*StaticMeshDataSize + 8*StaticVertexSize + 3*IndexSize
	if got := handle.indexOffsetToBytes(3); got != wantIndexOffset {
		t.Errorf("indexOffsetToBytes(3): got %d, want %d", got, wantIndexOffset)
	}

	outVerts := make([]StaticVertex, 5)
	outIndices := make([]uint16, 5)
	ok, err := handle.ReadMesh(2, outVerts, outIndices)
	if err != nil || !ok {
		t.Fatalf("ReadMesh(2): ok=%v err=%v", ok, err)
	}
	for i := 0; i < 5; i++ {
		if outVerts[i] != verts[3+i] {
			t.Errorf("mesh 2 vertex %d: got %+v, want %+v", i, outVerts[i], verts[3+i])
		}
	}
	for i := 0; i < 5; i++ {
		if outIndices[i] != indices[3+i] {
			t.Errorf("mesh 2 index %d: got %d, want %d", i, outIndices[i], indices[3+i])
		}
	}

	// Mesh 1 still reads its own range, no off-by-one into mesh 2's.
	outVerts = make([]StaticVertex, 3)
	outIndices = make([]uint16, 3)
	ok, err = handle.ReadMesh(1, outVerts, outIndices)
	if err != nil || !ok {
		t.Fatalf("ReadMesh(1): ok=%v err=%v", ok, err)
	}
	for i := 0; i < 3; i++ {
		if outVerts[i] != verts[i] {
			t.Errorf("mesh 1 vertex %d: got %+v, want %+v", i, outVerts[i], verts[i])
		}
	}
}

func TestMeshFileWriteValidation(t *testing.T) {
	dir := t.TempDir()

	// Duplicate ids are rejected at write time.
	dup := []StaticMeshData{{ID: 3}, {ID: 3}}
	if err := WriteStaticMeshFile(filepath.Join(dir, "dup.mesh"), dup, nil, nil); err == nil {
		t.Error("expected duplicate id to fail")
	}

	// So are descriptor ranges outside the arenas.
	bad := []StaticMeshData{{ID: 1, VertexOffset: 2, VertexCount: 2}}
	if err := WriteStaticMeshFile(filepath.Join(dir, "bad.mesh"), bad, make([]StaticVertex, 3), nil); err == nil {
		t.Error("expected out-of-range vertex range to fail")
	}
}

func TestMeshFileBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-a-mesh.bin")

	junk := make([]byte, StaticMeshFileHeaderSize)
	copy(junk, "crpg:asset:library")
	if err := os.WriteFile(path, junk, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := OpenStaticMeshFile(path); err == nil {
		t.Error("expected bad magic to fail")
	}
}

func TestFindDescriptorLastMatchWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dup.mesh")

	// The checked write path refuses duplicates; encode directly to get
	// a file another tool might have produced.
	meshes := []StaticMeshData{
		{ID: 5, VertexOffset: 0, VertexCount: 1},
		{ID: 5, VertexOffset: 1, VertexCount: 2},
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := EncodeStaticMeshes(f, meshes, make([]StaticVertex, 3), nil); err != nil {
		t.Fatal(err)
	}
	f.Close()

	handle, err := OpenStaticMeshFile(path)
	if err != nil {
		t.Fatalf("OpenStaticMeshFile: %v", err)
	}
	defer handle.Close()

	mesh, ok := handle.FindDescriptor(5)
	if !ok {
		t.Fatal("FindDescriptor(5): expected a match")
	}
	if mesh.VertexOffset != 1 || mesh.VertexCount != 2 {
		t.Errorf("expected the last duplicate to win, got %+v", mesh)
	}
}

func TestHandleCloseIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "close.mesh")

	if err := WriteStaticMeshFile(path, nil, nil, nil); err != nil {
		t.Fatal(err)
	}
	handle, err := OpenStaticMeshFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := handle.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := handle.Close(); err != nil {
		t.Fatalf("second Close should be a no-op, got %v", err)
	}

	if _, err := handle.ReadMesh(1, nil, nil); err == nil {
		t.Error("ReadMesh after Close: expected error")
	}
}
