package assets

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spaghettifunk/crpg/engine/core"
)

// Library resolves asset identifiers to mesh data without the caller
// knowing which physical file holds them. It owns the loaded index and
// a cache of open MeshFileHandles keyed by path; handles are opened
// lazily on first reference and kept until Close.
//
// A Library is single-threaded: callers needing parallel loads must
// synchronize around it.
type Library struct {
	refs     []AssetRef
	pathBlob []byte
	handles  map[string]*MeshFileHandle
}

// NewLibrary returns an empty library, used by tooling to build an
// index with AddMeshReference/AddTextureReference and Persist.
func NewLibrary() *Library {
	return &Library{
		handles: make(map[string]*MeshFileHandle),
	}
}

// OpenLibrary loads the index file at path wholesale. A wrong magic
// string or a path offset outside the blob is a hard error: the index
// is built by tooling and never expected to be malformed.
func OpenLibrary(path string) (*Library, error) {
	f, err := os.Open(path)
	if err != nil {
		core.LogError("failed to open library index '%s': %s", path, err.Error())
		return nil, err
	}
	defer f.Close()

	head := make([]byte, LibraryHeaderSize)
	if _, err := io.ReadFull(f, head); err != nil {
		return nil, fmt.Errorf("failed to read library header from '%s': %w", path, err)
	}

	r := &reader{data: head}
	if magic := r.readMagic(); magic != LibraryMagic {
		return nil, fmt.Errorf("'%s' is not a library index (magic '%s')", path, magic)
	}
	refCount := r.readU32()
	pathBytes := r.readU32()

	body := make([]byte, int(refCount)*AssetRefSize+int(pathBytes))
	if _, err := io.ReadFull(f, body); err != nil {
		return nil, fmt.Errorf("failed to read library body from '%s': %w", path, err)
	}

	r = &reader{data: body[:int(refCount)*AssetRefSize]}
	lib := &Library{
		refs:     make([]AssetRef, refCount),
		pathBlob: body[int(refCount)*AssetRefSize:],
		handles:  make(map[string]*MeshFileHandle),
	}
	for i := range lib.refs {
		lib.refs[i] = AssetRef{
			AssetID:    AssetID(r.readU32()),
			Type:       AssetType(r.readU32()),
			PathOffset: r.readU32(),
		}
	}

	for i := range lib.refs {
		ref := &lib.refs[i]
		if int(ref.PathOffset) >= len(lib.pathBlob) {
			return nil, fmt.Errorf("library index '%s': asset %d path offset %d outside path blob", path, ref.AssetID, ref.PathOffset)
		}
		if bytes.IndexByte(lib.pathBlob[ref.PathOffset:], 0) < 0 {
			return nil, fmt.Errorf("library index '%s': asset %d path is not NUL-terminated", path, ref.AssetID)
		}
	}

	return lib, nil
}

// Persist writes the index to path, round-tripping with OpenLibrary.
func (l *Library) Persist(path string) error {
	f, err := os.Create(path)
	if err != nil {
		core.LogError("failed to create library index '%s': %s", path, err.Error())
		return err
	}

	out := bufio.NewWriter(f)
	w := &writer{w: out}
	w.putMagic(LibraryMagic)
	w.putU32(uint32(len(l.refs)))
	w.putU32(uint32(len(l.pathBlob)))
	for i := range l.refs {
		w.putU32(uint32(l.refs[i].AssetID))
		w.putU32(uint32(l.refs[i].Type))
		w.putU32(l.refs[i].PathOffset)
	}
	w.write(l.pathBlob)

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

// AddMeshReference records that the mesh with the given id lives in the
// mesh file at path. Tooling-side only; render-time lookups never
// mutate the index.
func (l *Library) AddMeshReference(id MeshID, path string) {
	l.addReference(id, AssetTypeStaticMesh, path)
}

// AddTextureReference records that the texture with the given id lives
// in the texture file at path.
func (l *Library) AddTextureReference(id TextureID, path string) {
	l.addReference(id, AssetTypeTexture, path)
}

func (l *Library) addReference(id AssetID, t AssetType, path string) {
	l.refs = append(l.refs, AssetRef{
		AssetID:    id,
		Type:       t,
		PathOffset: uint32(len(l.pathBlob)),
	})
	l.pathBlob = append(l.pathBlob, path...)
	l.pathBlob = append(l.pathBlob, 0)
}

// References returns the asset reference array in index order.
func (l *Library) References() []AssetRef {
	return l.refs
}

// PathForRef returns the path a reference points at.
func (l *Library) PathForRef(ref AssetRef) string {
	rest := l.pathBlob[ref.PathOffset:]
	end := bytes.IndexByte(rest, 0)
	if end < 0 {
		// OpenLibrary and addReference both guarantee termination.
		return string(rest)
	}
	return string(rest[:end])
}

// resolveMeshPath finds the first reference for id. A miss here is an
// error, not a not-found: an id the index does not know is a broken
// index, which is a harder failure than a per-file descriptor miss.
func (l *Library) resolveMeshPath(id MeshID) (string, error) {
	for i := range l.refs {
		if l.refs[i].AssetID == id && l.refs[i].Type == AssetTypeStaticMesh {
			return l.PathForRef(l.refs[i]), nil
		}
	}
	return "", fmt.Errorf("no static mesh reference for asset %d in library index", id)
}

// handleFor returns the cached handle for path, opening it on first
// use. The cache is never evicted: asset file counts are small.
func (l *Library) handleFor(path string) (*MeshFileHandle, error) {
	if h, ok := l.handles[path]; ok {
		return h, nil
	}
	h, err := OpenStaticMeshFile(path)
	if err != nil {
		return nil, err
	}
	l.handles[path] = h
	return h, nil
}

// GetMeshDescriptor resolves id to its mesh file and returns the
// descriptor. The bool is false when the file does not contain id; an
// unresolvable id or an unopenable file is an error.
func (l *Library) GetMeshDescriptor(id MeshID) (StaticMeshData, bool, error) {
	path, err := l.resolveMeshPath(id)
	if err != nil {
		return StaticMeshData{}, false, err
	}
	h, err := l.handleFor(path)
	if err != nil {
		return StaticMeshData{}, false, err
	}
	mesh, ok := h.FindDescriptor(id)
	return mesh, ok, nil
}

// ReadMesh resolves id and delegates to the owning handle's ReadMesh.
// The caller sizes verts and indices from GetMeshDescriptor.
func (l *Library) ReadMesh(id MeshID, verts []StaticVertex, indices []uint16) (bool, error) {
	path, err := l.resolveMeshPath(id)
	if err != nil {
		return false, err
	}
	h, err := l.handleFor(path)
	if err != nil {
		return false, err
	}
	return h.ReadMesh(id, verts, indices)
}

// StaticMeshPayload is one fully-loaded mesh, as returned by the batch
// read path.
type StaticMeshPayload struct {
	Mesh     StaticMeshData
	Vertices []StaticVertex
	Indices  []uint16
}

// ReadMeshes loads every id in one pass, allocating payload buffers
// from the descriptors. Any miss, per-file or index-level, fails the
// batch: batch loads happen at startup where a missing mesh means a
// broken asset build.
func (l *Library) ReadMeshes(ids []MeshID) ([]StaticMeshPayload, error) {
	payloads := make([]StaticMeshPayload, 0, len(ids))
	for _, id := range ids {
		mesh, ok, err := l.GetMeshDescriptor(id)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("mesh %d is indexed but missing from its file", id)
		}
		p := StaticMeshPayload{
			Mesh:     mesh,
			Vertices: make([]StaticVertex, mesh.VertexCount),
			Indices:  make([]uint16, mesh.IndexCount),
		}
		if _, err := l.ReadMesh(id, p.Vertices, p.Indices); err != nil {
			return nil, err
		}
		payloads = append(payloads, p)
	}
	return payloads, nil
}

// InvalidateHandle closes and drops the cached handle for path, if any.
// The next lookup through that path reopens the file; used by the asset
// watcher when a mesh file changes on disk.
func (l *Library) InvalidateHandle(path string) {
	if h, ok := l.handles[path]; ok {
		if err := h.Close(); err != nil {
			core.LogWarn("failed to close handle for '%s': %s", path, err.Error())
		}
		delete(l.handles, path)
	}
}

// Close closes every cached handle. The library is still usable
// afterwards; handles reopen lazily.
func (l *Library) Close() error {
	var firstErr error
	for path, h := range l.handles {
		if err := h.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(l.handles, path)
	}
	return firstErr
}
