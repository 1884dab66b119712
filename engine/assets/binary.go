package assets

import (
	"encoding/binary"
	"fmt"
	"io"
	m "math"

	"github.com/spaghettifunk/crpg/engine/math"
)

// reader is a little-endian cursor over a byte slice. Reads past the end
// clamp the cursor and return zero values; callers size the slice from a
// trusted header before decoding.
type reader struct {
	data []byte
	off  int
}

func (r *reader) readU16() uint16 {
	if r.off+2 > len(r.data) {
		r.off = len(r.data)
		return 0
	}
	v := binary.LittleEndian.Uint16(r.data[r.off:])
	r.off += 2
	return v
}

func (r *reader) readU32() uint32 {
	if r.off+4 > len(r.data) {
		r.off = len(r.data)
		return 0
	}
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v
}

func (r *reader) readF32() float32 {
	return m.Float32frombits(r.readU32())
}

func (r *reader) readVec3() math.Vec3 {
	return math.Vec3{X: r.readF32(), Y: r.readF32(), Z: r.readF32()}
}

func (r *reader) readVec2() math.Vec2 {
	return math.Vec2{X: r.readF32(), Y: r.readF32()}
}

// readMagic consumes a fixed 32-byte magic field and returns the string
// up to the first NUL.
func (r *reader) readMagic() string {
	if r.off+magicSize > len(r.data) {
		r.off = len(r.data)
		return ""
	}
	s := r.data[r.off : r.off+magicSize]
	r.off += magicSize
	for i, b := range s {
		if b == 0 {
			return string(s[:i])
		}
	}
	return string(s)
}

// writer accumulates little-endian records and flushes them to an
// io.Writer. The first write error sticks; checking err once at the end
// is enough.
type writer struct {
	w   io.Writer
	err error
}

func (w *writer) write(b []byte) {
	if w.err != nil {
		return
	}
	_, w.err = w.w.Write(b)
}

func (w *writer) putU16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.write(b[:])
}

func (w *writer) putU32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.write(b[:])
}

func (w *writer) putF32(v float32) {
	w.putU32(m.Float32bits(v))
}

func (w *writer) putVec3(v math.Vec3) {
	w.putF32(v.X)
	w.putF32(v.Y)
	w.putF32(v.Z)
}

func (w *writer) putVec2(v math.Vec2) {
	w.putF32(v.X)
	w.putF32(v.Y)
}

func (w *writer) putMagic(magic string) {
	if len(magic) >= magicSize {
		if w.err == nil {
			w.err = fmt.Errorf("magic string '%s' does not fit in %d bytes", magic, magicSize)
		}
		return
	}
	var b [magicSize]byte
	copy(b[:], magic)
	w.write(b[:])
}
