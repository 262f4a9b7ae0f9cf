package mdl

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"go.uber.org/zap"
)

// streamBuilder assembles synthetic big-endian MDL streams at fixed offsets.
type streamBuilder struct {
	data []byte
}

func (b *streamBuilder) ensure(n int) {
	if len(b.data) < n {
		b.data = append(b.data, make([]byte, n-len(b.data))...)
	}
}

func (b *streamBuilder) u32(pos int, v uint32) {
	b.ensure(pos + 4)
	binary.BigEndian.PutUint32(b.data[pos:], v)
}

func (b *streamBuilder) i32(pos int, v int32) {
	b.u32(pos, uint32(v))
}

func (b *streamBuilder) f32(pos int, v float32) {
	b.u32(pos, math.Float32bits(v))
}

func (b *streamBuilder) raw(pos int, p []byte) {
	b.ensure(pos + len(p))
	copy(b.data[pos:], p)
}

func (b *streamBuilder) cstr(pos int, s string) {
	b.raw(pos, append([]byte(s), 0))
}

// ptr writes a relative pointer at field addressing target under bias.
func (b *streamBuilder) ptr(field, target, bias int) {
	b.i32(field, int32(target-field-bias))
}

// Layout of the reference model built by makeSteelMDL.
const (
	steelElement  = 0x30
	steelIndices  = 0x80
	steelVertices = 0x88
	steelHop2     = 0xC0
	steelHop3     = 0xC4
	steelName     = 0xC8
)

// makeHeader writes a header with elementsCount elements and a table
// locator pointing at tableStart.
func makeHeader(b *streamBuilder, elementsCount uint32, tableStart int) {
	b.raw(0x00, []byte{'M', 'D'})
	b.raw(0x02, []byte{0x00, 0x01})
	b.u32(0x04, 0xCAFEBABE)
	b.u32(0x08, 12)
	b.u32(0x0C, elementsCount)
	// The locator measures from 0x10 and adds 8.
	b.i32(0x10, int32(tableStart-0x10-8))
	b.u32(0x14, 1)
	b.u32(0x18, 0x200)
	b.f32(0x1C, -1.5)
	b.f32(0x20, 2.5)
	b.f32(0x24, 3.25)
	b.f32(0x28, 10)
}

// makeElement writes the fixed part of an element record at pos with null
// pointers; callers patch the pointers they need.
func makeElement(b *streamBuilder, pos int, faces, vct, stride int32) {
	b.i32(pos+0x00, faces)
	b.i32(pos+0x04, -1)
	b.i32(pos+0x08, vct)
	b.i32(pos+0x0C, stride)
	b.i32(pos+0x10, -1)
	b.u32(pos+0x14, 0x11)
	b.u32(pos+0x18, 0x22)
	b.i32(pos+0x1C, -1)
	b.u32(pos+0x20, 0x33)
	extra := make([]byte, ExtraSize)
	for i := range extra {
		extra[i] = byte(i + 1)
	}
	b.raw(pos+0x24, extra)
}

// makeSteelMDL returns a single-element model with 3 faces, 4 vertices of
// stride 12 and a material chain resolving to "steel".
func makeSteelMDL() *streamBuilder {
	b := &streamBuilder{}
	makeHeader(b, 1, steelElement)
	makeElement(b, steelElement, 3, 4, 12)

	b.ptr(steelElement+0x04, steelIndices, 0)
	b.raw(steelIndices, []byte{0, 0, 0, 1, 0, 2})

	b.ptr(steelElement+0x10, steelVertices, 0)
	verts := &streamBuilder{}
	for i := 0; i < 12; i++ {
		verts.f32(i*4, float32(i))
	}
	b.raw(steelVertices, verts.data)

	b.ptr(steelElement+0x1C, steelHop2, materialBias)
	b.ptr(steelHop2, steelHop3, 0)
	b.ptr(steelHop3, steelName, 0)
	b.cstr(steelName, "steel")
	return b
}

// countingReader records the reads issued against a stream.
type countingReader struct {
	*bytes.Reader
	reads int
}

func (c *countingReader) Read(p []byte) (int, error) {
	c.reads++
	return c.Reader.Read(p)
}

func newTestDecoder(data []byte) (*decoder, *countingReader) {
	cr := &countingReader{Reader: bytes.NewReader(data)}
	return &decoder{r: newReader(cr), log: zap.NewNop()}, cr
}

func cursor(d *decoder) int64 {
	pos, _ := d.r.rs.Seek(0, io.SeekCurrent)
	return pos
}
