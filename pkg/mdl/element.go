package mdl

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// element decodes one record at the cursor and leaves the cursor at the
// next record. Fixed-width fields are fatal when short; the two buffers and
// the material name degrade to nil.
func (d *decoder) element() (Element, error) {
	var e Element
	var err error

	if e.NumFaces, err = d.r.int32(); err != nil {
		return e, errors.Wrap(err, "reading num_faces")
	}
	raw, err := d.r.peekUint32()
	if err != nil {
		return e, errors.Wrap(err, "reading index offset")
	}
	e.FOffset = int32(raw)
	if e.Indices, err = d.buffer(int64(e.NumFaces) * 2); err != nil {
		return e, errors.Wrap(err, "resolving indices")
	}

	if e.NumVct, err = d.r.int32(); err != nil {
		return e, errors.Wrap(err, "reading num_vct")
	}
	if e.VertexStride, err = d.r.int32(); err != nil {
		return e, errors.Wrap(err, "reading vertex_stride")
	}
	if raw, err = d.r.peekUint32(); err != nil {
		return e, errors.Wrap(err, "reading vertex offset")
	}
	e.VOffset = int32(raw)
	vertexBytes := int64(0)
	if e.NumVct > 0 && e.VertexStride > 0 {
		vertexBytes = int64(e.NumVct) * int64(e.VertexStride)
	}
	if e.Vertices, err = d.buffer(vertexBytes); err != nil {
		return e, errors.Wrap(err, "resolving vertices")
	}

	if e.Flags, err = d.r.uint32(); err != nil {
		return e, errors.Wrap(err, "reading flags")
	}
	if e.StreamOfs, err = d.r.uint32(); err != nil {
		return e, errors.Wrap(err, "reading stream_ofs")
	}
	if e.MOffset1, err = d.r.peekUint32(); err != nil {
		return e, errors.Wrap(err, "reading material offset")
	}
	if e.MaterialName, err = indirectMaterialName(d); err != nil {
		return e, errors.Wrap(err, "resolving material name")
	}

	if e.VertexOfs, err = d.r.uint32(); err != nil {
		return e, errors.Wrap(err, "reading vertex_ofs")
	}
	if err := d.r.read(e.Extra[:]); err != nil {
		return e, errors.Wrap(err, "reading extra")
	}

	d.log.Debug("element decoded",
		zap.Int32("faces", e.NumFaces),
		zap.Int32("vertices", e.NumVct),
		zap.Bool("indices", e.Indices != nil),
		zap.Bool("vertex_data", e.Vertices != nil),
		zap.String("material", e.Material()))
	return e, nil
}

// buffer resolves a raw-buffer pointer of n bytes at the cursor. When n is
// not positive the offset field is stepped over without following it.
// The caller has already peeked the field, so it is known to be present.
func (d *decoder) buffer(n int64) ([]byte, error) {
	if n <= 0 {
		return nil, d.r.skip(4)
	}
	buf, ok, err := relPtr(d, 0, rawBuffer(n))
	if err != nil || !ok {
		return nil, err
	}
	return buf, nil
}
