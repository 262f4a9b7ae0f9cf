// Package mdl decodes big-endian MDL model containers.
//
// Index buffers, vertex buffers and material names live out of line and are
// addressed by self-relative offsets. A pointer that cannot be followed
// leaves its field absent (nil) instead of failing the decode; only a short
// read of the fixed record layout is fatal.
package mdl

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// MDL decode errors.
var (
	ErrTruncatedMDLData = errors.New("truncated MDL data")
	ErrInvalidSeek      = errors.New("invalid MDL seek target")

	errAbsent = errors.New("pointer absent")
)

const (
	// headerSize covers magic through bounds.
	headerSize = 0x2C
	// tableLocatorPos is where the element table locator fields start.
	tableLocatorPos = 0x0C
	// ElementSize is the on-disk stride of one element record.
	ElementSize = 0x4C
	// ExtraSize is the reserved tail of an element record.
	ExtraSize = 40
)

// Model is a decoded MDL file.
type Model struct {
	SkeletonKey uint32
	JointCount  uint32

	// Header metadata. Only ElementsCount drives decoding.
	ElementsCount  uint32
	ElementsOffset uint32
	MaterialCount  uint32
	MaterialOffset uint32

	Bounds [4]float32

	Elements []Element
}

// Element is one mesh element record.
type Element struct {
	NumFaces     int32
	NumVct       int32 // vertex count
	VertexStride int32

	// Encoded offsets as stored in the record.
	FOffset  int32
	VOffset  int32
	MOffset1 uint32

	Indices      []byte  // NumFaces*2 bytes, nil when absent
	Vertices     []byte  // NumVct*VertexStride bytes, nil when absent
	MaterialName *string // nil when any hop of the chain is absent

	Flags     uint32
	StreamOfs uint32
	VertexOfs uint32
	Extra     [ExtraSize]byte
}

// HasMesh reports whether the element carries both faces and vertices.
func (e *Element) HasMesh() bool {
	return e.NumFaces > 0 && e.NumVct > 0
}

// Material returns the material name, or "" when absent.
func (e *Element) Material() string {
	if e.MaterialName == nil {
		return ""
	}
	return *e.MaterialName
}

// Option configures a decode.
type Option func(*decoder)

// WithLogger traces pointer resolution at debug level.
func WithLogger(log *zap.Logger) Option {
	return func(d *decoder) {
		if log != nil {
			d.log = log
		}
	}
}

type decoder struct {
	r   *reader
	log *zap.Logger
}

// Decode reads a complete model from rs, which must be positioned at the
// start of the file. On error no partial model is returned.
func Decode(rs io.ReadSeeker, opts ...Option) (*Model, error) {
	d := &decoder{
		r:   newReader(rs),
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d.model()
}

// ParseMDL decodes a model held in memory.
func ParseMDL(data []byte, opts ...Option) (*Model, error) {
	return Decode(bytes.NewReader(data), opts...)
}

// ParseMDLFile decodes a model file from disk.
func ParseMDLFile(path string, opts ...Option) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening MDL file")
	}
	defer f.Close()
	return Decode(f, opts...)
}

func (d *decoder) model() (*Model, error) {
	// Magic and version are accepted as-is.
	var preamble [4]byte
	if err := d.r.read(preamble[:]); err != nil {
		return nil, errors.Wrap(err, "reading magic")
	}

	m := &Model{}
	header := []struct {
		name string
		dst  *uint32
	}{
		{"skeleton_key", &m.SkeletonKey},
		{"joint_count", &m.JointCount},
		{"elements_count", &m.ElementsCount},
		{"elements_offset", &m.ElementsOffset},
		{"material_count", &m.MaterialCount},
		{"material_offset", &m.MaterialOffset},
	}
	for _, f := range header {
		v, err := d.r.uint32()
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", f.name)
		}
		*f.dst = v
	}
	for i := range m.Bounds {
		v, err := d.r.float32()
		if err != nil {
			return nil, errors.Wrapf(err, "reading bounds[%d]", i)
		}
		m.Bounds[i] = v
	}

	base, err := d.tableBase()
	if err != nil {
		return nil, errors.Wrap(err, "locating element table")
	}
	if err := d.r.seek(base); err != nil {
		return nil, errors.Wrapf(err, "seeking to element table at 0x%x", base)
	}
	d.log.Debug("element table located",
		zap.Int64("base", base),
		zap.Uint32("count", m.ElementsCount))

	// The count is untrusted; let the stream length bound the preallocation.
	capHint := int64(0)
	if end, err := d.r.size(); err == nil && end > base {
		capHint = min(int64(m.ElementsCount), (end-base)/ElementSize)
	}
	m.Elements = make([]Element, 0, capHint)
	for i := uint32(0); i < m.ElementsCount; i++ {
		e, err := d.element()
		if err != nil {
			return nil, errors.Wrapf(err, "element %d", i)
		}
		m.Elements = append(m.Elements, e)
	}
	return m, nil
}

// tableBase computes the absolute start of the element table from the
// locator fields at tableLocatorPos. The cursor is restored afterwards.
// The result is not checked against the stream length; a bad base surfaces
// as a structural failure when elements are read.
func (d *decoder) tableBase() (int64, error) {
	saved, err := d.r.tell()
	if err != nil {
		return 0, err
	}
	if err := d.r.seek(tableLocatorPos); err != nil {
		return 0, err
	}
	if _, err := d.r.uint32(); err != nil {
		return 0, err
	}
	dpos, err := d.r.tell()
	if err != nil {
		return 0, err
	}
	pointer, err := d.r.int32()
	if err != nil {
		return 0, err
	}
	if err := d.r.seek(saved); err != nil {
		return 0, err
	}
	return dpos + int64(pointer) + 8, nil
}

// TotalFaces returns the summed face count of all elements.
func (m *Model) TotalFaces() int {
	total := 0
	for _, e := range m.Elements {
		if e.NumFaces > 0 {
			total += int(e.NumFaces)
		}
	}
	return total
}

// TotalVertices returns the summed vertex count of all elements.
func (m *Model) TotalVertices() int {
	total := 0
	for _, e := range m.Elements {
		if e.NumVct > 0 {
			total += int(e.NumVct)
		}
	}
	return total
}

// MaterialNames returns the distinct resolved material names in element order.
func (m *Model) MaterialNames() []string {
	var names []string
	seen := make(map[string]bool)
	for i := range m.Elements {
		name := m.Elements[i].MaterialName
		if name == nil || seen[*name] {
			continue
		}
		seen[*name] = true
		names = append(names, *name)
	}
	return names
}
