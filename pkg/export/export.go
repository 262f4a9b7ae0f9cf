// Package export projects decoded MDL models into a serialization-friendly
// form and writes them as JSON or YAML.
package export

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/chewxy/math32"
	xenc "golang.org/x/text/encoding"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/mdlkit/pkg/encoding"
	mdlmath "github.com/Faultbox/mdlkit/pkg/math"
	"github.com/Faultbox/mdlkit/pkg/mdl"
)

// Model is the exported form of an mdl.Model.
type Model struct {
	SkeletonKey uint32     `json:"skeleton_key" yaml:"skeleton_key"`
	JointCount  uint32     `json:"joint_count" yaml:"joint_count"`
	Elements    []Element  `json:"elements" yaml:"elements"`
	Bounds      [4]float32 `json:"bounds" yaml:"bounds,flow"`
}

// Element is the exported form of an mdl.Element. Several fields keep
// historical names and reinterpret raw record fields as unsigned values.
type Element struct {
	ElemSize      uint32 `json:"elem_size" yaml:"elem_size"`
	Unk0          uint32 `json:"unk0" yaml:"unk0"`
	NameHash      uint32 `json:"name_hash" yaml:"name_hash"`
	PrimitiveType uint32 `json:"primitive_type" yaml:"primitive_type"`
	MatIndex      uint32 `json:"mat_index" yaml:"mat_index"`
	Flags         uint32 `json:"flags" yaml:"flags"`
	StreamOfs     uint32 `json:"stream_ofs" yaml:"stream_ofs"`
	IndexOfs      uint32 `json:"index_ofs" yaml:"index_ofs"`
	VertexOfs     uint32 `json:"vertex_ofs" yaml:"vertex_ofs"`
	Mesh          *Mesh  `json:"mesh" yaml:"mesh"`
}

// Mesh holds the geometry of an element that has both faces and vertices.
type Mesh struct {
	NumFaces     uint32       `json:"num_faces" yaml:"num_faces"`
	NumVct       uint32       `json:"num_vct" yaml:"num_vct"`
	VertexStride uint32       `json:"vertex_stride" yaml:"vertex_stride"`
	MaterialName *string      `json:"material_name" yaml:"material_name"`
	Positions    [][3]float32 `json:"positions,omitempty" yaml:"positions,omitempty,flow"`
	Indices      []uint16     `json:"indices,omitempty" yaml:"indices,omitempty,flow"`
	Min          *[3]float32  `json:"min,omitempty" yaml:"min,omitempty,flow"`
	Max          *[3]float32  `json:"max,omitempty" yaml:"max,omitempty,flow"`
}

// Options controls what FromModel includes.
type Options struct {
	// NameCharset converts material names to UTF-8. Nil passes them through.
	NameCharset      xenc.Encoding
	IncludePositions bool
	IncludeIndices   bool
}

// DefaultOptions includes all geometry and leaves names unconverted.
func DefaultOptions() Options {
	return Options{IncludePositions: true, IncludeIndices: true}
}

// FromModel builds the exported form of m.
func FromModel(m *mdl.Model, opts Options) *Model {
	out := &Model{
		SkeletonKey: m.SkeletonKey,
		JointCount:  m.JointCount,
		Bounds:      finite4(m.Bounds),
		Elements:    make([]Element, 0, len(m.Elements)),
	}
	for i := range m.Elements {
		out.Elements = append(out.Elements, FromElement(&m.Elements[i], opts))
	}
	return out
}

// FromElement builds the exported form of e.
func FromElement(e *mdl.Element, opts Options) Element {
	out := Element{
		ElemSize:      uint32(e.NumFaces),
		Unk0:          uint32(e.FOffset),
		NameHash:      uint32(e.NumVct),
		PrimitiveType: uint32(e.VertexStride),
		MatIndex:      uint32(e.VOffset),
		Flags:         e.Flags,
		StreamOfs:     e.StreamOfs,
		IndexOfs:      e.MOffset1,
		VertexOfs:     e.VertexOfs,
	}
	if !e.HasMesh() {
		return out
	}

	mesh := &Mesh{
		NumFaces:     uint32(e.NumFaces),
		NumVct:       uint32(e.NumVct),
		VertexStride: uint32(e.VertexStride),
	}
	if e.MaterialName != nil {
		name := encoding.ToUTF8(opts.NameCharset, []byte(*e.MaterialName))
		mesh.MaterialName = &name
	}

	positions, ok := Positions(e)
	if ok {
		points := make([]mdlmath.Vec3, len(positions))
		for i, p := range positions {
			points[i] = mdlmath.FromArray(p)
		}
		if box, ok := mdlmath.BoundsOf(points); ok {
			lo, hi := box.Min.Array(), box.Max.Array()
			mesh.Min, mesh.Max = &lo, &hi
		}
		if opts.IncludePositions {
			for i := range positions {
				positions[i] = finite3(positions[i])
			}
			mesh.Positions = positions
		}
	}
	if opts.IncludeIndices {
		if indices, ok := Indices(e); ok {
			mesh.Indices = indices
		}
	}
	out.Mesh = mesh
	return out
}

// Indices decodes the index buffer as big-endian uint16 values.
// ok is false when the buffer is absent.
func Indices(e *mdl.Element) ([]uint16, bool) {
	if e.Indices == nil {
		return nil, false
	}
	out := make([]uint16, len(e.Indices)/2)
	for i := range out {
		out[i] = binary.BigEndian.Uint16(e.Indices[i*2:])
	}
	return out, true
}

// Positions reads the leading three big-endian float32 values of every
// vertex. ok is false when the vertex buffer is absent, the stride is below
// 12 bytes, or the buffer is shorter than NumVct*VertexStride.
func Positions(e *mdl.Element) ([][3]float32, bool) {
	if e.Vertices == nil || e.VertexStride < 12 || e.NumVct <= 0 {
		return nil, false
	}
	stride := int(e.VertexStride)
	count := int(e.NumVct)
	if len(e.Vertices) < count*stride {
		return nil, false
	}
	out := make([][3]float32, count)
	for i := range out {
		v := e.Vertices[i*stride:]
		out[i] = [3]float32{
			math.Float32frombits(binary.BigEndian.Uint32(v[0:])),
			math.Float32frombits(binary.BigEndian.Uint32(v[4:])),
			math.Float32frombits(binary.BigEndian.Uint32(v[8:])),
		}
	}
	return out, true
}

// JSON has no encoding for NaN or infinities; they are exported as zero.
func finite(f float32) float32 {
	if math32.IsNaN(f) || math32.IsInf(f, 0) {
		return 0
	}
	return f
}

func finite3(v [3]float32) [3]float32 {
	return [3]float32{finite(v[0]), finite(v[1]), finite(v[2])}
}

func finite4(v [4]float32) [4]float32 {
	return [4]float32{finite(v[0]), finite(v[1]), finite(v[2]), finite(v[3])}
}

// Format names accepted by Write.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// WriteJSON encodes m as JSON.
func WriteJSON(w io.Writer, m *Model, indent bool) error {
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(m)
}

// WriteYAML encodes m as YAML.
func WriteYAML(w io.Writer, m *Model) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return err
	}
	return enc.Close()
}

// Write encodes m in the named format.
func Write(w io.Writer, m *Model, format string, indent bool) error {
	switch format {
	case FormatJSON, "":
		return WriteJSON(w, m, indent)
	case FormatYAML, "yml":
		return WriteYAML(w, m)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}
