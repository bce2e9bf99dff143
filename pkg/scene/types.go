// Package scene implements the NOODLES component registry: a
// heterogeneous, strongly-typed store of scene components keyed by
// noodleid.ID, with referential-integrity checks, a name index, a
// reverse-reference index for delete-time checks, and a deterministic
// dependency-ordered snapshot.
package scene

import "github.com/noodles-go/noodles/pkg/noodleid"

// MethodArg describes one positional argument accepted by a Method or
// Signal.
type MethodArg struct {
	Name       string `cbor:"name"`
	Doc        string `cbor:"doc,omitempty"`
	EditorHint string `cbor:"editor_hint,omitempty"`
}

// Method is the RPC-entry-point component kind.
type Method struct {
	Name      string      `cbor:"name"`
	Doc       string      `cbor:"doc,omitempty"`
	ArgDoc    []MethodArg `cbor:"arg_doc,omitempty"`
	ReturnDoc string      `cbor:"return_doc,omitempty"`
}

// Signal is the server-originated-event component kind.
type Signal struct {
	Name   string      `cbor:"name"`
	Doc    string      `cbor:"doc,omitempty"`
	ArgDoc []MethodArg `cbor:"arg_doc,omitempty"`
}

// RenderRepresentation attaches geometry + instancing to an Entity.
type RenderRepresentation struct {
	Geometry  noodleid.ID `cbor:"mesh"`
	Instances []float32   `cbor:"instances,omitempty"` // flattened 4x4s, optional
}

// TextRepresentation renders billboard/flat text on an Entity.
type TextRepresentation struct {
	Text   string  `cbor:"text"`
	Font   string  `cbor:"font,omitempty"`
	Height float32 `cbor:"height,omitempty"`
}

// WebRepresentation embeds a web view on an Entity.
type WebRepresentation struct {
	Source string  `cbor:"source"`
	Height float32 `cbor:"height,omitempty"`
	Width  float32 `cbor:"width,omitempty"`
}

// Entity is the scene-graph node component kind.
type Entity struct {
	Parent       *noodleid.ID          `cbor:"parent,omitempty"`
	Transform    *[16]float32          `cbor:"transform,omitempty"`
	RenderRep    *RenderRepresentation `cbor:"render_rep,omitempty"`
	TextRep      *TextRepresentation   `cbor:"text_rep,omitempty"`
	WebRep       *WebRepresentation    `cbor:"web_rep,omitempty"`
	Lights       []noodleid.ID         `cbor:"lights,omitempty"`
	Tables       []noodleid.ID         `cbor:"tables,omitempty"`
	MethodsList  []noodleid.ID         `cbor:"methods_list,omitempty"`
	SignalsList  []noodleid.ID         `cbor:"signals_list,omitempty"`
	Visible      *bool                 `cbor:"visible,omitempty"`
	BoundingBox  *[6]float32           `cbor:"influence_aabb,omitempty"` // min xyz, max xyz
}

// Plot is a data-visualization component kind.
type Plot struct {
	Table       noodleid.ID   `cbor:"table"`
	SimplePlot  string        `cbor:"simple_plot,omitempty"`
	URLPlot     string        `cbor:"url_plot,omitempty"`
	MethodsList []noodleid.ID `cbor:"methods_list,omitempty"`
	SignalsList []noodleid.ID `cbor:"signals_list,omitempty"`
}

// Buffer holds raw bytes, either inline or referenced by URI; the URI
// form is the hook pkg/byteserver serves.
type Buffer struct {
	Size        uint64 `cbor:"size"`
	InlineBytes []byte `cbor:"inline_bytes,omitempty"`
	URIBytes    string `cbor:"uri_bytes,omitempty"`
}

// BufferViewType enumerates the use of a BufferView.
type BufferViewType uint8

const (
	BufferViewUnknown BufferViewType = iota
	BufferViewGeometry
	BufferViewImage
)

// BufferView is a typed byte-range slice over a Buffer.
type BufferView struct {
	SourceBuffer noodleid.ID    `cbor:"source_buffer"`
	Type         BufferViewType `cbor:"type"`
	Offset       uint64         `cbor:"offset"`
	Length       uint64         `cbor:"length"`
}

// AlphaMode enumerates Material transparency handling.
type AlphaMode uint8

const (
	AlphaOpaque AlphaMode = iota
	AlphaMask
	AlphaBlend
)

// Material is the PBR surface-parameter component kind.
type Material struct {
	BaseColor       [4]float32   `cbor:"color"`
	Metallic        float32      `cbor:"metallic"`
	Roughness       float32      `cbor:"roughness"`
	BaseColorTex    *noodleid.ID `cbor:"base_color_texture,omitempty"`
	MetalRoughTex   *noodleid.ID `cbor:"metal_rough_texture,omitempty"`
	DoubleSided     bool         `cbor:"double_sided"`
	AlphaMode       AlphaMode    `cbor:"alpha_mode"`
	AlphaCutoff     float32      `cbor:"alpha_cutoff,omitempty"`
}

// Image sources pixel data from either a BufferView or a URI.
type Image struct {
	BufferSource *noodleid.ID `cbor:"buffer_source,omitempty"`
	URISource    string       `cbor:"uri_source,omitempty"`
}

// Texture wraps an Image with optional sampling parameters.
type Texture struct {
	Image   noodleid.ID  `cbor:"image"`
	Sampler *noodleid.ID `cbor:"sampler,omitempty"`
}

// FilterMode enumerates Sampler min/mag filtering.
type FilterMode uint8

const (
	FilterNearest FilterMode = iota
	FilterLinear
)

// WrapMode enumerates Sampler S/T wrap behavior.
type WrapMode uint8

const (
	WrapRepeat WrapMode = iota
	WrapClampToEdge
	WrapMirroredRepeat
)

// Sampler is the texture-filtering parameter component kind.
type Sampler struct {
	MagFilter FilterMode `cbor:"mag_filter"`
	MinFilter FilterMode `cbor:"min_filter"`
	WrapS     WrapMode   `cbor:"wrap_s"`
	WrapT     WrapMode   `cbor:"wrap_t"`
}

// LightKind enumerates the Light variant.
type LightKind uint8

const (
	LightPoint LightKind = iota
	LightSpot
	LightDirectional
)

// Light is the illumination-source component kind. Only
// the fields relevant to Kind are meaningful; others are ignored.
type Light struct {
	Color       [3]float32 `cbor:"color"`
	Intensity   float32    `cbor:"intensity"`
	Kind        LightKind  `cbor:"type"`
	Range       float32    `cbor:"range,omitempty"`       // point/spot
	InnerConeRad float32   `cbor:"inner_cone_rad,omitempty"` // spot
	OuterConeRad float32   `cbor:"outer_cone_rad,omitempty"` // spot
}

// GeometryFormat enumerates an Attribute's storage format.
type GeometryFormat uint8

const (
	FormatU8 GeometryFormat = iota
	FormatU16
	FormatU32
	FormatF32
	FormatVec2
	FormatVec3
	FormatVec4
)

// AttributeSemantic enumerates the meaning of a vertex Attribute.
type AttributeSemantic uint8

const (
	SemanticPosition AttributeSemantic = iota
	SemanticNormal
	SemanticTangent
	SemanticTexture
	SemanticColor
)

// Attribute describes one vertex attribute stream within a Patch.
type Attribute struct {
	View       noodleid.ID       `cbor:"view"`
	Semantic   AttributeSemantic `cbor:"semantic"`
	Channel    uint8             `cbor:"channel,omitempty"`
	Offset     uint32            `cbor:"offset"`
	Stride     uint32            `cbor:"stride"`
	Format     GeometryFormat    `cbor:"format"`
	Minimum    []float32         `cbor:"minimum_value,omitempty"`
	Maximum    []float32         `cbor:"maximum_value,omitempty"`
	Normalized bool              `cbor:"normalized,omitempty"`
}

// IndexType enumerates a Patch's primitive topology.
type IndexType uint8

const (
	IndexTriangles IndexType = iota
	IndexTriangleStrip
	IndexLines
	IndexPoints
)

// Patch is one draw call's worth of geometry.
type Patch struct {
	Attributes  []Attribute  `cbor:"attributes"`
	Indices     *noodleid.ID `cbor:"indices,omitempty"`
	VertexCount uint32       `cbor:"vertex_count"`
	Type        IndexType    `cbor:"type"`
	Material    noodleid.ID  `cbor:"material"`
}

// Geometry is an ordered list of draw-call Patches.
type Geometry struct {
	Patches []Patch `cbor:"patches"`
}

// ColumnType enumerates a TableColumnInfo's storage type.
type ColumnType uint8

const (
	ColumnText ColumnType = iota
	ColumnReal
	ColumnInteger
)

// TableColumnInfo describes one Table column.
type TableColumnInfo struct {
	Name string     `cbor:"name"`
	Type ColumnType `cbor:"type"`
}

// Table is the tabular-data component kind. Row storage
// itself is owned by the component's delegate (pkg/delegate), not by this
// struct.
type Table struct {
	Meta        string            `cbor:"meta,omitempty"`
	Columns     []TableColumnInfo `cbor:"columns,omitempty"`
	MethodsList []noodleid.ID     `cbor:"methods_list,omitempty"`
	SignalsList []noodleid.ID     `cbor:"signals_list,omitempty"`
}
