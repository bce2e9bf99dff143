package wire

import "github.com/noodles-go/noodles/pkg/noodleid"

// IDWire is the wire representation of a noodleid.ID: a CBOR map with the
// three canonical fields rather than the Go struct's field names, so the
// codec never depends on noodleid's internal layout.
type IDWire struct {
	Kind       uint8  `cbor:"kind"`
	Slot       uint32 `cbor:"slot"`
	Generation uint32 `cbor:"generation"`
}

// ToWire converts a noodleid.ID to its wire form.
func ToWire(id noodleid.ID) IDWire {
	return IDWire{Kind: uint8(id.Kind), Slot: id.Slot, Generation: id.Generation}
}

// FromWire converts a wire ID back to a noodleid.ID.
func (w IDWire) FromWire() noodleid.ID {
	return noodleid.ID{Kind: noodleid.Kind(w.Kind), Slot: w.Slot, Generation: w.Generation}
}

// ContextWire identifies the invocation target of a method or signal:
// attached to an entity, a table, a plot, or (if all three are nil) the
// document itself.
type ContextWire struct {
	Entity *IDWire `cbor:"entity,omitempty"`
	Table  *IDWire `cbor:"table,omitempty"`
	Plot   *IDWire `cbor:"plot,omitempty"`
}

// IntroMessagePayload is the tag-0 client→server handshake frame: the
// only acceptable frame in the Accepted state.
type IntroMessagePayload struct {
	ClientName string `cbor:"client_name"`
}

// InvokeMethodPayload is the tag-1 client→server RPC request.
type InvokeMethodPayload struct {
	Method   IDWire       `cbor:"method"`
	Context  *ContextWire `cbor:"context,omitempty"`
	InvokeID string       `cbor:"invoke_id"`
	Args     []any        `cbor:"args,omitempty"`
}

// MethodExceptionWire is the error form of a MethodReply.
type MethodExceptionWire struct {
	Code    uint16 `cbor:"code"`
	Message string `cbor:"message"`
	Data    any    `cbor:"data,omitempty"`
}

// MethodReplyPayload is the tag-34 targeted reply to InvokeMethod,
// correlated by InvokeID.
type MethodReplyPayload struct {
	InvokeID        string               `cbor:"invoke_id"`
	Result          any                  `cbor:"result,omitempty"`
	MethodException *MethodExceptionWire `cbor:"method_exception,omitempty"`
}

// SignalInvokePayload is the tag-33 broadcast emitted when a handler
// calls invoke_signal.
type SignalInvokePayload struct {
	Signal  IDWire       `cbor:"signal"`
	Context *ContextWire `cbor:"context,omitempty"`
	Args    []any        `cbor:"args,omitempty"`
}

// DocumentUpdatePayload carries the document-level (global-context)
// methods and signals lists (tag 31).
type DocumentUpdatePayload struct {
	MethodsList []IDWire `cbor:"methods_list,omitempty"`
	SignalsList []IDWire `cbor:"signals_list,omitempty"`
}

// DocumentResetPayload is the empty tag-32 payload instructing a client
// to discard all local state before a fresh snapshot follows.
type DocumentResetPayload struct{}

// InitDonePayload is the empty tag-35 payload marking the end of the
// initial snapshot a newly Introduced client receives.
type InitDonePayload struct{}

// DeletePayload is the common shape of every *Delete message: just the ID
// being removed.
type DeletePayload struct {
	ID IDWire `cbor:"id"`
}

// MethodCreatePayload is the tag-0 S→C message.
type MethodCreatePayload struct {
	ID   IDWire `cbor:"id"`
	Name string `cbor:"name"`
	Doc  string `cbor:"doc,omitempty"`
	// ArgDoc/ReturnDoc reuse scene.MethodArg's field names through the
	// shared cbor tags; kept inline here rather than embedding scene
	// types so pkg/wire has no import-time dependency on pkg/scene's
	// validation logic, only its field shapes.
	ArgDoc    []ArgDocWire `cbor:"arg_doc,omitempty"`
	ReturnDoc string       `cbor:"return_doc,omitempty"`
}

// ArgDocWire mirrors scene.MethodArg on the wire.
type ArgDocWire struct {
	Name       string `cbor:"name"`
	Doc        string `cbor:"doc,omitempty"`
	EditorHint string `cbor:"editor_hint,omitempty"`
}

// SignalCreatePayload is the tag-2 S→C message.
type SignalCreatePayload struct {
	ID     IDWire       `cbor:"id"`
	Name   string       `cbor:"name"`
	Doc    string       `cbor:"doc,omitempty"`
	ArgDoc []ArgDocWire `cbor:"arg_doc,omitempty"`
}

// RenderRepresentationWire mirrors scene.RenderRepresentation.
type RenderRepresentationWire struct {
	Geometry  IDWire    `cbor:"mesh"`
	Instances []float32 `cbor:"instances,omitempty"`
}

// TextRepresentationWire mirrors scene.TextRepresentation.
type TextRepresentationWire struct {
	Text   string  `cbor:"text"`
	Font   string  `cbor:"font,omitempty"`
	Height float32 `cbor:"height,omitempty"`
}

// WebRepresentationWire mirrors scene.WebRepresentation.
type WebRepresentationWire struct {
	Source string  `cbor:"source"`
	Height float32 `cbor:"height,omitempty"`
	Width  float32 `cbor:"width,omitempty"`
}

// EntityCreatePayload is the tag-4 S→C message; EntityUpdate (tag 5)
// reuses the same shape, ID included (see UpdateMessage).
type EntityCreatePayload struct {
	ID          IDWire                    `cbor:"id"`
	Parent      *IDWire                   `cbor:"parent,omitempty"`
	Transform   *[16]float32              `cbor:"transform,omitempty"`
	RenderRep   *RenderRepresentationWire `cbor:"render_rep,omitempty"`
	TextRep     *TextRepresentationWire   `cbor:"text_rep,omitempty"`
	WebRep      *WebRepresentationWire    `cbor:"web_rep,omitempty"`
	Lights      []IDWire                  `cbor:"lights,omitempty"`
	Tables      []IDWire                  `cbor:"tables,omitempty"`
	MethodsList []IDWire                  `cbor:"methods_list,omitempty"`
	SignalsList []IDWire                  `cbor:"signals_list,omitempty"`
	Visible     *bool                     `cbor:"visible,omitempty"`
	BoundingBox *[6]float32               `cbor:"influence_aabb,omitempty"`
}

// PlotCreatePayload is the tag-7 S→C message.
type PlotCreatePayload struct {
	ID          IDWire   `cbor:"id"`
	Table       IDWire   `cbor:"table"`
	SimplePlot  string   `cbor:"simple_plot,omitempty"`
	URLPlot     string   `cbor:"url_plot,omitempty"`
	MethodsList []IDWire `cbor:"methods_list,omitempty"`
	SignalsList []IDWire `cbor:"signals_list,omitempty"`
}

// BufferCreatePayload is the tag-10 S→C message.
type BufferCreatePayload struct {
	ID          IDWire `cbor:"id"`
	Size        uint64 `cbor:"size"`
	InlineBytes []byte `cbor:"inline_bytes,omitempty"`
	URIBytes    string `cbor:"uri_bytes,omitempty"`
}

// BufferViewCreatePayload is the tag-12 S→C message.
type BufferViewCreatePayload struct {
	ID           IDWire `cbor:"id"`
	SourceBuffer IDWire `cbor:"source_buffer"`
	Type         uint8  `cbor:"type"`
	Offset       uint64 `cbor:"offset"`
	Length       uint64 `cbor:"length"`
}

// MaterialCreatePayload is the tag-14 S→C message.
type MaterialCreatePayload struct {
	ID            IDWire     `cbor:"id"`
	Color         [4]float32 `cbor:"color"`
	Metallic      float32    `cbor:"metallic"`
	Roughness     float32    `cbor:"roughness"`
	BaseColorTex  *IDWire    `cbor:"base_color_texture,omitempty"`
	MetalRoughTex *IDWire    `cbor:"metal_rough_texture,omitempty"`
	DoubleSided   bool       `cbor:"double_sided"`
	AlphaMode     uint8      `cbor:"alpha_mode"`
	AlphaCutoff   float32    `cbor:"alpha_cutoff,omitempty"`
}

// ImageCreatePayload is the tag-17 S→C message.
type ImageCreatePayload struct {
	ID           IDWire  `cbor:"id"`
	BufferSource *IDWire `cbor:"buffer_source,omitempty"`
	URISource    string  `cbor:"uri_source,omitempty"`
}

// TextureCreatePayload is the tag-19 S→C message.
type TextureCreatePayload struct {
	ID      IDWire  `cbor:"id"`
	Image   IDWire  `cbor:"image"`
	Sampler *IDWire `cbor:"sampler,omitempty"`
}

// SamplerCreatePayload is the tag-21 S→C message.
type SamplerCreatePayload struct {
	ID        IDWire `cbor:"id"`
	MagFilter uint8  `cbor:"mag_filter"`
	MinFilter uint8  `cbor:"min_filter"`
	WrapS     uint8  `cbor:"wrap_s"`
	WrapT     uint8  `cbor:"wrap_t"`
}

// LightCreatePayload is the tag-23 S→C message.
type LightCreatePayload struct {
	ID           IDWire     `cbor:"id"`
	Color        [3]float32 `cbor:"color"`
	Intensity    float32    `cbor:"intensity"`
	Type         uint8      `cbor:"type"`
	Range        float32    `cbor:"range,omitempty"`
	InnerConeRad float32    `cbor:"inner_cone_rad,omitempty"`
	OuterConeRad float32    `cbor:"outer_cone_rad,omitempty"`
}

// AttributeWire mirrors scene.Attribute.
type AttributeWire struct {
	View       IDWire    `cbor:"view"`
	Semantic   uint8     `cbor:"semantic"`
	Channel    uint8     `cbor:"channel,omitempty"`
	Offset     uint32    `cbor:"offset"`
	Stride     uint32    `cbor:"stride"`
	Format     uint8     `cbor:"format"`
	Minimum    []float32 `cbor:"minimum_value,omitempty"`
	Maximum    []float32 `cbor:"maximum_value,omitempty"`
	Normalized bool      `cbor:"normalized,omitempty"`
}

// PatchWire mirrors scene.Patch.
type PatchWire struct {
	Attributes  []AttributeWire `cbor:"attributes"`
	Indices     *IDWire         `cbor:"indices,omitempty"`
	VertexCount uint32          `cbor:"vertex_count"`
	Type        uint8           `cbor:"type"`
	Material    IDWire          `cbor:"material"`
}

// GeometryCreatePayload is the tag-26 S→C message.
type GeometryCreatePayload struct {
	ID      IDWire      `cbor:"id"`
	Patches []PatchWire `cbor:"patches"`
}

// TableColumnInfoWire mirrors scene.TableColumnInfo.
type TableColumnInfoWire struct {
	Name string `cbor:"name"`
	Type uint8  `cbor:"type"`
}

// TableCreatePayload is the tag-28 S→C message.
type TableCreatePayload struct {
	ID          IDWire                `cbor:"id"`
	Meta        string                `cbor:"meta,omitempty"`
	Columns     []TableColumnInfoWire `cbor:"columns,omitempty"`
	MethodsList []IDWire              `cbor:"methods_list,omitempty"`
	SignalsList []IDWire              `cbor:"signals_list,omitempty"`
}

// TableUpdatePayload is the tag-29 S→C message. It carries either a
// component-field change (Meta/Columns/MethodsList/SignalsList, mirroring
// TableCreatePayload) or a row-data delta produced by the table's
// delegate — the two never overlap in one message, since row mutation
// never changes the column schema.
type TableUpdatePayload struct {
	ID          IDWire                `cbor:"id"`
	Meta        string                `cbor:"meta,omitempty"`
	Columns     []TableColumnInfoWire `cbor:"columns,omitempty"`
	MethodsList []IDWire              `cbor:"methods_list,omitempty"`
	SignalsList []IDWire              `cbor:"signals_list,omitempty"`

	KeysInserted []any   `cbor:"keys_inserted,omitempty"`
	RowsInserted [][]any `cbor:"rows_inserted,omitempty"`
	KeysUpdated  []any   `cbor:"keys_updated,omitempty"`
	RowsUpdated  [][]any `cbor:"rows_updated,omitempty"`
	KeysRemoved  []any   `cbor:"keys_removed,omitempty"`
	Cleared      bool    `cbor:"cleared,omitempty"`

	Selection     string `cbor:"selection,omitempty"`
	SelectionKeys []any  `cbor:"selection_keys,omitempty"`
}
