// Package wire implements the NOODLES tagged-CBOR message codec: a
// top-level CBOR array alternating `tag, payload, tag, payload, ...`,
// encoded/decoded with github.com/fxamacker/cbor/v2, the de facto
// standard Go CBOR implementation.
package wire

// ServerTag identifies a server-to-client message kind.
type ServerTag int

const (
	TagMethodCreate      ServerTag = 0
	TagMethodDelete      ServerTag = 1
	TagSignalCreate      ServerTag = 2
	TagSignalDelete      ServerTag = 3
	TagEntityCreate      ServerTag = 4
	TagEntityUpdate      ServerTag = 5
	TagEntityDelete      ServerTag = 6
	TagPlotCreate        ServerTag = 7
	TagPlotUpdate        ServerTag = 8
	TagPlotDelete        ServerTag = 9
	TagBufferCreate      ServerTag = 10
	TagBufferDelete      ServerTag = 11
	TagBufferViewCreate  ServerTag = 12
	TagBufferViewDelete  ServerTag = 13
	TagMaterialCreate    ServerTag = 14
	TagMaterialUpdate    ServerTag = 15
	TagMaterialDelete    ServerTag = 16
	TagImageCreate       ServerTag = 17
	TagImageDelete       ServerTag = 18
	TagTextureCreate     ServerTag = 19
	TagTextureDelete     ServerTag = 20
	TagSamplerCreate     ServerTag = 21
	TagSamplerDelete     ServerTag = 22
	TagLightCreate       ServerTag = 23
	TagLightUpdate       ServerTag = 24
	TagLightDelete       ServerTag = 25
	TagGeometryCreate    ServerTag = 26
	TagGeometryDelete    ServerTag = 27
	TagTableCreate       ServerTag = 28
	TagTableUpdate       ServerTag = 29
	TagTableDelete       ServerTag = 30
	TagDocumentUpdate    ServerTag = 31
	TagDocumentReset     ServerTag = 32
	TagSignalInvoke      ServerTag = 33
	TagMethodReply       ServerTag = 34
	TagInitDone          ServerTag = 35
)

// String returns the canonical message name for a server tag, used in
// logs. An unrecognized value renders as "UnknownServerTag".
func (t ServerTag) String() string {
	switch t {
	case TagMethodCreate:
		return "MethodCreate"
	case TagMethodDelete:
		return "MethodDelete"
	case TagSignalCreate:
		return "SignalCreate"
	case TagSignalDelete:
		return "SignalDelete"
	case TagEntityCreate:
		return "EntityCreate"
	case TagEntityUpdate:
		return "EntityUpdate"
	case TagEntityDelete:
		return "EntityDelete"
	case TagPlotCreate:
		return "PlotCreate"
	case TagPlotUpdate:
		return "PlotUpdate"
	case TagPlotDelete:
		return "PlotDelete"
	case TagBufferCreate:
		return "BufferCreate"
	case TagBufferDelete:
		return "BufferDelete"
	case TagBufferViewCreate:
		return "BufferViewCreate"
	case TagBufferViewDelete:
		return "BufferViewDelete"
	case TagMaterialCreate:
		return "MaterialCreate"
	case TagMaterialUpdate:
		return "MaterialUpdate"
	case TagMaterialDelete:
		return "MaterialDelete"
	case TagImageCreate:
		return "ImageCreate"
	case TagImageDelete:
		return "ImageDelete"
	case TagTextureCreate:
		return "TextureCreate"
	case TagTextureDelete:
		return "TextureDelete"
	case TagSamplerCreate:
		return "SamplerCreate"
	case TagSamplerDelete:
		return "SamplerDelete"
	case TagLightCreate:
		return "LightCreate"
	case TagLightUpdate:
		return "LightUpdate"
	case TagLightDelete:
		return "LightDelete"
	case TagGeometryCreate:
		return "GeometryCreate"
	case TagGeometryDelete:
		return "GeometryDelete"
	case TagTableCreate:
		return "TableCreate"
	case TagTableUpdate:
		return "TableUpdate"
	case TagTableDelete:
		return "TableDelete"
	case TagDocumentUpdate:
		return "DocumentUpdate"
	case TagDocumentReset:
		return "DocumentReset"
	case TagSignalInvoke:
		return "SignalInvoke"
	case TagMethodReply:
		return "MethodReply"
	case TagInitDone:
		return "InitDone"
	default:
		return "UnknownServerTag"
	}
}

// Valid reports whether t is a recognized server tag.
func (t ServerTag) Valid() bool {
	return t >= TagMethodCreate && t <= TagInitDone
}

// ClientTag identifies a client-to-server message kind. Its numbering is
// a distinct namespace from ServerTag: both start at 0.
type ClientTag int

const (
	TagIntroMessage ClientTag = 0
	TagInvokeMethod ClientTag = 1
)

// String returns the canonical message name for a client tag.
func (t ClientTag) String() string {
	switch t {
	case TagIntroMessage:
		return "IntroMessage"
	case TagInvokeMethod:
		return "InvokeMethod"
	default:
		return "UnknownClientTag"
	}
}

// Valid reports whether t is a recognized client tag.
func (t ClientTag) Valid() bool {
	return t == TagIntroMessage || t == TagInvokeMethod
}
