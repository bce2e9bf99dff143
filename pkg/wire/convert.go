package wire

import (
	"fmt"

	"github.com/noodles-go/noodles/pkg/noodleid"
	"github.com/noodles-go/noodles/pkg/scene"
)

func argDocWire(args []scene.MethodArg) []ArgDocWire {
	if len(args) == 0 {
		return nil
	}
	out := make([]ArgDocWire, len(args))
	for i, a := range args {
		out[i] = ArgDocWire{Name: a.Name, Doc: a.Doc, EditorHint: a.EditorHint}
	}
	return out
}

func idSliceWire(ids []noodleid.ID) []IDWire {
	if len(ids) == 0 {
		return nil
	}
	out := make([]IDWire, len(ids))
	for i, id := range ids {
		out[i] = ToWire(id)
	}
	return out
}

func idPtrWire(id *noodleid.ID) *IDWire {
	if id == nil {
		return nil
	}
	w := ToWire(*id)
	return &w
}

// CreateMessage renders a scene.Entry as its (tag, payload) Create-message
// wire form, for the initial snapshot and for live creation broadcasts.
func CreateMessage(e scene.Entry) (ServerTag, any, error) {
	payload, err := buildPayload(e)
	if err != nil {
		return 0, nil, err
	}
	switch e.ID.Kind {
	case noodleid.KindMethod:
		return TagMethodCreate, payload, nil
	case noodleid.KindSignal:
		return TagSignalCreate, payload, nil
	case noodleid.KindEntity:
		return TagEntityCreate, payload, nil
	case noodleid.KindPlot:
		return TagPlotCreate, payload, nil
	case noodleid.KindBuffer:
		return TagBufferCreate, payload, nil
	case noodleid.KindBufferView:
		return TagBufferViewCreate, payload, nil
	case noodleid.KindMaterial:
		return TagMaterialCreate, payload, nil
	case noodleid.KindImage:
		return TagImageCreate, payload, nil
	case noodleid.KindTexture:
		return TagTextureCreate, payload, nil
	case noodleid.KindSampler:
		return TagSamplerCreate, payload, nil
	case noodleid.KindLight:
		return TagLightCreate, payload, nil
	case noodleid.KindGeometry:
		return TagGeometryCreate, payload, nil
	case noodleid.KindTable:
		return TagTableCreate, payload, nil
	default:
		return 0, nil, fmt.Errorf("wire: unsupported component kind %v", e.ID.Kind)
	}
}

// UpdateMessage renders a scene.Entry as its (tag, payload) Update-message
// wire form. Only Entity, Plot, Material, Light, and Table support
// in-place update on the wire (UpdateTagFor reports which); other kinds
// return an error and must be deleted and recreated instead.
func UpdateMessage(e scene.Entry) (ServerTag, any, error) {
	tag, ok := UpdateTagFor(e.ID.Kind)
	if !ok {
		return 0, nil, fmt.Errorf("wire: kind %v has no update message", e.ID.Kind)
	}
	if e.ID.Kind == noodleid.KindTable {
		tbl, ok := e.Payload.(scene.Table)
		if !ok {
			return 0, nil, fmt.Errorf("wire: component %s is not a Table", e.ID)
		}
		cols := make([]TableColumnInfoWire, len(tbl.Columns))
		for i, c := range tbl.Columns {
			cols[i] = TableColumnInfoWire{Name: c.Name, Type: uint8(c.Type)}
		}
		return tag, TableUpdatePayload{
			ID: ToWire(e.ID), Meta: tbl.Meta, Columns: cols,
			MethodsList: idSliceWire(tbl.MethodsList), SignalsList: idSliceWire(tbl.SignalsList),
		}, nil
	}
	payload, err := buildPayload(e)
	if err != nil {
		return 0, nil, err
	}
	return tag, payload, nil
}

func buildPayload(e scene.Entry) (any, error) {
	switch v := e.Payload.(type) {
	case scene.Method:
		return MethodCreatePayload{
			ID: ToWire(e.ID), Name: v.Name, Doc: v.Doc,
			ArgDoc: argDocWire(v.ArgDoc), ReturnDoc: v.ReturnDoc,
		}, nil
	case scene.Signal:
		return SignalCreatePayload{
			ID: ToWire(e.ID), Name: v.Name, Doc: v.Doc, ArgDoc: argDocWire(v.ArgDoc),
		}, nil
	case scene.Entity:
		var render *RenderRepresentationWire
		if v.RenderRep != nil {
			render = &RenderRepresentationWire{Geometry: ToWire(v.RenderRep.Geometry), Instances: v.RenderRep.Instances}
		}
		var text *TextRepresentationWire
		if v.TextRep != nil {
			text = &TextRepresentationWire{Text: v.TextRep.Text, Font: v.TextRep.Font, Height: v.TextRep.Height}
		}
		var web *WebRepresentationWire
		if v.WebRep != nil {
			web = &WebRepresentationWire{Source: v.WebRep.Source, Height: v.WebRep.Height, Width: v.WebRep.Width}
		}
		return EntityCreatePayload{
			ID: ToWire(e.ID), Parent: idPtrWire(v.Parent), Transform: v.Transform,
			RenderRep: render, TextRep: text, WebRep: web,
			Lights: idSliceWire(v.Lights), Tables: idSliceWire(v.Tables),
			MethodsList: idSliceWire(v.MethodsList), SignalsList: idSliceWire(v.SignalsList),
			Visible: v.Visible, BoundingBox: v.BoundingBox,
		}, nil
	case scene.Plot:
		return PlotCreatePayload{
			ID: ToWire(e.ID), Table: ToWire(v.Table), SimplePlot: v.SimplePlot, URLPlot: v.URLPlot,
			MethodsList: idSliceWire(v.MethodsList), SignalsList: idSliceWire(v.SignalsList),
		}, nil
	case scene.Buffer:
		return BufferCreatePayload{
			ID: ToWire(e.ID), Size: v.Size, InlineBytes: v.InlineBytes, URIBytes: v.URIBytes,
		}, nil
	case scene.BufferView:
		return BufferViewCreatePayload{
			ID: ToWire(e.ID), SourceBuffer: ToWire(v.SourceBuffer), Type: uint8(v.Type),
			Offset: v.Offset, Length: v.Length,
		}, nil
	case scene.Material:
		return MaterialCreatePayload{
			ID: ToWire(e.ID), Color: v.BaseColor, Metallic: v.Metallic, Roughness: v.Roughness,
			BaseColorTex: idPtrWire(v.BaseColorTex), MetalRoughTex: idPtrWire(v.MetalRoughTex),
			DoubleSided: v.DoubleSided, AlphaMode: uint8(v.AlphaMode), AlphaCutoff: v.AlphaCutoff,
		}, nil
	case scene.Image:
		return ImageCreatePayload{
			ID: ToWire(e.ID), BufferSource: idPtrWire(v.BufferSource), URISource: v.URISource,
		}, nil
	case scene.Texture:
		return TextureCreatePayload{
			ID: ToWire(e.ID), Image: ToWire(v.Image), Sampler: idPtrWire(v.Sampler),
		}, nil
	case scene.Sampler:
		return SamplerCreatePayload{
			ID: ToWire(e.ID), MagFilter: uint8(v.MagFilter), MinFilter: uint8(v.MinFilter),
			WrapS: uint8(v.WrapS), WrapT: uint8(v.WrapT),
		}, nil
	case scene.Light:
		return LightCreatePayload{
			ID: ToWire(e.ID), Color: v.Color, Intensity: v.Intensity, Type: uint8(v.Kind),
			Range: v.Range, InnerConeRad: v.InnerConeRad, OuterConeRad: v.OuterConeRad,
		}, nil
	case scene.Geometry:
		patches := make([]PatchWire, len(v.Patches))
		for i, p := range v.Patches {
			attrs := make([]AttributeWire, len(p.Attributes))
			for j, a := range p.Attributes {
				attrs[j] = AttributeWire{
					View: ToWire(a.View), Semantic: uint8(a.Semantic), Channel: a.Channel,
					Offset: a.Offset, Stride: a.Stride, Format: uint8(a.Format),
					Minimum: a.Minimum, Maximum: a.Maximum, Normalized: a.Normalized,
				}
			}
			patches[i] = PatchWire{
				Attributes: attrs, Indices: idPtrWire(p.Indices), VertexCount: p.VertexCount,
				Type: uint8(p.Type), Material: ToWire(p.Material),
			}
		}
		return GeometryCreatePayload{ID: ToWire(e.ID), Patches: patches}, nil
	case scene.Table:
		cols := make([]TableColumnInfoWire, len(v.Columns))
		for i, c := range v.Columns {
			cols[i] = TableColumnInfoWire{Name: c.Name, Type: uint8(c.Type)}
		}
		return TableCreatePayload{
			ID: ToWire(e.ID), Meta: v.Meta, Columns: cols,
			MethodsList: idSliceWire(v.MethodsList), SignalsList: idSliceWire(v.SignalsList),
		}, nil
	default:
		return nil, fmt.Errorf("wire: unsupported component payload type %T", e.Payload)
	}
}

// UpdateTagFor returns the Update tag paired with kind's Create tag, for
// kinds that support in-place update (Entity, Plot, Material, Light,
// Table). Other kinds have no update message; callers must delete and
// recreate.
func UpdateTagFor(kind noodleid.Kind) (ServerTag, bool) {
	switch kind {
	case noodleid.KindEntity:
		return TagEntityUpdate, true
	case noodleid.KindPlot:
		return TagPlotUpdate, true
	case noodleid.KindMaterial:
		return TagMaterialUpdate, true
	case noodleid.KindLight:
		return TagLightUpdate, true
	case noodleid.KindTable:
		return TagTableUpdate, true
	default:
		return 0, false
	}
}

// DeleteTagFor returns the Delete tag for kind.
func DeleteTagFor(kind noodleid.Kind) ServerTag {
	switch kind {
	case noodleid.KindMethod:
		return TagMethodDelete
	case noodleid.KindSignal:
		return TagSignalDelete
	case noodleid.KindEntity:
		return TagEntityDelete
	case noodleid.KindPlot:
		return TagPlotDelete
	case noodleid.KindBuffer:
		return TagBufferDelete
	case noodleid.KindBufferView:
		return TagBufferViewDelete
	case noodleid.KindMaterial:
		return TagMaterialDelete
	case noodleid.KindImage:
		return TagImageDelete
	case noodleid.KindTexture:
		return TagTextureDelete
	case noodleid.KindSampler:
		return TagSamplerDelete
	case noodleid.KindLight:
		return TagLightDelete
	case noodleid.KindGeometry:
		return TagGeometryDelete
	case noodleid.KindTable:
		return TagTableDelete
	default:
		return -1
	}
}
