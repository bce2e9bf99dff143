package scene

import "github.com/noodles-go/noodles/pkg/noodleid"

// referencer is implemented by every component payload type and reports
// every noodleid.ID it references, for the reverse-reference index and
// forward dangling-reference validation.
type referencer interface {
	refs() []noodleid.ID
}

func appendIf(ids []noodleid.ID, id noodleid.ID) []noodleid.ID {
	if !id.IsNull() {
		return append(ids, id)
	}
	return ids
}

func (m Method) refs() []noodleid.ID { return nil }

func (s Signal) refs() []noodleid.ID { return nil }

func (e Entity) refs() []noodleid.ID {
	var out []noodleid.ID
	if e.Parent != nil {
		out = appendIf(out, *e.Parent)
	}
	if e.RenderRep != nil {
		out = appendIf(out, e.RenderRep.Geometry)
	}
	out = append(out, e.Lights...)
	out = append(out, e.Tables...)
	out = append(out, e.MethodsList...)
	out = append(out, e.SignalsList...)
	return out
}

func (p Plot) refs() []noodleid.ID {
	out := appendIf(nil, p.Table)
	out = append(out, p.MethodsList...)
	out = append(out, p.SignalsList...)
	return out
}

func (b Buffer) refs() []noodleid.ID { return nil }

func (bv BufferView) refs() []noodleid.ID {
	return appendIf(nil, bv.SourceBuffer)
}

func (mat Material) refs() []noodleid.ID {
	var out []noodleid.ID
	if mat.BaseColorTex != nil {
		out = appendIf(out, *mat.BaseColorTex)
	}
	if mat.MetalRoughTex != nil {
		out = appendIf(out, *mat.MetalRoughTex)
	}
	return out
}

func (img Image) refs() []noodleid.ID {
	var out []noodleid.ID
	if img.BufferSource != nil {
		out = appendIf(out, *img.BufferSource)
	}
	return out
}

func (tex Texture) refs() []noodleid.ID {
	out := appendIf(nil, tex.Image)
	if tex.Sampler != nil {
		out = appendIf(out, *tex.Sampler)
	}
	return out
}

func (s Sampler) refs() []noodleid.ID { return nil }

func (l Light) refs() []noodleid.ID { return nil }

func (g Geometry) refs() []noodleid.ID {
	var out []noodleid.ID
	for _, patch := range g.Patches {
		for _, attr := range patch.Attributes {
			out = appendIf(out, attr.View)
		}
		if patch.Indices != nil {
			out = appendIf(out, *patch.Indices)
		}
		out = appendIf(out, patch.Material)
	}
	return out
}

func (t Table) refs() []noodleid.ID {
	var out []noodleid.ID
	out = append(out, t.MethodsList...)
	out = append(out, t.SignalsList...)
	return out
}
