package scene

import (
	"math"

	"github.com/noodles-go/noodles/pkg/ncerr"
)

func finite(f float32) bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}

func finiteAll(fs ...float32) bool {
	for _, f := range fs {
		if !finite(f) {
			return false
		}
	}
	return true
}

// validateFields checks the kind-specific required fields, enum ranges,
// and finite-number constraints a malformed component creation/update
// must be rejected for. Referential validity is checked separately by
// the registry, which has the liveness information this function does
// not.
func validateFields(payload any) error {
	switch v := payload.(type) {
	case Method:
		if v.Name == "" {
			return ncerr.InvalidArgument("method: name is required")
		}
	case Signal:
		if v.Name == "" {
			return ncerr.InvalidArgument("signal: name is required")
		}
	case Entity:
		if v.Transform != nil {
			if !finiteAll((*v.Transform)[:]...) {
				return ncerr.InvalidArgument("entity: transform contains non-finite value")
			}
		}
		if v.BoundingBox != nil {
			if !finiteAll((*v.BoundingBox)[:]...) {
				return ncerr.InvalidArgument("entity: influence_aabb contains non-finite value")
			}
		}
	case Plot:
		if v.SimplePlot == "" && v.URLPlot == "" {
			return ncerr.InvalidArgument("plot: one of simple_plot or url_plot is required")
		}
	case Buffer:
		if len(v.InlineBytes) == 0 && v.URIBytes == "" {
			return ncerr.InvalidArgument("buffer: one of inline_bytes or uri_bytes is required")
		}
		if len(v.InlineBytes) > 0 && v.URIBytes != "" {
			return ncerr.InvalidArgument("buffer: inline_bytes and uri_bytes are mutually exclusive")
		}
	case BufferView:
		if v.Type != BufferViewUnknown && v.Type != BufferViewGeometry && v.Type != BufferViewImage {
			return ncerr.InvalidArgument("bufferview: unknown type %d", v.Type)
		}
		if v.Length == 0 {
			return ncerr.InvalidArgument("bufferview: length must be non-zero")
		}
	case Material:
		if !finiteAll(v.BaseColor[:]...) || !finite(v.Metallic) || !finite(v.Roughness) {
			return ncerr.InvalidArgument("material: non-finite color/metallic/roughness")
		}
		if v.AlphaMode != AlphaOpaque && v.AlphaMode != AlphaMask && v.AlphaMode != AlphaBlend {
			return ncerr.InvalidArgument("material: unknown alpha_mode %d", v.AlphaMode)
		}
	case Image:
		if v.BufferSource == nil && v.URISource == "" {
			return ncerr.InvalidArgument("image: one of buffer_source or uri_source is required")
		}
	case Sampler:
		if v.MagFilter != FilterNearest && v.MagFilter != FilterLinear {
			return ncerr.InvalidArgument("sampler: unknown mag_filter %d", v.MagFilter)
		}
		if v.MinFilter != FilterNearest && v.MinFilter != FilterLinear {
			return ncerr.InvalidArgument("sampler: unknown min_filter %d", v.MinFilter)
		}
	case Light:
		if !finiteAll(v.Color[:]...) || !finite(v.Intensity) {
			return ncerr.InvalidArgument("light: non-finite color/intensity")
		}
		if v.Kind != LightPoint && v.Kind != LightSpot && v.Kind != LightDirectional {
			return ncerr.InvalidArgument("light: unknown type %d", v.Kind)
		}
	case Geometry:
		if len(v.Patches) == 0 {
			return ncerr.InvalidArgument("geometry: at least one patch is required")
		}
		for i, patch := range v.Patches {
			if patch.VertexCount == 0 {
				return ncerr.InvalidArgument("geometry: patch %d has zero vertex_count", i)
			}
			if len(patch.Attributes) == 0 {
				return ncerr.InvalidArgument("geometry: patch %d has no attributes", i)
			}
		}
	case Table:
		for i, col := range v.Columns {
			if col.Name == "" {
				return ncerr.InvalidArgument("table: column %d missing name", i)
			}
		}
	}
	return nil
}
