// Package renderer holds the pieces of the render path the asset layer
// defines: the pipeline-facing description of the packed vertex layout.
// Device, swapchain and frame machinery live with the application.
package renderer

import (
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/crpg/engine/assets"
)

// VertexInputDescription carries everything a graphics pipeline needs
// to consume assets.StaticVertex buffers.
type VertexInputDescription struct {
	Bindings   []vk.VertexInputBindingDescription
	Attributes []vk.VertexInputAttributeDescription
	Flags      vk.PipelineVertexInputStateCreateFlags
}

// StaticVertexInputDescription describes the static mesh vertex layout:
// one binding of stride StaticVertexSize with position, normal and uv
// attributes. Offsets come from the Go struct itself, which is laid out
// exactly like the on-disk record.
func StaticVertexInputDescription() *VertexInputDescription {
	var v assets.StaticVertex

	binding := vk.VertexInputBindingDescription{
		Binding:   0,
		Stride:    uint32(unsafe.Sizeof(v)),
		InputRate: vk.VertexInputRateVertex,
	}

	position := vk.VertexInputAttributeDescription{
		Binding:  0,
		Location: 0,
		Format:   vk.FormatR32g32b32Sfloat,
		Offset:   uint32(unsafe.Offsetof(v.Position)),
	}

	normal := vk.VertexInputAttributeDescription{
		Binding:  0,
		Location: 1,
		Format:   vk.FormatR32g32b32Sfloat,
		Offset:   uint32(unsafe.Offsetof(v.Normal)),
	}

	uv := vk.VertexInputAttributeDescription{
		Binding:  0,
		Location: 2,
		Format:   vk.FormatR32g32Sfloat,
		Offset:   uint32(unsafe.Offsetof(v.UV)),
	}

	tangent := vk.VertexInputAttributeDescription{
		Binding:  0,
		Location: 3,
		Format:   vk.FormatR32g32b32Sfloat,
		Offset:   uint32(unsafe.Offsetof(v.Tangent)),
	}

	return &VertexInputDescription{
		Bindings:   []vk.VertexInputBindingDescription{binding},
		Attributes: []vk.VertexInputAttributeDescription{position, normal, uv, tangent},
		Flags:      0,
	}
}

// VertexInputInfo assembles the pipeline create info for this layout.
func (d *VertexInputDescription) VertexInputInfo() vk.PipelineVertexInputStateCreateInfo {
	return vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   uint32(len(d.Bindings)),
		PVertexBindingDescriptions:      d.Bindings,
		VertexAttributeDescriptionCount: uint32(len(d.Attributes)),
		PVertexAttributeDescriptions:    d.Attributes,
	}
}
