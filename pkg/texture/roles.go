package texture

import (
	"sort"
	"strings"

	"github.com/Faultbox/glbtex/pkg/glb"
)

// Role labels, one per material texture slot.
const (
	RoleBaseColor         = "baseColor"
	RoleMetallicRoughness = "metallicRoughness"
	RoleNormal            = "normal"
	RoleOcclusion         = "occlusion"
	RoleEmissive          = "emissive"
	RoleUnknown           = "unknown"
)

type slot struct {
	role string
	info func(m *glb.Material) *glb.TextureInfo
}

var slots = []slot{
	{RoleBaseColor, func(m *glb.Material) *glb.TextureInfo {
		if m.PBRMetallicRoughness == nil {
			return nil
		}
		return m.PBRMetallicRoughness.BaseColorTexture
	}},
	{RoleMetallicRoughness, func(m *glb.Material) *glb.TextureInfo {
		if m.PBRMetallicRoughness == nil {
			return nil
		}
		return m.PBRMetallicRoughness.MetallicRoughnessTexture
	}},
	{RoleNormal, func(m *glb.Material) *glb.TextureInfo { return m.NormalTexture }},
	{RoleOcclusion, func(m *glb.Material) *glb.TextureInfo { return m.OcclusionTexture }},
	{RoleEmissive, func(m *glb.Material) *glb.TextureInfo { return m.EmissiveTexture }},
}

// RoleIndex maps image indices to the sorted set of roles materials use
// them for.
type RoleIndex map[int][]string

// NewRoleIndex builds the index with one pass over textures and one over
// materials. Texture references that point nowhere are ignored.
func NewRoleIndex(doc *glb.Document) RoleIndex {
	textureImage := make([]int, len(doc.Textures))
	for i, tex := range doc.Textures {
		img, ok := tex.ImageIndex()
		if !ok {
			img = -1
		}
		textureImage[i] = img
	}

	sets := make(map[int]map[string]struct{})
	for mi := range doc.Materials {
		m := &doc.Materials[mi]
		for _, s := range slots {
			info := s.info(m)
			if info == nil || info.Index < 0 || info.Index >= len(textureImage) {
				continue
			}
			img := textureImage[info.Index]
			if img < 0 {
				continue
			}
			if sets[img] == nil {
				sets[img] = make(map[string]struct{})
			}
			sets[img][s.role] = struct{}{}
		}
	}

	idx := make(RoleIndex, len(sets))
	for img, set := range sets {
		roles := make([]string, 0, len(set))
		for r := range set {
			roles = append(roles, r)
		}
		sort.Strings(roles)
		idx[img] = roles
	}
	return idx
}

// Role returns the `_`-joined roles of an image, or RoleUnknown.
func (idx RoleIndex) Role(image int) string {
	roles := idx[image]
	if len(roles) == 0 {
		return RoleUnknown
	}
	return strings.Join(roles, "_")
}

// ResolveRole classifies a single image by the material slots that
// reference it, e.g. "baseColor_normal". It has no side effects.
func ResolveRole(doc *glb.Document, image int) string {
	return NewRoleIndex(doc).Role(image)
}
