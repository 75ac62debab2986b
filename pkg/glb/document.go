package glb

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Document is the subset of the glTF JSON that texture handling needs.
// Fields not listed here stay untouched in Container.JSON.
type Document struct {
	Asset       Asset        `json:"asset"`
	Buffers     []Buffer     `json:"buffers,omitempty"`
	BufferViews []BufferView `json:"bufferViews,omitempty"`
	Images      []Image      `json:"images,omitempty"`
	Textures    []Texture    `json:"textures,omitempty"`
	Materials   []Material   `json:"materials,omitempty"`
}

// Asset holds glTF asset metadata.
type Asset struct {
	Version    string `json:"version"`
	MinVersion string `json:"minVersion,omitempty"`
	Generator  string `json:"generator,omitempty"`
}

// Buffer is a glTF buffer. In a GLB, buffer 0 without a URI is the BIN chunk.
type Buffer struct {
	ByteLength int    `json:"byteLength"`
	URI        string `json:"uri,omitempty"`
	Name       string `json:"name,omitempty"`
}

// BufferView is a contiguous byte range of a buffer.
type BufferView struct {
	Buffer     int    `json:"buffer"`
	ByteOffset int    `json:"byteOffset,omitempty"`
	ByteLength int    `json:"byteLength"`
	ByteStride *int   `json:"byteStride,omitempty"`
	Target     *int   `json:"target,omitempty"`
	Name       string `json:"name,omitempty"`
}

// End returns the offset one past the last byte of the view.
func (v BufferView) End() int {
	return v.ByteOffset + v.ByteLength
}

// Overlaps reports whether two non-empty views on the same buffer share bytes.
func (v BufferView) Overlaps(o BufferView) bool {
	if v.Buffer != o.Buffer || v.ByteLength == 0 || o.ByteLength == 0 {
		return false
	}
	return v.ByteOffset < o.End() && o.ByteOffset < v.End()
}

// Image is an embedded or external raster asset.
type Image struct {
	Name       string `json:"name,omitempty"`
	MimeType   string `json:"mimeType,omitempty"`
	BufferView *int   `json:"bufferView,omitempty"`
	URI        string `json:"uri,omitempty"`
}

// Texture binds an image to a sampler.
type Texture struct {
	Name       string                     `json:"name,omitempty"`
	Sampler    *int                       `json:"sampler,omitempty"`
	Source     *int                       `json:"source,omitempty"`
	Extensions map[string]json.RawMessage `json:"extensions,omitempty"`
}

// sourceExtensions redirect a texture to an image in another encoding.
var sourceExtensions = []string{
	"EXT_texture_webp",
	"KHR_texture_basisu",
	"MSFT_texture_dds",
}

// ImageIndex returns the image the texture samples. The core source wins;
// otherwise the first texture-source extension that names one is used.
func (t Texture) ImageIndex() (int, bool) {
	if t.Source != nil {
		return *t.Source, true
	}
	for _, name := range sourceExtensions {
		raw, ok := t.Extensions[name]
		if !ok {
			continue
		}
		var ext struct {
			Source *int `json:"source"`
		}
		if err := json.Unmarshal(raw, &ext); err == nil && ext.Source != nil {
			return *ext.Source, true
		}
	}
	return 0, false
}

// TextureInfo references a texture from a material slot.
type TextureInfo struct {
	Index    int `json:"index"`
	TexCoord int `json:"texCoord,omitempty"`
}

// PBRMetallicRoughness holds the metallic-roughness material model.
type PBRMetallicRoughness struct {
	BaseColorTexture         *TextureInfo `json:"baseColorTexture,omitempty"`
	MetallicRoughnessTexture *TextureInfo `json:"metallicRoughnessTexture,omitempty"`
}

// Material is a glTF material with its five texture slots.
type Material struct {
	Name                 string                `json:"name,omitempty"`
	PBRMetallicRoughness *PBRMetallicRoughness `json:"pbrMetallicRoughness,omitempty"`
	NormalTexture        *TextureInfo          `json:"normalTexture,omitempty"`
	OcclusionTexture     *TextureInfo          `json:"occlusionTexture,omitempty"`
	EmissiveTexture      *TextureInfo          `json:"emissiveTexture,omitempty"`
}

// decodeDocument decodes the JSON chunk. Trailing space or NUL padding is
// ignored.
func decodeDocument(data []byte) (*Document, error) {
	body := bytes.TrimSpace(bytes.TrimRight(data, " \x00"))
	if len(body) == 0 || body[0] != '{' {
		return nil, fmt.Errorf("%w: JSON chunk is not an object", ErrMalformedContainer)
	}
	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: decoding JSON chunk: %v", ErrMalformedContainer, err)
	}
	return &doc, nil
}
