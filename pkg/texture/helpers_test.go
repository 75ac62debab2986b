package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/Faultbox/glbtex/pkg/glb"
)

type testImage struct {
	name string
	mime string
	data []byte
}

// fill returns n copies of b.
func fill(n int, b byte) []byte {
	return bytes.Repeat([]byte{b}, n)
}

// createTestScene builds a container whose BIN chunk holds a 16-byte mesh
// view, one view per image, then a 12-byte trailing mesh view. Texture i
// samples image i. The container is serialized and re-parsed so BIN carries
// real chunk padding.
func createTestScene(t *testing.T, images []testImage, materials string) *glb.Container {
	t.Helper()

	var bin []byte
	var views, imgs, textures []string

	views = append(views, `{"buffer":0,"byteOffset":0,"byteLength":16}`)
	bin = append(bin, fill(16, 0xEE)...)

	for i, img := range images {
		views = append(views, fmt.Sprintf(`{"buffer":0,"byteOffset":%d,"byteLength":%d}`, len(bin), len(img.data)))
		bin = append(bin, img.data...)

		entry := fmt.Sprintf(`"bufferView":%d`, i+1)
		if img.mime != "" {
			entry += fmt.Sprintf(`,"mimeType":%q`, img.mime)
		}
		if img.name != "" {
			entry += fmt.Sprintf(`,"name":%q`, img.name)
		}
		imgs = append(imgs, "{"+entry+"}")
		textures = append(textures, fmt.Sprintf(`{"source":%d}`, i))
	}

	views = append(views, fmt.Sprintf(`{"buffer":0,"byteOffset":%d,"byteLength":12}`, len(bin)))
	bin = append(bin, fill(12, 0xDD)...)

	doc := fmt.Sprintf(`{"asset":{"version":"2.0"},"buffers":[{"byteLength":%d}],`+
		`"bufferViews":[%s],"images":[%s],"textures":[%s],"materials":[%s],`+
		`"meshes":[{"name":"untouched"}]}`,
		len(bin), strings.Join(views, ","), strings.Join(imgs, ","), strings.Join(textures, ","), materials)

	return reparse(t, mustNew(t, doc, bin))
}

func mustNew(t *testing.T, doc string, bin []byte) *glb.Container {
	t.Helper()
	c, err := glb.New([]byte(doc), bin)
	if err != nil {
		t.Fatalf("glb.New failed: %v", err)
	}
	return c
}

// reparse serializes c and parses the result.
func reparse(t *testing.T, c *glb.Container) *glb.Container {
	t.Helper()
	data, err := c.Bytes()
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}
	back, err := glb.Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return back
}

// viewData returns the bytes of buffer view i.
func viewData(t *testing.T, c *glb.Container, i int) []byte {
	t.Helper()
	v := c.Doc.BufferViews[i]
	if v.End() > len(c.BIN) {
		t.Fatalf("buffer view %d [%d, %d) exceeds %d-byte payload", i, v.ByteOffset, v.End(), len(c.BIN))
	}
	return c.BIN[v.ByteOffset:v.End()]
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding PNG: %v", err)
	}
	return buf.Bytes()
}

// mapLookup serves replacements from memory.
type mapLookup map[int][]byte

func (m mapLookup) Read(rec Record) ([]byte, error) {
	data, ok := m[rec.Index]
	if !ok {
		return nil, fmt.Errorf("%w: image %d", ErrReplacementFileMissing, rec.Index)
	}
	return data, nil
}
