package texture

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/glbtex/pkg/glb"
)

// Extract writes every embedded image of c into outputDir, named by scheme,
// then writes the manifest. Images are processed in index order.
//
// When no image is embedded (no images at all, or only external ones) the
// result is empty and neither outputDir nor a manifest is created. A buffer
// view outside the payload aborts extraction; files already written stay in
// place and no manifest is written.
func Extract(c *glb.Container, outputDir string, scheme NamingScheme, opts ...Option) ([]Record, error) {
	o := newOptions(opts)

	roles := NewRoleIndex(c.Doc)
	records := make([]Record, 0, len(c.Doc.Images))

	for i, img := range c.Doc.Images {
		data, err := c.ImageData(i)
		if errors.Is(err, glb.ErrNotEmbedded) {
			o.log.Warn("skipping image without embedded data", zap.Int("index", i), zap.Error(err))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("extracting image %d: %w", i, err)
		}

		mimeType := img.MimeType
		if mimeType == "" {
			if info, err := Probe(data); err == nil {
				mimeType = "image/" + info.Format
			}
		}
		ext := Extension(mimeType)
		if ext == "" {
			ext = "bin"
		}

		if len(records) == 0 {
			if err := os.MkdirAll(outputDir, 0755); err != nil {
				return nil, fmt.Errorf("creating output directory: %w", err)
			}
		}

		role := roles.Role(i)
		path, err := uniquePath(outputDir, FileName(scheme, i, img.Name, role, ext))
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("writing image %d: %w", i, err)
		}

		rec := Record{
			Index:         i,
			MimeType:      mimeType,
			ExtractedPath: path,
			Size:          len(data),
			Hash:          HashBytes(data),
		}
		if img.Name != "" {
			name := img.Name
			rec.OriginalName = &name
		}
		if scheme == NamingRole {
			rec.Role = &role
		}
		records = append(records, rec)

		o.log.Info("saved texture",
			zap.Int("index", i),
			zap.String("file", filepath.Base(path)),
			zap.Int("bytes", len(data)),
			zap.String("role", role))
	}

	if len(records) == 0 {
		o.log.Info("no textures found")
		return nil, nil
	}

	if err := WriteManifest(outputDir, records); err != nil {
		return nil, err
	}
	o.log.Debug("wrote manifest", zap.String("path", ManifestPath(outputDir)), zap.Int("records", len(records)))

	return records, nil
}
