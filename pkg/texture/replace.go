package texture

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/glbtex/pkg/glb"
)

// Lookup provides the replacement bytes for a manifest record. It returns
// an error wrapping ErrReplacementFileMissing when no file is available.
type Lookup interface {
	Read(rec Record) ([]byte, error)
}

// FileLookup reads replacement files from disk. When Dir is set, the file
// with the recorded base name inside Dir wins; the recorded path is the
// fallback. Textures can then be copied to a new directory and edited there
// while the originals still exist.
type FileLookup struct {
	Dir string
}

// Read implements Lookup.
func (l FileLookup) Read(rec Record) ([]byte, error) {
	var candidates []string
	if l.Dir != "" {
		candidates = append(candidates, filepath.Join(l.Dir, filepath.Base(rec.ExtractedPath)))
	}
	if rec.ExtractedPath != "" && (len(candidates) == 0 || candidates[0] != filepath.Clean(rec.ExtractedPath)) {
		candidates = append(candidates, rec.ExtractedPath)
	}

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %v", ErrReplacementFileMissing, err)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrReplacementFileMissing, rec.ExtractedPath)
}

// Report summarises a replacement run by image index.
type Report struct {
	Replaced  []int
	Missing   []int
	Unchanged []int
}

// Replace returns a copy of orig in which every image listed in manifest is
// replaced by the bytes lookup provides. Records are applied in manifest
// order, each against the container produced by the previous one.
//
// Missing replacement files are logged and skipped. A record whose image no
// longer exists, or whose buffer view overlaps another, fails with
// ErrInconsistentBufferLayout and no container is returned.
func Replace(orig *glb.Container, manifest []Record, lookup Lookup, opts ...Option) (*glb.Container, *Report, error) {
	o := newOptions(opts)
	report := &Report{}
	c, err := orig.Clone()
	if err != nil {
		return nil, report, err
	}

	for _, rec := range manifest {
		if rec.Index < 0 || rec.Index >= len(c.Doc.Images) {
			return nil, report, fmt.Errorf("%w: manifest references image %d, container has %d images",
				ErrInconsistentBufferLayout, rec.Index, len(c.Doc.Images))
		}

		data, err := lookup.Read(rec)
		if errors.Is(err, ErrReplacementFileMissing) {
			o.log.Warn("texture file not found, leaving image unchanged",
				zap.Int("index", rec.Index), zap.String("path", rec.ExtractedPath))
			report.Missing = append(report.Missing, rec.Index)
			continue
		}
		if err != nil {
			return nil, report, fmt.Errorf("reading replacement for image %d: %w", rec.Index, err)
		}

		if o.skipUnchanged && rec.Hash != "" && HashBytes(data) == rec.Hash {
			o.log.Debug("texture unchanged, skipping", zap.Int("index", rec.Index))
			report.Unchanged = append(report.Unchanged, rec.Index)
			continue
		}

		checkFormat(o.log, c.Doc.Images[rec.Index], rec.Index, data)

		next, err := ReplaceImage(c, rec.Index, data)
		if err != nil {
			return nil, report, err
		}
		c = next
		report.Replaced = append(report.Replaced, rec.Index)

		o.log.Info("replaced texture",
			zap.Int("index", rec.Index),
			zap.String("file", filepath.Base(rec.ExtractedPath)),
			zap.Int("bytes", len(data)))
	}

	return c, report, nil
}

// ReplaceImage returns a new container in which image i holds data padded
// with zeros to a multiple of 4 bytes. Every other buffer view of the same
// buffer starting after the edited range is shifted by the size change, and
// the buffer's byteLength is updated. c is not modified.
func ReplaceImage(c *glb.Container, i int, data []byte) (*glb.Container, error) {
	vi, view, err := c.ImageView(i)
	if err != nil {
		return nil, fmt.Errorf("%w: image %d: %v", ErrInconsistentBufferLayout, i, err)
	}
	start, end := view.ByteOffset, view.End()
	if start < 0 || view.ByteLength < 0 || end > len(c.BIN) {
		return nil, fmt.Errorf("%w: image %d buffer view %d [%d, %d) exceeds %d-byte payload",
			ErrInconsistentBufferLayout, i, vi, start, end, len(c.BIN))
	}

	for oi, other := range c.Doc.BufferViews {
		if oi != vi && view.Overlaps(other) {
			return nil, fmt.Errorf("%w: image %d buffer view %d [%d, %d) overlaps buffer view %d [%d, %d)",
				ErrInconsistentBufferLayout, i, vi, start, end, oi, other.ByteOffset, other.End())
		}
	}

	padded := Pad(data)
	delta := len(padded) - view.ByteLength

	// Everything up to the last byte any view of this buffer addresses, or
	// the declared buffer length if larger, is kept. Only chunk padding
	// beyond that is dropped; it is re-derived on serialization.
	declared := 0
	if view.Buffer < len(c.Doc.Buffers) {
		declared = c.Doc.Buffers[view.Buffer].ByteLength
	}
	keep := max(declared, end)
	for _, other := range c.Doc.BufferViews {
		if other.Buffer == view.Buffer {
			keep = max(keep, other.End())
		}
	}
	tail := min(keep, len(c.BIN))

	bin := make([]byte, 0, start+len(padded)+tail-end)
	bin = append(bin, c.BIN[:start]...)
	bin = append(bin, padded...)
	bin = append(bin, c.BIN[end:tail]...)

	for oi, other := range c.Doc.BufferViews {
		if oi == vi || other.Buffer != view.Buffer {
			continue
		}
		shifted := other.End()
		if other.ByteOffset > start {
			shifted += delta
		}
		if shifted > len(bin) {
			return nil, fmt.Errorf("%w: buffer view %d [%d, %d) lies outside the %d-byte payload",
				ErrInconsistentBufferLayout, oi, other.ByteOffset, other.End(), len(c.BIN))
		}
	}

	next, err := c.WithBIN(bin)
	if err != nil {
		return nil, err
	}

	err = next.Edit(func(e *glb.Editor) error {
		if err := e.SetBufferView(vi, start, len(padded)); err != nil {
			return err
		}
		for oi, other := range c.Doc.BufferViews {
			if oi == vi || other.Buffer != view.Buffer || other.ByteOffset <= start {
				continue
			}
			if err := e.SetBufferView(oi, other.ByteOffset+delta, other.ByteLength); err != nil {
				return err
			}
		}
		if view.Buffer < len(c.Doc.Buffers) {
			return e.SetBufferLength(view.Buffer, max(declared, tail)+delta)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("updating metadata for image %d: %w", i, err)
	}

	return next, nil
}

// Pad returns a copy of data with zeros appended up to a multiple of 4.
func Pad(data []byte) []byte {
	out := make([]byte, len(data)+glb.Padding(len(data)))
	copy(out, data)
	return out
}

// checkFormat warns when a replacement does not look like the image's
// declared MIME type. The bytes are used either way.
func checkFormat(log *zap.Logger, img glb.Image, i int, data []byte) {
	if img.MimeType == "" {
		return
	}
	info, err := Probe(data)
	if err != nil {
		log.Debug("could not probe replacement", zap.Int("index", i), zap.Error(err))
		return
	}
	if !FormatMatchesMIME(info.Format, img.MimeType) {
		log.Warn("replacement format does not match image MIME type",
			zap.Int("index", i),
			zap.String("format", info.Format),
			zap.String("mime_type", img.MimeType))
	}
}
