// Package glb reads and writes binary glTF (GLB) containers.
//
// A container is kept as the raw JSON chunk plus the raw BIN chunk. The
// typed Document view is decoded from the JSON chunk and refreshed after
// every edit, so unmodified containers serialize back to the exact input.
package glb

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

const (
	headerSize      = 12
	chunkHeaderSize = 8

	magic          uint32 = 0x46546C67 // "glTF"
	currentVersion uint32 = 2

	chunkJSON uint32 = 0x4E4F534A
	chunkBIN  uint32 = 0x004E4942
)

// GLB format errors.
var (
	ErrMalformedContainer = errors.New("malformed GLB container")
	ErrOutOfRange         = errors.New("buffer view out of range")
	ErrNotEmbedded        = errors.New("image is not embedded in the BIN chunk")
	ErrNoSuchImage        = errors.New("image index out of range")
)

// Header is the fixed 12-byte GLB file header.
type Header struct {
	Magic   uint32
	Version uint32
	Length  uint32
}

type chunk struct {
	Length uint32
	Type   uint32
	Data   []byte
}

// Container is a parsed GLB file.
type Container struct {
	// JSON is the JSON chunk content as stored, including trailing padding.
	JSON []byte
	// BIN is the BIN chunk content as stored, including trailing padding.
	BIN []byte
	// Doc is decoded from JSON. Use Edit to change it.
	Doc *Document

	hasBIN bool
}

// New creates a container from a JSON document and a binary payload.
// A nil bin produces a container without a BIN chunk.
func New(jsonDoc, bin []byte) (*Container, error) {
	doc, err := decodeDocument(jsonDoc)
	if err != nil {
		return nil, err
	}
	return &Container{
		JSON:   bytes.Clone(jsonDoc),
		BIN:    bytes.Clone(bin),
		Doc:    doc,
		hasBIN: bin != nil,
	}, nil
}

// Parse parses a GLB container from raw bytes.
func Parse(data []byte) (*Container, error) {
	if len(data) < headerSize+chunkHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes is too short for a header and JSON chunk", ErrMalformedContainer, len(data))
	}

	var h Header
	if err := binary.Read(bytes.NewReader(data[:headerSize]), binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", ErrMalformedContainer, err)
	}
	if h.Magic != magic {
		return nil, fmt.Errorf("%w: invalid magic 0x%08x", ErrMalformedContainer, h.Magic)
	}
	if h.Version != currentVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrMalformedContainer, h.Version)
	}
	if uint64(h.Length) != uint64(len(data)) {
		return nil, fmt.Errorf("%w: header declares %d bytes, file has %d", ErrMalformedContainer, h.Length, len(data))
	}

	jsonChunk, offset, err := readChunk(data, headerSize)
	if err != nil {
		return nil, err
	}
	if jsonChunk.Type != chunkJSON {
		return nil, fmt.Errorf("%w: first chunk has type 0x%08x, expected JSON", ErrMalformedContainer, jsonChunk.Type)
	}

	c := &Container{JSON: bytes.Clone(jsonChunk.Data)}

	if offset < len(data) {
		next, end, err := readChunk(data, offset)
		if err != nil {
			return nil, err
		}
		if next.Type == chunkBIN {
			c.BIN = bytes.Clone(next.Data)
			c.hasBIN = true
		}
		offset = end
	}

	// Chunks of unknown type may follow; they are skipped.
	for offset < len(data) {
		next, end, err := readChunk(data, offset)
		if err != nil {
			return nil, err
		}
		if next.Type == chunkJSON || next.Type == chunkBIN {
			return nil, fmt.Errorf("%w: unexpected extra chunk 0x%08x at offset %d", ErrMalformedContainer, next.Type, offset)
		}
		offset = end
	}

	doc, err := decodeDocument(c.JSON)
	if err != nil {
		return nil, err
	}
	c.Doc = doc

	return c, nil
}

// readChunk reads the chunk starting at offset and returns it with the
// offset of the following chunk.
func readChunk(data []byte, offset int) (chunk, int, error) {
	if offset+chunkHeaderSize > len(data) {
		return chunk{}, 0, fmt.Errorf("%w: truncated chunk header at offset %d", ErrMalformedContainer, offset)
	}
	c := chunk{
		Length: binary.LittleEndian.Uint32(data[offset:]),
		Type:   binary.LittleEndian.Uint32(data[offset+4:]),
	}
	if c.Length%4 != 0 {
		return chunk{}, 0, fmt.Errorf("%w: chunk at offset %d has unaligned length %d", ErrMalformedContainer, offset, c.Length)
	}
	start := offset + chunkHeaderSize
	end := uint64(start) + uint64(c.Length)
	if end > uint64(len(data)) {
		return chunk{}, 0, fmt.Errorf("%w: chunk at offset %d declares %d bytes, only %d remain",
			ErrMalformedContainer, offset, c.Length, len(data)-start)
	}
	c.Data = data[start:end]
	return c, int(end), nil
}

// ParseFile parses a GLB container from disk.
func ParseFile(path string) (*Container, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading GLB file: %w", err)
	}
	return Parse(data)
}

// Padding returns the number of bytes needed to align n to 4 bytes.
func Padding(n int) int {
	return (4 - n%4) % 4
}

// Bytes serializes the container. JSON is padded with spaces and BIN with
// zeros; chunk and header lengths match the emitted sizes.
func (c *Container) Bytes() ([]byte, error) {
	jsonLen := len(c.JSON) + Padding(len(c.JSON))
	total := uint64(headerSize + chunkHeaderSize + jsonLen)

	writeBIN := c.hasBIN || len(c.BIN) > 0
	binLen := len(c.BIN) + Padding(len(c.BIN))
	if writeBIN {
		total += uint64(chunkHeaderSize + binLen)
	}
	if total > math.MaxUint32 {
		return nil, fmt.Errorf("GLB length overflow: %d bytes", total)
	}

	buf := bytes.NewBuffer(make([]byte, 0, total))
	binary.Write(buf, binary.LittleEndian, Header{Magic: magic, Version: currentVersion, Length: uint32(total)})

	binary.Write(buf, binary.LittleEndian, [2]uint32{uint32(jsonLen), chunkJSON})
	buf.Write(c.JSON)
	buf.Write(bytes.Repeat([]byte{' '}, Padding(len(c.JSON))))

	if writeBIN {
		binary.Write(buf, binary.LittleEndian, [2]uint32{uint32(binLen), chunkBIN})
		buf.Write(c.BIN)
		buf.Write(make([]byte, Padding(len(c.BIN))))
	}

	return buf.Bytes(), nil
}

// WriteTo writes the serialized container to w.
func (c *Container) WriteTo(w io.Writer) (int64, error) {
	data, err := c.Bytes()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// WriteFile serializes the container to path. Nothing is written if
// serialization fails.
func (c *Container) WriteFile(path string) error {
	data, err := c.Bytes()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy of the container. It fails with
// ErrMalformedContainer if JSON no longer decodes.
func (c *Container) Clone() (*Container, error) {
	return c.WithBIN(bytes.Clone(c.BIN))
}

// WithBIN returns a copy of c whose BIN chunk is bin. The JSON chunk and
// document are copied; bin is used as is.
func (c *Container) WithBIN(bin []byte) (*Container, error) {
	doc, err := decodeDocument(c.JSON)
	if err != nil {
		return nil, err
	}
	return &Container{
		JSON:   bytes.Clone(c.JSON),
		BIN:    bin,
		Doc:    doc,
		hasBIN: c.hasBIN || bin != nil,
	}, nil
}

// HasBIN reports whether the container carries a BIN chunk.
func (c *Container) HasBIN() bool {
	return c.hasBIN || len(c.BIN) > 0
}

// ImageView returns the buffer view index and descriptor backing image i.
func (c *Container) ImageView(i int) (int, BufferView, error) {
	if i < 0 || i >= len(c.Doc.Images) {
		return 0, BufferView{}, fmt.Errorf("%w: image %d, container has %d images", ErrNoSuchImage, i, len(c.Doc.Images))
	}
	img := c.Doc.Images[i]
	if img.BufferView == nil {
		return 0, BufferView{}, fmt.Errorf("%w: image %d has no buffer view (uri %q)", ErrNotEmbedded, i, img.URI)
	}
	vi := *img.BufferView
	if vi < 0 || vi >= len(c.Doc.BufferViews) {
		return 0, BufferView{}, fmt.Errorf("%w: image %d references buffer view %d, container has %d",
			ErrOutOfRange, i, vi, len(c.Doc.BufferViews))
	}
	view := c.Doc.BufferViews[vi]
	if view.Buffer != 0 || (len(c.Doc.Buffers) > 0 && c.Doc.Buffers[0].URI != "") {
		return 0, BufferView{}, fmt.Errorf("%w: image %d buffer view %d is on external buffer %d", ErrNotEmbedded, i, vi, view.Buffer)
	}
	return vi, view, nil
}

// ImageData returns the bytes of image i. The returned slice shares memory
// with BIN and has no spare capacity.
func (c *Container) ImageData(i int) ([]byte, error) {
	vi, view, err := c.ImageView(i)
	if err != nil {
		return nil, err
	}
	if view.ByteOffset < 0 || view.ByteLength < 0 || view.End() > len(c.BIN) {
		return nil, fmt.Errorf("%w: image %d buffer view %d [%d, %d) exceeds %d-byte payload",
			ErrOutOfRange, i, vi, view.ByteOffset, view.End(), len(c.BIN))
	}
	return c.BIN[view.ByteOffset:view.End():view.End()], nil
}
