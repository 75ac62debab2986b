package glb

import (
	"bytes"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Editor rewrites individual fields of the JSON chunk in place. Every byte
// of the document that is not edited is preserved.
type Editor struct {
	doc []byte
	src *Document
}

// Edit applies fn to the container's metadata and refreshes Doc once all
// changes are made. On error the container is left unchanged.
func (c *Container) Edit(fn func(e *Editor) error) error {
	e := &Editor{
		doc: bytes.TrimRight(c.JSON, " \x00"),
		src: c.Doc,
	}
	if err := fn(e); err != nil {
		return err
	}
	doc, err := decodeDocument(e.doc)
	if err != nil {
		return fmt.Errorf("re-decoding edited document: %w", err)
	}
	c.JSON = e.doc
	c.Doc = doc
	return nil
}

// SetBufferView sets the byte range of buffer view i. Fields that already
// hold the requested value are not touched.
func (e *Editor) SetBufferView(i, byteOffset, byteLength int) error {
	if i < 0 || i >= len(e.src.BufferViews) {
		return fmt.Errorf("%w: buffer view %d, document has %d", ErrOutOfRange, i, len(e.src.BufferViews))
	}
	cur := e.src.BufferViews[i]
	if cur.ByteOffset != byteOffset {
		if err := e.set(fmt.Sprintf("bufferViews.%d.byteOffset", i), byteOffset); err != nil {
			return err
		}
	}
	if cur.ByteLength != byteLength {
		if err := e.set(fmt.Sprintf("bufferViews.%d.byteLength", i), byteLength); err != nil {
			return err
		}
	}
	return nil
}

// SetBufferLength sets the byteLength of buffer i.
func (e *Editor) SetBufferLength(i, byteLength int) error {
	if i < 0 || i >= len(e.src.Buffers) {
		return fmt.Errorf("%w: buffer %d, document has %d", ErrOutOfRange, i, len(e.src.Buffers))
	}
	if e.src.Buffers[i].ByteLength == byteLength {
		return nil
	}
	return e.set(fmt.Sprintf("buffers.%d.byteLength", i), byteLength)
}

func (e *Editor) set(path string, value int) error {
	doc, err := sjson.SetBytes(e.doc, path, value)
	if err != nil {
		return fmt.Errorf("setting %s: %w", path, err)
	}
	e.doc = doc
	return nil
}

// Get looks up a raw metadata value by gjson path, e.g. "extensionsUsed".
func (c *Container) Get(path string) gjson.Result {
	return gjson.GetBytes(c.JSON, path)
}
