package texture

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"
	"github.com/zeebo/blake3"
)

// ManifestName is the manifest file written next to extracted textures.
const ManifestName = "texture_mapping.json"

// Record binds one extracted image to the file it was written to.
type Record struct {
	Index         int     `json:"index"`
	OriginalName  *string `json:"original_name"`
	MimeType      string  `json:"mime_type"`
	ExtractedPath string  `json:"extracted_path"`
	Role          *string `json:"role"`
	Size          int     `json:"size,omitempty"`
	Hash          string  `json:"blake3,omitempty"`
}

// ManifestPath returns the manifest location inside dir.
func ManifestPath(dir string) string {
	return filepath.Join(dir, ManifestName)
}

// WriteManifest writes records to dir as an indented JSON array.
func WriteManifest(dir string, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(ManifestPath(dir), data, 0644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// ReadManifest reads the manifest from dir. Comments and trailing commas
// are tolerated so the file can be edited by hand.
func ReadManifest(dir string) ([]Record, error) {
	path := ManifestPath(dir)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrManifestNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var records []Record
	if err := json.Unmarshal(jsonc.ToJSON(data), &records); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return records, nil
}

// HashBytes returns the hex BLAKE3-256 digest of data.
func HashBytes(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
