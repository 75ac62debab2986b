package texture

import (
	"errors"
	"os"
	"strings"
	"testing"
)

func TestManifest_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	name := "Wood"
	role := RoleBaseColor
	records := []Record{
		{Index: 0, OriginalName: &name, MimeType: "image/png", ExtractedPath: "/tmp/Wood.png", Role: &role, Size: 10, Hash: HashBytes([]byte("wood"))},
		{Index: 1, MimeType: "image/jpeg", ExtractedPath: "/tmp/texture_1.jpeg"},
	}

	if err := WriteManifest(dir, records); err != nil {
		t.Fatalf("WriteManifest failed: %v", err)
	}

	raw, err := os.ReadFile(ManifestPath(dir))
	if err != nil {
		t.Fatalf("reading manifest: %v", err)
	}
	if !strings.Contains(string(raw), `"original_name": null`) {
		t.Errorf("expected null original_name in:\n%s", raw)
	}

	got, err := ReadManifest(dir)
	if err != nil {
		t.Fatalf("ReadManifest failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].OriginalName == nil || *got[0].OriginalName != "Wood" {
		t.Errorf("original name lost: %v", got[0].OriginalName)
	}
	if got[0].Role == nil || *got[0].Role != RoleBaseColor {
		t.Errorf("role lost: %v", got[0].Role)
	}
	if got[0].Hash != records[0].Hash || got[0].Size != 10 {
		t.Errorf("size/hash lost: %+v", got[0])
	}
	if got[1].OriginalName != nil || got[1].Role != nil {
		t.Errorf("expected nil name and role, got %+v", got[1])
	}
}

func TestManifest_Empty(t *testing.T) {
	dir := t.TempDir()
	if err := WriteManifest(dir, nil); err != nil {
		t.Fatalf("WriteManifest failed: %v", err)
	}
	raw, _ := os.ReadFile(ManifestPath(dir))
	if strings.TrimSpace(string(raw)) != "[]" {
		t.Errorf("expected empty array, got %q", raw)
	}
}

func TestReadManifest_HandEdited(t *testing.T) {
	dir := t.TempDir()
	content := `[
  // swapped the wood texture
  {
    "index": 2,
    "original_name": "Wood",
    "mime_type": "image/png",
    "extracted_path": "out/Wood.png",
    "role": null, /* role unknown */
  },
]
`
	if err := os.WriteFile(ManifestPath(dir), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}

	records, err := ReadManifest(dir)
	if err != nil {
		t.Fatalf("ReadManifest failed: %v", err)
	}
	if len(records) != 1 || records[0].Index != 2 || records[0].ExtractedPath != "out/Wood.png" {
		t.Errorf("unexpected records %+v", records)
	}
}

func TestReadManifest_Missing(t *testing.T) {
	_, err := ReadManifest(t.TempDir())
	if !errors.Is(err, ErrManifestNotFound) {
		t.Errorf("expected ErrManifestNotFound, got %v", err)
	}
}

func TestReadManifest_Invalid(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(ManifestPath(dir), []byte(`{"index": 0}`), 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	_, err := ReadManifest(dir)
	if err == nil {
		t.Fatal("expected error for non-array manifest")
	}
	if errors.Is(err, ErrManifestNotFound) {
		t.Error("invalid manifest reported as missing")
	}
}

func TestHashBytes(t *testing.T) {
	a := HashBytes([]byte("texture"))
	if len(a) != 64 {
		t.Errorf("expected 64 hex characters, got %d", len(a))
	}
	if a != HashBytes([]byte("texture")) {
		t.Error("hash is not deterministic")
	}
	if a == HashBytes([]byte("texturf")) {
		t.Error("different inputs hash equal")
	}
}
