package texture

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NamingScheme selects how extracted files are named.
type NamingScheme string

// Naming schemes.
const (
	NamingIndex    NamingScheme = "index"    // texture_<i>.<ext>
	NamingOriginal NamingScheme = "original" // sanitized image name
	NamingRole     NamingScheme = "role"     // <role>_<i>.<ext>
)

// ParseNamingScheme validates a scheme name.
func ParseNamingScheme(s string) (NamingScheme, error) {
	switch scheme := NamingScheme(strings.ToLower(s)); scheme {
	case NamingIndex, NamingOriginal, NamingRole:
		return scheme, nil
	default:
		return "", fmt.Errorf("%w: %q (want index, original or role)", ErrUnknownNamingScheme, s)
	}
}

// Extension derives a file extension from a MIME type's subtype,
// e.g. "image/png" gives "png".
func Extension(mimeType string) string {
	_, sub, ok := strings.Cut(mimeType, "/")
	if !ok {
		return ""
	}
	sub, _, _ = strings.Cut(sub, ";")
	return strings.ToLower(strings.TrimSpace(sub))
}

// SanitizeName keeps letters, digits, spaces, '-' and '_' and trims
// surrounding spaces. Names are NFC-normalised first so that decomposed
// accents survive as single letters.
func SanitizeName(name string) string {
	var b strings.Builder
	for _, r := range norm.NFC.String(name) {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// FileName returns the base file name for image i under the scheme.
func FileName(scheme NamingScheme, i int, name, role, ext string) string {
	fallback := fmt.Sprintf("texture_%d.%s", i, ext)
	switch scheme {
	case NamingOriginal:
		if base := SanitizeName(name); base != "" {
			return base + "." + ext
		}
	case NamingRole:
		if role != "" && role != RoleUnknown {
			return fmt.Sprintf("%s_%d.%s", role, i, ext)
		}
	}
	return fallback
}

// uniquePath joins dir and name, appending _1, _2, ... before the
// extension until the path does not exist yet.
func uniquePath(dir, name string) (string, error) {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	candidate := name
	for n := 1; ; n++ {
		path := filepath.Join(dir, candidate)
		_, err := os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			return path, nil
		}
		if err != nil {
			return "", fmt.Errorf("checking %s: %w", path, err)
		}
		candidate = fmt.Sprintf("%s_%d%s", base, n, ext)
	}
}
