package sites

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var multiSepRe = regexp.MustCompile(`[\s/]+`)

// stripAccents removes combining marks after NFD decomposition, so IDs from
// differently-encoded source tables (e.g., "São Paulo" study names) collapse
// to the same landscape identifier.
var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeID standardizes a study or site identifier component:
//  1. Trim whitespace
//  2. Strip diacritics
//  3. Replace whitespace and slashes with underscores
func NormalizeID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return ""
	}

	if stripped, _, err := transform.String(stripAccents, id); err == nil {
		id = stripped
	}

	return multiSepRe.ReplaceAllString(id, "_")
}
