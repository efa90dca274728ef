package kardex

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizarBusqueda prepara un texto para búsqueda: minúsculas y sin
// diacríticos, de modo que "Jeringa" encuentre "jeringa" y "anulación"
// encuentre "ANULACION". Se aplica tanto al término buscado como a las
// columnas normalizadas que se guardan al escribir.
func NormalizarBusqueda(s string) string {
	lowered := strings.ToLower(strings.TrimSpace(s))
	folded, _, err := transform.String(foldTransformer, lowered)
	if err != nil {
		return lowered
	}
	return folded
}
