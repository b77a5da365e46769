package process

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Transliterator maps text to its closest ASCII rendering.
type Transliterator interface {
	ToASCII(s string) string
}

// ASCIIFolder strips combining marks and folds common typographic and Greek
// characters to ASCII. Characters without a known rendering pass through.
type ASCIIFolder struct{}

var asciiFolds = strings.NewReplacer(
	"−", "-", "–", "-", "—", "--", "‐", "-", "‑", "-",
	"“", `"`, "”", `"`, "„", `"`, "‘", "'", "’", "'", "´", "'",
	"«", "<<", "»", ">>", "×", "x", "·", "*", "…", "...",
	"≤", "<=", "≥", ">=", "°", "deg", "º", "o", "˚", "",
	"ß", "ss", "æ", "ae", "Æ", "AE", "œ", "oe", "Œ", "OE",
	"ø", "o", "Ø", "O", "ł", "l", "Ł", "L", "đ", "d", "Đ", "D", "ı", "i",
	"α", "a", "β", "b", "γ", "g", "δ", "d", "ε", "e", "ζ", "z", "η", "e",
	"θ", "th", "ι", "i", "κ", "k", "λ", "l", "μ", "m", "µ", "u", "ν", "n",
	"ξ", "x", "π", "p", "ρ", "r", "σ", "s", "ς", "s", "τ", "t", "υ", "u",
	"φ", "ph", "χ", "kh", "ψ", "ps", "ω", "o",
	"Γ", "G", "Δ", "D", "Θ", "Th", "Λ", "L", "Ξ", "X", "Π", "P", "Σ", "S",
	"Φ", "Ph", "Ψ", "Ps", "Ω", "O", "Ω", "O",
)

// ToASCII implements Transliterator.
func (ASCIIFolder) ToASCII(s string) string {
	if isASCII(s) {
		return s
	}
	strip := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(strip, s)
	if err != nil {
		out = s
	}
	return asciiFolds.Replace(out)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
