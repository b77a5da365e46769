package process

import (
	"regexp"
	"strings"

	"github.com/materialsintelligence/matscholar/pkg/matscholar/chem"
)

// NumberPlaceholder replaces numerals when number conversion is enabled.
const NumberPlaceholder = "<nUm>"

// splitUnits are the unit literals that get separated from a leading number,
// e.g. "5mg" -> "5", "mg".
var splitUnits = []string{
	"K", "h", "V", "wt", "wt.", "MHz", "kHz", "GHz", "Hz", "days", "weeks",
	"hours", "minutes", "seconds", "T", "MPa", "GPa", "at.", "mol.",
	"at", "m", "N", "s-1", "vol.", "vol", "eV", "A", "atm", "bar",
	"kOe", "Oe", "h.", "mWcm−2", "keV", "MeV", "meV", "day", "week", "hour",
	"minute", "month", "months", "year", "cycles", "years", "fs", "ns",
	"ps", "rpm", "g", "mg", "mAcm−2", "mA", "mK", "mT", "dB",
	"Ag-1", "mAg-1", "mAg−1", "mAg", "mAh", "mAhg−1", "m-2", "mJ", "kJ",
	"m2g−1", "THz", "KHz", "kJmol−1", "Torr", "gL-1", "Vcm−1", "mVs−1",
	"J", "GJ", "mTorr", "cm2", "mbar", "kbar", "mmol", "mol", "molL−1",
	"MΩ", "Ω", "kΩ", "mΩ", "mgL−1", "moldm−3", "m2", "m3", "cm-1", "cm",
	"Scm−1", "Acm−1", "eV−1cm−2", "cm-2", "sccm", "cm−2eV−1", "cm−3eV−1",
	"kA", "s−1", "emu", "L", "cmHz1", "gmol−1", "kVcm−1", "MPam1",
	"cm2V−1s−1", "Acm−2", "cm−2s−1", "MV", "ionscm−2", "Jcm−2", "ncm−2",
	"Wcm−2", "GWcm−2", "Acm−2K−2", "gcm−3", "cm3g−1", "mgl−1",
	"mgml−1", "mgcm−2", "mΩcm", "cm−2", "ions", "moll−1",
	"nmol", "psi", "mol·L−1", "Jkg−1K−1", "km", "Wm−2", "mass", "mmHg",
	"mmmin−1", "GeV", "m−2", "m−2s−1", "Kmin−1", "gL−1", "ng", "hr", "w",
	"mN", "kN", "Mrad", "rad", "arcsec", "Ag−1", "dpa", "cdm−2",
	"cd", "mcd", "mHz", "m−3", "ppm", "phr", "mL", "ML", "mlmin−1", "MWm−2",
	"Wm−1K−1", "kWh", "Wkg−1", "Jm−3", "m-3", "gl−1", "A−1",
	"Ks−1", "mgdm−3", "mms−1", "ks", "appm", "ºC", "HV", "kDa", "Da", "kG",
	"kGy", "MGy", "Gy", "mGy", "Gbps", "μB", "μL", "μF", "nF", "pF", "mF",
	"Å", "A˚", "μgL−1",
}

var splitUnitSet = toSet(splitUnits)

// punctuation holds ASCII punctuation plus the typographic marks common in
// abstracts.
var punctuation = toSet(append(
	strings.Split(`!"#$%&'()*+,-./:;<=>?@[\]^_`+"`"+`{|}~`, ""),
	"“", "”", "≥", "≤", "×",
))

var (
	elementAlternation = strings.Join(elementsAndNames(), "|")

	// oxidationPattern matches an element followed by a parenthesised valence,
	// e.g. "Fe(II)" or "iron(iii)".
	oxidationPattern = regexp.MustCompile(`^(` + elementAlternation + `)(\((?i:i{1,3}|iv|vi{0,3})\))$`)

	// directionPattern matches an element followed by a crystal index, e.g. "Si(111)".
	directionPattern = regexp.MustCompile(`^(` + elementAlternation + `)(\(\d\d\d\d?\))`)

	// valencePattern flags Roman numeral valence annotations that must not be
	// read as formulas.
	valencePattern = regexp.MustCompile(`(II+|^IV$|^VI$|\(IV\)|\(V?I{0,3}\))`)

	numberPattern        = regexp.MustCompile(`^[+-]?\d*\.?\d+\(?\d*\)?$`)
	numberAndUnitPattern = regexp.MustCompile(`(?s)^([+-]?\d*\.?\d+\(?\d*\)?)([\p{Latin}|Ωμ]+.*)`)
)

// elementsAndNames lists symbols, lowercase names and capitalized names.
func elementsAndNames() []string {
	syms := chem.Symbols()
	names := chem.Names()
	out := make([]string, 0, len(syms)+2*len(names))
	out = append(out, syms...)
	out = append(out, names...)
	for _, n := range names {
		out = append(out, chem.Capitalize(n))
	}
	return out
}

// IsSplitUnit reports whether unit is one of the literals split from numbers.
func IsSplitUnit(unit string) bool {
	_, ok := splitUnitSet[unit]
	return ok
}

// SplitUnits returns a copy of the unit literals.
func SplitUnits() []string {
	out := make([]string, len(splitUnits))
	copy(out, splitUnits)
	return out
}

// IsPunctuation reports whether tok is a punctuation token.
func IsPunctuation(tok string) bool {
	_, ok := punctuation[tok]
	return ok
}

// IsNumber reports whether tok is a plain numeral, ignoring thousands separators.
func IsNumber(tok string) bool {
	return numberPattern.MatchString(strings.ReplaceAll(tok, ",", ""))
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[it] = struct{}{}
	}
	return set
}
