// Package chem provides the periodic table and a composition parser for
// chemical formulas found in materials science text.
package chem

import "strings"

// symbols lists the 118 elements in atomic number order.
var symbols = []string{
	"H", "He", "Li", "Be", "B", "C", "N", "O", "F", "Ne", "Na", "Mg", "Al", "Si", "P", "S", "Cl", "Ar", "K",
	"Ca", "Sc", "Ti", "V", "Cr", "Mn", "Fe", "Co", "Ni", "Cu", "Zn", "Ga", "Ge", "As", "Se", "Br", "Kr",
	"Rb", "Sr", "Y", "Zr", "Nb", "Mo", "Tc", "Ru", "Rh", "Pd", "Ag", "Cd", "In", "Sn", "Sb", "Te", "I",
	"Xe", "Cs", "Ba", "La", "Ce", "Pr", "Nd", "Pm", "Sm", "Eu", "Gd", "Tb", "Dy", "Ho", "Er", "Tm", "Yb",
	"Lu", "Hf", "Ta", "W", "Re", "Os", "Ir", "Pt", "Au", "Hg", "Tl", "Pb", "Bi", "Po", "At", "Rn", "Fr",
	"Ra", "Ac", "Th", "Pa", "U", "Np", "Pu", "Am", "Cm", "Bk", "Cf", "Es", "Fm", "Md", "No", "Lr", "Rf",
	"Db", "Sg", "Bh", "Hs", "Mt", "Ds", "Rg", "Cn", "Nh", "Fl", "Mc", "Lv", "Ts", "Og",
}

// names is aligned with symbols.
var names = []string{
	"hydrogen", "helium", "lithium", "beryllium", "boron", "carbon", "nitrogen", "oxygen", "fluorine",
	"neon", "sodium", "magnesium", "aluminium", "silicon", "phosphorus", "sulfur", "chlorine", "argon",
	"potassium", "calcium", "scandium", "titanium", "vanadium", "chromium", "manganese", "iron",
	"cobalt", "nickel", "copper", "zinc", "gallium", "germanium", "arsenic", "selenium", "bromine",
	"krypton", "rubidium", "strontium", "yttrium", "zirconium", "niobium", "molybdenum", "technetium",
	"ruthenium", "rhodium", "palladium", "silver", "cadmium", "indium", "tin", "antimony", "tellurium",
	"iodine", "xenon", "cesium", "barium", "lanthanum", "cerium", "praseodymium", "neodymium",
	"promethium", "samarium", "europium", "gadolinium", "terbium", "dysprosium", "holmium", "erbium",
	"thulium", "ytterbium", "lutetium", "hafnium", "tantalum", "tungsten", "rhenium", "osmium",
	"iridium", "platinum", "gold", "mercury", "thallium", "lead", "bismuth", "polonium", "astatine",
	"radon", "francium", "radium", "actinium", "thorium", "protactinium", "uranium", "neptunium",
	"plutonium", "americium", "curium", "berkelium", "californium", "einsteinium", "fermium",
	"mendelevium", "nobelium", "lawrencium", "rutherfordium", "dubnium", "seaborgium", "bohrium",
	"hassium", "meitnerium", "darmstadtium", "roentgenium", "copernicium", "nihonium", "flerovium",
	"moscovium", "livermorium", "tennessine", "oganesson",
}

var (
	symbolSet    = make(map[string]struct{}, len(symbols))
	nameToSymbol = make(map[string]string, 2*len(names))
	symbolToName = make(map[string]string, len(symbols))
)

func init() {
	for i, sym := range symbols {
		symbolSet[sym] = struct{}{}
		symbolToName[sym] = names[i]
		nameToSymbol[names[i]] = sym
		nameToSymbol[Capitalize(names[i])] = sym
	}
}

// IsSymbol reports whether s is a canonical element symbol (case-sensitive).
func IsSymbol(s string) bool {
	_, ok := symbolSet[s]
	return ok
}

// SymbolForName returns the symbol for an element name written either in
// lowercase ("iron") or capitalized ("Iron").
func SymbolForName(name string) (string, bool) {
	sym, ok := nameToSymbol[name]
	return sym, ok
}

// NameForSymbol returns the lowercase English name of a symbol.
func NameForSymbol(sym string) (string, bool) {
	name, ok := symbolToName[sym]
	return name, ok
}

// Symbols returns a copy of all element symbols in atomic number order.
func Symbols() []string {
	out := make([]string, len(symbols))
	copy(out, symbols)
	return out
}

// Names returns a copy of all lowercase element names in atomic number order.
func Names() []string {
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// Capitalize upper-cases the first letter of an ASCII name.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
