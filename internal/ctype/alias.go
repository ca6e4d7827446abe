package ctype

import (
	"sort"
	"strings"
)

// aliases maps every scalar spelling to its canonical tag, for an LP64
// target. Multi-word spellings are stored in the canonical order produced
// by NormalizeSpelling.
var aliases = map[string]Tag{
	"void": TagVoid,

	"char":          TagChar,
	"signed char":   TagSint8,
	"unsigned char": TagUint8,

	"short":              TagSint16,
	"unsigned short":     TagUint16,
	"int":                TagSint32,
	"unsigned int":       TagUint32,
	"long":               TagSint64,
	"unsigned long":      TagUint64,
	"long long":          TagSint64,
	"unsigned long long": TagUint64,

	"float":       TagFloat,
	"double":      TagDouble,
	"long double": TagLongDouble,

	"float _Complex":       TagComplexFloat,
	"double _Complex":      TagComplexDouble,
	"long double _Complex": TagComplexLongDouble,

	"_Bool": TagUint8,
	"bool":  TagUint8,

	"int8_t":   TagSint8,
	"uint8_t":  TagUint8,
	"int16_t":  TagSint16,
	"uint16_t": TagUint16,
	"int32_t":  TagSint32,
	"uint32_t": TagUint32,
	"int64_t":  TagSint64,
	"uint64_t": TagUint64,

	"intmax_t":  TagSint64,
	"uintmax_t": TagUint64,
	"size_t":    TagUint64,
	"ssize_t":   TagSint64,
	"ptrdiff_t": TagSint64,
	"intptr_t":  TagSint64,
	"uintptr_t": TagUint64,
	"off_t":     TagSint64,

	"__int128":          TagSint128,
	"unsigned __int128": TagUint128,
	"__int128_t":        TagSint128,
	"__uint128_t":       TagUint128,

	// va_list is an opaque handle at the FFI boundary; headers typedef it
	// from the builtin.
	"__builtin_va_list": TagPointer,

	"wchar_t":  TagSint32,
	"char16_t": TagUint16,
	"char32_t": TagUint32,
}

// LookupAlias returns the canonical tag for a scalar spelling. The spelling
// may use any word order C allows ("long unsigned int").
func LookupAlias(spelling string) (Tag, bool) {
	tag, ok := aliases[NormalizeSpelling(strings.Fields(spelling))]
	return tag, ok
}

// Aliases returns every known spelling, sorted.
func Aliases() []string {
	out := make([]string, 0, len(aliases))
	for k := range aliases {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// NormalizeSpelling reorders the words of a type specifier list into the
// canonical spelling used as a registry key. Lists that are not a valid
// builtin combination, and single identifiers, are joined unchanged.
func NormalizeSpelling(words []string) string {
	var (
		signed, unsigned, short, complex bool
		longs                           int
		base                            string
		other                           []string
	)
	for _, w := range words {
		switch w {
		case "signed", "__signed", "__signed__":
			signed = true
		case "unsigned":
			unsigned = true
		case "short":
			short = true
		case "long":
			longs++
		case "_Complex", "__complex__", "complex":
			complex = true
		case "int", "char", "float", "double", "void", "_Bool", "__int128":
			if base != "" {
				other = append(other, w)
				continue
			}
			base = w
		case "const", "volatile", "restrict", "__restrict", "__const", "__extension__", "__inline":
			// qualifiers carry no FFI meaning
		default:
			other = append(other, w)
		}
	}
	if len(other) > 0 {
		if base == "" && !signed && !unsigned && !short && longs == 0 && !complex {
			return strings.Join(other, " ")
		}
		return strings.Join(words, " ")
	}

	invalid := func() string { return strings.Join(words, " ") }
	if signed && unsigned {
		return invalid()
	}

	switch base {
	case "char":
		if short || longs > 0 || complex {
			return invalid()
		}
		switch {
		case unsigned:
			return "unsigned char"
		case signed:
			return "signed char"
		}
		return "char"
	case "float":
		if signed || unsigned || short || longs > 0 {
			return invalid()
		}
		if complex {
			return "float _Complex"
		}
		return "float"
	case "double":
		if signed || unsigned || short || longs > 1 {
			return invalid()
		}
		s := "double"
		if longs == 1 {
			s = "long double"
		}
		if complex {
			s += " _Complex"
		}
		return s
	case "__int128":
		if short || longs > 0 || complex {
			return invalid()
		}
		if unsigned {
			return "unsigned __int128"
		}
		return base
	case "void", "_Bool":
		if signed || unsigned || short || longs > 0 || complex {
			return invalid()
		}
		return base
	case "", "int":
		if complex || (short && longs > 0) || longs > 2 {
			return invalid()
		}
		if base == "" && !signed && !unsigned && !short && longs == 0 {
			return invalid()
		}
		var s string
		switch {
		case short:
			s = "short"
		case longs == 1:
			s = "long"
		case longs == 2:
			s = "long long"
		default:
			s = "int"
		}
		if unsigned {
			s = "unsigned " + s
		}
		return s
	}
	return invalid()
}
