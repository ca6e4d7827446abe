package toolchain

import (
	"debug/elf"
	"errors"
	"os"
	"path/filepath"

	"ffigen/internal/ffierr"
)

// ErrNotELF is returned by Symbols for libraries it cannot inspect.
var ErrNotELF = errors.New("not an ELF shared object")

// SymbolSet lists the functions a shared library exports.
type SymbolSet map[string]struct{}

// Has reports whether name is exported.
func (s SymbolSet) Has(name string) bool {
	if s == nil {
		return true
	}
	_, ok := s[name]
	return ok
}

// Symbols reads the dynamic symbol table of library. A nil set means every
// lookup succeeds, which is what callers get for bare sonames like "libm.so.6"
// that are resolved by the loader at run time.
func Symbols(library string) (SymbolSet, error) {
	if library == "" || filepath.Base(library) == library {
		return nil, nil
	}
	f, err := elf.Open(library)
	if err != nil {
		var fe *elf.FormatError
		if errors.As(err, &fe) {
			return nil, ErrNotELF
		}
		if errors.Is(err, os.ErrNotExist) {
			return nil, ffierr.New(ffierr.PhaseLoad, ffierr.KindIO).Name(library).Cause(err).Build()
		}
		return nil, err
	}
	defer func() { _ = f.Close() }()

	syms, err := f.DynamicSymbols()
	if err != nil {
		return nil, err
	}
	set := make(SymbolSet, len(syms))
	for _, s := range syms {
		if s.Section == elf.SHN_UNDEF {
			continue
		}
		if t := elf.ST_TYPE(s.Info); t != elf.STT_FUNC && t != elf.SymType(10) { // 10 == STT_GNU_IFUNC (named constant needs Go 1.22+)
			continue
		}
		set[s.Name] = struct{}{}
	}
	return set, nil
}
