package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// I/O
	IOInfo          Code = 1000
	IOLoadFileError Code = 1001
	IOWriteError    Code = 1002

	// C front end
	SynInfo              Code = 2000
	SynErrorRegion       Code = 2001
	SynUnsupportedTop    Code = 2002
	SynMissingName       Code = 2003
	SynUnsupportedExpr   Code = 2004
	SynSkippedDefinition Code = 2005

	// Resolver
	ResInfo             Code = 3000
	ResUnsupportedShape Code = 3001
	ResUnknownType      Code = 3002
	ResDuplicateDecl    Code = 3003
	ResEnumEval         Code = 3004
	ResTypedefShadow    Code = 3005

	// Simplifier
	SimInfo            Code = 4000
	SimUnknownType     Code = 4001
	SimAggregateByVal  Code = 4002
	SimTypedefCycle    Code = 4003
	SimVariadicDropped Code = 4004

	// Toolchain collaborators
	TlcInfo            Code = 5000
	TlcPreprocess      Code = 5001
	TlcSizeQuery       Code = 5002
	TlcCompilerMissing Code = 5003
	TlcSymbolMissing   Code = 5004

	// Observability
	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:          "Unknown error",
		IOInfo:               "I/O information",
		IOLoadFileError:      "I/O load file error",
		IOWriteError:         "I/O write error",
		SynInfo:              "Front end information",
		SynErrorRegion:       "C syntax error",
		SynUnsupportedTop:    "Unsupported top-level construct",
		SynMissingName:       "Declaration without a name",
		SynUnsupportedExpr:   "Unsupported constant expression",
		SynSkippedDefinition: "Static function definition skipped",
		ResInfo:              "Resolver information",
		ResUnsupportedShape:  "Unsupported declaration shape",
		ResUnknownType:       "Unknown type reference",
		ResDuplicateDecl:     "Duplicate declaration",
		ResEnumEval:          "Enumerator value cannot be evaluated",
		ResTypedefShadow:     "Typedef shadows a builtin type name",
		SimInfo:              "Simplifier information",
		SimUnknownType:       "Unknown type reference in signature",
		SimAggregateByVal:    "Aggregate passed by value",
		SimTypedefCycle:      "Typedef cycle",
		SimVariadicDropped:   "Variadic tail is not marshaled",
		TlcInfo:              "Toolchain information",
		TlcPreprocess:        "Preprocessor failed",
		TlcSizeQuery:         "Size query failed",
		TlcCompilerMissing:   "Compiler not found",
		TlcSymbolMissing:     "Symbol missing from shared library",
		ObsInfo:              "Observability information",
		ObsTimings:           "Pipeline timings",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("RES%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("SIM%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("TLC%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
