package ffierr

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"ffigen/internal/diag"
	"ffigen/internal/source"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseLoad       Phase = "load"       // reading headers and writing output
	PhaseParse      Phase = "parse"      // C grammar front end
	PhaseResolve    Phase = "resolve"    // node resolution and registration
	PhaseSimplify   Phase = "simplify"   // signature simplification
	PhasePreprocess Phase = "preprocess" // compiler -E
	PhaseSizeQuery  Phase = "sizeof"     // aggregate size probe
	PhaseRender     Phase = "render"     // binding output
)

// Kind categorizes the error
type Kind string

const (
	KindUnsupportedShape Kind = "unsupported_shape"
	KindUnknownType      Kind = "unknown_type"
	KindDuplicateDecl    Kind = "duplicate_decl"
	KindEnumEval         Kind = "enum_eval"
	KindExternalTool     Kind = "external_tool"
	KindSymbolMissing    Kind = "symbol_missing"
	KindSyntax           Kind = "syntax"
	KindIO               Kind = "io"
)

// Error is the structured error type used throughout the generator.
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Name   string
	Detail string
	Span   source.Span
	// Prev is the earlier conflicting definition for duplicate declarations.
	Prev    source.Span
	HasPrev bool
}

func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Name != "" {
		fmt.Fprintf(&b, " %q", e.Name)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Message is the error text without the phase and kind prefix, for diagnostics.
func (e *Error) Message() string {
	msg := e.Detail
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Name != "" && !strings.Contains(msg, e.Name) {
		msg = fmt.Sprintf("%s: %s", e.Name, msg)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. A template with an empty
// Phase matches any phase.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase != "" && t.Phase != e.Phase {
		return false
	}
	return e.Kind == t.Kind
}

// Code maps the error to its diagnostic code.
func (e *Error) Code() diag.Code {
	switch e.Kind {
	case KindUnsupportedShape:
		return diag.ResUnsupportedShape
	case KindUnknownType:
		if e.Phase == PhaseSimplify {
			return diag.SimUnknownType
		}
		return diag.ResUnknownType
	case KindDuplicateDecl:
		return diag.ResDuplicateDecl
	case KindEnumEval:
		return diag.ResEnumEval
	case KindExternalTool:
		if errors.Is(e.Cause, exec.ErrNotFound) {
			return diag.TlcCompilerMissing
		}
		if e.Phase == PhaseSizeQuery {
			return diag.TlcSizeQuery
		}
		return diag.TlcPreprocess
	case KindSymbolMissing:
		return diag.TlcSymbolMissing
	case KindSyntax:
		return diag.SynErrorRegion
	case KindIO:
		if e.Phase == PhaseRender {
			return diag.IOWriteError
		}
		return diag.IOLoadFileError
	}
	return diag.UnknownCode
}

// Report emits err through r. Classified errors keep their code and spans,
// anything else becomes an unknown-code error at span.
func Report(r diag.Reporter, sev diag.Severity, span source.Span, err error) {
	if r == nil || err == nil {
		return
	}
	var fe *Error
	if !errors.As(err, &fe) {
		diag.NewReportBuilder(r, sev, diag.UnknownCode, span, err.Error()).Emit()
		return
	}
	primary := fe.Span
	if primary == (source.Span{}) {
		primary = span
	}
	b := diag.NewReportBuilder(r, sev, fe.Code(), primary, fe.Message())
	if fe.HasPrev {
		b.WithNote(fe.Prev, "previous definition is here")
	}
	b.Emit()
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Name sets the declaration or type name involved.
func (b *Builder) Name(name string) *Builder {
	b.err.Name = name
	return b
}

// Span sets the location of the offending node.
func (b *Builder) Span(sp source.Span) *Builder {
	b.err.Span = sp
	return b
}

// Prev sets the location of the earlier conflicting definition.
func (b *Builder) Prev(sp source.Span) *Builder {
	b.err.Prev = sp
	b.err.HasPrev = true
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Sentinel templates for errors.Is.
var (
	ErrUnsupportedShape = &Error{Kind: KindUnsupportedShape}
	ErrUnknownType      = &Error{Kind: KindUnknownType}
	ErrDuplicateDecl    = &Error{Kind: KindDuplicateDecl}
	ErrEnumEval         = &Error{Kind: KindEnumEval}
	ErrExternalTool     = &Error{Kind: KindExternalTool}
	ErrSymbolMissing    = &Error{Kind: KindSymbolMissing}
)

// UnsupportedShape creates an unsupported node shape error
func UnsupportedShape(sp source.Span, what string) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindUnsupportedShape,
		Span:   sp,
		Detail: what,
	}
}

// UnknownType creates an unknown type reference error
func UnknownType(phase Phase, sp source.Span, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnknownType,
		Span:   sp,
		Name:   name,
		Detail: fmt.Sprintf("unknown type %q", name),
	}
}

// Duplicate creates a duplicate declaration error carrying both definitions.
func Duplicate(name string, sp, prev source.Span, detail string) *Error {
	return &Error{
		Phase:   PhaseResolve,
		Kind:    KindDuplicateDecl,
		Name:    name,
		Span:    sp,
		Prev:    prev,
		HasPrev: true,
		Detail:  detail,
	}
}

// EnumEval creates an enumerator evaluation error
func EnumEval(sp source.Span, name, detail string) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindEnumEval,
		Name:   name,
		Span:   sp,
		Detail: detail,
	}
}

// SymbolMissing records a function that the shared library does not export.
func SymbolMissing(name, library string) *Error {
	return &Error{
		Phase:  PhaseRender,
		Kind:   KindSymbolMissing,
		Name:   name,
		Detail: fmt.Sprintf("symbol %q not found in %s", name, library),
	}
}

// ExternalTool wraps a failed compiler invocation.
func ExternalTool(phase Phase, tool string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindExternalTool,
		Name:   tool,
		Detail: "external tool failed",
		Cause:  cause,
	}
}
