// Package ffierr defines the classified errors produced while turning C
// declarations into FFI signatures.
//
// Every failure carries a Phase (where it happened) and a Kind (what went
// wrong). Callers use errors.Is with a template error, or errors.As to get at
// the spans, and Code to obtain the diagnostic code used in reports.
package ffierr
