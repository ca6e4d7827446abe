// Package diag defines the diagnostic model shared by the front end, the
// resolver, the simplifier and the toolchain collaborators.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) with a stable string form.
//   - Message – human oriented text; keep it short and actionable.
//   - Primary – the source.Span of the offending declaration.
//   - Notes – optional secondary spans, e.g. the earlier definition of a
//     duplicate name.
//
// # Emitting diagnostics
//
// Phases use a diag.Reporter to decouple emission from storage. Build a
// report with ReportError/ReportWarning/ReportInfo, chain WithNote and call
// Emit. BagReporter collects into a Bag, which supports sorting,
// deduplication and merging of per-file bags.
//
// Package diag does no formatting or IO; rendering lives in internal/diagfmt.
package diag
