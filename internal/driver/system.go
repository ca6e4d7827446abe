package driver

import (
	"ffigen/internal/diag"
	"ffigen/internal/source"
	"ffigen/internal/toolchain"
)

// systemReporter reports errors located in system headers as warnings.
// It is installed only when system declarations are left out of the output.
type systemReporter struct {
	next    diag.Reporter
	fs      *source.FileSet
	origins *toolchain.Origins
}

func (r systemReporter) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string, notes []diag.Note) {
	if sev == diag.SevError && r.origins.IsSystem(r.fs.Position(primary).Path) {
		sev = diag.SevWarning
	}
	r.next.Report(code, sev, primary, msg, notes)
}
