package resolve

import (
	"ffigen/internal/cdecl"
	"ffigen/internal/diag"
	"ffigen/internal/ffierr"
	"ffigen/internal/registry"
)

// Options controls ResolveFile.
type Options struct {
	// Reporter receives one diagnostic per failed declaration. Nil drops them.
	Reporter diag.Reporter
}

// Result summarizes a ResolveFile run.
type Result struct {
	Resolved int
	Failed   int
}

// ResolveFile resolves nodes in order into the top layer of reg. A failed
// declaration is reported and skipped; later declarations still run.
func ResolveFile(reg *registry.Registry, nodes []cdecl.Node, opts Options) Result {
	r := New(reg)
	var res Result
	for _, n := range nodes {
		if _, err := r.ResolveDecl(n); err != nil {
			res.Failed++
			if opts.Reporter != nil {
				ffierr.Report(opts.Reporter, diag.SevError, n.Span(), err)
			}
			continue
		}
		res.Resolved++
	}
	return res
}
