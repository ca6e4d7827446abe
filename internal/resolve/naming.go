package resolve

import (
	"fmt"

	"ffigen/internal/registry"
)

// anonName returns the next anonymous name for kind ("struct", "union",
// "enum"). Names come from the layer counter, so the same declaration
// stream always yields the same names; names already visible are skipped.
func anonName(reg *registry.Registry, kind string) string {
	for {
		name := fmt.Sprintf("anon%d_%s", reg.NextAnon(), kind)
		if !reg.Has(name) {
			return name
		}
	}
}
