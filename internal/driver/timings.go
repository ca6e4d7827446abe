package driver

import (
	"encoding/json"
	"fmt"

	"ffigen/internal/diag"
	"ffigen/internal/observ"
	"ffigen/internal/source"
)

// timingPayload is the JSON note of the OBS6001 diagnostic.
type timingPayload struct {
	Mode    string               `json:"mode"`
	Files   int                  `json:"files"`
	Failed  int                  `json:"failed"`
	Cached  bool                 `json:"size_cache"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases"`
}

func newTimingPayload(mode string, res *Result, cached bool) timingPayload {
	p := timingPayload{Mode: mode, Files: len(res.Files), Cached: cached}
	for _, f := range res.Files {
		if f.Err != nil {
			p.Failed++
		}
	}
	report := res.Timer.Report()
	p.TotalMS, p.Phases = report.TotalMS, report.Phases
	return p
}

// appendTimingDiagnostic adds the payload to bag even when the bag is full:
// timings are requested explicitly and must not be lost to the limit.
func appendTimingDiagnostic(bag *diag.Bag, payload timingPayload) {
	if bag == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	entry := diag.Diagnostic{
		Severity: diag.SevInfo,
		Code:     diag.ObsTimings,
		Message: fmt.Sprintf("timings (%s): %d files, %d failed, total %.2f ms",
			payload.Mode, payload.Files, payload.Failed, payload.TotalMS),
		Notes: []diag.Note{{Span: source.Span{}, Msg: string(data)}},
	}
	if bag.Add(entry) {
		return
	}
	overflow := diag.NewBag(bag.Len() + 1)
	overflow.Add(entry)
	bag.Merge(overflow)
}
