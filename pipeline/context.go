// Package pipeline runs the fixed sequence of assembly pipeline stages over one shared
// RunContext and writes a checkpoint of that context after every stage.
package pipeline

import (
	"runtime"

	"github.com/google/uuid"

	"github.com/liserjrqlxue/AssemblyPipeline/record"
	"github.com/liserjrqlxue/AssemblyPipeline/runMetadata"
)

// RunContext is the state handed from stage to stage. Stages may add to it but never
// drop or rename what earlier stages put there; Results enforces that for nested records.
type RunContext struct {
	RunID      string                `json:"runID"`
	Path       string                `json:"path"`
	Basic      bool                  `json:"basicAssembly"`
	Flowcell   string                `json:"flowcell"`
	Instrument string                `json:"instrument"`
	Threads    int                   `json:"threads"`
	Statistics string                `json:"statistics"`
	Header     runMetadata.Header    `json:"header"`
	Samples    []*runMetadata.Sample `json:"samples"`
	Results    *record.Record        `json:"results"`
}

// Threads resolves the thread budget once: the override when positive, else the core count.
func Threads(override int) int {
	if override > 0 {
		return override
	}
	return runtime.NumCPU()
}

func NewRunContext(meta *runMetadata.Metadata, threads int) *RunContext {
	return &RunContext{
		RunID:      uuid.New().String(),
		Path:       meta.Path,
		Basic:      meta.Basic,
		Flowcell:   meta.Flowcell,
		Instrument: meta.Instrument,
		Threads:    threads,
		Statistics: meta.Stats.Kind.String(),
		Header:     meta.Header,
		Samples:    meta.Samples,
		Results:    record.New(),
	}
}
