package pipeline

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/liserjrqlxue/AssemblyPipeline/record"
)

// stage status values recorded under results.pipeline.<stage>
const (
	StatusComplete = "complete"
	StatusSkipped  = "skipped"
	StatusFailed   = "failed"
)

// Driver runs Stages one after the other on a single goroutine. Every stage completes,
// including its own parallel work, before the next one starts.
type Driver struct {
	Stages         []Stage
	Checkpoint     Checkpointer
	Logger         *log.Logger
	PreprocessOnly bool

	checkpointErrs []error
}

// Run checkpoints the freshly built context, then runs the stages in order. It stops
// without error after the quality phase when PreprocessOnly is set. A failing stage that
// is not Optional ends the run with a *StageError; the checkpoints already written stay.
func (d *Driver) Run(rc *RunContext) error {
	if d.Logger == nil {
		d.Logger = log.New(os.Stderr, "", log.Ldate|log.Ltime)
	}
	if err := Validate(d.Stages); err != nil {
		return err
	}
	if rc.Results == nil {
		rc.Results = record.New()
	}
	d.checkpointErrs = nil
	d.save(rc, "metadata")
	for _, stage := range d.Stages {
		if d.PreprocessOnly && stage.Phase > Quality {
			d.Logger.Printf("Pre-processing complete, %s stage %s not run", stage.Phase, stage.Name)
			return nil
		}
		if stage.Skip != nil {
			if skip, reason := stage.Skip(rc); skip {
				d.Logger.Printf("Skip %s: %s", stage.Name, reason)
				d.status(rc, stage, StatusSkipped)
				d.save(rc, stage.Name)
				continue
			}
		}

		d.Logger.Printf("Start %s stage %s", stage.Phase, stage.Name)
		start := time.Now()
		if err := stage.Run(rc); err != nil {
			if !stage.Optional {
				return &StageError{Stage: stage.Name, Phase: stage.Phase, Err: err}
			}
			d.Logger.Printf("Optional stage %s failed: %v", stage.Name, err)
			d.status(rc, stage, StatusFailed)
			d.save(rc, stage.Name)
			continue
		}
		d.Logger.Printf("Finish %s, elapsed time: %v", stage.Name, time.Since(start))
		d.status(rc, stage, StatusComplete)
		d.save(rc, stage.Name)
	}
	return nil
}

// CheckpointErrors returns the checkpoint failures of the last Run.
func (d *Driver) CheckpointErrors() []error {
	return d.checkpointErrs
}

func (d *Driver) status(rc *RunContext, stage Stage, status string) {
	if err := rc.Results.SetPath("pipeline."+stage.Name, status); err != nil {
		d.Logger.Printf("record status of %s: %v", stage.Name, err)
	}
}

func (d *Driver) save(rc *RunContext, after string) {
	if d.Checkpoint == nil {
		return
	}
	if err := d.Checkpoint.Save(rc); err != nil {
		err = fmt.Errorf("%w after %s: %v", ErrCheckpointWrite, after, err)
		d.checkpointErrs = append(d.checkpointErrs, err)
		d.Logger.Print(err)
	}
}
