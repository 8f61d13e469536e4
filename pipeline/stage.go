package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

type Phase int

const (
	Preparation Phase = iota
	Quality
	Assembly
	Typing
	Reporting
)

func (p Phase) String() string {
	switch p {
	case Preparation:
		return "preparation"
	case Quality:
		return "quality"
	case Assembly:
		return "assembly"
	case Typing:
		return "typing"
	case Reporting:
		return "reporting"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// StageFunc does the work of one stage. It blocks until the stage is done.
type StageFunc func(rc *RunContext) error

// SkipFunc decides before a stage runs whether it should be skipped, and why.
type SkipFunc func(rc *RunContext) (skip bool, reason string)

// Stage describes one step of the pipeline. A failing Optional stage is logged and the
// run goes on; any other failing stage ends the run.
type Stage struct {
	Name     string
	Phase    Phase
	Run      StageFunc
	Skip     SkipFunc
	Optional bool
}

var (
	ErrStageFailure    = errors.New("stage failed")
	ErrCheckpointWrite = errors.New("checkpoint not written")
	ErrStageOrder      = errors.New("invalid stage list")
)

type StageError struct {
	Stage string
	Phase Phase
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage %s: %v", e.Phase, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func (e *StageError) Is(target error) bool { return target == ErrStageFailure }

// Validate checks that phases never go backwards and that names are unique.
func Validate(stages []Stage) error {
	var seen = make(map[string]bool)
	for i, stage := range stages {
		switch {
		case stage.Name == "" || strings.Contains(stage.Name, "."):
			return fmt.Errorf("%w: stage %d has bad name %q", ErrStageOrder, i, stage.Name)
		case seen[stage.Name]:
			return fmt.Errorf("%w: duplicate stage %s", ErrStageOrder, stage.Name)
		case stage.Run == nil:
			return fmt.Errorf("%w: stage %s has nothing to run", ErrStageOrder, stage.Name)
		case i > 0 && stage.Phase < stages[i-1].Phase:
			return fmt.Errorf("%w: %s stage %s after %s stage %s",
				ErrStageOrder, stage.Phase, stage.Name, stages[i-1].Phase, stages[i-1].Name)
		}
		seen[stage.Name] = true
	}
	return nil
}

// FirstSkip combines skip predicates; the first one that skips wins.
func FirstSkip(preds ...SkipFunc) SkipFunc {
	return func(rc *RunContext) (bool, string) {
		for _, pred := range preds {
			if pred == nil {
				continue
			}
			if skip, reason := pred(rc); skip {
				return true, reason
			}
		}
		return false, ""
	}
}
