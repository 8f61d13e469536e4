package main

import (
	"fmt"

	"github.com/liserjrqlxue/AssemblyPipeline/pipeline"
)

type stageDef struct {
	name  string
	phase pipeline.Phase
}

// stageOrder is the fixed order of the pipeline. Stages other than the built-in ones
// run the script of their step table row.
var stageOrder = []stageDef{
	{"fastqMover", pipeline.Preparation},

	{"fastqcRaw", pipeline.Quality},
	{"trimQuality", pipeline.Quality},
	{"fastqcTrimmed", pipeline.Quality},
	{"errorCorrect", pipeline.Quality},
	{"contamination", pipeline.Quality},
	{"fastqcTrimmedCorrected", pipeline.Quality},
	{"normalise", pipeline.Quality},
	{"fastqcNormalised", pipeline.Quality},
	{"mergePairs", pipeline.Quality},
	{"fastqcMerged", pipeline.Quality},

	{"spades", pipeline.Assembly},
	{"qualimap", pipeline.Assembly},
	{"quast", pipeline.Assembly},
	{"prodigal", pipeline.Assembly},
	{"clark", pipeline.Assembly},

	// genus agnostic
	{"mash", pipeline.Typing},
	{"rMLST", pipeline.Typing},
	{"sixteenS", pipeline.Typing},
	{"geneSippr", pipeline.Typing},
	{"plasmids", pipeline.Typing},
	{"resistance", pipeline.Typing},
	{"prophages", pipeline.Typing},
	{"univec", pipeline.Typing},
	{"virulence", pipeline.Typing},
	// genus specific
	{"MLST", pipeline.Typing},
	{"serosippr", pipeline.Typing},
	{"vtyper", pipeline.Typing},
	{"coreGenome", pipeline.Typing},
	{"sistr", pipeline.Typing},

	{"report", pipeline.Reporting},
	{"versions", pipeline.Reporting},
}

// builtinStages run in process instead of from the step table.
func builtinStages(settings *Settings) map[string]pipeline.StageFunc {
	return map[string]pipeline.StageFunc{
		"fastqMover": placeFastq,
		"report":     writeReport,
		"versions": func(rc *pipeline.RunContext) error {
			return recordVersions(rc, settings.Versions)
		},
	}
}

// buildStages turns stageOrder into stage descriptors. It also returns the step table
// rows that name no stage.
func buildStages(taskList map[string]*Task, settings *Settings, probe pipeline.MemoryProbe) (stages []pipeline.Stage, unused []string) {
	var builtin = builtinStages(settings)
	var used = make(map[string]bool)
	for _, def := range stageOrder {
		var stage = pipeline.Stage{
			Name:     def.name,
			Phase:    def.phase,
			Optional: settings.optional(def.name),
		}
		if run, ok := builtin[def.name]; ok {
			stage.Run = run
		} else if task, ok := taskList[def.name]; ok {
			used[def.name] = true
			stage.Run = task.Run
		} else {
			stage.Run = notConfiguredRun(def.name)
			stage.Skip = notConfigured
		}
		if settings.memoryGated(def.name) {
			stage.Skip = pipeline.FirstSkip(stage.Skip, pipeline.MemoryAtLeast(probe, settings.MemoryThreshold))
		}
		stages = append(stages, stage)
	}
	return stages, unusedSteps(taskList, used)
}

func notConfigured(*pipeline.RunContext) (bool, string) {
	return true, "no step configured"
}

func notConfiguredRun(name string) pipeline.StageFunc {
	return func(*pipeline.RunContext) error {
		return fmt.Errorf("no step configured for %s", name)
	}
}
