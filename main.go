package main

import (
	"flag"
	"io"
	"log"
	"os"
	"path/filepath"

	simple_util "github.com/liserjrqlxue/simple-util"

	"github.com/liserjrqlxue/AssemblyPipeline/pipeline"
	"github.com/liserjrqlxue/AssemblyPipeline/runMetadata"
)

// os
var (
	ex, _  = os.Executable()
	exPath = filepath.Dir(ex)
)

// set with -ldflags "-X main.version=..."
var version = "dev"

var (
	path = flag.String(
		"path",
		"",
		"run folder with SampleSheet.csv, run statistics and fastq files",
	)
	threads = flag.Int(
		"threads",
		0,
		"number of threads. Default is the number of cores in the system",
	)
	refPath = flag.String(
		"ref",
		filepath.Join(exPath, "db"),
		"folder containing the pipeline accessory files (reference genomes, MLST data, etc.)",
	)
	numReads = flag.Int(
		"numreads",
		2,
		"number of reads. Paired-reads: 2, unpaired-reads: 1",
	)
	kmers = flag.String(
		"kmers",
		"21,33,55,77,99,127",
		"range of kmers used in SPAdes assembly",
	)
	customSheet = flag.String(
		"customsamplesheet",
		"",
		"custom sample sheet in SampleSheet.csv format, e.g. /home/name/folder/BackupSampleSheet.csv",
	)
	basicAssembly = flag.Bool(
		"basic",
		false,
		"basic de novo assembly, no run metadata collected",
	)
	preprocess = flag.Bool(
		"preprocess",
		false,
		"quality trimming and error correction only, no assembly",
	)
	input = flag.String(
		"input",
		"",
		"sample list for basic assembly: sampleID fq1 fq2",
	)
	localpath = flag.String(
		"local",
		exPath,
		"local path",
	)
	cfg = flag.String(
		"cfg",
		filepath.Join(exPath, "etc", "allSteps.tsv"),
		"pipeline steps",
	)
	settingsFile = flag.String(
		"settings",
		filepath.Join(exPath, "etc", "settings.yaml"),
		"pipeline settings",
	)
	logFile = flag.String(
		"log",
		"",
		"output log file",
	)
)

func main() {
	flag.Parse()
	if *path == "" {
		flag.Usage()
		log.Printf("-path required")
		os.Exit(0)
	}
	simple_util.CheckErr(os.MkdirAll(*path, 0755))

	if *logFile == "" {
		*logFile = filepath.Join(*path, "logfile")
	}
	logF, err := os.Create(*logFile)
	simple_util.CheckErr(err)
	defer simple_util.DeferClose(logF)
	log.SetOutput(io.MultiWriter(logF, os.Stderr))
	log.SetFlags(log.Ldate | log.Ltime)
	log.Printf("Welcome to the de novo bacterial assembly pipeline %s", version)
	log.Printf("Log file:%v\n", *logFile)
	log.Printf("Command line:%v", os.Args)
	var logger = log.New(io.MultiWriter(logF, os.Stderr), "", log.Ldate|log.Ltime)

	if *customSheet != "" && !simple_util.FileExists(*customSheet) {
		log.Fatalf("Cannot find custom sample sheet as specified %s", *customSheet)
	}
	settings, err := loadSettings(*settingsFile)
	simple_util.CheckErr(err)

	var basic = *basicAssembly
	if !basic && !runMetadata.HasSampleSheet(*path, *customSheet) {
		basic = true
		log.Printf("Could not find a sample sheet. Performing basic assembly (no run metadata captured)")
	}
	var meta *runMetadata.Metadata
	if basic {
		meta, err = runMetadata.Basic(*path, *input)
	} else {
		meta, err = runMetadata.Load(*path, *customSheet, logger)
	}
	simple_util.CheckErr(err)

	rc := pipeline.NewRunContext(meta, pipeline.Threads(*threads))
	simple_util.CheckErr(recordOptions(rc))
	log.Printf("run %s: %d samples, %d threads", rc.RunID, len(rc.Samples), rc.Threads)

	taskList, err := parseStepCfg(*cfg, *localpath)
	simple_util.CheckErr(err)
	stages, unused := buildStages(taskList, settings, pipeline.TotalMemory)
	for _, name := range unused {
		log.Printf("step %s in %s is not a pipeline stage, ignored", name, *cfg)
	}

	var driver = &pipeline.Driver{
		Stages:         stages,
		Checkpoint:     pipeline.JSONCheckpoint{Dir: filepath.Join(*path, "reports")},
		Logger:         logger,
		PreprocessOnly: *preprocess,
	}
	simple_util.CheckErr(driver.Run(rc))
	log.Printf("Assembly and characterisation complete")
}

// recordOptions keeps the command line choices that stage scripts read as arguments.
func recordOptions(rc *pipeline.RunContext) error {
	var options = []struct {
		key   string
		value interface{}
	}{
		{"version", version},
		{"reference", *refPath},
		{"numreads", *numReads},
		{"kmers", *kmers},
		{"local", *localpath},
	}
	for _, option := range options {
		if err := rc.Results.SetPath("settings."+option.key, option.value); err != nil {
			return err
		}
	}
	return nil
}
