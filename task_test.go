package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	simple_util "github.com/liserjrqlxue/simple-util"
)

const stepTable = "name\ttype\targs\tparallel\n" +
	"spades\tsample\tfq1,fq2,outdir,threads,kmers\t2\n" +
	"mash\tbatch\tlist,threads\t1"

func TestParseStepCfg(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "allSteps.tsv", stepTable)
	taskList, err := parseStepCfg(cfg, "/opt/pipeline")
	if err != nil {
		t.Fatal(err)
	}
	if len(taskList) != 2 {
		t.Fatalf("%d tasks", len(taskList))
	}
	spades := taskList["spades"]
	if spades.TaskType != "sample" || spades.parallel != 2 {
		t.Fatalf("spades: %+v", spades)
	}
	if spades.TaskScript != filepath.Join("/opt/pipeline", "script", "spades.sh") {
		t.Fatalf("script %s", spades.TaskScript)
	}
	if strings.Join(spades.TaskArgs, ",") != "fq1,fq2,outdir,threads,kmers" {
		t.Fatalf("args %v", spades.TaskArgs)
	}
	if taskList["mash"].TaskType != "batch" {
		t.Fatalf("mash: %+v", taskList["mash"])
	}

	taskList, err = parseStepCfg(filepath.Join(dir, "missing.tsv"), "/opt/pipeline")
	if err != nil || len(taskList) != 0 {
		t.Fatalf("missing table: %v %v", taskList, err)
	}
}

func TestParseStepCfgRejects(t *testing.T) {
	for name, table := range map[string]string{
		"type":     "name\ttype\targs\tparallel\nspades\tbarcode\tfq1\t1",
		"parallel": "name\ttype\targs\tparallel\nspades\tsample\tfq1\tzero",
		"dup":      "name\ttype\targs\tparallel\nspades\tsample\tfq1\t1\nspades\tsample\tfq2\t1",
	} {
		cfg := writeFile(t, t.TempDir(), "allSteps.tsv", table)
		if _, err := parseStepCfg(cfg, "/opt"); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestTaskCreatesSampleScripts(t *testing.T) {
	rc := sheetRun(t)
	if err := placeFastq(rc); err != nil {
		t.Fatal(err)
	}
	if err := rc.Results.SetPath("settings.kmers", "21,33,55"); err != nil {
		t.Fatal(err)
	}
	task, err := createTask(map[string]string{
		"name": "spades", "type": "sample", "args": "fq1,fq2,outdir,threads,kmers", "parallel": "2",
	}, "/opt/pipeline")
	if err != nil {
		t.Fatal(err)
	}
	if err := task.CreateScripts(rc); err != nil {
		t.Fatal(err)
	}
	sample := rc.Samples[0]
	data, err := os.ReadFile(task.Scripts[sample.Name])
	if err != nil {
		t.Fatal(err)
	}
	want := "#!/bin/bash\nbash /opt/pipeline/script/spades.sh " + strings.Join([]string{
		rc.Path, "/opt/pipeline", sample.Name,
		sample.General.FastqFiles[0], sample.General.FastqFiles[1],
		sample.General.OutputDirectory, "2", "21,33,55",
	}, " ") + "\n"
	if string(data) != want {
		t.Fatalf("script:\n%s\nwant:\n%s", data, want)
	}

	task.TaskArgs = append(task.TaskArgs, "genus")
	if err := task.CreateScripts(rc); err == nil {
		t.Fatal("argument without value accepted")
	}
}

func TestTaskRunRecordsEverySample(t *testing.T) {
	fake := useFakeCmd(t)
	rc := sheetRun(t)
	if err := placeFastq(rc); err != nil {
		t.Fatal(err)
	}
	boom := errors.New("exit status 1")
	fake.fail["Sample2"] = boom

	task, err := createTask(map[string]string{"name": "quast", "args": "outdir", "parallel": "4"}, "/opt")
	if err != nil {
		t.Fatal(err)
	}
	err = task.Run(rc)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if fake.count() != 2 {
		t.Fatalf("%d scripts run", fake.count())
	}
	for sample, want := range map[int]string{0: taskComplete, 1: taskFailed} {
		got, _ := rc.Samples[sample].Results.GetPath("quast.status")
		if got != want {
			t.Errorf("%s: status %v, want %s", rc.Samples[sample].Name, got, want)
		}
	}
	if !simple_util.FileExists(task.Scripts["Sample-1-A"] + ".complete") {
		t.Error("no .complete for the passing sample")
	}
	if simple_util.FileExists(task.Scripts["Sample2"] + ".complete") {
		t.Error(".complete written for the failing sample")
	}

	// second attempt only reruns what did not complete
	delete(fake.fail, "Sample2")
	if err := task.Run(rc); err != nil {
		t.Fatal(err)
	}
	if fake.count() != 3 {
		t.Fatalf("%d scripts run after retry", fake.count())
	}
	if got, _ := rc.Samples[1].Results.GetPath("quast.status"); got != taskComplete {
		t.Fatalf("status after retry %v", got)
	}
}

func TestBatchTaskWritesSampleList(t *testing.T) {
	fake := useFakeCmd(t)
	rc := sheetRun(t)
	if err := placeFastq(rc); err != nil {
		t.Fatal(err)
	}
	task, err := createTask(map[string]string{"name": "mash", "type": "batch", "args": "list,threads"}, "/opt")
	if err != nil {
		t.Fatal(err)
	}
	if err := task.Run(rc); err != nil {
		t.Fatal(err)
	}
	if fake.count() != 1 || task.BatchScript != filepath.Join(rc.Path, "shell", "mash.sh") {
		t.Fatalf("batch script %s run %d times", task.BatchScript, fake.count())
	}
	data, err := os.ReadFile(filepath.Join(rc.Path, "input.list"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[2], "Sample2\t") {
		t.Fatalf("input.list:\n%s", data)
	}
	if got, _ := rc.Results.GetPath("mash.status"); got != taskComplete {
		t.Fatalf("mash.status = %v", got)
	}
}
