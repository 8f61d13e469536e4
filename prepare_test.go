package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPlaceFastqLinksReadsPerSample(t *testing.T) {
	rc := sheetRun(t)
	if err := placeFastq(rc); err != nil {
		t.Fatal(err)
	}
	for _, sample := range rc.Samples {
		outdir := filepath.Join(rc.Path, sample.Name)
		if sample.General.OutputDirectory != outdir {
			t.Errorf("%s: output directory %s", sample.Name, sample.General.OutputDirectory)
		}
		if len(sample.General.FastqFiles) != 2 {
			t.Fatalf("%s: fastq files %v", sample.Name, sample.General.FastqFiles)
		}
		for _, fq := range sample.General.FastqFiles {
			if filepath.Dir(fq) != outdir {
				t.Errorf("%s: %s not in sample folder", sample.Name, fq)
			}
			if _, err := os.Stat(fq); err != nil {
				t.Error(err)
			}
		}
		if info, err := os.Stat(filepath.Join(outdir, "shell")); err != nil || !info.IsDir() {
			t.Errorf("%s: no shell folder", sample.Name)
		}
	}
	if !strings.HasSuffix(rc.Samples[0].General.FastqFiles[0], "Sample-1-A_S1_L001_R1_001.fastq.gz") {
		t.Errorf("forward read %s", rc.Samples[0].General.FastqFiles[0])
	}

	// a rerun finds the reads already in place
	first := append([]string{}, rc.Samples[1].General.FastqFiles...)
	if err := placeFastq(rc); err != nil {
		t.Fatal(err)
	}
	if strings.Join(first, ",") != strings.Join(rc.Samples[1].General.FastqFiles, ",") {
		t.Fatalf("rerun moved reads: %v -> %v", first, rc.Samples[1].General.FastqFiles)
	}
}

func TestPlaceFastqReadsAlreadyInSampleFolder(t *testing.T) {
	rc := sheetRun(t)
	for _, name := range []string{"Sample2_1.fq.gz", "Sample2_2.fq.gz"} {
		if err := os.Remove(filepath.Join(rc.Path, name)); err != nil {
			t.Fatal(err)
		}
	}
	outdir := filepath.Join(rc.Path, "Sample2")
	if err := os.MkdirAll(outdir, 0755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, outdir, "Sample2_S2_R1_001.fastq.gz", "reads")
	writeFile(t, outdir, "Sample2_S2_R2_001.fastq.gz", "reads")
	if err := placeFastq(rc); err != nil {
		t.Fatal(err)
	}
	if got := rc.Samples[1].General.FastqFiles; len(got) != 2 || filepath.Dir(got[0]) != outdir {
		t.Fatalf("fastq files %v", got)
	}
}

func TestPlaceFastqMissingReads(t *testing.T) {
	rc := sheetRun(t)
	for _, name := range []string{"Sample2_1.fq.gz", "Sample2_2.fq.gz"} {
		if err := os.Remove(filepath.Join(rc.Path, name)); err != nil {
			t.Fatal(err)
		}
	}
	err := placeFastq(rc)
	if err == nil || !strings.Contains(err.Error(), "Sample2") {
		t.Fatalf("err = %v", err)
	}
}

func TestCreateShell(t *testing.T) {
	script := filepath.Join(t.TempDir(), "a", "shell", "quast.sh")
	if err := createShell(script, "/opt/script/quast.sh", "run", "Sample2"); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(script)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "#!/bin/bash\nbash /opt/script/quast.sh run Sample2\n" {
		t.Fatalf("script %q", data)
	}
}

func TestCreateShellReportsWriteErrors(t *testing.T) {
	blocker := writeFile(t, t.TempDir(), "Sample2", "not a folder")
	if err := createShell(filepath.Join(blocker, "shell", "quast.sh"), "/opt/script/quast.sh"); err == nil {
		t.Fatal("script written under a regular file")
	}
}
