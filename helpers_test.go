package main

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/liserjrqlxue/AssemblyPipeline/pipeline"
	"github.com/liserjrqlxue/AssemblyPipeline/runMetadata"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// sheetRun is a run folder with a sample sheet and reads for both samples, one in
// Illumina naming and one in plain _1/_2 naming.
func sheetRun(t *testing.T) *pipeline.RunContext {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{
		"Sample-1-A_S1_L001_R1_001.fastq.gz",
		"Sample-1-A_S1_L001_R2_001.fastq.gz",
		"Sample2_1.fq.gz",
		"Sample2_2.fq.gz",
	} {
		writeFile(t, dir, name, "reads")
	}
	writeFile(t, dir, runMetadata.SampleSheet, `[Header]
Investigator Name,Jane Doe
Experiment Name,Run 42
Date,2017-05-01

[Reads]
301
301

[Settings]
Adapter,CTGTCTCTTATACACATCT

[Data]
Sample_ID,Sample_Name,Sample_Plate,Sample_Well,I7_Index_ID,index,I5_Index_ID,index2,Sample_Project,Description
Sample 1.A,,,,N701,TAAGGCGA,S517,GCGTAAGA,proj,
Sample2,,,,N702,CGTACTAG,S502,CTCTCTAT,proj,
`)
	header, samples, err := runMetadata.ParseSampleSheet(dir)
	if err != nil {
		t.Fatal(err)
	}
	meta := &runMetadata.Metadata{
		Path:       dir,
		Flowcell:   runMetadata.NA,
		Instrument: runMetadata.NA,
		Header:     header,
		Samples:    samples,
	}
	return pipeline.NewRunContext(meta, 4)
}

// fakeCmd stands in for bash while a test runs.
type fakeCmd struct {
	sync.Mutex
	scripts []string
	fail    map[string]error
}

func useFakeCmd(t *testing.T) *fakeCmd {
	t.Helper()
	fake := &fakeCmd{fail: make(map[string]error)}
	old := runCmd
	runCmd = func(script string) error {
		fake.Lock()
		defer fake.Unlock()
		fake.scripts = append(fake.scripts, script)
		return fake.fail[filepath.Base(filepath.Dir(filepath.Dir(script)))]
	}
	t.Cleanup(func() { runCmd = old })
	return fake
}

func (f *fakeCmd) count() int {
	f.Lock()
	defer f.Unlock()
	return len(f.scripts)
}
