package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/liserjrqlxue/libIM"
	simple_util "github.com/liserjrqlxue/simple-util"

	"github.com/liserjrqlxue/AssemblyPipeline/pipeline"
	"github.com/liserjrqlxue/AssemblyPipeline/runMetadata"
)

func createShell(fileName, script string, args ...string) error {
	if err := os.MkdirAll(filepath.Dir(fileName), 0755); err != nil {
		return err
	}
	file, err := os.Create(fileName)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(file, "#!/bin/bash\nbash %s %s\n", script, strings.Join(args, " "))
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	return err
}

func createDir(workdir string, sampleDirList, sampleList []string) error {
	for _, sampleID := range sampleList {
		for _, subdir := range sampleDirList {
			err := os.MkdirAll(
				filepath.Join(
					workdir,
					sampleID,
					subdir,
				),
				0755,
			)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// sample sub directories made before any step runs
var sampleDirList = []string{"shell"}

// placeFastq gives every sample its own folder under the run folder and links the
// sample's reads into it. Reads already in the folder from an earlier run are reused.
func placeFastq(rc *pipeline.RunContext) error {
	var sampleList []string
	for _, sample := range rc.Samples {
		sampleList = append(sampleList, sample.Name)
	}
	if err := createDir(rc.Path, sampleDirList, sampleList); err != nil {
		return err
	}

	var runReads map[string]libIM.Info
	var missing []string
	for _, sample := range rc.Samples {
		outdir := filepath.Join(rc.Path, sample.Name)
		sample.General.OutputDirectory = outdir

		var fastqs = sample.General.FastqFiles
		if len(fastqs) == 0 {
			if runReads == nil {
				var err error
				if runReads, _, err = runMetadata.DiscoverReads(rc.Path); err != nil {
					return err
				}
			}
			fastqs = pairFiles(runReads[sample.Name])
		}
		if len(fastqs) == 0 {
			sampleReads, _, err := runMetadata.DiscoverReads(outdir)
			if err != nil {
				return err
			}
			fastqs = pairFiles(sampleReads[sample.Name])
		}
		if len(fastqs) == 0 {
			missing = append(missing, sample.Name)
			continue
		}

		var placed []string
		for _, src := range fastqs {
			dst, err := placeFile(src, outdir)
			if err != nil {
				return fmt.Errorf("sample %s: %w", sample.Name, err)
			}
			placed = append(placed, dst)
		}
		sample.General.FastqFiles = placed
	}
	if len(missing) > 0 {
		return fmt.Errorf("no fastq files for samples: %s", strings.Join(missing, ","))
	}
	return nil
}

func pairFiles(info libIM.Info) (fastqs []string) {
	for _, fq := range []string{info.Fq1, info.Fq2} {
		if fq != "" {
			fastqs = append(fastqs, fq)
		}
	}
	return
}

// placeFile links src into dir, falling back to a copy where links are not possible.
func placeFile(src, dir string) (string, error) {
	abs, err := filepath.Abs(src)
	if err != nil {
		return "", err
	}
	if dir, err = filepath.Abs(dir); err != nil {
		return "", err
	}
	if filepath.Dir(abs) == dir {
		return abs, nil
	}
	dst := filepath.Join(dir, filepath.Base(src))
	if _, err := os.Lstat(dst); err == nil {
		return dst, nil
	}
	if err := os.Symlink(abs, dst); err != nil {
		log.Printf("link %s failed (%v), copy instead", abs, err)
		if err := simple_util.CopyFile(dst, abs); err != nil {
			return "", err
		}
	}
	return dst, nil
}
