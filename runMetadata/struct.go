// Package runMetadata builds the per-sample run metadata of a sequencing run from the
// instrument files found in the run folder: SampleSheet.csv, RunInfo.xml and either
// GenerateFASTQRunStatistics.xml or indexingQC.txt.
package runMetadata

import (
	"errors"

	"github.com/liserjrqlxue/AssemblyPipeline/record"
)

// file names inside a run folder
const (
	SampleSheet = "SampleSheet.csv"
	RunInfoXML  = "RunInfo.xml"
	RunStatsXML = "GenerateFASTQRunStatistics.xml"
	IndexingQC  = "indexingQC.txt"
)

// NA fills flow cell and instrument when RunInfo.xml is missing.
const NA = "NA"

var (
	ErrManifestNotFound      = errors.New("sample sheet not found")
	ErrManifestMalformed     = errors.New("malformed sample sheet")
	ErrStatisticsUnavailable = errors.New("no run statistics file")
	ErrStatisticsMalformed   = errors.New("malformed run statistics")
	ErrIdentityMismatch      = errors.New("sample name does not match sample sheet")
)

// Header is the run-wide part of the sample sheet. Every sample gets its own copy.
type Header struct {
	Investigator  string `json:"investigator"`
	Experiment    string `json:"experiment"`
	Date          string `json:"date"`
	ForwardLength int    `json:"forwardLength"`
	ReverseLength int    `json:"reverseLength"`
	Adapter       string `json:"adapter"`
}

func DefaultHeader() Header {
	return Header{
		Investigator: NA,
		Experiment:   NA,
		Date:         NA,
		Adapter:      NA,
	}
}

// ClusterStats is filled in by Reconcile.
type ClusterStats struct {
	SampleNumber       int     `json:"SampleNumber"`
	NumberOfClustersPF int64   `json:"NumberofClustersPF"`
	TotalClustersInRun float64 `json:"TotalClustersinRun"`
	PercentOfClusters  float64 `json:"PercentOfClusters"`
	Flowcell           string  `json:"flowcell"`
	Instrument         string  `json:"instrument"`
}

type Run struct {
	Header
	SampleName string        `json:"SampleName"`
	I7IndexID  string        `json:"I7IndexID"`
	Index1     string        `json:"index1"`
	I5IndexID  string        `json:"I5IndexID"`
	Index2     string        `json:"index2"`
	Project    string        `json:"Project"`
	Stats      *ClusterStats `json:"stats,omitempty"`
}

type General struct {
	OutputDirectory string   `json:"outputDirectory,omitempty"`
	FastqFiles      []string `json:"fastqFiles,omitempty"`
}

// Sample is one row of the sample sheet. Name is the canonical SampleName of the raw
// Sample_ID and is the identity key shared with the statistics files.
type Sample struct {
	Name    string         `json:"name"`
	Run     *Run           `json:"run"`
	General General        `json:"general"`
	Results *record.Record `json:"results"`
}

func newSample(name string, run *Run) *Sample {
	return &Sample{
		Name:    name,
		Run:     run,
		Results: record.New(),
	}
}

// Metadata is everything known about a run before the first pipeline stage.
type Metadata struct {
	Path       string
	Basic      bool
	Flowcell   string
	Instrument string
	Header     Header
	Samples    []*Sample
	Stats      StatsSource
}
