package runMetadata

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	simple_util "github.com/liserjrqlxue/simple-util"
	"github.com/willf/bitset"
)

type StatsKind int

const (
	NoStats StatsKind = iota
	XMLStats
	TextStats
)

func (k StatsKind) String() string {
	switch k {
	case XMLStats:
		return RunStatsXML
	case TextStats:
		return IndexingQC
	default:
		return "none"
	}
}

// StatsSource is the one statistics file a run is reconciled against.
type StatsSource struct {
	Kind StatsKind
	Path string
}

// ProbeStats picks GenerateFASTQRunStatistics.xml over indexingQC.txt.
func ProbeStats(dir string) StatsSource {
	if path := filepath.Join(dir, RunStatsXML); simple_util.FileExists(path) {
		return StatsSource{Kind: XMLStats, Path: path}
	}
	if path := filepath.Join(dir, IndexingQC); simple_util.FileExists(path) {
		return StatsSource{Kind: TextStats, Path: path}
	}
	return StatsSource{Kind: NoStats}
}

// statRow is one sample of a statistics file, Name already run through SampleName.
type statRow struct {
	Ordinal  int
	Name     string
	Clusters int64
	Percent  float64
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// Reconcile adds the cluster counts of src to samples. Rows are matched to samples by
// position (SampleNumber-1) and the canonical names must agree, otherwise nothing is
// changed and ErrIdentityMismatch is returned. It returns the names of samples that have
// no row in src. A NoStats source leaves every sample untouched.
func Reconcile(samples []*Sample, src StatsSource, flowcell, instrument string) (missing []string, err error) {
	var (
		total float64
		rows  []statRow
	)
	switch src.Kind {
	case XMLStats:
		total, rows, err = parseRunStatsXML(src.Path)
	case TextStats:
		total, rows, err = parseIndexingQC(src.Path)
	default:
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	covered := bitset.New(uint(len(samples)))
	for _, row := range rows {
		index := row.Ordinal - 1
		if index < 0 || index >= len(samples) {
			return nil, fmt.Errorf("%w: %s: sample number %d outside sample sheet (%d samples)",
				ErrStatisticsMalformed, src.Path, row.Ordinal, len(samples))
		}
		if covered.Test(uint(index)) {
			return nil, fmt.Errorf("%w: %s: sample number %d repeated", ErrStatisticsMalformed, src.Path, row.Ordinal)
		}
		if samples[index].Name != row.Name {
			return nil, fmt.Errorf("%w: %s: sample %d is %q, sample sheet has %q",
				ErrIdentityMismatch, src.Path, row.Ordinal, row.Name, samples[index].Name)
		}
		covered.Set(uint(index))
	}

	for _, row := range rows {
		samples[row.Ordinal-1].Run.Stats = &ClusterStats{
			SampleNumber:       row.Ordinal,
			NumberOfClustersPF: row.Clusters,
			TotalClustersInRun: total,
			PercentOfClusters:  row.Percent,
			Flowcell:           flowcell,
			Instrument:         instrument,
		}
	}
	for i, sample := range samples {
		if !covered.Test(uint(i)) {
			missing = append(missing, sample.Name)
		}
	}
	return missing, nil
}

type runStatistics struct {
	Total   []string `xml:"RunStats>NumberOfClustersPF"`
	Samples []struct {
		SampleNumber       string `xml:"SampleNumber"`
		SampleID           string `xml:"SampleID"`
		SampleName         string `xml:"SampleName"`
		NumberOfClustersPF string `xml:"NumberOfClustersPF"`
	} `xml:"OverallSamples>SummarizedSampleStatistics"`
}

func parseRunStatsXML(path string) (total float64, rows []statRow, err error) {
	file, err := os.Open(path)
	if err != nil {
		return
	}
	defer simple_util.DeferClose(file)

	var stats runStatistics
	if err = xml.NewDecoder(file).Decode(&stats); err != nil {
		return 0, nil, fmt.Errorf("%w: %s: %v", ErrStatisticsMalformed, path, err)
	}
	if len(stats.Total) == 0 {
		return 0, nil, fmt.Errorf("%w: %s: no RunStats/NumberOfClustersPF", ErrStatisticsMalformed, path)
	}
	if total, err = parseTotal(stats.Total[0]); err != nil {
		return 0, nil, fmt.Errorf("%s: %w", path, err)
	}
	for i, s := range stats.Samples {
		ordinal, err := strconv.Atoi(strings.TrimSpace(s.SampleNumber))
		if err != nil {
			return 0, nil, fmt.Errorf("%w: %s: summary %d: SampleNumber %q", ErrStatisticsMalformed, path, i+1, s.SampleNumber)
		}
		name := strings.TrimSpace(s.SampleName)
		if name == "" {
			return 0, nil, fmt.Errorf("%w: %s: summary %d: no SampleName", ErrStatisticsMalformed, path, i+1)
		}
		clusters, err := strconv.ParseFloat(strings.TrimSpace(s.NumberOfClustersPF), 64)
		if err != nil {
			return 0, nil, fmt.Errorf("%w: %s: summary %d: NumberOfClustersPF %q", ErrStatisticsMalformed, path, i+1, s.NumberOfClustersPF)
		}
		rows = append(rows, statRow{
			Ordinal:  ordinal,
			Name:     SampleName(name),
			Clusters: int64(math.Round(clusters)),
			Percent:  round2(clusters / total * 100),
		})
	}
	return total, rows, nil
}

// parseIndexingQC reads the Indexing QC table copied out of BaseSpace: the run total on
// line 2, then one tab separated row per sample after the "Index" header.
func parseIndexingQC(path string) (total float64, rows []statRow, err error) {
	file, err := os.Open(path)
	if err != nil {
		return
	}
	defer simple_util.DeferClose(file)

	var (
		lineNo    int
		seenIndex bool
		seenTotal bool
	)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		switch {
		case lineNo == 2:
			if total, err = parseTotal(strings.Split(line, "\t")[0]); err != nil {
				return 0, nil, fmt.Errorf("%s: line 2: %w", path, err)
			}
			seenTotal = true
		case seenIndex:
			if strings.TrimSpace(line) == "" {
				continue
			}
			fields := strings.Split(line, "\t")
			for i := range fields {
				fields[i] = strings.TrimSpace(fields[i])
			}
			if len(fields) < 6 {
				return 0, nil, fmt.Errorf("%w: %s: line %d: %d fields, need 6", ErrStatisticsMalformed, path, lineNo, len(fields))
			}
			ordinal, err := strconv.Atoi(fields[0])
			if err != nil {
				return 0, nil, fmt.Errorf("%w: %s: line %d: sample number %q", ErrStatisticsMalformed, path, lineNo, fields[0])
			}
			percent, err := strconv.ParseFloat(strings.TrimSuffix(fields[5], "%"), 64)
			if err != nil {
				return 0, nil, fmt.Errorf("%w: %s: line %d: percent %q", ErrStatisticsMalformed, path, lineNo, fields[5])
			}
			percent = round2(percent)
			rows = append(rows, statRow{
				Ordinal:  ordinal,
				Name:     SampleName(fields[1]),
				Clusters: int64(math.Round(percent * total / 100)),
				Percent:  percent,
			})
		}
		if !seenIndex && strings.Contains(line, "Index") {
			seenIndex = true
		}
	}
	if err = scanner.Err(); err != nil {
		return 0, nil, err
	}
	if !seenTotal {
		return 0, nil, fmt.Errorf("%w: %s: no run total on line 2", ErrStatisticsMalformed, path)
	}
	if !seenIndex {
		return 0, nil, fmt.Errorf("%w: %s: no Index header", ErrStatisticsMalformed, path)
	}
	return total, rows, nil
}

func parseTotal(s string) (float64, error) {
	total, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || total <= 0 {
		return 0, fmt.Errorf("%w: run total %q", ErrStatisticsMalformed, s)
	}
	return total, nil
}
