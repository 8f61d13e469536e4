package runMetadata

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/liserjrqlxue/goUtil/textUtil"
	"github.com/liserjrqlxue/libIM"
	simple_util "github.com/liserjrqlxue/simple-util"
)

// Illumina style Sample-1_S1_L001_R1_001.fastq.gz as well as plain name_1.fq.gz
var readsPattern = regexp.MustCompile(`^(.+?)(?:_S\d+)?(?:_L\d{3})?_R?([12])(?:_\d{3})?\.f(?:ast)?q\.gz$`)

// DiscoverReads groups the gzipped FASTQ files of dir into read pairs keyed by sample.
func DiscoverReads(dir string) (map[string]libIM.Info, []string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}
	var infoMap = make(map[string]libIM.Info)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := readsPattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		var sampleID = SampleName(m[1])
		var info = infoMap[sampleID]
		info.SampleID = sampleID
		path := filepath.Join(dir, entry.Name())
		if m[2] == "1" {
			info.Fq1 = path
		} else {
			info.Fq2 = path
		}
		infoMap[sampleID] = info
	}
	var sampleIDs []string
	for sampleID := range infoMap {
		sampleIDs = append(sampleIDs, sampleID)
	}
	sort.Strings(sampleIDs)
	return infoMap, sampleIDs, nil
}

// ParseInfoList reads a tab separated sample list with sampleID, fq1 and fq2 columns.
func ParseInfoList(input string) (map[string]libIM.Info, []string, error) {
	if !simple_util.FileExists(input) {
		return nil, nil, fmt.Errorf("sample list %s does not exist", input)
	}
	var infoMap = make(map[string]libIM.Info)
	var sampleIDs []string
	var sampleList, _ = textUtil.File2MapArray(input, "\t", nil)
	for _, item := range sampleList {
		var sampleID = SampleName(item["sampleID"])
		if sampleID == "" && item["fq1"] == "" && item["fq2"] == "" {
			continue
		}
		if sampleID == "" {
			return nil, nil, fmt.Errorf("sample list %s: row without sampleID", input)
		}
		if _, ok := infoMap[sampleID]; ok {
			return nil, nil, fmt.Errorf("sample list %s: dup sampleID:%s", input, sampleID)
		}
		infoMap[sampleID] = libIM.Info{
			SampleID: sampleID,
			Fq1:      item["fq1"],
			Fq2:      item["fq2"],
		}
		sampleIDs = append(sampleIDs, sampleID)
	}
	return infoMap, sampleIDs, nil
}

// Basic builds the metadata of a run without a sample sheet: one sample per read pair,
// default header, no statistics. input, when set, is a sample list used instead of
// looking for reads in dir.
func Basic(dir, input string) (*Metadata, error) {
	var (
		infoMap   map[string]libIM.Info
		sampleIDs []string
		err       error
	)
	if input != "" {
		infoMap, sampleIDs, err = ParseInfoList(input)
	} else {
		infoMap, sampleIDs, err = DiscoverReads(dir)
	}
	if err != nil {
		return nil, err
	}
	if len(sampleIDs) == 0 {
		return nil, fmt.Errorf("no reads found in %s", dir)
	}
	var meta = &Metadata{
		Path:       dir,
		Basic:      true,
		Flowcell:   NA,
		Instrument: NA,
		Header:     DefaultHeader(),
		Stats:      StatsSource{Kind: NoStats},
	}
	for _, sampleID := range sampleIDs {
		info := infoMap[sampleID]
		sample := newSample(sampleID, &Run{Header: meta.Header, SampleName: sampleID})
		for _, fq := range []string{info.Fq1, info.Fq2} {
			if fq != "" {
				sample.General.FastqFiles = append(sample.General.FastqFiles, fq)
			}
		}
		meta.Samples = append(meta.Samples, sample)
	}
	return meta, nil
}
