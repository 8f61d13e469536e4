package runMetadata

import (
	"log"
	"path/filepath"

	simple_util "github.com/liserjrqlxue/simple-util"
)

// Load reads the sample sheet (customSheet when set, dir/SampleSheet.csv otherwise),
// RunInfo.xml and the run statistics of dir.
func Load(dir, customSheet string, logger *log.Logger) (*Metadata, error) {
	var sheet = filepath.Join(dir, SampleSheet)
	if customSheet != "" {
		sheet = customSheet
	}
	header, samples, err := ParseSampleSheetFile(sheet)
	if err != nil {
		return nil, err
	}
	logger.Printf("sample sheet %s: %d samples", sheet, len(samples))

	var meta = &Metadata{
		Path:    dir,
		Header:  header,
		Samples: samples,
		Stats:   ProbeStats(dir),
	}
	if meta.Flowcell, meta.Instrument, err = ParseRunInfo(dir); err != nil {
		return nil, err
	}

	if meta.Stats.Kind == NoStats {
		logger.Printf("%v in %s, statistics left unset", ErrStatisticsUnavailable, dir)
		return meta, nil
	}
	missing, err := Reconcile(meta.Samples, meta.Stats, meta.Flowcell, meta.Instrument)
	if err != nil {
		return nil, err
	}
	for _, name := range missing {
		logger.Printf("sample %s has no row in %s", name, meta.Stats.Kind)
	}
	return meta, nil
}

// HasSampleSheet reports whether dir holds a sample sheet or customSheet is given.
func HasSampleSheet(dir, customSheet string) bool {
	if customSheet != "" {
		return true
	}
	return simple_util.FileExists(filepath.Join(dir, SampleSheet))
}
