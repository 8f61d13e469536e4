package runMetadata

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	simple_util "github.com/liserjrqlxue/simple-util"
)

type sheetSection int

const (
	headerSection sheetSection = iota
	readsSection
	dataSection
)

// ParseSampleSheet parses dir/SampleSheet.csv.
func ParseSampleSheet(dir string) (Header, []*Sample, error) {
	return ParseSampleSheetFile(filepath.Join(dir, SampleSheet))
}

// ParseSampleSheetFile parses a sample sheet in the Illumina SampleSheet.csv format.
func ParseSampleSheetFile(path string) (header Header, samples []*Sample, err error) {
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return header, nil, fmt.Errorf("%w: %s", ErrManifestNotFound, path)
	}
	if err != nil {
		return header, nil, err
	}
	defer simple_util.DeferClose(file)
	header, samples, err = parseSampleSheet(file)
	if err != nil {
		err = fmt.Errorf("%s: %w", path, err)
	}
	return
}

func parseSampleSheet(r io.Reader) (header Header, samples []*Sample, err error) {
	var (
		section   = headerSection
		reads     []string
		seenReads bool
		seenData  bool
		lineNo    int
	)
	malformed := func(format string, a ...interface{}) error {
		return fmt.Errorf("%w: line %d: %s", ErrManifestMalformed, lineNo, fmt.Sprintf(format, a...))
	}
	readLengths := func() error {
		if len(reads) < 2 {
			return malformed("expected 2 read lengths in [Reads], found %d", len(reads))
		}
		var err error
		if header.ForwardLength, err = strconv.Atoi(reads[0]); err != nil {
			return malformed("forward read length %q", reads[0])
		}
		if header.ReverseLength, err = strconv.Atoi(reads[1]); err != nil {
			return malformed("reverse read length %q", reads[1])
		}
		return nil
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRightFunc(scanner.Text(), unicode.IsSpace)
		switch section {
		case readsSection:
			if strings.Contains(line, "Settings") {
				if err = readLengths(); err != nil {
					return
				}
				section = headerSection
				continue
			}
			if length := strings.TrimSpace(strings.Split(line, ",")[0]); length != "" {
				reads = append(reads, length)
			}
		case dataSection:
			var fields = strings.Split(line, ",")
			var empty = true
			for i := range fields {
				fields[i] = strings.TrimSpace(fields[i])
				if fields[i] != "" {
					empty = false
				}
			}
			if empty {
				continue
			}
			if len(fields) < 9 {
				err = malformed("sample row has %d fields, need 9", len(fields))
				return
			}
			run := &Run{
				Header:     header,
				SampleName: fields[0],
				I7IndexID:  fields[4],
				Index1:     fields[5],
				I5IndexID:  fields[6],
				Index2:     fields[7],
				Project:    fields[8],
			}
			samples = append(samples, newSample(SampleName(fields[0]), run))
		default:
			var data = strings.Split(line, ",")
			value := func(marker string) (string, bool) {
				if !strings.Contains(line, marker) {
					return "", false
				}
				if len(data) < 2 {
					err = malformed("%s has no value", marker)
					return "", false
				}
				return data[1], true
			}
			if v, ok := value("Investigator"); ok {
				header.Investigator = v
			}
			if v, ok := value("Experiment"); ok {
				header.Experiment = strings.ReplaceAll(v, "  ", " ")
			}
			if v, ok := value("Date"); ok {
				header.Date = v
			}
			if v, ok := value("Adapter"); ok {
				header.Adapter = v
			}
			if err != nil {
				return
			}
			if strings.Contains(line, "Reads") {
				section = readsSection
				seenReads = true
			} else if strings.Contains(line, "Sample_ID") {
				section = dataSection
				seenData = true
			}
		}
	}
	if err = scanner.Err(); err != nil {
		return
	}
	switch {
	case !seenReads:
		err = malformed("no [Reads] section")
	case section == readsSection:
		err = readLengths()
	}
	if err == nil && !seenData {
		err = malformed("no Sample_ID section")
	}
	return
}
