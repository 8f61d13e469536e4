package runMetadata

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	simple_util "github.com/liserjrqlxue/simple-util"
)

// ParseRunInfo pulls the flow cell ID and the instrument name out of dir/RunInfo.xml.
// Both are NA when the file is not there.
func ParseRunInfo(dir string) (flowcell, instrument string, err error) {
	flowcell, instrument = NA, NA
	path := filepath.Join(dir, RunInfoXML)
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return flowcell, instrument, nil
	}
	if err != nil {
		return
	}
	defer simple_util.DeferClose(file)

	dec := xml.NewDecoder(file)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return flowcell, instrument, fmt.Errorf("%w: %s: %v", ErrStatisticsMalformed, path, err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch se.Name.Local {
		case "Flowcell", "Instrument":
			var text string
			if err := dec.DecodeElement(&text, &se); err != nil {
				return flowcell, instrument, fmt.Errorf("%w: %s: %v", ErrStatisticsMalformed, path, err)
			}
			if se.Name.Local == "Flowcell" {
				flowcell = strings.TrimSpace(text)
			} else {
				instrument = strings.TrimSpace(text)
			}
		}
	}
	return flowcell, instrument, nil
}
