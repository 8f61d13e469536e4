package runMetadata

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	nameReplacer = strings.NewReplacer(
		" ", "-",
		".", "-",
		"=", "-",
		"+", "",
		"/", "-",
		"#", "",
	)
	dashRun = regexp.MustCompile(`-{2,}`)
)

// SampleName follows the Illumina rules that turn a Sample_Name into a file name.
// Runs of dashes of any length collapse to one, so SampleName(SampleName(s)) == SampleName(s).
func SampleName(raw string) string {
	name := strings.TrimRightFunc(raw, unicode.IsSpace)
	name = nameReplacer.Replace(name)
	return dashRun.ReplaceAllString(name, "-")
}
