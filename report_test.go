package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/360EntSecGroup-Skylar/excelize/v2"

	"github.com/liserjrqlxue/AssemblyPipeline/runMetadata"
)

func TestReportRows(t *testing.T) {
	rc := sheetRun(t)
	rc.Samples[0].Run.Stats = &runMetadata.ClusterStats{NumberOfClustersPF: 333, PercentOfClusters: 33.3}
	for path, v := range map[string]interface{}{
		"spades.status":  "complete",
		"quast.N50":      int64(120000),
		"mash.genus":     "Escherichia",
		"quast.coverage": 61.5,
	} {
		if err := rc.Samples[0].Results.SetPath(path, v); err != nil {
			t.Fatal(err)
		}
	}
	if err := rc.Samples[1].Results.SetPath("mash.genus", "Listeria"); err != nil {
		t.Fatal(err)
	}

	rows := reportRows(rc)
	if len(rows) != 3 {
		t.Fatalf("%d rows", len(rows))
	}
	title := rows[0]
	column := func(name string) int {
		for i, v := range title {
			if v == name {
				return i
			}
		}
		t.Fatalf("no column %s in %v", name, title)
		return -1
	}
	for _, row := range rows {
		if len(row) != len(title) {
			t.Fatalf("row %v has %d columns, title %d", row, len(row), len(title))
		}
	}
	if rows[1][column("NumberofClustersPF")] != "333" || rows[2][column("NumberofClustersPF")] != runMetadata.NA {
		t.Errorf("clusters %v %v", rows[1], rows[2])
	}
	if rows[1][column("quast.coverage")] != "61.5" || rows[2][column("quast.N50")] != runMetadata.NA {
		t.Errorf("results %v %v", rows[1], rows[2])
	}
	if rows[2][column("mash.genus")] != "Listeria" || rows[1][column("Experiment")] != "Run 42" {
		t.Errorf("row %v", rows[2])
	}
}

func TestWriteReport(t *testing.T) {
	rc := sheetRun(t)
	if err := writeReport(rc); err != nil {
		t.Fatal(err)
	}
	tsv, _ := rc.Results.GetPath("report.tsv")
	data, err := os.ReadFile(tsv.(string))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[1], "Sample-1-A\t"+rc.RunID) {
		t.Fatalf("tsv:\n%s", data)
	}

	xlsx, err := excelize.OpenFile(filepath.Join(rc.Path, "reports", "combinedMetadata.xlsx"))
	if err != nil {
		t.Fatal(err)
	}
	cell, err := xlsx.GetCellValue(reportSheet, "A3")
	if err != nil {
		t.Fatal(err)
	}
	if cell != "Sample2" {
		t.Fatalf("A3 = %q", cell)
	}
}

func TestWriteReportReportsWriteErrors(t *testing.T) {
	rc := sheetRun(t)
	if err := os.MkdirAll(filepath.Join(rc.Path, "reports", "combinedMetadata.tsv"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := writeReport(rc); err == nil {
		t.Fatal("report written over a folder")
	}
	if _, ok := rc.Results.GetPath("report.tsv"); ok {
		t.Fatal("failed report recorded")
	}
}
