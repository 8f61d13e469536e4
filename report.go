package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/360EntSecGroup-Skylar/excelize/v2"

	"github.com/liserjrqlxue/AssemblyPipeline/pipeline"
	"github.com/liserjrqlxue/AssemblyPipeline/record"
	"github.com/liserjrqlxue/AssemblyPipeline/runMetadata"
)

const (
	reportDir   = "reports"
	reportName  = "combinedMetadata"
	reportSheet = "Sheet1"
)

var reportTitle = []string{
	"SampleName",
	"RunID",
	"Flowcell",
	"Instrument",
	"Investigator",
	"Experiment",
	"Date",
	"ForwardLength",
	"ReverseLength",
	"Project",
	"NumberofClustersPF",
	"PercentOfClusters",
	"OutputDirectory",
}

func runColumns(rc *pipeline.RunContext, sample *runMetadata.Sample) []string {
	var run = sample.Run
	if run == nil {
		run = &runMetadata.Run{Header: rc.Header}
	}
	var clusters, percent = runMetadata.NA, runMetadata.NA
	if run.Stats != nil {
		clusters = strconv.FormatInt(run.Stats.NumberOfClustersPF, 10)
		percent = strconv.FormatFloat(run.Stats.PercentOfClusters, 'f', -1, 64)
	}
	return []string{
		sample.Name,
		rc.RunID,
		rc.Flowcell,
		rc.Instrument,
		run.Investigator,
		run.Experiment,
		run.Date,
		strconv.Itoa(run.ForwardLength),
		strconv.Itoa(run.ReverseLength),
		run.Project,
		clusters,
		percent,
		sample.General.OutputDirectory,
	}
}

// flatten appends the leaves of r as dotted paths in record order.
func flatten(prefix string, r *record.Record, keys *[]string, values map[string]string) {
	for _, key := range r.Keys() {
		v, _ := r.Get(key)
		path := prefix + key
		if child, ok := v.(*record.Record); ok {
			flatten(path+".", child, keys, values)
			continue
		}
		if _, ok := values[path]; !ok {
			*keys = append(*keys, path)
		}
		values[path], _ = recordArg(r, key)
	}
}

// reportRows builds the title and one row per sample: the run columns followed by
// every result any sample carries.
func reportRows(rc *pipeline.RunContext) [][]string {
	var (
		resultKeys []string
		seen       = make(map[string]bool)
		values     = make([]map[string]string, len(rc.Samples))
	)
	for i, sample := range rc.Samples {
		values[i] = make(map[string]string)
		var keys []string
		flatten("", sample.Results, &keys, values[i])
		for _, key := range keys {
			if !seen[key] {
				seen[key] = true
				resultKeys = append(resultKeys, key)
			}
		}
	}

	var rows = [][]string{append(append([]string{}, reportTitle...), resultKeys...)}
	for i, sample := range rc.Samples {
		row := runColumns(rc, sample)
		for _, key := range resultKeys {
			value, ok := values[i][key]
			if !ok {
				value = runMetadata.NA
			}
			row = append(row, value)
		}
		rows = append(rows, row)
	}
	return rows
}

// writeReport writes the combined metadata of all samples as tsv and xlsx.
func writeReport(rc *pipeline.RunContext) error {
	var dir = filepath.Join(rc.Path, reportDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	var rows = reportRows(rc)
	var tsv = filepath.Join(dir, reportName+".tsv")
	if err := writeTSV(tsv, rows); err != nil {
		return err
	}
	var xlsx = filepath.Join(dir, reportName+".xlsx")
	if err := writeXlsx(xlsx, rows); err != nil {
		return err
	}
	if err := rc.Results.SetPath("report.tsv", tsv); err != nil {
		return err
	}
	return rc.Results.SetPath("report.xlsx", xlsx)
}

func writeTSV(fileName string, rows [][]string) (err error) {
	file, err := os.Create(fileName)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()
	var w = bufio.NewWriter(file)
	for _, row := range rows {
		if _, err = fmt.Fprintln(w, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return w.Flush()
}

func writeXlsx(fileName string, rows [][]string) error {
	var xlsx = excelize.NewFile()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		var values = make([]interface{}, len(row))
		for j, value := range row {
			values[j] = value
		}
		if err = xlsx.SetSheetRow(reportSheet, cell, &values); err != nil {
			return err
		}
	}
	return xlsx.SaveAs(fileName)
}
