package runMetadata

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleSheetCSV = `[Header]
IEMFileVersion,4
Investigator Name,Jane Doe
Experiment Name,Run  42
Date,2017-05-01
Workflow,GenerateFASTQ

[Reads]
301
301

[Settings]
ReverseComplement,0
Adapter,CTGTCTCTTATACACATCT

[Data]
Sample_ID,Sample_Name,Sample_Plate,Sample_Well,I7_Index_ID,index,I5_Index_ID,index2,Sample_Project,Description
Sample 1.A,,,,N701,TAAGGCGA,S517,GCGTAAGA,proj,
Sample#2 ,,,,N702,CGTACTAG,S502,CTCTCTAT,proj,
,,,,,,,,,
`

const runInfoXML = `<?xml version="1.0"?>
<RunInfo Version="2">
  <Run Id="170501_M01234_0001_000000000-ABCDE" Number="1">
    <Flowcell>000000000-ABCDE</Flowcell>
    <Instrument>M01234</Instrument>
  </Run>
</RunInfo>
`

const runStatsXML = `<?xml version="1.0"?>
<StatisticsGenerateFASTQRunStatistics>
  <RunStats>
    <NumberOfClustersRaw>1200</NumberOfClustersRaw>
    <NumberOfClustersPF>1000</NumberOfClustersPF>
  </RunStats>
  <OverallSamples>
    <SummarizedSampleStatistics>
      <SampleNumber>1</SampleNumber>
      <SampleID>Sample 1.A</SampleID>
      <SampleName>Sample 1.A</SampleName>
      <NumberOfClustersRaw>400</NumberOfClustersRaw>
      <NumberOfClustersPF>333</NumberOfClustersPF>
    </SummarizedSampleStatistics>
    <SummarizedSampleStatistics>
      <SampleNumber>2</SampleNumber>
      <SampleID>Sample#2</SampleID>
      <SampleName>Sample#2</SampleName>
      <NumberOfClustersRaw>800</NumberOfClustersRaw>
      <NumberOfClustersPF>667</NumberOfClustersPF>
    </SummarizedSampleStatistics>
  </OverallSamples>
</StatisticsGenerateFASTQRunStatistics>
`

const indexingQCTXT = "Total Reads\tPF Reads\t% Reads Identified (PF)\tCV\tMin\tMax\n" +
	"1200\t1000\t95.5\t0.1\t40\t60\n" +
	"\n" +
	"Index Number\tSample Id\tProject\tIndex 1 (I7)\tIndex 2 (I5)\t% Reads Identified (PF)\n" +
	"1\tSample 1.A\tproj\tTAAGGCGA\tGCGTAAGA\t60.004\n" +
	"2\tSample#2\tproj\tCGTACTAG\tCTCTCTAT\t35.5\n"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}
