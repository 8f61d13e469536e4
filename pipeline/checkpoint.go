package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// CheckpointFile is the name of the full run dump inside the checkpoint directory.
const CheckpointFile = "runMetadata.json"

type Checkpointer interface {
	Save(rc *RunContext) error
}

// JSONCheckpoint writes the whole RunContext to Dir/runMetadata.json and, for every
// sample with an output directory, the sample alone to <outdir>/<name>_metadata.json.
type JSONCheckpoint struct {
	Dir string
}

func (c JSONCheckpoint) Save(rc *RunContext) error {
	if err := writeJSON(filepath.Join(c.Dir, CheckpointFile), rc); err != nil {
		return err
	}
	for _, sample := range rc.Samples {
		if sample.General.OutputDirectory == "" {
			continue
		}
		path := filepath.Join(sample.General.OutputDirectory, sample.Name+"_metadata.json")
		if err := writeJSON(path, sample); err != nil {
			return err
		}
	}
	return nil
}

// writeJSON replaces path atomically so a crash never leaves half a checkpoint behind.
func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return err
	}
	if err = os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	_, err = tmp.Write(append(data, '\n'))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// LoadCheckpoint reads back a runMetadata.json.
func LoadCheckpoint(path string) (*RunContext, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rc RunContext
	if err = json.Unmarshal(data, &rc); err != nil {
		return nil, err
	}
	return &rc, nil
}
