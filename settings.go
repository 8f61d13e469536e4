package main

import (
	"fmt"
	"os"

	simple_util "github.com/liserjrqlxue/simple-util"
	"gopkg.in/yaml.v3"

	"github.com/liserjrqlxue/AssemblyPipeline/pipeline"
)

// VersionCommand prints the version of one tool of the pipeline.
type VersionCommand struct {
	Name    string `yaml:"name"`
	Command string `yaml:"command"`
}

type Settings struct {
	// MemoryThreshold is the RAM in bytes the memory gated stages need.
	MemoryThreshold uint64   `yaml:"memoryThreshold"`
	MemoryGated     []string `yaml:"memoryGated"`
	// Optional stages log their failure and the run goes on.
	Optional []string         `yaml:"optional"`
	Versions []VersionCommand `yaml:"versions"`
}

func defaultSettings() *Settings {
	return &Settings{
		MemoryThreshold: pipeline.DefaultMemoryThreshold,
		MemoryGated:     []string{"clark"},
		Optional:        []string{"clark"},
	}
}

// loadSettings reads the yaml settings file; a missing file gives the defaults.
func loadSettings(fileName string) (*Settings, error) {
	var settings = defaultSettings()
	if !simple_util.FileExists(fileName) {
		return settings, nil
	}
	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, err
	}
	if err = yaml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("settings %s: %w", fileName, err)
	}
	for _, v := range settings.Versions {
		if v.Name == "" || v.Command == "" {
			return nil, fmt.Errorf("settings %s: version entry needs name and command", fileName)
		}
	}
	return settings, nil
}

func (settings *Settings) memoryGated(stage string) bool {
	return contains(settings.MemoryGated, stage)
}

func (settings *Settings) optional(stage string) bool {
	return contains(settings.Optional, stage)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
