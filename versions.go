package main

import (
	"os/exec"
	"strings"

	"github.com/liserjrqlxue/AssemblyPipeline/pipeline"
)

// versionCommand runs a shell command and returns its combined output.
var versionCommand = func(command string) (string, error) {
	out, err := exec.Command("bash", "-c", command).CombinedOutput()
	return string(out), err
}

// recordVersions stores the first output line of every version command under
// versions.<name>. A tool that cannot report its version is recorded as NA.
func recordVersions(rc *pipeline.RunContext, commands []VersionCommand) error {
	if err := rc.Results.SetPath("versions.pipeline", version); err != nil {
		return err
	}
	for _, v := range commands {
		var line = "NA"
		out, err := versionCommand(v.Command)
		if err == nil {
			if first := strings.TrimSpace(strings.SplitN(strings.TrimSpace(out), "\n", 2)[0]); first != "" {
				line = first
			}
		}
		if err := rc.Results.SetPath("versions."+v.Name, line); err != nil {
			return err
		}
	}
	return nil
}
