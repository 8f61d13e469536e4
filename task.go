package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/exascience/pargo/parallel"
	simple_util "github.com/liserjrqlxue/simple-util"

	"github.com/liserjrqlxue/AssemblyPipeline/pipeline"
	"github.com/liserjrqlxue/AssemblyPipeline/record"
	"github.com/liserjrqlxue/AssemblyPipeline/runMetadata"
)

// task status values recorded under <task>.status
const (
	taskComplete = "complete"
	taskFailed   = "failed"
)

// Task is one row of the step table: an external script run once per sample or once
// per run.
type Task struct {
	TaskName    string
	TaskType    string
	TaskScript  string
	TaskArgs    []string
	TaskInfo    map[string]string
	Scripts     map[string]string
	BatchScript string

	local    string
	parallel int
}

// runCmd runs one generated shell script.
var runCmd = func(script string) error {
	return simple_util.RunCmd("bash", script)
}

func createTask(cfg map[string]string, local string) (*Task, error) {
	task := Task{
		TaskName:   cfg["name"],
		TaskInfo:   cfg,
		TaskType:   cfg["type"],
		TaskScript: filepath.Join(local, "script", cfg["name"]+".sh"),
		Scripts:    make(map[string]string),
		local:      local,
		parallel:   1,
	}
	if task.TaskName == "" {
		return nil, fmt.Errorf("step without name: %v", cfg)
	}
	switch task.TaskType {
	case "sample", "batch":
	case "":
		task.TaskType = "sample"
	default:
		return nil, fmt.Errorf("step %s: not support task type:%s", task.TaskName, task.TaskType)
	}
	for _, arg := range strings.Split(cfg["args"], ",") {
		if arg = strings.TrimSpace(arg); arg != "" {
			task.TaskArgs = append(task.TaskArgs, arg)
		}
	}
	if p := cfg["parallel"]; p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("step %s: parallel %q", task.TaskName, p)
		}
		task.parallel = n
	}
	return &task, nil
}

// parseStepCfg reads the step table. A missing table configures no external step.
func parseStepCfg(cfg, local string) (map[string]*Task, error) {
	var taskList = make(map[string]*Task)
	if !simple_util.FileExists(cfg) {
		log.Printf("step table %s not found, no external steps", cfg)
		return taskList, nil
	}
	cfgInfo, _ := simple_util.File2MapArray(cfg, "\t", nil)
	for _, item := range cfgInfo {
		if item["name"] == "" && item["type"] == "" {
			continue
		}
		task, err := createTask(item, local)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", cfg, err)
		}
		if _, ok := taskList[task.TaskName]; ok {
			return nil, fmt.Errorf("%s: dup step:%s", cfg, task.TaskName)
		}
		taskList[task.TaskName] = task
	}
	return taskList, nil
}

// Run is the stage function of the task.
func (task *Task) Run(rc *pipeline.RunContext) error {
	if err := task.CreateScripts(rc); err != nil {
		return err
	}
	switch task.TaskType {
	case "batch":
		err := task.runScript("batch", task.BatchScript)
		return task.record(rc.Results, task.BatchScript, err)
	default:
		return task.runSamples(rc)
	}
}

func (task *Task) runSamples(rc *pipeline.RunContext) error {
	if len(rc.Samples) == 0 {
		return nil
	}
	var batches = task.parallel
	if batches > len(rc.Samples) {
		batches = len(rc.Samples)
	}
	var errs = make([]error, len(rc.Samples))
	parallel.Range(0, len(rc.Samples), batches, func(low, high int) {
		for i := low; i < high; i++ {
			name := rc.Samples[i].Name
			errs[i] = task.runScript(name, task.Scripts[name])
		}
	})

	var failed []string
	var first error
	for i, sample := range rc.Samples {
		if err := task.record(sample.Results, task.Scripts[sample.Name], errs[i]); err != nil {
			failed = append(failed, sample.Name)
			if first == nil {
				first = err
			}
		}
	}
	if first != nil {
		return fmt.Errorf("%d of %d samples failed (%s): %w",
			len(failed), len(rc.Samples), strings.Join(failed, ","), first)
	}
	return nil
}

// record keeps the script and its outcome under <task> and hands back runErr.
func (task *Task) record(results *record.Record, script string, runErr error) error {
	var status = taskComplete
	if runErr != nil {
		status = taskFailed
	}
	if err := results.SetPath(task.TaskName+".script", script); err != nil {
		return err
	}
	if err := results.SetPath(task.TaskName+".status", status); err != nil {
		return err
	}
	return runErr
}

func (task *Task) runScript(jobName, script string) error {
	if simple_util.FileExists(script + ".complete") {
		log.Printf("skip complete script:%s", script)
		return nil
	}
	log.Printf("Run Task[%-7s:%s]:%s", task.TaskName, jobName, script)
	if err := runCmd(script); err != nil {
		return fmt.Errorf("Task[%s:%s] %s: %w", task.TaskName, jobName, script, err)
	}
	return os.WriteFile(script+".complete", nil, 0644)
}

func (task *Task) CreateScripts(rc *pipeline.RunContext) error {
	switch task.TaskType {
	case "batch":
		return task.createBatchScripts(rc)
	default:
		return task.createSampleScripts(rc)
	}
}

func (task *Task) createSampleScripts(rc *pipeline.RunContext) error {
	var threads = rc.Threads / task.parallel
	if threads < 1 {
		threads = 1
	}
	for _, sample := range rc.Samples {
		script := filepath.Join(rc.Path, sample.Name, "shell", task.TaskName+".sh")
		task.Scripts[sample.Name] = script
		var appendArgs []string
		appendArgs = append(appendArgs, rc.Path, task.local, sample.Name)
		for _, arg := range task.TaskArgs {
			value, err := sampleArg(rc, sample, arg, threads)
			if err != nil {
				return fmt.Errorf("step %s sample %s: %w", task.TaskName, sample.Name, err)
			}
			appendArgs = append(appendArgs, value)
		}
		if err := createShell(script, task.TaskScript, appendArgs...); err != nil {
			return err
		}
	}
	return nil
}

func (task *Task) createBatchScripts(rc *pipeline.RunContext) error {
	script := filepath.Join(rc.Path, "shell", task.TaskName+".sh")
	task.BatchScript = script
	var appendArgs []string
	appendArgs = append(appendArgs, rc.Path, task.local)
	for _, arg := range task.TaskArgs {
		switch arg {
		case "list":
			list := filepath.Join(rc.Path, "input.list")
			if err := writeInputList(list, rc.Samples); err != nil {
				return err
			}
			appendArgs = append(appendArgs, list)
		case "threads":
			appendArgs = append(appendArgs, strconv.Itoa(rc.Threads))
		default:
			value, ok := recordArg(rc.Results, "settings."+arg)
			if !ok {
				return fmt.Errorf("step %s: no value for argument %s", task.TaskName, arg)
			}
			appendArgs = append(appendArgs, value)
		}
	}
	return createShell(script, task.TaskScript, appendArgs...)
}

func sampleArg(rc *pipeline.RunContext, sample *runMetadata.Sample, arg string, threads int) (string, error) {
	switch arg {
	case "fq1", "fq2":
		i := 0
		if arg == "fq2" {
			i = 1
		}
		if i >= len(sample.General.FastqFiles) {
			return "", fmt.Errorf("no %s", arg)
		}
		return sample.General.FastqFiles[i], nil
	case "outdir":
		if sample.General.OutputDirectory == "" {
			return "", fmt.Errorf("no output directory")
		}
		return sample.General.OutputDirectory, nil
	case "threads":
		return strconv.Itoa(threads), nil
	}
	if value, ok := recordArg(sample.Results, arg); ok {
		return value, nil
	}
	if value, ok := recordArg(rc.Results, "settings."+arg); ok {
		return value, nil
	}
	return "", fmt.Errorf("no value for argument %s", arg)
}

// recordArg formats the leaf at path as a single shell argument.
func recordArg(r *record.Record, path string) (string, bool) {
	v, ok := r.GetPath(path)
	if !ok {
		return "", false
	}
	switch x := v.(type) {
	case *record.Record:
		return "", false
	case []string:
		return strings.Join(x, ","), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	default:
		return fmt.Sprint(x), true
	}
}

// writeInputList writes the sample list of a run: sampleID fq1 fq2, as read by -input.
func writeInputList(fileName string, samples []*runMetadata.Sample) error {
	var lines = []string{"sampleID\tfq1\tfq2"}
	for _, sample := range samples {
		var fq = append([]string{}, sample.General.FastqFiles...)
		for len(fq) < 2 {
			fq = append(fq, "")
		}
		lines = append(lines, strings.Join([]string{sample.Name, fq[0], fq[1]}, "\t"))
	}
	return os.WriteFile(fileName, []byte(strings.Join(lines, "\n")+"\n"), 0644)
}

// unusedSteps lists the step names no stage picked up.
func unusedSteps(taskList map[string]*Task, used map[string]bool) []string {
	var unused []string
	for name := range taskList {
		if !used[name] {
			unused = append(unused, name)
		}
	}
	sort.Strings(unused)
	return unused
}
