// Package suite loads benchmark suite definitions: the YAML task lists
// that pair OpenML tasks with run constraints. Suites describe what a
// benchmark run would execute; running tasks is out of scope here.
package suite

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/benchdef/pkg/errors"
)

// Constraint defaults applied to tasks that do not set their own.
const (
	DefaultMaxRuntimeSeconds = 600
	DefaultCores             = -1 // all available
	DefaultFolds             = 10
	DefaultMaxMemSizeMB      = -1 // no limit
)

// Defaults holds the constraint values filled into tasks that omit them.
// The zero value is not usable; start from [StandardDefaults].
type Defaults struct {
	MaxRuntimeSeconds int
	Cores             int
	Folds             int
	MaxMemSizeMB      int
	Seed              int64 // 0 means the runner picks a seed per run
}

// StandardDefaults returns the stock constraint defaults.
func StandardDefaults() Defaults {
	return Defaults{
		MaxRuntimeSeconds: DefaultMaxRuntimeSeconds,
		Cores:             DefaultCores,
		Folds:             DefaultFolds,
		MaxMemSizeMB:      DefaultMaxMemSizeMB,
	}
}

// Task is a single validated benchmark task with all defaults applied.
type Task struct {
	Name              string   `json:"name"`
	OpenMLTaskID      int64    `json:"openml_task_id"`
	Metrics           []string `json:"metric"`
	MaxRuntimeSeconds int      `json:"max_runtime_seconds"`
	Cores             int      `json:"cores"`
	Folds             int      `json:"folds"`
	MaxMemSizeMB      int      `json:"max_mem_size_mb"`
	Seed              int64    `json:"seed"`
	Enabled           bool     `json:"enabled"`
}

// PrimaryMetric returns the first configured metric, the one scores are
// optimized and reported against.
func (t Task) PrimaryMetric() string {
	if len(t.Metrics) == 0 {
		return ""
	}
	return t.Metrics[0]
}

// Suite is a named, validated collection of benchmark tasks.
type Suite struct {
	Name   string `json:"name"`
	Tasks  []Task `json:"tasks"`
	Hash   string `json:"hash,omitempty"`
	Source string `json:"source,omitempty"`
}

// EnabledTasks returns the tasks not switched off with enabled: false.
func (s *Suite) EnabledTasks() []Task {
	var tasks []Task
	for _, t := range s.Tasks {
		if t.Enabled {
			tasks = append(tasks, t)
		}
	}
	return tasks
}

// TaskNames returns the names of all tasks in definition order.
func (s *Suite) TaskNames() []string {
	names := make([]string, len(s.Tasks))
	for i, t := range s.Tasks {
		names[i] = t.Name
	}
	return names
}

// Parse decodes a suite payload: a YAML sequence of task mappings. Every
// malformed task is collected and reported in one aggregated error, and
// mandatory properties (name, openml_task_id, metric) are checked the same
// way: all missing properties of a task appear in its error.
func Parse(name string, data []byte, defaults Defaults) (*Suite, error) {
	s := &Suite{Name: name, Hash: hashBytes(data)}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidDocument, "suite %q is empty", name)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "failed to decode suite %q", name)
	}
	if len(root.Content) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidDocument, "suite %q is empty", name)
	}
	top := root.Content[0]
	if top.Kind != yaml.SequenceNode {
		return nil, errors.New(errors.ErrCodeInvalidDocument,
			"suite %q must be a sequence of task definitions", name)
	}

	var errs errors.List
	tasks := make([]Task, 0, len(top.Content))
	for i, node := range top.Content {
		task, err := parseTask(i, node, defaults)
		if err != nil {
			errs.Append(err)
			continue
		}
		tasks = append(tasks, task)
	}
	if err := errs.ErrOrNil(); err != nil {
		return nil, err
	}
	s.Tasks = tasks
	return s, nil
}

func parseTask(index int, node *yaml.Node, defaults Defaults) (Task, error) {
	if node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	if node.Kind != yaml.MappingNode {
		return Task{}, errors.New(errors.ErrCodeMalformedEntry, "task #%d must be a mapping", index+1)
	}

	var doc taskDoc
	if err := node.Decode(&doc); err != nil {
		return Task{}, errors.Wrap(errors.ErrCodeMalformedEntry, err, "task #%d has malformed fields", index+1)
	}

	label := doc.Name
	if label == "" {
		label = fmt.Sprintf("#%d", index+1)
	}

	var missing []string
	if doc.Name == "" {
		missing = append(missing, "name")
	}
	if doc.OpenMLTaskID == nil {
		missing = append(missing, "openml_task_id")
	}
	if len(doc.Metric) == 0 {
		missing = append(missing, "metric")
	}
	if len(missing) > 0 {
		return Task{}, errors.New(errors.ErrCodeMalformedEntry,
			"task %s is missing mandatory properties: %s", label, strings.Join(missing, ", "))
	}
	if err := errors.ValidateEntryName(doc.Name); err != nil {
		return Task{}, errors.Wrap(errors.ErrCodeMalformedEntry, err, "task %s has an invalid name", label)
	}

	task := Task{
		Name:              doc.Name,
		OpenMLTaskID:      *doc.OpenMLTaskID,
		Metrics:           doc.Metric,
		MaxRuntimeSeconds: defaults.MaxRuntimeSeconds,
		Cores:             defaults.Cores,
		Folds:             defaults.Folds,
		MaxMemSizeMB:      defaults.MaxMemSizeMB,
		Seed:              defaults.Seed,
		Enabled:           true,
	}
	if doc.MaxRuntimeSeconds != nil {
		task.MaxRuntimeSeconds = *doc.MaxRuntimeSeconds
	}
	if doc.Cores != nil {
		task.Cores = *doc.Cores
	}
	if doc.Folds != nil {
		task.Folds = *doc.Folds
	}
	if doc.MaxMemSizeMB != nil {
		task.MaxMemSizeMB = *doc.MaxMemSizeMB
	}
	if doc.Seed != nil {
		task.Seed = *doc.Seed
	}
	if doc.Enabled != nil {
		task.Enabled = *doc.Enabled
	}
	return task, nil
}

// Load locates and parses a suite definition. A name that is not an
// existing file is looked up as {dir}/{name}.yaml in each search
// directory, mirroring how benchmark names map onto definition files.
func Load(name string, searchDirs []string, defaults Defaults) (*Suite, error) {
	path := ""
	suiteName := name

	if _, err := os.Stat(name); err == nil {
		path = name
		base := filepath.Base(name)
		suiteName = strings.TrimSuffix(base, filepath.Ext(base))
	} else {
		for _, dir := range searchDirs {
			for _, ext := range []string{".yaml", ".yml"} {
				candidate := filepath.Join(dir, name+ext)
				if _, err := os.Stat(candidate); err == nil {
					path = candidate
					break
				}
			}
			if path != "" {
				break
			}
		}
	}
	if path == "" {
		return nil, errors.New(errors.ErrCodeFileNotFound,
			"suite %q not found in %s", name, strings.Join(searchDirs, ", "))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "failed to read suite %s", path)
	}
	s, err := Parse(suiteName, data, defaults)
	if err != nil {
		return nil, err
	}
	s.Source = filepath.Clean(path)
	return s, nil
}

// taskDoc is the YAML decoding shape of a task. Optional numeric fields
// use pointers so an explicit zero is distinguishable from an absent one.
type taskDoc struct {
	Name              string     `yaml:"name"`
	OpenMLTaskID      *int64     `yaml:"openml_task_id"`
	Metric            metricList `yaml:"metric"`
	MaxRuntimeSeconds *int       `yaml:"max_runtime_seconds"`
	Cores             *int       `yaml:"cores"`
	Folds             *int       `yaml:"folds"`
	MaxMemSizeMB      *int       `yaml:"max_mem_size_mb"`
	Seed              *int64     `yaml:"seed"`
	Enabled           *bool      `yaml:"enabled"`
}

// metricList accepts either a single metric name or a sequence of them.
type metricList []string

func (m *metricList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			*m = nil
			return nil
		}
		*m = metricList{node.Value}
		return nil
	case yaml.SequenceNode:
		items := make(metricList, 0, len(node.Content))
		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode {
				return fmt.Errorf("metric entries must be scalars")
			}
			items = append(items, item.Value)
		}
		*m = items
		return nil
	default:
		return fmt.Errorf("metric must be a scalar or a sequence")
	}
}

func hashBytes(data []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(data))
}
