// Package config loads and persists task definitions from cue.toml files:
// a project-local cue.toml in the working directory, or the global store
// under the user config directory.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// LocalFile is the project-local task file name.
const LocalFile = "cue.toml"

var (
	// ErrTaskNotFound reports a task name absent from the store.
	ErrTaskNotFound = errors.New("task not found")
	// ErrTaskExists reports an add or rename that would overwrite a task.
	ErrTaskExists = errors.New("task already exists")
	// ErrNoConfig reports that neither a local cue.toml nor the global
	// flag selected a task source.
	ErrNoConfig = errors.New("no 'cue.toml' found")
)

// Task is one saved watch/run pair.
type Task struct {
	Watch    []string `toml:"watch,omitempty"`
	Run      string   `toml:"run"`
	Ext      []string `toml:"ext,omitempty"`
	Debounce int      `toml:"debounce,omitempty"`
}

// Config is the full task store: an optional default task name plus the
// named tasks.
type Config struct {
	Default string          `toml:"default,omitempty"`
	Tasks   map[string]Task `toml:"tasks"`
}

// TaskNames returns the task names in sorted order.
func (c *Config) TaskNames() []string {
	names := make([]string, 0, len(c.Tasks))
	for name := range c.Tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup finds a task by name.
func (c *Config) Lookup(name string) (Task, error) {
	task, ok := c.Tasks[name]
	if !ok {
		return Task{}, fmt.Errorf("%w: %q", ErrTaskNotFound, name)
	}
	return task, nil
}

// GlobalPath resolves the global store location, honoring XDG overrides.
func GlobalPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config directory: %w", err)
	}
	return filepath.Join(base, "cue", "cue.toml"), nil
}

// LoadFile decodes one cue.toml.
func LoadFile(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}
	if cfg.Tasks == nil {
		cfg.Tasks = map[string]Task{}
	}
	return &cfg, nil
}

// LoadGlobal reads the global store. A missing file is an empty store, not
// an error, so first use needs no setup step.
func LoadGlobal() (*Config, error) {
	path, err := GlobalPath()
	if err != nil {
		return nil, err
	}
	cfg, err := LoadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{Tasks: map[string]Task{}}, nil
		}
		return nil, err
	}
	return cfg, nil
}

// SaveGlobal writes the global store, creating its directory on demand.
func SaveGlobal(cfg *Config) error {
	path, err := GlobalPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	defer file.Close()
	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}

// Resolve picks the task source for a watch session: the global store when
// asked for explicitly, otherwise a project-local cue.toml, otherwise the
// global store as fallback. The returned source names what was loaded, for
// display.
func Resolve(global bool) (*Config, string, error) {
	if global {
		cfg, err := LoadGlobal()
		return cfg, "global tasks", err
	}
	if _, err := os.Stat(LocalFile); err == nil {
		cfg, err := LoadFile(LocalFile)
		return cfg, "'" + LocalFile + "'", err
	}
	cfg, err := LoadGlobal()
	return cfg, "global tasks", err
}

// AddTask inserts a task into the store, rejecting duplicates.
func (c *Config) AddTask(name string, task Task) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("task name is required")
	}
	if _, ok := c.Tasks[name]; ok {
		return fmt.Errorf("%w: %q", ErrTaskExists, name)
	}
	if c.Tasks == nil {
		c.Tasks = map[string]Task{}
	}
	c.Tasks[name] = task
	return nil
}

// RemoveTask deletes a task by name.
func (c *Config) RemoveTask(name string) error {
	if _, ok := c.Tasks[name]; !ok {
		return fmt.Errorf("%w: %q", ErrTaskNotFound, name)
	}
	delete(c.Tasks, name)
	if c.Default == name {
		c.Default = ""
	}
	return nil
}

// EditTask overwrites the watch scope and/or run string of an existing
// task. Empty fields keep their current value; at least one must be
// provided. A task scopes by paths or by extensions, never both, so
// supplying one mode clears the other.
func (c *Config) EditTask(name string, watchPaths []string, run string, ext []string) error {
	task, ok := c.Tasks[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrTaskNotFound, name)
	}
	if len(watchPaths) == 0 && strings.TrimSpace(run) == "" && len(ext) == 0 {
		return errors.New("nothing to edit: provide watch paths, a run command, or extensions")
	}
	if len(watchPaths) > 0 && len(ext) > 0 {
		return errors.New("watch paths and extensions are mutually exclusive; pick one")
	}
	if len(watchPaths) > 0 {
		task.Watch = watchPaths
		task.Ext = nil
	}
	if len(ext) > 0 {
		task.Ext = ext
		task.Watch = nil
	}
	if strings.TrimSpace(run) != "" {
		task.Run = run
	}
	c.Tasks[name] = task
	return nil
}

// RenameTask moves a task to a new name, updating the default pointer when
// it referenced the old name.
func (c *Config) RenameTask(oldName, newName string) error {
	task, ok := c.Tasks[oldName]
	if !ok {
		return fmt.Errorf("%w: %q", ErrTaskNotFound, oldName)
	}
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return errors.New("new task name is required")
	}
	if _, ok := c.Tasks[newName]; ok {
		return fmt.Errorf("%w: %q", ErrTaskExists, newName)
	}
	delete(c.Tasks, oldName)
	c.Tasks[newName] = task
	if c.Default == oldName {
		c.Default = newName
	}
	return nil
}
