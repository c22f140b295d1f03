// Package config loads application configuration from JSON or YAML files.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is a source from which application configuration can be loaded.
type Config interface {
	LoadConfig(c any) error
	Check() error
	Get(key string) (string, error)
}

// Load first ensures that the config source is valid and accessible. Then it
// loads the config into c.
func Load(cs Config, c any) error {
	if err := cs.Check(); err != nil {
		return err
	}
	return cs.LoadConfig(c)
}

// LoadConfigFromFile loads the file at filePath into appConfig, choosing
// the format by extension: .yaml and .yml are YAML, anything else JSON. The
// returned source answers Get for the top-level keys.
func LoadConfigFromFile(filePath string, appConfig any) (Config, error) {
	var cs Config
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		cs = &YAMLFile{ConfigFilePath: filePath}
	default:
		cs = &File{ConfigFilePath: filePath}
	}
	if err := Load(cs, appConfig); err != nil {
		return nil, fmt.Errorf("error loading config from %s: %w", filePath, err)
	}
	return cs, nil
}

// File is a JSON configuration file.
type File struct {
	ConfigFilePath string
	Config         map[string]any
}

func (f *File) Check() error {
	return checkPath(f.ConfigFilePath)
}

func (f *File) LoadConfig(appConfig any) error {
	data, err := os.ReadFile(f.ConfigFilePath)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, &f.Config); err != nil {
		return fmt.Errorf("parsing %s: %w", f.ConfigFilePath, err)
	}
	return json.Unmarshal(data, appConfig)
}

func (f *File) Get(key string) (string, error) {
	return get(f.Config, key)
}

// YAMLFile is a YAML configuration file. Struct fields are matched by their
// yaml tags.
type YAMLFile struct {
	ConfigFilePath string
	Config         map[string]any
}

func (f *YAMLFile) Check() error {
	return checkPath(f.ConfigFilePath)
}

func (f *YAMLFile) LoadConfig(appConfig any) error {
	data, err := os.ReadFile(f.ConfigFilePath)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, &f.Config); err != nil {
		return fmt.Errorf("parsing %s: %w", f.ConfigFilePath, err)
	}
	return yaml.Unmarshal(data, appConfig)
}

func (f *YAMLFile) Get(key string) (string, error) {
	return get(f.Config, key)
}

func checkPath(path string) error {
	if path == "" {
		return fmt.Errorf("configFilePath cannot be empty")
	}
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}
	if fi.IsDir() {
		return fmt.Errorf("config path %s is a directory", path)
	}
	return nil
}

type ValueNotStringError struct {
	Key   string
	Value any
}

func (e *ValueNotStringError) Error() string {
	return fmt.Sprintf("value for key %s is not a string: %v", e.Key, e.Value)
}

type KeyNotFoundError struct {
	Key string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("key %s not found in config", e.Key)
}

// get returns the value of a top-level key. Non-string values come back
// formatted with %v together with a *ValueNotStringError.
func get(m map[string]any, key string) (string, error) {
	value, ok := m[key]
	if !ok {
		return "", &KeyNotFoundError{Key: key}
	}
	if s, ok := value.(string); ok {
		return s, nil
	}
	return fmt.Sprintf("%v", value), &ValueNotStringError{Key: key, Value: value}
}
