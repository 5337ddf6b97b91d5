package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Sink drivers.
const (
	DriverFS     = "fs"
	DriverMemory = "memory"
	DriverS3     = "s3"
)

// Environment overrides.
const (
	EnvOutputDir  = "RESUME_RANDOMIZER_OUTPUT_DIR"
	EnvSinkBucket = "RESUME_RANDOMIZER_SINK_BUCKET"
)

// Config represents the application configuration.
type Config struct {
	TemplateDir        string       `json:"template_dir" yaml:"template_dir"`
	OutputDir          string       `json:"output_dir" yaml:"output_dir"`
	TimestampFilenames bool         `json:"timestamp_filenames,omitempty" yaml:"timestamp_filenames,omitempty"`
	CodebookXLSX       bool         `json:"codebook_xlsx,omitempty" yaml:"codebook_xlsx,omitempty"`
	Sink               SinkConfig   `json:"sink" yaml:"sink"`
	Pandoc             PandocConfig `json:"pandoc" yaml:"pandoc"`
}

// SinkConfig selects where generated documents are stored.
type SinkConfig struct {
	Driver    string `json:"driver" yaml:"driver"`
	Bucket    string `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	Region    string `json:"region,omitempty" yaml:"region,omitempty"`
	Endpoint  string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	Prefix    string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	PathStyle bool   `json:"path_style,omitempty" yaml:"path_style,omitempty"`
}

// PandocConfig holds pandoc-related configuration for PDF rendering.
type PandocConfig struct {
	TemplatePath string `json:"template_path,omitempty" yaml:"template_path,omitempty"`
	ClassFile    string `json:"class_file,omitempty" yaml:"class_file,omitempty"`
}

// DefaultPath is $HOME/.resume-randomizer/config.json.
func DefaultPath() (path string, err error) {
	var homeDir string
	homeDir, err = os.UserHomeDir()
	if err != nil {
		err = errors.Wrap(err, "failed to get user home directory")
		return path, err
	}
	path = filepath.Join(homeDir, ".resume-randomizer", "config.json")
	return path, err
}

// Load reads configuration from file with environment variable overrides. With an
// empty configPath the default location is used, and a missing default file yields
// the built-in defaults.
func Load(configPath string) (cfg Config, err error) {
	// Determine config file location
	path := configPath
	if path == "" {
		path, err = DefaultPath()
		if err != nil {
			return cfg, err
		}
	}

	// Read config file
	var data []byte
	data, err = os.ReadFile(path)
	switch {
	case err == nil:
		err = unmarshal(path, data, &cfg)
		if err != nil {
			return cfg, err
		}
	case os.IsNotExist(err) && configPath == "":
		err = nil
	case os.IsNotExist(err):
		err = errors.Errorf("config file not found: %s (run 'resume-randomizer init' to create)", path)
		return cfg, err
	default:
		err = errors.Wrapf(err, "failed to read config file: %s", path)
		return cfg, err
	}

	// Override with environment variables if set
	if dir := os.Getenv(EnvOutputDir); dir != "" {
		cfg.OutputDir = dir
	}
	if bucket := os.Getenv(EnvSinkBucket); bucket != "" {
		cfg.Sink.Bucket = bucket
	}

	err = cfg.Validate()
	if err != nil {
		err = errors.Wrap(err, "config validation failed")
		return cfg, err
	}

	return cfg, err
}

func isYAML(path string) (yes bool) {
	ext := strings.ToLower(filepath.Ext(path))
	yes = ext == ".yaml" || ext == ".yml"
	return yes
}

func unmarshal(path string, data []byte, cfg *Config) (err error) {
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		err = errors.Wrapf(err, "failed to parse config file: %s", path)
		return err
	}
	return err
}

// Validate fills defaults and checks that the sink settings are usable.
func (c *Config) Validate() (err error) {
	if c.TemplateDir == "" {
		c.TemplateDir = "."
	}

	if c.OutputDir == "" {
		c.OutputDir = "./resumes"
	}

	if c.Sink.Driver == "" {
		c.Sink.Driver = DriverFS
	}

	switch c.Sink.Driver {
	case DriverFS, DriverMemory:
	case DriverS3:
		if c.Sink.Bucket == "" {
			err = errors.Errorf("sink.bucket is required for the s3 driver (set in config or %s env var)", EnvSinkBucket)
			return err
		}
	default:
		err = errors.Errorf("unknown sink.driver %q (want fs, memory or s3)", c.Sink.Driver)
		return err
	}

	return err
}

// ValidatePandoc checks the settings needed to render PDFs.
func (c *Config) ValidatePandoc() (err error) {
	if c.Pandoc.TemplatePath == "" {
		err = errors.New("pandoc.template_path is required in config to render PDFs")
		return err
	}

	if c.Pandoc.ClassFile == "" {
		err = errors.New("pandoc.class_file is required in config to render PDFs")
		return err
	}

	return err
}

// InitConfig creates a default configuration file, as YAML when the path ends in .yaml or .yml.
func InitConfig(configPath string) (err error) {
	// Determine config file location
	path := configPath
	if path == "" {
		path, err = DefaultPath()
		if err != nil {
			return err
		}
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	err = os.MkdirAll(dir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create config directory: %s", dir)
		return err
	}

	// Check if file already exists
	_, err = os.Stat(path)
	if err == nil {
		err = errors.Errorf("config file already exists: %s", path)
		return err
	}

	var homeDir string
	homeDir, err = os.UserHomeDir()
	if err != nil {
		err = errors.Wrap(err, "failed to get user home directory")
		return err
	}

	defaultConfig := Config{
		TemplateDir: filepath.Join(homeDir, ".resume-randomizer", "templates"),
		OutputDir:   filepath.Join(homeDir, "Documents", "Resumes"),
		Sink: SinkConfig{
			Driver: DriverFS,
		},
		Pandoc: PandocConfig{
			TemplatePath: filepath.Join(homeDir, ".resume-randomizer", "resume-template.latex"),
			ClassFile:    filepath.Join(homeDir, ".resume-randomizer", "resume.cls"),
		},
	}

	// Write to file
	var data []byte
	if isYAML(path) {
		data, err = yaml.Marshal(defaultConfig)
	} else {
		data, err = json.MarshalIndent(defaultConfig, "", "  ")
	}
	if err != nil {
		err = errors.Wrap(err, "failed to marshal default config")
		return err
	}

	err = os.WriteFile(path, data, 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to write config file: %s", path)
		return err
	}

	return err
}
