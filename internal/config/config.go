package config

import (
	"fmt"
	"os"

	"github.com/fxnlabs/launchbox/pkg/launch"
	"gopkg.in/yaml.v3"
)

const DefaultConfigFile = "launchbox.yaml"

type LoggerConfig struct {
	Verbosity string `yaml:"verbosity"`
	Encoding  string `yaml:"encoding"`
}

type BuildConfig struct {
	// Arch is the architecture generated code is resolved for, e.g. "sm_75".
	Arch    string `yaml:"arch"`
	Strict  bool   `yaml:"strict"`
	Workers int    `yaml:"workers"`
	Package string `yaml:"package"`
	Output  string `yaml:"output"`
}

type MetricsConfig struct {
	// Textfile, when set, receives the resolution metrics in the Prometheus
	// text format after every run.
	Textfile string `yaml:"textfile"`
}

type Config struct {
	Logger  LoggerConfig  `yaml:"logger"`
	Build   BuildConfig   `yaml:"build"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Logger: LoggerConfig{
			Verbosity: "info",
			Encoding:  "console",
		},
		Build: BuildConfig{
			Strict:  true,
			Workers: 4,
			Package: "kernels",
			Output:  "launch_gen.go",
		},
	}
}

// LoadConfig reads a YAML config file. Keys missing from the file keep
// their Default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := Default()
	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return config, nil
}

// Validate checks values that cannot be caught by YAML decoding.
func (c *Config) Validate() error {
	if c.Build.Workers < 1 {
		return fmt.Errorf("build.workers must be at least 1, got %d", c.Build.Workers)
	}
	switch c.Logger.Encoding {
	case "console", "json":
	default:
		return fmt.Errorf("logger.encoding must be console or json, got %q", c.Logger.Encoding)
	}
	if c.Build.Arch != "" {
		if _, err := c.Target(); err != nil {
			return err
		}
	}
	return nil
}

// Target parses Build.Arch. The fallback marker is not an architecture and
// is rejected.
func (c *Config) Target() (launch.Target, error) {
	if c.Build.Arch == "" {
		return 0, fmt.Errorf("build.arch is not set")
	}
	t, err := launch.ParseTarget(c.Build.Arch)
	if err != nil {
		return 0, fmt.Errorf("build.arch: %w", err)
	}
	if t.IsFallback() {
		return 0, fmt.Errorf("build.arch: %q is not an architecture", c.Build.Arch)
	}
	return t, nil
}
