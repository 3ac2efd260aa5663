package config

import (
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Source struct {
		Dir string `yaml:"dir"`
	} `yaml:"source"`
	Output struct {
		Path   string `yaml:"path"`
		Pretty *bool  `yaml:"pretty"`
		DB     string `yaml:"db"`
	} `yaml:"output"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	var cfg Config
	cfg.Source.Dir = "."
	cfg.Output.Path = "public/data/xsd-index.json"
	return &cfg
}

// Load reads the YAML config, falling back to defaults when the file
// is absent, then applies .env and environment overrides.
func Load(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := Default()

	// 2. Load YAML config
	file, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	// 3. Override with environment variables if present
	if input := os.Getenv("XSDINDEX_INPUT"); input != "" {
		cfg.Source.Dir = input
	}
	if output := os.Getenv("XSDINDEX_OUTPUT"); output != "" {
		cfg.Output.Path = output
	}
	if db := os.Getenv("XSDINDEX_DB"); db != "" {
		cfg.Output.DB = db
	}

	return cfg, nil
}

// PrettyOutput reports whether JSON output should be indented;
// defaults to true when unset.
func (c *Config) PrettyOutput() bool {
	if c.Output.Pretty == nil {
		return true
	}
	return *c.Output.Pretty
}
