package internal

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Definition is the on-disk fixture description. Zero values leave the
// corresponding defaults untouched.
//
//	database: inventory
//	timeout: 90s
//	data_dir: testdata
//	data:
//	  - schema.sql
//	  - seed.sql
//	sql:
//	  - INSERT INTO users (name) VALUES ('admin')
type Definition struct {
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Host            string        `yaml:"host"`
	Timeout         time.Duration `yaml:"timeout"`
	PollInterval    time.Duration `yaml:"poll_interval"`
	BaseImage       string        `yaml:"base_image"`
	PostgresVersion string        `yaml:"postgres_version"`
	Image           string        `yaml:"image"`
	DataDir         string        `yaml:"data_dir"`
	Data            []string      `yaml:"data"`
	SQL             []string      `yaml:"sql"`
	Template        string        `yaml:"template"`
	Keep            bool          `yaml:"keep"`
}

// LoadDefinition reads a fixture definition file. Relative data_dir and
// template paths are resolved against the directory holding the file, so a
// definition can sit next to the tests that use it.
func LoadDefinition(path string) (Definition, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, fmt.Errorf("failed to read fixture definition %q: %w\nCheck that the file exists and is readable", path, err)
	}

	var definition Definition
	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	if err := decoder.Decode(&definition); err != nil {
		return Definition{}, fmt.Errorf("failed to parse fixture definition %q: %w\nCheck the YAML syntax and field names", path, err)
	}

	base := filepath.Dir(path)
	if definition.DataDir != "" && !filepath.IsAbs(definition.DataDir) {
		definition.DataDir = filepath.Join(base, definition.DataDir)
	}
	if definition.DataDir == "" && len(definition.Data) > 0 {
		definition.DataDir = filepath.Join(base, DefaultDataDir)
	}
	if definition.Template != "" && !filepath.IsAbs(definition.Template) {
		definition.Template = filepath.Join(base, definition.Template)
	}

	return definition, nil
}

// Apply copies every non-zero field onto config.
func (d Definition) Apply(config *Config) {
	if d.Database != "" {
		config.DatabaseName = DatabaseName(d.Database)
	}
	if d.User != "" {
		config.User = d.User
	}
	if d.Host != "" {
		config.Host = d.Host
	}
	if d.Timeout != 0 {
		config.Timeout = d.Timeout
	}
	if d.PollInterval != 0 {
		config.PollInterval = d.PollInterval
	}
	if d.BaseImage != "" {
		config.BaseImage = d.BaseImage
	}
	if d.PostgresVersion != "" {
		config.PostgresVersion = d.PostgresVersion
	}
	if d.Image != "" {
		config.ImageName = ImageName(d.Image)
	}
	if d.DataDir != "" {
		config.DataDir = d.DataDir
	}
	if len(d.Data) > 0 {
		config.DataFiles = append([]string(nil), d.Data...)
	}
	if len(d.SQL) > 0 {
		config.SQL = append(Statements(nil), d.SQL...)
	}
	if d.Template != "" {
		config.TemplatePath = d.Template
	}
	if d.Keep {
		config.KeepContainer = true
	}
}
