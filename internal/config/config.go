package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/mcncl/jflat/internal/document"
	"github.com/mcncl/jflat/internal/errors"
	"gopkg.in/yaml.v3"
)

// Line ending names accepted in csv.line_ending
const (
	LineEndingLF   = "lf"
	LineEndingCRLF = "crlf"
)

// Config represents the complete configuration for jflat
type Config struct {
	RemoveNodes bool            `yaml:"remove_nodes"`
	Flat        FlatConfig      `yaml:"flat"`
	CSV         CSVConfig       `yaml:"csv"`
	Views       map[string]View `yaml:"views"`
}

// FlatConfig controls the flat dump
type FlatConfig struct {
	Separator string `yaml:"separator"`
	// EOLReplacement replaces line feeds inside values when set
	EOLReplacement *string `yaml:"eol_replacement"`
}

// CSVConfig controls CSV output
type CSVConfig struct {
	Separator  string `yaml:"separator"`
	LineEnding string `yaml:"line_ending"`
}

// View is a named denormalization. Fields left out of the YAML stay nil.
type View struct {
	Entry      *string   `yaml:"entry"`
	Properties []*string `yaml:"properties"`
	Separator  *string   `yaml:"separator"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		RemoveNodes: false,
		Flat: FlatConfig{
			Separator: "=",
		},
		CSV: CSVConfig{
			Separator:  ";",
			LineEnding: LineEndingLF,
		},
		Views: make(map[string]View),
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := NewConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.normalizeViews(); err != nil {
		return nil, err
	}

	if _, err := cfg.LineEnding(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".jflat.yml", ".jflat.yaml", "jflat.yml", "jflat.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root directory
			break
		}
		currentDir = parentDir
	}

	return ""
}

// ViewKey is the canonical form of a view name: DiskList, disk-list and
// disk_list all become disk_list.
func ViewKey(name string) string {
	return strcase.ToSnake(strings.TrimSpace(name))
}

// normalizeViews rekeys Views by ViewKey and rejects names that collide
func (c *Config) normalizeViews() error {
	names := make([]string, 0, len(c.Views))
	for name := range c.Views {
		names = append(names, name)
	}
	sort.Strings(names)

	views := make(map[string]View, len(c.Views))
	origin := make(map[string]string, len(c.Views))
	for _, name := range names {
		key := ViewKey(name)
		if previous, exists := origin[key]; exists {
			return errors.NewConfigError(
				fmt.Sprintf("views '%s' and '%s' have the same name", previous, name),
				errors.ErrInvalidArgument)
		}
		origin[key] = name
		views[key] = c.Views[name]
	}
	c.Views = views
	return nil
}

// View returns the view registered under name
func (c *Config) View(name string) (View, error) {
	view, ok := c.Views[ViewKey(name)]
	if !ok {
		message := fmt.Sprintf("view '%s' is not defined", name)
		if names := c.ViewNames(); len(names) > 0 {
			message += fmt.Sprintf(" (available: %s)", strings.Join(names, ", "))
		}
		return View{}, errors.NewConfigError(message, errors.ErrUnknownView)
	}
	return view, nil
}

// ViewNames returns the canonical names of all views, sorted
func (c *Config) ViewNames() []string {
	names := make([]string, 0, len(c.Views))
	for name := range c.Views {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Query converts the view into a document query
func (v View) Query() document.Query {
	return document.Query{
		Entry:      v.Entry,
		Properties: v.Properties,
		Separator:  v.Separator,
	}
}

// LineEnding returns the CSV line terminator named by csv.line_ending
func (c *Config) LineEnding() (string, error) {
	switch strings.ToLower(c.CSV.LineEnding) {
	case "", LineEndingLF:
		return "\n", nil
	case LineEndingCRLF:
		return "\r\n", nil
	default:
		return "", errors.NewConfigError(
			fmt.Sprintf("unknown line ending '%s', expected lf or crlf", c.CSV.LineEnding),
			errors.ErrInvalidArgument)
	}
}

// CLIOverrides holds the command-line values that take precedence over
// the config file. Empty strings and nil pointers leave the file value.
type CLIOverrides struct {
	RemoveNodes    bool
	FlatSeparator  string
	EOLReplacement *string
	CSVSeparator   string
	CRLF           bool
}

// LoadConfigWithCLI loads config with CLI argument precedence
func LoadConfigWithCLI(configPath string, cli CLIOverrides) (*Config, error) {
	cfg := NewConfig()

	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	// Boolean flags can only switch a setting on
	if cli.RemoveNodes {
		cfg.RemoveNodes = true
	}
	if cli.CRLF {
		cfg.CSV.LineEnding = LineEndingCRLF
	}
	if cli.FlatSeparator != "" {
		cfg.Flat.Separator = cli.FlatSeparator
	}
	if cli.EOLReplacement != nil {
		cfg.Flat.EOLReplacement = cli.EOLReplacement
	}
	if cli.CSVSeparator != "" {
		cfg.CSV.Separator = cli.CSVSeparator
	}

	return cfg, nil
}
