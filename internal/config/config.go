// Package config handles project discovery and pubgen.yml configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/aimlgroup/pubgen/internal/export"
	"github.com/aimlgroup/pubgen/internal/logger"
	"github.com/aimlgroup/pubgen/internal/publication"
)

// Config represents project configuration stored in pubgen.yml.
// Relative paths are resolved against the project root.
type Config struct {
	Bibliography string `yaml:"bibliography"`  // BibTeX source
	JSONOutput   string `yaml:"json_output"`   // Indented JSON array
	ScriptOutput string `yaml:"script_output"` // Script-embedded copy of the array
	ImagesDir    string `yaml:"images_dir"`    // Directory probed for <cite>.<ext>
	DefaultImage string `yaml:"default_image"` // File name under images/ used as fallback
	ScriptGlobal string `yaml:"script_global"` // Variable assigned in the script output
	LogLevel     string `yaml:"log_level"`     // debug, info, warn, error
}

const (
	ConfigFile          = "pubgen.yml"
	DefaultBibliography = "references.bib"
	DefaultJSONOutput   = "build/publications.json"
	DefaultScriptOutput = "build/publications-data.js"
	DefaultImagesDir    = "images"
	DefaultLogLevel     = "info"
)

// Configuration errors.
var (
	ErrNoProjectRoot        = errors.New("no project root found (no pubgen.yml or references.bib)")
	ErrBibliographyNotFound = errors.New("BibTeX file not found")
	ErrEmptyPath            = errors.New("path must not be empty")
	ErrEmptyScriptGlobal    = errors.New("script_global must not be empty")
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Bibliography: DefaultBibliography,
		JSONOutput:   DefaultJSONOutput,
		ScriptOutput: DefaultScriptOutput,
		ImagesDir:    DefaultImagesDir,
		DefaultImage: publication.DefaultImage,
		ScriptGlobal: export.DefaultScriptGlobal,
		LogLevel:     DefaultLogLevel,
	}
}

// ConfigPath returns the path to pubgen.yml from a root path.
func ConfigPath(root string) string {
	return filepath.Join(root, ConfigFile)
}

// IsProjectRoot reports whether dir holds a pubgen.yml or a references.bib.
func IsProjectRoot(dir string) bool {
	for _, name := range []string{ConfigFile, DefaultBibliography} {
		if info, err := os.Stat(filepath.Join(dir, name)); err == nil && !info.IsDir() {
			return true
		}
	}
	return false
}

// FindProjectRoot walks up from start to the first project root.
func FindProjectRoot(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsProjectRoot(abs) {
			return abs, nil
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", ErrNoProjectRoot
		}
		abs = parent
	}
}

// Load reads configuration for the project at root. A missing pubgen.yml
// yields the defaults. Values from .env and the PUBGEN_* environment
// override the file.
func Load(root string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(ConfigPath(root))
	switch {
	case err == nil:
		if err := cfg.decode(data); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("reading config: %w", err)
	}

	env, err := readEnv(root)
	if err != nil {
		return nil, err
	}
	cfg.applyEnv(env)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate checks that every path is set and the log level is known.
func (c *Config) Validate() error {
	paths := []struct {
		key   string
		value string
	}{
		{"bibliography", c.Bibliography},
		{"json_output", c.JSONOutput},
		{"script_output", c.ScriptOutput},
		{"images_dir", c.ImagesDir},
		{"default_image", c.DefaultImage},
	}
	for _, p := range paths {
		if p.value == "" {
			return fmt.Errorf("%s: %w", p.key, ErrEmptyPath)
		}
	}
	if c.ScriptGlobal == "" {
		return ErrEmptyScriptGlobal
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level %q: %w", c.LogLevel, err)
	}
	return nil
}

// YAML encodes the configuration in pubgen.yml form.
func (c *Config) YAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return buf.Bytes(), nil
}

// Resolve returns path made absolute against root. ~ is expanded first.
func Resolve(root, path string) string {
	path = ExpandPath(path)
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(root, path)
}

// BibliographyPath returns the resolved path of the BibTeX file.
func (c *Config) BibliographyPath(root string) string {
	return Resolve(root, c.Bibliography)
}

// JSONOutputPath returns the resolved path of the JSON output.
func (c *Config) JSONOutputPath(root string) string {
	return Resolve(root, c.JSONOutput)
}

// ScriptOutputPath returns the resolved path of the script output.
func (c *Config) ScriptOutputPath(root string) string {
	return Resolve(root, c.ScriptOutput)
}

// ImagesPath returns the resolved images directory.
func (c *Config) ImagesPath(root string) string {
	return Resolve(root, c.ImagesDir)
}

// RequireBibliography returns the resolved BibTeX path, or
// ErrBibliographyNotFound naming that path if no such file exists.
func (c *Config) RequireBibliography(root string) (string, error) {
	path := c.BibliographyPath(root)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("%w at %s", ErrBibliographyNotFound, path)
	}
	return path, nil
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}
