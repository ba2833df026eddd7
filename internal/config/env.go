package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

const (
	// EnvFile is read from the project root when present.
	EnvFile = ".env"

	// EnvRoot names the project root when --root is not given.
	EnvRoot = "PUBGEN_ROOT"

	EnvBibliography = "PUBGEN_BIBLIOGRAPHY"
	EnvJSONOutput   = "PUBGEN_JSON_OUTPUT"
	EnvScriptOutput = "PUBGEN_SCRIPT_OUTPUT"
	EnvImagesDir    = "PUBGEN_IMAGES_DIR"
	EnvLogLevel     = "PUBGEN_LOG_LEVEL"
)

// ResolveRoot picks the project root: the explicit value if given, then
// $PUBGEN_ROOT, then the nearest project root above the working directory,
// and finally the working directory itself.
func ResolveRoot(explicit string) (string, error) {
	if explicit == "" {
		explicit = os.Getenv(EnvRoot)
	}
	if explicit != "" {
		abs, err := filepath.Abs(ExpandPath(explicit))
		if err != nil {
			return "", fmt.Errorf("resolving root: %w", err)
		}
		return abs, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}
	root, err := FindProjectRoot(cwd)
	if errors.Is(err, ErrNoProjectRoot) {
		return filepath.Abs(cwd)
	}
	return root, err
}

// readEnv merges <root>/.env with the process environment. Non-empty
// process variables win, matching godotenv.Load. An empty variable counts
// as unset so it cannot mask the .env value.
func readEnv(root string) (map[string]string, error) {
	env := map[string]string{}

	path := filepath.Join(root, EnvFile)
	if _, err := os.Stat(path); err == nil {
		values, err := godotenv.Read(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", EnvFile, err)
		}
		env = values
	}

	for _, key := range []string{EnvBibliography, EnvJSONOutput, EnvScriptOutput, EnvImagesDir, EnvLogLevel} {
		if v := os.Getenv(key); v != "" {
			env[key] = v
		}
	}
	return env, nil
}

func (c *Config) applyEnv(env map[string]string) {
	set := func(key string, dst *string) {
		if v := env[key]; v != "" {
			*dst = v
		}
	}
	set(EnvBibliography, &c.Bibliography)
	set(EnvJSONOutput, &c.JSONOutput)
	set(EnvScriptOutput, &c.ScriptOutput)
	set(EnvImagesDir, &c.ImagesDir)
	set(EnvLogLevel, &c.LogLevel)
}
