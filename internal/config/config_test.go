package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// clearEnv blanks every PUBGEN_* override for the duration of a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvRoot, EnvBibliography, EnvJSONOutput, EnvScriptOutput, EnvImagesDir, EnvLogLevel} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func TestIsProjectRoot(t *testing.T) {
	tmpDir := t.TempDir()

	if IsProjectRoot(tmpDir) {
		t.Error("IsProjectRoot() = true for empty directory")
	}

	writeFile(t, filepath.Join(tmpDir, DefaultBibliography), "")
	if !IsProjectRoot(tmpDir) {
		t.Error("IsProjectRoot() = false with references.bib present")
	}

	other := t.TempDir()
	writeFile(t, filepath.Join(other, ConfigFile), "")
	if !IsProjectRoot(other) {
		t.Error("IsProjectRoot() = false with pubgen.yml present")
	}
}

func TestIsProjectRoot_DirNotFile(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.Mkdir(filepath.Join(tmpDir, DefaultBibliography), 0755); err != nil {
		t.Fatal(err)
	}
	if IsProjectRoot(tmpDir) {
		t.Error("IsProjectRoot() = true when references.bib is a directory")
	}
}

func TestFindProjectRoot(t *testing.T) {
	tmpDir := t.TempDir()
	root := filepath.Join(tmpDir, "site")
	nested := filepath.Join(root, "scripts", "deep")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(root, DefaultBibliography), "@misc{a}")

	for _, start := range []string{nested, root} {
		found, err := FindProjectRoot(start)
		if err != nil {
			t.Fatalf("FindProjectRoot(%q) error = %v", start, err)
		}
		if found != root {
			t.Errorf("FindProjectRoot(%q) = %q, want %q", start, found, root)
		}
	}
}

func TestFindProjectRoot_NotFound(t *testing.T) {
	_, err := FindProjectRoot(t.TempDir())
	if !errors.Is(err, ErrNoProjectRoot) {
		t.Errorf("FindProjectRoot() error = %v, want ErrNoProjectRoot", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()

	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := Default()
	if *cfg != *want {
		t.Errorf("Load() = %+v, want defaults %+v", cfg, want)
	}
	if got := cfg.JSONOutputPath(root); got != filepath.Join(root, "build", "publications.json") {
		t.Errorf("JSONOutputPath() = %q", got)
	}
	if got := cfg.ScriptOutputPath(root); got != filepath.Join(root, "build", "publications-data.js") {
		t.Errorf("ScriptOutputPath() = %q", got)
	}
	if got := cfg.ImagesPath(root); got != filepath.Join(root, "images") {
		t.Errorf("ImagesPath() = %q", got)
	}
	if cfg.ScriptGlobal != "window.AIML_PUBLICATIONS" {
		t.Errorf("ScriptGlobal = %q", cfg.ScriptGlobal)
	}
	if cfg.DefaultImage != "aiml2020small.png" {
		t.Errorf("DefaultImage = %q", cfg.DefaultImage)
	}
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	writeFile(t, ConfigPath(root), `
bibliography: data/lab.bib
json_output: /srv/site/pubs.json
images_dir: static/img
log_level: debug
`)

	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got, want := cfg.BibliographyPath(root), filepath.Join(root, "data", "lab.bib"); got != want {
		t.Errorf("BibliographyPath() = %q, want %q", got, want)
	}
	if got := cfg.JSONOutputPath(root); got != "/srv/site/pubs.json" {
		t.Errorf("JSONOutputPath() = %q, want absolute path kept", got)
	}
	if cfg.ScriptOutput != DefaultScriptOutput {
		t.Errorf("ScriptOutput = %q, want default", cfg.ScriptOutput)
	}
	if cfg.ImagesDir != "static/img" {
		t.Errorf("ImagesDir = %q", cfg.ImagesDir)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestLoad_EmptyFile(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	writeFile(t, ConfigPath(root), "")

	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if *cfg != *Default() {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{"not yaml", "bibliography: [unclosed", "parsing config"},
		{"unknown key", "bibliograhpy: typo.bib\n", "parsing config"},
		{"bad log level", "log_level: loud\n", "log_level"},
		{"empty path", "json_output: \"\"\n", "json_output"},
		{"empty global", "script_global: \"\"\n", "script_global"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			root := t.TempDir()
			writeFile(t, ConfigPath(root), tt.content)

			_, err := Load(root)
			if err == nil {
				t.Fatal("Load() should return error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Load() error = %q, want it to mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	writeFile(t, ConfigPath(root), "bibliography: from-file.bib\nimages_dir: file-images\n")
	writeFile(t, filepath.Join(root, EnvFile), "PUBGEN_BIBLIOGRAPHY=from-dotenv.bib\nPUBGEN_LOG_LEVEL=warn\n")
	t.Setenv(EnvImagesDir, "env-images")

	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Bibliography != "from-dotenv.bib" {
		t.Errorf("Bibliography = %q, want .env value", cfg.Bibliography)
	}
	if cfg.ImagesDir != "env-images" {
		t.Errorf("ImagesDir = %q, want environment value", cfg.ImagesDir)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want .env value", cfg.LogLevel)
	}
}

func TestLoad_ProcessEnvBeatsDotenv(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, EnvFile), "PUBGEN_JSON_OUTPUT=dotenv.json\n")
	t.Setenv(EnvJSONOutput, "process.json")

	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.JSONOutput != "process.json" {
		t.Errorf("JSONOutput = %q, want process.json", cfg.JSONOutput)
	}
}

func TestRequireBibliography(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	cfg := Default()

	_, err := cfg.RequireBibliography(root)
	if !errors.Is(err, ErrBibliographyNotFound) {
		t.Fatalf("RequireBibliography() error = %v, want ErrBibliographyNotFound", err)
	}
	if !strings.Contains(err.Error(), filepath.Join(root, DefaultBibliography)) {
		t.Errorf("error %q should name the resolved path", err)
	}

	writeFile(t, filepath.Join(root, DefaultBibliography), "")
	path, err := cfg.RequireBibliography(root)
	if err != nil {
		t.Fatalf("RequireBibliography() error = %v", err)
	}
	if path != filepath.Join(root, DefaultBibliography) {
		t.Errorf("RequireBibliography() = %q", path)
	}
}

func TestResolveRoot(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	got, err := ResolveRoot(dir)
	if err != nil || got != dir {
		t.Errorf("ResolveRoot(%q) = %q, %v", dir, got, err)
	}

	t.Setenv(EnvRoot, dir)
	got, err = ResolveRoot("")
	if err != nil || got != dir {
		t.Errorf("ResolveRoot(\"\") with %s = %q, %v", EnvRoot, got, err)
	}
}

func TestYAML_RoundTrip(t *testing.T) {
	clearEnv(t)
	cfg := Default()
	cfg.Bibliography = "lab.bib"

	data, err := cfg.YAML()
	if err != nil {
		t.Fatalf("YAML() error = %v", err)
	}
	if !strings.Contains(string(data), "bibliography: lab.bib") {
		t.Errorf("YAML() = %q", data)
	}

	root := t.TempDir()
	writeFile(t, ConfigPath(root), string(data))
	loaded, err := Load(root)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("Load() = %+v, want %+v", loaded, cfg)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}

	tests := []struct {
		path string
		want string
	}{
		{"", ""},
		{"/abs/path", "/abs/path"},
		{"relative/path", "relative/path"},
		{"~/pubs", filepath.Join(home, "pubs")},
	}
	for _, tt := range tests {
		if got := ExpandPath(tt.path); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestLoad_EmptyProcessEnvKeepsDotenv(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, EnvFile), "PUBGEN_BIBLIOGRAPHY=from-dotenv.bib\n")
	t.Setenv(EnvBibliography, "")

	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Bibliography != "from-dotenv.bib" {
		t.Errorf("Bibliography = %q, want %q", cfg.Bibliography, "from-dotenv.bib")
	}
}
