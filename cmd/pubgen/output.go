package main

import (
	"encoding/json"
	"fmt"
	"io"
)

// outputJSON writes a value as formatted JSON.
func outputJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// outputHuman writes a human-readable line.
func outputHuman(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, format, args...)
}

// reportError writes err in the selected format and returns its exit code.
// In JSON mode the error goes to stdout so callers parse a single stream.
func reportError(stdout, stderr io.Writer, jsonOutput bool, err error) int {
	if isQuiet(err) {
		return exitCode(err)
	}
	if jsonOutput {
		outputJSON(stdout, ErrorResponse{Error: err.Error()})
	} else {
		fmt.Fprintf(stderr, "error: %s\n", err)
	}
	return exitCode(err)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// GenerateResponse is the JSON response for a successful generate run.
type GenerateResponse struct {
	Status       string `json:"status"`
	Publications int    `json:"publications"`
	JSONOutput   string `json:"json_output"`
	ScriptOutput string `json:"script_output"`
}

// ConfigResponse is the JSON response for the config command.
// Paths are absolute.
type ConfigResponse struct {
	Root         string `json:"root"`
	Bibliography string `json:"bibliography"`
	JSONOutput   string `json:"json_output"`
	ScriptOutput string `json:"script_output"`
	ImagesDir    string `json:"images_dir"`
	DefaultImage string `json:"default_image"`
	ScriptGlobal string `json:"script_global"`
	LogLevel     string `json:"log_level"`
}
