package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/aimlgroup/pubgen/internal/bibtex"
	"github.com/aimlgroup/pubgen/internal/export"
	"github.com/aimlgroup/pubgen/internal/publication"
)

func newGenerateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Write publications.json and publications-data.js",
		Long: `Parse the bibliography and write both output files, replacing any
previous content.

Examples:
  pubgen generate
  pubgen generate --root ~/src/lab-site
  pubgen generate --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts)
		},
	}
}

func runGenerate(cmd *cobra.Command, opts *options) error {
	p, err := loadProject(cmd, opts)
	if err != nil {
		return err
	}

	entries, bibPath, err := p.parseBibliography()
	if err != nil {
		return err
	}
	p.log.Debug("parsed bibliography", "path", bibPath, "entries", len(entries))

	images := publication.NewImageResolver(p.cfg.ImagesPath(p.root), p.cfg.DefaultImage)
	records := publication.NewBuilder(images, p.log).Build(entries)

	jsonPath := p.cfg.JSONOutputPath(p.root)
	if err := export.WriteJSON(jsonPath, records); err != nil {
		return withExit(ExitError, err)
	}
	scriptPath := p.cfg.ScriptOutputPath(p.root)
	if err := export.WriteScript(scriptPath, p.cfg.ScriptGlobal, records); err != nil {
		return withExit(ExitError, err)
	}
	p.log.Debug("wrote outputs", "json", jsonPath, "script", scriptPath)

	if opts.jsonOutput {
		return outputJSON(cmd.OutOrStdout(), GenerateResponse{
			Status:       "ok",
			Publications: len(records),
			JSONOutput:   jsonPath,
			ScriptOutput: scriptPath,
		})
	}
	outputHuman(cmd.OutOrStdout(), "Wrote %d publications to %s\n", len(records), jsonPath)
	return nil
}

// parseBibliography reads the configured .bib file. A missing file is a
// configuration error; syntax errors are data errors and keep the parser's message.
func (p *project) parseBibliography() ([]bibtex.Entry, string, error) {
	path, err := p.cfg.RequireBibliography(p.root)
	if err != nil {
		return nil, "", withExit(ExitConfigError, err)
	}

	entries, err := bibtex.ParseFile(path)
	if err != nil {
		var perr *bibtex.ParseError
		if errors.As(err, &perr) {
			return nil, path, withExit(ExitDataError, err)
		}
		return nil, path, withExit(ExitError, err)
	}
	return entries, path, nil
}
