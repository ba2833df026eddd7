package main

import (
	"github.com/spf13/cobra"
)

func newConfigCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the resolved configuration",
		Long: `Show the configuration after applying pubgen.yml, .env and the
PUBGEN_* environment variables.

The default output is YAML that can be saved as pubgen.yml. With --json,
paths are printed resolved against the project root.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfig(cmd, opts)
		},
	}
}

func runConfig(cmd *cobra.Command, opts *options) error {
	p, err := loadProject(cmd, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.jsonOutput {
		return outputJSON(out, ConfigResponse{
			Root:         p.root,
			Bibliography: p.cfg.BibliographyPath(p.root),
			JSONOutput:   p.cfg.JSONOutputPath(p.root),
			ScriptOutput: p.cfg.ScriptOutputPath(p.root),
			ImagesDir:    p.cfg.ImagesPath(p.root),
			DefaultImage: p.cfg.DefaultImage,
			ScriptGlobal: p.cfg.ScriptGlobal,
			LogLevel:     p.cfg.LogLevel,
		})
	}

	data, err := p.cfg.YAML()
	if err != nil {
		return err
	}
	outputHuman(out, "# root: %s\n", p.root)
	_, err = out.Write(data)
	return err
}
