package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aimlgroup/pubgen/internal/check"
	"github.com/aimlgroup/pubgen/internal/publication"
)

func newCheckCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify bibliography integrity",
		Long: `Verify the bibliography without writing any output.

Reports entries without a citation key, citation keys and DOIs used more
than once, entry types shown as "Other", and image fields that point at
files missing from the images directory.

Exits with status 3 when issues are found.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts)
		},
	}
}

func runCheck(cmd *cobra.Command, opts *options) error {
	p, err := loadProject(cmd, opts)
	if err != nil {
		return err
	}

	entries, _, err := p.parseBibliography()
	if err != nil {
		return err
	}

	images := publication.NewImageResolver(p.cfg.ImagesPath(p.root), p.cfg.DefaultImage)
	result := check.Run(entries, images)

	out := cmd.OutOrStdout()
	if opts.jsonOutput {
		if err := outputJSON(out, result); err != nil {
			return err
		}
	} else {
		for _, issue := range result.Issues {
			outputHuman(out, "%s\n", formatIssueHuman(issue))
		}
		outputHuman(out, "%d entries, %d issues\n", result.Entries, len(result.Issues))
	}

	if !result.OK() {
		return exitQuietly(ExitDataError, fmt.Errorf("%d issues found", len(result.Issues)))
	}
	return nil
}

// formatIssueHuman formats an issue as a single line.
func formatIssueHuman(issue check.Issue) string {
	line := issue.Type
	if issue.Line > 0 {
		line = fmt.Sprintf("line %d: %s", issue.Line, line)
	}
	if issue.ID != "" {
		line += " " + issue.ID
	}
	if issue.DOI != "" {
		line += fmt.Sprintf(" %s (%v)", issue.DOI, issue.IDs)
	}
	if issue.Expected != "" {
		line += " expected " + issue.Expected
	}
	if issue.Reason != "" {
		line += ": " + issue.Reason
	}
	return line
}
