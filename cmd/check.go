package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/conneroisu/folio/internal/config"
	"github.com/conneroisu/folio/internal/content"
	ferrors "github.com/conneroisu/folio/internal/errors"
	"github.com/conneroisu/folio/internal/markdown"
	"github.com/conneroisu/folio/internal/site"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate content indexes and bodies",
	Long: `Validate every content category below the content root.

For each category the index must parse and match its schema, and every body it
references must exist, carry valid front matter and render. All problems are
reported, not just the first.

Examples:
  folio check
  folio check --content ./site`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := content.NewDirStore(cfg.Content.Root)
	if err != nil {
		return err
	}

	return checkContent(cmd.Context(), cmd.OutOrStdout(), cfg, store)
}

// checkContent reports each category on out and returns an error when any
// category has problems.
func checkContent(ctx context.Context, out io.Writer, cfg *config.Config, store *content.Store) error {
	sections, err := site.NewSections(cfg.Content)
	if err != nil {
		return err
	}

	pipeline := site.NewPipeline(store, markdown.NewRenderer(), nil)

	failed := 0
	for _, section := range sections.All() {
		entries, err := store.Check(section.Category)
		if err == nil {
			// Bodies load; make sure they also render.
			_, err = pipeline.Listing(ctx, section, section.Name(), site.All)
		}

		if err != nil {
			failed++
			fmt.Fprintf(out, "✗ %s (%s)\n", section.Name(), section.Category.IndexPath())
			for _, problem := range problems(err) {
				fmt.Fprintf(out, "    %s\n", problem)
			}
			continue
		}
		fmt.Fprintf(out, "✓ %s: %d entries\n", section.Name(), entries)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d categories have problems", failed, len(sections.All()))
	}
	return nil
}

// problems flattens a combined error into one line per problem.
func problems(err error) []string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var lines []string
		for _, inner := range joined.Unwrap() {
			lines = append(lines, problems(inner)...)
		}
		return lines
	}
	return []string{fmt.Sprintf("[%s] %v", ferrors.TypeOf(err), err)}
}
