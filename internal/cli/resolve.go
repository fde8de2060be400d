package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/benchdef/pkg/errors"
	"github.com/matzehuels/benchdef/pkg/framework"
)

// resolveCommand creates the resolve command: load definition files, apply
// inheritance and defaults, and write the catalog as JSON.
func (c *CLI) resolveCommand() *cobra.Command {
	flags := &resolveFlags{}
	var output string

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve definition files into a catalog",
		Long: `Resolve loads framework definition files, applies inheritance and
defaults, and writes the fully resolved catalog as JSON.

Examples:
  benchdef resolve                                  # resources/frameworks.yaml to stdout
  benchdef resolve -f frameworks.yaml -o catalog.json
  benchdef resolve -f defs/ --image-author myorg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)

			result, err := c.runPipeline(ctx, flags)
			if err != nil {
				return err
			}

			out, err := openOutput(output)
			if err != nil {
				return err
			}
			defer out.Close()

			if err := framework.WriteJSON(result.Catalog, out); err != nil {
				return err
			}

			// Status decorations only when stdout is free for them.
			if output != "" {
				printSuccess("Resolved %d frameworks", result.Catalog.Len())
				printFile(output)
				printStats(result.Stats.EntryCount, result.Catalog.Len(), result.CacheInfo.CatalogHit)
				printNextStep("Inspect one", "benchdef get <name>")
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")

	return cmd
}

// validateCommand creates the validate command: run full resolution and
// report every broken entry without writing a catalog.
func (c *CLI) validateCommand() *cobra.Command {
	// Validation always resolves fresh.
	flags := &resolveFlags{noCache: true}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check definition files for resolution errors",
		Long: `Validate loads definition files and runs full resolution, reporting
every broken entry at once: unknown parents, inheritance cycles, missing
versions, and malformed entries.

The exit status is non-zero when any entry fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)

			result, err := c.runPipeline(ctx, flags)
			if err != nil {
				return reportValidation(err)
			}

			printSuccess("All definitions valid")
			printStats(result.Stats.EntryCount, result.Catalog.Len(), false)
			return nil
		},
	}

	flags.registerSources(cmd)
	return cmd
}

// reportValidation prints each definition error on its own line and
// returns a terse error for the exit status.
func reportValidation(err error) error {
	var list *errors.List
	if stderrors.As(err, &list) {
		for _, e := range list.Errs {
			printError("%s", errors.UserMessage(e))
		}
		return fmt.Errorf("%d invalid entries", len(list.Errs))
	}
	printError("%s", errors.UserMessage(err))
	return stderrors.New("validation failed")
}

// nopCloser wraps an io.Writer with a no-op Close method.
// It is used to make os.Stdout compatible with io.WriteCloser.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty, it returns os.Stdout wrapped in nopCloser.
// Otherwise, it creates the file at path, overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
