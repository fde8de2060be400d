package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/benchdef/pkg/pipeline"
)

// graphOpts holds the command-line flags for the graph command.
type graphOpts struct {
	format   string
	detailed bool
	output   string
}

// graphCommand creates the graph command: render the extends hierarchy as
// a diagram.
func (c *CLI) graphCommand() *cobra.Command {
	flags := &resolveFlags{}
	opts := graphOpts{format: pipeline.FormatSVG}

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Render the inheritance tree as a diagram",
		Long: `Graph renders the extends relationships between definition entries as a
diagram. Templates are drawn dashed, and edges to missing parents are
marked. The diagram is built from the raw entries, so a hierarchy that
fails validation can still be drawn and inspected.

Formats: dot (Graphviz source), svg, png.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)

			if err := pipeline.ValidateFormat(opts.format); err != nil {
				return err
			}

			runner, err := c.newRunner(ctx, flags.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			popts := c.pipelineOptions(flags)
			popts.Format = opts.format
			popts.Detailed = opts.detailed

			doc, err := runner.LoadDocument(ctx, popts)
			if err != nil {
				return err
			}

			spin := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s diagram...", opts.format))
			spin.Start()
			data, hit, err := runner.DiagramWithCacheInfo(ctx, doc, popts)
			if err != nil {
				if spin.Cancelled() {
					spin.Stop()
					return ctx.Err()
				}
				spin.StopWithError("Rendering failed")
				return err
			}
			spin.Stop()

			out, err := openOutput(opts.output)
			if err != nil {
				return err
			}
			defer out.Close()
			if _, err := out.Write(data); err != nil {
				return err
			}

			if opts.output != "" {
				printSuccess("Rendered %d entries", len(doc.Entries))
				printFile(opts.output)
				printStats(len(doc.Entries), 0, hit)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&opts.format, "format", opts.format, "output format: dot, svg, or png")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include version and module labels")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")

	return cmd
}
