package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/benchdef/internal/server"
	"github.com/matzehuels/benchdef/pkg/framework"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr       string
	importPath string
	storeKind  string
	mongoURI   string
}

// serveCommand creates the serve command: expose the catalog over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	flags := &resolveFlags{}
	opts := serveOpts{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog over an HTTP API",
		Long: `Serve starts an HTTP server exposing the resolved catalog, inheritance
diagrams, and published snapshots under /api/v1.

By default definitions are re-resolved per request (cached by content
hash), so file edits show up without restarts. With --import the server
instead serves a fixed catalog from a JSON export.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)

			deps := server.Deps{Logger: c.Logger}

			if opts.importPath != "" {
				catalog, err := framework.ImportJSON(opts.importPath)
				if err != nil {
					return err
				}
				deps.Frozen = catalog
			} else {
				runner, err := c.newRunner(ctx, flags.noCache)
				if err != nil {
					return err
				}
				defer runner.Close()
				deps.Runner = runner
				deps.Options = c.pipelineOptions(flags)
			}

			st, err := c.newStore(ctx, opts.storeKind, opts.mongoURI)
			if err != nil {
				return err
			}
			if st != nil {
				defer st.Close(context.Background())
				deps.Store = st
			}

			addr := opts.addr
			if addr == "" {
				addr = c.Config.Server.Addr
			}
			if addr == "" {
				addr = server.DefaultAddr
			}

			srv, err := server.New(server.Config{Addr: addr}, deps)
			if err != nil {
				return err
			}
			if err := srv.Start(ctx); err != nil {
				return err
			}

			printInfo("Listening on http://%s", srv.Addr())
			printNextStep("Try it", fmt.Sprintf("curl http://%s/api/v1/frameworks", srv.Addr()))

			<-ctx.Done()
			loggerFromContext(ctx).Info("shutting down")
			return srv.Shutdown(context.Background())
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default 127.0.0.1:8080)")
	cmd.Flags().StringVar(&opts.importPath, "import", "", "serve a fixed catalog from a JSON export")
	cmd.Flags().StringVar(&opts.storeKind, "store", "", "snapshot store: memory or mongo")
	cmd.Flags().StringVar(&opts.mongoURI, "mongo-uri", "", "MongoDB connection string (with --store mongo)")

	return cmd
}
