package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/benchdef/pkg/store"
)

// publishCommand creates the publish command: freeze the resolved catalog
// into a snapshot and store it.
func (c *CLI) publishCommand() *cobra.Command {
	flags := &resolveFlags{}
	var storeKind, mongoURI string

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish the resolved catalog as a snapshot",
		Long: `Publish resolves the definition files and stores the catalog as an
immutable snapshot with a fresh ID and timestamp. Snapshots can be listed,
inspected, and served later without the original files.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)

			result, err := c.runPipeline(ctx, flags)
			if err != nil {
				return err
			}

			st, err := c.requireStore(ctx, storeKind, mongoURI)
			if err != nil {
				return err
			}
			defer st.Close(context.Background())

			snap := store.NewSnapshot(result.Catalog)

			spin := newSpinnerWithContext(ctx, "Publishing snapshot...")
			spin.Start()
			if err := st.Publish(ctx, snap); err != nil {
				if spin.Cancelled() {
					spin.Stop()
					return ctx.Err()
				}
				spin.StopWithError("Publish failed")
				return err
			}
			spin.StopWithSuccess(fmt.Sprintf("Published %d frameworks", snap.Count))

			printKeyValue("Snapshot", snap.ID)
			printKeyValue("Created", snap.CreatedAt.Format(time.RFC3339))
			printKeyValue("Document", shortHash(snap.DocumentHash))
			printNextStep("List snapshots", "benchdef snapshots list")
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&storeKind, "store", "", "snapshot store: memory or mongo")
	cmd.Flags().StringVar(&mongoURI, "mongo-uri", "", "MongoDB connection string (with --store mongo)")

	return cmd
}

// snapshotsCommand groups the snapshot management subcommands.
func (c *CLI) snapshotsCommand() *cobra.Command {
	var storeKind, mongoURI string

	cmd := &cobra.Command{
		Use:   "snapshots",
		Short: "Manage published catalog snapshots",
	}

	cmd.PersistentFlags().StringVar(&storeKind, "store", "", "snapshot store: memory or mongo")
	cmd.PersistentFlags().StringVar(&mongoURI, "mongo-uri", "", "MongoDB connection string (with --store mongo)")

	cmd.AddCommand(c.snapshotsListCommand(&storeKind, &mongoURI))
	cmd.AddCommand(c.snapshotsShowCommand(&storeKind, &mongoURI))
	cmd.AddCommand(c.snapshotsDeleteCommand(&storeKind, &mongoURI))

	return cmd
}

// snapshotsListCommand creates "snapshots list": newest first.
func (c *CLI) snapshotsListCommand(kind, mongoURI *string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List published snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			st, err := c.requireStore(ctx, *kind, *mongoURI)
			if err != nil {
				return err
			}
			defer st.Close(context.Background())

			infos, err := st.List(ctx, limit)
			if err != nil {
				return err
			}
			if len(infos) == 0 {
				printInfo("No snapshots published")
				return nil
			}
			for _, info := range infos {
				meta := fmt.Sprintf("%d frameworks · doc %s", info.Count, shortHash(info.DocumentHash))
				fmt.Printf("%s  %s  %s\n", info.ID, info.CreatedAt.Format("2006-01-02 15:04"), StyleDim.Render(meta))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum snapshots to list (0 = all)")
	return cmd
}

// snapshotsShowCommand creates "snapshots show": print one snapshot, by ID
// or the literal name "latest".
func (c *CLI) snapshotsShowCommand(kind, mongoURI *string) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <id|latest>",
		Short: "Show one snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			st, err := c.requireStore(ctx, *kind, *mongoURI)
			if err != nil {
				return err
			}
			defer st.Close(context.Background())

			var snap *store.Snapshot
			if args[0] == "latest" {
				snap, err = st.Latest(ctx)
			} else {
				snap, err = st.Get(ctx, args[0])
			}
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(snap)
			}

			printKeyValue("Snapshot", snap.ID)
			printKeyValue("Created", snap.CreatedAt.Format(time.RFC3339))
			printKeyValue("Document", shortHash(snap.DocumentHash))
			printKeyValue("Count", fmt.Sprintf("%d", snap.Count))
			printNewline()
			for _, def := range snap.Definitions {
				fmt.Printf("%s\t%s\t%s\n", def.Name, def.Version, def.DockerImage.Ref())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

// snapshotsDeleteCommand creates "snapshots delete".
func (c *CLI) snapshotsDeleteCommand(kind, mongoURI *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			st, err := c.requireStore(ctx, *kind, *mongoURI)
			if err != nil {
				return err
			}
			defer st.Close(context.Background())

			if err := st.Delete(ctx, args[0]); err != nil {
				return err
			}
			printSuccess("Deleted %s", args[0])
			return nil
		},
	}
}
