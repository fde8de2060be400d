package cli

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/benchdef/pkg/errors"
	"github.com/matzehuels/benchdef/pkg/framework"
)

// getCommand creates the get command: print one resolved definition.
func (c *CLI) getCommand() *cobra.Command {
	flags := &resolveFlags{}
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "get <framework>",
		Short: "Show a resolved framework definition",
		Long: `Get resolves the definition files and prints a single framework with
all inherited fields and defaults applied. Lookup is case-insensitive.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)

			result, err := c.runPipeline(ctx, flags)
			if err != nil {
				return err
			}

			def, ok := result.Catalog.Get(args[0])
			if !ok {
				return errors.New(errors.ErrCodeNotFound, "framework %q is not in the catalog", args[0])
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(def)
			}

			printDefinition(def)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")

	return cmd
}

// listCommand creates the list command: print catalog names one per line.
func (c *CLI) listCommand() *cobra.Command {
	flags := &resolveFlags{}
	var long bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List resolved framework names",
		Long: `List resolves the definition files and prints the catalog names, one
per line and sorted, so the output is stable for scripting. Templates are
never listed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)

			result, err := c.runPipeline(ctx, flags)
			if err != nil {
				return err
			}

			for _, name := range result.Catalog.Names() {
				if !long {
					fmt.Println(name)
					continue
				}
				def, _ := result.Catalog.Get(name)
				fmt.Printf("%s\t%s\t%s\n", name, def.Version, def.DockerImage.Ref())
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVarP(&long, "long", "l", false, "include version and image")

	return cmd
}

// printDefinition renders one definition as a key-value block.
func printDefinition(def framework.Definition) {
	fmt.Println(StyleTitle.Render(def.Name))
	printNewline()
	printKeyValue("Version", def.Version)
	printKeyValue("Module", def.Module)
	if len(def.SetupArgs) > 0 {
		printKeyValue("Setup args", strings.Join(def.SetupArgs, " "))
	}
	if def.SetupCmd != "" {
		printKeyValue("Setup cmd", def.SetupCmd)
	}
	if def.Project != "" {
		printKeyValue("Project", StyleLink.Render(def.Project))
	}
	printKeyValue("Image", def.DockerImage.Ref())
	if len(def.Params) > 0 {
		printNewline()
		fmt.Println(StyleHighlight.Render("Params"))
		for _, k := range slices.Sorted(maps.Keys(def.Params)) {
			fmt.Println("  " + StyleDim.Render(k+":") + " " + StyleNumber.Render(formatParam(def.Params[k])))
		}
	}
}

// formatParam renders a param value for display. Non-scalar values fall
// back to their JSON form.
func formatParam(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case nil:
		return "null"
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(b)
	}
}
