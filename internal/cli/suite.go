package cli

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/benchdef/pkg/errors"
	"github.com/matzehuels/benchdef/pkg/suite"
)

// suiteCommand groups the benchmark suite subcommands.
func (c *CLI) suiteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suite",
		Short: "Inspect and validate benchmark suites",
	}

	cmd.AddCommand(c.suiteListCommand())
	cmd.AddCommand(c.suiteValidateCommand())

	return cmd
}

// suiteListCommand creates "suite list": print the tasks of a suite with
// all constraint defaults applied.
func (c *CLI) suiteListCommand() *cobra.Command {
	var dirs []string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list <suite>",
		Short: "List the tasks of a benchmark suite",
		Long: `List locates a suite by name or path and prints its tasks. A bare name
is looked up as {dir}/{name}.yaml in the search directories.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := suite.Load(args[0], c.suiteDirs(dirs), c.Config.SuiteDefaults())
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(s)
			}

			fmt.Println(StyleTitle.Render(s.Name) + " " + StyleDim.Render(fmt.Sprintf("(%d tasks)", len(s.Tasks))))
			for _, t := range s.Tasks {
				status := StyleSuccess.Render("on ")
				if !t.Enabled {
					status = StyleDim.Render("off")
				}
				constraints := fmt.Sprintf("task=%d  %s  %ds  %d folds", t.OpenMLTaskID, t.PrimaryMetric(), t.MaxRuntimeSeconds, t.Folds)
				fmt.Printf("  %s %-24s %s\n", status, StyleValue.Render(t.Name), StyleDim.Render(constraints))
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&dirs, "dir", nil, "suite search directory (repeatable)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")

	return cmd
}

// suiteValidateCommand creates "suite validate": parse suites and report
// every malformed task.
func (c *CLI) suiteValidateCommand() *cobra.Command {
	var dirs []string

	cmd := &cobra.Command{
		Use:   "validate <suite>...",
		Short: "Check benchmark suites for malformed tasks",
		Long: `Validate parses each named suite and reports every malformed task at
once: missing names, missing task IDs, missing metrics. The exit status is
non-zero when any suite fails.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defaults := c.Config.SuiteDefaults()
			searchDirs := c.suiteDirs(dirs)
			prog := newProgress(c.Logger)

			failed := 0
			for _, name := range args {
				s, err := suite.Load(name, searchDirs, defaults)
				if err != nil {
					failed++
					reportSuiteErrors(name, err)
					continue
				}
				printSuccess("%s: %d tasks", s.Name, len(s.Tasks))
				if len(s.EnabledTasks()) == 0 {
					printWarning("%s has no enabled tasks", s.Name)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d suites invalid", failed, len(args))
			}
			prog.done(fmt.Sprintf("Validated %d suites", len(args)))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&dirs, "dir", nil, "suite search directory (repeatable)")

	return cmd
}

// reportSuiteErrors prints each task error of a failed suite.
func reportSuiteErrors(name string, err error) {
	var list *errors.List
	if stderrors.As(err, &list) {
		printError("%s: %d invalid tasks", name, len(list.Errs))
		for _, e := range list.Errs {
			printDetail("%s", errors.UserMessage(e))
		}
		return
	}
	printError("%s: %s", name, errors.UserMessage(err))
}
