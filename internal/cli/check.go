package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/lasfile/internal/core"
	"github.com/JonMunkholm/lasfile/internal/las"
	"github.com/JonMunkholm/lasfile/internal/lasio"
)

// checkOutput is one file's entry in structured check output.
type checkOutput struct {
	Path   string            `json:"path" yaml:"path" toml:"path"`
	Check  core.CheckReport  `json:"check" yaml:"check" toml:"check"`
	Errors []core.StageError `json:"errors,omitempty" yaml:"errors,omitempty" toml:"errors,omitempty"`
}

func (a *app) newCheckCmd() *cobra.Command {
	var (
		all    bool
		format string
	)
	cmd := &cobra.Command{
		Use:   "check <file|glob>...",
		Short: "Check LAS files for structural problems",
		Long: `Check parses each file and reports missing sections and other problems.

By default only critical problems are reported: files that cannot be
read, missing required sections and a missing or unrecognized VERS.
--all adds the remaining findings, such as a missing WRAP or well
mnemonic, section parse errors or a curve count that does not match
the data.

Examples:
  lasctl check well.las
  lasctl check "logs/**/*.las" --all
  lasctl check "*.las" -o json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validFormat(format, formatText, formatJSON, formatYAML); err != nil {
				return err
			}
			opts, err := a.loadOptions()
			if err != nil {
				return err
			}
			paths, err := expandPatterns(args)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return fmt.Errorf("no files matched %v", args)
			}

			var (
				results []checkOutput
				failed  int
			)
			for _, path := range paths {
				res := checkFile(path, opts, all)
				if !res.Check.OK {
					failed++
				}
				if format == formatText {
					renderReport(out(cmd), path, res.Check, res.Errors)
				}
				results = append(results, res)
			}

			if format != formatText {
				if err := encode(out(cmd), format, map[string]any{"files": results}); err != nil {
					return err
				}
			} else if len(paths) > 1 {
				fmt.Fprintf(out(cmd), "\n%d file(s), %d failed\n", len(paths), failed)
			}
			if failed > 0 {
				return errChecksFailed
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "report non-critical findings too")
	cmd.Flags().StringVarP(&format, "output", "o", formatText, "output format: text, json, yaml")
	return cmd
}

// checkFile never fails: open and read errors are critical findings of the
// returned report.
func checkFile(path string, opts lasio.Options, all bool) checkOutput {
	f := lasio.Open(path, opts)
	return checkOutput{
		Path:   path,
		Check:  core.NewCheckReport(las.Check(f, !all), !all),
		Errors: core.StageErrors(f),
	}
}
