package cli

import (
	"bytes"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/lasfile/internal/las"
)

func (a *app) newWriteCmd() *cobra.Command {
	var (
		version string
		wrap    string
		perLine int
	)
	cmd := &cobra.Command{
		Use:   "write <in> <out>",
		Short: "Rewrite a LAS file as LAS 1.2 or 2.0",
		Long: `Write parses <in> and writes it to <out> with normalised spacing.
Use "-" as <out> to write to standard output.

Examples:
  lasctl write old.las new.las --version 2.0
  lasctl write wrapped.las - --wrap=false`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := las.WriteOptions{Version: version, ValuesPerLine: perLine}
			if wrap != "" {
				b, err := strconv.ParseBool(wrap)
				if err != nil {
					return fmt.Errorf("--wrap must be true or false: %w", err)
				}
				opts.Wrap = &b
			}

			f, err := a.openFile(args[0])
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := las.Write(&buf, f, opts); err != nil {
				return err
			}
			if args[1] == "-" {
				_, err := out(cmd).Write(buf.Bytes())
				return err
			}
			if err := os.WriteFile(args[1], buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", args[1], err)
			}
			a.log.Info("file written", "in", args[0], "out", args[1], "bytes", buf.Len())
			return nil
		},
	}
	cmd.Flags().StringVar(&version, "version", "", "output version: 1.2 or 2.0 (default: keep)")
	cmd.Flags().StringVar(&wrap, "wrap", "", "wrap data lines: true or false (default: keep)")
	cmd.Flags().IntVar(&perLine, "values-per-line", 0, "values per continuation line when wrapping")
	return cmd
}
