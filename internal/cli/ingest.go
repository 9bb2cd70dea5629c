package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/lasfile/internal/core"
	"github.com/JonMunkholm/lasfile/internal/store"
)

// openCatalog opens the SQLite catalog and a service over it. The CLI
// ingests sequentially, so the service has no limiter.
func (a *app) openCatalog() (*core.Service, func() error, error) {
	opts, err := a.loadOptions()
	if err != nil {
		return nil, nil, err
	}
	st, err := store.NewSQLite(a.v.GetString(keyDB))
	if err != nil {
		return nil, nil, err
	}
	svc := core.NewService(st, nil, core.Options{
		MaxFileSize:   opts.MaxSize,
		Encoding:      opts.Encoding,
		ParallelParse: opts.Parallel,
		RejectInvalid: true,
	})
	return svc, st.Close, nil
}

// ingestOne ingests path and prints one line describing the outcome.
func ingestOne(ctx context.Context, w io.Writer, svc *core.Service, path string) error {
	res, err := svc.IngestPath(ctx, path)
	if err != nil {
		fmt.Fprintf(w, "%s %s: %s\n", statusTag(false), path, core.MapError(err).Message)
		if res != nil && errors.Is(err, core.ErrRejected) {
			renderReport(w, path, res.Check, res.Errors)
		}
		return err
	}
	f := res.File
	fmt.Fprintf(w, "%s %s %s %s\n", statusTag(true), path, styleDim.Render(f.ID.String()),
		styleDim.Render(fmt.Sprintf("v%s, %d curve(s), %d row(s), %d issue(s)", f.Version, len(f.Curves), f.RowCount, f.Issues)))
	return nil
}

func (a *app) newIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <file|glob>...",
		Short: "Store LAS files in the local catalog",
		Long: `Ingest parses each file and stores it, with its data rows, in the
SQLite catalog named by --db. Files failing the critical check are
reported and skipped.

Examples:
  lasctl ingest "field/**/*.las" --db field.db`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := expandPatterns(args)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return fmt.Errorf("no files matched %v", args)
			}

			svc, closeFn, err := a.openCatalog()
			if err != nil {
				return err
			}
			defer closeFn()

			failed := 0
			for _, path := range paths {
				if err := ingestOne(cmd.Context(), out(cmd), svc, path); err != nil {
					a.log.Debug("ingest failed", "path", path, "error", err)
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d file(s) not ingested", failed, len(paths))
			}
			return nil
		},
	}
	return cmd
}
