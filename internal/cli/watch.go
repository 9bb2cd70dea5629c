package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// defaultSettle is how long a file must stay unchanged before it is handled,
// so a file still being copied is not read half-written.
const defaultSettle = 500 * time.Millisecond

// watchDir calls handle for every .las file created or written in dir once
// it has been quiet for settle. Calls are sequential. watchDir blocks until
// ctx is done.
func watchDir(ctx context.Context, log *slog.Logger, dir string, settle time.Duration, handle func(path string)) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	ticker := time.NewTicker(settle / 2)
	defer ticker.Stop()

	pending := make(map[string]time.Time)
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			switch {
			case !isLASFile(ev.Name):
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				pending[ev.Name] = time.Now()
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				delete(pending, ev.Name)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", "dir", dir, "error", err)

		case now := <-ticker.C:
			var ready []string
			for path, last := range pending {
				if now.Sub(last) >= settle {
					ready = append(ready, path)
				}
			}
			sort.Strings(ready)
			for _, path := range ready {
				delete(pending, path)
				if ctx.Err() != nil {
					return nil
				}
				handle(path)
			}
		}
	}
}

func (a *app) newWatchCmd() *cobra.Command {
	var (
		existing bool
		settle   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Ingest LAS files as they appear in a directory",
		Long: `Watch ingests every .las file created or changed in <dir> into the
catalog named by --db, one file at a time. Stop with Ctrl-C.

Examples:
  lasctl watch ./incoming --db field.db
  lasctl watch ./incoming --existing`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			if st, err := os.Stat(dir); err != nil {
				return err
			} else if !st.IsDir() {
				return fmt.Errorf("%s is not a directory", dir)
			}
			if settle <= 0 {
				settle = defaultSettle
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			svc, closeFn, err := a.openCatalog()
			if err != nil {
				return err
			}
			defer closeFn()

			w := out(cmd)
			handle := func(path string) {
				if err := ingestOne(ctx, w, svc, path); err != nil {
					a.log.Debug("watch ingest failed", "path", path, "error", err)
				}
			}

			if existing {
				paths, err := expandPatterns([]string{filepath.Join(dir, "*.[lL][aA][sS]")})
				if err != nil {
					return err
				}
				for _, p := range paths {
					handle(p)
				}
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "watching %s (Ctrl-C to stop)\n", dir)
			return watchDir(ctx, a.log, dir, settle, handle)
		},
	}
	cmd.Flags().BoolVar(&existing, "existing", false, "ingest .las files already in the directory first")
	cmd.Flags().DurationVar(&settle, "settle", defaultSettle, "quiet period before a changed file is ingested")
	return cmd
}
