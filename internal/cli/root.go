// Package cli implements lasctl, the command-line front end for reading,
// checking, rewriting and cataloguing LAS files.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/JonMunkholm/lasfile/internal/config"
	"github.com/JonMunkholm/lasfile/internal/lasio"
	"github.com/JonMunkholm/lasfile/internal/logging"
)

// Configuration keys. Each can be set by flag, by LASCTL_<KEY> in the
// environment or in $HOME/.lasctl.yaml.
const (
	keyEncoding = "encoding"
	keyMaxSize  = "max_size"
	keyParallel = "parallel"
	keyDB       = "db"
	keyLogLevel = "log_level"
)

// errChecksFailed is returned when at least one file fails its check, so
// the process exits non-zero.
var errChecksFailed = errors.New("one or more files failed the check")

// app carries state shared by all commands of one invocation.
type app struct {
	v       *viper.Viper
	cfgFile string
	log     *slog.Logger
}

// Execute runs lasctl with the process arguments.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the command tree. Every call returns an independent tree
// with its own viper instance.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New(), log: slog.Default()}

	root := &cobra.Command{
		Use:   "lasctl",
		Short: "Read, check and catalogue CWLS LAS well log files",
		Long: `lasctl reads LAS 1.2, 2.0 and 3.0 well log files.

It reports structural problems, prints sections in several formats,
rewrites files as LAS 1.2 or 2.0 and keeps a local SQLite catalog of
ingested files.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.cfgFile, "config", "c", "", "config file (default: $HOME/.lasctl.yaml)")
	pf.String("encoding", "auto", "text encoding: auto, utf-8, utf-8-lossy, windows-1252, latin1")
	pf.String("max-size", "256MB", "largest file accepted (plain bytes or KB/MB/GB suffix)")
	pf.Bool("parallel", false, "parse sections concurrently")
	pf.String("db", "lasctl.db", "SQLite catalog used by ingest and watch")
	pf.String("log-level", "warn", "log level: debug, info, warn, error")

	for key, flag := range map[string]string{
		keyEncoding: "encoding",
		keyMaxSize:  "max-size",
		keyParallel: "parallel",
		keyDB:       "db",
		keyLogLevel: "log-level",
	} {
		cobra.CheckErr(a.v.BindPFlag(key, pf.Lookup(flag)))
	}

	root.AddCommand(
		a.newCheckCmd(),
		a.newShowCmd(),
		a.newWriteCmd(),
		a.newAPICmd(),
		a.newIngestCmd(),
		a.newWatchCmd(),
	)
	return root
}

func (a *app) initConfig() error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			a.v.AddConfigPath(home)
		}
		a.v.AddConfigPath(".")
		a.v.SetConfigName(".lasctl")
		a.v.SetConfigType("yaml")
	}

	a.v.SetEnvPrefix("LASCTL")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if a.cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	a.log = logging.New(os.Stderr, a.v.GetString(keyLogLevel), "text")
	slog.SetDefault(a.log)
	return nil
}

// loadOptions resolves the lasio options from flags, environment and config.
func (a *app) loadOptions() (lasio.Options, error) {
	enc, err := lasio.ParseEncoding(a.v.GetString(keyEncoding))
	if err != nil {
		return lasio.Options{}, err
	}
	size, err := config.ParseByteSize(a.v.GetString(keyMaxSize))
	if err != nil {
		return lasio.Options{}, fmt.Errorf("max-size: %w", err)
	}
	return lasio.Options{
		Encoding: enc,
		MaxSize:  int64(size),
		Parallel: a.v.GetBool(keyParallel),
	}, nil
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
