// Package root contains the root command for the application
package root

import (
	"fmt"
	"io"
	"os"

	"github.com/cristhianchimbo50/sri-extractor/internal/config"
	"github.com/cristhianchimbo50/sri-extractor/internal/container"
	"github.com/cristhianchimbo50/sri-extractor/internal/logging"
	"github.com/cristhianchimbo50/sri-extractor/internal/portal"
	"github.com/cristhianchimbo50/sri-extractor/internal/report"

	"github.com/spf13/cobra"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	ConfigFile string
	Format     string
	Output     string
	LogLevel   string
}

var (
	// Log is the shared logger instance for commands
	Log logging.Logger = logging.NewLogrusAdapter("info", "text")

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "sri-extractor",
		Short: "Download and reconcile SRI electronic invoices.",
		Long: `sri-extractor downloads the electronic invoices received on a date from
the SRI en línea portal, keeps them in a local archive and reconciles them
against the purchase records of the accounting database.`,
		SilenceUsage:      true,
		PersistentPreRunE: initialize,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if appContainer != nil {
				if err := appContainer.Close(); err != nil {
					Log.WithError(err).Warn("Failed to release resources")
				}
				appContainer = nil
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	// SharedFlags are accessible to all commands
	SharedFlags = CommonFlags{}

	appContainer     *container.Container
	containerOptions []container.Option
)

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVar(&SharedFlags.ConfigFile, "config", "", "Config file (default: config.yaml in $HOME/.sri-extractor, .sri-extractor or .)")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Format, "format", "f", "", "Output format: table, csv, json or yaml")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Output, "output", "o", "", "Output file (default: stdout)")
	Cmd.PersistentFlags().StringVar(&SharedFlags.LogLevel, "log-level", "", "Log level override")
}

// SetContainerOptions adds options used when the container is built. Tests
// use it to replace the browser launcher.
func SetContainerOptions(opts ...container.Option) {
	containerOptions = opts
}

func initialize(cmd *cobra.Command, args []string) error {
	config.LoadEnv()

	cfg, err := config.InitializeConfig(SharedFlags.ConfigFile)
	if err != nil {
		return err
	}
	if SharedFlags.LogLevel != "" {
		cfg.Log.Level = SharedFlags.LogLevel
	}
	if SharedFlags.Format != "" {
		if _, err := report.ParseFormat(SharedFlags.Format); err != nil {
			return err
		}
		cfg.Output.Format = SharedFlags.Format
	}

	stderr := cmd.ErrOrStderr()
	opts := append([]container.Option{container.WithProgress(progressPrinter(stderr))}, containerOptions...)
	c, err := container.NewContainer(cfg, opts...)
	if err != nil {
		return err
	}
	appContainer = c
	Log = c.GetLogger()
	return nil
}

func progressPrinter(w io.Writer) portal.ProgressFunc {
	return func(p portal.Progress) {
		if p.Total > 0 {
			_, _ = fmt.Fprintf(w, "[%s] %s (%d/%d)\n", p.Stage, p.Message, p.Current, p.Total)
			return
		}
		_, _ = fmt.Fprintf(w, "[%s] %s\n", p.Stage, p.Message)
	}
}

// GetContainer returns the container built for the running command.
func GetContainer() (*container.Container, error) {
	if appContainer == nil {
		return nil, fmt.Errorf("application is not initialized")
	}
	return appContainer, nil
}

// GetFormat returns the effective output format.
func GetFormat() report.Format {
	if appContainer == nil {
		return report.FormatTable
	}
	f, err := report.ParseFormat(appContainer.GetConfig().Output.Format)
	if err != nil {
		return report.FormatTable
	}
	return f
}

// OpenOutput returns the destination of command output: the --output file
// when set, stdout otherwise. The returned close function must be called.
func OpenOutput(cmd *cobra.Command) (io.Writer, func() error, error) {
	if SharedFlags.Output == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(SharedFlags.Output)
	if err != nil {
		return nil, nil, fmt.Errorf("filesystem: cannot create %s: %w", SharedFlags.Output, err)
	}
	Log.Debug("Writing output to file", logging.Field{Key: logging.FieldOutputFile, Value: SharedFlags.Output})
	return f, f.Close, nil
}
