// Package cli implements the datafy command line.
package cli

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gobeaver/datafy"
	"github.com/gobeaver/datafy/internal/logging"

	// Remote sources
	_ "github.com/gobeaver/datafy/driver/azure"
	_ "github.com/gobeaver/datafy/driver/gcs"
	_ "github.com/gobeaver/datafy/driver/s3"
	_ "github.com/gobeaver/datafy/driver/sftp"
)

const (
	FlagLogLevel  = "loglevel"
	FlagLogFormat = "logformat"
)

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
)

// New returns the root command.
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "datafy [sub-command]",
		Short: "Resolve a URI into decoded datasets",
		Long: `datafy fetches a local path or remote URI, classifies its content and
decodes it into tables, feature collections or raw values. Zip archives
are expanded and every member is resolved in turn.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		DisableAutoGenTag: true,
		SilenceUsage:      true,
	}

	cmd.PersistentFlags().String(FlagLogLevel, "", "set the log level (debug, info, warn, error); overrides DATAFY_LOG_LEVEL")
	cmd.PersistentFlags().String(FlagLogFormat, "", "set the log format (text, json); overrides DATAFY_LOG_FORMAT")

	cmd.AddCommand(newResolveCmd())
	cmd.AddCommand(newSchemesCmd())
	return cmd
}

// baseLogger builds the logger from the configured level and format, with
// the persistent flags taking precedence when set. Logs go to stderr so
// stdout carries only command output.
func baseLogger(cmd *cobra.Command, cfg *datafy.Config) (*slog.Logger, error) {
	level, err := flagOr(cmd, FlagLogLevel, "log level", cfg.LogLevel, logLevels)
	if err != nil {
		return nil, err
	}
	format, err := flagOr(cmd, FlagLogFormat, "log format", cfg.LogFormat, logFormats)
	if err != nil {
		return nil, err
	}
	return logging.NewWithWriter(cmd.ErrOrStderr(), level, format), nil
}

// flagOr returns the value of flag when the user set it and fallback
// otherwise. Only user supplied values are checked against allowed.
func flagOr(cmd *cobra.Command, flag, what, fallback string, allowed []string) (string, error) {
	if !cmd.Flags().Changed(flag) {
		return fallback, nil
	}
	v, err := cmd.Flags().GetString(flag)
	if err != nil {
		return "", err
	}
	if !slices.Contains(allowed, strings.ToLower(v)) {
		return "", fmt.Errorf("invalid %s: %s", what, v)
	}
	return v, nil
}

func newSchemesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schemes",
		Short: "List the URI schemes datafy can resolve",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			schemes := append([]string{"file"}, datafy.Schemes()...)
			slices.Sort(schemes)
			for _, s := range slices.Compact(schemes) {
				fmt.Fprintln(cmd.OutOrStdout(), s)
			}
			return nil
		},
		DisableAutoGenTag: true,
	}
}
