package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gobeaver/datafy"
)

const (
	FlagType      = "type"
	FlagEncoding  = "encoding"
	FlagSizeLimit = "size-limit"
	FlagMember    = "member"
	FlagOutput    = "output"
)

func newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve URI",
		Short: "Resolve a URI and summarize the datasets it yields",
		Example: `  datafy resolve https://example.com/stations.csv
  datafy resolve s3://bucket/boundaries.zip --member '**/*.shp' -o yaml
  datafy resolve ./export.txt --type csv --encoding latin1`,
		Args:              cobra.ExactArgs(1),
		RunE:              runResolve,
		DisableAutoGenTag: true,
	}

	cmd.Flags().String(FlagType, "", "type tag or media type overriding classification")
	cmd.Flags().String(FlagEncoding, "", "character encoding of text content")
	cmd.Flags().Int64(FlagSizeLimit, -1, "size limit in bytes for remote sources; 0 disables it, negative uses DATAFY_SIZE_LIMIT")
	cmd.Flags().StringArray(FlagMember, nil, "glob selecting archive members; repeatable")
	cmd.Flags().StringP(FlagOutput, "o", string(EncodingTable), fmt.Sprintf("output format (%s)", joinEncodings()))
	return cmd
}

func runResolve(cmd *cobra.Command, args []string) error {
	output, err := cmd.Flags().GetString(FlagOutput)
	if err != nil {
		return err
	}
	if !slices.Contains(allEncodings, EncodingType(output)) {
		return fmt.Errorf("unknown output format: %q", output)
	}

	opts, err := resolveOptions(cmd)
	if err != nil {
		return err
	}

	cfg, err := datafy.GetConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger, err := baseLogger(cmd, cfg)
	if err != nil {
		return err
	}

	resolver, err := datafy.New(cfg, datafy.WithLogger(logger))
	if err != nil {
		return err
	}
	defer resolver.Close()

	items, err := resolver.Resolve(cmd.Context(), toURI(args[0]), opts...)
	if err != nil {
		return err
	}

	return encodeItems(cmd.OutOrStdout(), EncodingType(output), items)
}

func resolveOptions(cmd *cobra.Command) ([]datafy.Option, error) {
	var opts []datafy.Option

	hint, err := cmd.Flags().GetString(FlagType)
	if err != nil {
		return nil, err
	}
	if hint != "" {
		opts = append(opts, datafy.WithTypeHint(hint))
	}

	encoding, err := cmd.Flags().GetString(FlagEncoding)
	if err != nil {
		return nil, err
	}
	if encoding != "" {
		opts = append(opts, datafy.WithEncoding(encoding))
	}

	limit, err := cmd.Flags().GetInt64(FlagSizeLimit)
	if err != nil {
		return nil, err
	}
	if limit >= 0 {
		opts = append(opts, datafy.WithSizeLimit(limit))
	}

	members, err := cmd.Flags().GetStringArray(FlagMember)
	if err != nil {
		return nil, err
	}
	if len(members) > 0 {
		opts = append(opts, datafy.WithMembers(members...))
	}
	return opts, nil
}

// toURI turns an existing local path into a file URI and leaves anything
// else to the resolver.
func toURI(arg string) string {
	if strings.Contains(arg, "://") {
		return arg
	}
	if _, err := os.Stat(arg); err != nil {
		return arg
	}
	abs, err := filepath.Abs(arg)
	if err != nil {
		return arg
	}
	return "file://" + filepath.ToSlash(abs)
}
