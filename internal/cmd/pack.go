package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sankz2/pattern-search-tool/internal/archive"
	"github.com/sankz2/pattern-search-tool/internal/config"
)

// NewPackCommand creates the pack command
func NewPackCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pack <directory> <archive>",
		Short: "Create a .tar.gz or .zip archive from a directory",
		Long: `Pack the contents of a directory into a new archive. The format is chosen
from the archive suffix (.tar.gz, .tgz or .zip). Entries are stored relative
to the directory, so extracting the archive reproduces the tree.

Examples:
  pattern-search-tool pack ./logs logs.tar.gz`,
		Args: cobra.ExactArgs(2),
		RunE: runPack,
	}
}

func runPack(cmd *cobra.Command, args []string) (err error) {
	s, err := openSession(cmd, config.FlagOverrides{})
	if err != nil {
		return err
	}
	defer func() { err = s.finish(err) }()

	ctx, cancel := s.withTimeout(cmd.Context())
	defer cancel()

	srcDir, archivePath := args[0], args[1]
	if err := archive.Pack(ctx, srcDir, archivePath); err != nil {
		s.log.LogError(fmt.Sprintf("Packing %s failed: %v", srcDir, err))
		return err
	}

	s.log.LogInfo(fmt.Sprintf("Packed %s into %s", srcDir, archivePath))
	fmt.Fprintf(s.out, "Created %s\n", archivePath)
	return nil
}
