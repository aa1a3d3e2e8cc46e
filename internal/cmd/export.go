package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sankz2/pattern-search-tool/internal/config"
	"github.com/sankz2/pattern-search-tool/internal/fileutil"
	"github.com/sankz2/pattern-search-tool/internal/models"
)

// NewExportCommand creates the export command
func NewExportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export <source> <destination>",
		Short: "Copy an extracted tree or scan output into another directory",
		Long: `Copy a file or directory into <destination>/<name of source>. Existing files
are overwritten; other files in the destination are kept.

Examples:
  pattern-search-tool export ./logs_output /mnt/share/results`,
		Args: cobra.ExactArgs(2),
		RunE: runExport,
	}
}

func runExport(cmd *cobra.Command, args []string) (err error) {
	s, err := openSession(cmd, config.FlagOverrides{})
	if err != nil {
		return err
	}
	defer func() { err = s.finish(err) }()

	src, dest := args[0], args[1]
	copied, err := fileutil.CopyTree(src, dest)
	if err != nil {
		err = models.NewError(models.IOFailure, "export", src, err)
		s.log.LogError(err.Error())
		return err
	}

	s.log.LogInfo(fmt.Sprintf("Exported %s to %s", src, copied))
	fmt.Fprintf(s.out, "Exported to %s\n", copied)
	return nil
}
