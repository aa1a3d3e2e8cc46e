package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sankz2/pattern-search-tool/internal/config"
	"github.com/sankz2/pattern-search-tool/internal/history"
)

// NewHistoryCommand creates the history command and its subcommands
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show or clear the record of past runs",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		Args:  cobra.NoArgs,
		RunE:  runHistoryList,
	}
	list.Flags().Int("limit", 20, "Maximum number of runs to show (0 = all)")
	list.Flags().String("command", "", "Only show runs of this command (extract, scan, run)")

	show := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the details of one run",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistoryShow,
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every recorded run",
		Args:  cobra.NoArgs,
		RunE:  runHistoryClear,
	}

	cmd.AddCommand(list, show, clearCmd)
	return cmd
}

// withHistory opens the history store for a history subcommand.
func withHistory(cmd *cobra.Command, fn func(store *history.Store) error) error {
	cfg, err := loadConfig(cmd, config.FlagOverrides{})
	if err != nil {
		return err
	}
	store, err := openHistory(cfg)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	command, _ := cmd.Flags().GetString("command")

	return withHistory(cmd, func(store *history.Store) error {
		runs, err := store.ListRuns(cmd.Context(), command, limit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
			return nil
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "RUN\tTIME\tCOMMAND\tSTATUS\tMATCHED\tTARGET")
		for _, r := range runs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
				r.RunID, r.Timestamp.Local().Format("2006-01-02 15:04:05"),
				r.Command, status(r), r.LinesMatched, r.Target)
		}
		return tw.Flush()
	})
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	return withHistory(cmd, func(store *history.Store) error {
		r, err := store.GetRun(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Run:        %s\n", r.RunID)
		fmt.Fprintf(out, "Time:       %s\n", r.Timestamp.Local().Format(time.RFC3339))
		fmt.Fprintf(out, "Command:    %s\n", r.Command)
		fmt.Fprintf(out, "Target:     %s\n", r.Target)
		fmt.Fprintf(out, "Status:     %s\n", status(r))
		if r.ErrorMessage != "" {
			fmt.Fprintf(out, "Error:      %s\n", r.ErrorMessage)
		}
		if r.OutputDir != "" {
			fmt.Fprintf(out, "Output:     %s\n", r.OutputDir)
		}
		if len(r.Patterns) > 0 {
			fmt.Fprintf(out, "Patterns:   %s\n", strings.Join(r.Patterns, ", "))
		}
		fmt.Fprintf(out, "Archives:   %d\n", r.ArchivesExpanded)
		fmt.Fprintf(out, "Files:      %d\n", r.FilesScanned)
		fmt.Fprintf(out, "Matched:    %d\n", r.LinesMatched)
		fmt.Fprintf(out, "Collisions: %d\n", r.Collisions)
		fmt.Fprintf(out, "Duration:   %s\n", time.Duration(r.DurationMs)*time.Millisecond)
		return nil
	})
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	return withHistory(cmd, func(store *history.Store) error {
		n, err := store.Clear(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d run(s)\n", n)
		return nil
	})
}

func status(r *history.Run) string {
	if r.Success {
		return "ok"
	}
	if r.ErrorKind != "" {
		return "failed (" + r.ErrorKind + ")"
	}
	return "failed"
}
