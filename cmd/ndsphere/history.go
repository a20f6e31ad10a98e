package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/ndsphere/internal/config"
	"github.com/nao1215/ndsphere/internal/database"
	"github.com/nao1215/ndsphere/internal/model"
	"github.com/nao1215/ndsphere/internal/report"
)

// shortIDLength is how many characters of a run ID the listing shows.
const shortIDLength = 8

// NewHistoryCmd creates the history command.
// This command reads sweep runs stored with 'ndsphere sweep --save'.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show sweep runs stored in the history database",
		Long: `History lists and displays sweep runs saved with 'ndsphere sweep --save'.

Runs are identified by a UUID; any unique prefix of it is accepted.

Examples:
  # List stored runs, newest first
  ndsphere history --list

  # Show a stored run as plain text, Markdown or JSON
  ndsphere history 1f3c9a2e
  ndsphere history -m 1f3c9a2e
  ndsphere history --json 1f3c9a2e

  # Print the stored rows of one dimension as CSV
  ndsphere history --rows --dim 5 1f3c9a2e

  # Delete a run
  ndsphere history --delete 1f3c9a2e`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	// Listing flags
	cmd.Flags().BoolP("list", "l", false, "List stored runs")
	cmd.Flags().IntP("limit", "n", 0, "Maximum number of runs to list (0 for all)")

	// Run flags
	cmd.Flags().BoolP("json", "j", false, "Show the run as JSON")
	cmd.Flags().BoolP("markdown", "m", false, "Show the run as Markdown")
	cmd.Flags().Bool("rows", false, "Print the stored rows as CSV")
	cmd.Flags().Int("dim", 0, "With --rows, only print this dimension")
	cmd.Flags().Bool("delete", false, "Delete the run")

	cmd.Flags().String("db-dir", config.XDGDataDir(), "Directory of the history database")

	cmd.MarkFlagsMutuallyExclusive("json", "markdown", "rows", "delete")

	return cmd
}

// historyOptions holds the parsed history flags.
type historyOptions struct {
	list     bool
	limit    int
	json     bool
	markdown bool
	rows     bool
	dim      int
	delete   bool
	dbDir    string
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	opts, err := parseHistoryFlags(cmd)
	if err != nil {
		return err
	}

	// Validate arguments before opening the database.
	if !opts.list && len(args) == 0 {
		opts.list = true
	}
	if opts.list && len(args) > 0 {
		return errors.New("--list does not take a run id")
	}

	out := cmd.OutOrStdout()
	if _, err := os.Stat(filepath.Join(opts.dbDir, database.FileName)); os.IsNotExist(err) {
		fmt.Fprintln(out, "No runs found in the history database.")
		fmt.Fprintln(out, "\nUse 'ndsphere sweep --save' to store a sweep.")
		if opts.list {
			return nil
		}
		return fmt.Errorf("%w: %s", database.ErrRunNotFound, args[0])
	}

	db, err := database.Open(opts.dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	if opts.list {
		return listRuns(ctx, db, out, opts.limit)
	}

	id, err := db.ResolveID(ctx, args[0])
	if err != nil {
		return err
	}

	switch {
	case opts.delete:
		if err := db.DeleteRun(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(out, "Deleted run %s\n", id)
		return nil
	case opts.rows:
		return printRows(ctx, db, out, id, opts.dim)
	default:
		return showRun(ctx, db, out, id, opts)
	}
}

// parseHistoryFlags reads the history flags.
func parseHistoryFlags(cmd *cobra.Command) (historyOptions, error) {
	var opts historyOptions
	flags := cmd.Flags()
	var err error

	bools := []struct {
		name string
		dst  *bool
	}{
		{"list", &opts.list},
		{"json", &opts.json},
		{"markdown", &opts.markdown},
		{"rows", &opts.rows},
		{"delete", &opts.delete},
	}
	for _, b := range bools {
		if *b.dst, err = flags.GetBool(b.name); err != nil {
			return opts, err
		}
	}
	if opts.limit, err = flags.GetInt("limit"); err != nil {
		return opts, err
	}
	if opts.dim, err = flags.GetInt("dim"); err != nil {
		return opts, err
	}
	if opts.dbDir, err = flags.GetString("db-dir"); err != nil {
		return opts, err
	}
	return opts, nil
}

// listRuns prints a table of stored runs.
func listRuns(ctx context.Context, db *database.RunDB, out io.Writer, limit int) error {
	runs, err := db.ListRuns(ctx, limit)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs found in the history database.")
		fmt.Fprintln(out, "\nUse 'ndsphere sweep --save' to store a sweep.")
		return nil
	}

	fmt.Fprintf(out, "Stored runs (%d):\n\n", len(runs))
	fmt.Fprintf(out, "  %-8s  %-19s  %-12s  %-10s  %-8s  %-8s  %s\n",
		"ID", "Date", "Dims", "N", "Source", "Seed", "Rows")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 84))
	for _, run := range runs {
		fmt.Fprintf(out, "  %-8s  %-19s  %-12s  %-10s  %-8s  %-8d  %s\n",
			shortID(run.ID),
			run.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			joinDims(run.Dims),
			fmt.Sprintf("2^%d..2^%d", run.MinPower, run.MaxPower),
			run.Source,
			run.Seed,
			report.FormatCount(run.RowCount),
		)
	}
	fmt.Fprintln(out, "\nUse 'ndsphere history <run-id>' to show a run.")
	return nil
}

// showRun prints a stored run in the selected format.
func showRun(ctx context.Context, db *database.RunDB, out io.Writer, id string, opts historyOptions) error {
	rep, err := db.GetRun(ctx, id)
	if err != nil {
		return err
	}

	var w report.Writer
	switch {
	case opts.json:
		w = report.NewJSONWriter(out, report.WithPrettyPrint())
	case opts.markdown:
		w = report.NewMarkdownWriter(out)
	default:
		w = report.NewSimpleWriter(out)
	}
	_, err = w.Write(rep)
	return err
}

// printRows prints the stored rows of a run as CSV.
func printRows(ctx context.Context, db *database.RunDB, out io.Writer, id string, d int) error {
	rows, err := db.GetRows(ctx, id, d)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		if d > 0 {
			return fmt.Errorf("run %s has no rows for d=%d", shortID(id), d)
		}
		return fmt.Errorf("run %s has no rows", shortID(id))
	}
	rep := &model.SweepReport{ID: id, Rows: rows}
	_, err = report.NewCSVWriter(out).Write(rep)
	return err
}

func shortID(id string) string {
	if len(id) > shortIDLength {
		return id[:shortIDLength]
	}
	return id
}

func joinDims(dims []int) string {
	parts := make([]string, len(dims))
	for i, d := range dims {
		parts[i] = fmt.Sprint(d)
	}
	return strings.Join(parts, ",")
}
