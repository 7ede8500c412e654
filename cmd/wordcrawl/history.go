package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/nao1215/wordcrawl/internal/config"
	"github.com/nao1215/wordcrawl/internal/database"
	"github.com/nao1215/wordcrawl/internal/report"
	"github.com/spf13/cobra"
)

// defaultHistoryLimit is how many past crawls are listed by default.
const defaultHistoryLimit = 20

// historyOptions holds the parsed flags of the history command.
type historyOptions struct {
	dbDir    string
	id       string
	site     string
	limit    int
	delete   bool
	json     bool
	markdown bool
	verbose  bool
}

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [report-id]",
		Short: "List or show past crawl reports",
		Long: `History reads the crawl reports saved by search and collect.

Without an argument it lists past crawls, newest first. With a report ID,
or any unique prefix of one, it prints that report in full.

Examples:
  # List the last 20 crawls
  wordcrawl history

  # List crawls of one site
  wordcrawl history --site example.com

  # Show one crawl as Markdown
  wordcrawl history -m 3f2a9c

  # Remove a crawl from the history
  wordcrawl history --delete 3f2a9c`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().StringP("site", "s", "",
		"Only list crawls of this site (e.g., example.com)")
	cmd.Flags().IntP("limit", "n", defaultHistoryLimit,
		"Maximum number of crawls to list (0 lists all)")
	cmd.Flags().BoolP("delete", "d", false,
		"Delete the given report instead of showing it")
	cmd.Flags().BoolP("json", "j", false,
		"Output in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output in Markdown format")

	return cmd
}

func runHistoryCmd(cmd *cobra.Command, args []string) error {
	opts := historyOptions{
		dbDir:   config.XDGDataDir(),
		verbose: getVerboseFlag(cmd),
	}
	if len(args) > 0 {
		opts.id = args[0]
	}

	var err error
	if opts.site, err = cmd.Flags().GetString("site"); err != nil {
		return err
	}
	if opts.limit, err = cmd.Flags().GetInt("limit"); err != nil {
		return err
	}
	if opts.delete, err = cmd.Flags().GetBool("delete"); err != nil {
		return err
	}
	if opts.json, err = cmd.Flags().GetBool("json"); err != nil {
		return err
	}
	if opts.markdown, err = cmd.Flags().GetBool("markdown"); err != nil {
		return err
	}

	return runHistory(cmd.Context(), opts, cmd.OutOrStdout())
}

// runHistory validates opts before opening the database so that a bad
// invocation never creates an empty history file.
func runHistory(ctx context.Context, opts historyOptions, out io.Writer) error {
	if opts.json && opts.markdown {
		return config.ErrConflictingReportFormats
	}
	if opts.delete && opts.id == "" {
		return errors.New("--delete requires a report ID")
	}
	if opts.limit < 0 {
		return fmt.Errorf("invalid limit %d", opts.limit)
	}

	db, err := database.Open(opts.dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	var w report.Writer
	switch {
	case opts.json:
		w = report.NewJSONWriter(out, report.WithPrettyPrint())
	case opts.markdown:
		w = report.NewMarkdownWriter(out)
	default:
		w = report.NewSimpleWriter(out, report.WithVerbose(opts.verbose))
	}

	if opts.id == "" {
		reports, err := db.ListReports(ctx, database.ListFilter{
			Authority: config.NormalizeAuthority(opts.site),
			Limit:     opts.limit,
		})
		if err != nil {
			return fmt.Errorf("failed to list crawl history: %w", err)
		}
		_, err = w.WriteList(reports)
		return err
	}

	r, err := db.GetReport(ctx, opts.id)
	if err != nil {
		return fmt.Errorf("failed to load report %s: %w", opts.id, err)
	}

	if opts.delete {
		if err := db.DeleteReport(ctx, r.ID); err != nil {
			return fmt.Errorf("failed to delete report %s: %w", r.ID, err)
		}
		fmt.Fprintf(out, "Deleted crawl report %s\n", r.ID)
		return nil
	}

	_, err = w.Write(r)
	return err
}
