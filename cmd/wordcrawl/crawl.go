package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/nao1215/wordcrawl/internal/config"
	"github.com/nao1215/wordcrawl/internal/corpus"
	"github.com/nao1215/wordcrawl/internal/crawler"
	"github.com/nao1215/wordcrawl/internal/database"
	"github.com/nao1215/wordcrawl/internal/fetch"
	"github.com/nao1215/wordcrawl/internal/identity"
	wclog "github.com/nao1215/wordcrawl/internal/log"
	"github.com/nao1215/wordcrawl/internal/model"
	"github.com/nao1215/wordcrawl/internal/report"
	"github.com/nao1215/wordcrawl/internal/robots"
	"github.com/spf13/cobra"
)

// errCrawlAborted makes the CLI exit non-zero when a crawl could not start.
var errCrawlAborted = errors.New("crawl aborted")

// addCrawlFlags registers the flags shared by search and collect.
func addCrawlFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("budget", "b", config.DefaultPageBudget,
		"Maximum number of pages to visit")
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Number of concurrent fetch workers (0 fetches on the crawl goroutine)")
	cmd.Flags().IntP("rotation", "r", config.DefaultRotationProbability,
		"Chance in percent of switching client identity before each fetch")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each request")
	cmd.Flags().Duration("grace", config.DefaultShutdownGrace,
		"How long in-flight fetches may run after the crawl ends")
	cmd.Flags().StringP("proxy", "x", "",
		"SOCKS5 proxy address for all requests (e.g., 127.0.0.1:9050)")
	cmd.Flags().StringP("identities", "i", "",
		"File with one client identity (User-Agent) per line")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .wordcrawl in current or home directory)")

	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("no-save", false,
		"Do not store the report in the crawl history")
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, mode model.Mode, seed, word string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Mode = mode
	cfg.Seed = seed
	cfg.Word = word
	cfg.Verbose = getVerboseFlag(cmd)

	var err error
	if cfg.PageBudget, err = cmd.Flags().GetInt("budget"); err != nil {
		return nil, err
	}
	if cfg.Workers, err = cmd.Flags().GetInt("workers"); err != nil {
		return nil, err
	}
	if cfg.RotationProbability, err = cmd.Flags().GetInt("rotation"); err != nil {
		return nil, err
	}
	if cfg.Timeout, err = cmd.Flags().GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.ShutdownGrace, err = cmd.Flags().GetDuration("grace"); err != nil {
		return nil, err
	}
	if cfg.ProxyAddress, err = cmd.Flags().GetString("proxy"); err != nil {
		return nil, err
	}
	if cfg.IdentitiesFile, err = cmd.Flags().GetString("identities"); err != nil {
		return nil, err
	}
	if cfg.ConfigFilePath, err = cmd.Flags().GetString("config"); err != nil {
		return nil, err
	}
	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = cmd.Flags().GetString("output"); err != nil {
		return nil, err
	}
	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave

	if mode == model.ModeCollect {
		if cfg.CorpusFile, err = cmd.Flags().GetString("corpus"); err != nil {
			return nil, err
		}
		if cfg.TopWords, err = cmd.Flags().GetInt("top-words"); err != nil {
			return nil, err
		}
	}

	// An explicitly named config file must exist; otherwise a missing
	// file just means no site settings.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	default:
		cfg.SiteConfigs = &config.File{Sites: make(map[string]config.SiteConfig)}
	}

	// The command line wins over the config file.
	site := cfg.SiteConfigs.GetSiteConfig(config.NormalizeAuthority(seed))
	if !cmd.Flags().Changed("budget") && site.PageBudget > 0 {
		cfg.PageBudget = site.PageBudget
	}

	return cfg, nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// runCrawlCmd is the shared body of the search and collect commands.
func runCrawlCmd(cmd *cobra.Command, mode model.Mode, seed, word string) error {
	cfg, err := buildConfig(cmd, mode, seed, word)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := wclog.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("received shutdown signal, stopping crawl")
			cancel()
		case <-ctx.Done():
		}
	}()

	client, err := fetch.NewHTTPClient(cfg.Timeout, cfg.ProxyAddress)
	if err != nil {
		return err
	}
	logger.Debug("http client ready", "proxy", cfg.ProxyAddress, "timeout", cfg.Timeout)

	_, err = runCrawl(ctx, cfg, client, logger, cmd.OutOrStdout())
	return err
}

// runCrawl performs one crawl with the given client, writes its report
// and stores it in the history. The report is returned even on error.
func runCrawl(ctx context.Context, cfg *config.Config, client *http.Client, logger *slog.Logger, out io.Writer) (*model.CrawlReport, error) {
	identities, err := cfg.ResolveIdentities()
	if err != nil {
		return nil, err
	}
	// An empty pool is left nil so the crawler reports it as aborted.
	pool, err := identity.NewPool(identities)
	if err != nil && !errors.Is(err, identity.ErrEmptyPool) {
		return nil, err
	}

	site := cfg.SiteConfigs.GetSiteConfig(config.NormalizeAuthority(cfg.Seed))
	fetcher := fetch.New(client,
		fetch.WithMaxBodySize(cfg.MaxBodySize),
		fetch.WithHeaders(site.RequestHeaders()),
		fetch.WithLogger(logger),
	)
	filter := robots.NewFilter(client,
		robots.WithUserAgent(cfg.UserAgent),
		robots.WithLogger(logger),
	)

	c := crawler.New(fetcher, filter, pool,
		crawler.WithPageBudget(cfg.PageBudget),
		crawler.WithWorkers(cfg.Workers),
		crawler.WithRotationProbability(cfg.RotationProbability),
		crawler.WithShutdownGrace(cfg.ShutdownGrace),
		crawler.WithLogger(logger),
	)

	var (
		crawlReport *model.CrawlReport
		crawlErr    error
	)
	switch cfg.Mode {
	case model.ModeCollect:
		agg := corpus.New()
		crawlReport, crawlErr = c.Collect(ctx, cfg.Seed, agg)
		if err := finishCorpus(cfg, crawlReport, agg, logger); err != nil {
			logger.Error("failed to write corpus", "error", err)
		}
	default:
		crawlReport, crawlErr = c.Search(ctx, cfg.Seed, cfg.Word)
	}

	if err := outputReport(cfg, crawlReport, out); err != nil {
		logger.Error("report failed", "error", err)
	}

	// The history is written even after an interrupt.
	if err := saveReport(context.WithoutCancel(ctx), cfg, crawlReport, logger); err != nil {
		logger.Error("failed to save crawl report", "error", err)
	}

	if crawlErr != nil {
		return crawlReport, fmt.Errorf("%w: %w", errCrawlAborted, crawlErr)
	}
	if crawlReport.Status == model.StatusAborted {
		return crawlReport, fmt.Errorf("%w: %s", errCrawlAborted, crawlReport.Reason)
	}
	return crawlReport, nil
}

// finishCorpus fills the word table of a collect report and writes the
// gathered text to the corpus file.
func finishCorpus(cfg *config.Config, r *model.CrawlReport, agg *corpus.Aggregator, logger *slog.Logger) error {
	r.TopWords = agg.Frequencies(cfg.TopWords)
	if agg.Pages() == 0 {
		return nil
	}

	path := cfg.CorpusFile
	if path == "" {
		path = config.DefaultCorpusPath(r.Authority, r.ID)
	}
	if err := agg.WriteFile(path); err != nil {
		return err
	}
	r.CorpusFile = path

	logger.Info("corpus written",
		"path", path,
		"pages", agg.Pages(),
		"duplicates", agg.Duplicates(),
	)
	return nil
}

// newReportWriter returns the writer for the configured report format.
func newReportWriter(cfg *config.Config, w io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(w, report.WithPrettyPrint(), report.WithVersion(getVersion()))
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(w)
	default:
		return report.NewSimpleWriter(w, report.WithVerbose(cfg.Verbose))
	}
}

// outputReport writes the crawl report to out. With a report file the
// chosen format goes to the file and a text summary to out.
func outputReport(cfg *config.Config, r *model.CrawlReport, out io.Writer) error {
	if cfg.ReportFile == "" {
		_, err := newReportWriter(cfg, out).Write(r)
		return err
	}

	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Reports may list URLs of authenticated pages, so keep them private.
	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	w := report.NewMultiWriter(newReportWriter(cfg, f), report.NewSimpleWriter(out))
	_, err = w.Write(r)
	return err
}

// saveReport stores the report in the history database. It is a no-op
// when saving is disabled.
func saveReport(ctx context.Context, cfg *config.Config, r *model.CrawlReport, logger *slog.Logger) error {
	if !cfg.SaveToDB {
		return nil
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.SaveReport(ctx, r); err != nil {
		return err
	}
	logger.Info("crawl report saved", "id", r.ID, "db", db.Path())
	return nil
}
