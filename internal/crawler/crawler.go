package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/wordcrawl/internal/address"
	"github.com/nao1215/wordcrawl/internal/identity"
	"github.com/nao1215/wordcrawl/internal/model"
	"github.com/nao1215/wordcrawl/internal/robots"
)

// Defaults used when no option overrides them.
const (
	DefaultPageBudget    = 500
	DefaultShutdownGrace = 10 * time.Second
)

// ErrInvalidSeed is returned when the seed is not a crawlable address.
var ErrInvalidSeed = errors.New("invalid seed URL")

// ExclusionLoader produces the robots exclusions of the seed's site.
// *robots.Filter satisfies it.
type ExclusionLoader interface {
	LoadExclusions(ctx context.Context, seedURL string) (robots.ExclusionSet, error)
}

// TextSink receives the page text gathered by a collect crawl.
type TextSink interface {
	Add(rawURL, text string)
}

// Crawler drives the crawl loop for one site at a time.
// A Crawler holds no per-crawl state and may run several crawls.
type Crawler struct {
	fetcher     PageFetcher
	exclusions  ExclusionLoader
	identities  *identity.Pool
	pageBudget  int
	workers     int
	probability int
	grace       time.Duration
	logger      *slog.Logger
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithPageBudget sets the maximum number of pages visited per crawl.
func WithPageBudget(n int) Option {
	return func(c *Crawler) {
		if n > 0 {
			c.pageBudget = n
		}
	}
}

// WithWorkers runs jobs on a pool of n workers. Zero keeps jobs on the
// crawl goroutine.
func WithWorkers(n int) Option {
	return func(c *Crawler) {
		if n >= 0 {
			c.workers = n
		}
	}
}

// WithRotationProbability sets the chance, in percent, that the identity
// changes before each job.
func WithRotationProbability(p int) Option {
	return func(c *Crawler) {
		c.probability = p
	}
}

// WithShutdownGrace sets how long pooled workers may run after the crawl ends.
func WithShutdownGrace(d time.Duration) Option {
	return func(c *Crawler) {
		c.grace = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Crawler) {
		c.logger = logger
	}
}

// New creates a Crawler.
func New(fetcher PageFetcher, exclusions ExclusionLoader, identities *identity.Pool, opts ...Option) *Crawler {
	c := &Crawler{
		fetcher:     fetcher,
		exclusions:  exclusions,
		identities:  identities,
		pageBudget:  DefaultPageBudget,
		probability: identity.DefaultProbability,
		grace:       DefaultShutdownGrace,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c
}

// Search crawls from seed until a page containing word is found or the
// page budget is used up.
//
// The returned report is always non-nil. The error is non-nil only when
// the crawl was aborted by an invalid seed or an empty identity pool; a
// site that opts out through robots.txt is reported as StatusAborted with
// a nil error.
func (c *Crawler) Search(ctx context.Context, seed, word string) (*model.CrawlReport, error) {
	report := model.NewCrawlReport(model.ModeSearch, seed)
	report.Word = word

	err := c.run(ctx, report, func(rawURL string) *Job {
		return NewSearchJob(rawURL, word)
	}, func(out Outcome) bool {
		return out.Analysis.Succeeded
	})
	return report, err
}

// Collect crawls from seed until the page budget is used up, passing the
// lowercased text of every HTML page to sink.
func (c *Crawler) Collect(ctx context.Context, seed string, sink TextSink) (*model.CrawlReport, error) {
	report := model.NewCrawlReport(model.ModeCollect, seed)

	err := c.run(ctx, report, NewCollectJob, func(out Outcome) bool {
		if out.Analysis.Succeeded && sink != nil {
			sink.Add(out.URL, out.Text)
		}
		return false
	})
	return report, err
}

// run is the crawl loop shared by both modes. done inspects each outcome
// and returns true when the crawl reached its goal.
func (c *Crawler) run(ctx context.Context, report *model.CrawlReport, newJob func(string) *Job, done func(Outcome) bool) error {
	report.PageBudget = c.pageBudget
	seed := report.Seed

	if c.identities == nil || c.identities.Len() == 0 {
		report.Finish(model.StatusAborted, identity.ErrEmptyPool.Error())
		return identity.ErrEmptyPool
	}

	matcher, err := address.NewMatcher(seed)
	if err != nil {
		report.Finish(model.StatusAborted, fmt.Sprintf("invalid seed URL %q", seed))
		return fmt.Errorf("%w: %w", ErrInvalidSeed, err)
	}
	report.Authority, _ = matcher.Authority()

	exclusions, err := c.exclusions.LoadExclusions(ctx, seed)
	if err != nil {
		if errors.Is(err, robots.ErrSiteOptedOut) {
			c.logger.Info("site opted out of crawling", "seed", seed)
			report.Finish(model.StatusAborted, err.Error())
			return nil
		}
		report.Finish(model.StatusAborted, err.Error())
		return fmt.Errorf("failed to load exclusions: %w", err)
	}
	report.Exclusions = exclusions.Prefixes()

	frontier := NewFrontier(matcher, exclusions)
	frontier.MarkVisited(seed)

	executor := c.newExecutor(ctx)
	defer executor.Close()

	c.logger.Info("crawl started",
		"mode", report.Mode,
		"authority", report.Authority,
		"budget", c.pageBudget,
		"workers", c.workers,
		"exclusions", exclusions.Len(),
	)

	next := seed
	for {
		if ctx.Err() != nil {
			report.Finish(model.StatusCancelled, ctx.Err().Error())
			break
		}

		if next == "" {
			next, err = frontier.PopNext()
			if err != nil {
				report.Finish(model.StatusFrontierExhausted, "no crawlable address left")
				break
			}
		}

		ident := c.identities.Next(c.probability)
		c.logger.Debug("visiting", "url", next, "identity", ident)

		out, err := executor.Execute(ctx, newJob(next).WithScope(matcher), ident)
		if err != nil {
			report.Finish(model.StatusCancelled, err.Error())
			break
		}
		next = ""

		frontier.OfferAll(out.Links...)
		report.Record(model.PageVisit{
			URL:     out.URL,
			Outcome: out.PageOutcome(),
			Links:   len(out.Links),
		})
		c.logger.Debug("job finished",
			"url", out.URL,
			"outcome", out.PageOutcome(),
			"links", len(out.Links),
			"pending", frontier.Pending(),
		)

		if done(out) {
			report.Finish(model.StatusSucceeded, "")
			break
		}
		if frontier.Size() >= c.pageBudget {
			report.Finish(model.StatusExhaustedBudget, "")
			break
		}
	}

	report.PagesVisited = frontier.Size()
	c.logger.Info("crawl finished",
		"status", report.Status,
		"pages", report.PagesVisited,
		"found", report.FoundURL,
	)
	return nil
}

func (c *Crawler) newExecutor(ctx context.Context) Executor {
	if c.workers > 0 {
		return NewPooledExecutor(ctx, c.fetcher, c.workers, c.grace, c.logger)
	}
	return NewSequentialExecutor(c.fetcher)
}
