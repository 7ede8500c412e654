// Package crawler drives a same-site crawl: it decides which address to
// visit next, dispatches fetch jobs and folds their links back into the
// frontier.
//
// # Architecture
//
// A Crawler owns one Frontier per crawl. The Frontier is a FIFO queue of
// discovered addresses plus a ledger of visited ones; invalid, out-of-scope,
// excluded or already visited entries are dropped when popped, not when
// offered.
//
// Each iteration builds a Job and hands it to an Executor. The sequential
// executor runs the job on the crawl goroutine. The pooled executor runs it
// on a WorkerPool and waits on a per-job channel, so the frontier is only
// ever touched by the crawl goroutine.
//
// # Termination
//
// A crawl ends in one of these states:
//   - Succeeded: a search job found the target word
//   - ExhaustedBudget: the number of visited pages reached the budget
//   - FrontierExhausted: nothing crawlable was left in the queue
//   - Aborted: invalid seed, no identities, or robots.txt disallows "/"
//   - Cancelled: the context was cancelled
//
// # Usage
//
//	c := crawler.New(fetcher, robotsFilter, pool, crawler.WithPageBudget(100))
//	report, err := c.Search(ctx, "https://example.com", "widget")
package crawler
