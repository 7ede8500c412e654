package main

import (
	"github.com/nao1215/wordcrawl/internal/model"
	"github.com/spf13/cobra"
)

// NewSearchCmd creates the search command.
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <seed-url> <word>",
		Short: "Crawl a site until a page contains a word",
		Long: `Search crawls the seed's site and stops at the first page whose text
contains the word. Matching ignores case and also matches inside longer
words ("widget" matches "Widgets").

The crawl ends when the word is found, the page budget is used up, no
crawlable address is left, or the crawl is interrupted. The report names
the page where the word was found.

Examples:
  # Find the first page mentioning "pricing"
  wordcrawl search https://example.com pricing

  # Visit at most 50 pages with 4 concurrent fetches
  wordcrawl search -b 50 -w 4 https://example.com pricing

  # Never rotate the client identity
  wordcrawl search -r 0 https://example.com pricing

  # Send all requests through a SOCKS5 proxy
  wordcrawl search -x 127.0.0.1:9050 https://example.com pricing

  # Write a Markdown report
  wordcrawl search -m -o report.md https://example.com pricing`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCrawlCmd(cmd, model.ModeSearch, args[0], args[1])
		},
	}

	addCrawlFlags(cmd)

	return cmd
}
