package main

import (
	"github.com/nao1215/wordcrawl/internal/config"
	"github.com/nao1215/wordcrawl/internal/model"
	"github.com/spf13/cobra"
)

// NewCollectCmd creates the collect command.
func NewCollectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collect <seed-url>",
		Short: "Crawl a site and collect its text into a corpus",
		Long: `Collect crawls the seed's site until the page budget is used up or no
crawlable address is left. The lowercased text of every HTML page is
written to a corpus file, skipping pages whose text repeats an earlier
page, and the report lists the most frequent words.

The corpus is a plain text file that word cloud generators accept.

Examples:
  # Collect up to 100 pages
  wordcrawl collect -b 100 https://example.com

  # Choose where the corpus is written
  wordcrawl collect --corpus ./example.txt https://example.com

  # Show the 20 most frequent words as JSON
  wordcrawl collect --top-words 20 -j https://example.com`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCrawlCmd(cmd, model.ModeCollect, args[0], "")
		},
	}

	addCrawlFlags(cmd)
	cmd.Flags().String("corpus", "",
		"Corpus output file (default: under the XDG data directory)")
	cmd.Flags().Int("top-words", config.DefaultTopWords,
		"Number of most frequent words to report (0 reports all)")

	return cmd
}
