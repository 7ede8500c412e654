package corpus

import (
	"bufio"
	"cmp"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"unicode"

	"github.com/nao1215/wordcrawl/internal/model"
	"golang.org/x/crypto/sha3"
)

// Defaults for frequency analysis.
const (
	DefaultTopWords      = 50
	DefaultMinWordLength = 3
)

// stopWords are dropped before counting.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {},
	"and": {}, "or": {}, "but": {}, "nor": {},
	"of": {}, "to": {}, "in": {}, "on": {}, "at": {}, "by": {}, "for": {},
	"from": {}, "with": {}, "into": {}, "about": {}, "as": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {},
	"it": {}, "its": {}, "this": {}, "that": {}, "these": {}, "those": {},
	"you": {}, "your": {}, "we": {}, "our": {}, "they": {}, "their": {},
	"he": {}, "she": {}, "his": {}, "her": {}, "not": {}, "no": {},
	"can": {}, "will": {}, "has": {}, "have": {}, "had": {}, "all": {},
}

// Aggregator collects page text. Pages with identical text are kept once.
// It is safe for concurrent use.
type Aggregator struct {
	minLength int

	mu         sync.Mutex
	digests    map[[32]byte]struct{}
	texts      []string
	duplicates int
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithMinWordLength sets the shortest word counted by Frequencies.
func WithMinWordLength(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.minLength = n
		}
	}
}

// New returns an empty Aggregator.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{
		minLength: DefaultMinWordLength,
		digests:   make(map[[32]byte]struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Add stores the text of one page. Empty text is ignored.
func (a *Aggregator) Add(_ string, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	sum := sha3.Sum256([]byte(text))

	a.mu.Lock()
	defer a.mu.Unlock()
	if _, dup := a.digests[sum]; dup {
		a.duplicates++
		return
	}
	a.digests[sum] = struct{}{}
	a.texts = append(a.texts, text)
}

// Pages returns the number of distinct page texts stored.
func (a *Aggregator) Pages() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.texts)
}

// Duplicates returns how many pages were skipped as exact repeats.
func (a *Aggregator) Duplicates() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.duplicates
}

// Text returns the stored page texts joined by newlines.
func (a *Aggregator) Text() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return strings.Join(a.texts, "\n")
}

// Frequencies returns the n most frequent words, most frequent first.
// Ties are broken alphabetically. n <= 0 returns every word.
func (a *Aggregator) Frequencies(n int) []model.WordCount {
	counts := make(map[string]int)
	for _, word := range Words(a.Text()) {
		if len([]rune(word)) < a.minLength {
			continue
		}
		counts[word]++
	}

	out := make([]model.WordCount, 0, len(counts))
	for w, c := range counts {
		out = append(out, model.WordCount{Word: w, Count: c})
	}
	slices.SortFunc(out, func(x, y model.WordCount) int {
		if c := cmp.Compare(y.Count, x.Count); c != 0 {
			return c
		}
		return cmp.Compare(x.Word, y.Word)
	})

	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// WriteFile writes the corpus to path, creating parent directories.
func (a *Aggregator) WriteFile(path string) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create corpus directory: %w", err)
	}

	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to create corpus file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close corpus file: %w", cerr)
		}
	}()

	w := bufio.NewWriter(f)
	if _, err := w.WriteString(a.Text()); err != nil {
		return fmt.Errorf("failed to write corpus: %w", err)
	}
	if err := w.WriteByte('\n'); err != nil {
		return fmt.Errorf("failed to write corpus: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write corpus: %w", err)
	}
	return nil
}

// Clean keeps letters and whitespace only and lowercases the rest.
func Clean(text string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r):
			return unicode.ToLower(r)
		case unicode.IsSpace(r):
			return ' '
		default:
			return -1
		}
	}, text)
}

// Words splits cleaned text into words and drops articles and stop words.
func Words(text string) []string {
	fields := strings.Fields(Clean(text))
	out := fields[:0]
	for _, f := range fields {
		if _, stop := stopWords[f]; stop {
			continue
		}
		out = append(out, f)
	}
	return out
}
