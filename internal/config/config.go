package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/nao1215/wordcrawl/internal/identity"
	"github.com/nao1215/wordcrawl/internal/model"
)

// Default configuration values.
const (
	// DefaultPageBudget is the number of pages a crawl may visit.
	DefaultPageBudget = 500

	// DefaultWorkers of zero runs fetch jobs on the crawl goroutine.
	DefaultWorkers = 0

	// DefaultRotationProbability is the chance, in percent, of switching
	// identity before each fetch.
	DefaultRotationProbability = identity.DefaultProbability

	// DefaultTimeout bounds each HTTP request.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxBodySize limits the maximum response body size to read.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultShutdownGrace is how long pooled workers may keep running
	// after the crawl loop ends.
	DefaultShutdownGrace = 10 * time.Second

	// DefaultTopWords is the length of the word frequency table.
	DefaultTopWords = 50

	// DefaultUserAgent is sent when fetching robots.txt.
	DefaultUserAgent = "wordcrawl/1.0 (+https://github.com/nao1215/wordcrawl)"

	// AppName is the application name used for XDG directory paths.
	AppName = "wordcrawl"

	// IdentitiesFileName is looked up in the XDG config directory when no
	// identity list is given explicitly.
	IdentitiesFileName = "identities"
)

// DefaultIdentities is used when no identity list is configured.
var DefaultIdentities = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
}

// Config holds all configuration options for one wordcrawl run.
// It is populated from CLI flags and the config file and passed down
// explicitly; nothing reads it from global state.
type Config struct {
	// Mode is search or collect.
	Mode model.Mode

	// Seed is the address the crawl starts from.
	Seed string

	// Word is the target word of a search crawl.
	Word string

	// PageBudget is the maximum number of pages visited.
	PageBudget int

	// Workers is the size of the fetch worker pool. Zero means sequential.
	Workers int

	// RotationProbability is the percent chance of switching identity
	// before each fetch, 0 to 100.
	RotationProbability int

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	// MaxBodySize is the maximum response body size in bytes to read.
	MaxBodySize int64

	// ShutdownGrace is how long in-flight workers may run after the crawl ends.
	ShutdownGrace time.Duration

	// TopWords is the length of the word frequency table of a collect crawl.
	TopWords int

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" format.
	ProxyAddress string

	// UserAgent is sent when fetching robots.txt.
	UserAgent string

	// IdentitiesFile is a file with one client identity per line.
	IdentitiesFile string

	// Verbose enables detailed log output using slog.LevelDebug.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, .wordcrawl is searched in the current directory and then
	// in the user's home directory.
	ConfigFilePath string

	// SiteConfigs holds site-specific configurations loaded from the config file.
	SiteConfigs *File

	// JSONReport enables JSON report output. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report. Empty means stdout.
	ReportFile string

	// CorpusFile is where a collect crawl writes its text.
	// Empty means a file under the XDG data directory.
	CorpusFile string

	// DBDir is the directory holding the history database.
	DBDir string

	// SaveToDB stores the report in the history database.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Mode:                model.ModeSearch,
		PageBudget:          DefaultPageBudget,
		Workers:             DefaultWorkers,
		RotationProbability: DefaultRotationProbability,
		Timeout:             DefaultTimeout,
		MaxBodySize:         DefaultMaxBodySize,
		ShutdownGrace:       DefaultShutdownGrace,
		TopWords:            DefaultTopWords,
		UserAgent:           DefaultUserAgent,
		DBDir:               XDGDataDir(),
		SaveToDB:            true,
	}
}

// XDGDataDir returns the XDG data directory for wordcrawl.
// On Linux: ~/.local/share/wordcrawl
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for wordcrawl.
// On Linux: ~/.config/wordcrawl
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// DefaultCorpusPath returns where a collect crawl writes its text when no
// file is given.
func DefaultCorpusPath(authority, reportID string) string {
	return filepath.Join(XDGDataDir(), "corpus", authority+"-"+reportID+".txt")
}

// Validate checks if the configuration is valid.
// It returns the first problem found as a sentinel error.
func (c *Config) Validate() error {
	if c.Seed == "" {
		return ErrNoSeed
	}

	if c.Mode == model.ModeSearch && c.Word == "" {
		return ErrNoWord
	}

	if c.PageBudget <= 0 {
		return ErrInvalidPageBudget
	}

	if c.Workers < 0 {
		return ErrInvalidWorkers
	}

	if c.RotationProbability < 0 || c.RotationProbability > 100 {
		return ErrInvalidRotationProbability
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if c.ShutdownGrace < 0 {
		return ErrInvalidShutdownGrace
	}

	if c.TopWords < 0 {
		return ErrInvalidTopWords
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}

// ResolveIdentities returns the identity list to crawl with, in order of
// precedence: the IdentitiesFile flag, the config file's identities, an
// identities file in the XDG config directory, and DefaultIdentities.
//
// An explicitly named file that yields no identities returns an empty
// list; the caller must treat it as a fatal configuration error.
func (c *Config) ResolveIdentities() ([]string, error) {
	if c.IdentitiesFile != "" {
		return identity.LoadFile(c.IdentitiesFile)
	}

	if c.SiteConfigs != nil && len(c.SiteConfigs.Identities) > 0 {
		return append([]string(nil), c.SiteConfigs.Identities...), nil
	}

	xdgFile := filepath.Join(XDGConfigDir(), IdentitiesFileName)
	if _, err := os.Stat(xdgFile); err == nil {
		return identity.LoadFile(xdgFile)
	}

	return append([]string(nil), DefaultIdentities...), nil
}
