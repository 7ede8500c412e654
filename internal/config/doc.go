// Package config provides configuration structures and utilities for
// wordcrawl: crawl defaults and validation, the .wordcrawl YAML file with
// per-site settings, and XDG directory helpers.
package config
