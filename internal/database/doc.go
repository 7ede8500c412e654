// Package database provides SQLite-based crawl history for wordcrawl.
//
// This package implements the CrawlDB, which stores:
//   - One row per crawl run with its terminal status and counts
//   - The visit log of each run
//
// The database uses modernc.org/sqlite, a CGO-free driver, in WAL mode.
package database
