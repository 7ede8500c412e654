// Package model defines the data structures shared by the crawler, the
// report writers and the history database.
//
// This package contains the following main types:
//   - JobResult: the tagged outcome of one stage of a fetch job
//   - Status: the crawl state machine
//   - CrawlReport: the summary of one crawl run
//
// Keeping them here avoids import cycles between crawler, report and database.
package model
