// Package corpus gathers the text of a collect crawl and turns it into a
// word frequency table.
//
// The aggregated text is the blob a word cloud renderer consumes; rendering
// itself is not done here.
package corpus
