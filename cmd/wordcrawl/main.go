// Package main provides the entry point for the wordcrawl CLI.
//
// wordcrawl crawls a single site from a seed address. In search mode it
// stops at the first page containing a target word; in collect mode it
// gathers page text into a corpus and a word frequency table.
//
// Usage:
//
//	wordcrawl search https://example.com widget
//	wordcrawl collect https://example.com
//	wordcrawl history
//
// See --help for all available options.
package main

func main() {
	Execute()
}
