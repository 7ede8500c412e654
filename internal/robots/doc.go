// Package robots loads a site's exclusion manifest (robots.txt) before a
// crawl starts and turns it into a set of path prefixes the crawl must skip.
//
// Only the first record addressed to every agent ("User-agent: *") is read,
// and only its Disallow lines until the first blank line. Disallow values
// are exact path prefixes: wildcard characters are kept literally. A
// "Disallow: /" opts the whole site out and is reported as ErrSiteOptedOut.
//
// Failure to retrieve the manifest is not fatal: the crawl proceeds with an
// empty exclusion set.
package robots
