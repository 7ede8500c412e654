// Package address classifies crawl addresses and scopes a crawl to a single
// network authority.
//
// An address is valid when it is an ASCII http(s) URL whose host ends in a
// 2-6 letter top-level label. Validity is a pure function of the string: no
// case folding, trailing-slash or port normalization is applied.
//
// # Components
//
//   - Valid, Root, Authority: the address grammar and its two extractions
//   - Matcher: the authority a crawl is scoped to and its match pattern
//
// # Usage
//
//	m, err := address.NewMatcher("https://www.example.com/")
//	if err != nil {
//	    return err
//	}
//	m.InScope("https://example.com/about") // true
//	m.InScope("https://other.com/about")   // false
package address
