package address

import (
	"errors"
	"fmt"
	"regexp"
	"unicode/utf8"
)

// ErrInvalidURL is returned when Root or Authority is asked about a string
// that does not satisfy the address grammar. Callers must check Valid first.
var ErrInvalidURL = errors.New("invalid URL address")

// httpPattern is the shared address grammar.
//
// Submatches:
//  1. root: scheme, optional "www." and host
//  2. optional "www."
//  3. authority: host without scheme or "www."
//  4. tail: everything after the host
var httpPattern = regexp.MustCompile(
	`^(https?://(www\.)?([-a-zA-Z0-9@:%._~#=]{2,256}\.[a-z]{2,6}))\b(.*)$`,
)

const (
	rootGroup      = 1
	authorityGroup = 3
	tailGroup      = 4
)

// Valid reports whether s is a well-formed http(s) address.
func Valid(s string) bool {
	if !isASCII(s) {
		return false
	}
	return httpPattern.MatchString(s)
}

// Root returns the scheme, optional "www." and host of s, without any path.
// For example "https://www.google.com/humans.txt" yields "https://www.google.com".
func Root(s string) (string, error) {
	m, err := match(s)
	if err != nil {
		return "", err
	}
	return m[rootGroup], nil
}

// Authority returns the host of s without scheme or "www.".
// For example "https://www.google.com/humans.txt" yields "google.com".
func Authority(s string) (string, error) {
	m, err := match(s)
	if err != nil {
		return "", err
	}
	return m[authorityGroup], nil
}

// Tail returns everything after the root of s: path, query and fragment.
func Tail(s string) (string, error) {
	m, err := match(s)
	if err != nil {
		return "", err
	}
	return m[tailGroup], nil
}

func match(s string) ([]string, error) {
	if !isASCII(s) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, s)
	}
	m := httpPattern.FindStringSubmatch(s)
	if m == nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, s)
	}
	return m, nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
