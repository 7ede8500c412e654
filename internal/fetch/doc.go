// Package fetch retrieves a single page over HTTP and extracts what the
// crawler needs from it: the hyperlink targets, resolved to absolute
// addresses, and the visible text.
//
// Response bodies are decoded to UTF-8 with golang.org/x/net/html/charset
// before parsing, and parsed with goquery. Requests can optionally be sent
// through a SOCKS5 proxy.
//
// # Usage
//
//	client, err := fetch.NewHTTPClient(30*time.Second, "")
//	if err != nil {
//	    return err
//	}
//	f := fetch.New(client)
//	page, err := f.Fetch(ctx, "https://example.com/", "MyAgent/1.0")
package fetch
