package config

// SiteConfig holds configuration for one site, keyed by authority.
type SiteConfig struct {
	// Cookie is an HTTP cookie to use when crawling this site.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers to include in requests to this site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// PageBudget overrides the global page budget for this site.
	// If zero, the global PageBudget is used.
	PageBudget int `yaml:"pageBudget,omitempty"`
}

// File represents the structure of the .wordcrawl configuration file.
type File struct {
	// Sites maps authorities (e.g. "example.com") to their configuration.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults applies to all sites unless overridden per site.
	Defaults SiteConfig `yaml:"defaults,omitempty"`

	// Identities is an inline list of client identities.
	Identities []string `yaml:"identities,omitempty"`
}

// GetSiteConfig returns the configuration for an authority.
// It merges the site-specific configuration with defaults. A nil File
// yields an empty SiteConfig.
func (cf *File) GetSiteConfig(authority string) SiteConfig {
	if cf == nil {
		return SiteConfig{}
	}

	result := cf.Defaults
	if len(cf.Defaults.Headers) > 0 {
		result.Headers = make(map[string]string, len(cf.Defaults.Headers))
		for k, v := range cf.Defaults.Headers {
			result.Headers[k] = v
		}
	}

	if siteConfig, ok := cf.Sites[authority]; ok {
		if siteConfig.Cookie != "" {
			result.Cookie = siteConfig.Cookie
		}
		if siteConfig.PageBudget != 0 {
			result.PageBudget = siteConfig.PageBudget
		}
		if len(siteConfig.Headers) > 0 {
			if result.Headers == nil {
				result.Headers = make(map[string]string)
			}
			for k, v := range siteConfig.Headers {
				result.Headers[k] = v
			}
		}
	}

	return result
}

// RequestHeaders returns the headers to send, with the cookie folded in.
func (sc SiteConfig) RequestHeaders() map[string]string {
	headers := make(map[string]string, len(sc.Headers)+1)
	for k, v := range sc.Headers {
		headers[k] = v
	}
	if sc.Cookie != "" {
		headers["Cookie"] = sc.Cookie
	}
	return headers
}
