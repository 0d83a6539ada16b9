// Package url provides URL manipulation utilities for server and tab addressing.
package url

import (
	"fmt"
	"net/url"
	"strings"
)

// Normalize adds https:// prefix if missing for URL-like inputs.
// Returns the input unchanged if it already has a scheme or doesn't look like a URL.
func Normalize(input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return ""
	}

	switch {
	case strings.HasPrefix(input, "http://"):
		return input
	case strings.HasPrefix(input, "https://"):
		return input
	case strings.Contains(input, "://"):
		return input
	}

	// Looks like a host (contains . or :port and no spaces)
	if (strings.Contains(input, ".") || strings.Contains(input, ":")) && !strings.Contains(input, " ") {
		return "https://" + input
	}

	return input
}

// ParseServerURL parses a server base URL and normalizes it so the path
// always ends with a single trailing slash. Query and fragment are dropped.
func ParseServerURL(raw string) (*url.URL, error) {
	normalized := Normalize(raw)
	if normalized == "" {
		return nil, fmt.Errorf("empty url")
	}

	parsed, err := url.Parse(normalized)
	if err != nil {
		return nil, err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", parsed.Scheme)
	}
	if parsed.Host == "" || parsed.Hostname() == "" {
		return nil, fmt.Errorf("missing host")
	}

	parsed.Host = strings.ToLower(parsed.Host)
	parsed.RawQuery = ""
	parsed.Fragment = ""
	parsed.RawPath = ""
	parsed.Path = strings.TrimRight(parsed.Path, "/") + "/"
	return parsed, nil
}

// Parse parses an absolute http(s) URL without touching its path.
func Parse(raw string) (*url.URL, error) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("not an absolute url: %q", raw)
	}
	parsed.Host = strings.ToLower(parsed.Host)
	return parsed, nil
}

// Origin returns scheme://host for u, lower-cased.
func Origin(u *url.URL) string {
	if u == nil {
		return ""
	}
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host)
}

// SameOrigin reports whether a and b share scheme and host (including port).
func SameOrigin(a, b *url.URL) bool {
	if a == nil || b == nil {
		return false
	}
	return Origin(a) == Origin(b)
}

// TrimPath strips trailing slashes; the root path becomes "".
func TrimPath(p string) string {
	return strings.TrimRight(p, "/")
}

// HasPathPrefix reports whether path lies under prefix, comparing whole
// segments so "/subpath" is not a prefix of "/subpathology".
func HasPathPrefix(path, prefix string) bool {
	path = TrimPath(path)
	prefix = TrimPath(prefix)
	if prefix == "" {
		return true
	}
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+"/")
}

// IsInternalURL reports whether target is served by the application rooted at base.
func IsInternalURL(target, base *url.URL) bool {
	if !SameOrigin(target, base) {
		return false
	}
	return HasPathPrefix(target.Path, base.Path)
}

// CleanPathName strips the server base path from a path pushed by the
// embedded application, so "/sub/team/channels" under "/sub/" becomes
// "/team/channels". Paths outside the base are returned unchanged.
func CleanPathName(basePath, pathName string) string {
	base := TrimPath(basePath)
	if base == "" {
		return pathName
	}
	if pathName == base {
		return "/"
	}
	if strings.HasPrefix(pathName, base+"/") {
		return strings.TrimPrefix(pathName, base)
	}
	return pathName
}

// Equivalent compares two URLs ignoring a trailing slash difference.
func Equivalent(a, b string) bool {
	return strings.TrimRight(a, "/") == strings.TrimRight(b, "/")
}

// ExtractDomain extracts the normalized domain (host) from a URL string.
func ExtractDomain(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return ""
	}
	return strings.TrimPrefix(parsed.Host, "www.")
}
