package view

import (
	"net/http"
	"sort"
	"strings"
)

// cookieJar is the per-surface cookie snapshot: keyed by name, last write
// wins, scoped to a single host.
type cookieJar struct {
	host    string
	cookies map[string]*http.Cookie
}

func newCookieJar(host string) *cookieJar {
	return &cookieJar{host: strings.ToLower(host), cookies: make(map[string]*http.Cookie)}
}

// accepts reports whether c may be stored for the jar host.
func (j *cookieJar) accepts(c *http.Cookie) bool {
	if c == nil || c.Name == "" {
		return false
	}
	if c.Domain == "" {
		return true
	}
	domain := strings.TrimPrefix(strings.ToLower(c.Domain), ".")
	host := j.host
	if i := strings.LastIndex(host, ":"); i >= 0 && !strings.Contains(host[i:], "]") {
		host = host[:i]
	}
	return host == domain || strings.HasSuffix(host, "."+domain)
}

func (j *cookieJar) set(c *http.Cookie) bool {
	if !j.accepts(c) {
		return false
	}
	if c.MaxAge < 0 {
		delete(j.cookies, c.Name)
		return true
	}
	stored := *c
	j.cookies[c.Name] = &stored
	return true
}

func (j *cookieJar) rebind(host string) {
	host = strings.ToLower(host)
	if host == j.host {
		return
	}
	j.host = host
	j.cookies = make(map[string]*http.Cookie)
}

func (j *cookieJar) list() []*http.Cookie {
	out := make([]*http.Cookie, 0, len(j.cookies))
	for _, c := range j.cookies {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Name < out[k].Name })
	return out
}
