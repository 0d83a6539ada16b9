// Package entity defines domain entities for the multi-server desktop shell.
package entity

import (
	"net/url"

	urlutil "github.com/bnema/deskview/internal/domain/url"
)

// ServerID uniquely identifies a server. Immutable once assigned.
type ServerID string

// Server is a named remote endpoint with one base URL and an ordered set of tabs.
type Server struct {
	ID           ServerID
	Name         string
	URL          *url.URL // normalized, path always ends with "/"
	IsPredefined bool
	Order        int
}

// NewServer validates rawURL and builds a server.
func NewServer(id ServerID, name, rawURL string, predefined bool) (*Server, error) {
	s := &Server{ID: id, Name: name, IsPredefined: predefined}
	if err := s.UpdateURL(rawURL); err != nil {
		return nil, err
	}
	return s, nil
}

// UpdateURL replaces the base URL in place, e.g. once the canonical site URL is known.
func (s *Server) UpdateURL(rawURL string) error {
	parsed, err := urlutil.ParseServerURL(rawURL)
	if err != nil {
		return &ValidationError{Field: "url", Value: rawURL, Reason: err.Error()}
	}
	s.URL = parsed
	return nil
}

// URLString returns the normalized base URL.
func (s *Server) URLString() string {
	if s == nil || s.URL == nil {
		return ""
	}
	return s.URL.String()
}

// BaseURLNoSlash returns the base URL without its trailing slash,
// suitable for appending an absolute path.
func (s *Server) BaseURLNoSlash() string {
	return urlutil.TrimPath(s.URLString())
}

// BasePath returns the path component of the base URL ("/" for root servers).
func (s *Server) BasePath() string {
	if s == nil || s.URL == nil {
		return "/"
	}
	return s.URL.Path
}

// Clone returns a copy safe to hand to other components.
func (s *Server) Clone() *Server {
	if s == nil {
		return nil
	}
	c := *s
	if s.URL != nil {
		u := *s.URL
		c.URL = &u
	}
	return &c
}
