// Package serverinfo asks servers about their version, site URL and
// installed plugins.
package serverinfo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/bnema/deskview/internal/application/port"
	"github.com/bnema/deskview/internal/domain/entity"
	urlutil "github.com/bnema/deskview/internal/domain/url"
	"github.com/bnema/deskview/internal/logging"
)

const (
	fetchTimeout = 10 * time.Second

	clientConfigPath = "api/v4/config/client?format=old"
	webappPluginPath = "api/v4/plugins/webapp"

	pluginPlaybooks = "playbooks"
	pluginBoards    = "focalboard"

	// maxBodyBytes bounds every decoded response.
	maxBodyBytes = 1 << 20
)

type clientConfig struct {
	Version string `json:"Version"`
	SiteURL string `json:"SiteURL"`
}

type webappPlugin struct {
	ID string `json:"id"`
}

// Fetcher implements port.ServerInfoFetcher over HTTP. Concurrent requests
// for the same server share one round trip.
type Fetcher struct {
	client    *http.Client
	userAgent string
	group     singleflight.Group
}

var _ port.ServerInfoFetcher = (*Fetcher)(nil)

// NewFetcher creates a Fetcher. A nil client gets a default one with a
// short timeout.
func NewFetcher(client *http.Client, userAgent string) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: fetchTimeout}
	}
	return &Fetcher{client: client, userAgent: userAgent}
}

// FetchServerInfo returns the remote info of the server rooted at serverURL.
// The plugin list is best effort: a failure there only clears the
// capability flags.
func (f *Fetcher) FetchServerInfo(ctx context.Context, serverURL string) (entity.RemoteInfo, error) {
	base, err := urlutil.ParseServerURL(serverURL)
	if err != nil {
		return entity.RemoteInfo{}, fmt.Errorf("invalid server url %q: %w", serverURL, err)
	}
	key := base.String()

	// The shared call outlives any single caller.
	shared := context.WithoutCancel(ctx)
	ch := f.group.DoChan(key, func() (any, error) {
		return f.fetch(shared, base)
	})

	select {
	case <-ctx.Done():
		return entity.RemoteInfo{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return entity.RemoteInfo{}, res.Err
		}
		return res.Val.(entity.RemoteInfo), nil
	}
}

func (f *Fetcher) fetch(ctx context.Context, base *url.URL) (entity.RemoteInfo, error) {
	log := logging.FromContext(ctx)

	var cfg clientConfig
	if err := f.getJSON(ctx, base, clientConfigPath, &cfg); err != nil {
		log.Debug().Err(err).Str("url", base.String()).Msg("server info fetch failed")
		return entity.RemoteInfo{}, err
	}

	info := entity.RemoteInfo{
		SiteURL:       cfg.SiteURL,
		ServerVersion: cfg.Version,
	}

	var plugins []webappPlugin
	if err := f.getJSON(ctx, base, webappPluginPath, &plugins); err != nil {
		log.Debug().Err(err).Str("url", base.String()).Msg("plugin list unavailable")
	}
	for _, p := range plugins {
		switch p.ID {
		case pluginPlaybooks:
			info.HasPlaybooks = true
		case pluginBoards:
			info.HasBoards = true
		}
	}

	log.Debug().
		Str("url", base.String()).
		Str("version", info.ServerVersion).
		Str("site_url", info.SiteURL).
		Bool("playbooks", info.HasPlaybooks).
		Bool("boards", info.HasBoards).
		Msg("server info fetched")
	return info, nil
}

func (f *Fetcher) getJSON(ctx context.Context, base *url.URL, path string, out any) error {
	ref, err := url.Parse(path)
	if err != nil {
		return err
	}
	target := base.ResolveReference(ref)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", target.Redacted(), err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request %s: unexpected status %d", target.Redacted(), resp.StatusCode)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", target.Redacted(), err)
	}
	return nil
}
