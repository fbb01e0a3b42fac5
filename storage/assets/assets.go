package assets

import (
	"context"
	"errors"
	"net/url"
	"strings"
)

// Store removes binaries hosted on the platform's asset host.
type Store interface {
	// Owns reports whether rawURL points at an asset this store can delete.
	Owns(rawURL string) bool
	Delete(ctx context.Context, rawURL string) error
}

var ErrForeignAsset = errors.New("asset is not hosted by this store")

// HostMatcher recognizes asset URLs by host name. A listed host also matches its subdomains.
type HostMatcher []string

func NewHostMatcher(hosts ...string) HostMatcher {
	m := make(HostMatcher, 0, len(hosts))
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			m = append(m, h)
		}
	}
	return m
}

func (m HostMatcher) Match(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, h := range m {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

// Nop owns nothing. Used when no asset provider is configured.
type Nop struct{}

func (Nop) Owns(string) bool                     { return false }
func (Nop) Delete(context.Context, string) error { return nil }
