package assets

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPStore deletes assets through a hosted media API.
type HTTPStore struct {
	client *resty.Client
	hosts  HostMatcher
}

type deleteAssetRequest struct {
	URL string `json:"url"`
}

func NewHTTPStore(baseURL, apiKey string, timeout time.Duration, hosts []string) *HTTPStore {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}
	return &HTTPStore{client: client, hosts: NewHostMatcher(hosts...)}
}

func (s *HTTPStore) Owns(rawURL string) bool {
	return s.hosts.Match(rawURL)
}

func (s *HTTPStore) Delete(ctx context.Context, rawURL string) error {
	if !s.Owns(rawURL) {
		return ErrForeignAsset
	}
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(deleteAssetRequest{URL: rawURL}).
		Post("/assets/delete")
	if err != nil {
		return fmt.Errorf("asset api request: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("asset api returned %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}
