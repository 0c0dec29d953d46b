// Package remote resolves remote_object targets against the HTTP
// endpoint of the service that owns them.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/studyhall/stream/internal/domain"
)

const defaultTimeout = 3 * time.Second

// Resolver is a domain.TargetResolver backed by an HTTP object store.
// Resolutions are cached so rendering a feed does not re-fetch the same
// object per entry.
type Resolver struct {
	client    *http.Client
	cache     *cache.Cache
	baseURL   string
	userAgent string
}

type object struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

func New(baseURL, userAgent string) *Resolver {
	httpClient := http.Client{
		Timeout: defaultTimeout,
	}

	r := &Resolver{
		client:    &httpClient,
		cache:     cache.New(10*time.Minute, 15*time.Minute),
		baseURL:   baseURL,
		userAgent: userAgent,
	}
	httpClient.Transport = r
	return r
}

func (r *Resolver) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", r.userAgent)
	return http.DefaultTransport.RoundTrip(req)
}

func (r *Resolver) Resolve(ctx context.Context, id int64) (domain.Resolution, error) {
	cacheKey := fmt.Sprintf("remote:%d", id)
	if x, found := r.cache.Get(cacheKey); found {
		return x.(domain.Resolution), nil
	}

	url := fmt.Sprintf("%s/objects/%d", r.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.Resolution{}, fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return domain.Resolution{}, fmt.Errorf("failed to perform request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		return domain.Resolution{}, domain.TargetNotFoundError{
			Target: domain.Target{Kind: domain.KindRemoteObject, ID: id},
		}
	}
	if resp.StatusCode != http.StatusOK {
		return domain.Resolution{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var obj object
	if err := json.NewDecoder(resp.Body).Decode(&obj); err != nil {
		return domain.Resolution{}, fmt.Errorf("failed to decode object: %v", err)
	}

	resolution := domain.Resolution{Title: obj.Title, URL: obj.URL}
	r.cache.Set(cacheKey, resolution, cache.DefaultExpiration)
	return resolution, nil
}
