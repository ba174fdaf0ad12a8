package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Beka01247/shopbuilder/internal/domain"
	"github.com/tidwall/gjson"
)

// APIBackend reads published configurations from the admin service's public
// endpoint. It never retries: a failure moves on to the next source.
type APIBackend struct {
	baseURL string
	client  *http.Client
}

func NewAPIBackend(baseURL string, timeout time.Duration) *APIBackend {
	return &APIBackend{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (b *APIBackend) Load(ctx context.Context, slug string) (domain.Configuration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/"+url.PathEscape(slug), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	noCache(req)

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch config: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", domain.ErrProjectNotFound, slug)
	}
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("failed to fetch config: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxConfigSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// responses use the {"data": ...} envelope
	data := gjson.GetBytes(body, "data")
	if !data.IsObject() {
		return nil, fmt.Errorf("failed to decode config response: data is not an object")
	}

	return domain.ParseConfiguration([]byte(data.Raw))
}

func noCache(req *http.Request) {
	req.Header.Set("Cache-Control", "no-cache, no-store")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("Accept", "application/json")
}
