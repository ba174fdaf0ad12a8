package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Beka01247/shopbuilder/internal/domain"
	"go.uber.org/zap"
)

type RetryPolicy struct {
	Attempts int
	// Delay is multiplied by the attempt number before the next attempt.
	Delay   time.Duration
	Timeout time.Duration
}

// maxConfigSize caps how much of a configuration response is read.
const maxConfigSize = 4 << 20

var DefaultFileRetry = RetryPolicy{
	Attempts: 3,
	Delay:    500 * time.Millisecond,
	Timeout:  5 * time.Second,
}

// FileBackend fetches the static configuration document. It takes no key.
type FileBackend struct {
	url    string
	policy RetryPolicy
	client *http.Client
	logger *zap.SugaredLogger
}

func NewFileBackend(url string, policy RetryPolicy, logger *zap.SugaredLogger) *FileBackend {
	if policy.Attempts <= 0 {
		policy.Attempts = 1
	}
	return &FileBackend{
		url:    url,
		policy: policy,
		client: &http.Client{},
		logger: logger,
	}
}

func (b *FileBackend) Load(ctx context.Context, _ string) (domain.Configuration, error) {
	var lastErr error

	for attempt := 1; attempt <= b.policy.Attempts; attempt++ {
		cfg, err := b.fetch(ctx)
		if err == nil {
			return cfg, nil
		}
		lastErr = err

		b.logger.Warnw("config file fetch failed", "url", b.url, "attempt", attempt, "error", err)

		if attempt == b.policy.Attempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("failed to load config.json: %w", ctx.Err())
		case <-time.After(b.policy.Delay * time.Duration(attempt)):
		}
	}

	return nil, fmt.Errorf("failed to load config.json after %d attempts: %w", b.policy.Attempts, lastErr)
}

func (b *FileBackend) fetch(parent context.Context) (domain.Configuration, error) {
	ctx := parent
	if b.policy.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(parent, b.policy.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	noCache(req)

	resp, err := b.client.Do(req)
	if err != nil {
		// only the per-attempt deadline counts as a timeout of this attempt
		if errors.Is(err, context.DeadlineExceeded) && parent.Err() == nil {
			return nil, fmt.Errorf("timed out after %s: %w", b.policy.Timeout, err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxConfigSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	return domain.ParseConfiguration(body)
}
