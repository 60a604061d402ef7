// ABOUTME: HTTP client for a recommendation service implementing Provider
// ABOUTME: Rate limits requests and trips a circuit breaker on repeated failures

package recommend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// maxResponseBytes caps how much of a response body is decoded
const maxResponseBytes = 1 << 20

// HTTPProviderConfig configures an HTTPProvider
type HTTPProviderConfig struct {
	BaseURL           string
	Timeout           time.Duration // http.Client timeout
	RequestsPerSecond float64       // <= 0 disables rate limiting
	BreakerFailures   uint32        // Consecutive failures before the breaker opens; 0 disables it
	BreakerCooldown   time.Duration // Time the breaker stays open
	Limit             int           // Requested results per call; 0 leaves it to the service
}

type recommendationRequest struct {
	SeedIDs []string `json:"seed_ids"`
	Limit   int      `json:"limit,omitempty"`
}

type recommendationResponse struct {
	Tracks []struct {
		ID string `json:"id"`
	} `json:"tracks"`
}

// HTTPProvider posts seed IDs to <BaseURL>/recommendations
type HTTPProvider struct {
	endpoint   string
	limit      int
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[[]string]
}

// NewHTTPProvider creates a provider for the service at cfg.BaseURL
func NewHTTPProvider(cfg HTTPProviderConfig) *HTTPProvider {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	p := &HTTPProvider{
		endpoint:   strings.TrimSuffix(strings.TrimSpace(cfg.BaseURL), "/") + "/recommendations",
		limit:      cfg.Limit,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(limit, 1),
	}

	if cfg.BreakerFailures > 0 {
		p.breaker = gobreaker.NewCircuitBreaker[[]string](gobreaker.Settings{
			Name:    "recommendation-provider",
			Timeout: cfg.BreakerCooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= cfg.BreakerFailures
			},
			// A caller giving up says nothing about the service
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled)
			},
		})
	}

	return p
}

// BreakerState returns the circuit breaker state, or "disabled"
func (p *HTTPProvider) BreakerState() string {
	if p.breaker == nil {
		return "disabled"
	}

	return p.breaker.State().String()
}

// Recommendations implements Provider
func (p *HTTPProvider) Recommendations(ctx context.Context, seedIDs []string) ([]string, error) {
	if len(seedIDs) == 0 || len(seedIDs) > MaxAccuracy {
		return nil, fmt.Errorf("seed count %d outside 1..%d", len(seedIDs), MaxAccuracy)
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	if p.breaker == nil {
		return p.fetch(ctx, seedIDs)
	}

	return p.breaker.Execute(func() ([]string, error) {
		return p.fetch(ctx, seedIDs)
	})
}

func (p *HTTPProvider) fetch(ctx context.Context, seedIDs []string) ([]string, error) {
	data, err := json.Marshal(recommendationRequest{SeedIDs: seedIDs, Limit: p.limit})
	if err != nil {
		return nil, fmt.Errorf("encode recommendation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create recommendation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call recommendation service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("recommendation service returned %s", resp.Status)
	}

	var parsed recommendationResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode recommendation response: %w", err)
	}

	ids := make([]string, 0, len(parsed.Tracks))
	for _, t := range parsed.Tracks {
		if t.ID != "" {
			ids = append(ids, t.ID)
		}
	}

	return ids, nil
}
