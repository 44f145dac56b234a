package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-lookup/internal/weather"
)

var (
	errCircuitOpen  = errors.New("circuit breaker open")
	errNoHTTPClient = errors.New("http client not configured")
)

func newCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
}

// doRequest executes a single GET through the circuit breaker and returns the
// reply whatever its status. Only transport failures count against the
// breaker; an upstream 5xx is a reply the caller must see. Requests are never
// retried.
func doRequest(
	ctx context.Context,
	client *http.Client,
	cb *gobreaker.CircuitBreaker,
	rawURL string,
) (weather.UpstreamResponse, error) {
	if client == nil {
		return weather.UpstreamResponse{}, errNoHTTPClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return weather.UpstreamResponse{}, err
	}
	req.Header.Set("Accept", "application/json")

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := client.Do(req)
		if execErr != nil {
			// url.Error embeds the full URL, API key included.
			var ue *url.Error
			if errors.As(execErr, &ue) {
				return nil, fmt.Errorf("%s %s%s: %w", ue.Op, req.URL.Host, req.URL.Path, ue.Err)
			}
			return nil, execErr
		}
		defer resp.Body.Close()

		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, fmt.Errorf("read response body: %w", readErr)
		}

		return weather.UpstreamResponse{StatusCode: resp.StatusCode, Body: body}, nil
	})

	switch {
	case err == nil:
		out, ok := result.(weather.UpstreamResponse)
		if !ok {
			return weather.UpstreamResponse{}, fmt.Errorf("unexpected result type from circuit breaker")
		}
		return out, nil
	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		return weather.UpstreamResponse{}, fmt.Errorf("%w: %v", errCircuitOpen, err)
	default:
		return weather.UpstreamResponse{}, err
	}
}
