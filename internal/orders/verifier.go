package orders

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"pifko/internal/apperr"
)

// BeerVerifier confirms that a beer id is known to the brewery service
// before an order line refers to it.
type BeerVerifier interface {
	VerifyBeer(ctx context.Context, beerID uint) error
}

// NoopVerifier accepts every id. It is used when no brewery URL is configured.
type NoopVerifier struct{}

func (NoopVerifier) VerifyBeer(context.Context, uint) error {
	return nil
}

// HTTPBeerVerifier asks the brewery REST surface for GET /beers/{id}.
type HTTPBeerVerifier struct {
	baseURL string
	client  *http.Client
}

func NewHTTPBeerVerifier(baseURL string, timeout time.Duration) *HTTPBeerVerifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPBeerVerifier{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (v *HTTPBeerVerifier) VerifyBeer(ctx context.Context, beerID uint) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/beers/%d", v.baseURL, beerID), nil)
	if err != nil {
		return fmt.Errorf("build beer lookup: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("beer %d could not be verified: %v: %w", beerID, err, apperr.ErrUnverifiedReference)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("beer %d is unknown to the brewery: %w", beerID, apperr.ErrUnverifiedReference)
	default:
		return fmt.Errorf("beer %d lookup returned %d: %w", beerID, resp.StatusCode, apperr.ErrUnverifiedReference)
	}
}

// NewBeerVerifier picks the HTTP verifier when baseURL is set.
func NewBeerVerifier(baseURL string, timeout time.Duration) BeerVerifier {
	if strings.TrimSpace(baseURL) == "" {
		return NoopVerifier{}
	}
	return NewHTTPBeerVerifier(baseURL, timeout)
}
