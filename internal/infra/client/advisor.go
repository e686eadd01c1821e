// Package client holds HTTP clients for external services.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/expensesink/expensesink-api/internal/domain"
	"github.com/expensesink/expensesink-api/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("client")

// AdvisorClient calls the AI advisor service.
type AdvisorClient struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
}

// NewAdvisorClient creates a new AdvisorClient.
func NewAdvisorClient(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, cfg resilience.Config) *AdvisorClient {
	return &AdvisorClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		cb:         cb,
		cfg:        cfg,
	}
}

// Call sends the user's question plus a budget snapshot to the advisor
// and returns its answer.
func (c *AdvisorClient) Call(ctx context.Context, req *domain.AdvisorRequest) (*domain.AdvisorResponse, error) {
	ctx, span := tracer.Start(ctx, "AdvisorClient.Call")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", req.UserID))

	// No configured advisor degrades the endpoint to 503 without
	// burning retries or breaker state on an address we know is absent.
	if c.baseURL == "" {
		return nil, &domain.ErrCircuitOpen{Service: "advisor"}
	}

	var advisorResp domain.AdvisorResponse

	result, err := c.cb.Execute(func() (any, error) {
		innerErr := resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			body, err := json.Marshal(req)
			if err != nil {
				return err
			}

			url := fmt.Sprintf("%s/v1/advisor/ask", c.baseURL)
			httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
			if err != nil {
				return err
			}
			httpReq.Header.Set("Content-Type", "application/json")

			resp, err := c.httpClient.Do(httpReq)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("advisor API returned status %d", resp.StatusCode)
			}

			return json.NewDecoder(resp.Body).Decode(&advisorResp)
		})
		if innerErr != nil {
			return nil, innerErr
		}
		return &advisorResp, nil
	})

	if err != nil {
		switch {
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			return nil, &domain.ErrCircuitOpen{Service: "advisor"}
		case errors.Is(err, context.DeadlineExceeded):
			return nil, &domain.ErrTimeout{Operation: "advisor call"}
		default:
			return nil, &domain.ErrExternalService{Service: "advisor", Err: err}
		}
	}

	return result.(*domain.AdvisorResponse), nil
}
