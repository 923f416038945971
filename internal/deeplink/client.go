package deeplink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/carton-caps/referrals/internal/domain"
	"github.com/carton-caps/referrals/internal/metrics"
)

// Client talks to the external deferred deep link API over HTTP. Every
// operation funnels through send, so the rest of the service only ever sees
// two failure classes: ErrInvalidArgument before the wire, and
// *domain.ExternalServiceError for anything that went wrong on it.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(baseURL, apiKey string, httpClient *http.Client, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
		logger:     logger.With("component", "deeplink_client"),
	}
}

func (c *Client) GenerateLink(ctx context.Context, referralCode string) (*DeepLink, error) {
	if strings.TrimSpace(referralCode) == "" {
		return nil, fmt.Errorf("referral code is empty: %w", domain.ErrInvalidArgument)
	}

	return c.send(ctx, http.MethodPost, generateEndpoint, generateRequest{ReferralCode: referralCode})
}

func (c *Client) ExtendLinkLifetime(ctx context.Context, link *DeepLink) (*DeepLink, error) {
	if err := validateLink(link); err != nil {
		return nil, err
	}

	return c.send(ctx, http.MethodPut, updateEndpoint, updateRequest{ID: link.ID})
}

func (c *Client) DeleteLink(ctx context.Context, link *DeepLink) (*DeepLink, error) {
	if err := validateLink(link); err != nil {
		return nil, err
	}

	endpoint := deleteEndpoint + "/" + strconv.Itoa(link.ID)
	return c.send(ctx, http.MethodDelete, endpoint, nil)
}

// validateLink runs before any network call so a bad id never reaches the wire.
func validateLink(link *DeepLink) error {
	if link == nil {
		return fmt.Errorf("deep link is nil: %w", domain.ErrInvalidArgument)
	}
	if link.ID <= 0 {
		return fmt.Errorf("deep link id must be greater than 0: %w", domain.ErrInvalidArgument)
	}
	return nil
}

// send serializes the body when the verb carries one, executes the request,
// and maps transport errors and non-2xx statuses to *domain.ExternalServiceError.
func (c *Client) send(ctx context.Context, method, endpoint string, body any) (*DeepLink, error) {
	op := method + " " + endpoint

	// Delete carries the link id in its path; keep metric labels bounded.
	metricEndpoint := endpoint
	if i := strings.IndexByte(metricEndpoint, '/'); i > 0 {
		metricEndpoint = metricEndpoint[:i]
	}

	var bodyReader io.Reader
	if body != nil && (method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch) {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+endpoint, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if bodyReader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.ProviderCallDuration.WithLabelValues(metricEndpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		c.logger.ErrorContext(ctx, "deeplink request failed", "op", op, "error", err)
		metrics.ProviderCallsTotal.WithLabelValues(metricEndpoint, "transport_error").Inc()
		return nil, &domain.ExternalServiceError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Non-2xx bodies are opaque error payloads; keep them for the logs
		// and the error, never parse them.
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.ErrorContext(ctx, "deeplink request rejected",
			"op", op, "status", resp.StatusCode, "body", string(errBody))
		metrics.ProviderCallsTotal.WithLabelValues(metricEndpoint, "upstream_error").Inc()
		return nil, &domain.ExternalServiceError{Op: op, StatusCode: resp.StatusCode, Body: string(errBody)}
	}

	var link DeepLink
	if err := json.NewDecoder(resp.Body).Decode(&link); err != nil {
		metrics.ProviderCallsTotal.WithLabelValues(metricEndpoint, "decode_error").Inc()
		return nil, &domain.ExternalServiceError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}

	metrics.ProviderCallsTotal.WithLabelValues(metricEndpoint, "success").Inc()
	return &link, nil
}
