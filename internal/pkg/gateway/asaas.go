package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ManuelReschke/SubDesk/internal/pkg/config"
	"github.com/ManuelReschke/SubDesk/internal/pkg/metrics"
)

const (
	asaasProductionURL = "https://api.asaas.com/v3"
	asaasSandboxURL    = "https://sandbox.asaas.com/api/v3"

	maxResponseBytes = 1 << 20
)

// AsaasClient is the HTTP implementation of Gateway.
type AsaasClient struct {
	APIKey  string
	BaseURL string

	HTTPClient *http.Client
	Metrics    *metrics.Metrics
}

// BaseURLFor picks the Asaas endpoint for an environment name.
func BaseURLFor(environment string) string {
	if strings.EqualFold(strings.TrimSpace(environment), "production") {
		return asaasProductionURL
	}
	return asaasSandboxURL
}

// NewAsaasClient builds a client from configuration. ASAAS_BASE_URL overrides
// the environment derived endpoint.
func NewAsaasClient(cfg config.AsaasConfig, m *metrics.Metrics) (*AsaasClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("ASAAS_API_KEY is not configured")
	}
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = BaseURLFor(cfg.Environment)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	return &AsaasClient{
		APIKey:  strings.TrimSpace(cfg.APIKey),
		BaseURL: strings.TrimRight(base, "/"),
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		Metrics: m,
	}, nil
}

func (c *AsaasClient) CreateCustomer(ctx context.Context, in CustomerInput) (*Customer, error) {
	if in.MobilePhone == "" {
		in.MobilePhone = in.Phone
	}
	var out Customer
	if err := c.do(ctx, OpCreateCustomer, http.MethodPost, "/customers", in, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.ID) == "" {
		return nil, &RequestError{Op: OpCreateCustomer, StatusCode: http.StatusOK, Message: DefaultMessage(OpCreateCustomer)}
	}
	return &out, nil
}

func (c *AsaasClient) CreateSubscription(ctx context.Context, in SubscriptionInput) (*Subscription, error) {
	var out Subscription
	if err := c.do(ctx, OpCreateSubscription, http.MethodPost, "/subscriptions", in, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.ID) == "" {
		return nil, &RequestError{Op: OpCreateSubscription, StatusCode: http.StatusOK, Message: DefaultMessage(OpCreateSubscription)}
	}
	return &out, nil
}

func (c *AsaasClient) GetSubscription(ctx context.Context, id string) (*Subscription, error) {
	var out Subscription
	if err := c.do(ctx, OpGetSubscription, http.MethodGet, "/subscriptions/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *AsaasClient) CancelSubscription(ctx context.Context, id string) error {
	return c.do(ctx, OpCancelSubscription, http.MethodDelete, "/subscriptions/"+url.PathEscape(id), nil, nil)
}

type asaasErrorBody struct {
	Errors []struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"errors"`
}

func (c *AsaasClient) do(ctx context.Context, op, method, path string, in, out interface{}) (err error) {
	start := time.Now()
	defer func() {
		c.Metrics.ObserveGateway(op, outcomeOf(err), time.Since(start))
	}()

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("gateway %s: encode request: %w", op, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("gateway %s: build request: %w", op, err)
	}
	req.Header.Set("access_token", c.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "SubDesk")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return newTransportError(op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return newTransportError(op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &RequestError{Op: op, StatusCode: resp.StatusCode, Message: errorDescription(op, raw)}
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func errorDescription(op string, raw []byte) string {
	var body asaasErrorBody
	if err := json.Unmarshal(raw, &body); err == nil && len(body.Errors) > 0 {
		if d := strings.TrimSpace(body.Errors[0].Description); d != "" {
			return d
		}
	}
	return DefaultMessage(op)
}

func outcomeOf(err error) string {
	if err == nil {
		return metrics.OutcomeSuccess
	}
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return metrics.OutcomeRejected
	}
	if errors.Is(err, ErrTimeout) {
		return metrics.OutcomeTimeout
	}
	return metrics.OutcomeTransport
}

var _ Gateway = (*AsaasClient)(nil)
