package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"

	"github.com/toolroom/loantrack/core"
)

const defaultRequestTimeout = 10 * time.Second

var unmarshal = jsoniter.ConfigFastest

// HTTPCollaborator talks to the billing collaborator over its JSON API.
// Charge requests are keyed by request id on the wire, so redelivering one is
// safe on both sides.
type HTTPCollaborator struct {
	baseURL string
	client  *http.Client
}

// HTTPCollaboratorOption defines a functional option for configuring the HTTPCollaborator.
type HTTPCollaboratorOption func(*HTTPCollaborator)

// WithHTTPClient overrides the HTTP client, e.g. for custom timeouts.
func WithHTTPClient(client *http.Client) HTTPCollaboratorOption {
	return func(c *HTTPCollaborator) {
		c.client = client
	}
}

// NewHTTPCollaborator creates an HTTPCollaborator against the given base URL.
func NewHTTPCollaborator(baseURL string, opts ...HTTPCollaboratorOption) *HTTPCollaborator {
	c := &HTTPCollaborator{
		baseURL: baseURL,
		client:  &http.Client{Timeout: defaultRequestTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type chargeRequestBody struct {
	RequestID core.RequestIDString `json:"request_id"`
	LoanID    core.LoanIDString    `json:"loan_id"`
	Amount    decimal.Decimal      `json:"amount"`
}

type chargeStatusBody struct {
	RequestID core.RequestIDString `json:"request_id"`
	Status    ChargeStatus         `json:"status"`
}

// RequestCharge implements Collaborator. A 2xx answer acknowledges receipt of
// the request; it says nothing about the charge's outcome.
func (c *HTTPCollaborator) RequestCharge(
	ctx context.Context,
	loanID core.LoanIDString,
	amount decimal.Decimal,
	requestID core.RequestIDString,
) error {
	body, err := json.Marshal(chargeRequestBody{
		RequestID: requestID,
		LoanID:    loanID,
		Amount:    amount,
	})
	if err != nil {
		return fmt.Errorf("marshaling charge request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/charges", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("charge request not acknowledged: status %d", resp.StatusCode)
	}

	return nil
}

// QueryStatus implements Collaborator.
func (c *HTTPCollaborator) QueryStatus(ctx context.Context, requestID core.RequestIDString) (ChargeStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/charges/"+requestID, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("charge status query failed: status %d", resp.StatusCode)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var status chargeStatusBody
	if err := unmarshal.Unmarshal(payload, &status); err != nil {
		return "", fmt.Errorf("unmarshaling charge status: %w", err)
	}

	switch status.Status {
	case ChargeStatusPending, ChargeStatusSucceeded, ChargeStatusFailed:
		return status.Status, nil
	default:
		return "", fmt.Errorf("unknown charge status %q for request %s", status.Status, requestID)
	}
}
