package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bilal-alaabadi/mahen-b/internal/usecase"
)

const apiKeyHeader = "thawani-api-key"

// Client talks to the Thawani checkout API.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpc:   &http.Client{Timeout: timeout},
	}
}

// envelope is the gateway's uniform response wrapper.
type envelope struct {
	Success     bool            `json:"success"`
	Code        int             `json:"code"`
	Description string          `json:"description"`
	Data        json.RawMessage `json:"data"`
}

type createSessionBody struct {
	ClientReferenceID string                     `json:"client_reference_id"`
	Mode              string                     `json:"mode"`
	Products          []usecase.CheckoutLineItem `json:"products"`
	SuccessURL        string                     `json:"success_url"`
	CancelURL         string                     `json:"cancel_url"`
	Metadata          usecase.SessionMetadata    `json:"metadata"`
}

type sessionData struct {
	SessionID         string                  `json:"session_id"`
	ClientReferenceID string                  `json:"client_reference_id"`
	PaymentStatus     string                  `json:"payment_status"`
	TotalAmount       int64                   `json:"total_amount"`
	Metadata          usecase.SessionMetadata `json:"metadata"`
}

func (c *Client) CreateSession(ctx context.Context, req usecase.CreateSessionRequest) (string, error) {
	body := createSessionBody{
		ClientReferenceID: req.ClientReferenceID,
		Mode:              "payment",
		Products:          req.Products,
		SuccessURL:        req.SuccessURL,
		CancelURL:         req.CancelURL,
		Metadata:          req.Metadata,
	}

	var data sessionData
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/checkout/session", body, &data, "create session"); err != nil {
		return "", err
	}
	if data.SessionID == "" {
		return "", &usecase.GatewayError{Op: "create session", Detail: "no session_id returned"}
	}
	return data.SessionID, nil
}

func (c *Client) ListSessions(ctx context.Context, limit, skip int) ([]usecase.SessionSummary, error) {
	url := fmt.Sprintf("%s/checkout/session/?limit=%d&skip=%d", c.baseURL, limit, skip)

	var data []sessionData
	if err := c.do(ctx, http.MethodGet, url, nil, &data, "list sessions"); err != nil {
		return nil, err
	}

	out := make([]usecase.SessionSummary, 0, len(data))
	for _, s := range data {
		out = append(out, usecase.SessionSummary{
			SessionID:         s.SessionID,
			ClientReferenceID: s.ClientReferenceID,
		})
	}
	return out, nil
}

func (c *Client) GetSession(ctx context.Context, sessionID string) (*usecase.SessionDetail, error) {
	url := c.baseURL + "/checkout/session/" + sessionID

	var data sessionData
	if err := c.do(ctx, http.MethodGet, url, nil, &data, "get session"); err != nil {
		return nil, err
	}
	if data.SessionID == "" {
		return nil, nil
	}
	return &usecase.SessionDetail{
		SessionID:         data.SessionID,
		ClientReferenceID: data.ClientReferenceID,
		PaymentStatus:     data.PaymentStatus,
		TotalAmount:       data.TotalAmount,
		Metadata:          data.Metadata,
	}, nil
}

// do runs one JSON exchange against the gateway and decodes the envelope
// data into out.
func (c *Client) do(ctx context.Context, method, url string, in, out any, op string) error {
	var reqBody io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return &usecase.GatewayError{Op: op, Err: err}
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return &usecase.GatewayError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apiKeyHeader, c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return &usecase.GatewayError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &usecase.GatewayError{Op: op, Status: resp.StatusCode, Err: err}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return &usecase.GatewayError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !env.Success {
		return &usecase.GatewayError{Op: op, Status: resp.StatusCode, Detail: env.Description}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &usecase.GatewayError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode data: %w", err)}
		}
	}
	return nil
}

var _ usecase.PaymentGateway = (*Client)(nil)
