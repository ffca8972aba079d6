package outreach

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const apiURL = "https://api.resend.com"

// Client is a thin wrapper over the transactional email provider API.
type Client struct {
	ctx        context.Context
	apiKey     string
	logger     *zap.Logger
	HTTPClient *http.Client
	APIURL     string
}

// SendRequest is the outbound email payload.
type SendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

// SendResponse carries the provider-assigned message id.
type SendResponse struct {
	ID string `json:"id"`
}

// Email is the provider's view of a sent message, used for delivery tracking.
type Email struct {
	ID        string `json:"id"`
	To        string `json:"to"`
	Subject   string `json:"subject"`
	LastEvent string `json:"last_event"`
	CreatedAt string `json:"created_at"`
}

func NewClient(ctx context.Context, logger *zap.Logger, apiKey string) *Client {
	return &Client{
		ctx:    ctx,
		apiKey: apiKey,
		APIURL: apiURL,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger,
	}
}

// Send submits the email and returns the provider message id. An
// Idempotency-Key header guards against duplicate sends on retried requests.
func (c *Client) Send(req *SendRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal send request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(c.ctx, http.MethodPost, c.APIURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	c.setHeaders(httpReq)
	httpReq.Header.Set("Idempotency-Key", uuid.NewString())

	c.logger.Debug("sending email", zap.String("to", req.To), zap.String("subject", req.Subject))

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("bad status: %s: %s", resp.Status, data)
	}

	var sent SendResponse
	if err := json.NewDecoder(resp.Body).Decode(&sent); err != nil {
		return "", fmt.Errorf("decode send response: %w", err)
	}

	return sent.ID, nil
}

// GetEmail fetches the delivery status of a previously sent message.
func (c *Client) GetEmail(id string) (*Email, error) {
	req, err := http.NewRequestWithContext(c.ctx, http.MethodGet, fmt.Sprintf("%s/emails/%s", c.APIURL, id), nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	var email Email
	if err := json.NewDecoder(resp.Body).Decode(&email); err != nil {
		return nil, fmt.Errorf("decode email: %w", err)
	}

	return &email, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	req.Header.Set("Content-Type", "application/json")
}
