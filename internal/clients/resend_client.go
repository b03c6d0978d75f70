package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const resendService = "Resend"

// EmailMessage is one transactional email
type EmailMessage struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// EmailClient sends transactional emails
type EmailClient interface {
	// SendEmail returns the provider's raw JSON answer
	SendEmail(ctx context.Context, message *EmailMessage) (json.RawMessage, error)
}

type resendClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	breaker    *CircuitBreaker
}

// NewResendClient creates a new Resend API client
func NewResendClient(baseURL, apiKey string, logger *logrus.Logger) EmailClient {
	return &resendClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		breaker: NewCircuitBreaker(DefaultCircuitBreakerConfig("resend"), logger),
	}
}

func (c *resendClient) SendEmail(ctx context.Context, message *EmailMessage) (json.RawMessage, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("resend API key not configured")
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.send(ctx, message)
	})
	if err != nil {
		log.Printf("[ResendClient] Failed to send %q to %v: %v", message.Subject, message.To, err)
		return nil, err
	}
	return result.(json.RawMessage), nil
}

func (c *resendClient) send(ctx context.Context, message *EmailMessage) (json.RawMessage, error) {
	body, err := json.Marshal(message)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, NewTransportError(resendService, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewTransportError(resendService, err)
	}

	if resp.StatusCode >= 400 {
		return nil, NewStatusError(resendService, resp.StatusCode, respBody)
	}

	if len(bytes.TrimSpace(respBody)) == 0 {
		respBody = []byte("{}")
	}
	return json.RawMessage(respBody), nil
}
