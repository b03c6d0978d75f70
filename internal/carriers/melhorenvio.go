package carriers

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

	"golang.org/x/time/rate"

	"returns-service/internal/clients"
	"returns-service/internal/models"
)

// Melhor Envio API endpoints
const (
	MelhorEnvioProductionURL = "https://melhorenvio.com.br/api/v2"
	MelhorEnvioSandboxURL    = "https://sandbox.melhorenvio.com.br/api/v2"

	melhorEnvioService = "Melhor Envio"
	userAgent          = "Trocas.app (support@trocas.app)"
)

// MelhorEnvioClient is the carrier aggregator used for reverse logistics labels
type MelhorEnvioClient interface {
	Calculate(ctx context.Context, req *QuoteRequest) ([]models.ShippingQuote, error)
	AddToCart(ctx context.Context, req *CartRequest) (*CartResponse, error)
	Checkout(ctx context.Context, shippingID string) (json.RawMessage, error)
	Generate(ctx context.Context, shippingID string) (json.RawMessage, error)
	Print(ctx context.Context, shippingID string) (string, error)
	Tracking(ctx context.Context, shippingID string) (*TrackingInfo, error)
}

// QuoteRequest is the payload of /me/shipment/calculate
type QuoteRequest struct {
	From     PostalCode     `json:"from"`
	To       PostalCode     `json:"to"`
	Products []QuoteProduct `json:"products"`
}

type PostalCode struct {
	PostalCode string `json:"postal_code"`
}

type QuoteProduct struct {
	ID             string  `json:"id"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	Length         int     `json:"length"`
	Weight         float64 `json:"weight"`
	InsuranceValue float64 `json:"insurance_value"`
	Quantity       int     `json:"quantity"`
}

// CartRequest is the payload of /me/cart
type CartRequest struct {
	Service  int           `json:"service"`
	From     CartAddress   `json:"from"`
	To       CartAddress   `json:"to"`
	Products []CartProduct `json:"products"`
	Volumes  []CartVolume  `json:"volumes"`
	Options  CartOptions   `json:"options"`
}

type CartAddress struct {
	Name            string `json:"name"`
	Phone           string `json:"phone"`
	Email           string `json:"email"`
	Document        string `json:"document,omitempty"`
	CompanyDocument string `json:"company_document,omitempty"`
	Address         string `json:"address"`
	Complement      string `json:"complement"`
	Number          string `json:"number"`
	District        string `json:"district"`
	City            string `json:"city"`
	StateAbbr       string `json:"state_abbr"`
	PostalCode      string `json:"postal_code"`
}

type CartProduct struct {
	Name         string `json:"name"`
	Quantity     string `json:"quantity"`
	UnitaryValue string `json:"unitary_value"`
}

type CartVolume struct {
	Height int     `json:"height"`
	Width  int     `json:"width"`
	Length int     `json:"length"`
	Weight float64 `json:"weight"`
}

type CartOptions struct {
	InsuranceValue float64   `json:"insurance_value"`
	Receipt        bool      `json:"receipt"`
	OwnHand        bool      `json:"own_hand"`
	Reverse        bool      `json:"reverse"`
	NonCommercial  bool      `json:"non_commercial"`
	Platform       string    `json:"platform"`
	Tags           []CartTag `json:"tags"`
}

type CartTag struct {
	Tag string  `json:"tag"`
	URL *string `json:"url"`
}

// CartResponse keeps the carrier shipment id and the raw cart answer
type CartResponse struct {
	ID  string
	Raw json.RawMessage
}

// TrackingInfo is the entry of one shipment in the tracking response
type TrackingInfo struct {
	Tracking *string
	Price    float64
	Raw      json.RawMessage
}

type melhorEnvioClient struct {
	baseURL     string
	token       string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
}

// NewMelhorEnvioClient creates a client bound to one API environment
func NewMelhorEnvioClient(baseURL, token string) MelhorEnvioClient {
	return &melhorEnvioClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		token:       token,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		rateLimiter: rate.NewLimiter(rate.Limit(5), 2),
	}
}

func (c *melhorEnvioClient) Calculate(ctx context.Context, req *QuoteRequest) ([]models.ShippingQuote, error) {
	body, err := c.post(ctx, "/me/shipment/calculate", req)
	if err != nil {
		log.Printf("[MelhorEnvio] Quote failed: %v", err)
		return nil, err
	}

	var quotes []models.ShippingQuote
	if err := json.Unmarshal(body, &quotes); err != nil {
		return nil, fmt.Errorf("failed to parse quote response: %w", err)
	}

	available := make([]models.ShippingQuote, 0, len(quotes))
	for _, q := range quotes {
		if q.Error != "" {
			continue
		}
		available = append(available, q)
	}
	log.Printf("[MelhorEnvio] %d of %d services available", len(available), len(quotes))
	return available, nil
}

func (c *melhorEnvioClient) AddToCart(ctx context.Context, req *CartRequest) (*CartResponse, error) {
	body, err := c.post(ctx, "/me/cart", req)
	if err != nil {
		log.Printf("[MelhorEnvio] Cart insert failed: %v", err)
		return nil, err
	}

	var cart struct {
		ID flexibleID `json:"id"`
	}
	if err := json.Unmarshal(body, &cart); err != nil {
		return nil, fmt.Errorf("failed to parse cart response: %w", err)
	}
	if cart.ID == "" {
		return nil, fmt.Errorf("cart response has no shipment id")
	}
	return &CartResponse{ID: string(cart.ID), Raw: body}, nil
}

func (c *melhorEnvioClient) Checkout(ctx context.Context, shippingID string) (json.RawMessage, error) {
	body, err := c.post(ctx, "/me/shipment/checkout", ordersPayload(shippingID))
	if err != nil {
		log.Printf("[MelhorEnvio] Checkout failed for %s: %v", shippingID, err)
		return nil, err
	}
	return body, nil
}

func (c *melhorEnvioClient) Generate(ctx context.Context, shippingID string) (json.RawMessage, error) {
	body, err := c.post(ctx, "/me/shipment/generate", ordersPayload(shippingID))
	if err != nil {
		log.Printf("[MelhorEnvio] Generate failed for %s: %v", shippingID, err)
		return nil, err
	}
	return body, nil
}

func (c *melhorEnvioClient) Print(ctx context.Context, shippingID string) (string, error) {
	payload := map[string]interface{}{
		"mode":   "public",
		"orders": []string{shippingID},
	}
	body, err := c.post(ctx, "/me/shipment/print", payload)
	if err != nil {
		return "", err
	}

	var printData struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(body, &printData); err != nil {
		return "", fmt.Errorf("failed to parse print response: %w", err)
	}
	return printData.URL, nil
}

func (c *melhorEnvioClient) Tracking(ctx context.Context, shippingID string) (*TrackingInfo, error) {
	body, err := c.post(ctx, "/me/shipment/tracking", ordersPayload(shippingID))
	if err != nil {
		return nil, err
	}

	var byID map[string]json.RawMessage
	if err := json.Unmarshal(body, &byID); err != nil {
		return nil, fmt.Errorf("failed to parse tracking response: %w", err)
	}

	raw, ok := byID[shippingID]
	if !ok {
		return &TrackingInfo{}, nil
	}

	var entry struct {
		Tracking *string    `json:"tracking"`
		Price    flexibleID `json:"price"`
	}
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("failed to parse tracking entry: %w", err)
	}
	return &TrackingInfo{
		Tracking: entry.Tracking,
		Price:    entry.Price.Float(),
		Raw:      raw,
	}, nil
}

func ordersPayload(shippingID string) map[string]interface{} {
	return map[string]interface{}{"orders": []string{shippingID}}
}

func (c *melhorEnvioClient) post(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, clients.NewTransportError(melhorEnvioService, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, clients.NewTransportError(melhorEnvioService, err)
	}

	if resp.StatusCode >= 400 {
		return nil, clients.NewStatusError(melhorEnvioService, resp.StatusCode, respBody)
	}

	return respBody, nil
}
