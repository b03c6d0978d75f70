package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"returns-service/internal/models"
)

const (
	nuvemshopService   = "Nuvemshop"
	nuvemshopUserAgent = "Trocas.app (support@trocas.app)"
)

// NuvemshopClient talks to the commerce platform on behalf of a connected store
type NuvemshopClient interface {
	// GetStore validates credentials by fetching the storefront identity
	GetStore(ctx context.Context, apiURL, apiKey string) (*models.PlatformStore, error)
	// SearchOrders runs the platform order search for a query string
	SearchOrders(ctx context.Context, apiURL, apiKey, query string) ([]models.PlatformOrder, error)
	// ListOrders returns the most recent orders of any status
	ListOrders(ctx context.Context, apiURL, apiKey string) ([]models.OrderSummary, error)
	// ExchangeCode trades an OAuth authorization code for an access token
	ExchangeCode(ctx context.Context, code string) (*TokenResponse, error)
	// GetStoreName returns the localized store name, empty when none is set
	GetStoreName(ctx context.Context, apiURL, apiKey string) (string, error)
	// StoreAPIURL returns the REST base URL of a platform store id
	StoreAPIURL(platformStoreID string) string
}

// TokenResponse is the OAuth token endpoint answer
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Scope       string `json:"scope"`
	UserID      int64  `json:"user_id"`
}

// NuvemshopConfig holds the app-level settings of the client
type NuvemshopConfig struct {
	ClientID     string
	ClientSecret string
	AuthBaseURL  string
	APIBaseURL   string
}

type nuvemshopClient struct {
	config      NuvemshopConfig
	httpClient  *http.Client
	rateLimiter *rate.Limiter
}

// NewNuvemshopClient creates a new Nuvemshop API client
func NewNuvemshopClient(config NuvemshopConfig) NuvemshopClient {
	config.AuthBaseURL = strings.TrimRight(config.AuthBaseURL, "/")
	config.APIBaseURL = strings.TrimRight(config.APIBaseURL, "/")
	return &nuvemshopClient{
		config:      config,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		rateLimiter: rate.NewLimiter(rate.Limit(2), 1), // 2 requests per second
	}
}

func (c *nuvemshopClient) GetStore(ctx context.Context, apiURL, apiKey string) (*models.PlatformStore, error) {
	body, err := c.doRequest(ctx, http.MethodGet, apiURL, apiKey, "/store", nil)
	if err != nil {
		log.Printf("[NuvemshopClient] Credential validation failed: %v", err)
		return nil, err
	}

	var store nuvemshopStore
	if err := json.Unmarshal(body, &store); err != nil {
		return nil, fmt.Errorf("failed to parse store response: %w", err)
	}

	name := store.StoreName()
	if name == "" {
		name = fmt.Sprintf("Store %d", store.ID)
	}
	return &models.PlatformStore{
		ID:       store.ID,
		Name:     name,
		Email:    store.Email,
		Currency: store.MainCurrency,
	}, nil
}

// StoreName picks the localized store name, pt first
func (s nuvemshopStore) StoreName() string {
	for _, name := range []string{s.Name.PT, s.Name.ES, s.Name.EN} {
		if name != "" {
			return name
		}
	}
	return ""
}

func (c *nuvemshopClient) SearchOrders(ctx context.Context, apiURL, apiKey, query string) ([]models.PlatformOrder, error) {
	params := url.Values{}
	params.Set("q", query)

	body, err := c.doRequest(ctx, http.MethodGet, apiURL, apiKey, "/orders?"+params.Encode(), nil)
	if err != nil {
		log.Printf("[NuvemshopClient] Failed to fetch orders: %v", err)
		return nil, err
	}

	var orders []nuvemshopOrder
	if err := json.Unmarshal(body, &orders); err != nil {
		return nil, fmt.Errorf("failed to parse orders response: %w", err)
	}
	log.Printf("[NuvemshopClient] Found %d orders for query %q", len(orders), query)

	result := make([]models.PlatformOrder, 0, len(orders))
	for _, o := range orders {
		result = append(result, convertNuvemshopOrder(o))
	}
	return result, nil
}

func (c *nuvemshopClient) ListOrders(ctx context.Context, apiURL, apiKey string) ([]models.OrderSummary, error) {
	params := url.Values{}
	params.Set("per_page", "50")
	params.Set("status", "any")

	body, err := c.doRequest(ctx, http.MethodGet, apiURL, apiKey, "/orders?"+params.Encode(), nil)
	if err != nil {
		log.Printf("[NuvemshopClient] Failed to list orders: %v", err)
		return nil, err
	}

	var orders []nuvemshopOrder
	if err := json.Unmarshal(body, &orders); err != nil {
		return nil, fmt.Errorf("failed to parse orders response: %w", err)
	}

	summaries := make([]models.OrderSummary, 0, len(orders))
	for _, o := range orders {
		order := convertNuvemshopOrder(o)
		summaries = append(summaries, models.OrderSummary{
			ID:            order.ID,
			Number:        order.Number,
			CustomerName:  order.Customer.Name,
			CustomerEmail: order.Customer.Email,
			Total:         order.Total,
			CreatedAt:     order.CreatedAt,
			Status:        order.Status,
		})
	}
	return summaries, nil
}

func (c *nuvemshopClient) ExchangeCode(ctx context.Context, code string) (*TokenResponse, error) {
	payload := map[string]string{
		"client_id":     c.config.ClientID,
		"client_secret": c.config.ClientSecret,
		"grant_type":    "authorization_code",
		"code":          code,
	}
	body, err := c.doRequest(ctx, http.MethodPost, c.config.AuthBaseURL, "", "/apps/authorize/token", payload)
	if err != nil {
		log.Printf("[NuvemshopClient] Token exchange failed: %v", err)
		return nil, err
	}

	var token TokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}
	if token.AccessToken == "" {
		return nil, NewStatusError(nuvemshopService, http.StatusBadGateway, body)
	}
	return &token, nil
}

// GetStoreName fetches the localized name of a freshly authorized store
func (c *nuvemshopClient) GetStoreName(ctx context.Context, apiURL, apiKey string) (string, error) {
	body, err := c.doRequest(ctx, http.MethodGet, apiURL, apiKey, "/store", nil)
	if err != nil {
		return "", err
	}
	var store nuvemshopStore
	if err := json.Unmarshal(body, &store); err != nil {
		return "", fmt.Errorf("failed to parse store response: %w", err)
	}
	return store.StoreName(), nil
}

func (c *nuvemshopClient) StoreAPIURL(platformStoreID string) string {
	return fmt.Sprintf("%s/%s", c.config.APIBaseURL, platformStoreID)
}

// doRequest performs a rate-limited request against a store API base URL
func (c *nuvemshopClient) doRequest(ctx context.Context, method, baseURL, apiKey, path string, body interface{}) ([]byte, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(baseURL, "/")+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if apiKey != "" {
		req.Header.Set("Authentication", "bearer "+apiKey)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", nuvemshopUserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, NewTransportError(nuvemshopService, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewTransportError(nuvemshopService, err)
	}

	if resp.StatusCode >= 400 {
		return nil, NewStatusError(nuvemshopService, resp.StatusCode, respBody)
	}

	return respBody, nil
}

// Nuvemshop data structures
type nuvemshopLocalized struct {
	PT string `json:"pt"`
	ES string `json:"es"`
	EN string `json:"en"`
}

type nuvemshopStore struct {
	ID           int64              `json:"id"`
	Name         nuvemshopLocalized `json:"name"`
	Email        string             `json:"email"`
	MainCurrency string             `json:"main_currency"`
}

type nuvemshopOrder struct {
	ID       int64          `json:"id"`
	Number   flexibleString `json:"number"`
	Customer struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"customer"`
	Products  []nuvemshopProduct `json:"products"`
	Total     flexibleString     `json:"total"`
	CreatedAt string             `json:"created_at"`
	Status    string             `json:"status"`
}

type nuvemshopProduct struct {
	ID        int64          `json:"id"`
	ProductID int64          `json:"product_id"`
	Name      string         `json:"name"`
	Price     flexibleString `json:"price"`
	Quantity  flexibleInt    `json:"quantity"`
	Image     *struct {
		Src string `json:"src"`
	} `json:"image"`
	SKU *string `json:"sku"`
}

// flexibleString accepts JSON strings and numbers
type flexibleString string

func (f *flexibleString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexibleString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexibleString(n.String())
	return nil
}

func (f flexibleString) Float() float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(string(f)), 64)
	if err != nil {
		return 0
	}
	return v
}

// flexibleInt accepts JSON numbers and numeric strings
type flexibleInt int

func (f *flexibleInt) UnmarshalJSON(data []byte) error {
	var s flexibleString
	if err := s.UnmarshalJSON(data); err != nil {
		return err
	}
	*f = flexibleInt(int(s.Float()))
	return nil
}

var orderTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func parseOrderTime(value string) time.Time {
	for _, layout := range orderTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	log.Printf("[NuvemshopClient] Unparseable order date %q", value)
	return time.Time{}
}

func convertNuvemshopOrder(o nuvemshopOrder) models.PlatformOrder {
	items := make([]models.OrderItem, 0, len(o.Products))
	for _, p := range o.Products {
		item := models.OrderItem{
			ID:        p.ID,
			ProductID: p.ProductID,
			Name:      p.Name,
			Price:     p.Price.Float(),
			Quantity:  int(p.Quantity),
		}
		if p.Image != nil {
			item.Image = p.Image.Src
		}
		if p.SKU != nil {
			item.SKU = *p.SKU
		}
		items = append(items, item)
	}

	return models.PlatformOrder{
		ID:     o.ID,
		Number: string(o.Number),
		Customer: models.OrderCustomer{
			Name:  o.Customer.Name,
			Email: o.Customer.Email,
		},
		Items:     items,
		Total:     o.Total.Float(),
		CreatedAt: parseOrderTime(o.CreatedAt),
		Status:    o.Status,
	}
}
