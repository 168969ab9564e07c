package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"storefront/api/internal/config"
)

const defaultBaseURL = "https://api.stripe.com/v1"

// ErrUpstream marks checkout provider failures. They surface to the caller
// as a gateway error; nothing here retries.
var ErrUpstream = errors.New("payment provider error")

// LineItem is one billable order line. Amount is the unit price in minor
// currency units (pence for gbp).
type LineItem struct {
	Name     string
	Amount   int64
	Quantity int
}

type Session struct {
	ID  string
	URL string
}

// Client drives the provider's hosted checkout: create a session, redirect
// the shopper to its URL. Sessions are single use; an unpaid order can mint
// as many as it likes.
type Client struct {
	secretKey  string
	currency   string
	successURL string
	cancelURL  string
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg config.PaymentConfig) *Client {
	return &Client{
		secretKey:  cfg.SecretKey,
		currency:   cfg.Currency,
		successURL: cfg.SuccessURL,
		cancelURL:  cfg.CancelURL,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type sessionResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (c *Client) CreateSession(ctx context.Context, clientReference string, items []LineItem) (Session, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", c.successURL)
	form.Set("cancel_url", c.cancelURL)
	form.Set("client_reference_id", clientReference)
	for i, item := range items {
		prefix := fmt.Sprintf("line_items[%d]", i)
		form.Set(prefix+"[price_data][currency]", c.currency)
		form.Set(prefix+"[price_data][product_data][name]", item.Name)
		form.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(item.Amount, 10))
		form.Set(prefix+"[quantity]", strconv.Itoa(item.Quantity))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return Session{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Session{}, fmt.Errorf("%w: read response: %v", ErrUpstream, err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
			return Session{}, fmt.Errorf("%w: %s (%s)", ErrUpstream, apiErr.Error.Message, apiErr.Error.Type)
		}
		return Session{}, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var session sessionResponse
	if err := json.Unmarshal(body, &session); err != nil {
		return Session{}, fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
	}
	if session.URL == "" {
		return Session{}, fmt.Errorf("%w: session without redirect url", ErrUpstream)
	}

	return Session{ID: session.ID, URL: session.URL}, nil
}
