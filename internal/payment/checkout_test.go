package payment

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/api/internal/config"
)

func newTestClient(baseURL string) *Client {
	c := NewClient(config.PaymentConfig{
		SecretKey:  "sk_test_123",
		Currency:   "gbp",
		SuccessURL: "https://shop.example/orders/success",
		CancelURL:  "https://shop.example/orders/cancel",
		Timeout:    2 * time.Second,
	})
	c.baseURL = baseURL
	return c
}

func TestCreateSession(t *testing.T) {
	var gotForm map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/checkout/sessions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk_test_123" {
			t.Errorf("authorization = %q", auth)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		gotForm = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"cs_test_1","url":"https://checkout.example/pay/cs_test_1"}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	session, err := client.CreateSession(context.Background(), "ref-1", []LineItem{
		{Name: "Coffee", Amount: 250, Quantity: 2},
		{Name: "Mug", Amount: 899, Quantity: 1},
	})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if session.URL != "https://checkout.example/pay/cs_test_1" {
		t.Errorf("url = %q", session.URL)
	}

	checks := map[string]string{
		"mode":                                      "payment",
		"client_reference_id":                       "ref-1",
		"line_items[0][price_data][unit_amount]":    "250",
		"line_items[0][quantity]":                   "2",
		"line_items[1][price_data][product_data][name]": "Mug",
		"line_items[1][price_data][currency]":       "gbp",
	}
	for key, want := range checks {
		if got := gotForm[key]; len(got) != 1 || got[0] != want {
			t.Errorf("form[%q] = %v, want %q", key, got, want)
		}
	}
}

func TestCreateSessionProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":{"message":"Your card was declined.","type":"card_error"}}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.CreateSession(context.Background(), "ref-1", nil)
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("err = %v, want ErrUpstream", err)
	}
}

func TestCreateSessionUnreachable(t *testing.T) {
	client := newTestClient("http://127.0.0.1:1")
	_, err := client.CreateSession(context.Background(), "ref-1", nil)
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("err = %v, want ErrUpstream", err)
	}
}
