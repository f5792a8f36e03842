//go:build integration

// Black-box suite against a running server. Point BIZDESK_TEST_URL at the
// deployment under test, e.g.
//
//	BIZDESK_TEST_URL=http://localhost:8080 go test -tags integration ./tests/integration
//
// Credentials default to the seed values and can be overridden with
// BIZDESK_TEST_USERNAME / BIZDESK_TEST_PASSWORD.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"testing"
	"time"
)

var (
	baseURL    string
	httpClient *http.Client
	authToken  string
)

// Response types — defined locally to keep tests truly black-box (no internal imports).

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type productResponse struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type orderItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  string `json:"quantity"`
}

type orderRequest struct {
	CustomerName   string             `json:"customerName"`
	CustomerMobile string             `json:"customerMobile,omitempty"`
	PaymentType    string             `json:"paymentType"`
	Items          []orderItemRequest `json:"items"`
}

type orderResponse struct {
	ID           string  `json:"id"`
	CustomerName string  `json:"customerName"`
	Total        float64 `json:"total"`
	CreatedAt    string  `json:"createdAt"`
}

type countsResponse struct {
	Daily  int `json:"daily"`
	Weekly int `json:"weekly"`
	Yearly int `json:"yearly"`
}

type exportResponse struct {
	Report string `json:"report"`
	Rows   int    `json:"rows"`
	URL    string `json:"url"`
}

func TestMain(m *testing.M) {
	baseURL = os.Getenv("BIZDESK_TEST_URL")
	if baseURL == "" {
		log.Println("BIZDESK_TEST_URL not set, skipping integration suite")
		os.Exit(0)
	}
	httpClient = &http.Client{Timeout: 10 * time.Second}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := waitForReady(ctx); err != nil {
		log.Fatalf("wait for server: %v", err)
	}

	token, err := login()
	if err != nil {
		log.Fatalf("login: %v", err)
	}
	authToken = token

	os.Exit(m.Run())
}

func waitForReady(ctx context.Context) error {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			resp, err := httpClient.Get(baseURL + "/readyz")
			if err != nil {
				continue
			}
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
	}
}

func login() (string, error) {
	username := os.Getenv("BIZDESK_TEST_USERNAME")
	if username == "" {
		username = "admin"
	}
	password := os.Getenv("BIZDESK_TEST_PASSWORD")
	if password == "" {
		password = "admin"
	}

	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	resp, err := httpClient.Post(baseURL+"/api/login", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login status %d", resp.StatusCode)
	}
	var out loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.Token, nil
}

// HTTP helpers.

func doGet(t *testing.T, path string) *http.Response {
	t.Helper()
	return doRequest(t, http.MethodGet, path, nil, authToken)
}

func doPost(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	return doRequest(t, http.MethodPost, path, body, authToken)
}

func doPostNoAuth(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	return doRequest(t, http.MethodPost, path, body, "")
}

func doRequest(t *testing.T, method, path string, body any, token string) *http.Response {
	t.Helper()

	var rd *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(data)
	} else {
		rd = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, baseURL+path, rd)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decodeJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}
