package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const internalSecretHeader = "x-inngest-secret"

// APIClient calls the internal WhatsApp endpoints on behalf of a tenant.
type APIClient struct {
	baseURL string
	secret  string
	http    *http.Client
}

func NewAPIClient(baseURL, secret string, timeout time.Duration) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  secret,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *APIClient) post(ctx context.Context, path, tenantID string) error {
	body, err := json.Marshal(map[string]string{"tenantId": tenantID})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(internalSecretHeader, c.secret)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("POST %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}

func (c *APIClient) DisconnectInstance(ctx context.Context, tenantID string) error {
	return c.post(ctx, "/api/whatsapp/disconnect", tenantID)
}

func (c *APIClient) DeleteInstance(ctx context.Context, tenantID string) error {
	return c.post(ctx, "/api/whatsapp/delete", tenantID)
}

func (c *APIClient) CreateInstance(ctx context.Context, tenantID string) error {
	return c.post(ctx, "/api/whatsapp/instance", tenantID)
}

func (c *APIClient) ConnectInstance(ctx context.Context, tenantID string) error {
	return c.post(ctx, "/api/whatsapp/connect", tenantID)
}
