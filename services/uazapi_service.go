package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/yeremiapane/restaurant-saas/config"
	"github.com/yeremiapane/restaurant-saas/metrics"
)

// UazapiInstance is what the gateway returns when an instance is created.
type UazapiInstance struct {
	ID     string
	Token  string
	Status string
}

// UazapiConnection is the pairing material returned by /instance/connect.
type UazapiConnection struct {
	Status   string `json:"status"`
	QRCode   string `json:"qrcode,omitempty"`
	PairCode string `json:"paircode,omitempty"`
}

// GatewayError is a non-2xx response from the gateway.
type GatewayError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("uazapi %s: status %d: %s", e.Operation, e.StatusCode, e.Body)
}

// UazapiService talks to the Uazapi WhatsApp gateway. Admin calls use the admin token;
// per-instance calls use the instance token.
type UazapiService struct {
	baseURL    string
	adminToken string
	httpClient *http.Client
}

func NewUazapiService(cfg config.UazapiConfig) *UazapiService {
	return &UazapiService{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		adminToken: cfg.AdminToken,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type instancePayload struct {
	ID       string `json:"id"`
	Token    string `json:"token"`
	Status   string `json:"status"`
	QRCode   string `json:"qrcode"`
	PairCode string `json:"paircode"`
}

type instanceEnvelope struct {
	Token    string          `json:"token"`
	Instance instancePayload `json:"instance"`
}

func (s *UazapiService) InitInstance(ctx context.Context, name string) (*UazapiInstance, error) {
	var out instanceEnvelope
	err := s.do(ctx, "init", http.MethodPost, "/instance/init",
		http.Header{"admintoken": {s.adminToken}}, map[string]string{"name": name}, &out)
	if err != nil {
		return nil, err
	}
	token := out.Token
	if token == "" {
		token = out.Instance.Token
	}
	if token == "" || out.Instance.ID == "" {
		return nil, fmt.Errorf("uazapi init: response without instance id or token")
	}
	return &UazapiInstance{ID: out.Instance.ID, Token: token, Status: out.Instance.Status}, nil
}

// ConnectInstance starts pairing. An empty phone asks for a QR code, a phone number asks
// for a pairing code.
func (s *UazapiService) ConnectInstance(ctx context.Context, token, phone string) (*UazapiConnection, error) {
	body := map[string]string{}
	if phone != "" {
		body["phone"] = phone
	}
	var out instanceEnvelope
	if err := s.do(ctx, "connect", http.MethodPost, "/instance/connect", instanceHeader(token), body, &out); err != nil {
		return nil, err
	}
	return &UazapiConnection{Status: out.Instance.Status, QRCode: out.Instance.QRCode, PairCode: out.Instance.PairCode}, nil
}

func (s *UazapiService) InstanceStatus(ctx context.Context, token string) (string, error) {
	var out instanceEnvelope
	if err := s.do(ctx, "status", http.MethodGet, "/instance/status", instanceHeader(token), nil, &out); err != nil {
		return "", err
	}
	return out.Instance.Status, nil
}

func (s *UazapiService) SetWebhook(ctx context.Context, token, url string) error {
	body := map[string]interface{}{
		"url":     url,
		"enabled": true,
		"events":  []string{"messages", "connection"},
	}
	return s.do(ctx, "webhook", http.MethodPost, "/webhook", instanceHeader(token), body, nil)
}

func (s *UazapiService) DisconnectInstance(ctx context.Context, token string) error {
	return s.do(ctx, "disconnect", http.MethodPost, "/instance/disconnect", instanceHeader(token), nil, nil)
}

func (s *UazapiService) DeleteInstance(ctx context.Context, token string) error {
	return s.do(ctx, "delete", http.MethodDelete, "/instance", instanceHeader(token), nil, nil)
}

func instanceHeader(token string) http.Header {
	return http.Header{"token": {token}}
}

func (s *UazapiService) do(ctx context.Context, op, method, path string, headers http.Header, in, out interface{}) error {
	err := s.send(ctx, op, method, path, headers, in, out)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.GatewayCalls.WithLabelValues(op, outcome).Inc()
	return err
}

func (s *UazapiService) send(ctx context.Context, op, method, path string, headers http.Header, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("uazapi %s: encode request: %w", op, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("uazapi %s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	// Header names are sent lowercase as the gateway documents them.
	for k, v := range headers {
		req.Header[k] = v
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("uazapi %s: %w", op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("uazapi %s: read response: %w", op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &GatewayError{Operation: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("uazapi %s: decode response: %w", op, err)
	}
	return nil
}
