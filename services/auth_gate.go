package services

import (
	"context"
	"errors"
	"net/http"

	"github.com/yeremiapane/restaurant-saas/metrics"
	"github.com/yeremiapane/restaurant-saas/models"
	"github.com/yeremiapane/restaurant-saas/repository"
)

const (
	HeaderInstanceToken  = "x-instance-token"
	HeaderAPIKey         = "x-api-key"
	HeaderInternalSecret = "x-inngest-secret"
)

// TenantContext is the identity of an authenticated integration caller. Every field
// comes from the stored instance record, never from the request.
type TenantContext struct {
	TenantID      string
	InstanceID    string
	InstanceToken string
	APIKey        string
}

type InstanceDirectory interface {
	FindInstanceByToken(ctx context.Context, token string) (*models.WhatsAppInstance, error)
	FindInstanceByAPIKey(ctx context.Context, key string) (*models.WhatsAppInstance, error)
}

// AuthGate resolves integration callers. x-instance-token wins over x-api-key when both
// are sent; only the winning header is ever looked up.
type AuthGate struct {
	dir InstanceDirectory
}

func NewAuthGate(dir InstanceDirectory) *AuthGate {
	return &AuthGate{dir: dir}
}

func (g *AuthGate) Resolve(ctx context.Context, h http.Header) (*TenantContext, error) {
	var (
		scheme string
		inst   *models.WhatsAppInstance
		err    error
	)
	switch {
	case h.Get(HeaderInstanceToken) != "":
		scheme = "instance_token"
		inst, err = g.dir.FindInstanceByToken(ctx, h.Get(HeaderInstanceToken))
	case h.Get(HeaderAPIKey) != "":
		scheme = "api_key"
		inst, err = g.dir.FindInstanceByAPIKey(ctx, h.Get(HeaderAPIKey))
	default:
		metrics.AuthGateResults.WithLabelValues("none", "missing").Inc()
		return nil, ErrMissingCredentials
	}

	if errors.Is(err, repository.ErrNotFound) {
		metrics.AuthGateResults.WithLabelValues(scheme, "invalid").Inc()
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		metrics.AuthGateResults.WithLabelValues(scheme, "error").Inc()
		return nil, Upstream("Erro ao validar credenciais", err)
	}

	metrics.AuthGateResults.WithLabelValues(scheme, "ok").Inc()
	return &TenantContext{
		TenantID:      inst.TenantID,
		InstanceID:    inst.InstanceID,
		InstanceToken: inst.InstanceToken,
		APIKey:        inst.APIKey,
	}, nil
}
