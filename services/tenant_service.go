package services

import (
	"context"
	"errors"
	"strings"

	"github.com/yeremiapane/restaurant-saas/models"
	"github.com/yeremiapane/restaurant-saas/repository"
)

type TenantDirectory interface {
	FindInstanceByToken(ctx context.Context, token string) (*models.WhatsAppInstance, error)
	FindTenant(ctx context.Context, id string) (*models.Tenant, error)
}

type TenantInfo struct {
	TenantID       string `json:"tenant_id"`
	TenantName     string `json:"tenant_name"`
	TenantSlug     string `json:"tenant_slug"`
	WhatsAppNumber string `json:"whatsapp_number"`
}

// TenantService answers integration questions about the caller's own tenant.
type TenantService struct {
	dir TenantDirectory
}

func NewTenantService(dir TenantDirectory) *TenantService {
	return &TenantService{dir: dir}
}

// InfoByInstanceToken only accepts the instance token. An unknown token is reported as a
// missing instance, not as bad credentials.
func (s *TenantService) InfoByInstanceToken(ctx context.Context, token string) (*TenantInfo, error) {
	if token == "" {
		return nil, Unauthenticated("Token da instância não informado")
	}

	inst, err := s.dir.FindInstanceByToken(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NotFound("Instância não encontrada")
	}
	if err != nil {
		return nil, Upstream("Erro ao buscar instância", err)
	}

	tenant, err := s.dir.FindTenant(ctx, inst.TenantID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NotFound("Tenant não encontrado")
	}
	if err != nil {
		return nil, Upstream("Erro ao buscar tenant", err)
	}

	return &TenantInfo{
		TenantID:       tenant.ID,
		TenantName:     tenant.Name,
		TenantSlug:     tenant.Slug,
		WhatsAppNumber: tenant.WhatsAppNumber,
	}, nil
}

type SettingsUpdate struct {
	Name           *string `json:"name"`
	WhatsAppNumber *string `json:"whatsapp_number"`
}

// UpdateSettings changes the dashboard-editable tenant fields.
func (s *TenantService) UpdateSettings(ctx context.Context, store *repository.ScopedRepository, req SettingsUpdate) (*models.Tenant, error) {
	fields := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, BadRequest("Nome do restaurante é obrigatório")
		}
		fields["name"] = name
	}
	if req.WhatsAppNumber != nil {
		number, err := NormalizePhone(*req.WhatsAppNumber)
		if err != nil {
			return nil, err
		}
		fields["whatsapp_number"] = number
	}
	if len(fields) > 0 {
		if err := store.UpdateTenant(ctx, fields); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, NotFound("Tenant não encontrado")
			}
			return nil, Upstream("Erro ao salvar configurações", err)
		}
	}
	tenant, err := store.GetTenant(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFound("Tenant não encontrado")
		}
		return nil, Upstream("Erro ao buscar tenant", err)
	}
	return tenant, nil
}

// NormalizePhone keeps digits only and requires a plausible E.164 length. Empty clears
// the number.
func NormalizePhone(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	number := b.String()
	if number == "" {
		return "", nil
	}
	if len(number) < 10 || len(number) > 15 {
		return "", BadRequest("Número de WhatsApp inválido")
	}
	return number, nil
}
