package services

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-saas/config"
	"github.com/yeremiapane/restaurant-saas/metrics"
	"github.com/yeremiapane/restaurant-saas/models"
	"github.com/yeremiapane/restaurant-saas/repository"
	"github.com/yeremiapane/restaurant-saas/utils"
)

type InstanceStore interface {
	FindTenant(ctx context.Context, id string) (*models.Tenant, error)
	FindInstanceByTenant(ctx context.Context, tenantID string) (*models.WhatsAppInstance, error)
	CreateInstance(ctx context.Context, inst *models.WhatsAppInstance) error
	UpdateInstance(ctx context.Context, id string, fields map[string]interface{}) error
	DeleteInstanceByTenant(ctx context.Context, tenantID string) (int64, error)
}

type WhatsAppGateway interface {
	InitInstance(ctx context.Context, name string) (*UazapiInstance, error)
	ConnectInstance(ctx context.Context, token, phone string) (*UazapiConnection, error)
	InstanceStatus(ctx context.Context, token string) (string, error)
	SetWebhook(ctx context.Context, token, url string) error
	DisconnectInstance(ctx context.Context, token string) error
	DeleteInstance(ctx context.Context, token string) error
}

const msgInstanceNotFound = "Instância não encontrada"

// WhatsAppService manages the lifecycle of a tenant's gateway instance. The local record
// is the tenant's link to the gateway; at most one exists per tenant.
type WhatsAppService struct {
	store          InstanceStore
	gateway        WhatsAppGateway
	webhookURL     string
	connectRetries int
	retryDelay     time.Duration
}

func NewWhatsAppService(store InstanceStore, gateway WhatsAppGateway, cfg config.UazapiConfig) *WhatsAppService {
	retries := cfg.ConnectRetries
	if retries < 1 {
		retries = 1
	}
	return &WhatsAppService{
		store:          store,
		gateway:        gateway,
		webhookURL:     cfg.WebhookURL,
		connectRetries: retries,
		retryDelay:     2 * time.Second,
	}
}

// Create provisions a gateway instance for the tenant and stores its credentials with a
// fresh API key.
func (s *WhatsAppService) Create(ctx context.Context, tenantID string) (*models.WhatsAppInstance, error) {
	tenant, err := s.store.FindTenant(ctx, tenantID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NotFound("Tenant não encontrado")
	}
	if err != nil {
		return nil, Upstream("Erro ao buscar tenant", err)
	}

	_, err = s.store.FindInstanceByTenant(ctx, tenantID)
	switch {
	case err == nil:
		return nil, Conflict("Tenant já possui uma instância do WhatsApp")
	case !errors.Is(err, repository.ErrNotFound):
		return nil, Upstream("Erro ao buscar instância", err)
	}

	remote, err := s.gateway.InitInstance(ctx, tenant.Slug)
	if err != nil {
		return nil, Upstream("Erro ao criar instância no WhatsApp", err)
	}

	inst := &models.WhatsAppInstance{
		TenantID:      tenantID,
		InstanceID:    remote.ID,
		InstanceName:  tenant.Slug,
		InstanceToken: remote.Token,
		APIKey:        uuid.NewString(),
		Status:        models.InstanceCreated,
	}
	if err := s.store.CreateInstance(ctx, inst); err != nil {
		// The gateway instance exists but we could not link it.
		s.orphaned(tenantID, remote.ID, err)
		return nil, Upstream("Erro ao salvar instância", err)
	}

	if s.webhookURL != "" {
		if err := s.gateway.SetWebhook(ctx, inst.InstanceToken, s.webhookURL); err != nil {
			utils.InfoLogger.WithFields(logrus.Fields{
				"tenant_id":   tenantID,
				"instance_id": inst.InstanceID,
			}).WithError(err).Warn("failed to configure instance webhook")
		}
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"tenant_id":   tenantID,
		"instance_id": inst.InstanceID,
	}).Info("whatsapp instance created")
	return inst, nil
}

// Connect starts pairing, retrying gateway failures at a constant interval.
func (s *WhatsAppService) Connect(ctx context.Context, tenantID, phone string) (*UazapiConnection, error) {
	inst, err := s.instance(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if phone != "" {
		if phone, err = NormalizePhone(phone); err != nil {
			return nil, err
		}
	}

	var conn *UazapiConnection
	attempt := 0
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(s.retryDelay), uint64(s.connectRetries-1)), ctx)
	err = backoff.RetryNotify(func() error {
		attempt++
		var cerr error
		conn, cerr = s.gateway.ConnectInstance(ctx, inst.InstanceToken, phone)
		return cerr
	}, policy, func(err error, wait time.Duration) {
		utils.InfoLogger.WithFields(logrus.Fields{
			"tenant_id": tenantID,
			"attempt":   attempt,
			"wait":      wait,
		}).WithError(err).Warn("instance connect failed, retrying")
	})
	if err != nil {
		return nil, Upstream("Erro ao conectar instância", err)
	}

	status := knownStatus(conn.Status, models.InstanceConnecting)
	fields := map[string]interface{}{"status": status}
	if phone != "" {
		fields["phone_number"] = phone
	}
	if err := s.store.UpdateInstance(ctx, inst.ID, fields); err != nil {
		return nil, Upstream("Erro ao atualizar instância", err)
	}
	conn.Status = status
	return conn, nil
}

func (s *WhatsAppService) Disconnect(ctx context.Context, tenantID string) error {
	inst, err := s.instance(ctx, tenantID)
	if err != nil {
		return err
	}
	if err := s.gateway.DisconnectInstance(ctx, inst.InstanceToken); err != nil {
		return Upstream("Erro ao desconectar instância", err)
	}
	if err := s.store.UpdateInstance(ctx, inst.ID, map[string]interface{}{"status": models.InstanceDisconnected}); err != nil {
		return Upstream("Erro ao atualizar instância", err)
	}
	utils.InfoLogger.WithField("tenant_id", tenantID).Info("whatsapp instance disconnected")
	return nil
}

// Status refreshes the stored status from the gateway. When the gateway is unreachable
// the stored status is returned as is.
func (s *WhatsAppService) Status(ctx context.Context, tenantID string) (*models.WhatsAppInstance, error) {
	inst, err := s.instance(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	remote, err := s.gateway.InstanceStatus(ctx, inst.InstanceToken)
	if err != nil {
		utils.InfoLogger.WithField("tenant_id", tenantID).WithError(err).Warn("gateway status unavailable")
		return inst, nil
	}
	status := knownStatus(remote, inst.Status)
	if status != inst.Status {
		if err := s.store.UpdateInstance(ctx, inst.ID, map[string]interface{}{"status": status}); err != nil {
			return nil, Upstream("Erro ao atualizar instância", err)
		}
		inst.Status = status
	}
	return inst, nil
}

// Delete unlinks the tenant from its instance. The gateway deletion is best effort: the
// local record is removed even when the gateway refuses, and the leftover is counted.
func (s *WhatsAppService) Delete(ctx context.Context, tenantID string) error {
	inst, err := s.instance(ctx, tenantID)
	if err != nil {
		return err
	}

	log := utils.InfoLogger.WithFields(logrus.Fields{
		"tenant_id":   tenantID,
		"instance_id": inst.InstanceID,
	})
	if err := s.gateway.DeleteInstance(ctx, inst.InstanceToken); err != nil {
		s.orphaned(tenantID, inst.InstanceID, err)
	} else {
		log.Info("gateway instance deleted")
	}

	if _, err := s.store.DeleteInstanceByTenant(ctx, tenantID); err != nil {
		return Upstream("Erro ao remover instância", err)
	}
	log.Info("whatsapp instance unlinked")
	return nil
}

// RotateAPIKey replaces the integration API key. The new key is returned once.
func (s *WhatsAppService) RotateAPIKey(ctx context.Context, tenantID string) (string, error) {
	inst, err := s.instance(ctx, tenantID)
	if err != nil {
		return "", err
	}
	key := uuid.NewString()
	if err := s.store.UpdateInstance(ctx, inst.ID, map[string]interface{}{"api_key": key}); err != nil {
		return "", Upstream("Erro ao gerar nova chave", err)
	}
	utils.InfoLogger.WithField("tenant_id", tenantID).Info("integration api key rotated")
	return key, nil
}

func (s *WhatsAppService) instance(ctx context.Context, tenantID string) (*models.WhatsAppInstance, error) {
	inst, err := s.store.FindInstanceByTenant(ctx, tenantID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NotFound(msgInstanceNotFound)
	}
	if err != nil {
		return nil, Upstream("Erro ao buscar instância", err)
	}
	return inst, nil
}

func (s *WhatsAppService) orphaned(tenantID, instanceID string, err error) {
	metrics.OrphanedInstances.Inc()
	utils.ErrorLogger.WithFields(logrus.Fields{
		"tenant_id":   tenantID,
		"instance_id": instanceID,
	}).WithError(err).Warnf("gateway instance %s may be orphaned", instanceID)
}

func knownStatus(status, fallback string) string {
	switch status {
	case models.InstanceCreated, models.InstanceConnecting, models.InstanceConnected, models.InstanceDisconnected:
		return status
	}
	return fallback
}
