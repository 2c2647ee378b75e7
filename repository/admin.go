package repository

import (
	"context"

	"github.com/yeremiapane/restaurant-saas/models"
	"gorm.io/gorm"
)

// AdminRepository bypasses tenant scoping. It backs credential lookups, the
// subscription webhook and anything that runs without a dashboard session.
type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// Scoped returns a repository restricted to tenantID.
func (r *AdminRepository) Scoped(tenantID string) *ScopedRepository {
	return &ScopedRepository{db: r.db, tenantID: tenantID}
}

func (r *AdminRepository) FindTenant(ctx context.Context, id string) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&tenant).Error; err != nil {
		return nil, translate(err)
	}
	return &tenant, nil
}

func (r *AdminRepository) FindProfile(ctx context.Context, id string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error; err != nil {
		return nil, translate(err)
	}
	return &profile, nil
}

func (r *AdminRepository) FindProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&profile).Error; err != nil {
		return nil, translate(err)
	}
	return &profile, nil
}

// CreateTenantWithOwner registers a restaurant and its first dashboard user atomically.
func (r *AdminRepository) CreateTenantWithOwner(ctx context.Context, tenant *models.Tenant, owner *models.Profile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(tenant).Error; err != nil {
			return err
		}
		owner.TenantID = tenant.ID
		return tx.Omit("Tenant").Create(owner).Error
	})
}

// FindInstanceByToken matches the instance token exactly.
func (r *AdminRepository) FindInstanceByToken(ctx context.Context, token string) (*models.WhatsAppInstance, error) {
	return r.findInstance(ctx, "instance_token = ?", token)
}

// FindInstanceByAPIKey matches the API key exactly.
func (r *AdminRepository) FindInstanceByAPIKey(ctx context.Context, key string) (*models.WhatsAppInstance, error) {
	return r.findInstance(ctx, "api_key = ?", key)
}

func (r *AdminRepository) FindInstanceByTenant(ctx context.Context, tenantID string) (*models.WhatsAppInstance, error) {
	return r.findInstance(ctx, "tenant_id = ?", tenantID)
}

func (r *AdminRepository) findInstance(ctx context.Context, query string, arg string) (*models.WhatsAppInstance, error) {
	if arg == "" {
		return nil, ErrNotFound
	}
	var inst models.WhatsAppInstance
	if err := r.db.WithContext(ctx).Where(query, arg).First(&inst).Error; err != nil {
		return nil, translate(err)
	}
	return &inst, nil
}

func (r *AdminRepository) CreateInstance(ctx context.Context, inst *models.WhatsAppInstance) error {
	return r.db.WithContext(ctx).Create(inst).Error
}

func (r *AdminRepository) UpdateInstance(ctx context.Context, id string, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.WhatsAppInstance{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteInstanceByTenant removes the local instance record. Deleting a tenant with no
// instance is not an error.
func (r *AdminRepository) DeleteInstanceByTenant(ctx context.Context, tenantID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Delete(&models.WhatsAppInstance{})
	return res.RowsAffected, res.Error
}
